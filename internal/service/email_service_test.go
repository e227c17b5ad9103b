package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"famlink/internal/models"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceDisabled(t *testing.T) {
	s, err := NewEmailService(context.Background(), "us-east-1", "", "", "", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if s.IsEnabled() {
		t.Fatal("service without from address should be disabled")
	}

	to := &models.Account{Name: "Amina", Email: "amina@example.com"}
	if err := s.NotifyPaired(context.Background(), to, to); err != nil {
		t.Errorf("disabled service should not fail: %v", err)
	}
}

func TestEmailServiceSends(t *testing.T) {
	fake := &fakeSES{}
	s := &EmailService{client: fake, fromEmail: "noreply@famlink.app", fromName: "Famlink", appBaseURL: "https://famlink.app", enabled: true}

	amina := &models.Account{Name: "Amina", Email: "amina@example.com"}
	bilal := &models.Account{Name: "Bilal", Email: "bilal@example.com"}

	if err := s.NotifyPaired(context.Background(), amina, bilal); err != nil {
		t.Fatalf("NotifyPaired() error = %v", err)
	}
	change := &models.PendingChange{Action: models.ProposalAddChild}
	if err := s.NotifyPendingChange(context.Background(), bilal, amina, change); err != nil {
		t.Fatalf("NotifyPendingChange() error = %v", err)
	}

	if len(fake.inputs) != 2 {
		t.Fatalf("sent %d emails, want 2", len(fake.inputs))
	}
	first := fake.inputs[0]
	if got := aws.ToString(first.FromEmailAddress); got != "Famlink <noreply@famlink.app>" {
		t.Errorf("from = %q", got)
	}
	if first.Destination.ToAddresses[0] != "amina@example.com" {
		t.Errorf("to = %v", first.Destination.ToAddresses)
	}
	body := aws.ToString(fake.inputs[1].Content.Simple.Body.Text.Data)
	if !strings.Contains(body, "share a child") {
		t.Errorf("pending email body = %q", body)
	}
}

func TestEmailServiceSendError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	s := &EmailService{client: fake, fromEmail: "noreply@famlink.app", enabled: true}

	err := s.NotifyPaired(context.Background(), &models.Account{Email: "a@example.com"}, &models.Account{})
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Errorf("NotifyPaired() error = %v, want wrapped send error", err)
	}
}
