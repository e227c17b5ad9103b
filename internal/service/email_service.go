package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"famlink/internal/models"
)

// Notifier tells an account about pairing and approval events.
// Delivery is best effort; callers log and continue on error.
type Notifier interface {
	NotifyPaired(ctx context.Context, to, partner *models.Account) error
	NotifyPendingChange(ctx context.Context, to, proposer *models.Account, change *models.PendingChange) error
}

// sesAPI is the subset of the SES client used for sending
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends notification emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		slog.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	slog.Info("email service enabled", "from", fromEmail, "region", awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyPaired tells an account that partner linked with them
func (s *EmailService) NotifyPaired(ctx context.Context, to, partner *models.Account) error {
	subject := fmt.Sprintf("%s is now your co-parent on Famlink", partner.Name)
	text := fmt.Sprintf(`Hi %s,

%s (%s) used your invite code and is now paired with your account.
You can now see each other's notes and share children.

If you did not expect this, you can unpair at any time: %s/settings/pairing

---
This is an automated email from Famlink. Please do not reply.
`, to.Name, partner.Name, partner.Email, s.appBaseURL)

	return s.send(ctx, to.Email, subject, text)
}

// NotifyPendingChange tells the target that a change awaits their approval
func (s *EmailService) NotifyPendingChange(ctx context.Context, to, proposer *models.Account, change *models.PendingChange) error {
	var what string
	switch change.Action {
	case models.ProposalAddChild:
		what = "share a child with them"
	case models.ProposalUpdateChild:
		what = "update a child's profile"
	default:
		what = string(change.Action)
	}

	subject := fmt.Sprintf("%s is waiting for your approval", proposer.Name)
	text := fmt.Sprintf(`Hi %s,

%s asked to %s. Review the request in the app:
%s/pending

---
This is an automated email from Famlink. Please do not reply.
`, to.Name, proposer.Name, what, s.appBaseURL)

	return s.send(ctx, to.Email, subject, text)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, textBody string) error {
	if !s.enabled {
		if s.debug {
			slog.Debug("skipping email send (service disabled)", "to", toEmail, "subject", subject)
		}
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if s.debug {
		slog.Debug("email sent", "to", toEmail, "subject", subject, "message_id", aws.ToString(result.MessageId))
	}
	return nil
}
