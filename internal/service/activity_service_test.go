package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"famlink/internal/models"
)

func day(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestActivityService_Record(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	child, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Aisha"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		account    int64
		input      ActivityInput
		wantDetail string
		wantErr    error
	}{
		{
			name:       "prayer is lowercased",
			account:    a.ID,
			input:      ActivityInput{Kind: models.ActivityPrayer, Day: day("2024-03-11"), Detail: " Fajr "},
			wantDetail: "fajr",
		},
		{
			name:       "fasting drops detail",
			account:    a.ID,
			input:      ActivityInput{Kind: models.ActivityFasting, Day: day("2024-03-11"), Detail: "ignored"},
			wantDetail: "",
		},
		{
			name:       "quran keeps detail",
			account:    a.ID,
			input:      ActivityInput{Kind: models.ActivityQuran, Day: day("2024-03-11"), Detail: "Al-Fatiha"},
			wantDetail: "Al-Fatiha",
		},
		{
			name:    "unknown prayer",
			account: a.ID,
			input:   ActivityInput{Kind: models.ActivityPrayer, Day: day("2024-03-11"), Detail: "tahajjud"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "long quran detail",
			account: a.ID,
			input:   ActivityInput{Kind: models.ActivityQuran, Day: day("2024-03-11"), Detail: strings.Repeat("q", 129)},
			wantErr: ErrInvalidInput,
		},
		{
			name:       "multibyte detail counts characters",
			account:    a.ID,
			input:      ActivityInput{Kind: models.ActivityQuran, Day: day("2024-03-12"), Detail: strings.Repeat("ب", 128)},
			wantDetail: strings.Repeat("ب", 128),
		},
		{
			name:    "long multibyte detail",
			account: a.ID,
			input:   ActivityInput{Kind: models.ActivityQuran, Day: day("2024-03-12"), Detail: strings.Repeat("ب", 129)},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown kind",
			account: a.ID,
			input:   ActivityInput{Kind: "charity", Day: day("2024-03-11")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing day",
			account: a.ID,
			input:   ActivityInput{Kind: models.ActivityFasting},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "not a member",
			account: b.ID,
			input:   ActivityInput{Kind: models.ActivityFasting, Day: day("2024-03-11")},
			wantErr: ErrChildNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.activity.Record(ctx, tt.account, child.ID, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Record() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			if got.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.wantDetail)
			}
			if !got.Completed {
				t.Error("Completed should default to true")
			}
		})
	}
}

func TestActivityService_RecordReplacesSameEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	child, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Aisha"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	in := ActivityInput{Kind: models.ActivityPrayer, Day: day("2024-03-11"), Detail: "asr"}
	first, err := env.activity.Record(ctx, a.ID, child.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	in.Completed = ptr(false)
	second, err := env.activity.Record(ctx, a.ID, child.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("second record ID = %d, want %d", second.ID, first.ID)
	}

	list, err := env.activity.List(ctx, a.ID, child.ID, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Completed {
		t.Errorf("List() = %+v, want one incomplete entry", list)
	}
}

func TestActivityService_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	env.pair(t, a, b)

	child, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Aisha"}, []int64{b.ID})
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.children.CreateChild(ctx, a.ID, ChildInput{Name: "Omar"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		in := ActivityInput{Kind: models.ActivityFasting, Day: models.NewDate(base.AddDate(0, 0, i))}
		if _, err := env.activity.Record(ctx, b.ID, child.ID, in); err != nil {
			t.Fatalf("Record() day %d error = %v", i, err)
		}
	}

	from, to := day("2024-03-11"), day("2024-03-12")
	list, err := env.activity.List(ctx, a.ID, child.ID, &from, &to)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Day.String() != "2024-03-12" {
		t.Fatalf("List() = %+v, want 12th and 11th, latest first", list)
	}
	if list[0].RecordedBy != b.ID {
		t.Errorf("RecordedBy = %d, want %d", list[0].RecordedBy, b.ID)
	}

	if _, err := env.activity.List(ctx, a.ID, child.ID, &to, &from); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List() inverted range error = %v", err)
	}

	if err := env.activity.Delete(ctx, a.ID, other.ID, list[0].ID); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("Delete() via another child error = %v, want ErrActivityNotFound", err)
	}
	if err := env.activity.Delete(ctx, b.ID, child.ID, list[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	all, _ := env.activity.List(ctx, a.ID, child.ID, nil, nil)
	if len(all) != 2 {
		t.Errorf("after delete List() = %+v, want 2 entries", all)
	}
}
