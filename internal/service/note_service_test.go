package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"famlink/internal/models"
)

func noteIDs(notes []models.Note) []int64 {
	out := []int64{}
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestNoteService_VisibleToPairedAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	c := env.register(t, "camila")
	env.pair(t, a, b)

	note, err := env.notes.CreateNote(ctx, a.ID, " Pickup ", "School closes early Friday")
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	if note.Title != "Pickup" {
		t.Errorf("Title = %q, want trimmed", note.Title)
	}

	tests := []struct {
		name    string
		account int64
		want    int
	}{
		{name: "owner", account: a.ID, want: 1},
		{name: "paired", account: b.ID, want: 1},
		{name: "stranger", account: c.ID, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := env.notes.ListVisibleNotes(ctx, tt.account, false)
			if err != nil {
				t.Fatal(err)
			}
			if len(notes) != tt.want {
				t.Errorf("ListVisibleNotes() = %v, want %d notes", noteIDs(notes), tt.want)
			}
		})
	}

	if _, err := env.notes.GetNote(ctx, b.ID, note.ID); err != nil {
		t.Errorf("GetNote() by paired account error = %v", err)
	}
	if _, err := env.notes.GetNote(ctx, c.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("GetNote() by stranger error = %v, want ErrNoteNotFound", err)
	}

	if err := env.pairing.Unpair(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	notes, err := env.notes.ListVisibleNotes(ctx, b.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Errorf("unpaired account still sees %v", noteIDs(notes))
	}
}

func TestNoteService_OnlyOwnerMutates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")
	b := env.register(t, "bilal")
	c := env.register(t, "camila")
	env.pair(t, a, b)

	note, err := env.notes.CreateNote(ctx, a.ID, "Pickup", "")
	if err != nil {
		t.Fatal(err)
	}

	mutations := []struct {
		name string
		run  func(account int64) error
	}{
		{name: "update", run: func(account int64) error {
			_, err := env.notes.UpdateNote(ctx, account, note.ID, "Changed", "")
			return err
		}},
		{name: "archive", run: func(account int64) error {
			_, err := env.notes.SetArchived(ctx, account, note.ID, true)
			return err
		}},
		{name: "delete", run: func(account int64) error {
			return env.notes.DeleteNote(ctx, account, note.ID)
		}},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			if err := m.run(b.ID); !errors.Is(err, ErrNotNoteOwner) {
				t.Errorf("%s by paired account error = %v, want ErrNotNoteOwner", m.name, err)
			}
			if err := m.run(c.ID); !errors.Is(err, ErrNoteNotFound) {
				t.Errorf("%s by stranger error = %v, want ErrNoteNotFound", m.name, err)
			}
		})
	}

	got, err := env.notes.GetNote(ctx, a.ID, note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Pickup" || got.Archived {
		t.Errorf("note changed by non-owner: %+v", got)
	}
}

func TestNoteService_OwnerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "amina")

	note, err := env.notes.CreateNote(ctx, a.ID, "Pickup", "3pm")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := env.notes.UpdateNote(ctx, a.ID, note.ID, "Pickup moved", "4pm")
	if err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	if updated.Title != "Pickup moved" || updated.Body != "4pm" {
		t.Errorf("UpdateNote() = %+v", updated)
	}

	if _, err := env.notes.SetArchived(ctx, a.ID, note.ID, true); err != nil {
		t.Fatalf("SetArchived() error = %v", err)
	}
	board, _ := env.notes.ListVisibleNotes(ctx, a.ID, false)
	archive, _ := env.notes.ListVisibleNotes(ctx, a.ID, true)
	if len(board) != 0 || len(archive) != 1 {
		t.Errorf("after archive board = %v, archive = %v", noteIDs(board), noteIDs(archive))
	}

	if _, err := env.notes.SetArchived(ctx, a.ID, note.ID, false); err != nil {
		t.Fatal(err)
	}
	board, _ = env.notes.ListVisibleNotes(ctx, a.ID, false)
	if len(board) != 1 {
		t.Errorf("after restore board = %v", noteIDs(board))
	}

	if err := env.notes.DeleteNote(ctx, a.ID, note.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if _, err := env.notes.GetNote(ctx, a.ID, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("GetNote() after delete error = %v", err)
	}
}

func TestNoteService_Validation(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "amina")

	tests := []struct {
		name  string
		title string
		body  string
	}{
		{name: "empty title", title: "   "},
		{name: "long title", title: strings.Repeat("t", 201)},
		{name: "long body", title: "ok", body: strings.Repeat("b", 10001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.notes.CreateNote(context.Background(), a.ID, tt.title, tt.body); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("CreateNote() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
