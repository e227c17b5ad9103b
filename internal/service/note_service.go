package service

import (
	"context"
	"fmt"
	"strings"

	"famlink/internal/models"
	"famlink/internal/repository"
	"famlink/internal/validation"
)

// NoteService manages the shared notice board. A note is visible to its
// owner and the owner's paired accounts; only the owner may change it.
type NoteService struct {
	notes *repository.NoteRepository
	pairs *repository.PairingRepository
}

// NewNoteService creates a new note service
func NewNoteService(notes *repository.NoteRepository, pairs *repository.PairingRepository) *NoteService {
	return &NoteService{notes: notes, pairs: pairs}
}

// CreateNote adds a note owned by ownerID
func (s *NoteService) CreateNote(ctx context.Context, ownerID int64, title, body string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	if err := validation.ValidateNote(title, body); err != nil {
		return nil, invalidInput(err)
	}

	note := &models.Note{OwnerID: ownerID, Title: title, Body: body}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListVisibleNotes returns the board (or the archive) seen by accountID
func (s *NoteService) ListVisibleNotes(ctx context.Context, accountID int64, archived bool) ([]models.Note, error) {
	notes, err := s.notes.ListVisible(ctx, accountID, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// GetNote returns a note visible to accountID
func (s *NoteService) GetNote(ctx context.Context, accountID, noteID int64) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	if note.OwnerID == accountID {
		return note, nil
	}

	paired, err := s.pairs.ArePaired(ctx, accountID, note.OwnerID)
	if err != nil {
		return nil, err
	}
	if !paired {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// ownedNote returns the note when accountID owns it. Paired accounts get
// ErrNotNoteOwner; everyone else gets ErrNoteNotFound.
func (s *NoteService) ownedNote(ctx context.Context, accountID, noteID int64) (*models.Note, error) {
	note, err := s.GetNote(ctx, accountID, noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != accountID {
		return nil, ErrNotNoteOwner
	}
	return note, nil
}

// UpdateNote replaces title and body
func (s *NoteService) UpdateNote(ctx context.Context, accountID, noteID int64, title, body string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	if err := validation.ValidateNote(title, body); err != nil {
		return nil, invalidInput(err)
	}

	note, err := s.ownedNote(ctx, accountID, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.notes.Update(ctx, noteID, title, body); err != nil {
		return nil, err
	}
	note.Title = title
	note.Body = body
	return note, nil
}

// SetArchived archives or restores a note
func (s *NoteService) SetArchived(ctx context.Context, accountID, noteID int64, archived bool) (*models.Note, error) {
	note, err := s.ownedNote(ctx, accountID, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.notes.SetArchived(ctx, noteID, archived); err != nil {
		return nil, err
	}
	note.Archived = archived
	return note, nil
}

// DeleteNote removes a note
func (s *NoteService) DeleteNote(ctx context.Context, accountID, noteID int64) error {
	if _, err := s.ownedNote(ctx, accountID, noteID); err != nil {
		return err
	}
	return s.notes.Delete(ctx, noteID)
}
