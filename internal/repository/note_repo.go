package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famlink/internal/database"
	"famlink/internal/models"
)

const noteColumns = "n.id, n.owner_id, n.title, n.body, n.archived, n.created_at, n.updated_at"

// NoteRepository handles notice-board notes
type NoteRepository struct {
	db database.DBTX
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db database.DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note and sets its ID
func (r *NoteRepository) Create(ctx context.Context, n *models.Note) error {
	query := "INSERT INTO notes (owner_id, title, body, archived) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, n.OwnerID, n.Title, n.Body, n.Archived)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	now := time.Now()
	n.ID = id
	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

// GetByID retrieves a note, or nil if it does not exist
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	n := &models.Note{}
	err := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes n WHERE n.id = ?", id).Scan(
		&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.Archived, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

// ListVisible returns notes owned by accountID or by any account paired
// with it, newest first. archived selects the archive instead of the board.
func (r *NoteRepository) ListVisible(ctx context.Context, accountID int64, archived bool) ([]models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		WHERE n.archived = ?
		  AND (n.owner_id = ?
		       OR n.owner_id IN (SELECT paired_account_id FROM account_pairs WHERE account_id = ?))
		ORDER BY n.created_at DESC, n.id DESC
	`
	return r.query(ctx, query, archived, accountID, accountID)
}

// ListAll returns every note, for backups
func (r *NoteRepository) ListAll(ctx context.Context) ([]models.Note, error) {
	return r.query(ctx, "SELECT "+noteColumns+" FROM notes n ORDER BY n.id")
}

func (r *NoteRepository) query(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.Archived, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update replaces a note's title and body
func (r *NoteRepository) Update(ctx context.Context, id int64, title, body string) error {
	query := "UPDATE notes SET title = ?, body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, title, body, id); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// SetArchived moves a note to or from the archive
func (r *NoteRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	query := "UPDATE notes SET archived = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, archived, id); err != nil {
		return fmt.Errorf("failed to archive note: %w", err)
	}
	return nil
}

// Delete removes a note
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
