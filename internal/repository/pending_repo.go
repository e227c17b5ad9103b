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

const pendingColumns = "id, proposer_id, target_id, child_id, action, details, status, created_at, resolved_at"

// PendingRepository stores proposed changes awaiting approval
type PendingRepository struct {
	db database.DBTX
}

// NewPendingRepository creates a new pending change repository
func NewPendingRepository(db database.DBTX) *PendingRepository {
	return &PendingRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PendingRepository) WithTx(tx database.DBTX) *PendingRepository {
	return &PendingRepository{db: tx}
}

// Create inserts a pending change with status pending
func (r *PendingRepository) Create(ctx context.Context, p *models.PendingChange) error {
	details := string(p.Details)
	if details == "" {
		details = "{}"
	}

	var childID any
	if p.ChildID != nil {
		childID = *p.ChildID
	}

	query := `
		INSERT INTO pending_changes (proposer_id, target_id, child_id, action, details, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, p.ProposerID, p.TargetID, childID, string(p.Action), details, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to create pending change: %w", err)
	}

	p.ID = id
	p.Details = []byte(details)
	p.Status = models.StatusPending
	p.CreatedAt = time.Now()
	p.ResolvedAt = nil
	return nil
}

// GetByID retrieves a pending change, or nil if it does not exist
func (r *PendingRepository) GetByID(ctx context.Context, id int64) (*models.PendingChange, error) {
	p, err := scanPending(r.db.QueryRowContext(ctx, "SELECT "+pendingColumns+" FROM pending_changes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending change: %w", err)
	}
	return p, nil
}

// ListPendingFor returns unresolved changes addressed to targetID, newest first
func (r *PendingRepository) ListPendingFor(ctx context.Context, targetID int64) ([]models.PendingChange, error) {
	query := "SELECT " + pendingColumns + " FROM pending_changes WHERE target_id = ? AND status = ? ORDER BY created_at DESC, id DESC"
	return r.query(ctx, query, targetID, string(models.StatusPending))
}

// ListProposedBy returns every change proposerID created, newest first
func (r *PendingRepository) ListProposedBy(ctx context.Context, proposerID int64) ([]models.PendingChange, error) {
	query := "SELECT " + pendingColumns + " FROM pending_changes WHERE proposer_id = ? ORDER BY created_at DESC, id DESC"
	return r.query(ctx, query, proposerID)
}

// ListAll returns every pending change, for backups
func (r *PendingRepository) ListAll(ctx context.Context) ([]models.PendingChange, error) {
	return r.query(ctx, "SELECT "+pendingColumns+" FROM pending_changes ORDER BY id")
}

// Transition moves a change out of pending. It reports false when the row
// was not pending any more, leaving it untouched.
func (r *PendingRepository) Transition(ctx context.Context, id int64, to models.PendingStatus) (bool, error) {
	query := "UPDATE pending_changes SET status = ?, resolved_at = ? WHERE id = ? AND status = ?"
	result, err := r.db.ExecContext(ctx, query, string(to), time.Now().UTC(), id, string(models.StatusPending))
	if err != nil {
		return false, fmt.Errorf("failed to resolve pending change: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to resolve pending change: %w", err)
	}
	return n == 1, nil
}

func (r *PendingRepository) query(ctx context.Context, query string, args ...any) ([]models.PendingChange, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending changes: %w", err)
	}
	defer rows.Close()

	changes := []models.PendingChange{}
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending change: %w", err)
		}
		changes = append(changes, *p)
	}
	return changes, rows.Err()
}

func scanPending(row rowScanner) (*models.PendingChange, error) {
	p := &models.PendingChange{}
	var (
		childID  sql.NullInt64
		action   string
		details  string
		status   string
		resolved sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.ProposerID, &p.TargetID, &childID, &action, &details, &status, &p.CreatedAt, &resolved); err != nil {
		return nil, err
	}
	if childID.Valid {
		id := childID.Int64
		p.ChildID = &id
	}
	p.Action = models.ProposalKind(action)
	p.Details = []byte(details)
	p.Status = models.PendingStatus(status)
	p.ResolvedAt = timeFromNull(resolved)
	return p, nil
}
