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

const activityColumns = "id, child_id, recorded_by, kind, day, detail, completed, created_at"

// ActivityRepository stores a child's daily practice log
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record stores an entry, replacing the completed flag and author of an
// existing entry for the same child, kind, day and detail.
func (r *ActivityRepository) Record(ctx context.Context, a *models.Activity) error {
	return database.RunInTx(ctx, r.db, func(q database.DBTX) error {
		var existingID int64
		err := q.QueryRowContext(ctx,
			"SELECT id FROM activities WHERE child_id = ? AND kind = ? AND day = ? AND detail = ?",
			a.ChildID, string(a.Kind), a.Day.Time, a.Detail,
		).Scan(&existingID)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			query := "INSERT INTO activities (child_id, recorded_by, kind, day, detail, completed) VALUES (?, ?, ?, ?, ?, ?)"
			id, err := q.ExecReturningID(ctx, query, a.ChildID, a.RecordedBy, string(a.Kind), a.Day.Time, a.Detail, a.Completed)
			if err != nil {
				return fmt.Errorf("failed to record activity: %w", err)
			}
			a.ID = id
			a.CreatedAt = time.Now()
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up activity: %w", err)
		}

		query := "UPDATE activities SET recorded_by = ?, completed = ? WHERE id = ?"
		if _, err := q.ExecContext(ctx, query, a.RecordedBy, a.Completed, existingID); err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}
		a.ID = existingID
		return nil
	})
}

// GetByID retrieves an activity, or nil if it does not exist
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	a, err := scanActivity(r.db.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// ListForChild returns a child's entries, optionally bounded by day
// (inclusive), latest day first.
func (r *ActivityRepository) ListForChild(ctx context.Context, childID int64, from, to *models.Date) ([]models.Activity, error) {
	query := "SELECT " + activityColumns + " FROM activities WHERE child_id = ?"
	args := []any{childID}
	if from != nil {
		query += " AND day >= ?"
		args = append(args, from.Time)
	}
	if to != nil {
		query += " AND day <= ?"
		args = append(args, to.Time)
	}
	query += " ORDER BY day DESC, kind, detail"
	return r.query(ctx, query, args...)
}

// ListAll returns every activity, for backups
func (r *ActivityRepository) ListAll(ctx context.Context) ([]models.Activity, error) {
	return r.query(ctx, "SELECT "+activityColumns+" FROM activities ORDER BY id")
}

func (r *ActivityRepository) query(ctx context.Context, query string, args ...any) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	a := &models.Activity{}
	var (
		kind string
		day  time.Time
	)
	if err := row.Scan(&a.ID, &a.ChildID, &a.RecordedBy, &kind, &day, &a.Detail, &a.Completed, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = models.ActivityKind(kind)
	a.Day = models.NewDate(day)
	return a, nil
}

// Delete removes an activity entry
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}
