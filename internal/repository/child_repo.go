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

const childColumns = "c.id, c.owner_id, c.name, c.birth_date, c.gender, c.created_at, c.updated_at"

// visibleChildPredicate matches children an account owns or is a member of
const visibleChildPredicate = `c.owner_id = ? OR EXISTS (
	SELECT 1 FROM child_members cm WHERE cm.child_id = c.id AND cm.account_id = ?
)`

// ChildRepository handles children and their membership sets
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ChildRepository) WithTx(tx database.DBTX) *ChildRepository {
	return &ChildRepository{db: tx}
}

// Create inserts the child and its members in one transaction.
// memberIDs is stored in order with duplicates skipped.
func (r *ChildRepository) Create(ctx context.Context, c *models.Child, memberIDs []int64) error {
	err := database.RunInTx(ctx, r.db, func(q database.DBTX) error {
		query := "INSERT INTO children (owner_id, name, birth_date, gender) VALUES (?, ?, ?, ?)"
		id, err := q.ExecReturningID(ctx, query, c.OwnerID, c.Name, dateArg(c.BirthDate), c.Gender)
		if err != nil {
			return fmt.Errorf("failed to create child: %w", err)
		}
		c.ID = id

		return r.WithTx(q).AddMembers(ctx, id, memberIDs...)
	})
	if err != nil {
		return err
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Members = dedupeIDs(memberIDs)
	return nil
}

// GetByID retrieves a child with its members, or nil if it does not exist
func (r *ChildRepository) GetByID(ctx context.Context, id int64) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children c WHERE c.id = ?"
	c, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	c.Members, err = r.ListMemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListVisible returns every child accountID owns or is a member of, newest first
func (r *ChildRepository) ListVisible(ctx context.Context, accountID int64) ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children c WHERE " + visibleChildPredicate +
		" ORDER BY c.created_at DESC, c.id DESC"
	children, err := r.queryChildren(ctx, query, accountID, accountID)
	if err != nil {
		return nil, err
	}

	memberQuery := `
		SELECT child_id, account_id FROM child_members
		WHERE child_id IN (SELECT c.id FROM children c WHERE ` + visibleChildPredicate + `)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, memberQuery, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child members: %w", err)
	}
	defer rows.Close()

	members := make(map[int64][]int64)
	for rows.Next() {
		var childID, memberID int64
		if err := rows.Scan(&childID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan child member: %w", err)
		}
		members[childID] = append(members[childID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range children {
		children[i].Members = members[children[i].ID]
		if children[i].Members == nil {
			children[i].Members = []int64{}
		}
	}
	return children, nil
}

// ListAll returns every child without members, for backups
func (r *ChildRepository) ListAll(ctx context.Context) ([]models.Child, error) {
	return r.queryChildren(ctx, "SELECT "+childColumns+" FROM children c ORDER BY c.id")
}

func (r *ChildRepository) queryChildren(ctx context.Context, query string, args ...any) ([]models.Child, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func scanChild(row rowScanner) (*models.Child, error) {
	c := &models.Child{}
	var birth sql.NullTime
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &birth, &c.Gender, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.BirthDate = dateFromNull(birth)
	return c, nil
}

// ListMemberIDs returns a child's members in the order they were added
func (r *ChildRepository) ListMemberIDs(ctx context.Context, childID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT account_id FROM child_members WHERE child_id = ? ORDER BY id", childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child members: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMembers adds accounts to a child's membership set; existing members are kept
func (r *ChildRepository) AddMembers(ctx context.Context, childID int64, accountIDs ...int64) error {
	query := r.db.GetDialect().InsertIgnoreQuery("child_members", "child_id", "account_id")
	for _, id := range dedupeIDs(accountIDs) {
		if _, err := r.db.ExecContext(ctx, query, childID, id); err != nil {
			return fmt.Errorf("failed to add child member: %w", err)
		}
	}
	return nil
}

// Update writes the child's profile fields
func (r *ChildRepository) Update(ctx context.Context, c *models.Child) error {
	query := "UPDATE children SET name = ?, birth_date = ?, gender = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, c.Name, dateArg(c.BirthDate), c.Gender, c.ID); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Delete removes a child. Memberships and activities cascade and pending
// changes keep their row with child_id cleared.
func (r *ChildRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM children WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

// CountOwned returns how many children ownerID owns
func (r *ChildRepository) CountOwned(ctx context.Context, ownerID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM children WHERE owner_id = ?", ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
