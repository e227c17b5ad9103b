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

const accountColumns = `id, email, password_hash, name, birth_date, gender, invite_code, is_premium,
	COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *AccountRepository) WithTx(tx database.DBTX) *AccountRepository {
	return &AccountRepository{db: tx}
}

// Create inserts a new account and sets its ID
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, name, birth_date, gender, invite_code, is_premium, oauth_provider, oauth_subject)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		a.Email, a.PasswordHash, a.Name, dateArg(a.BirthDate), a.Gender, a.InviteCode, a.IsPremium,
		nullString(a.OAuthProvider), nullString(a.OAuthSubject),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	now := time.Now()
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// GetByID retrieves an account by ID, or nil if it does not exist
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail retrieves an account by email address
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByInviteCode resolves an invite code to its account
func (r *AccountRepository) GetByInviteCode(ctx context.Context, code string) (*models.Account, error) {
	return r.getOne(ctx, "invite_code = ?", code)
}

// GetByOAuth retrieves an account linked to an OAuth identity
func (r *AccountRepository) GetByOAuth(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.getOne(ctx, "oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *AccountRepository) getOne(ctx context.Context, where string, args ...any) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE " + where
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	a.PairedAccountIDs, err = NewPairingRepository(r.db).ListPairedIDs(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var birth sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&birth,
		&a.Gender,
		&a.InviteCode,
		&a.IsPremium,
		&a.OAuthProvider,
		&a.OAuthSubject,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.BirthDate = dateFromNull(birth)
	return a, nil
}

// InviteCodeExists reports whether code is already assigned
func (r *AccountRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE invite_code = ?", code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile replaces the editable profile fields
func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, name string, birthDate *models.Date, gender string) error {
	query := "UPDATE accounts SET name = ?, birth_date = ?, gender = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, name, dateArg(birthDate), gender, id); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// UpdateInviteCode assigns a new invite code to the account
func (r *AccountRepository) UpdateInviteCode(ctx context.Context, id int64, code string) error {
	query := "UPDATE accounts SET invite_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, code, id); err != nil {
		return fmt.Errorf("failed to update invite code: %w", err)
	}
	return nil
}

// LinkOAuth attaches an OAuth identity to an existing account
func (r *AccountRepository) LinkOAuth(ctx context.Context, id int64, provider, subject string) error {
	query := "UPDATE accounts SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, provider, subject, id); err != nil {
		return fmt.Errorf("failed to link oauth identity: %w", err)
	}
	return nil
}

// SetPremium toggles the premium flag. It reports false when no account matched.
func (r *AccountRepository) SetPremium(ctx context.Context, id int64, premium bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE accounts SET is_premium = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", premium, id)
	if err != nil {
		return false, fmt.Errorf("failed to set premium: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to set premium: %w", err)
	}
	return n > 0, nil
}

// List returns all accounts ordered by ID
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
