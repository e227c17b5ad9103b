package repository

import (
	"context"
	"fmt"

	"famlink/internal/database"
	"famlink/internal/models"
)

// PairingRepository stores the symmetric account pairing ledger.
// Every link is written as two directed rows.
type PairingRepository struct {
	db database.DBTX
}

// NewPairingRepository creates a new pairing repository
func NewPairingRepository(db database.DBTX) *PairingRepository {
	return &PairingRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PairingRepository) WithTx(tx database.DBTX) *PairingRepository {
	return &PairingRepository{db: tx}
}

// AddPair links a and b in both directions. Existing rows are kept.
func (r *PairingRepository) AddPair(ctx context.Context, a, b int64) error {
	return database.RunInTx(ctx, r.db, func(q database.DBTX) error {
		query := q.GetDialect().InsertIgnoreQuery("account_pairs", "account_id", "paired_account_id")
		if _, err := q.ExecContext(ctx, query, a, b); err != nil {
			return fmt.Errorf("failed to add pair: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, b, a); err != nil {
			return fmt.Errorf("failed to add reverse pair: %w", err)
		}
		return nil
	})
}

// RemovePair deletes both directions of the link between a and b.
// Removing a link that does not exist is not an error.
func (r *PairingRepository) RemovePair(ctx context.Context, a, b int64) error {
	query := `
		DELETE FROM account_pairs
		WHERE (account_id = ? AND paired_account_id = ?)
		   OR (account_id = ? AND paired_account_id = ?)
	`
	if _, err := r.db.ExecContext(ctx, query, a, b, b, a); err != nil {
		return fmt.Errorf("failed to remove pair: %w", err)
	}
	return nil
}

// ListPairedIDs returns the accounts linked to accountID in pairing order
func (r *PairingRepository) ListPairedIDs(ctx context.Context, accountID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT paired_account_id FROM account_pairs WHERE account_id = ? ORDER BY id", accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query paired accounts: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan paired account: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ArePaired reports whether a has a link to b
func (r *PairingRepository) ArePaired(ctx context.Context, a, b int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM account_pairs WHERE account_id = ? AND paired_account_id = ?", a, b).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pair: %w", err)
	}
	return count > 0, nil
}

// ListPairedAccounts returns the full accounts linked to accountID in pairing order
func (r *PairingRepository) ListPairedAccounts(ctx context.Context, accountID int64) ([]models.Account, error) {
	query := `
		SELECT a.id, a.email, a.password_hash, a.name, a.birth_date, a.gender, a.invite_code, a.is_premium,
			COALESCE(a.oauth_provider, ''), COALESCE(a.oauth_subject, ''), a.created_at, a.updated_at
		FROM account_pairs ap
		INNER JOIN accounts a ON a.id = ap.paired_account_id
		WHERE ap.account_id = ?
		ORDER BY ap.id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query paired accounts: %w", err)
	}

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan paired account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		accounts[i].PairedAccountIDs, err = r.ListPairedIDs(ctx, accounts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// ListAll returns every directed pair row, for backups
func (r *PairingRepository) ListAll(ctx context.Context) ([][2]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT account_id, paired_account_id FROM account_pairs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer rows.Close()

	var pairs [][2]int64
	for rows.Next() {
		var p [2]int64
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
