package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"famlink/internal/database"
	"famlink/internal/models"
	"famlink/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Accounts   []AccountBackup        `json:"accounts"`
	Pairs      []PairBackup           `json:"pairs"`
	Children   []models.Child         `json:"children"`
	Notes      []models.Note          `json:"notes"`
	Pending    []models.PendingChange `json:"pending_changes"`
	Activities []models.Activity      `json:"activities"`
}

// AccountBackup is an account record including its credential hash
type AccountBackup struct {
	ID            int64        `json:"id"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"password_hash"`
	Name          string       `json:"name"`
	BirthDate     *models.Date `json:"birth_date,omitempty"`
	Gender        string       `json:"gender"`
	InviteCode    string       `json:"invite_code"`
	IsPremium     bool         `json:"is_premium"`
	OAuthProvider string       `json:"oauth_provider"`
	OAuthSubject  string       `json:"oauth_subject"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// PairBackup is one directed row of the pairing ledger
type PairBackup struct {
	AccountID       int64 `json:"account_id"`
	PairedAccountID int64 `json:"paired_account_id"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db         *database.DB
	accounts   *repository.AccountRepository
	pairs      *repository.PairingRepository
	children   *repository.ChildRepository
	notes      *repository.NoteRepository
	pending    *repository.PendingRepository
	activities *repository.ActivityRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:         db,
		accounts:   repository.NewAccountRepository(db),
		pairs:      repository.NewPairingRepository(db),
		children:   repository.NewChildRepository(db),
		notes:      repository.NewNoteRepository(db),
		pending:    repository.NewPendingRepository(db),
		activities: repository.NewActivityRepository(db),
	}
}

// Export writes a complete backup of the database to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	return file.Close()
}

// ExportToWriter encodes a complete backup to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	slog.Info("starting database export")

	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("database export completed",
		"accounts", len(backup.Accounts),
		"children", len(backup.Children),
		"notes", len(backup.Notes),
		"pending_changes", len(backup.Pending),
		"activities", len(backup.Activities),
	)
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{Version: backupVersion, ExportedAt: time.Now().UTC()}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}
	for _, a := range accounts {
		backup.Accounts = append(backup.Accounts, AccountBackup{
			ID:            a.ID,
			Email:         a.Email,
			PasswordHash:  a.PasswordHash,
			Name:          a.Name,
			BirthDate:     a.BirthDate,
			Gender:        a.Gender,
			InviteCode:    a.InviteCode,
			IsPremium:     a.IsPremium,
			OAuthProvider: a.OAuthProvider,
			OAuthSubject:  a.OAuthSubject,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		})
	}

	pairs, err := s.pairs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export pairs: %w", err)
	}
	for _, p := range pairs {
		backup.Pairs = append(backup.Pairs, PairBackup{AccountID: p[0], PairedAccountID: p[1]})
	}

	children, err := s.children.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export children: %w", err)
	}
	for _, c := range children {
		c.Members, err = s.children.ListMemberIDs(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export members of child %d: %w", c.ID, err)
		}
		backup.Children = append(backup.Children, c)
	}

	if backup.Notes, err = s.notes.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	if backup.Pending, err = s.pending.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export pending changes: %w", err)
	}
	if backup.Activities, err = s.activities.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export activities: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in a single transaction, keeping IDs
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	slog.Info("starting database import", "exported_at", backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		steps := []struct {
			name string
			fn   func(context.Context, *database.Tx, *BackupData) error
		}{
			{"accounts", importAccounts},
			{"pairs", importPairs},
			{"children", importChildren},
			{"notes", importNotes},
			{"pending changes", importPending},
			{"activities", importActivities},
		}
		for _, step := range steps {
			if err := step.fn(ctx, tx, &backup); err != nil {
				return fmt.Errorf("failed to import %s: %w", step.name, err)
			}
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	slog.Info("database import completed", "accounts", len(backup.Accounts), "children", len(backup.Children))
	return nil
}

// SetPremium toggles an account's premium flag
func (s *BackupService) SetPremium(ctx context.Context, email string, premium bool) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if _, err := s.accounts.SetPremium(ctx, account.ID, premium); err != nil {
		return err
	}
	slog.Info("premium flag updated", "account_id", account.ID, "premium", premium)
	return nil
}

func importAccounts(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, name, birth_date, gender, invite_code, is_premium,
			oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, a := range b.Accounts {
		var birth any
		if a.BirthDate != nil {
			birth = a.BirthDate.Time
		}
		_, err := tx.ExecContext(ctx, query, a.ID, a.Email, a.PasswordHash, a.Name, birth, a.Gender, a.InviteCode,
			a.IsPremium, nullIfEmpty(a.OAuthProvider), nullIfEmpty(a.OAuthSubject), a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("account %d: %w", a.ID, err)
		}
	}
	return nil
}

func importPairs(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := tx.GetDialect().InsertIgnoreQuery("account_pairs", "account_id", "paired_account_id")
	for _, p := range b.Pairs {
		if _, err := tx.ExecContext(ctx, query, p.AccountID, p.PairedAccountID); err != nil {
			return fmt.Errorf("pair %d-%d: %w", p.AccountID, p.PairedAccountID, err)
		}
	}
	return nil
}

func importChildren(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := "INSERT INTO children (id, owner_id, name, birth_date, gender, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	members := repository.NewChildRepository(tx)
	for _, c := range b.Children {
		var birth any
		if c.BirthDate != nil {
			birth = c.BirthDate.Time
		}
		if _, err := tx.ExecContext(ctx, query, c.ID, c.OwnerID, c.Name, birth, c.Gender, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("child %d: %w", c.ID, err)
		}
		if err := members.AddMembers(ctx, c.ID, c.Members...); err != nil {
			return fmt.Errorf("child %d: %w", c.ID, err)
		}
	}
	return nil
}

func importNotes(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := "INSERT INTO notes (id, owner_id, title, body, archived, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, n := range b.Notes {
		if _, err := tx.ExecContext(ctx, query, n.ID, n.OwnerID, n.Title, n.Body, n.Archived, n.CreatedAt, n.UpdatedAt); err != nil {
			return fmt.Errorf("note %d: %w", n.ID, err)
		}
	}
	return nil
}

func importPending(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := `
		INSERT INTO pending_changes (id, proposer_id, target_id, child_id, action, details, status, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range b.Pending {
		var childID, resolvedAt any
		if p.ChildID != nil {
			childID = *p.ChildID
		}
		if p.ResolvedAt != nil {
			resolvedAt = *p.ResolvedAt
		}
		details := "{}"
		if len(p.Details) > 0 {
			var compact bytes.Buffer
			if err := json.Compact(&compact, p.Details); err != nil {
				return fmt.Errorf("pending change %d: invalid details: %w", p.ID, err)
			}
			details = compact.String()
		}
		_, err := tx.ExecContext(ctx, query, p.ID, p.ProposerID, p.TargetID, childID, string(p.Action), details,
			string(p.Status), p.CreatedAt, resolvedAt)
		if err != nil {
			return fmt.Errorf("pending change %d: %w", p.ID, err)
		}
	}
	return nil
}

func importActivities(ctx context.Context, tx *database.Tx, b *BackupData) error {
	query := `
		INSERT INTO activities (id, child_id, recorded_by, kind, day, detail, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, a := range b.Activities {
		_, err := tx.ExecContext(ctx, query, a.ID, a.ChildID, a.RecordedBy, string(a.Kind), a.Day.Time, a.Detail, a.Completed, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("activity %d: %w", a.ID, err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL id sequences past the imported IDs
func resetSequences(ctx context.Context, tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"accounts", "children", "notes", "pending_changes", "activities"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
