package service

import (
	"context"
	"fmt"
	"log/slog"

	"famlink/internal/config"
	"famlink/internal/credentials"
	"famlink/internal/database"
	"famlink/internal/metrics"
	"famlink/internal/models"
	"famlink/internal/repository"
)

// PairingService maintains the co-parent pairing ledger
type PairingService struct {
	db       *database.DB
	accounts *repository.AccountRepository
	pairs    *repository.PairingRepository
	policy   string
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewPairingService creates a new pairing service. policy is one of
// config.PairingPolicyMulti or config.PairingPolicyExclusive.
func NewPairingService(db *database.DB, accounts *repository.AccountRepository, pairs *repository.PairingRepository, policy string) *PairingService {
	return &PairingService{
		db:       db,
		accounts: accounts,
		pairs:    pairs,
		policy:   policy,
	}
}

// WithNotifier enables pairing notifications
func (s *PairingService) WithNotifier(n Notifier) *PairingService {
	s.notifier = n
	return s
}

// WithMetrics enables pairing counters
func (s *PairingService) WithMetrics(m *metrics.Metrics) *PairingService {
	s.metrics = m
	return s
}

// Pair links requesterID with the account owning inviteCode and returns
// that account. Pairing an already linked account succeeds without change.
func (s *PairingService) Pair(ctx context.Context, requesterID int64, inviteCode string) (partner *models.Account, err error) {
	defer func() { s.metrics.ObservePairing("pair", err) }()

	code := credentials.NormalizeInviteCode(inviteCode)
	if !credentials.IsWellFormedInviteCode(code) {
		return nil, ErrInvalidInviteCode
	}

	target, err := s.accounts.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invite code: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: no account uses this invite code", ErrNotFound)
	}
	if target.ID == requesterID {
		return nil, ErrSelfPair
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		pairs := s.pairs.WithTx(tx)
		if err := s.checkPolicy(ctx, pairs, requesterID, target.ID); err != nil {
			return err
		}
		return pairs.AddPair(ctx, requesterID, target.ID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("accounts paired", "account_id", requesterID, "paired_account_id", target.ID)

	partner, err = s.accounts.GetByID(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload paired account: %w", err)
	}

	s.notifyPaired(ctx, requesterID, partner)
	return partner, nil
}

// checkPolicy enforces the exclusive policy for both sides of a new link
func (s *PairingService) checkPolicy(ctx context.Context, pairs *repository.PairingRepository, a, b int64) error {
	if s.policy != config.PairingPolicyExclusive {
		return nil
	}
	for _, side := range [][2]int64{{a, b}, {b, a}} {
		ids, err := pairs.ListPairedIDs(ctx, side[0])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id != side[1] {
				return ErrAlreadyPaired
			}
		}
	}
	return nil
}

func (s *PairingService) notifyPaired(ctx context.Context, requesterID int64, partner *models.Account) {
	if s.notifier == nil {
		return
	}
	requester, err := s.accounts.GetByID(ctx, requesterID)
	if err != nil || requester == nil {
		slog.Warn("failed to load requester for pairing notification", "account_id", requesterID, "error", err)
		return
	}
	if err := s.notifier.NotifyPaired(ctx, partner, requester); err != nil {
		slog.Warn("failed to send pairing notification", "account_id", partner.ID, "error", err)
	}
}

// Unpair removes the link between accountID and targetID in both
// directions. Unlinking accounts that are not paired is a no-op.
func (s *PairingService) Unpair(ctx context.Context, accountID, targetID int64) (err error) {
	defer func() { s.metrics.ObservePairing("unpair", err) }()

	if err := s.pairs.RemovePair(ctx, accountID, targetID); err != nil {
		return err
	}
	slog.Info("accounts unpaired", "account_id", accountID, "paired_account_id", targetID)
	return nil
}

// ListPaired returns the accounts linked to accountID in pairing order
func (s *PairingService) ListPaired(ctx context.Context, accountID int64) ([]models.Account, error) {
	accounts, err := s.pairs.ListPairedAccounts(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paired accounts: %w", err)
	}
	return accounts, nil
}

