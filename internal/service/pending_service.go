package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"famlink/internal/database"
	"famlink/internal/metrics"
	"famlink/internal/models"
	"famlink/internal/repository"
)

// ProposeInput describes a change one account asks a paired account to approve
type ProposeInput struct {
	ProposerID int64
	TargetID   int64
	ChildID    *int64
	Action     models.ProposalKind
	Details    json.RawMessage
}

// PendingService runs the approval queue between paired accounts
type PendingService struct {
	db       *database.DB
	accounts *repository.AccountRepository
	pairs    *repository.PairingRepository
	children *repository.ChildRepository
	pending  *repository.PendingRepository
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewPendingService creates a new pending change service
func NewPendingService(db *database.DB, accounts *repository.AccountRepository, pairs *repository.PairingRepository,
	children *repository.ChildRepository, pending *repository.PendingRepository) *PendingService {
	return &PendingService{
		db:       db,
		accounts: accounts,
		pairs:    pairs,
		children: children,
		pending:  pending,
	}
}

// WithNotifier enables approval request notifications
func (s *PendingService) WithNotifier(n Notifier) *PendingService {
	s.notifier = n
	return s
}

// WithMetrics enables proposal and resolution counters
func (s *PendingService) WithMetrics(m *metrics.Metrics) *PendingService {
	s.metrics = m
	return s
}

// Propose records a change for the target to approve. Nothing else changes
// until the target approves it.
func (s *PendingService) Propose(ctx context.Context, in ProposeInput) (*models.PendingChange, error) {
	proposal, err := DecodeProposal(in.Action, in.Details)
	if err != nil {
		return nil, err
	}
	if err := proposal.Validate(); err != nil {
		return nil, err
	}
	if in.ChildID == nil && proposal.RequiresChild() {
		return nil, fmt.Errorf("%w: child_id is required for %s", ErrInvalidInput, in.Action)
	}

	target, err := s.accounts.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target account: %w", err)
	}
	if target == nil {
		return nil, ErrAccountNotFound
	}
	if target.ID == in.ProposerID {
		return nil, fmt.Errorf("%w: cannot propose a change to yourself", ErrInvalidOperation)
	}

	paired, err := s.pairs.ArePaired(ctx, in.ProposerID, in.TargetID)
	if err != nil {
		return nil, err
	}
	if !paired {
		return nil, ErrNotPaired
	}

	if in.ChildID != nil {
		child, err := s.children.GetByID(ctx, *in.ChildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get child: %w", err)
		}
		if child == nil || !child.HasMember(in.TargetID) {
			return nil, ErrChildNotFound
		}
	}

	details, err := json.Marshal(proposal)
	if err != nil {
		return nil, fmt.Errorf("failed to encode details: %w", err)
	}

	change := &models.PendingChange{
		ProposerID: in.ProposerID,
		TargetID:   in.TargetID,
		ChildID:    in.ChildID,
		Action:     proposal.Kind(),
		Details:    details,
	}
	if err := s.pending.Create(ctx, change); err != nil {
		return nil, err
	}

	s.metrics.ObserveProposal(string(change.Action))
	s.notifyTarget(ctx, target, change)
	return change, nil
}

func (s *PendingService) notifyTarget(ctx context.Context, target *models.Account, change *models.PendingChange) {
	if s.notifier == nil {
		return
	}
	proposer, err := s.accounts.GetByID(ctx, change.ProposerID)
	if err != nil || proposer == nil {
		slog.Warn("failed to load proposer for notification", "account_id", change.ProposerID, "error", err)
		return
	}
	if err := s.notifier.NotifyPendingChange(ctx, target, proposer, change); err != nil {
		slog.Warn("failed to send pending change notification", "pending_id", change.ID, "error", err)
	}
}

// ListPendingFor returns the unresolved changes waiting on targetID
func (s *PendingService) ListPendingFor(ctx context.Context, targetID int64) ([]models.PendingChange, error) {
	changes, err := s.pending.ListPendingFor(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	return changes, nil
}

// ListProposedBy returns the changes proposerID has sent, in any status
func (s *PendingService) ListProposedBy(ctx context.Context, proposerID int64) ([]models.PendingChange, error) {
	changes, err := s.pending.ListProposedBy(ctx, proposerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposed changes: %w", err)
	}
	return changes, nil
}

// Approve marks the change approved and applies it in one transaction
func (s *PendingService) Approve(ctx context.Context, callerID, pendingID int64) (*models.PendingChange, error) {
	return s.resolve(ctx, callerID, pendingID, models.StatusApproved)
}

// Reject marks the change rejected with no other effect
func (s *PendingService) Reject(ctx context.Context, callerID, pendingID int64) (*models.PendingChange, error) {
	return s.resolve(ctx, callerID, pendingID, models.StatusRejected)
}

func (s *PendingService) resolve(ctx context.Context, callerID, pendingID int64, to models.PendingStatus) (*models.PendingChange, error) {
	var resolved *models.PendingChange

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		pending := s.pending.WithTx(tx)

		change, err := pending.GetByID(ctx, pendingID)
		if err != nil {
			return err
		}
		if change == nil || change.TargetID != callerID {
			return ErrPendingNotFound
		}
		if change.Status.IsTerminal() {
			return ErrAlreadyResolved
		}

		ok, err := pending.Transition(ctx, change.ID, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyResolved
		}

		if to == models.StatusApproved {
			proposal, err := DecodeProposal(change.Action, change.Details)
			if err != nil {
				return fmt.Errorf("failed to decode stored proposal %d: %w", change.ID, err)
			}
			if err := proposal.Apply(ctx, tx, change); err != nil {
				return fmt.Errorf("failed to apply %s: %w", change.Action, err)
			}
		}

		resolved, err = pending.GetByID(ctx, change.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveResolution(string(resolved.Action), string(resolved.Status))
	slog.Info("pending change resolved", "pending_id", resolved.ID, "action", resolved.Action, "status", resolved.Status)
	return resolved, nil
}
