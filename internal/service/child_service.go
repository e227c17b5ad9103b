package service

import (
	"context"
	"fmt"
	"strings"

	"famlink/internal/database"
	"famlink/internal/models"
	"famlink/internal/repository"
	"famlink/internal/validation"
)

// ChildInput holds the fields for a new child
type ChildInput struct {
	Name      string
	BirthDate *models.Date
	Gender    string
}

// ChildService manages children and who may see them
type ChildService struct {
	db        *database.DB
	accounts  *repository.AccountRepository
	children  *repository.ChildRepository
	freeLimit int
}

// NewChildService creates a new child service. Non-premium accounts may own
// at most freeLimit children; zero or less disables the limit.
func NewChildService(db *database.DB, accounts *repository.AccountRepository, children *repository.ChildRepository, freeLimit int) *ChildService {
	return &ChildService{
		db:        db,
		accounts:  accounts,
		children:  children,
		freeLimit: freeLimit,
	}
}

// CreateChild creates a child owned by ownerID and shared with the invited
// accounts, which must all be paired with the owner.
func (s *ChildService) CreateChild(ctx context.Context, ownerID int64, in ChildInput, invited []int64) (*models.Child, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateChildName(in.Name); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateGender(in.Gender); err != nil {
		return nil, invalidInput(err)
	}

	owner, err := s.accounts.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}

	members := []int64{ownerID}
	for _, id := range invited {
		if id == ownerID {
			continue
		}
		if !owner.IsPairedWith(id) {
			return nil, ErrMemberNotPaired
		}
		members = append(members, id)
	}

	child := &models.Child{
		OwnerID:   ownerID,
		Name:      in.Name,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		children := s.children.WithTx(tx)
		if !owner.IsPremium && s.freeLimit > 0 {
			count, err := children.CountOwned(ctx, ownerID)
			if err != nil {
				return err
			}
			if count >= s.freeLimit {
				return ErrQuotaExceeded
			}
		}
		return children.Create(ctx, child, members)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// ListVisibleChildren returns the children accountID owns or is a member of
func (s *ChildService) ListVisibleChildren(ctx context.Context, accountID int64) ([]models.Child, error) {
	children, err := s.children.ListVisible(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// GetChild returns a child if accountID is one of its members
func (s *ChildService) GetChild(ctx context.Context, accountID, childID int64) (*models.Child, error) {
	child, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || !child.HasMember(accountID) {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// UpdateChild applies patch for any member of the child
func (s *ChildService) UpdateChild(ctx context.Context, accountID, childID int64, patch models.ChildPatch) (*models.Child, error) {
	if err := validateChildPatch(patch); err != nil {
		return nil, err
	}

	child, err := s.GetChild(ctx, accountID, childID)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(child)
	if err := s.children.Update(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// DeleteChild removes a child for any member of it
func (s *ChildService) DeleteChild(ctx context.Context, accountID, childID int64) error {
	if _, err := s.GetChild(ctx, accountID, childID); err != nil {
		return err
	}
	return s.children.Delete(ctx, childID)
}

func validateChildPatch(patch models.ChildPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if err := validation.ValidateChildName(trimmed); err != nil {
			return invalidInput(err)
		}
		*patch.Name = trimmed
	}
	if patch.Gender != nil {
		if err := validation.ValidateGender(*patch.Gender); err != nil {
			return invalidInput(err)
		}
	}
	return nil
}
