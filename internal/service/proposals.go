package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"famlink/internal/database"
	"famlink/internal/models"
	"famlink/internal/repository"
)

// Proposal is the typed payload of a pending change. Each kind validates
// its own payload and knows how to apply itself once approved.
type Proposal interface {
	Kind() models.ProposalKind
	Validate() error
	// RequiresChild reports whether the change must reference a child.
	RequiresChild() bool
	// Apply runs inside the approval transaction. A missing child makes it a no-op.
	Apply(ctx context.Context, tx database.DBTX, change *models.PendingChange) error
}

// AddChildProposal asks the target to share one of their children with the proposer
type AddChildProposal struct {
	Message string `json:"message,omitempty"`
}

func (p *AddChildProposal) Kind() models.ProposalKind { return models.ProposalAddChild }

func (p *AddChildProposal) RequiresChild() bool { return false }

func (p *AddChildProposal) Validate() error {
	if len(p.Message) > 500 {
		return fmt.Errorf("%w: message must be at most 500 characters", ErrInvalidInput)
	}
	return nil
}

// Apply adds both the approver and the proposer to the child's members
func (p *AddChildProposal) Apply(ctx context.Context, tx database.DBTX, change *models.PendingChange) error {
	if change.ChildID == nil {
		return nil
	}
	children := repository.NewChildRepository(tx)
	child, err := children.GetByID(ctx, *change.ChildID)
	if err != nil || child == nil {
		return err
	}
	return children.AddMembers(ctx, child.ID, change.TargetID, change.ProposerID)
}

// UpdateChildProposal asks the target to accept edits to a shared child's profile
type UpdateChildProposal struct {
	models.ChildPatch
}

func (p *UpdateChildProposal) Kind() models.ProposalKind { return models.ProposalUpdateChild }

func (p *UpdateChildProposal) RequiresChild() bool { return true }

func (p *UpdateChildProposal) Validate() error {
	return validateChildPatch(p.ChildPatch)
}

func (p *UpdateChildProposal) Apply(ctx context.Context, tx database.DBTX, change *models.PendingChange) error {
	if change.ChildID == nil {
		return nil
	}
	children := repository.NewChildRepository(tx)
	child, err := children.GetByID(ctx, *change.ChildID)
	if err != nil || child == nil {
		return err
	}
	p.ApplyTo(child)
	return children.Update(ctx, child)
}

var proposalKinds = map[models.ProposalKind]func() Proposal{
	models.ProposalAddChild:    func() Proposal { return &AddChildProposal{} },
	models.ProposalUpdateChild: func() Proposal { return &UpdateChildProposal{} },
}

// DecodeProposal parses details into the payload type registered for kind
func DecodeProposal(kind models.ProposalKind, details json.RawMessage) (Proposal, error) {
	newProposal, ok := proposalKinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProposal, kind)
	}

	p := newProposal()
	trimmed := bytes.TrimSpace(details)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: invalid %s details: %v", ErrInvalidInput, kind, err)
	}
	return p, nil
}
