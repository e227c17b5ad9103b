package models

import (
	"encoding/json"
	"time"
)

// PendingStatus is the resolution state of a pending change
type PendingStatus string

const (
	StatusPending  PendingStatus = "pending"
	StatusApproved PendingStatus = "approved"
	StatusRejected PendingStatus = "rejected"
)

// IsTerminal reports whether the status can no longer change
func (s PendingStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ProposalKind tags what a pending change asks for
type ProposalKind string

const (
	// ProposalAddChild shares a child between the proposer and the target.
	ProposalAddChild ProposalKind = "add_child"
	// ProposalUpdateChild edits a child's profile.
	ProposalUpdateChild ProposalKind = "update_child"
)

// PendingChange is a change proposed by one account that waits for the
// target account's approval.
type PendingChange struct {
	ID         int64           `json:"id"`
	ProposerID int64           `json:"proposer_id"`
	TargetID   int64           `json:"target_id"`
	ChildID    *int64          `json:"child_id"`
	Action     ProposalKind    `json:"action"`
	Details    json.RawMessage `json:"details"`
	Status     PendingStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}
