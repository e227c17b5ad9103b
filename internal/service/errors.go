package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes with errors.Is;
// the specific errors below wrap one of them.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrAlreadyResolved  = errors.New("pending change already resolved")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrConflict         = errors.New("conflict")
)

var (
	ErrAccountNotFound  = fmt.Errorf("%w: account not found", ErrNotFound)
	ErrChildNotFound    = fmt.Errorf("%w: child not found", ErrNotFound)
	ErrNoteNotFound     = fmt.Errorf("%w: note not found", ErrNotFound)
	ErrPendingNotFound  = fmt.Errorf("%w: pending change not found", ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("%w: activity not found", ErrNotFound)

	ErrInvalidInviteCode = fmt.Errorf("%w: invite code must be 6 characters", ErrInvalidInput)
	ErrUnknownProposal   = fmt.Errorf("%w: unknown proposal kind", ErrInvalidInput)

	ErrSelfPair        = fmt.Errorf("%w: cannot pair with yourself", ErrInvalidOperation)
	ErrAlreadyPaired   = fmt.Errorf("%w: account is already paired", ErrInvalidOperation)
	ErrNotPaired       = fmt.Errorf("%w: accounts are not paired", ErrInvalidOperation)
	ErrMemberNotPaired = fmt.Errorf("%w: children can only be shared with paired accounts", ErrInvalidOperation)
	ErrNotNoteOwner    = fmt.Errorf("%w: only the owner can change this note", ErrInvalidOperation)
	ErrQuotaExceeded   = fmt.Errorf("%w: child limit reached, upgrade to premium to add more", ErrInvalidOperation)
	ErrEmailUnverified = fmt.Errorf("%w: the sign-in provider has not verified this email", ErrInvalidOperation)

	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
)

// invalidInput tags a validation failure as ErrInvalidInput, keeping the
// original error reachable through errors.As.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
