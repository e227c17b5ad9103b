package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"famlink/internal/models"
	"famlink/internal/service"
)

// PendingHandler handles the approval queue between paired accounts
type PendingHandler struct {
	pendingService *service.PendingService
}

// NewPendingHandler creates a new pending change handler
func NewPendingHandler(pendingService *service.PendingService) *PendingHandler {
	return &PendingHandler{pendingService: pendingService}
}

type proposeRequest struct {
	TargetID int64               `json:"target_id"`
	ChildID  *int64              `json:"child_id"`
	Action   models.ProposalKind `json:"action"`
	Details  json.RawMessage     `json:"details"`
}

// Propose asks a paired account to approve a change
func (h *PendingHandler) Propose(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	var req proposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	change, err := h.pendingService.Propose(r.Context(), service.ProposeInput{
		ProposerID: account.ID,
		TargetID:   req.TargetID,
		ChildID:    req.ChildID,
		Action:     req.Action,
		Details:    req.Details,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, change)
}

// ListPending returns the changes waiting on the caller's approval
func (h *PendingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	changes, err := h.pendingService.ListPendingFor(r.Context(), account.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, changes)
}

// ListSent returns the changes the caller has proposed
func (h *PendingHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	changes, err := h.pendingService.ListProposedBy(r.Context(), account.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, changes)
}

// Approve accepts and applies a pending change
func (h *PendingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.pendingService.Approve)
}

// Reject declines a pending change
func (h *PendingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.pendingService.Reject)
}

func (h *PendingHandler) resolve(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, callerID, pendingID int64) (*models.PendingChange, error)) {
	account := GetAccountFromContext(r.Context())
	pendingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	change, err := fn(r.Context(), account.ID, pendingID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, change)
}
