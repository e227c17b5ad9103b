package handlers

import (
	"net/http"

	"famlink/internal/models"
	"famlink/internal/service"
)

// PairingHandler handles co-parent pairing requests
type PairingHandler struct {
	pairingService *service.PairingService
}

// NewPairingHandler creates a new pairing handler
func NewPairingHandler(pairingService *service.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: pairingService}
}

type pairRequest struct {
	InviteCode string `json:"invite_code"`
}

// Pair links the caller with the owner of an invite code
func (h *PairingHandler) Pair(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	var req pairRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	partner, err := h.pairingService.Pair(r.Context(), account.ID, req.InviteCode)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, partner.Profile())
}

// Unpair removes the link with another account
func (h *PairingHandler) Unpair(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	targetID, ok := pathID(w, r, "accountId")
	if !ok {
		return
	}

	if err := h.pairingService.Unpair(r.Context(), account.ID, targetID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPaired returns the caller's paired accounts
func (h *PairingHandler) ListPaired(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	accounts, err := h.pairingService.ListPaired(r.Context(), account.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.Profiles(accounts))
}
