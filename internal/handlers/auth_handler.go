package handlers

import (
	"net/http"
	"time"

	"famlink/internal/models"
	"famlink/internal/service"
)

// AuthHandler handles sign-in and profile requests
type AuthHandler struct {
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type authResponse struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	Account   models.AccountProfile `json:"account"`
}

func newAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Account:   res.Account.Profile(),
	}
}

type registerRequest struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	Name      string       `json:"name"`
	BirthDate *models.Date `json:"birth_date"`
	Gender    string       `json:"gender"`
}

// Register creates an account and returns a token for it
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newAuthResponse(res))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newAuthResponse(res))
}

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), GetClaimsFromContext(r.Context())); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, account.Profile())
}

type profileRequest struct {
	Name      string       `json:"name"`
	BirthDate *models.Date `json:"birth_date"`
	Gender    string       `json:"gender"`
}

// UpdateMe replaces the caller's editable profile fields
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(r.Context(), account.ID, service.ProfileUpdate{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated.Profile())
}

// RegenerateInviteCode issues the caller a new invite code
func (h *AuthHandler) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	updated, err := h.authService.RegenerateInviteCode(r.Context(), account.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated.Profile())
}
