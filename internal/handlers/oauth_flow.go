package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"famlink/internal/security"
	"famlink/internal/service"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

type oauthUserInfo struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

type oauthProviderView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ListOAuthProviders returns the configured sign-in providers
func (h *AuthHandler) ListOAuthProviders(w http.ResponseWriter, r *http.Request) {
	views := []oauthProviderView{}
	for key, provider := range h.oauthProviders {
		if !provider.configured() {
			continue
		}
		views = append(views, oauthProviderView{
			Name:  key,
			Label: provider.Label,
			URL:   fmt.Sprintf("/api/auth/%s/start", key),
		})
	}
	respondWithJSON(w, http.StatusOK, views)
}

// StartOAuth redirects to the provider's consent page
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		respondWithError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := security.GenerateID()
	http.SetCookie(w, security.CreateTempCookie(r, oauthStateCookie, state, oauthCookieTTL))
	http.SetCookie(w, security.CreateTempCookie(r, oauthProviderCookie, providerKey, oauthCookieTTL))

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for key, value := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}

	http.Redirect(w, r, config.AuthCodeURL(state, options...), http.StatusFound)
}

// OAuthCallback completes the provider round trip and returns a token
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		respondWithError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}
	if providerCookie, err := r.Cookie(oauthProviderCookie); err == nil && providerCookie.Value != providerKey {
		respondWithError(w, http.StatusBadRequest, "OAuth provider mismatch", "", nil)
		return
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, oauthStateCookie))
	http.SetCookie(w, security.CreateDeleteCookie(r, oauthProviderCookie))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "oauth code exchange failed", err)
		return
	}

	info, err := fetchUserInfo(ctx, provider, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch OAuth profile", "oauth user info failed", err)
		return
	}

	res, err := h.authService.OAuthLogin(r.Context(), service.OAuthIdentity{
		Provider:      providerKey,
		Subject:       info.Subject,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: info.EmailVerified,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newAuthResponse(res))
}

// fetchUserInfo reads the OpenID-style profile from the provider. Google
// returns "id"; other providers use "sub".
func fetchUserInfo(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: %w", provider.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: status %d", provider.Name, resp.StatusCode)
	}

	return decodeUserInfo(resp.Body, provider.Name)
}

// decodeUserInfo accepts Google's v2 profile ("id", "verified_email") and
// OpenID Connect claims ("sub", "email_verified").
func decodeUserInfo(r io.Reader, providerName string) (oauthUserInfo, error) {
	var payload struct {
		ID            string `json:"id"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info: %w", providerName, err)
	}

	subject := payload.ID
	if subject == "" {
		subject = payload.Sub
	}
	if subject == "" || payload.Email == "" {
		return oauthUserInfo{}, errors.New("provider did not return an id and email")
	}
	return oauthUserInfo{
		Subject:       subject,
		Email:         payload.Email,
		Name:          payload.Name,
		EmailVerified: payload.VerifiedEmail || payload.EmailVerified,
	}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/api/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}
