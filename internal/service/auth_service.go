package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"famlink/internal/credentials"
	"famlink/internal/models"
	"famlink/internal/repository"
	"famlink/internal/security"
	"famlink/internal/validation"
)

// AuthResult is returned by every sign-in path
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

// RegisterInput holds the fields accepted at sign-up
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	BirthDate *models.Date
	Gender    string
}

// ProfileUpdate holds the editable profile fields
type ProfileUpdate struct {
	Name      string
	BirthDate *models.Date
	Gender    string
}

// AuthService handles accounts, tokens and profiles
type AuthService struct {
	accounts *repository.AccountRepository
	tokens   *security.TokenManager
	revoked  security.RevocationStore
}

// NewAuthService creates a new auth service
func NewAuthService(accounts *repository.AccountRepository, tokens *security.TokenManager, revoked security.RevocationStore) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		revoked:  revoked,
	}
}

// Register creates a new account with a fresh invite code and signs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateGender(in.Gender); err != nil {
		return nil, invalidInput(err)
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(in.Name),
		BirthDate:    in.BirthDate,
		Gender:       in.Gender,
	}
	if err := s.create(ctx, account); err != nil {
		return nil, err
	}

	return s.issue(account)
}

// create assigns an invite code and inserts the account
func (s *AuthService) create(ctx context.Context, account *models.Account) error {
	code, err := credentials.GenerateInviteCode(ctx, s.accounts.InviteCodeExists)
	if err != nil {
		return fmt.Errorf("failed to generate invite code: %w", err)
	}
	account.InviteCode = code
	account.PairedAccountIDs = []int64{}

	if err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || !security.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(account)
}

// Authenticate resolves a bearer token to its account
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, *security.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthenticated, security.ErrInvalidToken)
	}

	accountID, err := claims.AccountID()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
	}
	return account, claims, nil
}

// Logout revokes the token described by claims
func (s *AuthService) Logout(ctx context.Context, claims *security.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// OAuthIdentity is the profile an OAuth provider returned for a sign-in
type OAuthIdentity struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// OAuthLogin signs in with an external identity, linking it to an existing
// account with the same email or creating a new one. An identity already
// linked signs in directly; otherwise the provider must have verified the email.
func (s *AuthService) OAuthLogin(ctx context.Context, id OAuthIdentity) (*AuthResult, error) {
	provider, subject, name := id.Provider, id.Subject, id.Name
	if provider == "" || subject == "" {
		return nil, fmt.Errorf("%w: missing oauth provider information", ErrInvalidInput)
	}
	email := normalizeEmail(id.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, invalidInput(err)
	}

	account, err := s.accounts.GetByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth account: %w", err)
	}
	if account != nil {
		return s.issue(account)
	}
	if !id.EmailVerified {
		return nil, ErrEmailUnverified
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if err := s.accounts.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		existing.OAuthProvider = provider
		existing.OAuthSubject = subject
		return s.issue(existing)
	}

	if strings.TrimSpace(name) == "" {
		name = strings.Split(email, "@")[0]
	}
	account = &models.Account{
		Email:         email,
		Name:          strings.TrimSpace(name),
		OAuthProvider: provider,
		OAuthSubject:  subject,
	}
	if err := s.create(ctx, account); err != nil {
		return nil, err
	}
	slog.Info("created account from oauth sign-in", "provider", provider, "account_id", account.ID)
	return s.issue(account)
}

// GetProfile returns an account with its paired list
func (s *AuthService) GetProfile(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateProfile validates and stores new profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, accountID int64, in ProfileUpdate) (*models.Account, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, invalidInput(err)
	}
	if err := validation.ValidateGender(in.Gender); err != nil {
		return nil, invalidInput(err)
	}
	if _, err := s.GetProfile(ctx, accountID); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateProfile(ctx, accountID, strings.TrimSpace(in.Name), in.BirthDate, in.Gender); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, accountID)
}

// RegenerateInviteCode replaces the account's invite code. Existing pairs
// are unaffected; only the old code stops resolving.
func (s *AuthService) RegenerateInviteCode(ctx context.Context, accountID int64) (*models.Account, error) {
	if _, err := s.GetProfile(ctx, accountID); err != nil {
		return nil, err
	}

	code, err := credentials.GenerateInviteCode(ctx, s.accounts.InviteCodeExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}
	if err := s.accounts.UpdateInviteCode(ctx, accountID, code); err != nil {
		return nil, fmt.Errorf("failed to regenerate invite code: %w", err)
	}
	return s.GetProfile(ctx, accountID)
}

func (s *AuthService) issue(account *models.Account) (*AuthResult, error) {
	token, claims, err := s.tokens.Generate(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Account:   account,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

