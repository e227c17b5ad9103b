package models

import "time"

// Account represents a parent account in the system
type Account struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	BirthDate     *Date
	Gender        string
	InviteCode    string
	IsPremium     bool
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// PairedAccountIDs lists linked co-parents in pairing order.
	PairedAccountIDs []int64
}

// PrimaryPairedID returns the first paired account, kept for clients that
// only understand a single co-parent.
func (a *Account) PrimaryPairedID() *int64 {
	if len(a.PairedAccountIDs) == 0 {
		return nil
	}
	id := a.PairedAccountIDs[0]
	return &id
}

// IsPairedWith reports whether other is in the account's paired list.
func (a *Account) IsPairedWith(other int64) bool {
	for _, id := range a.PairedAccountIDs {
		if id == other {
			return true
		}
	}
	return false
}

// Profile returns the public view of the account. Every account-shaped
// response goes through this so the password hash never leaves the server.
func (a *Account) Profile() AccountProfile {
	paired := a.PairedAccountIDs
	if paired == nil {
		paired = []int64{}
	}
	return AccountProfile{
		ID:              a.ID,
		Email:           a.Email,
		Name:            a.Name,
		BirthDate:       a.BirthDate,
		Gender:          a.Gender,
		InviteCode:      a.InviteCode,
		IsPremium:       a.IsPremium,
		PairedAccountID: a.PrimaryPairedID(),
		PairedAccounts:  paired,
		CreatedAt:       a.CreatedAt,
	}
}

// AccountProfile is the serializable account shape.
type AccountProfile struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	BirthDate       *Date     `json:"birth_date,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	InviteCode      string    `json:"invite_code"`
	IsPremium       bool      `json:"is_premium"`
	PairedAccountID *int64    `json:"paired_account_id"`
	PairedAccounts  []int64   `json:"paired_accounts"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profiles converts a slice of accounts to public profiles
func Profiles(accounts []Account) []AccountProfile {
	profiles := make([]AccountProfile, 0, len(accounts))
	for i := range accounts {
		profiles = append(profiles, accounts[i].Profile())
	}
	return profiles
}
