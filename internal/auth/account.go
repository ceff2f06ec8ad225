package auth

import "time"

// Account is the credential record backing authentication. Accounts are never
// hard-deleted; deactivation flips IsActive instead.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool

	// RefreshFingerprint is the sha256 hex of the currently valid refresh
	// token, or empty when no session is live. At most one refresh token is
	// valid per account: issuing a new one overwrites the previous value.
	RefreshFingerprint string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicAccount is the externally visible view of an account. The password
// hash and refresh fingerprint never leave this package.
type PublicAccount struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public returns the serializable view of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Email: a.Email, Role: a.Role}
}
