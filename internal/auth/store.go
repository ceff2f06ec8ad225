package auth

import "context"

// Store describes persistence of credential records. Implementations must
// apply fingerprint writes as atomic single-record updates; the service layer
// never takes its own locks around them.
type Store interface {
	// Create persists a new account. ErrDuplicateAccount is returned when the
	// normalized email is already taken.
	Create(ctx context.Context, acc *Account) error

	// FindByID returns ErrNotFound when no account exists.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindByEmail looks up by normalized (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// SetRefreshFingerprint overwrites the stored fingerprint, implicitly
	// invalidating any previously issued refresh token. Last write wins for
	// concurrent logins.
	SetRefreshFingerprint(ctx context.Context, id, fingerprint string) error

	// ClearRefreshFingerprint removes the stored fingerprint. Clearing an
	// already-empty fingerprint is not an error.
	ClearRefreshFingerprint(ctx context.Context, id string) error

	// SetActive flips the soft-delete flag.
	SetActive(ctx context.Context, id string, active bool) error
}
