package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Service orchestrates the login session lifecycle: credential verification,
// token issuance, refresh, and invalidation. Every operation is a synchronous
// unit of work; concurrency safety comes from the store's per-record atomic
// updates, not from in-process locking.
type Service struct {
	store      Store
	tokens     *TokenIssuer
	bcryptCost int
	now        func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithBcryptCost tunes the password hashing cost. Previously stored digests
// remain verifiable because bcrypt embeds the cost in its output.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the session service.
func NewService(store Store, tokens *TokenIssuer, opts ...ServiceOption) *Service {
	svc := &Service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Session is the result of a successful login.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Account          PublicAccount
}

// Login verifies credentials and establishes a session. An unknown email and a
// wrong password both fail with the same ErrInvalidCredentials value; only a
// provisioned-but-deactivated account is distinguishable (ErrAccountInactive).
// The new refresh fingerprint overwrites any prior one, so a concurrent login
// invalidates the earlier session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		// A store outage must surface as infrastructure failure, never as a
		// credential rejection.
		return Session{}, err
	}
	if !acc.IsActive {
		return Session{}, ErrAccountInactive
	}
	if !CheckPassword(acc.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	access, accessExp, err := s.tokens.IssueAccess(acc)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(acc.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.store.SetRefreshFingerprint(ctx, acc.ID, Fingerprint(refresh)); err != nil {
		return Session{}, fmt.Errorf("persist refresh fingerprint: %w", err)
	}

	return Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		Account:          acc.Public(),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself is not rotated: the same token stays valid until expiry or the
// next login. A cryptographically valid token whose fingerprint no longer
// matches the stored one (superseded by a newer login, or cleared by logout)
// is rejected with ErrRefreshTokenInvalid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, ErrRefreshTokenInvalid
	}

	acc, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrAccountInactive
		}
		return "", time.Time{}, err
	}
	if !acc.IsActive {
		return "", time.Time{}, ErrAccountInactive
	}
	if !FingerprintEqual(acc.RefreshFingerprint, refreshToken) {
		return "", time.Time{}, ErrRefreshTokenInvalid
	}

	access, exp, err := s.tokens.IssueAccess(acc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}
	return access, exp, nil
}

// Logout clears the stored refresh fingerprint. Idempotent: logging out twice
// is not an error.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return ErrUnauthorized
	}
	return s.store.ClearRefreshFingerprint(ctx, accountID)
}

// Register creates a new account. Role defaults to the lowest-privilege role
// when empty; new accounts start active.
func (s *Service) Register(ctx context.Context, email, password string, role Role) (PublicAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return PublicAccount{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return PublicAccount{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if role == "" {
		role = RoleEmployee
	}
	if !role.Valid() {
		return PublicAccount{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return PublicAccount{}, fmt.Errorf("hash password: %w", err)
	}
	acc := &Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		return PublicAccount{}, err
	}
	return acc.Public(), nil
}

// VerifyAccess validates an access token without touching the store. The
// request authenticator uses this on every protected request; accepting a
// deactivated account's token for the remainder of its short lifetime is a
// documented trade-off in favor of latency.
func (s *Service) VerifyAccess(token string) (*AccessClaims, error) {
	return s.tokens.VerifyAccess(token)
}

// CheckActive reports whether the account still exists and is active, for
// transports that opt into per-request revocation checks instead of riding
// out the access TTL.
func (s *Service) CheckActive(ctx context.Context, accountID string) error {
	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !acc.IsActive {
		return ErrAccountInactive
	}
	return nil
}

// SetAccountStatus flips the soft-delete flag. Deactivation also clears any
// live refresh fingerprint so the account cannot mint new access tokens; the
// current access token stays valid until its short expiry lapses.
func (s *Service) SetAccountStatus(ctx context.Context, accountID string, active bool) error {
	if err := s.store.SetActive(ctx, accountID, active); err != nil {
		return err
	}
	if !active {
		return s.store.ClearRefreshFingerprint(ctx, accountID)
	}
	return nil
}

// Account returns the public view of an account by id.
func (s *Service) Account(ctx context.Context, accountID string) (PublicAccount, error) {
	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return PublicAccount{}, err
	}
	return acc.Public(), nil
}
