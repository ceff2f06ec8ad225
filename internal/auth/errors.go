package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. The single value prevents account enumeration through response
	// differences.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrAccountInactive is returned when credentials or a refresh token are
	// otherwise valid but the account has been deactivated.
	ErrAccountInactive = errors.New("auth: account is inactive")

	// ErrRefreshTokenInvalid covers every refresh rejection: malformed, bad
	// signature, expired, or superseded by a newer login.
	ErrRefreshTokenInvalid = errors.New("auth: refresh token is invalid")

	ErrDuplicateAccount = errors.New("auth: account already exists")
	ErrNotFound         = errors.New("auth: not found")
	ErrInvalidInput     = errors.New("auth: invalid input")

	// ErrUnauthorized means the caller never proved identity; ErrForbidden
	// means identity is proven but the role is not on the allow-list.
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")

	// Token verification outcomes. A token signed with the wrong secret fails
	// with ErrTokenSignatureInvalid, never a crash.
	ErrTokenMalformed        = errors.New("auth: token is malformed")
	ErrTokenSignatureInvalid = errors.New("auth: token signature is invalid")
	ErrTokenExpired          = errors.New("auth: token is expired")
)
