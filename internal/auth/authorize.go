package auth

// Authorize gates an operation on its role allow-list. Nil claims fail closed
// with ErrUnauthorized: identity was never proven, so Forbidden would leak
// more than it should. A proven identity whose role is not on the allow-list
// fails with ErrForbidden. There is no rank comparison: super-admin passes a
// gate only when the allow-list names it.
func Authorize(claims *AccessClaims, allowed RoleSet) error {
	if claims == nil {
		return ErrUnauthorized
	}
	if !allowed.Contains(claims.Role) {
		return ErrForbidden
	}
	return nil
}
