package auth

import "context"

type claimsContextKey struct{}

// ContextWithClaims attaches verified access claims to the request context.
func ContextWithClaims(ctx context.Context, claims *AccessClaims) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts previously attached access claims.
func ClaimsFromContext(ctx context.Context) (*AccessClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(claimsContextKey{}).(*AccessClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
