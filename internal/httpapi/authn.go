package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Akash94kumar/employeHR/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// authenticated wraps a handler with access-token verification followed by an
// allow-list check. Verification never touches the credential store unless
// WithActiveRecheck is set: a deactivated account keeps its access token
// valid until the short expiry lapses, a trade-off accepted for latency.
func (a *API) authenticated(allowed auth.RoleSet, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if err := auth.Authorize(claims, allowed); err != nil {
			writeAuthzError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

// authenticatedByMethod applies a per-method allow-list, matching how the
// operations table composes roles per verb on collection routes.
func (a *API) authenticatedByMethod(next http.HandlerFunc, perMethod map[string]auth.RoleSet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		allowed, ok := perMethod[r.Method]
		if !ok {
			methods := make([]string, 0, len(perMethod))
			for m := range perMethod {
				methods = append(methods, m)
			}
			methodNotAllowed(w, r, methods...)
			return
		}
		if err := auth.Authorize(claims, allowed); err != nil {
			writeAuthzError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

func (a *API) authenticate(w http.ResponseWriter, r *http.Request) (*auth.AccessClaims, bool) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="employehr"`)
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	claims, err := a.sessions.VerifyAccess(token)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="employehr", error="invalid_token"`)
		if errors.Is(err, auth.ErrTokenExpired) {
			// Distinguishable so clients refresh instead of re-login.
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": "token expired",
				"code":  "token_expired",
			})
			return nil, false
		}
		writeError(w, r, http.StatusUnauthorized, "invalid token")
		return nil, false
	}
	if a.recheckActive {
		if err := a.sessions.CheckActive(r.Context(), claims.Subject); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="employehr", error="invalid_token"`)
			if errors.Is(err, auth.ErrAccountInactive) || errors.Is(err, auth.ErrNotFound) {
				writeError(w, r, http.StatusUnauthorized, "account is not active")
				return nil, false
			}
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return nil, false
		}
	}
	return claims, true
}

func writeAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrForbidden) {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="employehr"`)
	writeError(w, r, http.StatusUnauthorized, "unauthorized")
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
