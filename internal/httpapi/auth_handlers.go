package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/Akash94kumar/employeHR/internal/audit"
	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/obs"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken      string             `json:"access_token"`
	AccessExpiresAt  time.Time          `json:"access_expires_at"`
	RefreshToken     string             `json:"refresh_token"`
	RefreshExpiresAt time.Time          `json:"refresh_expires_at"`
	User             auth.PublicAccount `json:"user"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := a.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			obs.RecordLogin("invalid_credentials")
			writeError(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, auth.ErrAccountInactive):
			obs.RecordLogin("inactive")
			writeError(w, r, http.StatusUnauthorized, err.Error())
		default:
			obs.RecordLogin("error")
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	obs.RecordLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"account_id": sess.Account.ID,
		"email":      sess.Account.Email,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:      sess.AccessToken,
		AccessExpiresAt:  sess.AccessExpiresAt,
		RefreshToken:     sess.RefreshToken,
		RefreshExpiresAt: sess.RefreshExpiresAt,
		User:             sess.Account,
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role := auth.Role("")
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		role = parsed
	}

	acc, err := a.sessions.Register(r.Context(), req.Email, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrDuplicateAccount):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"account_id": acc.ID,
		"email":      acc.Email,
		"role":       string(acc.Role),
	})
	writeJSON(w, http.StatusCreated, map[string]any{"user": acc})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	access, exp, err := a.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshTokenInvalid):
			obs.RecordRefresh("invalid")
			writeError(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, auth.ErrAccountInactive):
			obs.RecordRefresh("inactive")
			writeError(w, r, http.StatusUnauthorized, err.Error())
		default:
			obs.RecordRefresh("error")
			writeError(w, r, http.StatusInternalServerError, "refresh failed")
		}
		return
	}

	obs.RecordRefresh("ok")
	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:     access,
		AccessExpiresAt: exp,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	if err := a.sessions.Logout(r.Context(), claims.Subject); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"account_id": claims.Subject,
	})
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": auth.PublicAccount{
			ID:    claims.Subject,
			Email: claims.Email,
			Role:  claims.Role,
		},
	})
}
