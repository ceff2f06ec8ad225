package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/Akash94kumar/employeHR/internal/auth"
)

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	c := newTestAPI(t)

	cases := []struct {
		name   string
		header map[string]string
	}{
		{"missing header", nil},
		{"wrong scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}},
		{"empty token", map[string]string{"Authorization": "Bearer "}},
		{"garbage token", map[string]string{"Authorization": "Bearer not.a.jwt"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := c.get("/v1/auth/me", nil, tc.header)
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", resp.StatusCode)
			}
			if resp.Header.Get("WWW-Authenticate") == "" {
				t.Fatal("missing WWW-Authenticate header")
			}
		})
	}
}

func TestActiveRecheckRejectsDeactivatedAccount(t *testing.T) {
	c := newTestAPI(t, WithActiveRecheck())
	ctx := context.Background()

	sess := c.register("recheck@example.com", "s3cret-pass", "employee")

	resp := c.get("/v1/auth/me", nil, authz(sess.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me while active: status %d", resp.StatusCode)
	}

	if err := c.sessions.SetAccountStatus(ctx, sess.User.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The access token is still within its TTL but the recheck cuts it off.
	resp = c.get("/v1/auth/me", nil, authz(sess.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after deactivation: status %d, want 401", resp.StatusCode)
	}
}

func TestAuthenticateBearerSchemeIsCaseInsensitive(t *testing.T) {
	c := newTestAPI(t)
	sess := c.register("case@example.com", "a long enough password", "employee")

	resp := c.get("/v1/auth/me", nil, map[string]string{
		"Authorization": "bearer " + sess.AccessToken,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
}

func TestExpiredAccessTokenIsDistinguishable(t *testing.T) {
	c := newTestAPI(t)

	// Same secrets, clock an hour behind: the issued token is already past
	// its expiry when the server verifies it.
	past := time.Now().Add(-time.Hour)
	stale, err := auth.NewTokenIssuer(testAccessSecret, testRefreshSecret,
		auth.WithIssuerClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	token, _, err := stale.IssueAccess(&auth.Account{
		ID:    "01ABCDEF",
		Email: "old@example.com",
		Role:  auth.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	resp := c.get("/v1/auth/me", nil, authz(token))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["code"] != "token_expired" {
		t.Fatalf("code %q, want token_expired", payload["code"])
	}
}

func TestTokenFromWrongFamilyIsRejected(t *testing.T) {
	c := newTestAPI(t)
	sess := c.register("family@example.com", "a long enough password", "employee")

	// A refresh token must never authenticate a request.
	resp := c.get("/v1/auth/me", nil, authz(sess.RefreshToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
}

func TestRoleAllowListsPerEndpoint(t *testing.T) {
	c := newTestAPI(t)

	employee := c.register("emp@example.com", "a long enough password", "employee")
	manager := c.register("mgr@example.com", "a long enough password", "manager")
	hrUser := c.register("hr@example.com", "a long enough password", "hr")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"employee cannot list employees", http.MethodGet, "/v1/employees", employee.AccessToken, http.StatusForbidden},
		{"manager can list employees", http.MethodGet, "/v1/employees", manager.AccessToken, http.StatusOK},
		{"manager cannot create employees", http.MethodPost, "/v1/employees", manager.AccessToken, http.StatusForbidden},
		{"employee cannot list departments", http.MethodGet, "/v1/departments", employee.AccessToken, http.StatusForbidden},
		{"manager cannot create departments", http.MethodPost, "/v1/departments", manager.AccessToken, http.StatusForbidden},
		{"manager cannot change account status", http.MethodPost, "/v1/accounts/any/status", manager.AccessToken, http.StatusForbidden},
		{"hr can change account status of missing account", http.MethodPost, "/v1/accounts/missing/status", hrUser.AccessToken, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp *http.Response
			if tc.method == http.MethodGet {
				resp = c.get(tc.path, nil, authz(tc.token))
			} else {
				// The allow-list check fires before body validation, so a
				// minimal payload serves every POST case.
				resp = c.post(tc.path, map[string]any{"active": true}, authz(tc.token))
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("status %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
