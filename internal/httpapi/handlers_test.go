package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/hr"
)

const (
	testAccessSecret  = "access-secret-0123456789-0123456789-A"
	testRefreshSecret = "refresh-secret-0123456789-0123456789-B"
)

type apiClient struct {
	baseURL  string
	client   *http.Client
	t        *testing.T
	sessions *auth.Service
	hrSvc    *hr.Service
}

func newTestAPI(t *testing.T, opts ...Option) *apiClient {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(testAccessSecret, testRefreshSecret)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	sessions := auth.NewService(auth.NewMemoryStore(), issuer, auth.WithBcryptCost(bcrypt.MinCost))
	hrSvc := hr.NewService(hr.NewMemoryStore())

	opts = append([]Option{WithRateLimit(1000, 1000)}, opts...)
	api := New(ReadyProbe{}, "test", sessions, hrSvc, opts...)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL:  srv.URL,
		client:   srv.Client(),
		t:        t,
		sessions: sessions,
		hrSvc:    hrSvc,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	if params != nil {
		path = path + "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, headers)
}

func authz(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

type sessionPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// register creates an account with the given role and returns its login
// session.
func (c *apiClient) register(email, password, role string) sessionPayload {
	c.t.Helper()
	resp := c.post("/v1/auth/register", map[string]any{
		"email":    email,
		"password": password,
		"role":     role,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	return c.login(email, password)
}

func (c *apiClient) login(email, password string) sessionPayload {
	c.t.Helper()
	resp := c.post("/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var sess sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		c.t.Fatalf("decode login: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		c.t.Fatalf("login %s: empty tokens", email)
	}
	return sess
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestAuthSessionLifecycle(t *testing.T) {
	c := newTestAPI(t)

	sess := c.register("alice@example.com", "correct horse battery", "hr")

	resp := c.get("/v1/auth/me", nil, authz(sess.AccessToken))
	me := decode[map[string]map[string]string](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	if me["user"]["email"] != "alice@example.com" || me["user"]["role"] != "hr" {
		t.Fatalf("unexpected identity: %v", me["user"])
	}

	resp = c.post("/v1/auth/refresh", map[string]any{"refresh_token": sess.RefreshToken}, nil)
	refreshed := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: status %d", resp.StatusCode)
	}
	if refreshed["access_token"] == "" {
		t.Fatal("refresh returned empty access token")
	}

	resp = c.post("/v1/auth/logout", nil, authz(sess.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	resp = c.post("/v1/auth/refresh", map[string]any{"refresh_token": sess.RefreshToken}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: status %d, want 401", resp.StatusCode)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	c := newTestAPI(t)
	c.register("bob@example.com", "a long enough password", "employee")

	unknown := c.post("/v1/auth/login", map[string]any{
		"email": "nobody@example.com", "password": "whatever else here",
	}, nil)
	wrongPass := c.post("/v1/auth/login", map[string]any{
		"email": "bob@example.com", "password": "not the password",
	}, nil)

	unknownBody, _ := io.ReadAll(unknown.Body)
	wrongBody, _ := io.ReadAll(wrongPass.Body)
	unknown.Body.Close()
	wrongPass.Body.Close()

	if unknown.StatusCode != http.StatusUnauthorized || wrongPass.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses: %d, %d, want 401", unknown.StatusCode, wrongPass.StatusCode)
	}

	var a, b map[string]any
	if err := json.Unmarshal(unknownBody, &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal(wrongBody, &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a["error"] != b["error"] {
		t.Fatalf("error bodies differ: %q vs %q", a["error"], b["error"])
	}
}

func TestNewLoginSupersedesOldSession(t *testing.T) {
	c := newTestAPI(t)

	first := c.register("carol@example.com", "a long enough password", "employee")
	_ = c.login("carol@example.com", "a long enough password")

	resp := c.post("/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("superseded refresh: status %d, want 401", resp.StatusCode)
	}
}

func TestAccountDeactivationRevokesSession(t *testing.T) {
	c := newTestAPI(t)

	admin := c.register("root@example.com", "a long enough password", "super-admin")
	victim := c.register("dave@example.com", "a long enough password", "employee")

	resp := c.post(fmt.Sprintf("/v1/accounts/%s/status", victim.User.ID),
		map[string]any{"active": false}, authz(admin.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("deactivate: status %d", resp.StatusCode)
	}

	resp = c.post("/v1/auth/refresh", map[string]any{"refresh_token": victim.RefreshToken}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after deactivation: status %d, want 401", resp.StatusCode)
	}

	resp = c.post("/v1/auth/login", map[string]any{
		"email": "dave@example.com", "password": "a long enough password",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login after deactivation: status %d, want 401", resp.StatusCode)
	}
}

func TestAccountLookupByAdmin(t *testing.T) {
	c := newTestAPI(t)

	admin := c.register("root@example.com", "a long enough password", "super-admin")
	other := c.register("eve@example.com", "a long enough password", "employee")

	resp := c.get("/v1/accounts/"+other.User.ID, nil, authz(admin.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("account lookup: status %d", resp.StatusCode)
	}
	body := decode[map[string]map[string]string](t, resp)
	if body["user"]["email"] != "eve@example.com" {
		t.Fatalf("unexpected account: %v", body["user"])
	}

	resp = c.get("/v1/accounts/missing", nil, authz(admin.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing account: status %d, want 404", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	c := newTestAPI(t)
	c.register("taken@example.com", "a long enough password", "employee")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"email": "not-an-email", "password": "a long enough password"}},
		{"short password", map[string]any{"email": "x@example.com", "password": "short"}},
		{"duplicate email", map[string]any{"email": "taken@example.com", "password": "a long enough password"}},
		{"unknown role", map[string]any{"email": "y@example.com", "password": "a long enough password", "role": "root"}},
		{"unknown field", map[string]any{"email": "z@example.com", "password": "a long enough password", "admin": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := c.post("/v1/auth/register", tc.body, nil)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealthAndInfo(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/healthz", nil, nil)
	health := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("healthz: status=%d body=%v", resp.StatusCode, health)
	}

	resp = c.get("/readyz", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz: status %d", resp.StatusCode)
	}

	resp = c.get("/openapi.yaml", nil, nil)
	spec, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || len(spec) == 0 {
		t.Fatalf("openapi.yaml: status=%d len=%d", resp.StatusCode, len(spec))
	}
}
