package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Akash94kumar/employeHR/api/spec"
	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/hr"
	"github.com/Akash94kumar/employeHR/internal/obs"
)

// ReadyProbe checks readiness dependencies (the database, when configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer wiring the session service and HR service to routes.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	sessions *auth.Service
	hr       *hr.Service

	rateBurst  int
	ratePerSec int

	recheckActive bool
}

// Operation allow-lists. Explicit composition per endpoint; no role outranks
// another implicitly.
var (
	rolesEmployeeRead  = auth.NewRoleSet(auth.RoleManager, auth.RoleHR, auth.RoleSuperAdmin)
	rolesEmployeeWrite = auth.NewRoleSet(auth.RoleHR, auth.RoleSuperAdmin)
	rolesDepartment    = auth.NewRoleSet(auth.RoleHR, auth.RoleSuperAdmin)
	rolesLeaveDecide   = auth.NewRoleSet(auth.RoleManager, auth.RoleHR, auth.RoleSuperAdmin)
	rolesAccountAdmin  = auth.NewRoleSet(auth.RoleHR, auth.RoleSuperAdmin)
	rolesAnyAccount    = auth.NewRoleSet(auth.AllRoles()...)
)

// Option configures the API.
type Option func(*API)

// WithRateLimit overrides the per-client rate limit.
func WithRateLimit(burst, perSec int) Option {
	return func(a *API) {
		if burst > 0 {
			a.rateBurst = burst
		}
		if perSec > 0 {
			a.ratePerSec = perSec
		}
	}
}

// WithActiveRecheck makes every authenticated request re-check that the
// account is still active. Without it a deactivated account keeps its access
// token until the token expires; only refresh is cut off immediately.
func WithActiveRecheck() Option {
	return func(a *API) {
		a.recheckActive = true
	}
}

// New constructs the API and registers all routes.
func New(rp ReadyProbe, version string, sessions *auth.Service, hrSvc *hr.Service, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		sessions:   sessions,
		hr:         hrSvc,
		rateBurst:  20,
		ratePerSec: 10,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)
	a.mux.Handle("/metrics", obs.Handler())

	// Session lifecycle. Login/register/refresh are the unauthenticated
	// surface; logout and me require a live access token.
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.Handle("/v1/auth/logout", a.authenticated(rolesAnyAccount, a.handleLogout))
	a.mux.Handle("/v1/auth/me", a.authenticated(rolesAnyAccount, a.handleMe))

	a.mux.Handle("/v1/accounts/", a.authenticated(rolesAccountAdmin, a.handleAccountResource))

	a.mux.Handle("/v1/employees", a.authenticatedByMethod(a.handleEmployeesCollection, map[string]auth.RoleSet{
		http.MethodGet:  rolesEmployeeRead,
		http.MethodPost: rolesEmployeeWrite,
	}))
	a.mux.Handle("/v1/employees/", a.authenticatedByMethod(a.handleEmployeeResource, map[string]auth.RoleSet{
		http.MethodGet:    rolesEmployeeRead,
		http.MethodPut:    rolesEmployeeWrite,
		http.MethodDelete: rolesEmployeeWrite,
	}))

	a.mux.Handle("/v1/departments", a.authenticatedByMethod(a.handleDepartmentsCollection, map[string]auth.RoleSet{
		http.MethodGet:  rolesEmployeeRead,
		http.MethodPost: rolesDepartment,
	}))
	a.mux.Handle("/v1/departments/", a.authenticatedByMethod(a.handleDepartmentResource, map[string]auth.RoleSet{
		http.MethodGet: rolesEmployeeRead,
		http.MethodPut: rolesDepartment,
	}))

	// Every authenticated account may file or list leaves; the handler
	// narrows employees down to their own records. Decisions go through
	// /v1/leaves/{id}/decision with its own allow-list.
	a.mux.Handle("/v1/leaves", a.authenticated(rolesAnyAccount, a.handleLeavesCollection))
	a.mux.Handle("/v1/leaves/", a.authenticated(rolesAnyAccount, a.handleLeaveResource))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := obs.Instrument(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	return RequestID(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "employehr-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "employehr-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
