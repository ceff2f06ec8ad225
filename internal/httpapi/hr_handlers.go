package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Akash94kumar/employeHR/internal/audit"
	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/hr"
)

type employeeRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	DepartmentID string `json:"department_id,omitempty"`
	AccountID    string `json:"account_id,omitempty"`
	JoinedAt     string `json:"joined_at,omitempty"`
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type leaveRequestBody struct {
	EmployeeID string `json:"employee_id,omitempty"`
	From       string `json:"from"`
	To         string `json:"to"`
	Reason     string `json:"reason,omitempty"`
}

type leaveDecisionRequest struct {
	Approve bool `json:"approve"`
}

type accountStatusRequest struct {
	Active bool `json:"active"`
}

// --- employees ---

func (a *API) handleEmployeesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := a.hr.Employees(r.Context(), strings.TrimSpace(r.URL.Query().Get("department_id")))
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": emptyIfNilEmployees(list)})
	case http.MethodPost:
		var req employeeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		e := &hr.Employee{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Position:     req.Position,
			DepartmentID: req.DepartmentID,
			AccountID:    req.AccountID,
		}
		if req.JoinedAt != "" {
			joined, err := time.Parse(time.RFC3339, req.JoinedAt)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "joined_at must be RFC3339")
				return
			}
			e.JoinedAt = joined
		}
		created, err := a.hr.CreateEmployee(r.Context(), e)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/employees/%s", created.ID))
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEmployeeResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/v1/employees/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		e, err := a.hr.Employee(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	case http.MethodPut:
		var req employeeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		e := &hr.Employee{
			ID:           id,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Position:     req.Position,
			DepartmentID: req.DepartmentID,
			AccountID:    req.AccountID,
		}
		updated, err := a.hr.UpdateEmployee(r.Context(), e)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := a.hr.DeleteEmployee(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.employee.delete", map[string]any{"employee_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- departments ---

func (a *API) handleDepartmentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := a.hr.Departments(r.Context())
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": emptyIfNilDepartments(list)})
	case http.MethodPost:
		var req departmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		d, err := a.hr.CreateDepartment(r.Context(), &hr.Department{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/departments/%s", d.ID))
		writeJSON(w, http.StatusCreated, d)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleDepartmentResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/v1/departments/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		d, err := a.hr.Department(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodPut:
		var req departmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		d, err := a.hr.UpdateDepartment(r.Context(), &hr.Department{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// --- leaves ---

func (a *API) handleLeavesCollection(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		employeeID := strings.TrimSpace(r.URL.Query().Get("employee_id"))
		// Employees only ever see their own requests; other roles may filter
		// freely.
		if claims.Role == auth.RoleEmployee {
			own, err := a.hr.EmployeeByAccount(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, hr.ErrNotFound) {
					writeJSON(w, http.StatusOK, map[string]any{"items": []*hr.LeaveRequest{}})
					return
				}
				handleHRError(w, r, err)
				return
			}
			employeeID = own.ID
		}
		list, err := a.hr.Leaves(r.Context(), employeeID)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": emptyIfNilLeaves(list)})
	case http.MethodPost:
		var req leaveRequestBody
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		employeeID := strings.TrimSpace(req.EmployeeID)
		if claims.Role == auth.RoleEmployee || employeeID == "" {
			own, err := a.hr.EmployeeByAccount(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, hr.ErrNotFound) {
					writeError(w, r, http.StatusBadRequest, "no employee record linked to this account")
					return
				}
				handleHRError(w, r, err)
				return
			}
			employeeID = own.ID
		}
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "to must be RFC3339")
			return
		}
		l, err := a.hr.SubmitLeave(r.Context(), employeeID, from, to, req.Reason)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/leaves/%s", l.ID))
		writeJSON(w, http.StatusCreated, l)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleLeaveResource(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/leaves/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")

	if len(parts) == 2 && parts[1] == "decision" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		if err := auth.Authorize(claims, rolesLeaveDecide); err != nil {
			writeAuthzError(w, r, err)
			return
		}
		var req leaveDecisionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l, err := a.hr.DecideLeave(r.Context(), parts[0], req.Approve, claims.Subject)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.leave.decision", map[string]any{
			"leave_id": l.ID,
			"status":   string(l.Status),
		})
		writeJSON(w, http.StatusOK, l)
		return
	}

	if len(parts) != 1 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	l, err := a.hr.Leave(r.Context(), parts[0])
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	if claims.Role == auth.RoleEmployee {
		own, err := a.hr.EmployeeByAccount(r.Context(), claims.Subject)
		if err != nil || own.ID != l.EmployeeID {
			writeError(w, r, http.StatusForbidden, "forbidden")
			return
		}
	}
	writeJSON(w, http.StatusOK, l)
}

// --- accounts ---

func (a *API) handleAccountResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/accounts/"), "/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] != "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		acc, err := a.sessions.Account(r.Context(), parts[0])
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, "account not found")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "account lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": acc})
		return
	}

	if len(parts) != 2 || parts[1] != "status" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req accountStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sessions.SetAccountStatus(r.Context(), parts[0], req.Active); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "status update failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.account.status", map[string]any{
		"account_id": parts[0],
		"active":     req.Active,
	})
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func resourceID(path, prefix string) string {
	id := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func handleHRError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, hr.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, hr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, hr.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, hr.ErrAlreadyDecided), errors.Is(err, hr.ErrOwnRequest):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "hr operation failed")
	}
}

func emptyIfNilEmployees(in []*hr.Employee) []*hr.Employee {
	if in == nil {
		return []*hr.Employee{}
	}
	return in
}

func emptyIfNilDepartments(in []*hr.Department) []*hr.Department {
	if in == nil {
		return []*hr.Department{}
	}
	return in
}

func emptyIfNilLeaves(in []*hr.LeaveRequest) []*hr.LeaveRequest {
	if in == nil {
		return []*hr.LeaveRequest{}
	}
	return in
}
