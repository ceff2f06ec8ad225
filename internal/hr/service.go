package hr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service applies HR business rules on top of the Store. Authorization (role
// allow-lists) is enforced at the transport layer; this layer owns the rules
// that depend on data, not on roles alone.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the HR service.
func NewService(store Store, opts ...ServiceOption) *Service {
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateEmployee validates and persists a new employee record.
func (s *Service) CreateEmployee(ctx context.Context, e *Employee) (*Employee, error) {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if e.FirstName == "" || e.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if !strings.Contains(e.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if e.DepartmentID != "" {
		if _, err := s.store.FindDepartment(ctx, e.DepartmentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: department %s does not exist", ErrInvalidInput, e.DepartmentID)
			}
			return nil, err
		}
	}
	if e.JoinedAt.IsZero() {
		e.JoinedAt = s.now().UTC()
	}
	if err := s.store.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Employee returns a single employee record.
func (s *Service) Employee(ctx context.Context, id string) (*Employee, error) {
	return s.store.FindEmployee(ctx, id)
}

// EmployeeByAccount resolves the employee record attached to a login account.
func (s *Service) EmployeeByAccount(ctx context.Context, accountID string) (*Employee, error) {
	return s.store.FindEmployeeByAccount(ctx, accountID)
}

// Employees lists employee records, optionally filtered by department.
func (s *Service) Employees(ctx context.Context, departmentID string) ([]*Employee, error) {
	return s.store.ListEmployees(ctx, departmentID)
}

// UpdateEmployee replaces a record's mutable fields.
func (s *Service) UpdateEmployee(ctx context.Context, e *Employee) (*Employee, error) {
	if strings.TrimSpace(e.ID) == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	if e.DepartmentID != "" {
		if _, err := s.store.FindDepartment(ctx, e.DepartmentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: department %s does not exist", ErrInvalidInput, e.DepartmentID)
			}
			return nil, err
		}
	}
	if err := s.store.UpdateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return s.store.FindEmployee(ctx, e.ID)
}

// DeleteEmployee removes an employee record.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return s.store.DeleteEmployee(ctx, id)
}

// CreateDepartment validates and persists a department.
func (s *Service) CreateDepartment(ctx context.Context, d *Department) (*Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
	}
	if err := s.store.CreateDepartment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Department returns a single department.
func (s *Service) Department(ctx context.Context, id string) (*Department, error) {
	return s.store.FindDepartment(ctx, id)
}

// Departments lists all departments.
func (s *Service) Departments(ctx context.Context) ([]*Department, error) {
	return s.store.ListDepartments(ctx)
}

// UpdateDepartment replaces a department's mutable fields.
func (s *Service) UpdateDepartment(ctx context.Context, d *Department) (*Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.ID == "" || d.Name == "" {
		return nil, fmt.Errorf("%w: department id and name are required", ErrInvalidInput)
	}
	if err := s.store.UpdateDepartment(ctx, d); err != nil {
		return nil, err
	}
	return s.store.FindDepartment(ctx, d.ID)
}

// SubmitLeave files a pending leave request for an employee.
func (s *Service) SubmitLeave(ctx context.Context, employeeID string, from, to time.Time, reason string) (*LeaveRequest, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("%w: leave range is invalid", ErrInvalidInput)
	}
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	l := &LeaveRequest{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Reason:     strings.TrimSpace(reason),
		Status:     LeavePending,
	}
	if err := s.store.CreateLeave(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Leave returns a single leave request.
func (s *Service) Leave(ctx context.Context, id string) (*LeaveRequest, error) {
	return s.store.FindLeave(ctx, id)
}

// Leaves lists leave requests, optionally restricted to one employee.
func (s *Service) Leaves(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	return s.store.ListLeaves(ctx, employeeID)
}

// DecideLeave approves or rejects a pending request. The decider must not be
// the requester, even when their role would otherwise allow the decision.
func (s *Service) DecideLeave(ctx context.Context, id string, approve bool, deciderAccountID string) (*LeaveRequest, error) {
	l, err := s.store.FindLeave(ctx, id)
	if err != nil {
		return nil, err
	}
	if deciderAccountID != "" {
		if own, err := s.store.FindEmployeeByAccount(ctx, deciderAccountID); err == nil && own.ID == l.EmployeeID {
			return nil, ErrOwnRequest
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	status := LeaveRejected
	if approve {
		status = LeaveApproved
	}
	if err := s.store.DecideLeave(ctx, id, status, deciderAccountID); err != nil {
		return nil, err
	}
	return s.store.FindLeave(ctx, id)
}
