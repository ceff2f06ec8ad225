package hr

import "context"

// Store describes persistence for the HR domain.
type Store interface {
	CreateEmployee(ctx context.Context, e *Employee) error
	FindEmployee(ctx context.Context, id string) (*Employee, error)
	FindEmployeeByAccount(ctx context.Context, accountID string) (*Employee, error)
	ListEmployees(ctx context.Context, departmentID string) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error
	DeleteEmployee(ctx context.Context, id string) error

	CreateDepartment(ctx context.Context, d *Department) error
	FindDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)
	UpdateDepartment(ctx context.Context, d *Department) error

	CreateLeave(ctx context.Context, l *LeaveRequest) error
	FindLeave(ctx context.Context, id string) (*LeaveRequest, error)
	ListLeaves(ctx context.Context, employeeID string) ([]*LeaveRequest, error)
	// DecideLeave transitions a pending request in a single conditional
	// update; ErrAlreadyDecided is returned when the request is not pending.
	DecideLeave(ctx context.Context, id string, status LeaveStatus, decidedBy string) error
}
