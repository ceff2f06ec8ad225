package hr

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Akash94kumar/employeHR/internal/ids"
)

const pgUniqueViolation = "23505"

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) CreateEmployee(ctx context.Context, e *Employee) error {
	if e.ID == "" {
		e.ID = ids.New()
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	err := s.db.QueryRowContext(ctx,
		`insert into employees(id, account_id, first_name, last_name, email, position, department_id, joined_at)
		 values($1, nullif($2,''), $3, $4, $5, $6, nullif($7,''), $8)
		 returning created_at, updated_at`,
		e.ID, e.AccountID, e.FirstName, e.LastName, e.Email, e.Position, e.DepartmentID, e.JoinedAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

const employeeColumns = `id, coalesce(account_id, ''), first_name, last_name, email, position, coalesce(department_id, ''), joined_at, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.AccountID, &e.FirstName, &e.LastName, &e.Email,
		&e.Position, &e.DepartmentID, &e.JoinedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *PGStore) FindEmployee(ctx context.Context, id string) (*Employee, error) {
	return scanEmployee(s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where id=$1`, id))
}

func (s *PGStore) FindEmployeeByAccount(ctx context.Context, accountID string) (*Employee, error) {
	return scanEmployee(s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where account_id=$1`, accountID))
}

func (s *PGStore) ListEmployees(ctx context.Context, departmentID string) ([]*Employee, error) {
	query := `select ` + employeeColumns + ` from employees order by created_at`
	args := []any{}
	if departmentID != "" {
		query = `select ` + employeeColumns + ` from employees where department_id=$1 order by created_at`
		args = append(args, departmentID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateEmployee(ctx context.Context, e *Employee) error {
	res, err := s.db.ExecContext(ctx,
		`update employees
		 set first_name=$2, last_name=$3, email=$4, position=$5,
		     department_id=nullif($6,''), account_id=nullif($7,''), updated_at=now()
		 where id=$1`,
		e.ID, e.FirstName, e.LastName, strings.ToLower(strings.TrimSpace(e.Email)),
		e.Position, e.DepartmentID, e.AccountID)
	if err != nil {
		return mapPGError(err)
	}
	return requireRow(res)
}

func (s *PGStore) DeleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from employees where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) CreateDepartment(ctx context.Context, d *Department) error {
	if d.ID == "" {
		d.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx,
		`insert into departments(id, name, description) values($1,$2,$3)
		 returning created_at, updated_at`,
		d.ID, d.Name, d.Description,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (s *PGStore) FindDepartment(ctx context.Context, id string) (*Department, error) {
	var d Department
	err := s.db.QueryRowContext(ctx,
		`select id, name, coalesce(description, ''), created_at, updated_at from departments where id=$1`, id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *PGStore) ListDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, coalesce(description, ''), created_at, updated_at from departments order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateDepartment(ctx context.Context, d *Department) error {
	res, err := s.db.ExecContext(ctx,
		`update departments set name=$2, description=$3, updated_at=now() where id=$1`,
		d.ID, d.Name, d.Description)
	if err != nil {
		return mapPGError(err)
	}
	return requireRow(res)
}

func (s *PGStore) CreateLeave(ctx context.Context, l *LeaveRequest) error {
	if l.ID == "" {
		l.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx,
		`insert into leave_requests(id, employee_id, date_from, date_to, reason, status)
		 values($1,$2,$3,$4,$5,$6)
		 returning created_at, updated_at`,
		l.ID, l.EmployeeID, l.From, l.To, l.Reason, string(l.Status),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	return err
}

const leaveColumns = `id, employee_id, date_from, date_to, reason, status, coalesce(decided_by, ''), decided_at, created_at, updated_at`

func scanLeave(row interface{ Scan(...any) error }) (*LeaveRequest, error) {
	var (
		l      LeaveRequest
		status string
	)
	err := row.Scan(&l.ID, &l.EmployeeID, &l.From, &l.To, &l.Reason, &status,
		&l.DecidedBy, &l.DecidedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	l.Status = LeaveStatus(status)
	return &l, nil
}

func (s *PGStore) FindLeave(ctx context.Context, id string) (*LeaveRequest, error) {
	return scanLeave(s.db.QueryRowContext(ctx,
		`select `+leaveColumns+` from leave_requests where id=$1`, id))
}

func (s *PGStore) ListLeaves(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	query := `select ` + leaveColumns + ` from leave_requests order by created_at desc`
	args := []any{}
	if employeeID != "" {
		query = `select ` + leaveColumns + ` from leave_requests where employee_id=$1 order by created_at desc`
		args = append(args, employeeID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LeaveRequest
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PGStore) DecideLeave(ctx context.Context, id string, status LeaveStatus, decidedBy string) error {
	// Conditional update: only a pending request transitions, so two
	// concurrent decisions cannot both win.
	res, err := s.db.ExecContext(ctx,
		`update leave_requests
		 set status=$2, decided_by=$3, decided_at=now(), updated_at=now()
		 where id=$1 and status='pending'`,
		id, string(status), decidedBy)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing request from an already decided one.
		if _, findErr := s.FindLeave(ctx, id); findErr != nil {
			return findErr
		}
		return ErrAlreadyDecided
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
