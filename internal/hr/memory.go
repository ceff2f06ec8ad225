package hr

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Akash94kumar/employeHR/internal/ids"
)

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	employees   map[string]*Employee
	departments map[string]*Department
	leaves      map[string]*LeaveRequest
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory HR store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees:   make(map[string]*Employee),
		departments: make(map[string]*Department),
		leaves:      make(map[string]*LeaveRequest),
		now:         time.Now,
	}
}

func (m *MemoryStore) CreateEmployee(ctx context.Context, e *Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(e.Email))
	for _, existing := range m.employees {
		if existing.Email == email {
			return ErrConflict
		}
	}
	if e.ID == "" {
		e.ID = ids.New()
	}
	now := m.now().UTC()
	e.Email = email
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MemoryStore) FindEmployee(ctx context.Context, id string) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) FindEmployeeByAccount(ctx context.Context, accountID string) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.AccountID != "" && e.AccountID == accountID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListEmployees(ctx context.Context, departmentID string) ([]*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Employee
	for _, e := range m.employees {
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateEmployee(ctx context.Context, e *Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.employees[e.ID]
	if !ok {
		return ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = m.now().UTC()
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteEmployee(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *MemoryStore) CreateDepartment(ctx context.Context, d *Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.departments {
		if strings.EqualFold(existing.Name, d.Name) {
			return ErrConflict
		}
	}
	if d.ID == "" {
		d.ID = ids.New()
	}
	now := m.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	m.departments[d.ID] = &cp
	return nil
}

func (m *MemoryStore) FindDepartment(ctx context.Context, id string) (*Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) ListDepartments(ctx context.Context) ([]*Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Department
	for _, d := range m.departments {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateDepartment(ctx context.Context, d *Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.departments[d.ID]
	if !ok {
		return ErrNotFound
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = m.now().UTC()
	cp := *d
	m.departments[d.ID] = &cp
	return nil
}

func (m *MemoryStore) CreateLeave(ctx context.Context, l *LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = ids.New()
	}
	now := m.now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	m.leaves[l.ID] = &cp
	return nil
}

func (m *MemoryStore) FindLeave(ctx context.Context, id string) (*LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leaves[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *MemoryStore) ListLeaves(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*LeaveRequest
	for _, l := range m.leaves {
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DecideLeave(ctx context.Context, id string, status LeaveStatus, decidedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok {
		return ErrNotFound
	}
	if l.Status != LeavePending {
		return ErrAlreadyDecided
	}
	now := m.now().UTC()
	l.Status = status
	l.DecidedBy = decidedBy
	l.DecidedAt = &now
	l.UpdatedAt = now
	return nil
}
