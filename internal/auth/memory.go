package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Akash94kumar/employeHR/internal/ids"
)

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, acc *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(acc.Email))
	if _, exists := m.byEmail[email]; exists {
		return ErrDuplicateAccount
	}
	if acc.ID == "" {
		acc.ID = ids.New()
	}
	now := m.now().UTC()
	acc.Email = email
	acc.CreatedAt = now
	acc.UpdatedAt = now

	cp := *acc
	m.byID[acc.ID] = &cp
	m.byEmail[email] = acc.ID
	return nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryStore) SetRefreshFingerprint(ctx context.Context, id, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.RefreshFingerprint = fingerprint
	acc.UpdatedAt = m.now().UTC()
	return nil
}

func (m *MemoryStore) ClearRefreshFingerprint(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.byID[id]
	if !ok {
		// Idempotent: clearing a missing account is a no-op for logout.
		return nil
	}
	acc.RefreshFingerprint = ""
	acc.UpdatedAt = m.now().UTC()
	return nil
}

func (m *MemoryStore) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	acc.IsActive = active
	acc.UpdatedAt = m.now().UTC()
	return nil
}
