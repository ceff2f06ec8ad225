package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Akash94kumar/employeHR/internal/ids"
)

const pgUniqueViolation = "23505"

// PGStore implements Store on PostgreSQL. Fingerprint and status mutations are
// single-statement updates, relying on per-row atomicity of the database.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, acc *Account) error {
	if acc.ID == "" {
		acc.ID = ids.New()
	}
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	err := s.db.QueryRowContext(ctx,
		`insert into accounts(id, email, password_hash, role, is_active)
		 values($1,$2,$3,$4,$5)
		 returning created_at, updated_at`,
		acc.ID, acc.Email, acc.PasswordHash, string(acc.Role), acc.IsActive,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, role, is_active, coalesce(refresh_fingerprint, ''), created_at, updated_at
		 from accounts where id=$1`, id))
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.scanOne(s.db.QueryRowContext(ctx,
		`select id, email, password_hash, role, is_active, coalesce(refresh_fingerprint, ''), created_at, updated_at
		 from accounts where email=$1`, email))
}

func (s *PGStore) scanOne(row *sql.Row) (*Account, error) {
	var (
		acc  Account
		role string
	)
	err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &role, &acc.IsActive,
		&acc.RefreshFingerprint, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	acc.Role = Role(role)
	return &acc, nil
}

func (s *PGStore) SetRefreshFingerprint(ctx context.Context, id, fingerprint string) error {
	res, err := s.db.ExecContext(ctx,
		`update accounts set refresh_fingerprint=$2, updated_at=now() where id=$1`,
		id, fingerprint)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) ClearRefreshFingerprint(ctx context.Context, id string) error {
	// No row check: clearing an unknown or already-cleared account stays a
	// no-op so logout is idempotent.
	_, err := s.db.ExecContext(ctx,
		`update accounts set refresh_fingerprint=null, updated_at=now() where id=$1`, id)
	return err
}

func (s *PGStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`update accounts set is_active=$2, updated_at=now() where id=$1`,
		id, active)
	if err != nil {
		return err
	}
	return requireRow(res)
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
