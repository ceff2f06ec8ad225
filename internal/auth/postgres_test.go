package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGStoreCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	mock.ExpectQuery("insert into accounts").
		WithArgs(sqlmock.AnyArg(), "dup@example.com", "hash", "employee", true).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err = store.Create(context.Background(), &Account{
		Email:        "Dup@Example.com",
		PasswordHash: "hash",
		Role:         RoleEmployee,
		IsActive:     true,
	})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindByEmailNormalizes(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "coalesce", "created_at", "updated_at"}).
		AddRow("acc-1", "alice@example.com", "hash", "hr", true, "fp", now, now)
	mock.ExpectQuery("select .* from accounts where email").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	store := NewPGStore(db)
	acc, err := store.FindByEmail(context.Background(), "  ALICE@Example.com ")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if acc.Role != RoleHR || acc.RefreshFingerprint != "fp" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select .* from accounts where id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewPGStore(db)
	if _, err := store.FindByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreSetRefreshFingerprint(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)

	mock.ExpectExec("update accounts set refresh_fingerprint").
		WithArgs("acc-1", "new-fp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.SetRefreshFingerprint(context.Background(), "acc-1", "new-fp"); err != nil {
		t.Fatalf("SetRefreshFingerprint: %v", err)
	}

	mock.ExpectExec("update accounts set refresh_fingerprint").
		WithArgs("missing", "fp").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.SetRefreshFingerprint(context.Background(), "missing", "fp"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing account, got %v", err)
	}
}

func TestPGStoreClearRefreshFingerprintIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)

	// Zero rows touched is still success: logout of a cleared or unknown
	// account is a no-op.
	mock.ExpectExec("update accounts set refresh_fingerprint=null").
		WithArgs("acc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.ClearRefreshFingerprint(context.Background(), "acc-1"); err != nil {
		t.Fatalf("ClearRefreshFingerprint: %v", err)
	}
}
