package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdef-0123"
	testRefreshSecret = "refresh-secret-0123456789abcdef-012"
)

func newTestIssuer(t *testing.T, opts ...IssuerOption) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(testAccessSecret, testRefreshSecret, opts...)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return ti
}

func TestNewTokenIssuerRejectsSharedSecret(t *testing.T) {
	if _, err := NewTokenIssuer("same-secret", "same-secret"); err == nil {
		t.Fatal("expected error for identical secrets")
	}
	if _, err := NewTokenIssuer("", testRefreshSecret); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ti := newTestIssuer(t)
	acc := &Account{ID: "acc-1", Email: "alice@example.com", Role: RoleHR, IsActive: true}

	token, exp, err := ti.IssueAccess(acc)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claims, err := ti.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "acc-1" || claims.Email != "alice@example.com" || claims.Role != RoleHR {
		t.Fatalf("claims do not round-trip: %+v", claims)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	ti := newTestIssuer(t)

	token, exp, err := ti.IssueRefresh("acc-9")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if time.Until(exp) < 6*24*time.Hour {
		t.Fatalf("refresh expiry too short: %v", exp)
	}

	claims, err := ti.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.Subject != "acc-9" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
}

func TestVerifyAccessErrorTaxonomy(t *testing.T) {
	ti := newTestIssuer(t)
	other := newTestIssuer(t, WithIssuerClock(time.Now))
	other.accessSecret = []byte("a-completely-different-signing-key!!")

	acc := &Account{ID: "acc-1", Email: "a@b.c", Role: RoleEmployee}
	good, _, err := ti.IssueAccess(acc)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	forged, _, err := other.IssueAccess(acc)
	if err != nil {
		t.Fatalf("IssueAccess (other secret): %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMalformed},
		{"garbage", "not.a.jwt", ErrTokenMalformed},
		{"two segments", strings.Join(strings.Split(good, ".")[:2], "."), ErrTokenMalformed},
		{"wrong secret", forged, ErrTokenSignatureInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ti.VerifyAccess(tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCrossFamilyVerificationFailsAsSignatureInvalid(t *testing.T) {
	ti := newTestIssuer(t)
	acc := &Account{ID: "acc-1", Email: "a@b.c", Role: RoleEmployee}

	access, _, err := ti.IssueAccess(acc)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := ti.IssueRefresh("acc-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := ti.VerifyRefresh(access); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := ti.VerifyAccess(refresh); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestVerifyAccessExpiredDeterministically(t *testing.T) {
	issued := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := issued
	ti := newTestIssuer(t, WithIssuerClock(func() time.Time { return clock }))

	token, _, err := ti.IssueAccess(&Account{ID: "acc-1", Email: "a@b.c", Role: RoleManager})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	clock = issued.Add(14 * time.Minute)
	if _, err := ti.VerifyAccess(token); err != nil {
		t.Fatalf("token should still be valid at 14m: %v", err)
	}

	clock = issued.Add(16 * time.Minute)
	for i := 0; i < 3; i++ {
		if _, err := ti.VerifyAccess(token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("attempt %d: got %v, want ErrTokenExpired", i, err)
		}
	}
}

func TestFingerprintEqual(t *testing.T) {
	token := "some.refresh.token"
	fp := Fingerprint(token)
	if len(fp) != 64 {
		t.Fatalf("unexpected fingerprint length: %d", len(fp))
	}
	if !FingerprintEqual(fp, token) {
		t.Fatal("expected fingerprint match")
	}
	if FingerprintEqual(fp, "another.token") {
		t.Fatal("unexpected match for different token")
	}
	if FingerprintEqual("", token) {
		t.Fatal("empty stored fingerprint must never match")
	}
}
