package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected digest format: %s", hash)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("expected match")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("expected mismatch")
	}
}

func TestHashPasswordEmbedsSalt(t *testing.T) {
	h1, err := HashPassword("same input", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same input", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected per-hash salt to produce distinct digests")
	}
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$xx$garbage"} {
		if CheckPassword(digest, "anything") {
			t.Fatalf("malformed digest %q verified", digest)
		}
	}
}

func TestHashPasswordCostOutOfRangeFallsBack(t *testing.T) {
	hash, err := HashPassword("some password!", 99)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", cost)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", bcrypt.MinCost); err == nil {
		t.Fatal("expected error for empty password")
	}
}
