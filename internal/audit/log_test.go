package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Akash94kumar/employeHR/internal/auth"
	"github.com/Akash94kumar/employeHR/internal/obs"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	logger := obs.Logger()
	orig := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(orig) })
	return &buf
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogEventIncludesActorAndRequestID(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = auth.ContextWithClaims(ctx, &auth.AccessClaims{
		Role:             auth.RoleHR,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-7"},
	})

	if err := LogEvent(ctx, "auth.login", map[string]any{"email": "a@b.c"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("audit line is not JSON: %v", err)
	}
	if entry["event"] != "auth.login" || entry["request_id"] != "req-123" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["actor_id"] != "acc-7" || entry["actor_role"] != "hr" {
		t.Fatalf("actor not recorded: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["email"] != "a@b.c" {
		t.Fatalf("fields not recorded: %v", entry)
	}
}
