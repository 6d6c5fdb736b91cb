package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(testSecret, "taskdeck-test", 15*time.Minute, 7*24*time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestIssuePairRoundTrip(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.IssuePair("user-1")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("unexpected token_type: %s", pair.TokenType)
	}

	access, err := svc.Validate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Validate(access): %v", err)
	}
	if access.Subject != "user-1" {
		t.Fatalf("unexpected subject: %s", access.Subject)
	}
	if err := RequireType(access, TypeAccess); err != nil {
		t.Fatalf("RequireType(access): %v", err)
	}

	refresh, err := svc.Validate(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Validate(refresh): %v", err)
	}
	if err := RequireType(refresh, TypeRefresh); err != nil {
		t.Fatalf("RequireType(refresh): %v", err)
	}
	if !refresh.ExpiresAt.Time.After(access.ExpiresAt.Time) {
		t.Fatalf("refresh should outlive access: %v vs %v", refresh.ExpiresAt, access.ExpiresAt)
	}
}

func TestTypeConfusionRejected(t *testing.T) {
	svc := newTestService(t)

	accessTok, _, err := svc.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	claims, err := svc.Validate(accessTok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := RequireType(claims, TypeRefresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}

	refreshTok, _, err := svc.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err = svc.Validate(refreshTok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := RequireType(claims, TypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
}

func TestValidateRejectsGarbageAndTampering(t *testing.T) {
	svc := newTestService(t)

	for _, raw := range []string{"", "   ", "not.a.jwt", "a.b"} {
		if _, err := svc.Validate(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Validate(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}

	tok, _, err := svc.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := svc.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered signature, got %v", err)
	}

	other, err := NewService(strings.Repeat("x", 32), "taskdeck-test", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := other.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	current := time.Now()
	svc := newTestService(t, WithClock(func() time.Time { return current }))

	tok, _, err := svc.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Validate(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	current = current.Add(16 * time.Minute)
	if _, err := svc.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(testSecret, "someone-else", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	tok, _, err := other.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}
