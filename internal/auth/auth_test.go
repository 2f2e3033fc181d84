package auth

import (
	"context"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	subject, err := ParseTokenSubject(token, secret)
	if err != nil {
		t.Fatalf("ParseTokenSubject failed: %v", err)
	}
	if subject != "u1" {
		t.Errorf("Expected subject u1, got %q", subject)
	}

	if _, err := ParseTokenSubject(token, []byte("other-secret")); err == nil {
		t.Error("Expected wrong secret to be rejected")
	}
}

func TestExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken("u1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := ParseTokenSubject(token, secret); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestCallerContext(t *testing.T) {
	if _, ok := CallerFrom(context.Background()); ok {
		t.Error("Expected no caller on empty context")
	}
	ctx := WithCaller(context.Background(), "u1")
	if uid, ok := CallerFrom(ctx); !ok || uid != "u1" {
		t.Errorf("Expected caller u1, got %q (%v)", uid, ok)
	}
	if _, ok := CallerFrom(WithCaller(context.Background(), "  ")); ok {
		t.Error("Expected blank caller to be rejected")
	}
}
