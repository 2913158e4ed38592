package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token service: %v", err)
	}

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	sub, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("Expected subject user-1, got %q", sub)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewTokenService("one", time.Hour)
	verifier, _ := NewTokenService("two", time.Hour)

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Expected ErrMissingSecret, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Hour)
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
