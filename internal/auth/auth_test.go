package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("0123456789abcdef", time.Hour)

	token, err := svc.Generate("user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("got user id %q, want user-123", userID)
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("0123456789abcdef", -time.Minute)

	token, err := svc.Generate("user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Parse(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("0123456789abcdef", time.Hour)
	verifier := NewTokenService("fedcba9876543210", time.Hour)

	token, err := issuer.Generate("user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected error for token signed with a different secret")
	}
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService("0123456789abcdef", time.Hour)
	if _, err := svc.Parse("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("correct password must verify")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("wrong password must not verify")
	}
}
