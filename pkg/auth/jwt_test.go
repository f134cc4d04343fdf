package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNewAccessTokenAndParse(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken(42, "owner@peasomy.test", "property_owner", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	claims, err := Parse(tok, "test-secret")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Sub != 42 {
		t.Fatalf("sub mismatch: got %d want 42", claims.Sub)
	}
	if claims.Email != "owner@peasomy.test" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	if claims.Role != "property_owner" {
		t.Fatalf("role mismatch: got %q", claims.Role)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken(1, "a@x.com", "guest", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	if _, err := Parse(tok, "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken(1, "a@x.com", "guest", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	if _, err := Parse(tok, "wrong-secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParse_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken(1, "a@x.com", "guest", "secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	// Flip one character in the signature segment.
	i := strings.LastIndex(tok, ".") + 1
	b := []byte(tok)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	if _, err := Parse(string(b), "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse("not.a.jwt", "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}
