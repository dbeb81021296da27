package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	userID := uuid.NewString()

	token, err := m.Generate(userID, "lecturer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != userID || claims.Role != "lecturer" {
		t.Fatalf("unexpected claims: subject=%q role=%q", claims.Subject, claims.Role)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", time.Hour)
	token, err := m.Generate(uuid.NewString(), "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager("secret-b", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)
	token, err := m.Generate(uuid.NewString(), "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestExpiry(t *testing.T) {
	ttl := time.Hour
	m := NewJWTManager("test-secret", ttl)
	token, err := m.Generate(uuid.NewString(), "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	exp, err := m.Expiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	until := time.Until(exp)
	if until < ttl-time.Minute || until > ttl {
		t.Fatalf("expiry %v not ~1h away", until)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := ExtractTokenFromHeader(r)
	if err != nil || token != "abc123" {
		t.Fatalf("got token=%q err=%v", token, err)
	}

	r.Header.Set("Authorization", "Basic abc123")
	if _, err := ExtractTokenFromHeader(r); err == nil {
		t.Fatalf("expected error for non-bearer header")
	}

	r.Header.Del("Authorization")
	if _, err := ExtractTokenFromHeader(r); err == nil {
		t.Fatalf("expected error for missing header")
	}
}
