package auth

import (
	"context"
	"testing"
	"time"

	"github.com/grantlyhq/grantly/backend/internal/config"
)

func TestLocalVerifier_RoundTrip(t *testing.T) {
	v := NewLocalVerifier("test-secret-key-for-testing")

	token, err := v.GenerateToken("auth0|abc123", "founder@example.com",
		[]string{"get:adminLocal", "get:adminStaging"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.Subject != "auth0|abc123" {
		t.Errorf("Subject = %q, expected %q", claims.Subject, "auth0|abc123")
	}
	if claims.Email != "founder@example.com" {
		t.Errorf("Email = %q, expected %q", claims.Email, "founder@example.com")
	}
	if len(claims.Scopes) != 2 {
		t.Fatalf("Scopes = %v, expected 2 entries", claims.Scopes)
	}
	if !claims.HasScope("get:adminLocal") {
		t.Error("HasScope(get:adminLocal) should be true")
	}
	if claims.HasScope("get:adminProduction") {
		t.Error("HasScope(get:adminProduction) should be false")
	}
}

func TestLocalVerifier_InvalidToken(t *testing.T) {
	v := NewLocalVerifier("test-secret-key-for-testing")

	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		if _, err := v.Verify(context.Background(), token); err == nil {
			t.Errorf("Verify(%q) should return error", token)
		}
	}
}

func TestLocalVerifier_WrongSecret(t *testing.T) {
	signer := NewLocalVerifier("original-secret")
	token, _ := signer.GenerateToken("auth0|abc", "", nil, time.Hour)

	other := NewLocalVerifier("different-secret")
	if _, err := other.Verify(context.Background(), token); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestLocalVerifier_ExpiredToken(t *testing.T) {
	v := NewLocalVerifier("test-secret-key-for-testing")
	token, _ := v.GenerateToken("auth0|abc", "", nil, -time.Minute)

	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestSplitScopes(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"get:adminLocal", 1},
		{"get:adminLocal get:adminProduction get:adminStaging", 3},
		{"  get:adminLocal   get:adminStaging  ", 2},
	}

	for _, tt := range tests {
		got := splitScopes(tt.input)
		if len(got) != tt.expected {
			t.Errorf("splitScopes(%q) = %v, expected %d entries", tt.input, got, tt.expected)
		}
	}
}

func TestNewVerifier_LocalMode(t *testing.T) {
	// No issuer configured means local HS256 verification.
	v, err := NewVerifier(context.Background(), &config.AuthConfig{LocalSecret: "secret"})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	if _, ok := v.(*LocalVerifier); !ok {
		t.Errorf("expected *LocalVerifier, got %T", v)
	}
}
