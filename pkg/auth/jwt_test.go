package auth

import (
	"testing"
	"time"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", false},
		{"case insensitive scheme", "bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing token", "Bearer ", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"no scheme", "abc123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	jwtAuth, err := NewJWTAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTAuth() error = %v", err)
	}

	token, err := jwtAuth.GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	user, err := jwtAuth.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", user.ID)
	}
	if user.Email != "user@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, _ := NewJWTAuth("secret-a", time.Hour)
	verifier, _ := NewJWTAuth("secret-b", time.Hour)

	token, err := signer.GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := verifier.VerifyAccessToken(token); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	jwtAuth, _ := NewJWTAuth("test-secret", -time.Minute)

	token, err := jwtAuth.GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := jwtAuth.VerifyAccessToken(token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestNewJWTAuthRequiresSecret(t *testing.T) {
	if _, err := NewJWTAuth("", time.Hour); err == nil {
		t.Error("empty secret should be rejected")
	}
}
