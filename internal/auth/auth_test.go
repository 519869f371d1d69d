package auth

import (
	"testing"

	"github.com/devang100/live-ai-assistant/internal/config"
)

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateJWT("alice")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	subject, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if subject != "alice" {
		t.Errorf("expected subject alice, got %q", subject)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "first-secret"
	token, err := GenerateJWT("alice")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	config.AppConfig.JWTSecret = "second-secret"
	if _, err := ValidateJWT(token); err == nil {
		t.Error("token signed with another secret must not validate")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
