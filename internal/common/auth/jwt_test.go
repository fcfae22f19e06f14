package auth

import (
	"testing"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "swiftsoko",
		Audience:  "swiftsoko",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", RoleDriver, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	actor, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if actor.UserID != "u-1" {
		t.Fatalf("subject mismatch: %s", actor.UserID)
	}
	if actor.Role != RoleDriver {
		t.Fatalf("role mismatch: %s", actor.Role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "swiftsoko"}
	token, _, err := GenerateAccessToken(cfg, "u-2", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "secret-b", Issuer: "swiftsoko"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("driver") != RoleDriver {
		t.Fatalf("expected driver")
	}
	if ParseRole("ADMIN") != RoleAdmin {
		t.Fatalf("expected admin")
	}
	if ParseRole("whatever") != RoleUser {
		t.Fatalf("expected default user role")
	}
}
