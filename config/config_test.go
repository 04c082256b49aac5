package config

import (
	"testing"
	"time"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}

	if err := policy.Validate("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := policy.Validate("longenough"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("TEST_INT", "invalid")
	if got := getIntEnv("TEST_INT", 5); got != 5 {
		t.Fatalf("expected default int, got %d", got)
	}
}

func TestLoadRequiredVariables(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DB_USERNAME", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "accounts")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET_KEY is missing")
	}

	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_NAME", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DB_NAME is missing")
	}

	t.Setenv("DB_NAME", "accounts")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWTAccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected default access TTL, got %v", cfg.JWTAccessTokenTTL)
	}
	if cfg.PasswordPolicy.MinLength != 8 {
		t.Fatalf("expected default min length 8, got %d", cfg.PasswordPolicy.MinLength)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBUsername: "svc",
		DBPassword: "pw",
		DBName:     "accounts",
	}

	want := "svc:pw@tcp(db.internal)/accounts?parseTime=true"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
