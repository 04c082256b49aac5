package service_test

import (
	"testing"

	"github.com/refi-auto/ms-go-accounts/app/service"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := service.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("hash must not equal plaintext")
	}

	if !service.CheckPassword("secret123", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if service.CheckPassword("wrongpass", hash) {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := service.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := service.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected per-call salt to produce distinct hashes")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if service.CheckPassword("secret123", "not-a-bcrypt-hash") {
		t.Fatalf("expected malformed hash to fail verification")
	}
}
