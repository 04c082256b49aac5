package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/refi-auto/ms-go-accounts/app/repository"
	"github.com/refi-auto/ms-go-accounts/app/service"
	"github.com/refi-auto/ms-go-accounts/config"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) (*service.TokenService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTAccessTokenTTL:  accessTTL,
		JWTRefreshTokenTTL: refreshTTL,
	}

	revokedRepo := repository.NewRevokedTokenRepository(db)
	return service.NewTokenService(revokedRepo, cfg), mock, func() { _ = db.Close() }
}

func expectNotRevoked(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(existsRevokedQuery).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc, mock, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	token, err := svc.IssueAccessToken(42, true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expectNotRevoked(mock)
	claims, err := svc.ValidateToken(context.Background(), token, false, false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user ID 42, got %d", claims.UserID)
	}
	if !claims.Fresh {
		t.Fatalf("expected login-issued token to be fresh")
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti to be set")
	}
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	svc, mock, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	token, err := svc.IssueRefreshToken(42)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expectNotRevoked(mock)
	claims, err := svc.ValidateToken(context.Background(), token, true, false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.TokenType != service.TokenTypeRefresh {
		t.Fatalf("expected refresh token type, got %q", claims.TokenType)
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc, _, cleanup := newTokenService(t, -time.Minute, 7*24*time.Hour)
	defer cleanup()

	token, err := svc.IssueAccessToken(42, true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), token, false, false)
	if !errors.Is(err, service.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongTokenType(t *testing.T) {
	svc, _, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	accessToken, err := svc.IssueAccessToken(42, true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	refreshToken, err := svc.IssueRefreshToken(42)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), accessToken, true, false); !errors.Is(err, service.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for access token on refresh check, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), refreshToken, false, false); !errors.Is(err, service.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for refresh token on access check, got %v", err)
	}
}

func TestTokenService_StaleToken(t *testing.T) {
	svc, _, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	// A token minted through refresh is not fresh.
	token, err := svc.IssueAccessToken(42, false)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = svc.ValidateToken(context.Background(), token, false, true)
	if !errors.Is(err, service.ErrStaleToken) {
		t.Fatalf("expected ErrStaleToken, got %v", err)
	}
}

func TestTokenService_RevokedToken(t *testing.T) {
	svc, mock, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	token, err := svc.IssueAccessToken(42, true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	mock.ExpectQuery(existsRevokedQuery).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	_, err = svc.ValidateToken(context.Background(), token, false, false)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for revoked jti, got %v", err)
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc, _, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	_, err := svc.ValidateToken(context.Background(), "not.a.jwt", false, false)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc, _, cleanup := newTokenService(t, 15*time.Minute, 7*24*time.Hour)
	defer cleanup()

	token, err := svc.IssueAccessToken(42, true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := token + "x"
	if _, err := svc.ValidateToken(context.Background(), tampered, false, false); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered signature, got %v", err)
	}
}
