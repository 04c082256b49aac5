package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/refi-auto/ms-go-accounts/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrStaleToken     = errors.New("fresh token required")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type"`
	Fresh     bool   `json:"fresh"`
	jwt.RegisteredClaims
}

type revokedTokenChecker interface {
	Exists(ctx context.Context, jti string) (bool, error)
}

type TokenService struct {
	revokedRepo revokedTokenChecker
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewTokenService(revokedRepo revokedTokenChecker, cfg *config.Config) *TokenService {
	return &TokenService{
		revokedRepo: revokedRepo,
		secret:      []byte(cfg.JWTSecret),
		accessTTL:   cfg.JWTAccessTokenTTL,
		refreshTTL:  cfg.JWTRefreshTokenTTL,
	}
}

// IssueAccessToken signs a short-lived access token. Tokens minted at login
// are fresh; tokens minted from a refresh token are not.
func (s *TokenService) IssueAccessToken(userID uint64, fresh bool) (string, error) {
	return s.sign(userID, TokenTypeAccess, fresh, s.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token, usable only to mint
// new access tokens.
func (s *TokenService) IssueRefreshToken(userID uint64) (string, error) {
	return s.sign(userID, TokenTypeRefresh, false, s.refreshTTL)
}

func (s *TokenService) sign(userID uint64, tokenType string, fresh bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		Fresh:     fresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies signature and expiry, checks the jti denylist, and
// enforces the token-type and freshness requirements of the caller.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string, wantRefresh, wantFresh bool) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	wantType := TokenTypeAccess
	if wantRefresh {
		wantType = TokenTypeRefresh
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	if wantFresh && !claims.Fresh {
		return nil, ErrStaleToken
	}

	revoked, err := s.revokedRepo.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
