package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/refi-auto/ms-go-accounts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyClaims = "token_claims"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string, wantRefresh, wantFresh bool) (*service.Claims, error)
}

type AuthMiddleware struct {
	tokens tokenValidator
}

func NewAuthMiddleware(tokens tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth admits any valid access token.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, false, false)
}

// RequireFresh admits only access tokens minted directly at login.
func (m *AuthMiddleware) RequireFresh(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, false, true)
}

// RequireRefresh admits only refresh tokens.
func (m *AuthMiddleware) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, true, false)
}

func (m *AuthMiddleware) require(next echo.HandlerFunc, wantRefresh, wantFresh bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing authorization header",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid authorization header format",
			})
		}

		claims, err := m.tokens.ValidateToken(c.Request().Context(), parts[1], wantRefresh, wantFresh)
		if err != nil {
			logrus.WithError(err).Debug("Token rejected")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid or expired token",
			})
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyClaims, claims)

		return next(c)
	}
}
