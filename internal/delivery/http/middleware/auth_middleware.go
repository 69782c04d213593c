// Package middleware contains the HTTP middleware for the Echo server.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"beacon/internal/delivery/http/response"
	"beacon/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ContextKeyUserID is where Authenticate stores the verified subject.
const ContextKeyUserID = "userID"

// ContextKeyClaims is where Authenticate stores the full verified claims.
const ContextKeyClaims = "claims"

// AuthMiddleware validates bearer tokens on protected routes.
type AuthMiddleware struct {
	verifier service.TokenVerifier
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(verifier service.TokenVerifier, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// Authenticate verifies the Authorization header and stores the verified
// claims on the context. The header value may be either "Bearer <token>" or
// the raw token. Responses and logs never include token material.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Message(c, http.StatusUnauthorized, "Authorization token required")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.verifier.Verify(c.Request().Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrKeySetUnavailable) {
				m.logger.Error("Token verification unavailable",
					slog.String("error", err.Error()),
					slog.String("path", c.Request().URL.Path),
				)

				return response.InternalServerError(c)
			}

			m.logger.Debug("Token rejected",
				slog.String("error", err.Error()),
				slog.String("path", c.Request().URL.Path),
			)

			return response.Message(c, http.StatusUnauthorized, "Invalid or expired token")
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyClaims, claims)

		return next(c)
	}
}
