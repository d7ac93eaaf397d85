package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/service"
)

// TokenVerifier validates a bearer token and returns its subject id.
// Satisfied by *clerk.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// UserResolver returns the authoritative local record for a verified
// subject id. Satisfied by *service.RoleResolver.
type UserResolver interface {
	Resolve(ctx context.Context, subjectID string) (model.User, error)
}

// RequireAuth returns an Echo middleware that validates a Bearer access
// token against the identity provider's signing keys and resolves the
// local user record. On success the subject id and role are stored in
// the request context under "user_id" and "role" for downstream
// middleware and handlers. Missing provider configuration is reported
// as a 500 rather than silently letting requests through.
func RequireAuth(secretKey string, verifier TokenVerifier, resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the token.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing Authorization token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			if secretKey == "" {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Missing CLERK_SECRET_KEY"})
			}
			if verifier == nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Missing CLERK_JWKS_URL"})
			}

			ctx := c.Request().Context()
			subjectID, err := verifier.Verify(ctx, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			u, err := resolver.Resolve(ctx, subjectID)
			if err != nil {
				if errors.Is(err, service.ErrNoEmail) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "User record missing email"})
				}
				log.Printf("auth: resolving %s failed: %v", subjectID, err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			// Store the subject id and resolved role in the context.
			// Handlers and downstream middleware access these via c.Get().
			c.Set("user_id", u.UserID)
			c.Set("role", string(u.Role))
			return next(c)
		}
	}
}
