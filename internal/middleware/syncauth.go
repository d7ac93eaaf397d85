package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSyncSecret gates server-to-server endpoints behind a shared
// secret carried in the x-sync-secret header. An unconfigured secret
// is a deployment fault and answers 500 instead of silently letting
// callers through.
func RequireSyncSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Missing AWS_USER_SYNC_SECRET"})
			}
			header := c.Request().Header.Get("x-sync-secret")
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid sync secret"})
			}
			return next(c)
		}
	}
}
