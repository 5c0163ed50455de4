package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard decides whether a user may call privileged routes.
type AdminGuard interface {
	RequireAdmin(ctx context.Context, userID string) error
}

// RequireAdmin must run after Auth. The guard reads the stored user record,
// so a role change takes effect on the next request.
func RequireAdmin(guard AdminGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if err := guard.RequireAdmin(c.Request().Context(), userID); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// BootstrapTokenHeader carries the operator secret for the make-admin route.
const BootstrapTokenHeader = "X-Bootstrap-Token"

// BootstrapToken admits requests whose X-Bootstrap-Token header equals token.
// An empty token rejects everything.
func BootstrapToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(BootstrapTokenHeader)
			if token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid bootstrap token")
			}
			return next(c)
		}
	}
}
