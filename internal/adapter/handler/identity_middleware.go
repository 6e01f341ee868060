package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/yt-rag-engine/pkg/jwt"
)

const requesterContextKey = "requester"

// IdentityMiddleware resolves the caller behind a request: a valid signed
// bearer token wins, otherwise the plain X-Requested-By header is trusted
// as-is, matching how submission/query handlers already read it.
func IdentityMiddleware(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requester := c.Request().Header.Get("X-Requested-By")

			if manager != nil {
				if token := ExtractToken(c.Request()); token != "" {
					if claims, err := manager.ValidateToken(token); err == nil {
						requester = claims.Subject
					}
				}
			}

			c.Set(requesterContextKey, requester)
			return next(c)
		}
	}
}

// Requester returns the identity resolved by IdentityMiddleware, falling
// back to the raw header if the middleware wasn't installed.
func Requester(c echo.Context) string {
	if v, ok := c.Get(requesterContextKey).(string); ok && v != "" {
		return v
	}
	return c.Request().Header.Get("X-Requested-By")
}
