package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swapcloset/swapcloset/internal/auth"
	"github.com/swapcloset/swapcloset/internal/models"
)

const identityContextKey = "identity"

// bearerToken extracts the bearer token from the Authorization header, or
// "" when absent.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// requireIdentity returns middleware that validates the bearer token and
// injects the resolved Identity into the request context. Missing,
// malformed or expired tokens get a 401.
func requireIdentity(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			identity, err := auth.ParseIdentity(token, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

// identityFrom returns the Identity stored by requireIdentity, or nil.
func identityFrom(c echo.Context) *models.Identity {
	identity, _ := c.Get(identityContextKey).(*models.Identity)
	return identity
}
