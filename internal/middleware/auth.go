package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/session"
)

// SessionKey is the echo context key holding the session.Session of the caller.
const SessionKey = "session"

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
	}
	return parts[1], nil
}

// attachSession makes the identity available both on the echo context and on the
// request context passed down to services.
func attachSession(c echo.Context, s session.Session) {
	c.Set(SessionKey, s)
	c.SetRequest(c.Request().WithContext(session.WithSession(c.Request().Context(), s)))
}

// CurrentSession returns the session attached by one of the auth middlewares.
func CurrentSession(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(SessionKey).(session.Session)
	return s, ok
}
