package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Eursukkul/bitboletos/internal/session"
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*session.Session, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// session in the echo context.
func Authenticate(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			s, err := sessions.Current(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if !s.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(sessionKey).(*session.Session)
	return s, ok && s != nil
}

// SetSession is used by handler tests to fake an authenticated request.
func SetSession(c echo.Context, s *session.Session) {
	c.Set(sessionKey, s)
}

func BearerToken(c echo.Context) (string, bool) {
	token, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}
