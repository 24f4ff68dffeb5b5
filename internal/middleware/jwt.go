package middleware // reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxProfileID = "profile_id"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject, role and profile claims into the
// request context.  The secret must match the one used when issuing
// tokens.  Handlers behind this middleware read identity via
// GetUserID/GetProfileID.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(CtxUserID, claims["sub"])
			c.Set(CtxRole, claims["role"])
			c.Set(CtxProfileID, claims["profile_id"])
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user's ID from context.
func GetUserID(c echo.Context) (uint64, bool) { return claimUint(c, CtxUserID) }

// GetProfileID returns the rider/driver profile ID from context.
func GetProfileID(c echo.Context) (uint64, bool) { return claimUint(c, CtxProfileID) }

// claimUint converts a numeric JWT claim stored in context.  JWT
// numbers decode as float64.
func claimUint(c echo.Context, key string) (uint64, bool) {
	switch v := c.Get(key).(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
