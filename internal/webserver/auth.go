package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionClaims is the explicit session object carried by every request.
// The browser used to keep only a bare role string in local storage; the
// server now owns the session and the role claim is what route guards
// check.
type SessionClaims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the given user identity.
func IssueToken(secret string, userID int64, name, role string, expire time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CurrentSession extracts the session claims set by the JWT middleware.
func CurrentSession(c echo.Context) *SessionClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireRole guards a route group behind a role claim.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := CurrentSession(c)
			if session == nil || session.Role != role {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"code":    "FORBIDDEN",
					"message": "Insufficient role for this resource",
				})
			}
			return next(c)
		}
	}
}
