package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/auth"
)

// SessionCookieName is the cookie the browser client carries the
// session token in.
const SessionCookieName = "token"

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireSession is the gate in front of every task route: it resolves
// the session cookie to a user id or aborts with 401 before the
// handler runs.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)

		if err != nil || raw == "" {
			abortUnauthorized(c, "Missing session token")
			return
		}

		claims, err := m.jwt.VerifySessionToken(raw)

		if err != nil {
			abortUnauthorized(c, "Invalid or expired session token")
			return
		}

		c.Set(CtxUserID, claims.UserID)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// UserIDFromContext hides the magic key from handlers.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
