package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"golang.org/x/exp/slog"
)

const sessionKey = "session"

// JWTAuthMiddleware authenticates the bearer token and stores the admin's
// session in the gin context.
func JWTAuthMiddleware(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			slog.Warn("Authorization header is missing", "path", c.FullPath())
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			slog.Warn("Authorization header format is invalid", "path", c.FullPath())
			abortUnauthorized(c, "Authorization header must start with Bearer ")
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(authHeader[len(BearerSchema):]))
		if err != nil {
			slog.Warn("Token validation failed", "error", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired")
			} else {
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session JWTAuthMiddleware stored
func SessionFrom(c *gin.Context) (session.Session, error) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, session.ErrNoSession
	}
	sess, ok := v.(session.Session)
	if !ok || !sess.Valid() {
		return session.Session{}, session.ErrNoSession
	}
	return sess, nil
}

// SetSession stores sess on c; used by tests and by JWTAuthMiddleware
func SetSession(c *gin.Context, sess session.Session) {
	c.Set(sessionKey, sess)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":        message,
		"notification": services.Notification{Message: message, Severity: services.SeverityError},
	})
}
