package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrInvalidToken is returned by validators for missing, malformed or
// expired tokens.
var ErrInvalidToken = errors.New("invalid token")

const uidKey = "auth.uid"

// TokenValidator checks a bearer token and returns the caller's uid.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// Middleware authenticates requests with a Bearer token and stores the
// caller uid on the request context.
func Middleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		uid, err := v.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(uidKey, uid)
		c.Next()
	}
}

// UID returns the authenticated caller uid set by Middleware.
func UID(c *gin.Context) string {
	return c.GetString(uidKey)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
