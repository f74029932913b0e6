package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ywdonga/DiduServer/internal/auth/store"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// RequireAuth resolves the Authorization bearer token to an active user
// and attaches the user ID to the request context. Tokens for missing
// or inactive users fail with 401.
func RequireAuth(tokens store.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read the bearer token
		header := c.GetHeader("Authorization")
		value, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		// 2. Resolve it to an active user
		userID, err := tokens.UserIDForValue(c.Request.Context(), value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		// 3. Attach user_id to context
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
