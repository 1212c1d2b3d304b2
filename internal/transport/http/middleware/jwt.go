package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"iga-community/internal/pkg/jwtutil"
	"iga-community/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
)

// BearerToken returns the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	return token, token != ""
}

// AuthJWT admits requests carrying a valid session token. Reset tokens are
// rejected here; only the password update endpoint accepts them.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Missing authorization")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil || claims.Purpose != jwtutil.PurposeSession {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired session")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

// RequireAdmin must run after AuthJWT.
func RequireAdmin(isAdmin func(email string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c.GetString(ContextEmailKey)) {
			response.Error(c, http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}
