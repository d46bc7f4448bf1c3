package auth

import (
	"errors"
	"net/http"
	"strings"

	"novelhub/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Fail(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		if msg, ok := authenticate(c, authHeader, accessTokenSecret); !ok {
			api.Fail(c, http.StatusUnauthorized, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A header that is present
// but invalid is still rejected.
func OptionalAuth(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if msg, ok := authenticate(c, authHeader, accessTokenSecret); !ok {
			api.Fail(c, http.StatusUnauthorized, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func authenticate(c *gin.Context, authHeader, secret string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
		return "Invalid authorization header format", false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "Token is empty", false
	}

	claims, err := ValidateToken(tokenString, secret)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return "Token expired", false
		case errors.Is(err, ErrInvalidTokenType):
			return "Invalid token type", false
		default:
			return "Invalid or malformed token", false
		}
	}

	if claims.TokenType != "access" {
		return "Access token required", false
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
	c.Set(ctxUserRole, claims.Role)
	return "", true
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxUserRole)
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "Invalid role type")
			c.Abort()
			return
		}

		if roleStr != requiredRole {
			api.Fail(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get(ctxUserRole)
	s, _ := role.(string)
	return s
}
