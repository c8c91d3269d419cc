package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grantlyhq/grantly/backend/internal/auth"
	"github.com/grantlyhq/grantly/backend/pkg/response"
)

const (
	ContextSubject = "auth_subject"
	ContextEmail   = "auth_email"
	ContextScopes  = "auth_scopes"
)

// AuthRequired verifies the bearer token and puts its claims on the context.
func AuthRequired(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextScopes, claims.Scopes)

		c.Next()
	}
}

// ScopeRequired rejects requests whose token carries none of the given
// scopes. It must run after AuthRequired.
func ScopeRequired(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted := GetScopes(c)
		for _, required := range scopes {
			for _, s := range granted {
				if s == required {
					c.Next()
					return
				}
			}
		}
		response.Forbidden(c, "insufficient scope")
		c.Abort()
	}
}

// GetSubject gets the verified token subject from context
func GetSubject(c *gin.Context) string {
	if sub, exists := c.Get(ContextSubject); exists {
		return sub.(string)
	}
	return ""
}

// GetEmail gets the verified token email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}

// GetScopes gets the granted scopes from context
func GetScopes(c *gin.Context) []string {
	if scopes, exists := c.Get(ContextScopes); exists {
		return scopes.([]string)
	}
	return nil
}
