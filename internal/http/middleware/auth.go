package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/wasteops-collections/internal/auth"
	"github.com/nurpe/wasteops-collections/internal/model"
)

const principalKey = "principal"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SessionResolver returns the user a session pointer currently designates.
type SessionResolver interface {
	CurrentSession(ctx context.Context, sessionID string) (*model.User, bool)
}

// Auth validates the bearer token and resolves its session pointer.
// A token whose session was logged out or now points at another user is rejected.
func Auth(parser TokenParser, sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, ok := sessions.CurrentSession(c.Request.Context(), claims.SessionID)
		if !ok || user.ID != claims.UserID() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set(principalKey, model.Principal{
			UserID:    user.ID,
			SessionID: claims.SessionID,
			Role:      user.Role(),
			Name:      user.DisplayName(),
		})
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	allowed := make(map[model.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := v.(model.Principal)
	return principal, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
