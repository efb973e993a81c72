package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/pkg/cookie"
	"apple-sales-reservations/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxActorKey  = "actor"
	ctxClaimsKey = "jwt_claims"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, httperr.KindUnauthorized, nil, "Access token required", nil)
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, httperr.KindUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusInternalServerError, httperr.KindInternal, nil, "Internal server error", nil)
			return
		}

		if !slices.Contains(roles, actor.Role) {
			httperr.AbortWithError(c, http.StatusForbidden, httperr.KindForbidden, nil, "Insufficient permissions", nil)
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return cookie.GetAccessToken(c)
}

// SetActor stores the authenticated caller and the claims the request logger reads.
func SetActor(c *gin.Context, actor user.Actor) {
	c.Set(ctxActorKey, actor)
	c.Set(ctxClaimsKey, map[string]any{
		"username": actor.Username,
		"role":     actor.Role.String(),
	})
}

func GetActor(c *gin.Context) (user.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return user.Actor{}, false
	}

	actor, ok := v.(user.Actor)
	return actor, ok
}
