// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"studiodesk-service/internal/pkg/jwt"
	"studiodesk-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenValidator checks an access token against signature, blacklist and
// session store.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Auth rejects requests without a valid staff access token.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set(ctxStaffID, claims.StaffID)
		c.Set(ctxJTI, claims.ID)
		c.Set(ctxRoles, claims.Roles)
		c.Set(ctxDevice, claims.Device)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

// RequireRole must run after Auth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, want := range roles {
			if HasRole(c, want) {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions",
			errors.New("staff member does not have required role"),
			map[string]interface{}{
				"required_roles": roles,
				"staff_roles":    GetRoles(c),
			})
	}
}

// OwnerOnly chains Auth with an owner role check.
func (m *AuthMiddleware) OwnerOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(jwt.RoleOwner),
	}
}

// extractToken reads a Bearer header, falling back to the token query
// parameter used by browser websocket clients.
func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}
