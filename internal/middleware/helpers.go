// internal/middleware/helpers.go
package middleware

import (
	"studiodesk-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ctxStaffID   = "staff_id"
	ctxJTI       = "jti"
	ctxRoles     = "roles"
	ctxDevice    = "device"
	ctxClaims    = "claims"
	ctxRequestID = "request_id"
)

func GetStaffID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxStaffID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxJTI)
	if !exists {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// MustGetStaffID panics when Auth did not run.
func MustGetStaffID(c *gin.Context) int64 {
	id, ok := GetStaffID(c)
	if !ok {
		panic("staff_id not found in context")
	}
	return id
}

func GetRoles(c *gin.Context) []string {
	v, exists := c.Get(ctxRoles)
	if !exists {
		return []string{}
	}
	roles, ok := v.([]string)
	if !ok {
		return []string{}
	}
	return roles
}

func HasRole(c *gin.Context, role string) bool {
	if claims, ok := GetClaims(c); ok {
		return claims.HasRole(role)
	}
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}
