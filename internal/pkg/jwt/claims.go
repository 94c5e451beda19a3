// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

// Staff roles.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// Claims identifies a studio staff member.
type Claims struct {
	StaffID int64    `json:"staff_id"`
	Roles   []string `json:"roles,omitempty"`
	Device  string   `json:"device,omitempty"`
	Purpose string   `json:"purpose"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// VerifyAudience checks that audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
