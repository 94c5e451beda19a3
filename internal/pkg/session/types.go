// internal/pkg/session/types.go
package session

import "time"

// SessionData is the Redis record kept for every issued access token.
type SessionData struct {
	JTI            string    `json:"jti"`
	StaffID        int64     `json:"staff_id"`
	Email          string    `json:"email"`
	Roles          []string  `json:"roles"`
	Device         string    `json:"device,omitempty"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	LoginAt        time.Time `json:"login_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
