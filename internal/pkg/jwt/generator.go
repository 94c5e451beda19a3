// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const refreshTTL = 30 * 24 * time.Hour

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string
	TTL      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		TTL:      ttl,
	}
}

// Generate signs a token and returns it with its jti.
func (g *Generator) Generate(staffID int64, roles []string, device, purpose string, ttl time.Duration) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		StaffID: staffID,
		Roles:   roles,
		Device:  device,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   fmt.Sprintf("%d", staffID),
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}

func (g *Generator) GenerateAccessToken(staffID int64, roles []string, device string) (string, string, error) {
	return g.Generate(staffID, roles, device, PurposeAccess, g.TTL)
}

func (g *Generator) GenerateRefreshToken(staffID int64, device string) (string, string, error) {
	return g.Generate(staffID, nil, device, PurposeRefresh, refreshTTL)
}
