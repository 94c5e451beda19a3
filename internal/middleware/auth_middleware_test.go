package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiodesk-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

type stubValidator map[string]*jwt.Claims

func (s stubValidator) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(stubValidator{
		"owner": {StaffID: 1, Roles: []string{jwt.RoleOwner}, RegisteredClaims: jwtlib.RegisteredClaims{ID: "j1"}},
		"desk":  {StaffID: 2, Roles: []string{jwt.RoleStaff}, RegisteredClaims: jwtlib.RegisteredClaims{ID: "j2"}},
	})

	r := gin.New()
	r.GET("/me", m.Auth(), func(c *gin.Context) {
		jti, _ := GetJTI(c)
		c.JSON(http.StatusOK, gin.H{"staff_id": MustGetStaffID(c), "jti": jti})
	})
	r.GET("/owner", append(m.OwnerOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })...)
	return r
}

func get(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer nope").Code)

	w := get(r, "/me", "Bearer desk")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"staff_id":2,"jti":"j2"}`, w.Body.String())

	// sockets and links may carry the token in the query string
	assert.Equal(t, http.StatusOK, get(r, "/me?token=owner", "").Code)
}

func TestOwnerOnly(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusForbidden, get(r, "/owner", "Bearer desk").Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/owner", "Bearer owner").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/owner", "").Code)
}
