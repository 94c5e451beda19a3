package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiodesk-service/internal/domain/auth"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*auth.LoginResponse)
	return r, args.Error(1)
}

func (m *mockService) Refresh(ctx context.Context, req *auth.RefreshRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*auth.LoginResponse)
	return r, args.Error(1)
}

func (m *mockService) Logout(ctx context.Context, claims *jwt.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *mockService) Me(ctx context.Context, staffID int64) (*auth.StaffInfo, error) {
	args := m.Called(ctx, staffID)
	r, _ := args.Get(0).(*auth.StaffInfo)
	return r, args.Error(1)
}

func (m *mockService) CreateStaff(ctx context.Context, req *auth.CreateStaffRequest) (*auth.StaffInfo, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*auth.StaffInfo)
	return r, args.Error(1)
}

func newRouter(svc *mockService, claims *jwt.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set("staff_id", claims.StaffID)
			c.Set("claims", claims)
		}
	})
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
	authed.POST("/staff", h.CreateStaff)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	svc := &mockService{}
	svc.On("Login", mock.Anything, mock.MatchedBy(func(req *auth.LoginRequest) bool {
		return req.Password == "good-pass"
	})).Return(&auth.LoginResponse{AccessToken: "tok", TokenType: "Bearer"}, nil)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized))
	r := newRouter(svc, nil)

	w := send(r, http.MethodPost, "/auth/login", `{"email":"desk@studio.test","password":"good-pass"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok"`)

	w = send(r, http.MethodPost, "/auth/login", `{"email":"desk@studio.test","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshHandler(t *testing.T) {
	svc := &mockService{}
	svc.On("Refresh", mock.Anything, mock.MatchedBy(func(req *auth.RefreshRequest) bool {
		return req.RefreshToken == "r1"
	})).Return(&auth.LoginResponse{AccessToken: "tok2"}, nil)
	svc.On("Refresh", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: refresh token already used", xerrors.ErrUnauthorized))
	r := newRouter(svc, nil)

	w := send(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"r1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"tok2"`)

	w = send(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"r0"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/auth/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRequiresClaims(t *testing.T) {
	svc := &mockService{}

	w := send(newRouter(svc, nil), http.MethodPost, "/auth/logout", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestLogoutAndMe(t *testing.T) {
	claims := &jwt.Claims{StaffID: 7, RegisteredClaims: jwtlib.RegisteredClaims{ID: "jti-7"}}
	svc := &mockService{}
	svc.On("Logout", mock.Anything, claims).Return(nil)
	svc.On("Me", mock.Anything, int64(7)).Return(&auth.StaffInfo{ID: 7, Email: "desk@studio.test"}, nil)
	r := newRouter(svc, claims)

	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/auth/logout", "").Code)
	w := send(r, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"desk@studio.test"`)
	svc.AssertExpectations(t)
}

func TestCreateStaffHandler(t *testing.T) {
	svc := &mockService{}
	svc.On("CreateStaff", mock.Anything, mock.Anything).Return(&auth.StaffInfo{ID: 11}, nil)
	r := newRouter(svc, &jwt.Claims{StaffID: 1})

	w := send(r, http.MethodPost, "/staff", `{"email":"new@studio.test","full_name":"New","password":"longenough"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(r, http.MethodPost, "/staff", `{"email":"new@studio.test","full_name":"New","password":"longenough","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPost, "/staff", `{"email":"new@studio.test","full_name":"New","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "CreateStaff", 1)
}
