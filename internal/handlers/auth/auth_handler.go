// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"net/http"

	"studiodesk-service/internal/domain/auth"
	"studiodesk-service/internal/middleware"
	"studiodesk-service/internal/pkg/jwt"
	"studiodesk-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is implemented by the auth service.
type Service interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	Refresh(ctx context.Context, req *auth.RefreshRequest) (*auth.LoginResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, staffID int64) (*auth.StaffInfo, error)
	CreateStaff(ctx context.Context, req *auth.CreateStaffRequest) (*auth.StaffInfo, error)
}

type AuthHandler struct {
	authService Service
	logger      *zap.Logger
}

func NewAuthHandler(authService Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	resp, err := h.authService.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("token refresh failed", zap.String("ip", req.IPAddress), zap.Error(err))
		response.FromError(c, "token refresh failed", err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Int64("staff_id", claims.StaffID), zap.Error(err))
		response.FromError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	staffID, ok := middleware.GetStaffID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	info, err := h.authService.Me(c.Request.Context(), staffID)
	if err != nil {
		response.FromError(c, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", info)
}

// CreateStaff handles POST /staff (owner only)
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req auth.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	info, err := h.authService.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create staff", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, "failed to create staff", err)
		return
	}

	response.Success(c, http.StatusCreated, "staff created", info)
}
