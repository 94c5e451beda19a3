// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studiodesk-service/internal/domain/auth"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/pkg/jwt"
	"studiodesk-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type StaffRepository interface {
	Create(ctx context.Context, s *auth.Staff) error
	FindByEmail(ctx context.Context, email string) (*auth.Staff, error)
	FindByID(ctx context.Context, id int64) (*auth.Staff, error)
	OwnerExists(ctx context.Context) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *session.SessionData) error
	GetSession(ctx context.Context, staffID int64, jti string) (*session.SessionData, error)
	InvalidateSession(ctx context.Context, staffID int64, jti string) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// SessionNotifier closes live sockets bound to a session.
type SessionNotifier interface {
	ForceLogout(staffID int64, sessionID, reason string)
}

type AuthService struct {
	staff       StaffRepository
	jwtManager  *jwt.Manager
	sessions    SessionStore
	rateLimiter LoginLimiter
	notifier    SessionNotifier
	logger      *zap.Logger
}

func NewAuthService(
	staff StaffRepository,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	rateLimiter LoginLimiter,
	notifier SessionNotifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		staff:       staff,
		jwtManager:  jwtManager,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		notifier:    notifier,
		logger:      logger,
	}
}

// Login checks the password and opens a Redis-backed session.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: try again in 15 minutes", xerrors.ErrRateLimited)
	}

	staff, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !staff.Active {
		return nil, fmt.Errorf("%w: account is inactive", xerrors.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials (attempts remaining: %d)", xerrors.ErrUnauthorized, remaining)
	}

	if err := s.staff.UpdateLastLogin(ctx, staff.ID); err != nil {
		s.logger.Error("failed to update last login", zap.Int64("staff_id", staff.ID), zap.Error(err))
	}
	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return s.issueTokens(ctx, staff, req)
}

func (s *AuthService) issueTokens(ctx context.Context, staff *auth.Staff, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	roles := []string{staff.Role}

	accessToken, accessJTI, err := s.jwtManager.Generator.GenerateAccessToken(staff.ID, roles, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, _, err := s.jwtManager.Generator.GenerateRefreshToken(staff.ID, req.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	ttl := s.jwtManager.Generator.TTL
	expiresAt := now.Add(ttl)

	err = s.sessions.CreateSession(ctx, &session.SessionData{
		JTI:            accessJTI,
		StaffID:        staff.ID,
		Email:          staff.Email,
		Roles:          roles,
		Device:         req.Device,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session opened",
		zap.Int64("staff_id", staff.ID),
		zap.String("ip", req.IPAddress),
	)

	return &auth.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(ttl.Seconds()),
		ExpiresAt:    expiresAt,
		Staff:        staff.Info(),
	}, nil
}

// Logout ends the session behind claims and revokes its token until expiry.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := s.sessions.InvalidateSession(ctx, claims.StaffID, claims.ID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	ttl := s.jwtManager.Generator.TTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.sessions.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ForceLogout(claims.StaffID, claims.ID, "logged out")
	}
	return nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair with a fresh session is issued.
func (s *AuthService) Refresh(ctx context.Context, req *auth.RefreshRequest) (*auth.LoginResponse, error) {
	claims, err := s.jwtManager.Verifier.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrUnauthorized, err)
	}

	revoked, err := s.sessions.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: refresh token already used", xerrors.ErrUnauthorized)
	}

	staff, err := s.staff.FindByID(ctx, claims.StaffID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown staff member", xerrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !staff.Active {
		return nil, fmt.Errorf("%w: account is inactive", xerrors.ErrForbidden)
	}

	if claims.ExpiresAt != nil {
		if err := s.sessions.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	return s.issueTokens(ctx, staff, &auth.LoginRequest{
		Device:    claims.Device,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
}

// ValidateToken accepts only unrevoked access tokens with a live session.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrUnauthorized, err)
	}

	blacklisted, err := s.sessions.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("%w: token has been revoked", xerrors.ErrUnauthorized)
	}

	if _, err := s.sessions.GetSession(ctx, claims.StaffID, claims.ID); err != nil {
		return nil, fmt.Errorf("session not found or expired: %w", err)
	}

	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, staffID int64) (*auth.StaffInfo, error) {
	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	info := staff.Info()
	return &info, nil
}

// CreateStaff adds an account. Only owners reach it through the router.
func (s *AuthService) CreateStaff(ctx context.Context, req *auth.CreateStaffRequest) (*auth.StaffInfo, error) {
	role := req.Role
	if role == "" {
		role = jwt.RoleStaff
	}

	staff, err := s.newStaff(req.Email, req.Password, req.FullName, role)
	if err != nil {
		return nil, err
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.Info("staff account created", zap.Int64("staff_id", staff.ID), zap.String("role", role))
	info := staff.Info()
	return &info, nil
}

func (s *AuthService) newStaff(email, password, fullName, role string) (*auth.Staff, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &auth.Staff{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}, nil
}

// SetNotifier attaches the socket hub once it exists; the hub itself needs
// this service to authenticate upgrades.
func (s *AuthService) SetNotifier(n SessionNotifier) {
	s.notifier = n
}
