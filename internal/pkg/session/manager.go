// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	xerrors "studiodesk-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Manager stores staff sessions and revoked token ids in Redis.
type Manager struct {
	client redis.UniversalClient
}

func NewManager(client redis.UniversalClient) *Manager {
	return &Manager{client: client}
}

func (m *Manager) CreateSession(ctx context.Context, s *SessionData) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, sessionKey(s.StaffID, s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (m *Manager) GetSession(ctx context.Context, staffID int64, jti string) (*SessionData, error) {
	data, err := m.client.Get(ctx, sessionKey(staffID, jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (m *Manager) InvalidateSession(ctx context.Context, staffID int64, jti string) error {
	if err := m.client.Del(ctx, sessionKey(staffID, jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := m.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func sessionKey(staffID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", staffID, jti)
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}
