// internal/repository/store.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studiodesk-service/internal/domain/lead"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/repository/postgres"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leadSourcesCacheKey = "cache:lead_sources"

// LeadSourceRepository is the Postgres side of the lead-source list.
type LeadSourceRepository interface {
	List(ctx context.Context) ([]lead.LeadSource, error)
	Create(ctx context.Context, name string) (*lead.LeadSource, error)
}

// Cache is the subset of the Redis client the store uses.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LeadStore is the persistence boundary of the pipeline: Postgres for
// leads, users and history, Redis for the lead-source list.
type LeadStore struct {
	leads   *postgres.LeadRepository
	sources LeadSourceRepository
	users   *postgres.UserRepository
	history *postgres.StatusHistoryRepository
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

func NewLeadStore(
	leads *postgres.LeadRepository,
	sources LeadSourceRepository,
	users *postgres.UserRepository,
	history *postgres.StatusHistoryRepository,
	cache Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *LeadStore {
	return &LeadStore{
		leads:   leads,
		sources: sources,
		users:   users,
		history: history,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *LeadStore) ListLeads(ctx context.Context) ([]lead.Lead, error) {
	leads, err := s.leads.List(ctx)
	return leads, xerrors.Wrap(err, "list leads")
}

func (s *LeadStore) GetLead(ctx context.Context, id int64) (*lead.Lead, error) {
	return s.leads.FindByID(ctx, id)
}

func (s *LeadStore) InsertLead(ctx context.Context, l *lead.Lead) error {
	return s.leads.Create(ctx, l)
}

func (s *LeadStore) UpdateLead(ctx context.Context, id int64, req *lead.UpdateLeadRequest, changedBy int64) error {
	return s.leads.Update(ctx, id, req, changedBy)
}

func (s *LeadStore) MoveLead(ctx context.Context, mv *lead.StatusMove) error {
	return s.leads.Move(ctx, mv)
}

func (s *LeadStore) InsertUser(ctx context.Context, u *lead.User) (bool, error) {
	return s.users.Upsert(ctx, u)
}

func (s *LeadStore) ListStatusHistory(ctx context.Context, leadID int64) ([]lead.StatusChange, error) {
	return s.history.ListByLead(ctx, leadID)
}

// ListLeadSources serves from Redis when possible. Cache errors fall
// through to Postgres.
func (s *LeadStore) ListLeadSources(ctx context.Context) ([]lead.LeadSource, error) {
	if cached, ok := s.cachedSources(ctx); ok {
		return cached, nil
	}

	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "list lead sources")
	}
	if sources == nil {
		sources = []lead.LeadSource{}
	}

	if data, err := json.Marshal(sources); err == nil {
		if err := s.cache.Set(ctx, leadSourcesCacheKey, data, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache lead sources", zap.Error(err))
		}
	}
	return sources, nil
}

func (s *LeadStore) InsertLeadSource(ctx context.Context, name string) (*lead.LeadSource, error) {
	src, err := s.sources.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Del(ctx, leadSourcesCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate lead source cache", zap.Error(err))
	}
	return src, nil
}

func (s *LeadStore) cachedSources(ctx context.Context) ([]lead.LeadSource, bool) {
	data, err := s.cache.Get(ctx, leadSourcesCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("lead source cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var sources []lead.LeadSource
	if err := json.Unmarshal(data, &sources); err != nil {
		s.logger.Warn("dropping corrupt lead source cache entry", zap.Error(err))
		return nil, false
	}
	if sources == nil {
		sources = []lead.LeadSource{}
	}
	return sources, true
}
