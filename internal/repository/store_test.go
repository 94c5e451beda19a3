package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiodesk-service/internal/domain/lead"
	xerrors "studiodesk-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSources struct {
	mock.Mock
}

func (m *mockSources) List(ctx context.Context) ([]lead.LeadSource, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]lead.LeadSource)
	return s, args.Error(1)
}

func (m *mockSources) Create(ctx context.Context, name string) (*lead.LeadSource, error) {
	args := m.Called(ctx, name)
	s, _ := args.Get(0).(*lead.LeadSource)
	return s, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	return m.Called(ctx, key).Get(0).(*redis.StringCmd)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return m.Called(ctx, key, value, expiration).Get(0).(*redis.StatusCmd)
}

func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return m.Called(ctx, keys).Get(0).(*redis.IntCmd)
}

const cacheTTL = 5 * time.Minute

var sampleSources = []lead.LeadSource{
	{ID: 1, Name: "Instagram"},
	{ID: 2, Name: "Walk-in"},
}

func newTestStore(sources *mockSources, cache *mockCache) *LeadStore {
	return NewLeadStore(nil, sources, nil, nil, cache, cacheTTL, zap.NewNop())
}

func jsonBytes(want string) interface{} {
	return mock.MatchedBy(func(v []byte) bool { return string(v) == want })
}

func TestListLeadSourcesCacheHit(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	cache.On("Get", mock.Anything, leadSourcesCacheKey).
		Return(redis.NewStringResult(`[{"id":1,"name":"Instagram"}]`, nil))

	got, err := newTestStore(sources, cache).ListLeadSources(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Instagram", got[0].Name)
	sources.AssertNotCalled(t, "List", mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListLeadSourcesFallsThroughToPostgres(t *testing.T) {
	tests := []struct {
		name   string
		cached *redis.StringCmd
	}{
		{"miss", redis.NewStringResult("", redis.Nil)},
		{"read failure", redis.NewStringResult("", errors.New("connection refused"))},
		{"corrupt entry", redis.NewStringResult("{not json", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, cache := &mockSources{}, &mockCache{}
			cache.On("Get", mock.Anything, leadSourcesCacheKey).Return(tt.cached)
			sources.On("List", mock.Anything).Return(sampleSources, nil).Once()
			cache.On("Set", mock.Anything, leadSourcesCacheKey, mock.Anything, cacheTTL).
				Return(redis.NewStatusResult("OK", nil)).Once()

			got, err := newTestStore(sources, cache).ListLeadSources(context.Background())

			require.NoError(t, err)
			assert.Equal(t, sampleSources, got)
			sources.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestListLeadSourcesCachesEmptyListAsArray(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	cache.On("Get", mock.Anything, leadSourcesCacheKey).Return(redis.NewStringResult("", redis.Nil))
	sources.On("List", mock.Anything).Return(nil, nil)
	cache.On("Set", mock.Anything, leadSourcesCacheKey, jsonBytes("[]"), cacheTTL).
		Return(redis.NewStatusResult("OK", nil)).Once()

	got, err := newTestStore(sources, cache).ListLeadSources(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	cache.AssertExpectations(t)
}

func TestListLeadSourcesNullEntryIsEmptyList(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	cache.On("Get", mock.Anything, leadSourcesCacheKey).Return(redis.NewStringResult("null", nil))

	got, err := newTestStore(sources, cache).ListLeadSources(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	sources.AssertNotCalled(t, "List", mock.Anything)
}

func TestListLeadSourcesSetFailureIsIgnored(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	cache.On("Get", mock.Anything, leadSourcesCacheKey).Return(redis.NewStringResult("", redis.Nil))
	sources.On("List", mock.Anything).Return(sampleSources, nil)
	cache.On("Set", mock.Anything, leadSourcesCacheKey, mock.Anything, cacheTTL).
		Return(redis.NewStatusResult("", errors.New("READONLY")))

	got, err := newTestStore(sources, cache).ListLeadSources(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sampleSources, got)
}

func TestListLeadSourcesStoreError(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	cache.On("Get", mock.Anything, leadSourcesCacheKey).Return(redis.NewStringResult("", redis.Nil))
	sources.On("List", mock.Anything).Return(nil, xerrors.ErrUnavailable)

	_, err := newTestStore(sources, cache).ListLeadSources(context.Background())

	assert.ErrorIs(t, err, xerrors.ErrUnavailable)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInsertLeadSourceInvalidatesCache(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	created := &lead.LeadSource{ID: 3, Name: "Referral"}
	sources.On("Create", mock.Anything, "Referral").Return(created, nil)
	cache.On("Del", mock.Anything, []string{leadSourcesCacheKey}).Return(redis.NewIntResult(1, nil)).Once()

	got, err := newTestStore(sources, cache).InsertLeadSource(context.Background(), "Referral")

	require.NoError(t, err)
	assert.Equal(t, created, got)
	cache.AssertExpectations(t)
}

func TestInsertLeadSourceFailureKeepsCache(t *testing.T) {
	sources, cache := &mockSources{}, &mockCache{}
	sources.On("Create", mock.Anything, "Referral").Return(nil, xerrors.ErrConflict)

	_, err := newTestStore(sources, cache).InsertLeadSource(context.Background(), "Referral")

	assert.ErrorIs(t, err, xerrors.ErrConflict)
	cache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
}
