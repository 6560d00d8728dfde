package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/models"
)

const profileCachePrefix = "client_profile:"

type profileClientReader interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

type profileEnrollmentReader interface {
	ListByClient(ctx context.Context, clientID string) ([]models.ProfileEnrollment, error)
}

// profileInvalidator is implemented by ProfileService and called after writes
// that can change a cached profile.
type profileInvalidator interface {
	Invalidate(ctx context.Context, clientIDs ...string)
	InvalidateAll(ctx context.Context)
}

// ProfileService composes a client with its enrollments and their programs.
type ProfileService struct {
	clients     profileClientReader
	enrollments profileEnrollmentReader
	cache       *CacheService
	ttl         time.Duration
	logger      *zap.Logger

	// generation changes on every invalidation. A profile read from the
	// database while it changed may be stale and is evicted after Set.
	generation atomic.Uint64
}

// NewProfileService constructs the profile service. cache may be nil.
func NewProfileService(clients profileClientReader, enrollments profileEnrollmentReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{clients: clients, enrollments: enrollments, cache: cache, ttl: ttl, logger: logger}
}

func profileKey(clientID string) string {
	return profileCachePrefix + clientID
}

// Get returns the client profile. The boolean reports a cache hit.
func (s *ProfileService) Get(ctx context.Context, clientID string) (*models.ClientProfile, bool, error) {
	var cached models.ClientProfile
	if hit, _ := s.cache.Get(ctx, profileKey(clientID), &cached); hit {
		return &cached, true, nil
	}

	generation := s.generation.Load()
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, false, notFoundOr(err, "client not found", "failed to load client")
	}
	enrollments, err := s.enrollments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, false, internal(err, "failed to load client enrollments")
	}

	profile := &models.ClientProfile{Client: *client, Enrollments: enrollments}
	if err := s.cache.Set(ctx, profileKey(clientID), profile, s.ttl); err != nil {
		s.logger.Debug("profile not cached", zap.String("client_id", clientID), zap.Error(err))
	} else if s.generation.Load() != generation {
		_ = s.cache.Delete(ctx, profileKey(clientID))
	}
	return profile, false, nil
}

// Invalidate drops cached profiles of the given clients.
func (s *ProfileService) Invalidate(ctx context.Context, clientIDs ...string) {
	if s == nil || !s.cache.Enabled() {
		return
	}
	s.generation.Add(1)
	keys := make([]string, 0, len(clientIDs))
	for _, id := range clientIDs {
		if id != "" {
			keys = append(keys, profileKey(id))
		}
	}
	_ = s.cache.Delete(ctx, keys...)
}

// InvalidateAll drops every cached profile. Program writes use it because a
// program appears in the profile of each enrolled client.
func (s *ProfileService) InvalidateAll(ctx context.Context) {
	if s == nil || !s.cache.Enabled() {
		return
	}
	s.generation.Add(1)
	_ = s.cache.Invalidate(ctx, profileCachePrefix+"*")
}
