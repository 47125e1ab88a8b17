package promoters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/jsonfile"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

// ErrNotFound is returned when a promoter id does not exist
var ErrNotFound = errors.New("promoter not found")

// Service serves the promoter database derived from the scheme store.
//
// Lookups go cache, then the sibling JSON file, then a full rebuild. Both
// the cache key and the file are tied to the scheme database lastUpdated
// stamp, so a new tracking run invalidates them.
type Service struct {
	store  schemes.Store
	cache  *redis.Cache
	path   string
	ttl    time.Duration
	logger *logger.Logger
}

// NewService creates a promoter service. path may be empty to skip the file.
func NewService(store schemes.Store, cache *redis.Cache, path string, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &Service{store: store, cache: cache, path: path, ttl: ttl, logger: log}
}

// Get returns the promoter database for the current scheme database
func (s *Service) Get(ctx context.Context) (*contracts.PromoterDatabase, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}

	var out contracts.PromoterDatabase
	err = s.cache.GetOrSet(ctx, cacheKey(db), &out, s.ttl, func() (interface{}, error) {
		return s.fromFileOrRebuild(db), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Find returns one promoter
func (s *Service) Find(ctx context.Context, id string) (*contracts.PromoterEntry, error) {
	pdb, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	entry := pdb.Find(id)
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Rebuild aggregates unconditionally and refreshes the file and cache
func (s *Service) Rebuild(ctx context.Context) (*contracts.PromoterDatabase, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}

	pdb := s.rebuild(db)
	if err := s.cache.Set(ctx, cacheKey(db), pdb, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache promoter database")
	}
	return pdb, nil
}

func (s *Service) fromFileOrRebuild(db *contracts.SchemeDatabase) *contracts.PromoterDatabase {
	if s.path != "" {
		var cached contracts.PromoterDatabase
		found, err := jsonfile.Read(s.path, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Ignoring unreadable promoter database file")
		}
		if found && err == nil && cached.LastUpdated.Equal(db.LastUpdated) {
			return &cached
		}
	}
	return s.rebuild(db)
}

func (s *Service) rebuild(db *contracts.SchemeDatabase) *contracts.PromoterDatabase {
	start := time.Now()
	pdb := Aggregate(db)
	metrics.SetPromoterCounts(pdb.TotalPromoters, pdb.ActivePromoters, pdb.SerialOffenders)

	if s.path != "" {
		if err := jsonfile.Write(s.path, pdb); err != nil {
			s.logger.WithError(err).Warn("Failed to write promoter database file")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"promoters":        pdb.TotalPromoters,
		"active":           pdb.ActivePromoters,
		"serial_offenders": pdb.SerialOffenders,
		"duration_ms":      time.Since(start).Milliseconds(),
	}).Info("Promoter database rebuilt")
	return pdb
}

func cacheKey(db *contracts.SchemeDatabase) string {
	return redis.PromoterDBKey(db.LastUpdated.UTC().Format(time.RFC3339Nano))
}
