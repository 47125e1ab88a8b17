package alerts

import (
	"context"
	"fmt"

	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

// Fetcher returns the current suspensions
type Fetcher interface {
	Fetch(ctx context.Context) ([]Suspension, error)
}

// Service keeps a List in sync with the suspensions page and shares the
// scraped tickers across instances through the cache.
type Service struct {
	list    *List
	fetcher Fetcher
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewService creates an alert service. cache may be backed by a disabled client.
func NewService(list *List, fetcher Fetcher, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{list: list, fetcher: fetcher, cache: cache, logger: log}
}

// List returns the underlying list
func (s *Service) List() *List {
	return s.list
}

// Warm loads previously scraped tickers from the cache, if any
func (s *Service) Warm(ctx context.Context) bool {
	var tickers []string
	found, err := s.cache.Get(ctx, redis.AlertListKey(), &tickers)
	if err != nil || !found {
		return false
	}
	s.list.Replace(tickers)
	metrics.SetAlertListSize(s.list.Len())
	return true
}

// Refresh scrapes the suspensions page and replaces the list. The seed
// tickers are kept. On failure the current list is left untouched.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	suspensions, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch suspensions: %w", err)
	}

	tickers := Tickers(suspensions)
	s.list.Replace(tickers)
	metrics.SetAlertListSize(s.list.Len())

	if err := s.cache.Set(ctx, redis.AlertListKey(), tickers, redis.TTLDaily); err != nil {
		s.logger.WithError(err).Warn("Failed to cache alert list")
	}

	s.logger.WithFields(map[string]interface{}{
		"scraped": len(tickers),
		"total":   s.list.Len(),
	}).Info("Alert list refreshed")

	return len(tickers), nil
}
