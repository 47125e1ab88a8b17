package schemes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/metrics"
)

// Notifier receives the summary of every successful run
type Notifier interface {
	PublishRun(summary *RunSummary)
}

// Service runs one tracking batch end to end: load, apply, save, notify.
//
// Runs are not serialized. Two concurrent Track calls can lose updates
// (last Save wins); a single scheduled job is expected to own writes.
type Service struct {
	store     Store
	tracker   *Tracker
	notifiers []Notifier
	log       zerolog.Logger
}

// NewService creates a tracking service
func NewService(store Store, tracker *Tracker, log zerolog.Logger, notifiers ...Notifier) *Service {
	return &Service{
		store:     store,
		tracker:   tracker,
		notifiers: notifiers,
		log:       log.With().Str("component", "scheme_service").Logger(),
	}
}

// Store returns the underlying store
func (s *Service) Store() Store {
	return s.store
}

// Track applies a daily batch and persists the result
func (s *Service) Track(ctx context.Context, batch *contracts.DailyBatch) (*RunSummary, error) {
	summary, err := s.track(ctx, batch)
	if err != nil {
		metrics.RecordTrackingRun("error")
		s.log.Error().Err(err).Str("date", batch.Date).Msg("Scheme tracking run failed")
		return nil, err
	}
	metrics.RecordTrackingRun("ok")

	for _, n := range s.notifiers {
		n.PublishRun(summary)
	}
	return summary, nil
}

func (s *Service) track(ctx context.Context, batch *contracts.DailyBatch) (*RunSummary, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}

	summary, err := s.tracker.Apply(db, batch.Date, batch.Observations)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, db, summary.RunID); err != nil {
		return nil, fmt.Errorf("save schemes: %w", err)
	}

	metrics.SetSchemeCounts(StatusCounts(db))
	return summary, nil
}

// StatusCounts counts records per status
func StatusCounts(db *contracts.SchemeDatabase) map[string]int {
	counts := make(map[string]int, 5)
	for _, rec := range db.Schemes {
		counts[string(rec.Status)]++
	}
	return counts
}
