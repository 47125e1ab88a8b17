package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/internal/policy"
	"github.com/wonny/scamdunk/internal/promoters"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/jsonfile"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

func fixedClock(date string) func() time.Time {
	return func() time.Time {
		d, _ := contracts.ParseDate(date)
		return d.Add(22 * time.Hour)
	}
}

func newTracking(t *testing.T) (*schemes.Service, *schemes.MemoryStore) {
	t.Helper()
	store := schemes.NewMemoryStore()
	tracker := schemes.NewTracker(policy.Default().Tracker, zerolog.Nop())
	return schemes.NewService(store, tracker, zerolog.Nop()), store
}

func TestInboxPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "daily-scan-2024-03-01.json"), InboxPath("in", "2024-03-01"))
}

func TestSchemeTrackingJob(t *testing.T) {
	dir := t.TempDir()
	svc, store := newTracking(t)

	job := NewSchemeTrackingJob(svc, dir, "0 30 22 * * 1-5", logger.Nop())
	job.now = fixedClock("2024-03-01")
	assert.Equal(t, "scheme_tracking", job.Name())
	assert.Equal(t, "0 30 22 * * 1-5", job.Schedule())

	// No file yet
	require.NoError(t, job.Run(context.Background()))
	db, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, db.Schemes)

	// Batch without a date takes the run date
	require.NoError(t, jsonfile.Write(InboxPath(dir, "2024-03-01"), contracts.DailyBatch{
		Observations: []contracts.Observation{{
			Symbol: "ACME", RiskLevel: contracts.RiskHigh, RiskScore: 12, PromotionScore: 70, Price: 1,
		}},
	}))
	require.NoError(t, job.Run(context.Background()))

	db, err = store.Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, db.Schemes, "SCH-ACME-s9n6o0")
	assert.Equal(t, "2024-03-01", db.Schemes["SCH-ACME-s9n6o0"].FirstDetected)
}

func TestSchemeTrackingJob_CorruptBatch(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTracking(t)
	require.NoError(t, os.WriteFile(InboxPath(dir, "2024-03-01"), []byte("{nope"), 0o644))

	job := NewSchemeTrackingJob(svc, dir, "@daily", logger.Nop())
	assert.Error(t, job.RunForDate(context.Background(), "2024-03-01"))
}

func TestPromoterRebuildJob(t *testing.T) {
	svc, store := newTracking(t)
	_, err := svc.Track(context.Background(), &contracts.DailyBatch{
		Date: "2024-03-01",
		Observations: []contracts.Observation{{
			Symbol: "ACME", RiskLevel: contracts.RiskHigh, RiskScore: 12, PromotionScore: 70, Price: 1,
			PromoterAccounts: []contracts.PromoterAccount{{Platform: "twitter", Identifier: "pumpking", PostCount: 2}},
		}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "promoter-database.json")
	promoterSvc := promoters.NewService(store, redis.NewCache(redis.Disabled(), "test"), path, time.Minute, logger.Nop())

	job := NewPromoterRebuildJob(promoterSvc, logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	var pdb contracts.PromoterDatabase
	found, err := jsonfile.Read(path, &pdb)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, pdb.TotalPromoters)
}

type stubFetcher struct {
	suspensions []alerts.Suspension
	err         error
}

func (f *stubFetcher) Fetch(context.Context) ([]alerts.Suspension, error) {
	return f.suspensions, f.err
}

func TestAlertRefreshJob(t *testing.T) {
	list := alerts.NewList([]string{"SCAM"})
	fetcher := &stubFetcher{suspensions: []alerts.Suspension{{Ticker: "ZZZZ", Company: "Zed Corp"}}}
	svc := alerts.NewService(list, fetcher, redis.NewCache(redis.Disabled(), "test"), logger.Nop())

	job := NewAlertRefreshJob(svc, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.True(t, list.Contains("ZZZZ"))
	assert.True(t, list.Contains("SCAM"))

	fetcher.err = errors.New("sec down")
	assert.Error(t, job.Run(context.Background()))
	assert.True(t, list.Contains("ZZZZ"))
}

func TestInboxCleanupJob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"daily-scan-2024-01-01.json",
		"daily-scan-2024-02-28.json",
		"daily-scan-latest.json",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	job := NewInboxCleanupJob(dir, 30*24*time.Hour, logger.Nop())
	job.now = fixedClock("2024-03-10")
	require.NoError(t, job.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"daily-scan-2024-02-28.json", "daily-scan-latest.json", "notes.txt"}, names)
}
