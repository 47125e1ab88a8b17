package promoters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/jsonfile"
	"github.com/wonny/scamdunk/pkg/logger"
	"github.com/wonny/scamdunk/pkg/redis"
)

func newTestService(t *testing.T) (*Service, *schemes.MemoryStore, string) {
	t.Helper()
	store := schemes.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), fixture(), ""))

	path := filepath.Join(t.TempDir(), "promoter-database.json")
	cache := redis.NewCache(redis.Disabled(), "scamdunk")
	return NewService(store, cache, path, time.Minute, logger.Nop()), store, path
}

func TestService_GetWritesSiblingFile(t *testing.T) {
	svc, _, path := newTestService(t)

	pdb, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, pdb.TotalPromoters)

	var onDisk contracts.PromoterDatabase
	found, err := jsonfile.Read(path, &onDisk)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, onDisk.LastUpdated.Equal(pdb.LastUpdated))
	assert.Equal(t, pdb.TotalPromoters, onDisk.TotalPromoters)
}

func TestService_UsesFreshFile(t *testing.T) {
	svc, _, path := newTestService(t)
	ctx := context.Background()

	// a file stamped with the current scheme database is trusted as-is
	marker := contracts.PromoterDatabase{
		LastUpdated:    fixture().LastUpdated,
		TotalPromoters: 99,
		Promoters:      []contracts.PromoterEntry{},
	}
	require.NoError(t, jsonfile.Write(path, marker))

	pdb, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 99, pdb.TotalPromoters)
}

func TestService_StaleFileIsRebuilt(t *testing.T) {
	svc, store, path := newTestService(t)
	ctx := context.Background()

	stale := contracts.PromoterDatabase{
		LastUpdated:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalPromoters: 99,
	}
	require.NoError(t, jsonfile.Write(path, stale))

	pdb, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, pdb.TotalPromoters)

	// a new tracking run moves lastUpdated and invalidates the file
	db, err := store.Load(ctx)
	require.NoError(t, err)
	delete(db.Schemes, "SCH-EEE-1")
	db.LastUpdated = db.LastUpdated.Add(24 * time.Hour)
	require.NoError(t, store.Save(ctx, db, ""))

	pdb, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, pdb.TotalPromoters)
}

func TestService_CorruptFileFallsBackToRebuild(t *testing.T) {
	svc, _, path := newTestService(t)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	pdb, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, pdb.TotalPromoters)
}

func TestService_FindAndRebuild(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Find(ctx, "PRM_TWITTER_alpha")
	require.NoError(t, err)
	assert.Equal(t, contracts.PromoterSerialOffender, entry.RiskLevel)

	_, err = svc.Find(ctx, "PRM_TWITTER_nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	pdb, err := svc.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pdb.SerialOffenders)
}
