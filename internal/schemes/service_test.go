package schemes

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
)

type recordingNotifier struct {
	runs []*RunSummary
}

func (n *recordingNotifier) PublishRun(s *RunSummary) {
	n.runs = append(n.runs, s)
}

type failingStore struct {
	*MemoryStore
}

func (f *failingStore) Save(context.Context, *contracts.SchemeDatabase, string) error {
	return errors.New("disk full")
}

func TestService_TrackPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	n := &recordingNotifier{}
	svc := NewService(store, newTestTracker(), zerolog.Nop(), n)

	summary, err := svc.Track(ctx, &contracts.DailyBatch{
		Date:         "2024-03-01",
		Observations: []contracts.Observation{high("ACME", 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, summary.Created)
	require.Len(t, n.runs, 1)
	assert.Same(t, summary, n.runs[0])

	db, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, db.ActiveSchemes)
	assert.Equal(t, map[string]int{"NEW": 1}, StatusCounts(db))
}

func TestService_SaveFailureSkipsNotify(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore()}
	n := &recordingNotifier{}
	svc := NewService(store, newTestTracker(), zerolog.Nop(), n)

	_, err := svc.Track(context.Background(), &contracts.DailyBatch{
		Date:         "2024-03-01",
		Observations: []contracts.Observation{high("ACME", 1)},
	})
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, n.runs)
}
