package schemes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
)

var allStatuses = []contracts.SchemeStatus{
	contracts.StatusNew,
	contracts.StatusOngoing,
	contracts.StatusCooling,
	contracts.StatusNoScamDetected,
	contracts.StatusPumpAndDumpEnded,
}

func TestCanTransition_Table(t *testing.T) {
	allowed := map[[2]contracts.SchemeStatus]bool{
		{contracts.StatusNew, contracts.StatusOngoing}:              true,
		{contracts.StatusNew, contracts.StatusNoScamDetected}:       true,
		{contracts.StatusOngoing, contracts.StatusCooling}:          true,
		{contracts.StatusCooling, contracts.StatusOngoing}:          true,
		{contracts.StatusCooling, contracts.StatusPumpAndDumpEnded}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[[2]contracts.SchemeStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransition_AppendsTimeline(t *testing.T) {
	rec := &contracts.SchemeRecord{SchemeID: "SCH-ACME-1", Status: contracts.StatusOngoing}

	require.NoError(t, Transition(rec, contracts.StatusCooling, "2024-03-05", "quiet"))
	assert.Equal(t, contracts.StatusCooling, rec.Status)
	assert.Equal(t, "2024-03-05", rec.CoolingSince)
	require.Len(t, rec.Timeline, 1)
	assert.Equal(t, "Status changed from ONGOING to COOLING: quiet", rec.Timeline[0].Event)
	assert.Equal(t, contracts.EventCategoryStatus, rec.Timeline[0].Category)

	require.NoError(t, Transition(rec, contracts.StatusOngoing, "2024-03-06", ""))
	assert.Empty(t, rec.CoolingSince)
	assert.Len(t, rec.Timeline, 2)
}

func TestTransition_RejectsIllegalEdges(t *testing.T) {
	for _, from := range []contracts.SchemeStatus{contracts.StatusNoScamDetected, contracts.StatusPumpAndDumpEnded} {
		for _, to := range allStatuses {
			rec := &contracts.SchemeRecord{SchemeID: "SCH-X-1", Status: from}
			err := Transition(rec, to, "2024-03-05", "")
			assert.ErrorIs(t, err, ErrIllegalTransition)
			assert.Equal(t, from, rec.Status)
			assert.Empty(t, rec.Timeline)
		}
	}

	rec := &contracts.SchemeRecord{Status: contracts.StatusNew}
	assert.ErrorIs(t, Transition(rec, contracts.StatusCooling, "2024-03-05", ""), ErrIllegalTransition)
	assert.ErrorIs(t, Transition(rec, contracts.StatusPumpAndDumpEnded, "2024-03-05", ""), ErrIllegalTransition)
}
