package schemes

import (
	"errors"
	"fmt"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/metrics"
)

// ErrIllegalTransition is returned for any edge outside the transition table
var ErrIllegalTransition = errors.New("illegal scheme transition")

// transitions is the complete lifecycle graph. Terminal states have no edges.
// ⭐ SSOT: scheme status edges are defined here only
var transitions = map[contracts.SchemeStatus][]contracts.SchemeStatus{
	contracts.StatusNew:     {contracts.StatusOngoing, contracts.StatusNoScamDetected},
	contracts.StatusOngoing: {contracts.StatusCooling},
	contracts.StatusCooling: {contracts.StatusOngoing, contracts.StatusPumpAndDumpEnded},
}

// CanTransition reports whether from -> to is in the table
func CanTransition(from, to contracts.SchemeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves rec to status to and appends a timeline event dated date.
// It is the only function that changes SchemeRecord.Status.
func Transition(rec *contracts.SchemeRecord, to contracts.SchemeStatus, date, reason string) error {
	from := rec.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s (%s)", ErrIllegalTransition, from, to, rec.SchemeID)
	}

	rec.Status = to
	switch to {
	case contracts.StatusCooling:
		rec.CoolingSince = date
	case contracts.StatusOngoing:
		rec.CoolingSince = ""
	}

	event := fmt.Sprintf("Status changed from %s to %s", from, to)
	if reason != "" {
		event += ": " + reason
	}
	rec.Timeline = append(rec.Timeline, contracts.TimelineEvent{
		Date:         date,
		Event:        event,
		Category:     contracts.EventCategoryStatus,
		Significance: significance(to),
	})

	metrics.RecordTransition(string(from), string(to))
	return nil
}

func significance(to contracts.SchemeStatus) string {
	switch to {
	case contracts.StatusPumpAndDumpEnded, contracts.StatusOngoing:
		return contracts.SignificanceHigh
	case contracts.StatusCooling:
		return contracts.SignificanceMedium
	default:
		return contracts.SignificanceLow
	}
}
