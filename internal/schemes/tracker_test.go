package schemes

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestTracker() *Tracker {
	tr := NewTracker(policy.Default().Tracker, zerolog.Nop())
	tr.now = func() time.Time { return fixedNow }
	return tr
}

func high(symbol string, price float64) contracts.Observation {
	return contracts.Observation{
		Symbol:         symbol,
		Name:           strings.ToUpper(symbol) + " Corp",
		Sector:         "Technology",
		RiskLevel:      contracts.RiskHigh,
		RiskScore:      12,
		PromotionScore: 70,
		Price:          price,
		Signals:        []string{"PRICE_SPIKE_7D"},
		Platforms:      []string{"twitter"},
	}
}

func low(symbol string, price float64) contracts.Observation {
	return contracts.Observation{
		Symbol:         symbol,
		RiskLevel:      contracts.RiskLow,
		RiskScore:      1,
		PromotionScore: 10,
		Price:          price,
	}
}

func apply(t *testing.T, tr *Tracker, db *contracts.SchemeDatabase, date string, obs ...contracts.Observation) *RunSummary {
	t.Helper()
	summary, err := tr.Apply(db, date, obs)
	require.NoError(t, err)
	return summary
}

func TestTracker_FullLifecycle(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()
	const id = "SCH-ACME-s9n6o0"

	days := []struct {
		date   string
		obs    []contracts.Observation
		status contracts.SchemeStatus
	}{
		{"2024-03-01", []contracts.Observation{high("acme", 1.0)}, contracts.StatusNew},
		{"2024-03-02", []contracts.Observation{high("ACME", 2.0)}, contracts.StatusOngoing},
		{"2024-03-03", []contracts.Observation{low("ACME", 1.8)}, contracts.StatusOngoing},
		{"2024-03-04", []contracts.Observation{low("ACME", 1.5)}, contracts.StatusOngoing},
		{"2024-03-05", []contracts.Observation{low("ACME", 1.2)}, contracts.StatusCooling},
		{"2024-03-06", nil, contracts.StatusCooling},
		{"2024-03-07", []contracts.Observation{low("ACME", 0.9)}, contracts.StatusCooling},
		{"2024-03-08", []contracts.Observation{low("ACME", 0.8)}, contracts.StatusPumpAndDumpEnded},
	}

	prevTimeline := 0
	for _, day := range days {
		apply(t, tr, db, day.date, day.obs...)
		rec := db.Schemes[id]
		require.NotNil(t, rec, day.date)
		assert.Equal(t, day.status, rec.Status, day.date)
		assert.GreaterOrEqual(t, len(rec.Timeline), prevTimeline, day.date)
		prevTimeline = len(rec.Timeline)
	}

	rec := db.Schemes[id]
	assert.Equal(t, 1, db.TotalSchemes)
	assert.Equal(t, 0, db.ActiveSchemes)
	assert.Equal(t, 1, db.ConfirmedFrauds)
	assert.Equal(t, fixedNow, db.LastUpdated)

	assert.Equal(t, "ACME Corp", rec.Name)
	assert.Equal(t, "2024-03-01", rec.FirstDetected)
	assert.Equal(t, "2024-03-08", rec.LastSeen)
	assert.Equal(t, 7, rec.DaysActive)
	assert.Equal(t, 2.0, rec.PeakPrice)
	assert.Equal(t, 0.8, rec.CurrentPrice)
	assert.Equal(t, 12, rec.PeakRiskScore)
	assert.Equal(t, 1, rec.CurrentRiskScore)
	assert.InDelta(t, -60.0, rec.PriceChangeFromPeak, 1e-9)
	assert.InDelta(t, -20.0, rec.PriceChangeFromDetection, 1e-9)
	assert.Equal(t, "ACME Technology Pump-and-Dump Scheme", rec.SchemeName)
	assert.Equal(t, contracts.EventCategoryDetection, rec.Timeline[0].Category)
}

func TestTracker_TransitionsReported(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	s := apply(t, tr, db, "2024-03-01", high("ACME", 1))
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, s.Created)
	assert.Empty(t, s.Transitions)

	s = apply(t, tr, db, "2024-03-02", high("ACME", 1.5))
	require.Len(t, s.Transitions, 1)
	assert.Equal(t, TransitionEvent{
		SchemeID: "SCH-ACME-s9n6o0",
		Symbol:   "ACME",
		From:     contracts.StatusNew,
		To:       contracts.StatusOngoing,
		Date:     "2024-03-02",
	}, s.Transitions[0])
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, s.Updated)
	assert.NotEmpty(t, s.RunID)
}

func TestTracker_RerunIsNoop(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	apply(t, tr, db, "2024-03-02", high("ACME", 2))
	before := db.Schemes["SCH-ACME-s9n6o0"].Clone()

	s := apply(t, tr, db, "2024-03-02", high("ACME", 2))
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, s.Skipped)
	assert.Empty(t, s.Updated)
	assert.Empty(t, s.Created)
	assert.Equal(t, before, db.Schemes["SCH-ACME-s9n6o0"])

	// an older batch is also ignored
	apply(t, tr, db, "2024-03-01", low("ACME", 0.1))
	assert.Equal(t, before, db.Schemes["SCH-ACME-s9n6o0"])
}

func TestTracker_QuietDaysAreIdempotent(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	apply(t, tr, db, "2024-03-02", high("ACME", 2))

	s := apply(t, tr, db, "2024-03-03")
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, s.Quiet)
	assert.Equal(t, 1, db.Schemes["SCH-ACME-s9n6o0"].DeclineStreak)

	s = apply(t, tr, db, "2024-03-03")
	assert.Empty(t, s.Quiet)
	assert.Equal(t, 1, db.Schemes["SCH-ACME-s9n6o0"].DeclineStreak)

	apply(t, tr, db, "2024-03-04")
	apply(t, tr, db, "2024-03-05")
	rec := db.Schemes["SCH-ACME-s9n6o0"]
	assert.Equal(t, contracts.StatusCooling, rec.Status)
	assert.Equal(t, "2024-03-05", rec.CoolingSince)
	// quiet days do not move lastSeen
	assert.Equal(t, "2024-03-02", rec.LastSeen)
}

func TestTracker_CoolingReactivates(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	apply(t, tr, db, "2024-03-02", high("ACME", 2))
	for _, d := range []string{"2024-03-03", "2024-03-04", "2024-03-05"} {
		apply(t, tr, db, d, low("ACME", 1.9))
	}
	require.Equal(t, contracts.StatusCooling, db.Schemes["SCH-ACME-s9n6o0"].Status)

	promo := low("ACME", 1.9)
	promo.PromotionScore = 55
	apply(t, tr, db, "2024-03-06", promo)

	rec := db.Schemes["SCH-ACME-s9n6o0"]
	assert.Equal(t, contracts.StatusOngoing, rec.Status)
	assert.Empty(t, rec.CoolingSince)
	assert.Zero(t, rec.DeclineStreak)
}

func TestTracker_CoolingWithoutDumpStays(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	apply(t, tr, db, "2024-03-02", high("ACME", 2))
	for _, d := range []string{"2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09"} {
		apply(t, tr, db, d, low("ACME", 1.5))
	}
	assert.Equal(t, contracts.StatusCooling, db.Schemes["SCH-ACME-s9n6o0"].Status)
}

func TestTracker_LegitimateNews(t *testing.T) {
	tests := []struct {
		name string
		obs  contracts.Observation
	}{
		{
			name: "flag",
			obs:  contracts.Observation{Symbol: "ACME", RiskLevel: contracts.RiskHigh, LegitimateNews: true},
		},
		{
			name: "catalyst headline",
			obs: contracts.Observation{
				Symbol: "ACME", RiskLevel: contracts.RiskMedium,
				Headlines: []string{"ACME reports record quarterly earnings"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker()
			db := contracts.NewSchemeDatabase()

			apply(t, tr, db, "2024-03-01", high("ACME", 1))
			apply(t, tr, db, "2024-03-02", tt.obs)

			rec := db.Schemes["SCH-ACME-s9n6o0"]
			assert.Equal(t, contracts.StatusNoScamDetected, rec.Status)
			assert.Equal(t, 1, db.ResolvedSchemes)
			assert.Zero(t, db.ConfirmedFrauds)
		})
	}
}

func TestTracker_PromotionalHeadlinesAreNotLegitimate(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	obs := low("ACME", 1)
	obs.Headlines = []string{"ACME earnings ahead, stock set to explode"}
	apply(t, tr, db, "2024-03-02", obs)

	assert.Equal(t, contracts.StatusNew, db.Schemes["SCH-ACME-s9n6o0"].Status)
}

func TestTracker_TerminalNeverMutated(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1))
	apply(t, tr, db, "2024-03-02", contracts.Observation{Symbol: "ACME", RiskLevel: contracts.RiskLow, LegitimateNews: true})
	closed := db.Schemes["SCH-ACME-s9n6o0"].Clone()
	require.Equal(t, contracts.StatusNoScamDetected, closed.Status)

	// quiet days leave terminal records alone
	apply(t, tr, db, "2024-03-03")
	assert.Equal(t, closed, db.Schemes["SCH-ACME-s9n6o0"])

	// a later HIGH opens a distinct scheme
	s := apply(t, tr, db, "2024-03-05", high("ACME", 3))
	require.Len(t, s.Created, 1)
	assert.Equal(t, "SCH-ACME-s9ulc0", s.Created[0])
	assert.Equal(t, closed, db.Schemes["SCH-ACME-s9n6o0"])
	assert.Equal(t, 2, db.TotalSchemes)
	assert.Equal(t, 1, db.ActiveSchemes)
}

func TestTracker_OnlyHighOpensSchemes(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	legit := high("GOOD", 5)
	legit.LegitimateNews = true
	medium := high("MID", 1)
	medium.RiskLevel = contracts.RiskMedium

	catalyst := high("NEWS", 2)
	catalyst.Headlines = []string{"NEWS reports record quarterly earnings"}

	s := apply(t, tr, db, "2024-03-01", low("LOW", 1), medium, legit, catalyst, contracts.Observation{Symbol: "  "})
	assert.Empty(t, s.Created)
	assert.Equal(t, 5, s.Ignored)
	assert.Empty(t, db.Schemes)
}

func TestTracker_PromotionalHeadlinesStillOpen(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	obs := high("ACME", 1)
	obs.Headlines = []string{"ACME earnings ahead, stock set to explode"}

	s := apply(t, tr, db, "2024-03-01", obs)
	assert.Equal(t, []string{"SCH-ACME-s9n6o0"}, s.Created)
}

func TestTracker_DuplicateObservationsFirstWins(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	s := apply(t, tr, db, "2024-03-01", high("ACME", 1), high("acme", 9))
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 1.0, db.Schemes["SCH-ACME-s9n6o0"].PeakPrice)
}

func TestTracker_MergesSetsAndAccounts(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	day1 := high("ACME", 1)
	day1.CoordinationIndicators = []string{"same_wording"}
	day1.PromoterAccounts = []contracts.PromoterAccount{
		{Platform: "twitter", Identifier: "pumpking", PostCount: 3},
	}
	apply(t, tr, db, "2024-03-01", day1)

	day2 := high("ACME", 1.1)
	day2.Platforms = []string{"twitter", "stocktwits"}
	day2.Signals = []string{"PRICE_SPIKE_7D", "VOLUME_EXPLOSION"}
	day2.CoordinationIndicators = []string{"same_wording", "burst_timing"}
	day2.PromoterAccounts = []contracts.PromoterAccount{
		{Platform: "twitter", Identifier: "pumpking", PostCount: 2, Confidence: contracts.ConfidenceHigh},
		{Platform: "reddit", Identifier: "u_moon"},
		{Platform: "", Identifier: "dropped"},
	}
	apply(t, tr, db, "2024-03-02", day2)

	day3 := low("ACME", 1)
	day3.PromoterAccounts = []contracts.PromoterAccount{
		{Platform: "twitter", Identifier: "pumpking", Confidence: contracts.ConfidenceLow},
	}
	apply(t, tr, db, "2024-03-03", day3)

	rec := db.Schemes["SCH-ACME-s9n6o0"]
	assert.Equal(t, []string{"twitter", "stocktwits", "reddit"}, rec.PromotionPlatforms)
	assert.Equal(t, []string{"PRICE_SPIKE_7D", "VOLUME_EXPLOSION"}, rec.SignalsDetected)
	assert.Equal(t, []string{"same_wording", "burst_timing"}, rec.CoordinationIndicators)

	require.Len(t, rec.PromoterAccounts, 2)
	king := rec.PromoterAccounts[0]
	assert.Equal(t, "pumpking", king.Identifier)
	assert.Equal(t, 6, king.PostCount)
	assert.Equal(t, "2024-03-01", king.FirstSeen)
	assert.Equal(t, "2024-03-03", king.LastSeen)
	assert.Equal(t, contracts.ConfidenceHigh, king.Confidence)

	moon := rec.PromoterAccounts[1]
	assert.Equal(t, 1, moon.PostCount)
	assert.Equal(t, contracts.ConfidenceLow, moon.Confidence)
	assert.Equal(t, "2024-03-02", moon.FirstSeen)

	var promotionEvents int
	for _, ev := range rec.Timeline {
		if ev.Category == contracts.EventCategoryPromotion {
			promotionEvents++
		}
	}
	assert.Equal(t, 1, promotionEvents)
}

func TestTracker_ZeroPriceKeepsCurrent(t *testing.T) {
	tr := newTestTracker()
	db := contracts.NewSchemeDatabase()

	apply(t, tr, db, "2024-03-01", high("ACME", 1.5))
	apply(t, tr, db, "2024-03-02", high("ACME", 0))

	rec := db.Schemes["SCH-ACME-s9n6o0"]
	assert.Equal(t, 1.5, rec.CurrentPrice)
	assert.Equal(t, "2024-03-02", rec.LastSeen)
}

func TestTracker_InvalidDate(t *testing.T) {
	_, err := newTestTracker().Apply(contracts.NewSchemeDatabase(), "March 1", nil)
	assert.Error(t, err)
}
