package schemes

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
	"github.com/wonny/scamdunk/internal/scoring"
)

// TransitionEvent describes one status change made during a run
type TransitionEvent struct {
	SchemeID string                 `json:"schemeId"`
	Symbol   string                 `json:"symbol"`
	From     contracts.SchemeStatus `json:"from"`
	To       contracts.SchemeStatus `json:"to"`
	Date     string                 `json:"date"`
}

// RunSummary reports what one Apply call did
type RunSummary struct {
	RunID        string            `json:"runId"`
	Date         string            `json:"date"`
	Observations int               `json:"observations"`
	Created      []string          `json:"created"`
	Updated      []string          `json:"updated"`
	Quiet        []string          `json:"quiet"`
	Skipped      []string          `json:"skipped"`
	Ignored      int               `json:"ignored"`
	Duplicates   int               `json:"duplicates"`
	Transitions  []TransitionEvent `json:"transitions"`
	Active       int               `json:"activeSchemes"`
	Total        int               `json:"totalSchemes"`
}

// Tracker merges daily observations into a SchemeDatabase
type Tracker struct {
	cfg policy.Tracker
	log zerolog.Logger
	now func() time.Time
}

// NewTracker creates a tracker with the given lifecycle windows
func NewTracker(cfg policy.Tracker, log zerolog.Logger) *Tracker {
	return &Tracker{
		cfg: cfg,
		log: log.With().Str("component", "scheme_tracker").Logger(),
		now: time.Now,
	}
}

// Apply merges the observations for date into db.
//
// Rules, per symbol:
//   - no active record and riskLevel HIGH: open a NEW scheme
//   - active record: update currents and peaks, union the sets, then
//     evaluate the lifecycle
//   - active records without an observation count as a quiet day
//   - a date at or before a record's last applied date is ignored, so
//     re-running a batch is a no-op
//   - terminal records are never touched
//
// The database counters and lastUpdated are refreshed before returning.
func (t *Tracker) Apply(db *contracts.SchemeDatabase, date string, observations []contracts.Observation) (*RunSummary, error) {
	if _, err := contracts.ParseDate(date); err != nil {
		return nil, fmt.Errorf("apply batch: %w", err)
	}
	if db.Schemes == nil {
		db.Schemes = make(map[string]*contracts.SchemeRecord)
	}

	summary := &RunSummary{
		RunID:        uuid.New().String(),
		Date:         date,
		Observations: len(observations),
		Created:      []string{},
		Updated:      []string{},
		Quiet:        []string{},
		Skipped:      []string{},
		Transitions:  []TransitionEvent{},
	}

	bySymbol := make(map[string]contracts.Observation, len(observations))
	for _, obs := range observations {
		sym := obs.NormalizedSymbol()
		if sym == "" {
			summary.Ignored++
			continue
		}
		if _, dup := bySymbol[sym]; dup {
			summary.Duplicates++
			continue
		}
		bySymbol[sym] = obs
	}

	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		obs := bySymbol[sym]
		rec := db.ActiveBySymbol(sym)

		if rec == nil {
			created, err := t.open(db, sym, date, &obs)
			if err != nil {
				return nil, err
			}
			if created == "" {
				summary.Ignored++
				continue
			}
			summary.Created = append(summary.Created, created)
			continue
		}

		if alreadyApplied(rec, date) {
			summary.Skipped = append(summary.Skipped, rec.SchemeID)
			continue
		}

		merge(rec, date, &obs)
		elevated := obs.RiskLevel == contracts.RiskHigh || obs.PromotionScore >= t.cfg.ElevatedPromotionScore
		if err := t.evaluate(rec, date, elevated, legitimate(&obs), summary); err != nil {
			return nil, err
		}
		summary.Updated = append(summary.Updated, rec.SchemeID)
	}

	// Quiet day for every active record the batch did not mention
	for _, id := range db.SortedIDs() {
		rec := db.Schemes[id]
		if !rec.Status.IsActive() || alreadyApplied(rec, date) {
			continue
		}
		if _, seen := bySymbol[rec.Symbol]; seen {
			continue
		}
		if err := t.evaluate(rec, date, false, false, summary); err != nil {
			return nil, err
		}
		summary.Quiet = append(summary.Quiet, rec.SchemeID)
	}

	db.Recount()
	db.LastUpdated = t.now().UTC()
	summary.Active = db.ActiveSchemes
	summary.Total = db.TotalSchemes

	t.log.Info().
		Str("run_id", summary.RunID).
		Str("date", date).
		Int("observations", summary.Observations).
		Int("created", len(summary.Created)).
		Int("updated", len(summary.Updated)).
		Int("quiet", len(summary.Quiet)).
		Int("transitions", len(summary.Transitions)).
		Msg("Scheme tracking run applied")

	return summary, nil
}

// legitimate reports an explicit legitimate-news flag or catalyst headlines
// without promotional language
func legitimate(obs *contracts.Observation) bool {
	return obs.LegitimateNews || scoring.AssessHeadlines(obs.Headlines).Legitimate()
}

// open creates a NEW record for a HIGH observation. It returns "" when the
// observation does not qualify or the id already exists.
func (t *Tracker) open(db *contracts.SchemeDatabase, sym, date string, obs *contracts.Observation) (string, error) {
	if obs.RiskLevel != contracts.RiskHigh || legitimate(obs) {
		return "", nil
	}

	id, err := SchemeID(sym, date)
	if err != nil {
		return "", err
	}
	if _, exists := db.Schemes[id]; exists {
		return "", nil
	}

	rec := &contracts.SchemeRecord{
		SchemeID:               id,
		Symbol:                 sym,
		Name:                   obs.Name,
		Sector:                 obs.Sector,
		Industry:               obs.Industry,
		Status:                 contracts.StatusNew,
		FirstDetected:          date,
		LastSeen:               date,
		LastEvaluated:          date,
		PeakRiskScore:          obs.RiskScore,
		CurrentRiskScore:       obs.RiskScore,
		PeakPromotionScore:     obs.PromotionScore,
		CurrentPromotionScore:  obs.PromotionScore,
		PriceAtDetection:       obs.Price,
		PeakPrice:              obs.Price,
		CurrentPrice:           obs.Price,
		PromotionPlatforms:     []string{},
		PromoterAccounts:       []contracts.PromoterAccount{},
		CoordinationIndicators: []string{},
		SignalsDetected:        []string{},
		Timeline:               []contracts.TimelineEvent{},
	}
	if rec.Name == "" {
		rec.Name = sym
	}
	mergeSets(rec, date, obs)
	rec.RefreshDerived()
	rec.SchemeName = Name(rec)

	rec.Timeline = append(rec.Timeline, contracts.TimelineEvent{
		Date:         date,
		Event:        fmt.Sprintf("Scheme detected: risk score %d, promotion score %d, price $%.4g", obs.RiskScore, obs.PromotionScore, obs.Price),
		Category:     contracts.EventCategoryDetection,
		Significance: contracts.SignificanceHigh,
	})

	db.Schemes[id] = rec
	return id, nil
}

// evaluate applies one day's lifecycle rules to an active record
func (t *Tracker) evaluate(rec *contracts.SchemeRecord, date string, elevated, legit bool, summary *RunSummary) error {
	rec.LastEvaluated = date

	var to contracts.SchemeStatus
	var reason string

	switch {
	case rec.Status == contracts.StatusNew && legit:
		to, reason = contracts.StatusNoScamDetected, "price move attributed to legitimate news"
	case elevated:
		rec.DeclineStreak = 0
		if rec.Status == contracts.StatusNew || rec.Status == contracts.StatusCooling {
			to, reason = contracts.StatusOngoing, "promotion activity remains elevated"
		}
	default:
		rec.DeclineStreak++
		switch rec.Status {
		case contracts.StatusOngoing:
			if rec.DeclineStreak >= t.cfg.CoolingWindowDays {
				to, reason = contracts.StatusCooling, fmt.Sprintf("activity declined for %d days", rec.DeclineStreak)
			}
		case contracts.StatusCooling:
			if contracts.DaysBetween(rec.CoolingSince, date) >= t.cfg.CoolingWindowDays &&
				rec.PriceChangeFromPeak <= -t.cfg.DumpDropPct {
				to, reason = contracts.StatusPumpAndDumpEnded, fmt.Sprintf("price %.1f%% from peak after cooling", rec.PriceChangeFromPeak)
			}
		}
	}

	if to == "" {
		return nil
	}

	from := rec.Status
	if err := Transition(rec, to, date, reason); err != nil {
		return err
	}
	if to == contracts.StatusPumpAndDumpEnded {
		rec.SchemeName = Name(rec)
	}
	summary.Transitions = append(summary.Transitions, TransitionEvent{
		SchemeID: rec.SchemeID,
		Symbol:   rec.Symbol,
		From:     from,
		To:       to,
		Date:     date,
	})
	return nil
}

// alreadyApplied reports whether date is not newer than the record's last
// applied batch
func alreadyApplied(rec *contracts.SchemeRecord, date string) bool {
	return date <= contracts.MaxDate(rec.LastSeen, rec.LastEvaluated)
}

// merge folds an observation into an existing record
func merge(rec *contracts.SchemeRecord, date string, obs *contracts.Observation) {
	rec.CurrentRiskScore = obs.RiskScore
	if obs.RiskScore > rec.PeakRiskScore {
		rec.PeakRiskScore = obs.RiskScore
	}
	rec.CurrentPromotionScore = obs.PromotionScore
	if obs.PromotionScore > rec.PeakPromotionScore {
		rec.PeakPromotionScore = obs.PromotionScore
	}

	if obs.Price > 0 {
		rec.CurrentPrice = obs.Price
		if obs.Price > rec.PeakPrice {
			rec.PeakPrice = obs.Price
			rec.Timeline = append(rec.Timeline, contracts.TimelineEvent{
				Date:         date,
				Event:        fmt.Sprintf("New peak price $%.4g", obs.Price),
				Category:     contracts.EventCategoryPrice,
				Significance: contracts.SignificanceMedium,
			})
		}
	}
	rec.LastSeen = contracts.MaxDate(rec.LastSeen, date)

	if rec.Name == "" || rec.Name == rec.Symbol {
		if obs.Name != "" {
			rec.Name = obs.Name
		}
	}
	if rec.Sector == "" {
		rec.Sector = obs.Sector
	}
	if rec.Industry == "" {
		rec.Industry = obs.Industry
	}

	mergeSets(rec, date, obs)
	rec.RefreshDerived()
}

// mergeSets unions platforms, indicators, signals and promoter accounts
func mergeSets(rec *contracts.SchemeRecord, date string, obs *contracts.Observation) {
	rec.PromotionPlatforms = union(rec.PromotionPlatforms, obs.Platforms...)
	rec.CoordinationIndicators = union(rec.CoordinationIndicators, obs.CoordinationIndicators...)
	rec.SignalsDetected = union(rec.SignalsDetected, obs.Signals...)

	added := 0
	for _, acct := range obs.PromoterAccounts {
		if acct.Platform == "" || acct.Identifier == "" {
			continue
		}
		if mergeAccount(rec, date, acct) {
			added++
		}
		rec.PromotionPlatforms = union(rec.PromotionPlatforms, acct.Platform)
	}

	if added > 0 && len(rec.Timeline) > 0 {
		rec.Timeline = append(rec.Timeline, contracts.TimelineEvent{
			Date:         date,
			Event:        fmt.Sprintf("%d new promoter account(s) detected", added),
			Category:     contracts.EventCategoryPromotion,
			Significance: contracts.SignificanceMedium,
		})
	}
}

// mergeAccount updates the account with the same platform::identifier in
// place, or appends it. Returns true when appended.
func mergeAccount(rec *contracts.SchemeRecord, date string, in contracts.PromoterAccount) bool {
	if in.FirstSeen == "" {
		in.FirstSeen = date
	}
	if in.LastSeen == "" {
		in.LastSeen = date
	}
	if in.PostCount <= 0 {
		in.PostCount = 1
	}
	if in.Confidence != contracts.ConfidenceHigh {
		in.Confidence = contracts.ConfidenceLow
	}

	key := in.Key()
	for i := range rec.PromoterAccounts {
		acct := &rec.PromoterAccounts[i]
		if acct.Key() != key {
			continue
		}
		acct.PostCount += in.PostCount
		acct.FirstSeen = contracts.MinDate(acct.FirstSeen, in.FirstSeen)
		acct.LastSeen = contracts.MaxDate(acct.LastSeen, in.LastSeen)
		acct.Confidence = acct.Confidence.Upgrade(in.Confidence)
		return false
	}

	rec.PromoterAccounts = append(rec.PromoterAccounts, in)
	return true
}

// union appends values not already in set, preserving order
func union(set []string, values ...string) []string {
	if set == nil {
		set = []string{}
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		found := false
		for _, s := range set {
			if s == v {
				found = true
				break
			}
		}
		if !found {
			set = append(set, v)
		}
	}
	return set
}
