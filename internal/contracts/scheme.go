package contracts

import (
	"sort"
	"time"
)

// SchemeStatus is the lifecycle state of a tracked scheme
type SchemeStatus string

const (
	StatusNew              SchemeStatus = "NEW"
	StatusOngoing          SchemeStatus = "ONGOING"
	StatusCooling          SchemeStatus = "COOLING"
	StatusNoScamDetected   SchemeStatus = "NO_SCAM_DETECTED"
	StatusPumpAndDumpEnded SchemeStatus = "PUMP_AND_DUMP_ENDED"
)

// IsTerminal reports whether no further transition is possible
func (s SchemeStatus) IsTerminal() bool {
	return s == StatusNoScamDetected || s == StatusPumpAndDumpEnded
}

// IsActive reports whether the scheme is still being tracked
func (s SchemeStatus) IsActive() bool {
	return s == StatusNew || s == StatusOngoing || s == StatusCooling
}

// Valid reports whether s is a known status
func (s SchemeStatus) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

// Confidence is the evidence strength tying an account to a post
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceHigh Confidence = "high"
)

// Upgrade returns the stronger of c and other. Confidence never downgrades.
func (c Confidence) Upgrade(other Confidence) Confidence {
	if c == ConfidenceHigh || other == ConfidenceHigh {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// PromoterAccount is one social account seen promoting a scheme
type PromoterAccount struct {
	Platform   string     `json:"platform" validate:"required"`
	Identifier string     `json:"identifier" validate:"required"`
	FirstSeen  string     `json:"firstSeen"`
	LastSeen   string     `json:"lastSeen"`
	PostCount  int        `json:"postCount"`
	Confidence Confidence `json:"confidence"`
}

// Key is the natural identity used for set-union merges
func (a PromoterAccount) Key() string {
	return AccountKey(a.Platform, a.Identifier)
}

// AccountKey builds the platform::identifier key
func AccountKey(platform, identifier string) string {
	return platform + "::" + identifier
}

// Timeline event categories
const (
	EventCategoryDetection = "detection"
	EventCategoryStatus    = "status"
	EventCategoryPrice     = "price"
	EventCategoryPromotion = "promotion"
)

// Timeline event significance
const (
	SignificanceLow    = "low"
	SignificanceMedium = "medium"
	SignificanceHigh   = "high"
)

// TimelineEvent is one append-only history entry
type TimelineEvent struct {
	Date         string `json:"date"`
	Event        string `json:"event"`
	Category     string `json:"category,omitempty"`
	Significance string `json:"significance,omitempty"`
}

// SchemeRecord is the longitudinal record of one suspected scheme.
// Timeline is append-only. Platform, indicator and signal sets and the
// promoter accounts only grow.
type SchemeRecord struct {
	SchemeID   string       `json:"schemeId"`
	Symbol     string       `json:"symbol"`
	Name       string       `json:"name"`
	SchemeName string       `json:"schemeName"`
	Sector     string       `json:"sector,omitempty"`
	Industry   string       `json:"industry,omitempty"`
	Status     SchemeStatus `json:"status"`

	FirstDetected string `json:"firstDetected"`
	LastSeen      string `json:"lastSeen"`
	DaysActive    int    `json:"daysActive"`

	PeakRiskScore         int `json:"peakRiskScore"`
	CurrentRiskScore      int `json:"currentRiskScore"`
	PeakPromotionScore    int `json:"peakPromotionScore"`
	CurrentPromotionScore int `json:"currentPromotionScore"`

	PriceAtDetection         float64 `json:"priceAtDetection"`
	PeakPrice                float64 `json:"peakPrice"`
	CurrentPrice             float64 `json:"currentPrice"`
	PriceChangeFromDetection float64 `json:"priceChangeFromDetection"` // percent
	PriceChangeFromPeak      float64 `json:"priceChangeFromPeak"`      // percent, <= 0

	PromotionPlatforms     []string          `json:"promotionPlatforms"`
	PromoterAccounts       []PromoterAccount `json:"promoterAccounts"`
	CoordinationIndicators []string          `json:"coordinationIndicators"`
	SignalsDetected        []string          `json:"signalsDetected"`
	Timeline               []TimelineEvent   `json:"timeline"`

	// Tracker bookkeeping
	DeclineStreak int    `json:"declineStreak"`
	CoolingSince  string `json:"coolingSince,omitempty"`
	LastEvaluated string `json:"lastEvaluated,omitempty"` // last batch date applied, observed or quiet
}

// RefreshDerived recomputes daysActive and the price change percentages
func (r *SchemeRecord) RefreshDerived() {
	r.DaysActive = DaysBetween(r.FirstDetected, r.LastSeen)
	r.PriceChangeFromDetection = pctChange(r.PriceAtDetection, r.CurrentPrice)
	r.PriceChangeFromPeak = pctChange(r.PeakPrice, r.CurrentPrice)
}

func pctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100
}

// Clone returns a deep copy
func (r *SchemeRecord) Clone() *SchemeRecord {
	c := *r
	c.PromotionPlatforms = cloneSlice(r.PromotionPlatforms)
	c.PromoterAccounts = cloneSlice(r.PromoterAccounts)
	c.CoordinationIndicators = cloneSlice(r.CoordinationIndicators)
	c.SignalsDetected = cloneSlice(r.SignalsDetected)
	c.Timeline = cloneSlice(r.Timeline)
	return &c
}

// cloneSlice copies s, keeping nil and empty distinct
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// SchemeDatabase is the aggregate of all tracked schemes
type SchemeDatabase struct {
	LastUpdated     time.Time                `json:"lastUpdated"`
	TotalSchemes    int                      `json:"totalSchemes"`
	ActiveSchemes   int                      `json:"activeSchemes"`
	ResolvedSchemes int                      `json:"resolvedSchemes"`
	ConfirmedFrauds int                      `json:"confirmedFrauds"`
	Schemes         map[string]*SchemeRecord `json:"schemes"`
}

// NewSchemeDatabase returns an empty database
func NewSchemeDatabase() *SchemeDatabase {
	return &SchemeDatabase{Schemes: make(map[string]*SchemeRecord)}
}

// Recount recomputes the summary counters from the records
func (db *SchemeDatabase) Recount() {
	db.TotalSchemes = len(db.Schemes)
	db.ActiveSchemes, db.ResolvedSchemes, db.ConfirmedFrauds = 0, 0, 0
	for _, rec := range db.Schemes {
		switch {
		case rec.Status.IsActive():
			db.ActiveSchemes++
		case rec.Status == StatusPumpAndDumpEnded:
			db.ResolvedSchemes++
			db.ConfirmedFrauds++
		case rec.Status.IsTerminal():
			db.ResolvedSchemes++
		}
	}
}

// SortedIDs returns scheme ids in ascending order
func (db *SchemeDatabase) SortedIDs() []string {
	ids := make([]string, 0, len(db.Schemes))
	for id := range db.Schemes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ActiveBySymbol returns the active record for symbol, if any
func (db *SchemeDatabase) ActiveBySymbol(symbol string) *SchemeRecord {
	for _, id := range db.SortedIDs() {
		rec := db.Schemes[id]
		if rec.Symbol == symbol && rec.Status.IsActive() {
			return rec
		}
	}
	return nil
}

// Filter returns records matching status (all when empty), sorted by id
func (db *SchemeDatabase) Filter(status SchemeStatus) []*SchemeRecord {
	out := make([]*SchemeRecord, 0, len(db.Schemes))
	for _, id := range db.SortedIDs() {
		rec := db.Schemes[id]
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
