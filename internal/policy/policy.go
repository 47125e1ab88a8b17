package policy

// Policy holds every detection threshold of the risk engine
// ⭐ SSOT: scorer, classifier and tracker constants live here only
type Policy struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Classifier Classifier `yaml:"classifier" json:"classifier"`
	Stock      Stock      `yaml:"stock" json:"stock"`
	Crypto     Crypto     `yaml:"crypto" json:"crypto"`
	Fusion     Fusion     `yaml:"fusion" json:"fusion"`
	Tracker    Tracker    `yaml:"tracker" json:"tracker"`
}

// Meta identifies the policy revision in audit logs
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// Classifier score thresholds: score >= High is HIGH, score >= Medium is MEDIUM
type Classifier struct {
	HighThreshold   int `yaml:"high_threshold" json:"high_threshold"`
	MediumThreshold int `yaml:"medium_threshold" json:"medium_threshold"`
}

// SpikeThenDrop describes the rise-into-peak-then-fall shape
type SpikeThenDrop struct {
	LookbackPoints int     `yaml:"lookback_points" json:"lookback_points"`
	MinRisePct     float64 `yaml:"min_rise_pct" json:"min_rise_pct"`
	MinDropPct     float64 `yaml:"min_drop_pct" json:"min_drop_pct"`
}

// Stock thresholds for the equity scorer
type Stock struct {
	MicrocapPriceMax     float64       `yaml:"microcap_price_max" json:"microcap_price_max"`
	SmallMarketCapMax    float64       `yaml:"small_market_cap_max" json:"small_market_cap_max"`
	MicroLiquidityMax    float64       `yaml:"micro_liquidity_max" json:"micro_liquidity_max"`
	SpikeMediumPct       float64       `yaml:"spike_medium_pct" json:"spike_medium_pct"`
	SpikeHighPct         float64       `yaml:"spike_high_pct" json:"spike_high_pct"`
	VolumeMediumRatio    float64       `yaml:"volume_medium_ratio" json:"volume_medium_ratio"`
	VolumeHighRatio      float64       `yaml:"volume_high_ratio" json:"volume_high_ratio"`
	VolumeAverageWindow  int           `yaml:"volume_average_window" json:"volume_average_window"`
	ReturnLookbackPoints int           `yaml:"return_lookback_points" json:"return_lookback_points"`
	SpikeThenDrop        SpikeThenDrop `yaml:"spike_then_drop" json:"spike_then_drop"`
	OTCExchanges         []string      `yaml:"otc_exchanges" json:"otc_exchanges"`
}

// Crypto thresholds for the token scorer. Percentages are 0..100.
type Crypto struct {
	HighTaxPct              float64       `yaml:"high_tax_pct" json:"high_tax_pct"`
	LPMinLockDays           int           `yaml:"lp_min_lock_days" json:"lp_min_lock_days"`
	MinLiquidityRatioPct    float64       `yaml:"min_liquidity_ratio_pct" json:"min_liquidity_ratio_pct"`
	HolderConcentrationPct  float64       `yaml:"holder_concentration_pct" json:"holder_concentration_pct"`
	MinHolderCount          int           `yaml:"min_holder_count" json:"min_holder_count"`
	PumpReturnPct           float64       `yaml:"pump_return_pct" json:"pump_return_pct"`
	PumpVolumeRatio         float64       `yaml:"pump_volume_ratio" json:"pump_volume_ratio"`
	ExtremeDailyMovePct     float64       `yaml:"extreme_daily_move_pct" json:"extreme_daily_move_pct"`
	ManipulationVolumeRatio float64       `yaml:"manipulation_volume_ratio" json:"manipulation_volume_ratio"`
	NewTokenMarketCapMax    float64       `yaml:"new_token_market_cap_max" json:"new_token_market_cap_max"`
	SpikeThenDrop           SpikeThenDrop `yaml:"spike_then_drop" json:"spike_then_drop"`
}

// Fusion controls how a remote probability maps onto the score scale
type Fusion struct {
	ScoreScale int `yaml:"score_scale" json:"score_scale"` // totalScore = round(p * scale)
}

// Tracker lifecycle windows
type Tracker struct {
	CoolingWindowDays      int     `yaml:"cooling_window_days" json:"cooling_window_days"`
	DumpDropPct            float64 `yaml:"dump_drop_pct" json:"dump_drop_pct"`
	ElevatedPromotionScore int     `yaml:"elevated_promotion_score" json:"elevated_promotion_score"`
}

// Default returns the compiled-in policy
func Default() *Policy {
	return &Policy{
		Meta: Meta{
			PolicyID: "scamdunk_default",
			Version:  "1",
		},
		Classifier: Classifier{
			HighThreshold:   7,
			MediumThreshold: 3,
		},
		Stock: Stock{
			MicrocapPriceMax:     5,
			SmallMarketCapMax:    300_000_000,
			MicroLiquidityMax:    150_000,
			SpikeMediumPct:       50,
			SpikeHighPct:         100,
			VolumeMediumRatio:    5,
			VolumeHighRatio:      10,
			VolumeAverageWindow:  30,
			ReturnLookbackPoints: 7,
			SpikeThenDrop: SpikeThenDrop{
				LookbackPoints: 15,
				MinRisePct:     50,
				MinDropPct:     30,
			},
			OTCExchanges: []string{"OTC", "OTCBB", "OTCQX", "OTCQB", "PINK", "GREY", "OTC MARKETS"},
		},
		Crypto: Crypto{
			HighTaxPct:              10,
			LPMinLockDays:           180,
			MinLiquidityRatioPct:    1,
			HolderConcentrationPct:  50,
			MinHolderCount:          100,
			PumpReturnPct:           80,
			PumpVolumeRatio:         8,
			ExtremeDailyMovePct:     50,
			ManipulationVolumeRatio: 20,
			NewTokenMarketCapMax:    10_000_000,
			SpikeThenDrop: SpikeThenDrop{
				LookbackPoints: 15,
				MinRisePct:     50,
				MinDropPct:     30,
			},
		},
		Fusion: Fusion{
			ScoreScale: 20,
		},
		Tracker: Tracker{
			CoolingWindowDays:      3,
			DumpDropPct:            50,
			ElevatedPromotionScore: 50,
		},
	}
}
