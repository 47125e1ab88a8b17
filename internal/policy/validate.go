package policy

import (
	"fmt"
	"strings"
)

// ValidationError reports one invalid policy field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(p *Policy) error {
	// === Meta ===
	if p.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	// === Classifier ===
	c := p.Classifier
	if c.MediumThreshold <= 0 {
		return ValidationError{"classifier.medium_threshold", "must be > 0"}
	}
	if c.HighThreshold <= c.MediumThreshold {
		return ValidationError{"classifier.high_threshold", "must be > medium_threshold"}
	}

	// === Stock ===
	s := p.Stock
	if err := positive("stock.microcap_price_max", s.MicrocapPriceMax); err != nil {
		return err
	}
	if err := positive("stock.small_market_cap_max", s.SmallMarketCapMax); err != nil {
		return err
	}
	if err := positive("stock.micro_liquidity_max", s.MicroLiquidityMax); err != nil {
		return err
	}
	if s.SpikeMediumPct <= 0 || s.SpikeHighPct < s.SpikeMediumPct {
		return ValidationError{"stock.spike_high_pct", "must satisfy 0 < spike_medium_pct <= spike_high_pct"}
	}
	if s.VolumeMediumRatio <= 1 || s.VolumeHighRatio < s.VolumeMediumRatio {
		return ValidationError{"stock.volume_high_ratio", "must satisfy 1 < volume_medium_ratio <= volume_high_ratio"}
	}
	if s.VolumeAverageWindow <= 0 {
		return ValidationError{"stock.volume_average_window", "must be > 0"}
	}
	if s.ReturnLookbackPoints <= 0 {
		return ValidationError{"stock.return_lookback_points", "must be > 0"}
	}
	if err := validateSpikeThenDrop("stock.spike_then_drop", s.SpikeThenDrop); err != nil {
		return err
	}
	for i, ex := range s.OTCExchanges {
		if strings.TrimSpace(ex) == "" {
			return ValidationError{fmt.Sprintf("stock.otc_exchanges[%d]", i), "must not be empty"}
		}
	}

	// === Crypto ===
	cr := p.Crypto
	if err := pctRange("crypto.high_tax_pct", cr.HighTaxPct); err != nil {
		return err
	}
	if err := pctRange("crypto.holder_concentration_pct", cr.HolderConcentrationPct); err != nil {
		return err
	}
	if err := pctRange("crypto.min_liquidity_ratio_pct", cr.MinLiquidityRatioPct); err != nil {
		return err
	}
	if cr.LPMinLockDays <= 0 {
		return ValidationError{"crypto.lp_min_lock_days", "must be > 0"}
	}
	if cr.MinHolderCount <= 0 {
		return ValidationError{"crypto.min_holder_count", "must be > 0"}
	}
	if err := positive("crypto.pump_return_pct", cr.PumpReturnPct); err != nil {
		return err
	}
	if err := positive("crypto.pump_volume_ratio", cr.PumpVolumeRatio); err != nil {
		return err
	}
	if err := positive("crypto.extreme_daily_move_pct", cr.ExtremeDailyMovePct); err != nil {
		return err
	}
	if err := positive("crypto.manipulation_volume_ratio", cr.ManipulationVolumeRatio); err != nil {
		return err
	}
	if err := positive("crypto.new_token_market_cap_max", cr.NewTokenMarketCapMax); err != nil {
		return err
	}
	if err := validateSpikeThenDrop("crypto.spike_then_drop", cr.SpikeThenDrop); err != nil {
		return err
	}

	// === Fusion ===
	if p.Fusion.ScoreScale <= 0 {
		return ValidationError{"fusion.score_scale", "must be > 0"}
	}

	// === Tracker ===
	t := p.Tracker
	if t.CoolingWindowDays <= 0 {
		return ValidationError{"tracker.cooling_window_days", "must be > 0"}
	}
	if t.DumpDropPct <= 0 || t.DumpDropPct >= 100 {
		return ValidationError{"tracker.dump_drop_pct", "must be in (0, 100)"}
	}
	if t.ElevatedPromotionScore <= 0 {
		return ValidationError{"tracker.elevated_promotion_score", "must be > 0"}
	}

	return nil
}

func validateSpikeThenDrop(field string, s SpikeThenDrop) error {
	if s.LookbackPoints < 3 {
		return ValidationError{field + ".lookback_points", "must be >= 3"}
	}
	if err := positive(field+".min_rise_pct", s.MinRisePct); err != nil {
		return err
	}
	if s.MinDropPct <= 0 || s.MinDropPct >= 100 {
		return ValidationError{field + ".min_drop_pct", "must be in (0, 100)"}
	}
	return nil
}

func positive(field string, v float64) error {
	if v <= 0 {
		return ValidationError{field, "must be > 0"}
	}
	return nil
}

func pctRange(field string, v float64) error {
	if v <= 0 || v > 100 {
		return ValidationError{field, "must be in (0, 100]"}
	}
	return nil
}
