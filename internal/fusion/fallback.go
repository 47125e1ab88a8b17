package fusion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/external/inference"
	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/internal/scoring"
)

// Fallback tries primary and falls back to the deterministic strategy on
// any error. Score never returns an error.
// ⭐ SSOT: the only place a scan path is chosen
type Fallback struct {
	primary  Strategy
	fallback *Deterministic
	log      zerolog.Logger
}

// NewFallback wraps primary. A nil primary always scores deterministically.
func NewFallback(primary Strategy, fallback *Deterministic, log zerolog.Logger) *Fallback {
	return &Fallback{
		primary:  primary,
		fallback: fallback,
		log:      log.With().Str("component", "fusion").Logger(),
	}
}

// Name implements Strategy
func (f *Fallback) Name() string { return "fallback" }

// Score implements Strategy
func (f *Fallback) Score(ctx context.Context, req *contracts.ScanRequest) (*contracts.RiskResponse, error) {
	start := time.Now()

	if f.primary != nil {
		resp, err := f.primary.Score(ctx, req)
		if err == nil {
			metrics.RecordScan(string(resp.AssetType), string(resp.RiskLevel), f.primary.Name(), time.Since(start))
			return resp, nil
		}

		if !errors.Is(err, inference.ErrNotConfigured) {
			reason := inference.Reason(err)
			f.log.Warn().
				Err(err).
				Str("ticker", req.Symbol()).
				Str("asset_type", string(req.AssetType)).
				Str("reason", reason).
				Msg("Primary scoring failed, using deterministic scorer")
			metrics.RecordFallback(reason)

			resp, _ := f.fallback.Score(ctx, req)
			resp.FallbackReason = reason
			metrics.RecordScan(string(resp.AssetType), string(resp.RiskLevel), f.fallback.Name(), time.Since(start))
			return resp, nil
		}
	}

	resp, _ := f.fallback.Score(ctx, req)
	metrics.RecordScan(string(resp.AssetType), string(resp.RiskLevel), f.fallback.Name(), time.Since(start))
	return resp, nil
}

// New builds the standard chain: remote when configured, deterministic otherwise
func New(scorer *scoring.Scorer, client Analyzer, scale int, log zerolog.Logger) *Fallback {
	var primary Strategy
	if client != nil && client.Enabled() {
		primary = NewRemote(client, scale)
	}
	return NewFallback(primary, NewDeterministic(scorer), log)
}
