package scoring

import (
	"strings"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

// StockScorer evaluates equity inputs against StockCatalog
type StockScorer struct {
	cfg          policy.Stock
	otcExchanges map[string]struct{}
}

// NewStockScorer creates a stock scorer from policy thresholds
func NewStockScorer(cfg policy.Stock) *StockScorer {
	otc := make(map[string]struct{}, len(cfg.OTCExchanges))
	for _, ex := range cfg.OTCExchanges {
		otc[strings.ToUpper(strings.TrimSpace(ex))] = struct{}{}
	}
	return &StockScorer{cfg: cfg, otcExchanges: otc}
}

// IsOTC reports whether exchange names an over-the-counter venue
func (s *StockScorer) IsOTC(exchange string) bool {
	_, ok := s.otcExchanges[strings.ToUpper(strings.TrimSpace(exchange))]
	return ok
}

// Evaluate returns the triggered signals for req
func (s *StockScorer) Evaluate(req *contracts.ScanRequest) *contracts.SignalSet {
	set := contracts.NewSignalSet()
	md := &req.Market
	q := md.Quote

	// Structural
	if q.LastPrice > 0 && q.LastPrice < s.cfg.MicrocapPriceMax {
		StockCatalog.emit(set, CodeMicrocapPrice)
	}
	if q.MarketCap > 0 && q.MarketCap < s.cfg.SmallMarketCapMax {
		StockCatalog.emit(set, CodeSmallMarketCap)
	}
	if q.AvgDollarVolume30d > 0 && q.AvgDollarVolume30d < s.cfg.MicroLiquidityMax {
		StockCatalog.emit(set, CodeMicroLiquidity)
	}
	if md.IsOTC || s.IsOTC(q.Exchange) {
		StockCatalog.emit(set, CodeOTCExchange)
	}

	// Pattern
	ret, hasRet, vol, hasVol := derived(md, s.cfg.ReturnLookbackPoints, s.cfg.VolumeAverageWindow)
	if hasRet {
		switch {
		case ret > s.cfg.SpikeHighPct:
			StockCatalog.emit(set, CodeSpike7dHigh)
		case ret >= s.cfg.SpikeMediumPct:
			StockCatalog.emit(set, CodeSpike7dMedium)
		}
	}
	if hasVol {
		switch {
		case vol > s.cfg.VolumeHighRatio:
			StockCatalog.emit(set, CodeVolumeExplosionHigh)
		case vol >= s.cfg.VolumeMediumRatio:
			StockCatalog.emit(set, CodeVolumeExplosionMedium)
		}
	}
	if SpikeThenDrop(md.PriceHistory, s.cfg.SpikeThenDrop) {
		StockCatalog.emit(set, CodeSpikeThenDrop)
	}

	// Alert
	if req.AlertHit {
		StockCatalog.emit(set, CodeAlertListHit)
	}

	// Behavioral
	for _, code := range BehavioralCodes(req.Flags, req.PitchText) {
		StockCatalog.emit(set, code)
	}

	return set
}
