package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

func ptr(v float64) *float64 { return &v }

func stockRequest(q contracts.Quote, isOTC bool, ret, vol *float64) *contracts.ScanRequest {
	return &contracts.ScanRequest{
		Ticker:    q.Symbol,
		AssetType: contracts.AssetStock,
		Market: contracts.MarketData{
			Quote:             q,
			IsOTC:             isOTC,
			DataAvailable:     true,
			SevenDayReturnPct: ret,
			VolumeRatioVsAvg:  vol,
		},
	}
}

func TestScore_EndToEndExample1(t *testing.T) {
	s := New(policy.Default())
	req := stockRequest(contracts.Quote{
		Symbol:    "ACME",
		LastPrice: 0.80,
		MarketCap: 40_000_000,
	}, true, ptr(120), ptr(12))

	res := s.Score(req)

	assert.Equal(t, []string{
		CodeMicrocapPrice, CodeSmallMarketCap, CodeOTCExchange, CodeSpike7dHigh, CodeVolumeExplosionHigh,
	}, codes(res.Signals))
	assert.Equal(t, 14, res.TotalScore)
	assert.Equal(t, contracts.RiskHigh, res.RiskLevel)
	assert.False(t, res.IsLegitimate)
}

func TestScore_EndToEndExample2_KnownCalibrationGap(t *testing.T) {
	s := New(policy.Default())
	req := stockRequest(contracts.Quote{
		Symbol:    "BIGCO",
		LastPrice: 25,
		MarketCap: 2_000_000_000,
	}, true, nil, ptr(15))

	res := s.Score(req)

	assert.Equal(t, []string{CodeOTCExchange, CodeVolumeExplosionHigh}, codes(res.Signals))
	assert.Equal(t, 6, res.TotalScore)
	assert.Equal(t, contracts.RiskMedium, res.RiskLevel)
}

func TestScore_AlertHitForcesHighAtZero(t *testing.T) {
	s := New(policy.Default())
	req := stockRequest(contracts.Quote{Symbol: "HALT", LastPrice: 50, MarketCap: 5e9}, false, nil, nil)
	req.AlertHit = true

	res := s.Score(req)
	assert.Equal(t, contracts.RiskHigh, res.RiskLevel)
	assert.Equal(t, 5, res.TotalScore)

	// Classifier alone: override holds for a zero score
	assert.Equal(t, contracts.RiskHigh, s.Classifier().Level(0, true, true))
}

func TestScore_InsufficientData(t *testing.T) {
	s := New(policy.Default())
	req := stockRequest(contracts.Quote{Symbol: "GONE", LastPrice: 0.5}, true, nil, nil)
	req.Market.DataAvailable = false
	req.AlertHit = true

	res := s.Score(req)
	assert.Equal(t, contracts.RiskInsufficient, res.RiskLevel)
	assert.False(t, res.IsLegitimate)
}

func TestScore_CleanLargeCapIsLegitimate(t *testing.T) {
	s := New(policy.Default())
	req := stockRequest(contracts.Quote{
		Symbol: "AAPL", Exchange: "NASDAQ", LastPrice: 190, MarketCap: 3e12, AvgDollarVolume30d: 1e10,
	}, false, ptr(2), ptr(1.1))

	res := s.Score(req)
	assert.Empty(t, res.Signals)
	assert.NotNil(t, res.Signals)
	assert.Equal(t, contracts.RiskLow, res.RiskLevel)
	assert.True(t, res.IsLegitimate)
}

func TestClassifier_Boundaries(t *testing.T) {
	c := NewClassifier(policy.Default().Classifier)

	tests := []struct {
		score int
		want  contracts.RiskLevel
	}{
		{0, contracts.RiskLow},
		{2, contracts.RiskLow},
		{3, contracts.RiskMedium},
		{6, contracts.RiskMedium},
		{7, contracts.RiskHigh},
		{30, contracts.RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Level(tt.score, true, false), "score %d", tt.score)
	}
}

func TestClassifier_LegitimateRequiresNoSignals(t *testing.T) {
	c := NewClassifier(policy.Default().Classifier)
	sig := contracts.Signal{Code: CodeUnsolicited, Weight: 1}

	res := c.Classify([]contracts.Signal{sig}, 1, true, false)
	assert.Equal(t, contracts.RiskLow, res.RiskLevel)
	assert.False(t, res.IsLegitimate)
}

func TestStockScorer_Thresholds(t *testing.T) {
	s := NewStockScorer(policy.Default().Stock)

	tests := []struct {
		name  string
		ret   float64
		vol   float64
		codes []string
	}{
		{"below spike", 49.9, 4.9, nil},
		{"medium spike lower bound", 50, 5, []string{CodeSpike7dMedium, CodeVolumeExplosionMedium}},
		{"medium spike upper bound", 100, 10, []string{CodeSpike7dMedium, CodeVolumeExplosionMedium}},
		{"high spike", 100.1, 10.1, []string{CodeSpike7dHigh, CodeVolumeExplosionHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := stockRequest(contracts.Quote{Symbol: "X", LastPrice: 20, MarketCap: 1e9}, false, ptr(tt.ret), ptr(tt.vol))
			assert.Equal(t, tt.codes, nilIfEmpty(s.Evaluate(req).Codes()))
		})
	}
}

func TestStockScorer_OTCByExchangeName(t *testing.T) {
	s := NewStockScorer(policy.Default().Stock)
	for _, ex := range []string{"otc markets", "PINK", " OTCQB "} {
		req := stockRequest(contracts.Quote{Symbol: "X", Exchange: ex, LastPrice: 20, MarketCap: 1e9}, false, nil, nil)
		assert.True(t, s.Evaluate(req).Has(CodeOTCExchange), ex)
	}
	assert.False(t, s.IsOTC("NYSE"))
}

func TestStockScorer_MicroLiquidity(t *testing.T) {
	s := NewStockScorer(policy.Default().Stock)
	req := stockRequest(contracts.Quote{Symbol: "X", LastPrice: 20, MarketCap: 1e9, AvgDollarVolume30d: 149_999}, false, nil, nil)
	assert.True(t, s.Evaluate(req).Has(CodeMicroLiquidity))
}

func TestStockScorer_DerivesFromHistory(t *testing.T) {
	s := NewStockScorer(policy.Default().Stock)

	// 8 points, last close 2.5x the close 7 points earlier, last volume 20x
	history := []contracts.PricePoint{
		{Close: 1.0, Volume: 100}, {Close: 1.1, Volume: 100}, {Close: 1.2, Volume: 100}, {Close: 1.4, Volume: 100},
		{Close: 1.6, Volume: 100}, {Close: 1.9, Volume: 100}, {Close: 2.2, Volume: 100}, {Close: 2.5, Volume: 2000},
	}
	req := stockRequest(contracts.Quote{Symbol: "X", LastPrice: 20, MarketCap: 1e9}, false, nil, nil)
	req.Market.PriceHistory = history

	set := s.Evaluate(req)
	assert.True(t, set.Has(CodeSpike7dHigh))
	assert.True(t, set.Has(CodeVolumeExplosionHigh))
	assert.False(t, set.Has(CodeSpikeThenDrop))
}

func TestStockScorer_BehavioralFromFlagsAndText(t *testing.T) {
	s := NewStockScorer(policy.Default().Stock)
	req := stockRequest(contracts.Quote{Symbol: "X", LastPrice: 20, MarketCap: 1e9}, false, nil, nil)
	req.Flags.Unsolicited = true
	req.PitchText = "Insider tip: this one is GUARANTEED to go 10x. Act now!"

	set := s.Evaluate(req)
	assert.Equal(t, []string{CodeUnsolicited, CodePromisedReturns, CodeUrgency, CodeSecrecy, CodeSpecificReturnClaim}, set.Codes())
	assert.Equal(t, 8, set.TotalScore())
}

func TestCatalogsCoverEveryEmittedCode(t *testing.T) {
	for _, code := range []string{
		CodeMicrocapPrice, CodeSmallMarketCap, CodeMicroLiquidity, CodeOTCExchange,
		CodeSpike7dMedium, CodeSpike7dHigh, CodeVolumeExplosionMedium, CodeVolumeExplosionHigh,
		CodeSpikeThenDrop, CodeAlertListHit, CodeUnsolicited, CodePromisedReturns, CodeUrgency,
		CodeSecrecy, CodeSpecificReturnClaim,
	} {
		_, ok := StockCatalog.Lookup(code)
		assert.True(t, ok, code)
	}

	for _, code := range []string{
		CodeHoneypot, CodeOwnerCanChangeBalance, CodeHiddenOwner, CodeCanMint, CodeHighSellTax,
		CodeHighBuyTax, CodeLPNotLocked, CodeLPLowLockDuration, CodeLowLiquidityRatio,
		CodeHighHolderConcentration, CodeLowHolderCount, CodePumpPattern, CodeSpikeThenDrop,
		CodeExtremeVolatility, CodeVolumeManipulation, CodeNewToken, CodeAlertListHit, CodeSecrecy,
	} {
		sig, ok := CryptoCatalog.Lookup(code)
		require.True(t, ok, code)
		assert.True(t, sig.Category.Valid(), code)
	}

	// independent weight tables
	stockSTD, _ := StockCatalog.Lookup(CodeSpikeThenDrop)
	cryptoSTD, _ := CryptoCatalog.Lookup(CodeSpikeThenDrop)
	assert.Equal(t, 3, stockSTD.Weight)
	assert.Equal(t, 4, cryptoSTD.Weight)
}

func codes(signals []contracts.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.Code
	}
	return out
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
