package scoring

import (
	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

// Token histories use the same 7-point return and 30-point volume baseline
const (
	cryptoReturnLookback = 7
	cryptoVolumeWindow   = 30
)

// CryptoScorer evaluates token inputs against CryptoCatalog
type CryptoScorer struct {
	cfg policy.Crypto
}

// NewCryptoScorer creates a crypto scorer from policy thresholds
func NewCryptoScorer(cfg policy.Crypto) *CryptoScorer {
	return &CryptoScorer{cfg: cfg}
}

// Evaluate returns the triggered signals for req. A nil req.Crypto skips
// the contract, liquidity and distribution checks.
func (s *CryptoScorer) Evaluate(req *contracts.ScanRequest) *contracts.SignalSet {
	set := contracts.NewSignalSet()
	md := &req.Market

	var fund contracts.CryptoFundamentals
	var sec contracts.CryptoSecurity
	hasCrypto := req.Crypto != nil
	if hasCrypto {
		fund, sec = req.Crypto.Fundamentals, req.Crypto.Security
	}
	marketCap := fund.MarketCap
	if marketCap <= 0 {
		marketCap = md.Quote.MarketCap
	}

	// Contract
	if sec.IsHoneypot {
		CryptoCatalog.emit(set, CodeHoneypot)
	}
	if sec.OwnerCanChangeBalance {
		CryptoCatalog.emit(set, CodeOwnerCanChangeBalance)
	}
	if sec.HiddenOwner {
		CryptoCatalog.emit(set, CodeHiddenOwner)
	}
	if sec.IsMintable {
		CryptoCatalog.emit(set, CodeCanMint)
	}
	if sec.SellTax > s.cfg.HighTaxPct {
		CryptoCatalog.emit(set, CodeHighSellTax)
	}
	if sec.BuyTax > s.cfg.HighTaxPct {
		CryptoCatalog.emit(set, CodeHighBuyTax)
	}

	// Liquidity
	if hasCrypto && !sec.LPLocked && !fund.IsEstablished {
		CryptoCatalog.emit(set, CodeLPNotLocked)
	}
	if sec.LPLocked && sec.LPLockDays > 0 && sec.LPLockDays < s.cfg.LPMinLockDays {
		CryptoCatalog.emit(set, CodeLPLowLockDuration)
	}
	if marketCap > 0 && fund.Liquidity > 0 && fund.Liquidity/marketCap*100 < s.cfg.MinLiquidityRatioPct {
		CryptoCatalog.emit(set, CodeLowLiquidityRatio)
	}

	// Distribution
	if fund.Top10HolderPct > s.cfg.HolderConcentrationPct {
		CryptoCatalog.emit(set, CodeHighHolderConcentration)
	}
	if fund.HolderCount > 0 && fund.HolderCount < s.cfg.MinHolderCount {
		CryptoCatalog.emit(set, CodeLowHolderCount)
	}

	// Pattern
	ret, hasRet, vol, hasVol := derived(md, cryptoReturnLookback, cryptoVolumeWindow)
	if hasRet && hasVol && ret > s.cfg.PumpReturnPct && vol >= s.cfg.PumpVolumeRatio {
		CryptoCatalog.emit(set, CodePumpPattern)
	}
	if SpikeThenDrop(md.PriceHistory, s.cfg.SpikeThenDrop) {
		CryptoCatalog.emit(set, CodeSpikeThenDrop)
	}
	if MaxDailyMovePct(md.PriceHistory) >= s.cfg.ExtremeDailyMovePct {
		CryptoCatalog.emit(set, CodeExtremeVolatility)
	}
	if hasVol && vol >= s.cfg.ManipulationVolumeRatio {
		CryptoCatalog.emit(set, CodeVolumeManipulation)
	}

	// Structural
	if marketCap > 0 && marketCap < s.cfg.NewTokenMarketCapMax && !fund.IsEstablished {
		CryptoCatalog.emit(set, CodeNewToken)
	}

	// Alert
	if req.AlertHit {
		CryptoCatalog.emit(set, CodeAlertListHit)
	}

	// Behavioral
	for _, code := range BehavioralCodes(req.Flags, req.PitchText) {
		CryptoCatalog.emit(set, code)
	}

	return set
}
