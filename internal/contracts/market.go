package contracts

import "strings"

// AssetType selects the scorer variant and inference path
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// ParseAssetType normalizes s, defaulting to stock
func ParseAssetType(s string) AssetType {
	if strings.EqualFold(strings.TrimSpace(s), string(AssetCrypto)) {
		return AssetCrypto
	}
	return AssetStock
}

// Quote is the canonical market snapshot for one symbol
type Quote struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name,omitempty"`
	Exchange           string  `json:"exchange,omitempty"`
	LastPrice          float64 `json:"lastPrice"`
	MarketCap          float64 `json:"marketCap"`
	AvgVolume30d       float64 `json:"avgVolume30d,omitempty"`
	AvgDollarVolume30d float64 `json:"avgDollarVolume30d"`
}

// PricePoint is one daily bar, oldest first in a history
type PricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// MarketData is the scorer's market input.
// SevenDayReturnPct and VolumeRatioVsAvg override values derived from
// PriceHistory when set.
type MarketData struct {
	Quote             Quote        `json:"quote"`
	PriceHistory      []PricePoint `json:"priceHistory"`
	IsOTC             bool         `json:"isOTC"`
	DataAvailable     bool         `json:"dataAvailable"`
	SevenDayReturnPct *float64     `json:"sevenDayReturnPct,omitempty"`
	VolumeRatioVsAvg  *float64     `json:"volumeRatioVsAvg,omitempty"`
}

// ScanFlags are caller-supplied behavioral context flags
type ScanFlags struct {
	Unsolicited         bool `json:"unsolicited"`
	PromisesHighReturns bool `json:"promisesHighReturns"`
	UrgencyPressure     bool `json:"urgencyPressure"`
	SecrecyInsideInfo   bool `json:"secrecyInsideInfo"`
}

// CryptoFundamentals describes token market structure
type CryptoFundamentals struct {
	MarketCap      float64 `json:"market_cap"`
	Liquidity      float64 `json:"liquidity"`
	Volume24h      float64 `json:"volume_24h"`
	HolderCount    int     `json:"holder_count"`
	Top10HolderPct float64 `json:"top10_holder_pct"` // 0..100
	AgeDays        int     `json:"age_days"`
	IsEstablished  bool    `json:"is_established"`
}

// CryptoSecurity describes contract-level risk flags.
// Taxes are percentages (0..100).
type CryptoSecurity struct {
	IsHoneypot            bool    `json:"is_honeypot"`
	OwnerCanChangeBalance bool    `json:"owner_can_change_balance"`
	HiddenOwner           bool    `json:"hidden_owner"`
	IsMintable            bool    `json:"is_mintable"`
	BuyTax                float64 `json:"buy_tax"`
	SellTax               float64 `json:"sell_tax"`
	LPLocked              bool    `json:"lp_locked"`
	LPLockDays            int     `json:"lp_lock_days"`
}

// CryptoData bundles the crypto-only inputs
type CryptoData struct {
	Fundamentals CryptoFundamentals `json:"fundamentals"`
	Security     CryptoSecurity     `json:"security"`
}

// ScanRequest is one interactive risk evaluation
type ScanRequest struct {
	Ticker    string      `json:"ticker"`
	AssetType AssetType   `json:"assetType"`
	Market    MarketData  `json:"market"`
	PitchText string      `json:"pitchText,omitempty"`
	Flags     ScanFlags   `json:"flags"`
	Crypto    *CryptoData `json:"crypto,omitempty"`
	AlertHit  bool        `json:"alertHit"`
}

// Symbol returns the upper-cased ticker
func (r *ScanRequest) Symbol() string {
	return strings.ToUpper(strings.TrimSpace(r.Ticker))
}
