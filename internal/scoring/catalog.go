package scoring

import (
	"fmt"

	"github.com/wonny/scamdunk/internal/contracts"
)

// Stock and shared signal codes
const (
	CodeMicrocapPrice         = "MICROCAP_PRICE"
	CodeSmallMarketCap        = "SMALL_MARKET_CAP"
	CodeMicroLiquidity        = "MICRO_LIQUIDITY"
	CodeOTCExchange           = "OTC_EXCHANGE"
	CodeSpike7dMedium         = "SPIKE_7D_MEDIUM"
	CodeSpike7dHigh           = "SPIKE_7D_HIGH"
	CodeVolumeExplosionMedium = "VOLUME_EXPLOSION_MEDIUM"
	CodeVolumeExplosionHigh   = "VOLUME_EXPLOSION_HIGH"
	CodeSpikeThenDrop         = "SPIKE_THEN_DROP"
	CodeAlertListHit          = "ALERT_LIST_HIT"
	CodeUnsolicited           = "UNSOLICITED"
	CodePromisedReturns       = "PROMISED_RETURNS"
	CodeUrgency               = "URGENCY"
	CodeSecrecy               = "SECRECY"
	CodeSpecificReturnClaim   = "SPECIFIC_RETURN_CLAIM"
)

// Crypto-only signal codes
const (
	CodeHoneypot                = "HONEYPOT"
	CodeOwnerCanChangeBalance   = "OWNER_CAN_CHANGE_BALANCE"
	CodeHiddenOwner             = "HIDDEN_OWNER"
	CodeCanMint                 = "CAN_MINT"
	CodeHighSellTax             = "HIGH_SELL_TAX"
	CodeHighBuyTax              = "HIGH_BUY_TAX"
	CodeLPNotLocked             = "LP_NOT_LOCKED"
	CodeLPLowLockDuration       = "LP_LOW_LOCK_DURATION"
	CodeLowLiquidityRatio       = "LOW_LIQUIDITY_RATIO"
	CodeHighHolderConcentration = "HIGH_HOLDER_CONCENTRATION"
	CodeLowHolderCount          = "LOW_HOLDER_COUNT"
	CodePumpPattern             = "PUMP_PATTERN"
	CodeExtremeVolatility       = "EXTREME_VOLATILITY"
	CodeVolumeManipulation      = "VOLUME_MANIPULATION"
	CodeNewToken                = "NEW_TOKEN"
)

// Catalog is a fixed registry of signals keyed by code
type Catalog map[string]contracts.Signal

func newCatalog(entries ...contracts.Signal) Catalog {
	c := make(Catalog, len(entries))
	for _, e := range entries {
		c[e.Code] = e
	}
	return c
}

// Lookup returns the catalog entry for code
func (c Catalog) Lookup(code string) (contracts.Signal, bool) {
	sig, ok := c[code]
	return sig, ok
}

// emit adds the catalog entry for code to set
func (c Catalog) emit(set *contracts.SignalSet, code string) {
	sig, ok := c[code]
	if !ok {
		panic(fmt.Sprintf("scoring: code %s missing from catalog", code))
	}
	set.Add(sig)
}

var behavioralSignals = []contracts.Signal{
	{Code: CodeUnsolicited, Category: contracts.CategoryBehavioral, Weight: 1, Description: "Unsolicited tip or contact"},
	{Code: CodePromisedReturns, Category: contracts.CategoryBehavioral, Weight: 2, Description: "Promises high or guaranteed returns"},
	{Code: CodeUrgency, Category: contracts.CategoryBehavioral, Weight: 2, Description: "Pressure to act immediately"},
	{Code: CodeSecrecy, Category: contracts.CategoryBehavioral, Weight: 2, Description: "Claims of insider or secret information"},
	{Code: CodeSpecificReturnClaim, Category: contracts.CategoryBehavioral, Weight: 1, Description: "Cites a specific return figure"},
}

var alertSignal = contracts.Signal{
	Code: CodeAlertListHit, Category: contracts.CategoryAlert, Weight: 5,
	Description: "Symbol appears on a regulatory alert or trading suspension list",
}

// StockCatalog is the equity weight table
var StockCatalog = newCatalog(append([]contracts.Signal{
	{Code: CodeMicrocapPrice, Category: contracts.CategoryStructural, Weight: 2, Description: "Penny stock price under $5"},
	{Code: CodeSmallMarketCap, Category: contracts.CategoryStructural, Weight: 2, Description: "Market capitalization under $300M"},
	{Code: CodeMicroLiquidity, Category: contracts.CategoryStructural, Weight: 2, Description: "Average daily dollar volume under $150K"},
	{Code: CodeOTCExchange, Category: contracts.CategoryStructural, Weight: 3, Description: "Trades over the counter"},
	{Code: CodeSpike7dMedium, Category: contracts.CategoryPattern, Weight: 3, Description: "Price up 50-100% in 7 days"},
	{Code: CodeSpike7dHigh, Category: contracts.CategoryPattern, Weight: 4, Description: "Price up more than 100% in 7 days"},
	{Code: CodeVolumeExplosionMedium, Category: contracts.CategoryPattern, Weight: 2, Description: "Volume 5-10x the 30-day average"},
	{Code: CodeVolumeExplosionHigh, Category: contracts.CategoryPattern, Weight: 3, Description: "Volume more than 10x the 30-day average"},
	{Code: CodeSpikeThenDrop, Category: contracts.CategoryPattern, Weight: 3, Description: "Price spiked then dropped sharply"},
	alertSignal,
}, behavioralSignals...)...)

// CryptoCatalog is the token weight table, independent of StockCatalog
var CryptoCatalog = newCatalog(append([]contracts.Signal{
	{Code: CodeHoneypot, Category: contracts.CategoryContract, Weight: 5, Description: "Token is a honeypot and cannot be sold"},
	{Code: CodeOwnerCanChangeBalance, Category: contracts.CategoryContract, Weight: 4, Description: "Owner can modify wallet balances"},
	{Code: CodeHiddenOwner, Category: contracts.CategoryContract, Weight: 3, Description: "Contract owner is hidden via proxy"},
	{Code: CodeCanMint, Category: contracts.CategoryContract, Weight: 3, Description: "Unlimited token minting possible"},
	{Code: CodeHighSellTax, Category: contracts.CategoryContract, Weight: 3, Description: "Sell tax exceeds 10%"},
	{Code: CodeHighBuyTax, Category: contracts.CategoryContract, Weight: 2, Description: "Buy tax exceeds 10%"},
	{Code: CodeLPNotLocked, Category: contracts.CategoryLiquidity, Weight: 3, Description: "Liquidity pool is not locked"},
	{Code: CodeLPLowLockDuration, Category: contracts.CategoryLiquidity, Weight: 2, Description: "LP lock duration is less than 6 months"},
	{Code: CodeLowLiquidityRatio, Category: contracts.CategoryLiquidity, Weight: 2, Description: "Trading liquidity is below 1% of market cap"},
	{Code: CodeHighHolderConcentration, Category: contracts.CategoryDistribution, Weight: 3, Description: "Top 10 holders control over 50% of supply"},
	{Code: CodeLowHolderCount, Category: contracts.CategoryDistribution, Weight: 2, Description: "Fewer than 100 token holders"},
	{Code: CodePumpPattern, Category: contracts.CategoryPattern, Weight: 4, Description: "Price pump with volume explosion detected"},
	{Code: CodeSpikeThenDrop, Category: contracts.CategoryPattern, Weight: 4, Description: "Price spiked then dropped significantly"},
	{Code: CodeExtremeVolatility, Category: contracts.CategoryPattern, Weight: 2, Description: "Extremely high price volatility detected"},
	{Code: CodeVolumeManipulation, Category: contracts.CategoryPattern, Weight: 3, Description: "Extreme volume surge (20x normal) detected"},
	{Code: CodeNewToken, Category: contracts.CategoryStructural, Weight: 2, Description: "Micro-cap token with limited track record"},
	alertSignal,
}, behavioralSignals...)...)
