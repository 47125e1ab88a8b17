package marketdata

// Field is a canonical market data field
type Field string

const (
	FieldSymbol          Field = "symbol"
	FieldName            Field = "name"
	FieldExchange        Field = "exchange"
	FieldLastPrice       Field = "lastPrice"
	FieldMarketCap       Field = "marketCap"
	FieldAvgVolume       Field = "avgVolume30d"
	FieldAvgDollarVolume Field = "avgDollarVolume30d"
	FieldIsOTC           Field = "isOTC"

	FieldDate   Field = "date"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
)

// FieldMapping lists, per canonical field, the vendor keys tried in order.
// The first key present with a usable value wins.
// ⭐ SSOT: vendor naming differences are resolved here and nowhere else
var FieldMapping = map[Field][]string{
	FieldSymbol:          {"symbol", "ticker", "Symbol", "01. symbol"},
	FieldName:            {"name", "shortName", "longName", "companyName", "Name"},
	FieldExchange:        {"exchange", "fullExchangeName", "exchangeName", "primaryExchange", "Exchange"},
	FieldLastPrice:       {"lastPrice", "regularMarketPrice", "currentPrice", "price", "last", "05. price"},
	FieldMarketCap:       {"marketCap", "market_cap", "marketCapitalization", "MarketCapitalization", "mktCap"},
	FieldAvgVolume:       {"avgVolume30d", "averageVolume", "averageDailyVolume3Month", "avgVolume", "volAvg"},
	FieldAvgDollarVolume: {"avgDollarVolume30d", "averageDollarVolume", "avg_dollar_volume", "dollarVolume"},
	FieldIsOTC:           {"isOTC", "is_otc", "otc"},

	FieldDate:   {"date", "Date", "datetime", "timestamp", "t"},
	FieldClose:  {"close", "Close", "adjClose", "adjusted_close", "4. close", "c"},
	FieldVolume: {"volume", "Volume", "5. volume", "v"},
}
