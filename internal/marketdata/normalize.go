package marketdata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
)

// Normalizer converts vendor maps into canonical market data
type Normalizer struct {
	otcExchanges map[string]struct{}
}

// NewNormalizer creates a normalizer recognising the given OTC venue names
func NewNormalizer(otcExchanges []string) *Normalizer {
	set := make(map[string]struct{}, len(otcExchanges))
	for _, e := range otcExchanges {
		set[strings.ToUpper(strings.TrimSpace(e))] = struct{}{}
	}
	return &Normalizer{otcExchanges: set}
}

// IsOTC reports whether exchange names an OTC venue
func (n *Normalizer) IsOTC(exchange string) bool {
	_, ok := n.otcExchanges[strings.ToUpper(strings.TrimSpace(exchange))]
	return ok
}

// Normalize maps a vendor quote onto contracts.Quote. isOTC is true when
// the vendor says so or the exchange is a known OTC venue.
func (n *Normalizer) Normalize(raw map[string]any) (contracts.Quote, bool) {
	q := contracts.Quote{
		Symbol:             strings.ToUpper(lookupString(raw, FieldSymbol)),
		Name:               lookupString(raw, FieldName),
		Exchange:           lookupString(raw, FieldExchange),
		LastPrice:          lookupNumber(raw, FieldLastPrice),
		MarketCap:          lookupNumber(raw, FieldMarketCap),
		AvgVolume30d:       lookupNumber(raw, FieldAvgVolume),
		AvgDollarVolume30d: lookupNumber(raw, FieldAvgDollarVolume),
	}
	if q.AvgDollarVolume30d == 0 && q.AvgVolume30d > 0 && q.LastPrice > 0 {
		q.AvgDollarVolume30d = q.AvgVolume30d * q.LastPrice
	}

	return q, lookupBool(raw, FieldIsOTC) || n.IsOTC(q.Exchange)
}

// NormalizeHistory maps vendor bars onto price points sorted oldest first.
// Bars without a date or a positive close are dropped.
func NormalizeHistory(raw []map[string]any) []contracts.PricePoint {
	out := make([]contracts.PricePoint, 0, len(raw))
	for _, bar := range raw {
		date := lookupDate(bar)
		closePrice := lookupNumber(bar, FieldClose)
		if date == "" || closePrice <= 0 {
			continue
		}
		out = append(out, contracts.PricePoint{
			Date:   date,
			Close:  closePrice,
			Volume: lookupNumber(bar, FieldVolume),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Build assembles scorer input. DataAvailable is false when there is no
// positive price or fewer than two history points.
func Build(quote contracts.Quote, history []contracts.PricePoint, isOTC bool) contracts.MarketData {
	md := contracts.MarketData{
		Quote:        quote,
		PriceHistory: history,
		IsOTC:        isOTC,
	}
	md.DataAvailable = available(md)
	return md
}

// WithSnapshot applies caller-supplied 7-day return and volume ratio.
// A priced quote carrying both is enough data even without history.
func WithSnapshot(md contracts.MarketData, sevenDayReturnPct, volumeRatio *float64) contracts.MarketData {
	if sevenDayReturnPct != nil {
		md.SevenDayReturnPct = sevenDayReturnPct
	}
	if volumeRatio != nil {
		md.VolumeRatioVsAvg = volumeRatio
	}
	md.DataAvailable = available(md)
	return md
}

func available(md contracts.MarketData) bool {
	if md.Quote.LastPrice <= 0 {
		return false
	}
	return len(md.PriceHistory) >= 2 || (md.SevenDayReturnPct != nil && md.VolumeRatioVsAvg != nil)
}

func lookup(raw map[string]any, field Field) (any, bool) {
	for _, key := range FieldMapping[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(raw map[string]any, field Field) string {
	for _, key := range FieldMapping[field] {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func lookupNumber(raw map[string]any, field Field) float64 {
	for _, key := range FieldMapping[field] {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if f, err := ParseNumber(v); err == nil {
			return f
		}
	}
	return 0
}

func lookupBool(raw map[string]any, field Field) bool {
	v, ok := lookup(raw, field)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	}
	return false
}

func lookupDate(raw map[string]any) string {
	v, ok := lookup(raw, FieldDate)
	if !ok {
		return ""
	}
	switch d := v.(type) {
	case string:
		d = strings.TrimSpace(d)
		if len(d) >= len(contracts.DateLayout) {
			if _, err := time.Parse(contracts.DateLayout, d[:len(contracts.DateLayout)]); err == nil {
				return d[:len(contracts.DateLayout)]
			}
		}
		return ""
	default:
		secs, err := ParseNumber(d)
		if err != nil || secs <= 0 {
			return ""
		}
		// Millisecond timestamps
		if secs > 1e11 {
			secs /= 1000
		}
		return time.Unix(int64(secs), 0).UTC().Format(contracts.DateLayout)
	}
}

// ParseNumber accepts JSON numbers and numeric strings such as
// "$1,234.50", "12.5%" or "1.2B".
func ParseNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return parseNumericString(n)
	}
	return 0, fmt.Errorf("unsupported number type %T", v)
}

var magnitudeSuffix = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

func parseNumericString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return 0, fmt.Errorf("empty number")
	}

	mult := 1.0
	if m, ok := magnitudeSuffix[strings.ToUpper(s[len(s)-1:])[0]]; ok {
		mult = m
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f * mult, nil
}
