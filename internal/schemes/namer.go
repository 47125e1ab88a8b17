package schemes

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wonny/scamdunk/internal/contracts"
)

// Name builds "<SYMBOL> <Sector|Industry|Penny Stock> <Pattern> Scheme"
func Name(rec *contracts.SchemeRecord) string {
	label := strings.TrimSpace(rec.Sector)
	if label == "" {
		label = strings.TrimSpace(rec.Industry)
	}
	if label == "" {
		label = "Penny Stock"
	}

	pattern := "Price Surge"
	switch {
	case rec.Status == contracts.StatusPumpAndDumpEnded:
		pattern = "Pump-and-Dump"
	case len(rec.PromoterAccounts) > 0 || len(rec.PromotionPlatforms) > 0:
		pattern = "Promotion"
	}

	return fmt.Sprintf("%s %s %s Scheme", rec.Symbol, label, pattern)
}

// Slug lower-cases name and joins alphanumeric runs with single dashes
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
