package schemes

import (
	"strconv"
	"strings"

	"github.com/wonny/scamdunk/internal/contracts"
)

// SchemeID derives the stable id for a scheme on symbol detected on date:
// "SCH-" + SYMBOL + "-" + base36(unix seconds of date at 00:00 UTC).
func SchemeID(symbol, date string) (string, error) {
	t, err := contracts.ParseDate(date)
	if err != nil {
		return "", err
	}
	return "SCH-" + strings.ToUpper(strings.TrimSpace(symbol)) + "-" + strconv.FormatInt(t.Unix(), 36), nil
}
