package scoring

import "strings"

var (
	catalystKeywords = []string{
		"earnings", "revenue", "profit", "quarterly results", "annual results",
		"fda approval", "fda clearance", "clinical trial", "phase 3", "phase 2",
		"merger", "acquisition", "acquired", "buyout", "takeover",
		"partnership", "contract", "agreement",
		"dividend", "buyback", "repurchase", "stock split",
		"ipo", "secondary offering",
		"upgrade", "price target",
		"patent", "regulatory approval",
		"product launch", "new product",
	}
	promotionalKeywords = []string{
		"hot stock", "huge gains", "next big thing", "massive returns",
		"get in now", "to the moon", "guaranteed", "secret stock",
		"penny stock pick", "stock alert", "breakout alert",
		"undervalued gem", "1000%", "500%", "explode",
	}
)

// NewsAssessment summarizes keyword matches over a set of headlines
type NewsAssessment struct {
	Catalysts   []string `json:"catalysts"`
	Promotional []string `json:"promotional"`
}

// Legitimate reports whether the headlines point to a real catalyst and
// carry no promotional language.
func (a NewsAssessment) Legitimate() bool {
	return len(a.Catalysts) > 0 && len(a.Promotional) == 0
}

// AssessHeadlines matches headlines against catalyst and promotional
// keyword lists. Each keyword is reported once.
func AssessHeadlines(headlines []string) NewsAssessment {
	var a NewsAssessment
	seen := make(map[string]struct{})
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, k := range catalystKeywords {
			if _, ok := seen[k]; !ok && strings.Contains(lower, k) {
				seen[k] = struct{}{}
				a.Catalysts = append(a.Catalysts, k)
			}
		}
		for _, k := range promotionalKeywords {
			if _, ok := seen[k]; !ok && strings.Contains(lower, k) {
				seen[k] = struct{}{}
				a.Promotional = append(a.Promotional, k)
			}
		}
	}
	return a
}
