package contracts

import "time"

// PromoterRisk is the promoter tier
type PromoterRisk string

const (
	PromoterLow            PromoterRisk = "LOW"
	PromoterMedium         PromoterRisk = "MEDIUM"
	PromoterHigh           PromoterRisk = "HIGH"
	PromoterSerialOffender PromoterRisk = "SERIAL_OFFENDER"
)

// StockPromotion links a promoter to one scheme it promoted
type StockPromotion struct {
	Symbol       string       `json:"symbol"`
	SchemeID     string       `json:"schemeId"`
	SchemeName   string       `json:"schemeName"`
	SchemeStatus SchemeStatus `json:"schemeStatus"`
	FirstSeen    string       `json:"firstSeen"`
	LastSeen     string       `json:"lastSeen"`
	PostCount    int          `json:"postCount"`
}

// CoPromoter is one edge of the co-promotion graph
type CoPromoter struct {
	PromoterID   string   `json:"promoterId"`
	Identifier   string   `json:"identifier"`
	Platform     string   `json:"platform"`
	SharedStocks []string `json:"sharedStocks"`
}

// PromoterEntry aggregates one account across all schemes
type PromoterEntry struct {
	PromoterID     string           `json:"promoterId"`
	Identifier     string           `json:"identifier"`
	Platform       string           `json:"platform"`
	FirstSeen      string           `json:"firstSeen"`
	LastSeen       string           `json:"lastSeen"`
	TotalPosts     int              `json:"totalPosts"`
	Confidence     Confidence       `json:"confidence"`
	StocksPromoted []StockPromotion `json:"stocksPromoted"`
	CoPromoters    []CoPromoter     `json:"coPromoters"`
	RiskLevel      PromoterRisk     `json:"riskLevel"`
	IsActive       bool             `json:"isActive"`
}

// Symbols returns the distinct symbols this promoter pushed, in order
func (p *PromoterEntry) Symbols() []string {
	seen := make(map[string]struct{}, len(p.StocksPromoted))
	out := make([]string, 0, len(p.StocksPromoted))
	for _, sp := range p.StocksPromoted {
		if _, ok := seen[sp.Symbol]; ok {
			continue
		}
		seen[sp.Symbol] = struct{}{}
		out = append(out, sp.Symbol)
	}
	return out
}

// PromoterDatabase is fully derived from a SchemeDatabase.
// LastUpdated mirrors the source database so a cached copy can be
// checked for staleness.
type PromoterDatabase struct {
	LastUpdated     time.Time       `json:"lastUpdated"`
	TotalPromoters  int             `json:"totalPromoters"`
	ActivePromoters int             `json:"activePromoters"`
	SerialOffenders int             `json:"serialOffenders"`
	Promoters       []PromoterEntry `json:"promoters"`
}

// Find returns the promoter with id, or nil
func (db *PromoterDatabase) Find(id string) *PromoterEntry {
	for i := range db.Promoters {
		if db.Promoters[i].PromoterID == id {
			return &db.Promoters[i]
		}
	}
	return nil
}
