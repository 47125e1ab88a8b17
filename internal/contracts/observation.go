package contracts

import "strings"

// Observation is one symbol's daily result after upstream filtering
type Observation struct {
	Symbol                 string            `json:"symbol" validate:"required,max=16"`
	Name                   string            `json:"name"`
	Sector                 string            `json:"sector"`
	Industry               string            `json:"industry"`
	RiskLevel              RiskLevel         `json:"riskLevel" validate:"required,oneof=LOW MEDIUM HIGH INSUFFICIENT"`
	RiskScore              int               `json:"riskScore" validate:"gte=0"`
	PromotionScore         int               `json:"promotionScore" validate:"gte=0"`
	Price                  float64           `json:"price" validate:"gte=0"`
	Signals                []string          `json:"signals"`
	Platforms              []string          `json:"platforms"`
	PromoterAccounts       []PromoterAccount `json:"promoterAccounts" validate:"dive"`
	CoordinationIndicators []string          `json:"coordinationIndicators"`
	LegitimateNews         bool              `json:"legitimateNews"`
	Headlines              []string          `json:"headlines,omitempty"`
}

// NormalizedSymbol returns the upper-cased, trimmed symbol
func (o *Observation) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(o.Symbol))
}

// DailyBatch is the ingestion payload for one tracking run
type DailyBatch struct {
	Date         string        `json:"date" validate:"required,datetime=2006-01-02"`
	Observations []Observation `json:"observations" validate:"dive"`
}
