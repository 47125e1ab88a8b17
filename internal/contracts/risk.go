package contracts

import "time"

// AIScores are the remote model's sub-scores, passed through for display.
// They never feed TotalScore.
type AIScores struct {
	RiskProbability float64 `json:"riskProbability"`
	RFProbability   float64 `json:"rfProbability"`
	LSTMProbability float64 `json:"lstmProbability"`
	AnomalyScore    float64 `json:"anomalyScore"`
}

// RiskResponse is the output contract returned to callers
// ⭐ SSOT: every scan path (remote or deterministic) ends in this type
type RiskResponse struct {
	Ticker         string    `json:"ticker"`
	AssetType      AssetType `json:"assetType"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	TotalScore     int       `json:"totalScore"`
	Signals        []Signal  `json:"signals"`
	IsLegitimate   bool      `json:"isLegitimate"`
	UsedAIBackend  bool      `json:"usedAIBackend"`
	AIScores       *AIScores `json:"aiScores,omitempty"`
	Explanations   []string  `json:"explanations,omitempty"`
	FallbackReason string    `json:"fallbackReason,omitempty"`
	ScoredAt       time.Time `json:"scoredAt"`
}

// NewRiskResponse wraps a deterministic scoring result
func NewRiskResponse(req *ScanRequest, result ScoringResult, now time.Time) *RiskResponse {
	signals := result.Signals
	if signals == nil {
		signals = []Signal{}
	}
	return &RiskResponse{
		Ticker:       req.Symbol(),
		AssetType:    req.AssetType,
		RiskLevel:    result.RiskLevel,
		TotalScore:   result.TotalScore,
		Signals:      signals,
		IsLegitimate: result.IsLegitimate,
		ScoredAt:     now.UTC(),
	}
}

// ScoringResult strips the response back to the scoring fields
func (r *RiskResponse) ScoringResult() ScoringResult {
	return ScoringResult{
		Signals:      r.Signals,
		TotalScore:   r.TotalScore,
		RiskLevel:    r.RiskLevel,
		IsLegitimate: r.IsLegitimate,
	}
}
