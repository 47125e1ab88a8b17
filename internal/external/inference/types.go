package inference

import "github.com/wonny/scamdunk/internal/contracts"

// AnalysisRequest is the POST /analyze payload
type AnalysisRequest struct {
	Ticker              string                        `json:"ticker"`
	AssetType           string                        `json:"asset_type"`
	UseLiveData         bool                          `json:"use_live_data"`
	Days                int                           `json:"days"`
	Unsolicited         bool                          `json:"unsolicited"`
	PromisesHighReturns bool                          `json:"promises_high_returns"`
	UrgencyPressure     bool                          `json:"urgency_pressure"`
	SecrecyInsideInfo   bool                          `json:"secrecy_inside_info"`
	PitchText           string                        `json:"pitch_text,omitempty"`
	Fundamentals        *contracts.CryptoFundamentals `json:"fundamentals,omitempty"`
	SecurityData        *contracts.CryptoSecurity     `json:"security_data,omitempty"`
}

// SignalDetail is one signal reported by the backend
type SignalDetail struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// AnalysisResponse is the POST /analyze response body
type AnalysisResponse struct {
	Ticker            string         `json:"ticker"`
	AssetType         string         `json:"asset_type"`
	RiskLevel         string         `json:"risk_level"`
	RiskProbability   *float64       `json:"risk_probability"`
	RiskScore         int            `json:"risk_score"`
	RFProbability     *float64       `json:"rf_probability"`
	LSTMProbability   *float64       `json:"lstm_probability"`
	AnomalyScore      float64        `json:"anomaly_score"`
	Signals           []SignalDetail `json:"signals"`
	Explanations      []string       `json:"explanations"`
	SECFlagged        bool           `json:"sec_flagged"`
	IsOTC             bool           `json:"is_otc"`
	DataAvailable     bool           `json:"data_available"`
	AnalysisTimestamp string         `json:"analysis_timestamp"`
}

// HealthResponse is the GET /health response body
type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	RFReady      bool   `json:"rf_ready"`
	LSTMReady    bool   `json:"lstm_ready"`
	Version      string `json:"version"`
}

// Healthy reports whether the backend can serve /analyze
func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy" && h.ModelsLoaded
}

// NewAnalysisRequest builds the payload for req. Crypto requests carry the
// fundamentals and security blocks when present.
func NewAnalysisRequest(req *contracts.ScanRequest, useLiveData bool, days int) AnalysisRequest {
	out := AnalysisRequest{
		Ticker:              req.Symbol(),
		AssetType:           string(req.AssetType),
		UseLiveData:         useLiveData,
		Days:                days,
		Unsolicited:         req.Flags.Unsolicited,
		PromisesHighReturns: req.Flags.PromisesHighReturns,
		UrgencyPressure:     req.Flags.UrgencyPressure,
		SecrecyInsideInfo:   req.Flags.SecrecyInsideInfo,
		PitchText:           req.PitchText,
	}
	if out.AssetType == "" {
		out.AssetType = string(contracts.AssetStock)
	}
	if req.AssetType == contracts.AssetCrypto && req.Crypto != nil {
		fund := req.Crypto.Fundamentals
		sec := req.Crypto.Security
		out.Fundamentals = &fund
		out.SecurityData = &sec
	}
	return out
}
