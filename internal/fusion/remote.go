package fusion

import (
	"context"
	"math"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/external/inference"
)

// Analyzer is the part of the inference client used by Remote
type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, req *contracts.ScanRequest) (*inference.AnalysisResponse, error)
}

// Remote scores through the inference service
type Remote struct {
	client Analyzer
	scale  int
	now    func() time.Time
}

// NewRemote creates a remote strategy. scale maps risk_probability onto
// the integer score range.
func NewRemote(client Analyzer, scale int) *Remote {
	return &Remote{client: client, scale: scale, now: time.Now}
}

// Name implements Strategy
func (r *Remote) Name() string { return "remote" }

// Enabled reports whether a backend is configured
func (r *Remote) Enabled() bool {
	return r.client != nil && r.client.Enabled()
}

// Score implements Strategy
func (r *Remote) Score(ctx context.Context, req *contracts.ScanRequest) (*contracts.RiskResponse, error) {
	if !r.Enabled() {
		return nil, inference.ErrNotConfigured
	}

	resp, err := r.client.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.toRiskResponse(req, resp), nil
}

// toRiskResponse maps a validated analysis onto the output contract.
// Signals are deduplicated by code; the score comes from the probability,
// not from the signal weights.
func (r *Remote) toRiskResponse(req *contracts.ScanRequest, resp *inference.AnalysisResponse) *contracts.RiskResponse {
	set := contracts.NewSignalSet()
	for _, s := range resp.Signals {
		set.Add(contracts.Signal{
			Code:        s.Code,
			Category:    contracts.Category(s.Category),
			Weight:      s.Weight,
			Description: s.Description,
		})
	}

	p := *resp.RiskProbability
	level, _ := contracts.ParseRiskLevel(resp.RiskLevel)

	result := contracts.ScoringResult{
		Signals:      set.Signals(),
		TotalScore:   int(math.Round(p * float64(r.scale))),
		RiskLevel:    level,
		IsLegitimate: level == contracts.RiskLow && set.Len() == 0,
	}

	out := contracts.NewRiskResponse(req, result, r.now())
	out.UsedAIBackend = true
	out.AIScores = &contracts.AIScores{
		RiskProbability: p,
		RFProbability:   deref(resp.RFProbability),
		LSTMProbability: deref(resp.LSTMProbability),
		AnomalyScore:    resp.AnomalyScore,
	}
	out.Explanations = resp.Explanations
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
