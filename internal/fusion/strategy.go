package fusion

import (
	"context"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/scoring"
)

// Strategy produces a RiskResponse for one scan request
type Strategy interface {
	Name() string
	Score(ctx context.Context, req *contracts.ScanRequest) (*contracts.RiskResponse, error)
}

// Deterministic scores with the rule catalog and classifier. It never fails.
type Deterministic struct {
	scorer *scoring.Scorer
	now    func() time.Time
}

// NewDeterministic wraps scorer as a Strategy
func NewDeterministic(scorer *scoring.Scorer) *Deterministic {
	return &Deterministic{scorer: scorer, now: time.Now}
}

// Name implements Strategy
func (d *Deterministic) Name() string { return "deterministic" }

// Score implements Strategy
func (d *Deterministic) Score(_ context.Context, req *contracts.ScanRequest) (*contracts.RiskResponse, error) {
	return contracts.NewRiskResponse(req, d.scorer.Score(req), d.now()), nil
}
