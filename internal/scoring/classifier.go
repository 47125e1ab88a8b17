package scoring

import (
	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

// Classifier maps a signal set and score to a risk level
type Classifier struct {
	high   int
	medium int
}

// NewClassifier creates a classifier from policy thresholds
func NewClassifier(cfg policy.Classifier) Classifier {
	return Classifier{high: cfg.HighThreshold, medium: cfg.MediumThreshold}
}

// Level applies the thresholds in order: missing data, alert override,
// then score bands.
func (c Classifier) Level(totalScore int, dataAvailable, hasAlertHit bool) contracts.RiskLevel {
	switch {
	case !dataAvailable:
		return contracts.RiskInsufficient
	case hasAlertHit:
		return contracts.RiskHigh
	case totalScore >= c.high:
		return contracts.RiskHigh
	case totalScore >= c.medium:
		return contracts.RiskMedium
	default:
		return contracts.RiskLow
	}
}

// Classify builds a ScoringResult
func (c Classifier) Classify(signals []contracts.Signal, totalScore int, dataAvailable, hasAlertHit bool) contracts.ScoringResult {
	level := c.Level(totalScore, dataAvailable, hasAlertHit)
	if signals == nil {
		signals = []contracts.Signal{}
	}
	return contracts.ScoringResult{
		Signals:      signals,
		TotalScore:   totalScore,
		RiskLevel:    level,
		IsLegitimate: level == contracts.RiskLow && len(signals) == 0,
	}
}
