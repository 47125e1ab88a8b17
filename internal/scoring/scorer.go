package scoring

import (
	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

// Scorer is the deterministic scorer plus classifier pair.
// It is read-only after construction and safe for concurrent use.
type Scorer struct {
	stock      *StockScorer
	crypto     *CryptoScorer
	classifier Classifier
}

// New creates a Scorer from policy
func New(p *policy.Policy) *Scorer {
	return &Scorer{
		stock:      NewStockScorer(p.Stock),
		crypto:     NewCryptoScorer(p.Crypto),
		classifier: NewClassifier(p.Classifier),
	}
}

// Signals evaluates req with the variant matching its asset type
func (s *Scorer) Signals(req *contracts.ScanRequest) *contracts.SignalSet {
	if req.AssetType == contracts.AssetCrypto {
		return s.crypto.Evaluate(req)
	}
	return s.stock.Evaluate(req)
}

// Score evaluates and classifies req. It never fails.
func (s *Scorer) Score(req *contracts.ScanRequest) contracts.ScoringResult {
	set := s.Signals(req)
	return s.classifier.Classify(set.Signals(), set.TotalScore(), req.Market.DataAvailable, req.AlertHit)
}

// Classifier returns the classifier used by this scorer
func (s *Scorer) Classifier() Classifier {
	return s.classifier
}

// IsOTC reports whether exchange is an OTC venue under the stock policy
func (s *Scorer) IsOTC(exchange string) bool {
	return s.stock.IsOTC(exchange)
}
