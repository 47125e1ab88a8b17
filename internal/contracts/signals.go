package contracts

// Category groups signals by the kind of evidence they represent
type Category string

const (
	CategoryStructural   Category = "STRUCTURAL"
	CategoryPattern      Category = "PATTERN"
	CategoryAlert        Category = "ALERT"
	CategoryBehavioral   Category = "BEHAVIORAL"
	CategoryContract     Category = "CONTRACT"     // crypto only
	CategoryLiquidity    Category = "LIQUIDITY"    // crypto only
	CategoryDistribution Category = "DISTRIBUTION" // crypto only
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryStructural, CategoryPattern, CategoryAlert, CategoryBehavioral,
		CategoryContract, CategoryLiquidity, CategoryDistribution:
		return true
	}
	return false
}

// Signal is one detected risk indicator
// ⭐ SSOT: catalog entries are immutable, evaluations copy them
type Signal struct {
	Code        string   `json:"code"`
	Category    Category `json:"category"`
	Weight      int      `json:"weight"`
	Description string   `json:"description"`
}

// RiskLevel is the classifier output
type RiskLevel string

const (
	RiskLow          RiskLevel = "LOW"
	RiskMedium       RiskLevel = "MEDIUM"
	RiskHigh         RiskLevel = "HIGH"
	RiskInsufficient RiskLevel = "INSUFFICIENT"
)

// ParseRiskLevel accepts the three scored levels plus INSUFFICIENT
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskInsufficient:
		return RiskLevel(s), true
	}
	return "", false
}

// SignalSet is an insertion-ordered set of signals keyed by code.
// Adding a code that is already present is a no-op, so a code never
// contributes to TotalScore more than once.
type SignalSet struct {
	signals []Signal
	index   map[string]struct{}
}

// NewSignalSet creates an empty set, optionally seeded with signals
func NewSignalSet(signals ...Signal) *SignalSet {
	s := &SignalSet{index: make(map[string]struct{})}
	for _, sig := range signals {
		s.Add(sig)
	}
	return s
}

// Add inserts sig if its code is new. Returns true when inserted.
func (s *SignalSet) Add(sig Signal) bool {
	if _, ok := s.index[sig.Code]; ok {
		return false
	}
	s.index[sig.Code] = struct{}{}
	s.signals = append(s.signals, sig)
	return true
}

// Has reports whether a signal with code is present
func (s *SignalSet) Has(code string) bool {
	_, ok := s.index[code]
	return ok
}

// Len returns the number of unique signals
func (s *SignalSet) Len() int {
	return len(s.signals)
}

// Signals returns a copy of the signals in insertion order
func (s *SignalSet) Signals() []Signal {
	out := make([]Signal, len(s.signals))
	copy(out, s.signals)
	return out
}

// Codes returns the signal codes in insertion order
func (s *SignalSet) Codes() []string {
	out := make([]string, len(s.signals))
	for i, sig := range s.signals {
		out[i] = sig.Code
	}
	return out
}

// TotalScore sums the weights of the unique codes
func (s *SignalSet) TotalScore() int {
	total := 0
	for _, sig := range s.signals {
		total += sig.Weight
	}
	return total
}

// ScoringResult is the transient output of one evaluation
type ScoringResult struct {
	Signals      []Signal  `json:"signals"`
	TotalScore   int       `json:"totalScore"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	IsLegitimate bool      `json:"isLegitimate"`
}

// HasSignal reports whether the result contains code
func (r *ScoringResult) HasSignal(code string) bool {
	for _, sig := range r.Signals {
		if sig.Code == code {
			return true
		}
	}
	return false
}
