package scoring

import (
	"regexp"
	"strings"

	"github.com/wonny/scamdunk/internal/contracts"
)

var (
	unsolicitedPhrases = []string{
		"you've been selected", "you have been selected", "exclusive invitation",
		"came across your profile", "join our group", "private group", "vip group",
	}
	promisedReturnPhrases = []string{
		"guaranteed", "guarantee", "huge gains", "massive returns", "risk-free", "risk free",
		"can't lose", "cannot lose", "double your money", "to the moon", "next big thing",
	}
	urgencyPhrases = []string{
		"act now", "get in now", "don't miss", "dont miss", "limited time", "today only",
		"last chance", "before it's too late", "hurry", "about to explode", "breakout alert",
	}
	secrecyPhrases = []string{
		"insider", "inside info", "secret stock", "confidential", "don't tell",
		"keep this quiet", "before the announcement", "before the news",
	}

	// A quoted move ("fell 3%", "2x leverage") is not a claim. Figures of
	// 100% or 5x and above are, as is any figure tied to claim wording.
	returnClaimPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([1-9]\d{2,}|\d{1,3}(,\d{3})+)(\.\d+)?\s?%`),
		regexp.MustCompile(`(?i)\b([5-9]|[1-9]\d+)(\.\d+)?x\b`),
		regexp.MustCompile(`(?i)\b(make|earn|returns?|gains?|profits?|upside)\b[^.!?\n]{0,24}\b\d+(\.\d+)?\s?(%|x\b)`),
		regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s?(%|x)\s+(returns?|gains?|profits?|upside|from here)\b`),
	}
)

func claimsSpecificReturn(text string) bool {
	for _, re := range returnClaimPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// BehavioralCodes returns behavioral signal codes from explicit flags and
// from keyword matches in the pitch text.
func BehavioralCodes(flags contracts.ScanFlags, pitchText string) []string {
	text := strings.ToLower(pitchText)
	var codes []string

	if flags.Unsolicited || containsAny(text, unsolicitedPhrases) {
		codes = append(codes, CodeUnsolicited)
	}
	if flags.PromisesHighReturns || containsAny(text, promisedReturnPhrases) {
		codes = append(codes, CodePromisedReturns)
	}
	if flags.UrgencyPressure || containsAny(text, urgencyPhrases) {
		codes = append(codes, CodeUrgency)
	}
	if flags.SecrecyInsideInfo || containsAny(text, secrecyPhrases) {
		codes = append(codes, CodeSecrecy)
	}
	if claimsSpecificReturn(pitchText) {
		codes = append(codes, CodeSpecificReturnClaim)
	}
	return codes
}

// InferFlags fills context flags implied by the pitch text. Explicit flags
// are never cleared.
func InferFlags(flags contracts.ScanFlags, pitchText string) contracts.ScanFlags {
	for _, code := range BehavioralCodes(flags, pitchText) {
		switch code {
		case CodeUnsolicited:
			flags.Unsolicited = true
		case CodePromisedReturns:
			flags.PromisesHighReturns = true
		case CodeUrgency:
			flags.UrgencyPressure = true
		case CodeSecrecy:
			flags.SecrecyInsideInfo = true
		}
	}
	return flags
}
