package scoring

import (
	"math"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/policy"
)

// ReturnPct returns the percent change of the last close versus the close
// lookback points earlier. ok is false when the history is too short.
func ReturnPct(history []contracts.PricePoint, lookback int) (float64, bool) {
	n := len(history)
	if lookback <= 0 || n <= lookback {
		return 0, false
	}
	prev := history[n-1-lookback].Close
	if prev <= 0 {
		return 0, false
	}
	return (history[n-1].Close - prev) / prev * 100, true
}

// VolumeRatio returns the last volume divided by the mean of up to window
// preceding volumes.
func VolumeRatio(history []contracts.PricePoint, window int) (float64, bool) {
	n := len(history)
	if n < 2 || window <= 0 {
		return 0, false
	}
	start := n - 1 - window
	if start < 0 {
		start = 0
	}
	var sum float64
	count := 0
	for _, p := range history[start : n-1] {
		sum += p.Volume
		count++
	}
	if count == 0 || sum <= 0 {
		return 0, false
	}
	return history[n-1].Volume / (sum / float64(count)), true
}

// SpikeThenDrop reports whether, within the last cfg.LookbackPoints closes,
// price rose at least MinRisePct into a peak and then fell at least
// MinDropPct from that peak to the latest close.
func SpikeThenDrop(history []contracts.PricePoint, cfg policy.SpikeThenDrop) bool {
	window := history
	if len(window) > cfg.LookbackPoints {
		window = window[len(window)-cfg.LookbackPoints:]
	}
	if len(window) < 3 {
		return false
	}

	peakIdx := 0
	for i, p := range window {
		if p.Close > window[peakIdx].Close {
			peakIdx = i
		}
	}
	// The peak must have a trough before it and a decline after it
	if peakIdx == 0 || peakIdx == len(window)-1 {
		return false
	}

	trough := math.Inf(1)
	for _, p := range window[:peakIdx] {
		if p.Close > 0 && p.Close < trough {
			trough = p.Close
		}
	}
	if math.IsInf(trough, 1) {
		return false
	}

	peak := window[peakIdx].Close
	last := window[len(window)-1].Close
	rise := (peak - trough) / trough * 100
	drop := (peak - last) / peak * 100

	return rise >= cfg.MinRisePct && drop >= cfg.MinDropPct
}

// MaxDailyMovePct returns the largest absolute close-to-close move
func MaxDailyMovePct(history []contracts.PricePoint) float64 {
	var maxMove float64
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Close
		if prev <= 0 {
			continue
		}
		move := math.Abs(history[i].Close-prev) / prev * 100
		if move > maxMove {
			maxMove = move
		}
	}
	return maxMove
}

// derived resolves the 7-day return and volume ratio, preferring values
// supplied by the caller over those derived from price history.
func derived(md *contracts.MarketData, lookback, volWindow int) (ret float64, hasRet bool, vol float64, hasVol bool) {
	if md.SevenDayReturnPct != nil {
		ret, hasRet = *md.SevenDayReturnPct, true
	} else {
		ret, hasRet = ReturnPct(md.PriceHistory, lookback)
	}
	if md.VolumeRatioVsAvg != nil {
		vol, hasVol = *md.VolumeRatioVsAvg, true
	} else {
		vol, hasVol = VolumeRatio(md.PriceHistory, volWindow)
	}
	return ret, hasRet, vol, hasVol
}
