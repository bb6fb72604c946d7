package stats

import "math"

// Growth returns the percentage change between two period counts, rounded
// to two decimal places. A period that starts from zero reports 100 when
// anything happened and 0 when nothing did, so the result is always finite.
func Growth(current, previous int64) float64 {
	if previous == 0 && current > 0 {
		return 100
	}
	if previous == 0 && current == 0 {
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*100) / 100
}
