package stats

import "time"

// Window is a half-open time interval: From inclusive, To exclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// MonthWindows derives the current and previous month windows from now:
// current is [first of this month, now), previous is [first of last month,
// first of this month). Boundaries are computed from the caller's clock so
// the aggregation stays testable.
func MonthWindows(now time.Time) (current, previous Window) {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	current = Window{From: thisMonth, To: now}
	previous = Window{From: lastMonth, To: thisMonth}
	return current, previous
}

// TrailingWindow is the [now-d, now) window used for top-N rollups.
func TrailingWindow(now time.Time, d time.Duration) Window {
	return Window{From: now.Add(-d), To: now}
}
