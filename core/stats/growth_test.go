package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 7, 0, 100},
		{"doubled", 200, 100, 100},
		{"half up", 150, 100, 50},
		{"declined", 50, 100, -50},
		{"to zero", 0, 40, -100},
		{"unchanged", 25, 25, 0},
		{"rounded to two decimals", 1, 3, -66.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Growth(tt.current, tt.previous))
		})
	}
}

func TestMonthWindows(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
	cur, prev := MonthWindows(now)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), cur.From)
	assert.Equal(t, now, cur.To)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), prev.From)
	assert.Equal(t, cur.From, prev.To)
}

func TestMonthWindowsAcrossYearBoundary(t *testing.T) {
	now := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	cur, prev := MonthWindows(now)

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), cur.From)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), prev.From)
}

func TestWindowContainsHalfOpen(t *testing.T) {
	w := Window{
		From: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, w.Contains(w.From), "lower bound is inclusive")
	assert.False(t, w.Contains(w.To), "upper bound is exclusive")
	assert.True(t, w.Contains(w.From.Add(time.Hour)))
	assert.False(t, w.Contains(w.From.Add(-time.Nanosecond)))
}

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	w := TrailingWindow(now, 7*24*time.Hour)
	assert.Equal(t, now.AddDate(0, 0, -7), w.From)
	assert.Equal(t, now, w.To)
}
