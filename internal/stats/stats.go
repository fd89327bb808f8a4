// Package stats contains statistics calculations for history reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/codetype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM, and accuracy from raw counters.
func SessionMetrics(correct, incorrect int, seconds float64) (wpm, cpm, accuracy float64) {
	if seconds <= 0 {
		return 0, 0, 0
	}
	minutes := seconds / 60.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}

// Aggregate summarizes a set of history entries.
type Aggregate struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	TotalTime   float64
}

// Summarize folds history entries into an aggregate.
func Summarize(entries []model.HistoryEntry) Aggregate {
	agg := Aggregate{Sessions: len(entries)}
	if len(entries) == 0 {
		return agg
	}
	for _, e := range entries {
		agg.AvgWPM += e.WPM
		agg.AvgAccuracy += e.Accuracy
		agg.TotalTime += e.Seconds
		if e.WPM > agg.BestWPM {
			agg.BestWPM = e.WPM
		}
	}
	count := float64(len(entries))
	agg.AvgWPM /= count
	agg.AvgAccuracy /= count
	return agg
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
