// Package drift computes drift and stability metrics over an ordered
// emotion history. The analyzer is a pure function over its input snapshot
// and is safe to call concurrently.
package drift

import (
	"math"
	"time"

	"github.com/soulsync-ai/soulsync/internal/store"
	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

// DefaultThreshold is the minimum ordinal distance between consecutive
// emotions that counts as a drift event. 2 is moderate: e.g. calm->sad or
// happy->angry.
const DefaultThreshold = 2

// Event is one consecutive transition whose magnitude met the threshold.
type Event struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	TsFrom    time.Time `json:"ts_from"`
	TsTo      time.Time `json:"ts_to"`
	Magnitude int       `json:"magnitude"`
}

// Metrics is the aggregate result of analyzing a history window.
// AvgDrift is rounded to 3 decimal places, Stability and AvgConfidence
// to 2, so output is stable and reproducible.
type Metrics struct {
	AvgDrift      float64 `json:"avg_drift"`
	Stability     float64 `json:"stability"`
	DriftEvents   []Event `json:"drift_events"`
	AvgConfidence float64 `json:"avg_confidence"`
	Entries       int     `json:"entries"`
}

// Analyzer flags transitions at or above its threshold.
type Analyzer struct {
	threshold int
}

// New creates an Analyzer with the given threshold. A non-positive
// threshold falls back to DefaultThreshold.
func New(threshold int) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{threshold: threshold}
}

// FromRecent reverses a newest-first slice (as returned by the store) into
// the oldest-first order Analyze expects. The input is not modified.
func FromRecent(events []store.EmotionEvent) []store.EmotionEvent {
	out := make([]store.EmotionEvent, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

// Analyze computes drift metrics over an oldest-first event sequence.
// An empty history is by convention maximally stable. Unrecognized emotion
// labels are treated as neutral; confidences are clamped to [0, 100].
func (a *Analyzer) Analyze(events []store.EmotionEvent) Metrics {
	if len(events) == 0 {
		return Metrics{
			AvgDrift:      0.0,
			Stability:     100.0,
			DriftEvents:   []Event{},
			AvgConfidence: 0.0,
			Entries:       0,
		}
	}

	var sumDrift int
	var confidenceSum float64
	driftEvents := []Event{}

	prevIdx := taxonomy.IndexOf(taxonomy.Normalize(events[0].Emotion))
	confidenceSum += clampConfidence(events[0].Confidence)

	for i := 1; i < len(events); i++ {
		curIdx := taxonomy.IndexOf(taxonomy.Normalize(events[i].Emotion))
		mag := curIdx - prevIdx
		if mag < 0 {
			mag = -mag
		}
		sumDrift += mag
		if mag >= a.threshold {
			driftEvents = append(driftEvents, Event{
				From:      events[i-1].Emotion,
				To:        events[i].Emotion,
				TsFrom:    events[i-1].Timestamp,
				TsTo:      events[i].Timestamp,
				Magnitude: mag,
			})
		}
		prevIdx = curIdx
		confidenceSum += clampConfidence(events[i].Confidence)
	}

	var avgDrift float64
	if len(events) > 1 {
		avgDrift = float64(sumDrift) / float64(len(events)-1)
	}

	// Linear mapping: zero drift -> 100, average drift at the maximum
	// ordinal distance -> 0.
	maxPossible := float64(taxonomy.MaxDistance())
	stability := 100.0 * (1.0 - avgDrift/maxPossible)
	if stability < 0 {
		stability = 0
	}
	if stability > 100 {
		stability = 100
	}

	return Metrics{
		AvgDrift:      round(avgDrift, 3),
		Stability:     round(stability, 2),
		DriftEvents:   driftEvents,
		AvgConfidence: round(confidenceSum/float64(len(events)), 2),
		Entries:       len(events),
	}
}

// clampConfidence treats out-of-range or unparseable confidences as safe
// defaults so malformed stored data degrades instead of skewing the mean.
func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
