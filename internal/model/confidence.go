package model

import "math"

// Tier is the qualitative band of a confidence score.
type Tier int

const (
	// TierLow means the recommendation should be reviewed by a person.
	TierLow Tier = iota

	// TierModerate covers percentages from 60 to 79.
	TierModerate

	// TierHigh covers percentages of 80 and above.
	TierHigh
)

// Tier thresholds, compared against the rounded percentage.
const (
	HighThreshold     = 80
	ModerateThreshold = 60
)

// String returns the label shown next to the percentage.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "High Confidence"
	case TierModerate:
		return "Moderate Confidence"
	default:
		return "Low Confidence - Review Required"
	}
}

// Confidence is the service's certainty in its package recommendation.
type Confidence struct {
	// Raw is the score exactly as received, nominally in [0,1]. Missing scores are 0.
	Raw float64

	// Percent is Raw*100 rounded half away from zero and clamped to [0,100].
	Percent int

	// Tier is derived from Percent, never from Raw, so the displayed number
	// and the displayed band always agree.
	Tier Tier
}

// NewConfidence derives the display percentage and tier from a raw score.
func NewConfidence(raw float64) Confidence {
	p := Percent(raw)
	return Confidence{Raw: raw, Percent: p, Tier: TierFor(p)}
}

// Percent converts a raw score to a whole percentage in [0,100].
// NaN is treated as 0.
func Percent(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	p := math.Round(raw * 100)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(p)
	}
}

// TierFor returns the tier for an already rounded percentage.
func TierFor(percent int) Tier {
	switch {
	case percent >= HighThreshold:
		return TierHigh
	case percent >= ModerateThreshold:
		return TierModerate
	default:
		return TierLow
	}
}
