package model

import (
	"math"
	"testing"
)

// TestNewConfidence tests rounding, clamping and tier selection.
func TestNewConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         float64
		wantPercent int
		wantTier    Tier
	}{
		{name: "0.8 is 80 and High", raw: 0.8, wantPercent: 80, wantTier: TierHigh},
		{name: "0.79999 rounds up to 80 and High", raw: 0.79999, wantPercent: 80, wantTier: TierHigh},
		{name: "0.794 rounds down to 79 and Moderate", raw: 0.794, wantPercent: 79, wantTier: TierModerate},
		{name: "0.796 rounds up to 80 and High", raw: 0.796, wantPercent: 80, wantTier: TierHigh},
		{name: "0.6 is 60 and Moderate", raw: 0.6, wantPercent: 60, wantTier: TierModerate},
		{name: "0.594 is 59 and Low", raw: 0.594, wantPercent: 59, wantTier: TierLow},
		{name: "0.005 rounds half away from zero", raw: 0.005, wantPercent: 1, wantTier: TierLow},
		{name: "missing score is 0 and Low", raw: 0, wantPercent: 0, wantTier: TierLow},
		{name: "score above 1 is clamped to 100", raw: 1.7, wantPercent: 100, wantTier: TierHigh},
		{name: "negative score is clamped to 0", raw: -0.2, wantPercent: 0, wantTier: TierLow},
		{name: "NaN is treated as 0", raw: math.NaN(), wantPercent: 0, wantTier: TierLow},
		{name: "positive infinity is clamped to 100", raw: math.Inf(1), wantPercent: 100, wantTier: TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfidence(tt.raw)
			if c.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", c.Percent, tt.wantPercent)
			}
			if c.Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", c.Tier, tt.wantTier)
			}
		})
	}

	t.Run("raw score is kept unchanged", func(t *testing.T) {
		t.Parallel()
		if c := NewConfidence(0.794); c.Raw != 0.794 {
			t.Errorf("Raw = %v, want 0.794", c.Raw)
		}
	})
}

// TestTierString tests the tier labels.
func TestTierString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tier     Tier
		expected string
	}{
		{TierHigh, "High Confidence"},
		{TierModerate, "Moderate Confidence"},
		{TierLow, "Low Confidence - Review Required"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.tier.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.tier.String(), tc.expected)
			}
		})
	}
}
