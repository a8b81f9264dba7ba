package metric

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedAdjuster(t *testing.T) (*Adjuster, time.Time) {
	t.Helper()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return NewAdjusterWithClock(clockwork.NewFakeClockAt(now)), now
}

func TestAdjust_GoodCurrent(t *testing.T) {
	a, now := fixedAdjuster(t)

	got := a.Adjust(Float64(10), ConfidenceGood, now.AddDate(0, -3, 0))
	require.NotNil(t, got.AdjustedValue)
	assert.Equal(t, 10.0, *got.AdjustedValue)
	assert.Equal(t, 1.0, got.ConfidenceMultiplier)
	assert.Equal(t, 1.0, got.RecencyMultiplier)
}

func TestAdjust_RecencySteps(t *testing.T) {
	a, now := fixedAdjuster(t)

	tests := []struct {
		name       string
		monthsAgo  int
		multiplier float64
	}{
		{"3mo", 3, 1.0},
		{"9mo", 9, 0.9},
		{"18mo", 18, 0.7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Adjust(Float64(100), ConfidenceGood, now.AddDate(0, -tc.monthsAgo, 0))
			assert.Equal(t, tc.multiplier, got.RecencyMultiplier)
			require.NotNil(t, got.AdjustedValue)
			assert.InDelta(t, 100*tc.multiplier, *got.AdjustedValue, 1e-9)
		})
	}
}

func TestAdjust_ConfidenceMultipliers(t *testing.T) {
	a, now := fixedAdjuster(t)

	tests := []struct {
		conf Confidence
		want float64
	}{
		{ConfidenceGood, 1.0},
		{ConfidencePartial, 0.8},
		{ConfidenceInterpolated, 0.6},
		{ConfidenceMissing, 0.0},
	}
	for _, tc := range tests {
		t.Run(string(tc.conf), func(t *testing.T) {
			got := a.Adjust(Float64(50), tc.conf, now)
			assert.Equal(t, tc.want, got.ConfidenceMultiplier)
			require.NotNil(t, got.AdjustedValue)
			assert.InDelta(t, 50*tc.want, *got.AdjustedValue, 1e-9)
		})
	}
}

func TestAdjust_NilRawValue(t *testing.T) {
	a, now := fixedAdjuster(t)

	got := a.Adjust(nil, ConfidenceGood, now)
	assert.Nil(t, got.RawValue)
	assert.Nil(t, got.AdjustedValue)
}

func TestAdjust_ZeroTimestampIsCurrent(t *testing.T) {
	a, _ := fixedAdjuster(t)

	got := a.Adjust(Float64(42), ConfidenceGood, time.Time{})
	assert.Equal(t, 1.0, got.RecencyMultiplier)
}

func TestEnvelope_MissingNotUsable(t *testing.T) {
	env := Missing("test_source", "boom")
	assert.False(t, env.Usable())
	assert.Nil(t, env.Value)
	assert.Equal(t, "boom", env.Err)
}

func TestEnvelope_Partial(t *testing.T) {
	env := Partial("test_source", map[string]int{"a": 1}, "3 of 6 categories failed")
	assert.True(t, env.Usable())
	assert.Equal(t, ConfidencePartial, env.Confidence)
	assert.NotEmpty(t, env.Note)
}
