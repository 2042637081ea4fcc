package cornix

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

func TestDynamicOffset(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name   string
		profit float64
		want   float64
	}{
		{name: "below anchor clamps to low offset", profit: 0, want: 0.1},
		{name: "at low anchor", profit: 0.5, want: 0.1},
		{name: "at high anchor", profit: 10, want: 0.2},
		{name: "midway", profit: 3, want: 0.12631578947368421},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, calc.Dynamic(tt.profit), 1e-12)
		})
	}
}

func TestLongPumpExit(t *testing.T) {
	calc := NewCalculator()

	level, ok := calc.LongPumpExit(100, 103, 101)
	require.True(t, ok)
	require.InDelta(t, 101.12757895, level, 1e-8)
}

func TestLongPumpExitBelowActivation(t *testing.T) {
	calc := NewCalculator()

	// High never cleared the 1% activation band above entry.
	_, ok := calc.LongPumpExit(100, 100.5, 100.4)
	require.False(t, ok)
}

func TestLongPumpExitZeroEntry(t *testing.T) {
	calc := NewCalculator()

	_, ok := calc.LongPumpExit(0, 103, 101)
	require.False(t, ok)
}

func TestShortDumpExit(t *testing.T) {
	calc := NewCalculator()

	level, ok := calc.ShortDumpExit(100, 97, 99)
	require.True(t, ok)
	require.InDelta(t, 98.87494737, level, 1e-8)
}

func TestShortDumpExitAboveActivation(t *testing.T) {
	calc := NewCalculator()

	_, ok := calc.ShortDumpExit(100, 99.5, 99.6)
	require.False(t, ok)
}

func TestRegularLongExit(t *testing.T) {
	calc := NewCalculator()

	level, ok := calc.RegularLongExit(100, 102, 100.9)
	require.True(t, ok)
	require.InDelta(t, 101.01683158, level, 1e-8)
}

func TestRegularShortExit(t *testing.T) {
	calc := NewCalculator()

	level, ok := calc.RegularShortExit(100, 98, 99.05)
	require.True(t, ok)
	require.InDelta(t, 98.98525263, level, 1e-8)
}

func TestStopCandidateVariantSelection(t *testing.T) {
	calc := NewCalculator()
	long := domain.Trade{Side: domain.SideBuy, EntryPrice: 100}
	short := domain.Trade{Side: domain.SideSell, EntryPrice: 100}

	pump, ok := calc.StopCandidate(domain.ActionPumpTrail, long, 103, 0, 101)
	require.True(t, ok)
	require.InDelta(t, 101.12757895, pump, 1e-8)

	dump, ok := calc.StopCandidate(domain.ActionDumpTrail, short, 0, 97, 99)
	require.True(t, ok)
	require.InDelta(t, 98.87494737, dump, 1e-8)

	// A pump alert against a short falls back to the regular short variant.
	mismatch, ok := calc.StopCandidate(domain.ActionPumpTrail, short, 103, 98, 99.05)
	require.True(t, ok)
	require.InDelta(t, 98.98525263, mismatch, 1e-8)

	reg, ok := calc.StopCandidate(domain.ActionTrail, long, 102, 0, 100.9)
	require.True(t, ok)
	require.InDelta(t, 101.01683158, reg, 1e-8)
}

func TestTakeProfitStopLoss(t *testing.T) {
	require.InDelta(t, 105, TakeProfit(100, domain.SideBuy, 5), 1e-8)
	require.InDelta(t, 95, TakeProfit(100, domain.SideSell, 5), 1e-8)
	require.InDelta(t, 97, StopLoss(100, domain.SideBuy, 3), 1e-8)
	require.InDelta(t, 103, StopLoss(100, domain.SideSell, 3), 1e-8)
}

func TestCalculatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	calc := NewCalculator()

	properties.Property("dynamic offset never drops below the low offset", prop.ForAll(
		func(profit float64) bool {
			return calc.Dynamic(profit) >= calc.LowOffset
		},
		gen.Float64Range(-50, 500),
	))

	properties.Property("dynamic offset grows with profit", prop.ForAll(
		func(a, b float64) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			return calc.Dynamic(hi) >= calc.Dynamic(lo)
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.Property("pump exit stays above the activation level when it fires", prop.ForAll(
		func(entry, pump float64) bool {
			high := entry * (1 + pump/100)
			level, ok := calc.LongPumpExit(entry, high, entry)
			if !ok {
				return true
			}
			return level > entry*(1+calc.PumpActivation/100)
		},
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0, 50),
	))

	properties.Property("dump exit stays below the activation level when it fires", prop.ForAll(
		func(entry, dump float64) bool {
			low := entry * (1 - dump/100)
			level, ok := calc.ShortDumpExit(entry, low, entry)
			if !ok {
				return true
			}
			return level < entry*(1-calc.PumpActivation/100)
		},
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0, 50),
	))

	properties.Property("round8 is idempotent", prop.ForAll(
		func(v float64) bool {
			return Round8(Round8(v)) == Round8(v)
		},
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t)
}
