// Package cornix renders parsed alerts into the message syntax the Cornix
// bot reads out of Telegram chats, and carries the trailing-stop arithmetic
// those messages report. Everything in this package is pure: no network, no
// storage, no clocks.
package cornix

import (
	"math"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

// Default calculator parameters, in percent of entry price. The offsets
// anchor the linear interpolation of Dynamic between 0.5% and 10% profit.
const (
	DefaultActivation     = 0.9
	DefaultPumpActivation = 1.0
	DefaultLowOffset      = 0.1
	DefaultHighOffset     = 0.2
)

// Calculator derives trailing-stop exit levels from a trade's entry price
// and the candle context carried by a trailing alert. The pump variants use
// a wider activation band than the regular ones.
type Calculator struct {
	Activation     float64 // regular trailing activation threshold
	PumpActivation float64 // pump/dump trailing activation threshold
	LowOffset      float64 // trailing offset at 0.5% profit
	HighOffset     float64 // trailing offset at 10% profit
}

// NewCalculator returns a Calculator with the default parameters.
func NewCalculator() Calculator {
	return Calculator{
		Activation:     DefaultActivation,
		PumpActivation: DefaultPumpActivation,
		LowOffset:      DefaultLowOffset,
		HighOffset:     DefaultHighOffset,
	}
}

// Dynamic returns the trailing offset for the given profit percent. It
// interpolates linearly from LowOffset at 0.5% profit to HighOffset at 10%
// profit and never drops below LowOffset.
func (c Calculator) Dynamic(profitPct float64) float64 {
	ts := (c.HighOffset-c.LowOffset)/9.5*(profitPct-0.5) + c.LowOffset
	return math.Max(ts, c.LowOffset)
}

// LongPumpExit computes the pump trailing-stop level for a buy-side trade.
// The second return is false when the activation conditions have not fired,
// in which case no level should be reported.
func (c Calculator) LongPumpExit(entry, high, closePrice float64) (float64, bool) {
	if entry <= 0 {
		return 0, false
	}
	profit := math.Abs((high - entry) / entry * 100)
	ts := c.Dynamic(profit)

	activation := entry * (1 + c.PumpActivation/100)
	trigger := activation * (1 + ts/100)
	closeLevel := closePrice * (1 + ts/100)

	if high > trigger && high > activation && high >= closeLevel {
		return Round8(activation * (1 + ts/100)), true
	}
	return 0, false
}

// ShortDumpExit computes the dump trailing-stop level for a sell-side trade.
func (c Calculator) ShortDumpExit(entry, low, closePrice float64) (float64, bool) {
	if entry <= 0 {
		return 0, false
	}
	profit := math.Abs((low - entry) / entry * 100)
	ts := c.Dynamic(profit)

	activation := entry * (1 - c.PumpActivation/100)
	trigger := activation * (1 - ts/100)
	closeLevel := closePrice * (1 - ts/100)

	if low < trigger && low < activation && low <= closeLevel {
		return Round8(activation * (1 - ts/100)), true
	}
	return 0, false
}

// RegularLongExit computes the regular trailing-stop level for a buy-side
// trade, using the tighter Activation threshold.
func (c Calculator) RegularLongExit(entry, high, closePrice float64) (float64, bool) {
	if entry <= 0 {
		return 0, false
	}
	profit := math.Abs((high - entry) / entry * 100)
	ts := c.Dynamic(profit)

	activation := entry * (1 + c.Activation/100)
	trigger := activation * (1 + ts/100)
	closeLevel := closePrice * (1 + ts/100)

	if high >= closeLevel && high >= trigger {
		return Round8(activation * (1 + ts/100)), true
	}
	return 0, false
}

// RegularShortExit computes the regular trailing-stop level for a sell-side
// trade.
func (c Calculator) RegularShortExit(entry, low, closePrice float64) (float64, bool) {
	if entry <= 0 {
		return 0, false
	}
	profit := math.Abs((low - entry) / entry * 100)
	ts := c.Dynamic(profit)

	activation := entry * (1 - c.Activation/100)
	trigger := activation * (1 - ts/100)
	closeLevel := closePrice * (1 - ts/100)

	if low <= closeLevel && low <= trigger {
		return Round8(activation * (1 - ts/100)), true
	}
	return 0, false
}

// StopCandidate picks the calculator variant for the given trailing action
// and trade side, and returns the computed level. Pump and dump variants
// apply only to their matching side; a mismatched or generic trailing alert
// falls through to the regular variant for the trade's side.
func (c Calculator) StopCandidate(action domain.Action, trade domain.Trade, high, low, closePrice float64) (float64, bool) {
	switch {
	case action == domain.ActionPumpTrail && trade.Side == domain.SideBuy:
		return c.LongPumpExit(trade.EntryPrice, high, closePrice)
	case action == domain.ActionDumpTrail && trade.Side == domain.SideSell:
		return c.ShortDumpExit(trade.EntryPrice, low, closePrice)
	case trade.Side == domain.SideSell:
		return c.RegularShortExit(trade.EntryPrice, low, closePrice)
	default:
		return c.RegularLongExit(trade.EntryPrice, high, closePrice)
	}
}

// TakeProfit returns the default take-profit level: pct percent above entry
// for buys, below for sells.
func TakeProfit(entry float64, side domain.Side, pct float64) float64 {
	if side == domain.SideSell {
		return Round8(entry * (1 - pct/100))
	}
	return Round8(entry * (1 + pct/100))
}

// StopLoss returns the default stop-loss level: pct percent below entry for
// buys, above for sells.
func StopLoss(entry float64, side domain.Side, pct float64) float64 {
	if side == domain.SideSell {
		return Round8(entry * (1 + pct/100))
	}
	return Round8(entry * (1 - pct/100))
}

// Round8 rounds a price to 8 decimal places, the precision Cornix accepts.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
