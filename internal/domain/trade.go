package domain

import (
	"strings"
	"time"
)

// TradeStatus tracks the trade lifecycle inside the registry.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "open"
	TradeStatusClosed TradeStatus = "closed"
)

// Trade is the tracked state for one signal sequence: created by an entry
// alert, trailed by trailing-stop alerts, and closed by an exit alert. The
// registry owns every Trade; callers always receive copies.
type Trade struct {
	ID           string      `json:"id"`
	Identifier   string      `json:"identifier"`
	Symbol       string      `json:"symbol"`
	Strategy     string      `json:"strategy,omitempty"`
	Side         Side        `json:"side"`
	EntryPrice   float64     `json:"entry_price"`
	TrailingStop float64     `json:"trailing_stop,omitempty"`
	TakeProfit   float64     `json:"take_profit,omitempty"`
	StopLoss     float64     `json:"stop_loss,omitempty"`
	Timeframe    string      `json:"timeframe,omitempty"`
	Status       TradeStatus `json:"status"`
	CloseReason  CloseReason `json:"close_reason,omitempty"`
	ExitPrice    float64     `json:"exit_price,omitempty"`
	OpenedAt     time.Time   `json:"opened_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	ClosedAt     *time.Time  `json:"closed_at,omitempty"`
}

// IsOpen reports whether the trade is still tracked as open.
func (t Trade) IsOpen() bool {
	return t.Status == TradeStatusOpen
}

// TradeIdentifier builds the registry key for a symbol and optional strategy.
// Entry and exit alerts must agree on both fields to correlate.
func TradeIdentifier(symbol, strategy string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strat := strings.TrimSpace(strategy); strat != "" {
		return s + ":" + strat
	}
	return s
}

// ProfitPercent returns the signed profit of closing this trade at exit,
// relative to the entry price. Sell-side trades profit when price falls.
func (t Trade) ProfitPercent(exit float64) float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	pct := (exit - t.EntryPrice) / t.EntryPrice * 100
	if t.Side == SideSell {
		pct = -pct
	}
	return pct
}
