package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Action identifies what an inbound alert asks the relay to do.
type Action string

const (
	ActionEntry     Action = "entry"
	ActionExit      Action = "exit"
	ActionPumpTrail Action = "pump_trail"
	ActionDumpTrail Action = "dump_trail"
	ActionTrail     Action = "trail"
)

// Side indicates the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// CloseReason explains why a trade was closed.
type CloseReason string

const (
	CloseTarget CloseReason = "target"
	CloseStop   CloseReason = "stop"
	CloseManual CloseReason = "manual"
)

// Alert is one parsed trading-signal event from the charting platform. It
// lives only for the duration of the request that carried it.
type Alert struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Strategy   string      `json:"strategy,omitempty"`
	Action     Action      `json:"action"`
	Side       Side        `json:"side,omitempty"`
	Price      float64     `json:"price,omitempty"`
	Stop       float64     `json:"stop,omitempty"`
	Target     float64     `json:"target,omitempty"`
	High       float64     `json:"high,omitempty"`
	Low        float64     `json:"low,omitempty"`
	Close      float64     `json:"close,omitempty"`
	Timeframe  string      `json:"timeframe,omitempty"`
	Reason     CloseReason `json:"reason,omitempty"`
	ReceivedAt time.Time   `json:"received_at"`
}

// symbolPattern matches normalized ticker symbols. The length cap keeps the
// formatted message within Telegram limits and rejects garbage payloads.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9._:-]{1,24}$`)

// NormalizeSymbol upper-cases and trims a raw ticker string and verifies it
// against the accepted symbol pattern.
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: symbol is required", ErrValidation)
	}
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: symbol %q is not a valid ticker", ErrValidation, raw)
	}
	return s, nil
}

// ParseAction maps an inbound action string onto the Action enum. The
// charting platform's templates are loose about naming, so the common
// aliases are accepted.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "entry", "open":
		return ActionEntry, nil
	case "exit", "close":
		return ActionExit, nil
	case "pump_trail", "pump-trail", "pump_trailing":
		return ActionPumpTrail, nil
	case "dump_trail", "dump-trail", "dump_trailing":
		return ActionDumpTrail, nil
	case "trail", "trailing_stop", "trailing-stop":
		return ActionTrail, nil
	case "":
		return "", fmt.Errorf("%w: action is required", ErrValidation)
	default:
		return "", fmt.Errorf("%w: unrecognized action %q", ErrValidation, raw)
	}
}

// ParseSide maps an inbound side string onto the Side enum. An empty value
// defaults to buy, matching the charting platform's long-biased templates.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "buy", "long":
		return SideBuy, nil
	case "sell", "short":
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: unrecognized side %q", ErrValidation, raw)
	}
}

// ParseCloseReason maps an inbound exit reason onto the CloseReason enum.
// An empty value defaults to a manual close.
func ParseCloseReason(raw string) (CloseReason, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "manual":
		return CloseManual, nil
	case "target", "tp", "take_profit":
		return CloseTarget, nil
	case "stop", "sl", "stop_loss":
		return CloseStop, nil
	default:
		return "", fmt.Errorf("%w: unrecognized close reason %q", ErrValidation, raw)
	}
}

// Validate applies the cross-field rules that depend on the alert's action.
// Field-level normalization (symbol, enums) is expected to have happened
// already via the Parse helpers.
func (a Alert) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrValidation)
	}
	switch a.Action {
	case ActionEntry:
		if a.Price <= 0 {
			return fmt.Errorf("%w: entry alert requires a positive price, got %v", ErrValidation, a.Price)
		}
	case ActionExit, ActionPumpTrail, ActionDumpTrail, ActionTrail:
		// Price is optional: trailing alerts can rely on candle context and
		// exit alerts can fall back to the tracked trade's own levels.
	default:
		return fmt.Errorf("%w: unrecognized action %q", ErrValidation, a.Action)
	}
	for name, v := range map[string]float64{
		"price": a.Price, "stop": a.Stop, "target": a.Target,
		"high": a.High, "low": a.Low, "close": a.Close,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrValidation, name, v)
		}
	}
	return nil
}

// Identifier returns the registry key this alert correlates with.
func (a Alert) Identifier() string {
	return TradeIdentifier(a.Symbol, a.Strategy)
}

// IsTrailing reports whether the action updates a trailing stop.
func (a Action) IsTrailing() bool {
	return a == ActionPumpTrail || a == ActionDumpTrail || a == ActionTrail
}
