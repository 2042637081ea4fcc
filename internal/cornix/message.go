package cornix

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

// separator is the visual divider Cornix tolerates between message sections.
const separator = "--- ⌁ ---"

// Formatter renders alerts and trade state into the message text Cornix
// parses out of the Telegram chat. Exchange and Leverage are display labels
// taken from configuration.
type Formatter struct {
	Exchange string
	Leverage string
}

// NewFormatter returns a Formatter with the given display labels.
func NewFormatter(exchange, leverage string) Formatter {
	return Formatter{Exchange: exchange, Leverage: leverage}
}

// EntryMessage renders the multi-line entry signal for a freshly opened
// trade. Cornix reads the symbol, entry price, and the take-profit and
// stop-loss levels from this block.
func (f Formatter) EntryMessage(trade domain.Trade) string {
	var b strings.Builder

	action := "BUY 💹"
	if trade.Side == domain.SideSell {
		action = "SELL 🩸"
	}

	fmt.Fprintf(&b, "Action: %s\n", action)
	fmt.Fprintf(&b, "Symbol: #%s\n", trade.Symbol)
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Exchange: %s\n", f.Exchange)
	fmt.Fprintf(&b, "Timeframe: %s\n", trade.Timeframe)
	fmt.Fprintf(&b, "Leverage: %s\n", f.Leverage)
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "☑️ Entry Price: %s\n", FormatPrice(trade.EntryPrice))
	fmt.Fprintf(&b, "☑️ Take Profit: %s\n", FormatPrice(trade.TakeProfit))
	fmt.Fprintf(&b, "☑️ Stop Loss: %s\n", FormatPrice(trade.StopLoss))
	b.WriteString(separator + "\n")
	b.WriteString("⚠️ Wait for Close Signal!")

	return b.String()
}

// TrailingMessage renders the one-line stop update for a trailed trade. The
// reported level is whatever the registry stored after applying the update,
// never the alert's raw price.
func (f Formatter) TrailingMessage(trade domain.Trade) string {
	return fmt.Sprintf("#%s Sl %s", trade.Symbol, FormatPrice(trade.TrailingStop))
}

// ExitMessage renders the close signal for a trade. The first line is the
// bare Cornix close instruction; when the prior trade state is known a
// summary with the signed profit percentage follows.
func (f Formatter) ExitMessage(trade domain.Trade, exitPrice float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%s Tp %s", trade.Symbol, FormatPrice(exitPrice))

	if trade.EntryPrice > 0 {
		pct := Round2(trade.ProfitPercent(exitPrice))
		b.WriteString("\n" + separator + "\n")
		fmt.Fprintf(&b, "✅ Closed (%s)\n", closeReasonLabel(trade.CloseReason))
		fmt.Fprintf(&b, "Entry: %s → Exit: %s (%+.2f%%)",
			FormatPrice(trade.EntryPrice), FormatPrice(exitPrice), pct)
	}

	return b.String()
}

// UntrackedExitMessage renders the bare close line for an exit alert whose
// identifier has no tracked trade. Only the alert's own price is available.
func (f Formatter) UntrackedExitMessage(symbol string, exitPrice float64) string {
	return fmt.Sprintf("#%s Tp %s", symbol, FormatPrice(exitPrice))
}

// closeReasonLabel maps a close reason onto its human-readable message text.
func closeReasonLabel(reason domain.CloseReason) string {
	switch reason {
	case domain.CloseTarget:
		return "target hit"
	case domain.CloseStop:
		return "stop hit"
	default:
		return "manual close"
	}
}

// FormatPrice renders a price without trailing zeros, e.g. 50000 rather
// than 50000.000000.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round2 rounds to 2 decimal places, for the profit percentage.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
