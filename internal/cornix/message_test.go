package cornix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

func TestEntryMessageBuy(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{
		Symbol:     "BTCUSDT",
		Side:       domain.SideBuy,
		EntryPrice: 50000,
		TakeProfit: 52500,
		StopLoss:   48500,
		Timeframe:  "15m",
	}

	want := `Action: BUY 💹
Symbol: #BTCUSDT
--- ⌁ ---
Exchange: Binance Futures
Timeframe: 15m
Leverage: Isolated (20X)
--- ⌁ ---
☑️ Entry Price: 50000
☑️ Take Profit: 52500
☑️ Stop Loss: 48500
--- ⌁ ---
⚠️ Wait for Close Signal!`

	assert.Equal(t, want, f.EntryMessage(trade))
}

func TestEntryMessageSell(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{
		Symbol:     "ETHUSDT",
		Side:       domain.SideSell,
		EntryPrice: 3000.5,
		TakeProfit: 2850.475,
		StopLoss:   3090.515,
		Timeframe:  "1h",
	}

	msg := f.EntryMessage(trade)
	assert.Contains(t, msg, "Action: SELL 🩸")
	assert.Contains(t, msg, "Symbol: #ETHUSDT")
	assert.Contains(t, msg, "☑️ Entry Price: 3000.5")
	assert.Contains(t, msg, "☑️ Take Profit: 2850.475")
	assert.Contains(t, msg, "Timeframe: 1h")
}

func TestTrailingMessage(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{Symbol: "BTCUSDT", TrailingStop: 50375.5}

	assert.Equal(t, "#BTCUSDT Sl 50375.5", f.TrailingMessage(trade))
}

func TestExitMessageWithProfit(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{
		Symbol:      "BTCUSDT",
		Side:        domain.SideBuy,
		EntryPrice:  50000,
		CloseReason: domain.CloseTarget,
	}

	want := `#BTCUSDT Tp 51234.5
--- ⌁ ---
✅ Closed (target hit)
Entry: 50000 → Exit: 51234.5 (+2.47%)`

	assert.Equal(t, want, f.ExitMessage(trade, 51234.5))
}

func TestExitMessageSellSideProfitSign(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{
		Symbol:      "ETHUSDT",
		Side:        domain.SideSell,
		EntryPrice:  3000,
		CloseReason: domain.CloseStop,
	}

	// Price went up on a short: a loss, rendered with a minus sign.
	msg := f.ExitMessage(trade, 3060)
	assert.Contains(t, msg, "✅ Closed (stop hit)")
	assert.Contains(t, msg, "(-2.00%)")
}

func TestExitMessageManualReason(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")
	trade := domain.Trade{Symbol: "BTCUSDT", Side: domain.SideBuy, EntryPrice: 50000}

	msg := f.ExitMessage(trade, 49500)
	assert.Contains(t, msg, "✅ Closed (manual close)")
	assert.Contains(t, msg, "(-1.00%)")
}

func TestUntrackedExitMessage(t *testing.T) {
	f := NewFormatter("Binance Futures", "Isolated (20X)")

	msg := f.UntrackedExitMessage("BTCUSDT", 51000)
	assert.Equal(t, "#BTCUSDT Tp 51000", msg)
	require.NotContains(t, msg, "Closed")
}

func TestFormatPriceNoTrailingZeros(t *testing.T) {
	assert.Equal(t, "50000", FormatPrice(50000))
	assert.Equal(t, "0.00012345", FormatPrice(0.00012345))
	assert.Equal(t, "50375.5", FormatPrice(50375.5))
}
