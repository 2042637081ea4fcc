// Package service holds the relay orchestration: registry mutation, message
// formatting, outbound delivery, and event publication for each inbound
// alert. Registry mutations are authoritative; delivery is best-effort and
// never rolls a mutation back.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/cornixrelay/internal/cornix"
	"github.com/alanyoungcy/cornixrelay/internal/domain"
	"github.com/alanyoungcy/cornixrelay/internal/metrics"
)

// Result classifies what the relay did with an alert.
type Result string

const (
	// ResultSent means the alert mutated the registry (where applicable) and
	// a message was dispatched.
	ResultSent Result = "sent"
	// ResultIgnored means the alert was dropped without mutation or send,
	// e.g. a trailing alert for an untracked identifier.
	ResultIgnored Result = "ignored"
	// ResultUntracked means an exit alert for an unknown identifier still
	// produced a close message, without any registry mutation.
	ResultUntracked Result = "untracked"
)

// Outcome describes how one alert was handled. Trade is the post-mutation
// registry state when a mutation happened; Message is the dispatched text.
type Outcome struct {
	Result  Result
	Trade   domain.Trade
	Message string
}

// Messenger is the outbound delivery dependency. Implementations wrap one or
// more chat sinks and report a domain.ErrDelivery on failure.
type Messenger interface {
	Send(ctx context.Context, text string) error
}

// Config carries the formatting defaults the service applies to entry alerts.
type Config struct {
	TakeProfitPct    float64
	StopLossPct      float64
	DefaultTimeframe string
}

// RelayService processes parsed alerts end to end.
type RelayService struct {
	registry  domain.TradeRegistry
	messenger Messenger
	formatter cornix.Formatter
	calc      cornix.Calculator
	bus       domain.EventBus
	cfg       Config
	logger    *slog.Logger
}

// NewRelayService creates a RelayService with all required dependencies.
func NewRelayService(
	registry domain.TradeRegistry,
	messenger Messenger,
	formatter cornix.Formatter,
	calc cornix.Calculator,
	bus domain.EventBus,
	cfg Config,
	logger *slog.Logger,
) *RelayService {
	return &RelayService{
		registry:  registry,
		messenger: messenger,
		formatter: formatter,
		calc:      calc,
		bus:       bus,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "relay")),
	}
}

// Process handles one validated alert. The returned error is non-nil only
// for delivery failures (domain.ErrDelivery) and registry faults; in the
// delivery case the Outcome still reflects the committed registry mutation.
func (s *RelayService) Process(ctx context.Context, alert domain.Alert) (Outcome, error) {
	metrics.AlertsTotal.WithLabelValues(string(alert.Action)).Inc()
	s.publish(domain.Event{
		Kind:       domain.EventAlertAccepted,
		AlertID:    alert.ID,
		Identifier: alert.Identifier(),
		Symbol:     alert.Symbol,
		Action:     alert.Action,
	})

	switch {
	case alert.Action == domain.ActionEntry:
		return s.processEntry(ctx, alert)
	case alert.Action.IsTrailing():
		return s.processTrailing(ctx, alert)
	case alert.Action == domain.ActionExit:
		return s.processExit(ctx, alert)
	default:
		return Outcome{}, fmt.Errorf("%w: unsupported action %q", domain.ErrValidation, alert.Action)
	}
}

// processEntry opens (or replaces) the trade for the alert's identifier and
// announces it. Explicit target/stop levels on the alert win over the
// configured percentage defaults.
func (s *RelayService) processEntry(ctx context.Context, alert domain.Alert) (Outcome, error) {
	takeProfit := alert.Target
	if takeProfit <= 0 {
		takeProfit = cornix.TakeProfit(alert.Price, alert.Side, s.cfg.TakeProfitPct)
	}
	stopLoss := alert.Stop
	if stopLoss <= 0 {
		stopLoss = cornix.StopLoss(alert.Price, alert.Side, s.cfg.StopLossPct)
	}
	timeframe := alert.Timeframe
	if timeframe == "" {
		timeframe = s.cfg.DefaultTimeframe
	}

	trade, err := s.registry.UpsertOnEntry(ctx, domain.Trade{
		Identifier: alert.Identifier(),
		Symbol:     alert.Symbol,
		Strategy:   alert.Strategy,
		Side:       alert.Side,
		EntryPrice: alert.Price,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		Timeframe:  timeframe,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("relay: open trade: %w", err)
	}

	s.logger.InfoContext(ctx, "trade opened",
		slog.String("identifier", trade.Identifier),
		slog.String("side", string(trade.Side)),
		slog.Float64("entry", trade.EntryPrice),
		slog.Float64("take_profit", trade.TakeProfit),
		slog.Float64("stop_loss", trade.StopLoss),
	)
	s.publish(domain.Event{
		Kind:       domain.EventTradeOpened,
		AlertID:    alert.ID,
		TradeID:    trade.ID,
		Identifier: trade.Identifier,
		Symbol:     trade.Symbol,
		Action:     alert.Action,
	})

	message := s.formatter.EntryMessage(trade)
	err = s.deliver(ctx, alert, trade, message)
	return Outcome{Result: ResultSent, Trade: trade, Message: message}, err
}

// processTrailing updates the trailing stop for a tracked trade. The stop
// candidate comes from the trailing calculator when the alert carries candle
// context, with the alert's explicit stop and price as fallbacks. An
// untracked identifier is a no-op.
func (s *RelayService) processTrailing(ctx context.Context, alert domain.Alert) (Outcome, error) {
	trade, err := s.registry.Get(ctx, alert.Identifier())
	if err != nil {
		if errors.Is(err, domain.ErrTradeNotFound) {
			return s.ignore(ctx, alert, "no open trade for trailing alert"), nil
		}
		return Outcome{}, fmt.Errorf("relay: lookup trade: %w", err)
	}

	candidate, ok := s.calc.StopCandidate(alert.Action, trade, alert.High, alert.Low, alert.Close)
	if !ok {
		switch {
		case alert.Stop > 0:
			candidate = alert.Stop
		case alert.Price > 0:
			candidate = alert.Price
		default:
			return s.ignore(ctx, alert, "trailing alert produced no stop level"), nil
		}
	}

	updated, err := s.registry.UpdateTrailingStop(ctx, trade.Identifier, candidate)
	if err != nil {
		return Outcome{}, fmt.Errorf("relay: update trailing stop: %w", err)
	}

	s.logger.InfoContext(ctx, "trailing stop updated",
		slog.String("identifier", updated.Identifier),
		slog.Float64("candidate", candidate),
		slog.Float64("stop", updated.TrailingStop),
	)
	s.publish(domain.Event{
		Kind:       domain.EventTradeTrailed,
		AlertID:    alert.ID,
		TradeID:    updated.ID,
		Identifier: updated.Identifier,
		Symbol:     updated.Symbol,
		Action:     alert.Action,
	})

	// The message always reports the stored post-update stop, which may be
	// the unchanged old level when the candidate would have loosened it.
	message := s.formatter.TrailingMessage(updated)
	err = s.deliver(ctx, alert, updated, message)
	return Outcome{Result: ResultSent, Trade: updated, Message: message}, err
}

// processExit closes a tracked trade, or relays a bare close line for an
// untracked identifier when the alert carries its own price.
func (s *RelayService) processExit(ctx context.Context, alert domain.Alert) (Outcome, error) {
	trade, err := s.registry.Get(ctx, alert.Identifier())
	if err != nil {
		if !errors.Is(err, domain.ErrTradeNotFound) {
			return Outcome{}, fmt.Errorf("relay: lookup trade: %w", err)
		}
		if alert.Price <= 0 {
			return s.ignore(ctx, alert, "exit alert for untracked trade without price"), nil
		}
		message := s.formatter.UntrackedExitMessage(alert.Symbol, alert.Price)
		s.logger.WarnContext(ctx, "exit alert for untracked trade, relaying close line",
			slog.String("identifier", alert.Identifier()),
		)
		err = s.deliver(ctx, alert, domain.Trade{}, message)
		return Outcome{Result: ResultUntracked, Message: message}, err
	}

	exitPrice := alert.Price
	switch {
	case exitPrice > 0:
	case trade.TrailingStop > 0:
		exitPrice = trade.TrailingStop
	default:
		exitPrice = trade.EntryPrice
	}

	closed, err := s.registry.Close(ctx, trade.Identifier, alert.Reason, exitPrice)
	if err != nil {
		return Outcome{}, fmt.Errorf("relay: close trade: %w", err)
	}

	s.logger.InfoContext(ctx, "trade closed",
		slog.String("identifier", closed.Identifier),
		slog.String("reason", string(closed.CloseReason)),
		slog.Float64("entry", closed.EntryPrice),
		slog.Float64("exit", closed.ExitPrice),
		slog.Float64("profit_pct", cornix.Round2(closed.ProfitPercent(exitPrice))),
	)
	s.publish(domain.Event{
		Kind:       domain.EventTradeClosed,
		AlertID:    alert.ID,
		TradeID:    closed.ID,
		Identifier: closed.Identifier,
		Symbol:     closed.Symbol,
		Action:     alert.Action,
	})

	message := s.formatter.ExitMessage(closed, exitPrice)
	err = s.deliver(ctx, alert, closed, message)
	return Outcome{Result: ResultSent, Trade: closed, Message: message}, err
}

// deliver dispatches the message and publishes the delivery event. The
// registry mutation has already committed by the time this runs; a failure
// here surfaces to the caller but changes nothing.
func (s *RelayService) deliver(ctx context.Context, alert domain.Alert, trade domain.Trade, message string) error {
	if err := s.messenger.Send(ctx, message); err != nil {
		s.publish(domain.Event{
			Kind:       domain.EventDeliveryFailed,
			AlertID:    alert.ID,
			TradeID:    trade.ID,
			Identifier: alert.Identifier(),
			Symbol:     alert.Symbol,
			Action:     alert.Action,
			Message:    message,
			Error:      err.Error(),
		})
		return err
	}

	s.publish(domain.Event{
		Kind:       domain.EventDeliverySent,
		AlertID:    alert.ID,
		TradeID:    trade.ID,
		Identifier: alert.Identifier(),
		Symbol:     alert.Symbol,
		Action:     alert.Action,
		Message:    message,
	})
	return nil
}

// ignore logs and publishes a soft drop for alerts the relay chose not to
// act on.
func (s *RelayService) ignore(ctx context.Context, alert domain.Alert, why string) Outcome {
	metrics.AlertsRejectedTotal.WithLabelValues("untracked").Inc()
	s.logger.WarnContext(ctx, "alert ignored",
		slog.String("identifier", alert.Identifier()),
		slog.String("action", string(alert.Action)),
		slog.String("reason", why),
	)
	s.publish(domain.Event{
		Kind:       domain.EventAlertIgnored,
		AlertID:    alert.ID,
		Identifier: alert.Identifier(),
		Symbol:     alert.Symbol,
		Action:     alert.Action,
	})
	return Outcome{Result: ResultIgnored}
}

// publish stamps and emits an event when a bus is configured.
func (s *RelayService) publish(evt domain.Event) {
	if s.bus == nil {
		return
	}
	evt.At = time.Now().UTC()
	s.bus.Publish(evt)
}
