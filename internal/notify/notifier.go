// Package notify delivers formatted Cornix messages to the configured chat
// sinks. Telegram is the primary sink; a Discord webhook can be added as a
// secondary one. Delivery is best-effort: failures are reported, never
// retried.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
	"github.com/alanyoungcy/cornixrelay/internal/metrics"
)

// Sender is the interface each delivery sink must implement.
type Sender interface {
	// Send delivers the message text to the sink.
	Send(ctx context.Context, text string) error
	// Name returns the sink identifier (e.g. "telegram").
	Name() string
}

// Notifier fans a message out to every configured sender sequentially. One
// failing sender does not prevent delivery to the remaining ones.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that delivers to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Send dispatches the text to all senders. Errors from individual senders
// are collected into a single domain.ErrDelivery so callers can map the
// outcome with errors.Is.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if len(n.senders) == 0 {
		return fmt.Errorf("%w: no senders configured", domain.ErrDelivery)
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, text); err != nil {
			metrics.DeliveriesTotal.WithLabelValues(s.Name(), "error").Inc()
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			metrics.DeliveriesTotal.WithLabelValues(s.Name(), "ok").Inc()
			n.logger.DebugContext(ctx, "message sent",
				slog.String("sender", s.Name()),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %d sender(s) failed: %s", domain.ErrDelivery, len(errs), strings.Join(errs, "; "))
	}
	return nil
}
