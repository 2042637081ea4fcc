package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

// TradeLister is the narrow registry view the trades endpoint needs.
type TradeLister interface {
	Snapshot(ctx context.Context) ([]domain.Trade, error)
}

// TradesHandler serves the read-only trade list.
type TradesHandler struct {
	registry TradeLister
	logger   *slog.Logger
}

// NewTradesHandler creates a TradesHandler over the given registry view.
func NewTradesHandler(registry TradeLister, logger *slog.Logger) *TradesHandler {
	return &TradesHandler{
		registry: registry,
		logger:   logHandler(logger, "trades"),
	}
}

// ListTrades returns the current registry snapshot, ordered by identifier.
// GET /trades
func (h *TradesHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.registry.Snapshot(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"count":  len(trades),
	})
}
