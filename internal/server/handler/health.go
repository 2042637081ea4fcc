package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// OpenTradeCounter reports how many trades are currently open.
type OpenTradeCounter interface {
	OpenCount(ctx context.Context) (int, error)
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	service string
	version string
	counter OpenTradeCounter
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler with the provided registry view.
func NewHealthHandler(serviceName, version string, counter OpenTradeCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: serviceName,
		version: version,
		counter: counter,
		logger:  logHandler(logger, "health"),
	}
}

// HealthCheck responds with a simple JSON status indicating the server is
// alive, plus the open-trade count. The count read is in-memory, so the
// endpoint has no external dependencies.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	openTrades := 0
	if h.counter != nil {
		if n, err := h.counter.OpenCount(r.Context()); err == nil {
			openTrades = n
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"service":     h.service,
		"version":     h.version,
		"open_trades": openTrades,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
