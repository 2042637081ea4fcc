package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
	"github.com/alanyoungcy/cornixrelay/internal/metrics"
	"github.com/alanyoungcy/cornixrelay/internal/service"
)

// maxAlertBody caps the inbound webhook payload size.
const maxAlertBody = 64 << 10

// AlertProcessor is the narrow service interface the webhook handler needs.
type AlertProcessor interface {
	Process(ctx context.Context, alert domain.Alert) (service.Outcome, error)
}

// WebhookHandler receives TradingView alert payloads.
type WebhookHandler struct {
	svc    AlertProcessor
	logger *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler with the provided processor.
func NewWebhookHandler(svc AlertProcessor, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		svc:    svc,
		logger: logHandler(logger, "webhook"),
	}
}

// alertPayload is the documented inbound JSON schema. TradingView alert
// templates are configured to produce it; the aliases cover the template
// variants seen in the wild (ticker vs symbol, entry_price vs price) and the
// fact that template placeholders frequently render numbers as strings.
type alertPayload struct {
	Symbol     string    `json:"symbol"`
	Ticker     string    `json:"ticker"` // alias for symbol
	Action     string    `json:"action"`
	Side       string    `json:"side"`
	Price      flexFloat `json:"price"`
	EntryPrice flexFloat `json:"entry_price"` // alias for price
	ExitPrice  flexFloat `json:"exit_price"`  // alias for price
	Stop       flexFloat `json:"stop"`
	Target     flexFloat `json:"target"`
	Strategy   string    `json:"strategy"`
	Timeframe  string    `json:"timeframe"`
	High       flexFloat `json:"high"`
	Low        flexFloat `json:"low"`
	Close      flexFloat `json:"close"`
	Reason     string    `json:"reason"`
}

// flexFloat decodes a JSON number that may arrive quoted, as TradingView
// template interpolation tends to produce. A non-numeric value is an error.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = flexFloat(v)
	return nil
}

// HandleWebhook parses, validates, and processes one alert.
// POST /webhook
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	alert, err := parseAlert(r)
	if err != nil {
		metrics.AlertsRejectedTotal.WithLabelValues("validation").Inc()
		h.logger.WarnContext(r.Context(), "rejected alert",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.svc.Process(r.Context(), alert)
	if err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			// The registry mutation stands; only the send failed.
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			metrics.AlertsRejectedTotal.WithLabelValues("validation").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "alert processing failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := map[string]any{
		"status":    "accepted",
		"result":    string(outcome.Result),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if outcome.Trade.ID != "" {
		resp["trade_id"] = outcome.Trade.ID
	}
	if outcome.Message != "" {
		resp["formatted_message"] = outcome.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseAlert decodes and normalizes the request body into a domain.Alert.
// All failures wrap domain.ErrValidation and leave no side effects.
func parseAlert(r *http.Request) (domain.Alert, error) {
	var payload alertPayload
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxAlertBody))
	if err := dec.Decode(&payload); err != nil {
		return domain.Alert{}, fmt.Errorf("%w: decode body: %v", domain.ErrValidation, err)
	}

	rawSymbol := payload.Symbol
	if rawSymbol == "" {
		rawSymbol = payload.Ticker
	}
	symbol, err := domain.NormalizeSymbol(rawSymbol)
	if err != nil {
		return domain.Alert{}, err
	}

	action, err := domain.ParseAction(payload.Action)
	if err != nil {
		return domain.Alert{}, err
	}
	side, err := domain.ParseSide(payload.Side)
	if err != nil {
		return domain.Alert{}, err
	}
	reason, err := domain.ParseCloseReason(payload.Reason)
	if err != nil {
		return domain.Alert{}, err
	}

	price := float64(payload.Price)
	if price == 0 {
		if payload.EntryPrice != 0 {
			price = float64(payload.EntryPrice)
		} else {
			price = float64(payload.ExitPrice)
		}
	}

	alert := domain.Alert{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Strategy:   strings.TrimSpace(payload.Strategy),
		Action:     action,
		Side:       side,
		Price:      price,
		Stop:       float64(payload.Stop),
		Target:     float64(payload.Target),
		High:       float64(payload.High),
		Low:        float64(payload.Low),
		Close:      float64(payload.Close),
		Timeframe:  strings.TrimSpace(payload.Timeframe),
		Reason:     reason,
		ReceivedAt: time.Now().UTC(),
	}

	if err := alert.Validate(); err != nil {
		return domain.Alert{}, err
	}
	return alert, nil
}
