package domain

import "time"

// EventKind labels a relay lifecycle event.
type EventKind string

const (
	EventAlertAccepted  EventKind = "alert.accepted"
	EventAlertIgnored   EventKind = "alert.ignored"
	EventTradeOpened    EventKind = "trade.opened"
	EventTradeTrailed   EventKind = "trade.trailed"
	EventTradeClosed    EventKind = "trade.closed"
	EventDeliverySent   EventKind = "delivery.sent"
	EventDeliveryFailed EventKind = "delivery.failed"
)

// Event is published on the in-process bus for each notable step of alert
// processing. WebSocket clients receive these as JSON frames.
type Event struct {
	Kind       EventKind `json:"kind"`
	AlertID    string    `json:"alert_id,omitempty"`
	TradeID    string    `json:"trade_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Symbol     string    `json:"symbol,omitempty"`
	Action     Action    `json:"action,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
