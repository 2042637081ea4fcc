package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/cornixrelay/internal/bus"
	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

func TestHubBroadcastsBusEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := bus.New()

	hub, err := NewHub(b, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First frame is the hello envelope.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var hello map[string]any
	require.NoError(t, json.Unmarshal(data, &hello))
	assert.Equal(t, "relay_status", hello["type"])

	b.Publish(domain.Event{
		Kind:   domain.EventTradeOpened,
		Symbol: "BTCUSDT",
		At:     time.Now().UTC(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)

	var evt domain.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, domain.EventTradeOpened, evt.Kind)
	assert.Equal(t, "BTCUSDT", evt.Symbol)
}
