package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

func TestTelegramSenderSend(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender(srv.URL, "123:abc", "-100200300", 5*time.Second)
	require.NoError(t, sender.Send(context.Background(), "#BTCUSDT Sl 50375.5"))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100200300", gotPayload["chat_id"])
	assert.Equal(t, "#BTCUSDT Sl 50375.5", gotPayload["text"])
	assert.Equal(t, "HTML", gotPayload["parse_mode"])
}

func TestTelegramSenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	}))
	defer srv.Close()

	sender := NewTelegramSender(srv.URL, "123:abc", "-1", time.Second)
	err := sender.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestTelegramSenderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	sender := NewTelegramSender(srv.URL, "123:abc", "-1", 20*time.Millisecond)
	err := sender.Send(context.Background(), "hello")
	require.Error(t, err)
}

// stubSender records calls and returns a fixed error.
type stubSender struct {
	name  string
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, text string) error {
	s.calls++
	return s.err
}

func (s *stubSender) Name() string { return s.name }

func TestNotifierFansOutToAllSenders(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := &stubSender{name: "telegram"}
	failing := &stubSender{name: "discord", err: errors.New("boom")}

	n := NewNotifier([]Sender{failing, ok}, logger)
	err := n.Send(context.Background(), "text")

	require.ErrorIs(t, err, domain.ErrDelivery)
	assert.Contains(t, err.Error(), "discord: boom")

	// The healthy sender was still invoked after the failure.
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, failing.calls)
}

func TestNotifierNoSenders(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := NewNotifier(nil, logger)

	err := n.Send(context.Background(), "text")
	require.ErrorIs(t, err, domain.ErrDelivery)
}
