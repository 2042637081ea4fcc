package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var got []domain.Event
	require.NoError(t, b.Subscribe(func(evt domain.Event) {
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	}))

	b.Publish(domain.Event{Kind: domain.EventTradeOpened, Symbol: "BTCUSDT", At: time.Now()})
	b.Publish(domain.Event{Kind: domain.EventDeliverySent, Symbol: "BTCUSDT", At: time.Now()})
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	kinds := map[domain.EventKind]bool{got[0].Kind: true, got[1].Kind: true}
	assert.True(t, kinds[domain.EventTradeOpened])
	assert.True(t, kinds[domain.EventDeliverySent])
}

func TestMultipleSubscribers(t *testing.T) {
	b := New()

	var mu sync.Mutex
	counts := make(map[int]int)
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, b.Subscribe(func(domain.Event) {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		}))
	}

	b.Publish(domain.Event{Kind: domain.EventAlertAccepted})
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, counts[i])
	}
}
