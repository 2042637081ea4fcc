// Package bus carries relay lifecycle events between components in-process.
// It is a thin wrapper around asaskevich/EventBus with a single topic;
// subscribers run asynchronously so publishers never block on them.
package bus

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"

	"github.com/alanyoungcy/cornixrelay/internal/domain"
)

// topic is the single event topic the relay publishes on.
const topic = "relay:events"

// Bus implements domain.EventBus on top of asaskevich/EventBus.
type Bus struct {
	inner evbus.Bus
}

// New creates an empty in-process event bus.
func New() *Bus {
	return &Bus{inner: evbus.New()}
}

// Publish emits an event to all subscribers. Subscribers run on their own
// goroutines; a slow subscriber never blocks the publisher.
func (b *Bus) Publish(evt domain.Event) {
	b.inner.Publish(topic, evt)
}

// Subscribe registers fn to receive every published event asynchronously.
func (b *Bus) Subscribe(fn func(domain.Event)) error {
	if err := b.inner.SubscribeAsync(topic, fn, false); err != nil {
		return fmt.Errorf("bus: subscribe: %w", err)
	}
	return nil
}

// Wait blocks until all in-flight asynchronous deliveries have completed.
// Used in tests and during shutdown.
func (b *Bus) Wait() {
	b.inner.WaitAsync()
}
