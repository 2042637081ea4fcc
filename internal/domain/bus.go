package domain

// EventBus carries relay lifecycle events between components in-process.
// Publish must never block the caller; subscribers run asynchronously and
// receive events in no guaranteed order.
type EventBus interface {
	Publish(evt Event)
	Subscribe(fn func(Event)) error
}
