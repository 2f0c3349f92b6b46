// Package outbox names the ports events travel through after a placement commits.
// Delivery is at most once and best effort; nothing here is persisted.
package outbox

import "context"

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a delivered event. Its error is logged, never returned to the publisher.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	// Publish enqueues e; it must not block past ctx.
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

type Subscriber interface {
	// Subscribe registers h for eventName. Call before the bus starts dispatching.
	Subscribe(eventName string, h Handler)
}
