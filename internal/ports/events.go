package ports

import "context"

// Notifier is the live fan-out channel. Delivery is best-effort: the engine
// never retries a failed publish and never blocks a response on one.
type Notifier interface {
	Publish(ctx context.Context, event string, payload []byte) error
}

// EventPublisher carries durable engagement events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
