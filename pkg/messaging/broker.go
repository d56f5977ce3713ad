package messaging

import "context"

// Broker is the message transport used by the outbox processor and the
// notification consumer. Publishing is at-least-once; consumers must
// tolerate duplicates.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
