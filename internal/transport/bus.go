// Package transport is the pub/sub binding the core dispatcher is routed
// through: a Bus abstraction satisfied by a Redis implementation and, for
// tests, an in-memory fake, plus the Subscriber that decodes channel
// traffic into dispatcher calls.
package transport

import (
	"context"
)

// Message is one payload received off a subscribed channel.
type Message struct {
	Channel string
	Payload []byte
}

// Bus is the collaborator the core has no knowledge of: it only sees
// decoded commands in and domain events out. Publish and Subscribe are
// independent of each other so a single handle can be shared across
// workers.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	Close() error
}
