package transport

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBus wraps a single *redis.Client. Publishes use the client's
// shared multiplexed connection directly; Subscribe opens its own
// dedicated pub/sub connection.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus parses url (a redis:// connection string) and builds a
// client for it. No connection is made here; use Ping to check
// connectivity.
func NewRedisBus(url string) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBus{client: redis.NewClient(opts)}, nil
}

// Ping verifies connectivity, used by the process entrypoint to fail
// fast on a bad transport configuration.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	pubsub := b.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
