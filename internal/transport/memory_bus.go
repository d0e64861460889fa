package transport

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus used by tests to exercise the
// Subscriber and Dispatcher without a real Redis instance. A published
// message is delivered to every subscriber of its channel and recorded
// for assertions regardless of whether a subscriber is listening.
type MemoryBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan Message
	published   []Message
}

// NewMemoryBus creates an empty MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[string][]chan Message)}
}

func (b *MemoryBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, Message{Channel: channel, Payload: payload})
	for _, ch := range b.subscribers[channel] {
		ch <- Message{Channel: channel, Payload: payload}
	}
	return nil
}

// Messages returns every publish recorded on channel so far.
func (b *MemoryBus) Messages(channel string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Message
	for _, m := range b.published {
		if m.Channel == channel {
			out = append(out, m)
		}
	}
	return out
}

func (b *MemoryBus) Subscribe(_ context.Context, channels ...string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(chan Message, 64)
	for _, c := range channels {
		b.subscribers[c] = append(b.subscribers[c], out)
	}
	return out, nil
}

func (b *MemoryBus) Close() error { return nil }
