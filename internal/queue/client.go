package queue

import (
	"context"
	"sync"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// MemoryClient keeps sent messages in memory. Useful in dev and tests.
type MemoryClient struct {
	mu   sync.Mutex
	sent []Message
}

func (m *MemoryClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the messages sent so far.
func (m *MemoryClient) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
