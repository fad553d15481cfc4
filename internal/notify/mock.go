package notify

import (
	"context"
	"sync"
)

// Message is one recorded Push call.
type Message struct {
	Title    string
	Body     string
	Priority int
}

// Mock is a test double for the Notifier interface. It records every
// Push and optionally fails each one.
type Mock struct {
	mu   sync.Mutex
	Err  error
	sent []Message
}

// Push records the call and returns the configured error.
func (m *Mock) Push(ctx context.Context, title, body string, priority int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Message{Title: title, Body: body, Priority: priority})
	return m.Err
}

// Sent returns a copy of all recorded messages.
func (m *Mock) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
