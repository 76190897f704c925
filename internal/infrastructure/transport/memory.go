package transport

import (
	"context"
	"sync"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

// Memory is an in-process transport. Every sent envelope is recorded and
// passed to the optional peer, which plays the E2 node side.
type Memory struct {
	mu   sync.Mutex
	sent []e2ap.Envelope
	peer func(ctx context.Context, env e2ap.Envelope) error
}

func NewMemory(peer func(ctx context.Context, env e2ap.Envelope) error) *Memory {
	return &Memory{peer: peer}
}

func (m *Memory) Send(ctx context.Context, env e2ap.Envelope) error {
	m.mu.Lock()
	m.sent = append(m.sent, env)
	peer := m.peer
	m.mu.Unlock()
	if peer != nil {
		return peer(ctx, env)
	}
	return nil
}

// Sent returns a copy of every envelope sent so far.
func (m *Memory) Sent() []e2ap.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]e2ap.Envelope, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset forgets recorded envelopes.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
