package testutil

import (
	"sync"

	"github.com/mcoot/netpong/internal/model"
)

// RecordingConn is an in-memory connection that records every message sent to it
type RecordingConn struct {
	id model.ConnID

	mu      sync.Mutex
	msgs    []any
	sendErr error
}

// NewRecordingConn creates a RecordingConn with the given id
func NewRecordingConn(id string) *RecordingConn {
	return &RecordingConn{id: model.ConnID(id)}
}

// ID returns the connection id
func (c *RecordingConn) ID() model.ConnID {
	return c.id
}

// Send records msg, or returns the configured failure
func (c *RecordingConn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

// FailSends makes every later Send return err
func (c *RecordingConn) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Messages returns a copy of everything sent so far
func (c *RecordingConn) Messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of recorded messages
func (c *RecordingConn) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// MessagesOf returns the recorded messages of type T, in order
func MessagesOf[T any](c *RecordingConn) []T {
	var out []T
	for _, msg := range c.Messages() {
		if m, ok := msg.(T); ok {
			out = append(out, m)
		}
	}
	return out
}
