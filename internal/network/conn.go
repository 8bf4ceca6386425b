// Package network adapts raw stream connections to the frame protocol.
package network

import (
	"fmt"
	"iter"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
)

// Config holds per-connection tunables
type Config struct {
	// WriteTimeout bounds each frame write; zero disables it. There is no
	// read timeout: a silent peer is only noticed when a write fails.
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with no timeouts
func DefaultConfig() Config {
	return Config{}
}

// Conn is one client connection. Send may be called concurrently by the
// dispatcher and the match loop; Commands must only be ranged by one reader.
type Conn struct {
	id     model.ConnID
	raw    net.Conn
	cfg    Config
	logger *slog.Logger
	dec    *protocol.Decoder

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New wraps raw and assigns it a fresh id
func New(raw net.Conn, cfg Config, logger *slog.Logger) *Conn {
	id := model.ConnID(uuid.NewString())
	return &Conn{
		id:  id,
		raw: raw,
		cfg: cfg,
		logger: logger.With(
			slog.String("conn_id", string(id)),
			slog.String("remote_addr", raw.RemoteAddr().String())),
		dec: protocol.NewDecoder(raw),
	}
}

// ID returns the connection's unique id
func (c *Conn) ID() model.ConnID {
	return c.id
}

// Send writes msg as one frame. A failed write closes the connection, which
// unblocks the reader so the normal disconnect teardown runs.
func (c *Conn) Send(msg any) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	if c.closed.Load() {
		return fmt.Errorf("%w: connection closed", model.ErrPeerUnreachable)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := c.raw.Write(frame); err != nil {
		if !c.closed.Load() {
			c.logger.Warn("write failed, closing connection", slog.String("error", err.Error()))
		}
		_ = c.Close()
		return fmt.Errorf("%w: %w", model.ErrPeerUnreachable, err)
	}
	return nil
}

// Commands yields inbound commands until the stream ends. Malformed frames
// are yielded as *protocol.ProtocolError and the sequence continues.
func (c *Conn) Commands() iter.Seq2[protocol.Command, error] {
	return c.dec.Commands()
}

// Close closes the underlying stream. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

// Closed reports whether Close has been called
func (c *Conn) Closed() bool {
	return c.closed.Load()
}
