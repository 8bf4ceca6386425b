package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
	"github.com/mcoot/netpong/internal/services/physics"
)

var (
	// ErrRejected is returned when the server answers a command with an ERROR status
	ErrRejected = errors.New("rejected by server")
	// ErrStalled is returned when a running match stops sending frames
	ErrStalled = errors.New("match stalled, opponent probably left")
	// ErrClosed is returned when the server closes the connection before the match ends
	ErrClosed = errors.New("connection closed by server")
)

// SessionOptions configures a game session
type SessionOptions struct {
	// Autoplay steers the paddle to track the ball
	Autoplay bool
	// Verbose prints every GAME_STATE frame
	Verbose bool
	// IdleTimeout ends a started match that has gone quiet. Zero disables it.
	IdleTimeout time.Duration
}

// SessionResult summarises a finished session
type SessionResult struct {
	GameID string      `json:"game_id"`
	Slot   *model.Slot `json:"slot,omitempty"`
	Winner *model.Slot `json:"winner,omitempty"`
	Score  [2]int      `json:"score"`
	Frames int         `json:"frames"`
}

// Session plays one game over a single server connection
type Session struct {
	conn net.Conn
	out  *Output
	opts SessionOptions

	writeMu sync.Mutex
	enc     *protocol.Encoder

	result  SessionResult
	started bool
	paddleY float64
}

// NewSession wraps an established connection
func NewSession(conn net.Conn, out *Output, opts SessionOptions) *Session {
	return &Session{
		conn:    conn,
		out:     out,
		opts:    opts,
		enc:     protocol.NewEncoder(conn),
		paddleY: physics.ClampPaddle(model.MaxPaddleY / 2),
	}
}

// Run sends first and then follows the server's frames until the match ends,
// the server rejects the command, or ctx is cancelled. Cancelling ctx sends
// FINISH_CONNECTION and closes the connection.
func (s *Session) Run(ctx context.Context, first protocol.Command) (SessionResult, error) {
	s.result.GameID = first.GameID

	stop := context.AfterFunc(ctx, func() {
		_ = s.send(protocol.FinishConnection())
		_ = s.conn.Close()
	})
	defer stop()

	if err := s.send(first); err != nil {
		return s.result, fmt.Errorf("failed to send %s: %w", first.Command, err)
	}

	dec := protocol.NewDecoder(s.conn)
	for msg, err := range dec.ServerMessages() {
		if err != nil {
			if errors.Is(err, model.ErrProtocol) {
				continue
			}
			return s.result, s.streamError(ctx, err)
		}

		done, err := s.handle(msg)
		if err != nil || done {
			return s.result, err
		}
		s.refreshDeadline()
	}

	if ctx.Err() != nil {
		return s.result, ctx.Err()
	}
	return s.result, ErrClosed
}

func (s *Session) handle(msg protocol.ServerMessage) (bool, error) {
	if msg.IsStatus() {
		s.out.PrintFrame(msg, s.opts.Verbose)
		if msg.Status == protocol.StatusError {
			return true, fmt.Errorf("%w: %s", ErrRejected, msg.Message)
		}
		return false, nil
	}

	switch msg.Type {
	case protocol.TypeGameStart:
		slot := msg.PlayerID
		s.result.Slot = &slot
		s.started = true
		s.out.PrintFrame(msg, s.opts.Verbose)
	case protocol.TypeGameState:
		s.result.Frames++
		if msg.Score != s.result.Score {
			s.result.Score = msg.Score
			s.out.PrintScore(msg.Score)
		}
		s.out.PrintFrame(msg, s.opts.Verbose)
		if s.opts.Autoplay {
			return false, s.steer(msg.Ball)
		}
	case protocol.TypeGameOver:
		winner := msg.Winner
		s.result.Winner = &winner
		s.out.PrintFrame(msg, s.opts.Verbose)
		_ = s.send(protocol.FinishConnection())
		return true, nil
	}
	return false, nil
}

// steer moves the paddle so its centre follows the ball, skipping sub-pixel moves
func (s *Session) steer(ball model.Vec) error {
	if s.result.Slot == nil {
		return nil
	}
	target := physics.ClampPaddle(ball.Y() - model.PaddleHeight/2)
	if math.Abs(target-s.paddleY) < 1 {
		return nil
	}
	s.paddleY = target
	return s.send(protocol.UpdateBlock(target))
}

func (s *Session) refreshDeadline() {
	if !s.started || s.opts.IdleTimeout <= 0 {
		return
	}
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))
}

func (s *Session) streamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrStalled
	}
	return fmt.Errorf("%w: %w", ErrClosed, err)
}

func (s *Session) send(cmd protocol.Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.enc.Write(cmd)
}
