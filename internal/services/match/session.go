// Package match runs the authoritative simulation loop for one active match.
package match

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
	"github.com/mcoot/netpong/internal/services/physics"
)

// Config holds tunables for a match session
type Config struct {
	// TickInterval is the sleep between ticks; drift is not compensated
	TickInterval time.Duration
}

// DefaultConfig returns the 60 Hz configuration
func DefaultConfig() Config {
	return Config{
		TickInterval: model.TickInterval,
	}
}

// Player is the outbound view of the connection occupying a slot
type Player interface {
	ID() model.ConnID
	Send(msg any) error
}

// Hooks lets the owner observe a session without the session knowing about the tables
type Hooks struct {
	// OnScore is called from the loop goroutine after a point is scored
	OnScore func(id model.GameID, score [2]int)
	// OnFinish is called once from the loop goroutine after the loop exits
	OnFinish func(s *Session, result model.MatchResult)
}

// Session owns one match's simulation state. Ball, velocity, and score are
// written only by the loop goroutine; paddle positions are written by the
// dispatchers of the two slots through per-slot atomics.
type Session struct {
	id      model.GameID
	players [2]Player
	cfg     Config
	hooks   Hooks
	logger  *slog.Logger

	mu    sync.Mutex // guards state and phase for Snapshot/Phase readers
	state physics.State
	phase model.MatchState

	paddles [2]atomic.Uint64 // float64 bits
	running atomic.Bool      // cleared under the owner's table lock

	startOnce sync.Once
	done      chan struct{}
}

// New creates a session in the STARTING phase with the running flag set.
// Slot 0 is players[0], slot 1 is players[1].
func New(id model.GameID, players [2]Player, cfg Config, hooks Hooks, logger *slog.Logger) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	s := &Session{
		id:      id,
		players: players,
		cfg:     cfg,
		hooks:   hooks,
		logger:  logger.With(slog.String("game_id", string(id))),
		state:   physics.NewState(),
		phase:   model.MatchStateStarting,
		done:    make(chan struct{}),
	}
	for slot := range s.paddles {
		s.paddles[slot].Store(math.Float64bits(s.state.PaddleY[slot]))
	}
	s.running.Store(true)
	return s
}

// ID returns the match id
func (s *Session) ID() model.GameID {
	return s.id
}

// Player returns the connection in slot
func (s *Session) Player(slot model.Slot) Player {
	return s.players[slot]
}

// SlotOf returns the slot occupied by conn, if any
func (s *Session) SlotOf(conn model.ConnID) (model.Slot, bool) {
	for slot, p := range s.players {
		if p != nil && p.ID() == conn {
			return model.Slot(slot), true
		}
	}
	return 0, false
}

// Start launches the simulation loop in its own goroutine. Subsequent calls are no-ops.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.Run()
	})
}

// Stop clears the running flag. The loop exits at the top of its next
// iteration without notifying either player.
func (s *Session) Stop() {
	s.running.Store(false)
}

// Running reports whether the running flag is still set
func (s *Session) Running() bool {
	return s.running.Load()
}

// Done is closed after the loop has exited and OnFinish has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// SetPaddle clamps y into the legal range and stores it for slot
func (s *Session) SetPaddle(slot model.Slot, y float64) {
	if !slot.Valid() {
		return
	}
	s.paddles[slot].Store(math.Float64bits(physics.ClampPaddle(y)))
}

// Paddle returns the stored paddle position for slot
func (s *Session) Paddle(slot model.Slot) float64 {
	return math.Float64frombits(s.paddles[slot].Load())
}

// Phase returns the current lifecycle phase
func (s *Session) Phase() model.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns a copy of the simulation state with current paddle positions
func (s *Session) Snapshot() physics.State {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	state.PaddleY = s.currentPaddles()
	return state
}

// Run executes the STARTING -> RUNNING -> FINISHED state machine on the calling goroutine
func (s *Session) Run() {
	defer close(s.done)

	for slot, p := range s.players {
		s.send(p, protocol.NewGameStart(model.Slot(slot)))
	}
	s.setPhase(model.MatchStateRunning)
	s.logger.Info("match running")

	result := s.loop()

	s.setPhase(model.MatchStateFinished)
	if result.Aborted {
		s.logger.Info("match aborted", slog.Any("score", result.Score))
	} else {
		s.logger.Info("match finished",
			slog.Int("winner", int(result.Winner)),
			slog.Any("score", result.Score))
	}

	if s.hooks.OnFinish != nil {
		s.hooks.OnFinish(s, result)
	}
}

func (s *Session) loop() model.MatchResult {
	for {
		if !s.running.Load() {
			return model.MatchResult{GameID: s.id, Score: s.Snapshot().Score, Aborted: true}
		}

		s.mu.Lock()
		s.state.PaddleY = s.currentPaddles()
		outcome := physics.Step(&s.state)
		state := s.state
		s.mu.Unlock()

		if outcome.Scored && s.hooks.OnScore != nil {
			s.hooks.OnScore(s.id, state.Score)
		}

		if winner, ok := physics.Winner(state.Score); ok {
			s.broadcast(protocol.NewGameOver(winner))
			return model.MatchResult{GameID: s.id, Score: state.Score, Winner: winner}
		}

		s.broadcast(protocol.NewGameState(state.Ball, state.PaddleY, state.Score))
		time.Sleep(s.cfg.TickInterval)
	}
}

func (s *Session) currentPaddles() [2]float64 {
	return [2]float64{
		math.Float64frombits(s.paddles[0].Load()),
		math.Float64frombits(s.paddles[1].Load()),
	}
}

func (s *Session) setPhase(phase model.MatchState) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

func (s *Session) broadcast(msg any) {
	for _, p := range s.players {
		s.send(p, msg)
	}
}

// send delivers msg to p; failures are logged and swallowed
func (s *Session) send(p Player, msg any) {
	if p == nil {
		return
	}
	if err := p.Send(msg); err != nil {
		s.logger.Debug("send to player failed",
			slog.String("conn_id", string(p.ID())),
			slog.String("error", err.Error()))
	}
}
