// Package lobby owns the lobby table, the active-match table, and the
// connection registry, and serializes every mutation of them behind one lock.
package lobby

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/netpong/internal/dependencies/clock"
	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/services/match"
	"github.com/mcoot/netpong/internal/services/registry"
)

// Config holds tunables for the controller
type Config struct {
	// PasswordCost is the bcrypt cost used for lobby passwords
	PasswordCost int
	Match        match.Config
}

// DefaultConfig returns the production configuration
func DefaultConfig() Config {
	return Config{
		PasswordCost: bcrypt.DefaultCost,
		Match:        match.DefaultConfig(),
	}
}

// EventSink receives table change events. Publish must not block.
type EventSink interface {
	Publish(event model.Event)
}

// Stats counts the live entries in each table
type Stats struct {
	Connections int `json:"connections"`
	Lobbies     int `json:"lobbies"`
	Matches     int `json:"matches"`
}

type pendingLobby struct {
	id           model.GameID
	owner        registry.Sender
	passwordHash []byte
	createdAt    time.Time
}

// Controller is the shared state container handed to every dispatcher
type Controller struct {
	cfg    Config
	clock  clock.Clock
	events EventSink
	logger *slog.Logger

	matchLogger *slog.Logger

	mu       sync.Mutex
	lobbies  map[model.GameID]*pendingLobby
	matches  map[model.GameID]*match.Session
	registry *registry.Registry
}

// passwordDigest maps a password of any length to a fixed 64-byte input,
// keeping it under bcrypt's 72-byte limit without truncation
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// NewController creates an empty Controller. events may be nil.
func NewController(cfg Config, clock clock.Clock, events EventSink, logger *slog.Logger) *Controller {
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = bcrypt.DefaultCost
	}
	return &Controller{
		cfg:         cfg,
		clock:       clock,
		events:      events,
		logger:      logger.With(slog.String("component", "lobby")),
		matchLogger: logger.With(slog.String("component", "match")),
		lobbies:     make(map[model.GameID]*pendingLobby),
		matches:     make(map[model.GameID]*match.Session),
		registry:    registry.New(),
	}
}

// Connect registers a freshly accepted connection with no association
func (c *Controller) Connect(conn registry.Sender) model.ConnID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Register(conn)
}

// Disconnect tears down whatever the connection was attached to. A pending
// lobby it owns is removed; a match it plays in has its running flag cleared
// and is removed by its own loop on the next tick.
func (c *Controller) Disconnect(id model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	assoc, ok := c.registry.Lookup(id)
	if !ok {
		return
	}

	switch assoc.Kind {
	case model.AssocLobby:
		if l, ok := c.lobbies[assoc.GameID]; ok && l.owner.ID() == id {
			delete(c.lobbies, assoc.GameID)
			c.publish(model.EventLobbyClosed, assoc.GameID, nil)
			c.logger.Info("lobby removed on disconnect", slog.String("game_id", string(assoc.GameID)))
		}
	case model.AssocMatch:
		if s, ok := c.matches[assoc.GameID]; ok {
			s.Stop()
			c.logger.Info("match stopped on disconnect",
				slog.String("game_id", string(assoc.GameID)),
				slog.Int("slot", int(assoc.Slot)))
		}
	}

	c.registry.Unregister(id)
}

// CreateLobby opens a pending lobby owned by the connection and returns the
// confirmation text for the status reply
func (c *Controller) CreateLobby(ctx context.Context, connID model.ConnID, id model.GameID, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := id.Validate(); err != nil {
		return "", err
	}

	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword(passwordDigest(password), c.cfg.PasswordCost)
		if err != nil {
			return "", fmt.Errorf("hash lobby password: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.unattached(connID)
	if err != nil {
		return "", err
	}
	if c.inUse(id) {
		return "", model.ErrDuplicateID
	}

	c.lobbies[id] = &pendingLobby{
		id:           id,
		owner:        conn,
		passwordHash: hash,
		createdAt:    c.clock.Now(),
	}
	if err := c.registry.Associate(connID, model.LobbyAssociation(id)); err != nil {
		delete(c.lobbies, id)
		return "", err
	}
	c.publish(model.EventLobbyOpened, id, model.LobbyOpenedPayload{HasPassword: hash != nil})

	c.logger.Info("lobby created",
		slog.String("game_id", string(id)),
		slog.String("conn_id", string(connID)),
		slog.Bool("has_password", hash != nil))

	return fmt.Sprintf("Game '%s' created. Waiting for another player.", id), nil
}

// JoinLobby promotes the named lobby to a running match with the lobby owner
// in slot 0 and the joiner in slot 1. At most one join succeeds per lobby;
// losers of a race see ErrLobbyNotFound.
func (c *Controller) JoinLobby(ctx context.Context, connID model.ConnID, id model.GameID, password string) (*match.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, model.ErrLobbyNotFound
	}

	c.mu.Lock()
	if _, err := c.unattached(connID); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	lobby, ok := c.lobbies[id]
	c.mu.Unlock()
	if !ok {
		return nil, model.ErrLobbyNotFound
	}

	// bcrypt is slow, so the comparison runs without the table lock
	if lobby.passwordHash != nil {
		err := bcrypt.CompareHashAndPassword(lobby.passwordHash, passwordDigest(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, model.ErrBadPassword
		}
		if err != nil {
			return nil, fmt.Errorf("compare lobby password: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lobbies[id] != lobby {
		return nil, model.ErrLobbyNotFound
	}
	joiner, err := c.unattached(connID)
	if err != nil {
		return nil, err
	}

	delete(c.lobbies, id)
	c.publish(model.EventLobbyClosed, id, nil)

	session := match.New(id, [2]match.Player{lobby.owner, joiner}, c.cfg.Match, match.Hooks{
		OnScore:  c.matchScored,
		OnFinish: c.matchFinished,
	}, c.matchLogger)
	c.matches[id] = session

	for slot, p := range [2]registry.Sender{lobby.owner, joiner} {
		if err := c.registry.Associate(p.ID(), model.MatchAssociation(id, model.Slot(slot))); err != nil {
			c.logger.Warn("failed to associate match slot",
				slog.String("game_id", string(id)),
				slog.Int("slot", slot),
				slog.String("error", err.Error()))
		}
	}
	c.publish(model.EventMatchStarted, id, nil)

	c.logger.Info("match created",
		slog.String("game_id", string(id)),
		slog.String("slot0", string(lobby.owner.ID())),
		slog.String("slot1", string(connID)))

	session.Start()
	return session, nil
}

// UpdatePaddle moves the paddle of the connection's match slot
func (c *Controller) UpdatePaddle(connID model.ConnID, y float64) error {
	c.mu.Lock()
	assoc, ok := c.registry.Lookup(connID)
	var session *match.Session
	if ok && assoc.Kind == model.AssocMatch {
		session = c.matches[assoc.GameID]
	}
	c.mu.Unlock()

	if session == nil {
		return model.ErrNotInMatch
	}
	session.SetPaddle(assoc.Slot, y)
	return nil
}

// Lookup returns the connection's current association
func (c *Controller) Lookup(connID model.ConnID) (model.Association, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Lookup(connID)
}

// Match returns the active session with the given id
func (c *Controller) Match(id model.GameID) (*match.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.matches[id]
	return s, ok
}

// LobbyIDs returns the ids of all pending lobbies, sorted
func (c *Controller) LobbyIDs() []model.GameID {
	c.mu.Lock()
	ids := make([]model.GameID, 0, len(c.lobbies))
	for id := range c.lobbies {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// MatchIDs returns the ids of all active matches, sorted
func (c *Controller) MatchIDs() []model.GameID {
	c.mu.Lock()
	ids := make([]model.GameID, 0, len(c.matches))
	for id := range c.matches {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// Stats returns table sizes
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Connections: c.registry.Len(),
		Lobbies:     len(c.lobbies),
		Matches:     len(c.matches),
	}
}

// StopAll clears the running flag of every match and waits for their loops
// to finish or for ctx to expire
func (c *Controller) StopAll(ctx context.Context) error {
	c.mu.Lock()
	sessions := make([]*match.Session, 0, len(c.matches))
	for _, s := range c.matches {
		s.Stop()
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Controller) matchScored(id model.GameID, score [2]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish(model.EventMatchScored, id, model.MatchScoredPayload{Score: score})
}

// matchFinished runs on the loop goroutine once the session reaches FINISHED
func (c *Controller) matchFinished(s *match.Session, result model.MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.matches[s.ID()] == s {
		delete(c.matches, s.ID())
	}
	for slot := range 2 {
		p := s.Player(model.Slot(slot))
		if assoc, ok := c.registry.Lookup(p.ID()); ok && assoc == model.MatchAssociation(s.ID(), model.Slot(slot)) {
			c.registry.Dissociate(p.ID())
		}
	}
	c.publish(model.EventMatchEnded, s.ID(), model.MatchEndedPayload{Result: result})
}

// unattached returns the registered connection if it holds no association.
// Caller must hold c.mu.
func (c *Controller) unattached(connID model.ConnID) (registry.Sender, error) {
	assoc, ok := c.registry.Lookup(connID)
	if !ok {
		return nil, model.ErrConnNotFound
	}
	if !assoc.IsNone() {
		return nil, model.ErrAlreadyAssociated
	}
	conn, _ := c.registry.Conn(connID)
	return conn, nil
}

// inUse reports whether id names a lobby or a match. Caller must hold c.mu.
func (c *Controller) inUse(id model.GameID) bool {
	if _, ok := c.lobbies[id]; ok {
		return true
	}
	_, ok := c.matches[id]
	return ok
}

// publish forwards an event to the sink. Caller must hold c.mu so events
// leave in table order.
func (c *Controller) publish(typ model.EventType, id model.GameID, payload any) {
	if c.events == nil {
		return
	}
	c.events.Publish(model.Event{
		Type:      typ,
		Timestamp: c.clock.Now(),
		GameID:    id,
		Payload:   payload,
	})
}
