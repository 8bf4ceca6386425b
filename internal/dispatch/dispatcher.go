// Package dispatch runs the per-connection command loop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime/debug"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
	"github.com/mcoot/netpong/internal/services/match"
	"github.com/mcoot/netpong/internal/services/registry"
)

// Status reply texts for failed commands
const (
	MsgDuplicateID = "A game with this name already exists."
	MsgNotFound    = "Game not found or already full."
	MsgBadPassword = "Incorrect password."
	MsgInGame      = "You are already in a game."
	MsgInvalidID   = "Invalid game name."
	MsgInternal    = "Could not process command."
)

// Engine is the shared state the dispatcher mutates
type Engine interface {
	Connect(conn registry.Sender) model.ConnID
	Disconnect(id model.ConnID)
	CreateLobby(ctx context.Context, connID model.ConnID, id model.GameID, password string) (string, error)
	JoinLobby(ctx context.Context, connID model.ConnID, id model.GameID, password string) (*match.Session, error)
	UpdatePaddle(connID model.ConnID, y float64) error
}

// Conn is a client connection as seen by its dispatcher
type Conn interface {
	ID() model.ConnID
	Send(msg any) error
	Commands() iter.Seq2[protocol.Command, error]
	Close() error
}

// Dispatcher routes inbound commands to the engine
type Dispatcher struct {
	engine Engine
	logger *slog.Logger
}

// New creates a Dispatcher
func New(engine Engine, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		logger: logger.With(slog.String("component", "dispatch")),
	}
}

// Serve handles conn until it sends FINISH_CONNECTION, its stream ends, or
// handling a frame panics. Teardown always runs before Serve returns.
func (d *Dispatcher) Serve(ctx context.Context, conn Conn) {
	id := d.engine.Connect(conn)
	logger := d.logger.With(slog.String("conn_id", string(id)))
	logger.Info("connection opened")

	defer func() {
		d.engine.Disconnect(id)
		_ = conn.Close()
		logger.Info("connection closed")
	}()

	for cmd, err := range conn.Commands() {
		if err != nil {
			var protoErr *protocol.ProtocolError
			if errors.As(err, &protoErr) {
				logger.Warn("dropping malformed frame", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("stream ended", slog.String("error", err.Error()))
			return
		}

		if !d.handle(ctx, id, conn, cmd, logger) {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// handle processes one command and reports whether the loop should continue
func (d *Dispatcher) handle(ctx context.Context, id model.ConnID, conn Conn, cmd protocol.Command, logger *slog.Logger) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("command", string(cmd.Command)))
			cont = false
		}
	}()

	switch cmd.Command {
	case protocol.CmdCreateGame:
		msg, err := d.engine.CreateLobby(ctx, id, model.GameID(cmd.GameID), cmd.Password)
		d.reply(conn, msg, err, logger)

	case protocol.CmdJoinGame:
		gameID := model.GameID(cmd.GameID)
		_, err := d.engine.JoinLobby(ctx, id, gameID, cmd.Password)
		d.reply(conn, fmt.Sprintf("Joined game '%s'. The game is starting!", gameID), err, logger)

	case protocol.CmdUpdateBlock:
		if cmd.Y == nil {
			return true
		}
		if err := d.engine.UpdatePaddle(id, *cmd.Y); err != nil && !errors.Is(err, model.ErrNotInMatch) {
			logger.Warn("paddle update failed", slog.String("error", err.Error()))
		}

	case protocol.CmdFinishConnection:
		return false

	default:
		logger.Debug("ignoring unknown command", slog.String("command", string(cmd.Command)))
	}
	return true
}

func (d *Dispatcher) reply(conn Conn, msg string, err error, logger *slog.Logger) {
	reply := protocol.Success(msg)
	if err != nil {
		reply = protocol.Failure(ErrorMessage(err))
		logger.Info("command rejected", slog.String("error", err.Error()))
	}
	if sendErr := conn.Send(reply); sendErr != nil {
		logger.Debug("status reply not delivered", slog.String("error", sendErr.Error()))
	}
}

// ErrorMessage maps an engine error to the text of an ERROR status reply
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrDuplicateID):
		return MsgDuplicateID
	case errors.Is(err, model.ErrLobbyNotFound):
		return MsgNotFound
	case errors.Is(err, model.ErrBadPassword):
		return MsgBadPassword
	case errors.Is(err, model.ErrAlreadyAssociated):
		return MsgInGame
	case errors.Is(err, model.ErrInvalidGameID):
		return MsgInvalidID
	default:
		return MsgInternal
	}
}
