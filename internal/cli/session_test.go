package cli

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
)

// fakeServer plays a fixed script of frames at a client over net.Pipe and
// records the commands the client sends back.
type fakeServer struct {
	conn net.Conn

	mu       sync.Mutex
	commands []protocol.Command
	readDone chan struct{}
	wrote    chan struct{}
}

func newFakeServer(t *testing.T, closeAfter bool, frames ...any) (*fakeServer, net.Conn) {
	t.Helper()

	client, server := net.Pipe()
	fs := &fakeServer{
		conn:     server,
		readDone: make(chan struct{}),
		wrote:    make(chan struct{}),
	}

	go func() {
		defer close(fs.readDone)
		for cmd, err := range protocol.NewDecoder(server).Commands() {
			if err != nil {
				continue
			}
			fs.mu.Lock()
			fs.commands = append(fs.commands, cmd)
			fs.mu.Unlock()
		}
	}()

	go func() {
		defer close(fs.wrote)
		enc := protocol.NewEncoder(server)
		for _, frame := range frames {
			if err := enc.Write(frame); err != nil {
				return
			}
		}
		if closeAfter {
			_ = server.Close()
		}
	}()

	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return fs, client
}

// received closes the client end and returns everything the server read
func (fs *fakeServer) received(t *testing.T, client net.Conn) []protocol.Command {
	t.Helper()
	_ = client.Close()
	select {
	case <-fs.readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("fake server reader did not finish")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]protocol.Command(nil), fs.commands...)
}

func commandNames(cmds []protocol.Command) []protocol.CommandName {
	names := make([]protocol.CommandName, len(cmds))
	for i, c := range cmds {
		names[i] = c.Command
	}
	return names
}

func TestSessionPlaysToGameOver(t *testing.T) {
	fs, client := newFakeServer(t, false,
		protocol.Success("Game 'room1' created. Waiting for another player."),
		protocol.NewGameStart(model.SlotRight),
		protocol.NewGameState(model.Vec{400, 300}, [2]float64{250, 250}, [2]int{0, 0}),
		protocol.NewGameState(model.Vec{400, 300}, [2]float64{250, 250}, [2]int{1, 0}),
		protocol.NewGameOver(model.SlotLeft),
	)

	var buf bytes.Buffer
	session := NewSession(client, NewOutput("text", &buf), SessionOptions{})

	result, err := session.Run(context.Background(), protocol.CreateGame("room1", ""))
	require.NoError(t, err)

	assert.Equal(t, "room1", result.GameID)
	require.NotNil(t, result.Slot)
	assert.Equal(t, model.SlotRight, *result.Slot)
	require.NotNil(t, result.Winner)
	assert.Equal(t, model.SlotLeft, *result.Winner)
	assert.Equal(t, [2]int{1, 0}, result.Score)
	assert.Equal(t, 2, result.Frames)

	assert.Equal(t,
		[]protocol.CommandName{protocol.CmdCreateGame, protocol.CmdFinishConnection},
		commandNames(fs.received(t, client)))

	text := buf.String()
	assert.Contains(t, text, "[SUCCESS] Game 'room1' created.")
	assert.Contains(t, text, "You are player 1 (right paddle)")
	assert.Contains(t, text, "Score: 1 - 0")
	assert.Contains(t, text, "Player 0 (left) wins")
	assert.NotContains(t, text, "ball=")
}

func TestSessionVerbosePrintsStates(t *testing.T) {
	_, client := newFakeServer(t, false,
		protocol.NewGameStart(model.SlotLeft),
		protocol.NewGameState(model.Vec{405, 305}, [2]float64{250, 100}, [2]int{0, 0}),
		protocol.NewGameOver(model.SlotRight),
	)

	var buf bytes.Buffer
	session := NewSession(client, NewOutput("text", &buf), SessionOptions{Verbose: true})

	_, err := session.Run(context.Background(), protocol.JoinGame("room1", ""))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ball=(405.0, 305.0) paddles=(250, 100) score=0-0")
}

func TestSessionAcceptsGameStartBeforeSuccess(t *testing.T) {
	_, client := newFakeServer(t, false,
		protocol.NewGameStart(model.SlotRight),
		protocol.Success("Joined game 'room1'. The game is starting!"),
		protocol.NewGameOver(model.SlotRight),
	)

	session := NewSession(client, NewOutput("text", &bytes.Buffer{}), SessionOptions{})

	result, err := session.Run(context.Background(), protocol.JoinGame("room1", ""))
	require.NoError(t, err)
	require.NotNil(t, result.Slot)
	assert.Equal(t, model.SlotRight, *result.Slot)
}

func TestSessionRejected(t *testing.T) {
	fs, client := newFakeServer(t, false, protocol.Failure("Incorrect password."))

	var buf bytes.Buffer
	session := NewSession(client, NewOutput("text", &buf), SessionOptions{})

	result, err := session.Run(context.Background(), protocol.JoinGame("room1", "nope"))
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Incorrect password.")
	assert.Nil(t, result.Slot)
	assert.Contains(t, buf.String(), "[ERROR] Incorrect password.")

	cmds := fs.received(t, client)
	require.Len(t, cmds, 1)
	assert.Equal(t, protocol.JoinGame("room1", "nope"), cmds[0])
}

func TestSessionAutoplayTracksBall(t *testing.T) {
	fs, client := newFakeServer(t, false,
		protocol.NewGameStart(model.SlotLeft),
		// Centred ball keeps the paddle at its starting position
		protocol.NewGameState(model.Vec{400, 300}, [2]float64{250, 250}, [2]int{0, 0}),
		protocol.NewGameState(model.Vec{400, 20}, [2]float64{250, 250}, [2]int{0, 0}),
		protocol.NewGameState(model.Vec{400, 590}, [2]float64{0, 250}, [2]int{0, 0}),
		protocol.NewGameOver(model.SlotLeft),
	)

	session := NewSession(client, NewOutput("text", &bytes.Buffer{}), SessionOptions{Autoplay: true})

	_, err := session.Run(context.Background(), protocol.JoinGame("room1", ""))
	require.NoError(t, err)

	cmds := fs.received(t, client)
	require.Len(t, cmds, 4)
	assert.Equal(t, protocol.CmdJoinGame, cmds[0].Command)
	require.NotNil(t, cmds[1].Y)
	assert.InDelta(t, 0.0, *cmds[1].Y, 0)
	require.NotNil(t, cmds[2].Y)
	assert.InDelta(t, model.MaxPaddleY, *cmds[2].Y, 0)
	assert.Equal(t, protocol.CmdFinishConnection, cmds[3].Command)
}

func TestSessionServerClosesEarly(t *testing.T) {
	_, client := newFakeServer(t, true,
		protocol.Success("Game 'room1' created. Waiting for another player."),
	)

	session := NewSession(client, NewOutput("text", &bytes.Buffer{}), SessionOptions{})

	_, err := session.Run(context.Background(), protocol.CreateGame("room1", ""))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionStalledMatch(t *testing.T) {
	_, client := newFakeServer(t, false,
		protocol.Success("Joined game 'room1'. The game is starting!"),
		protocol.NewGameStart(model.SlotRight),
	)

	session := NewSession(client, NewOutput("text", &bytes.Buffer{}), SessionOptions{IdleTimeout: 20 * time.Millisecond})

	result, err := session.Run(context.Background(), protocol.JoinGame("room1", ""))
	require.ErrorIs(t, err, ErrStalled)
	require.NotNil(t, result.Slot)
}

func TestSessionCancelSendsFinish(t *testing.T) {
	fs, client := newFakeServer(t, false,
		protocol.Success("Game 'room1' created. Waiting for another player."),
	)

	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(client, NewOutput("text", &bytes.Buffer{}), SessionOptions{})

	errCh := make(chan error, 1)
	go func() {
		_, err := session.Run(ctx, protocol.CreateGame("room1", ""))
		errCh <- err
	}()

	<-fs.wrote
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancel")
	}

	assert.Equal(t,
		[]protocol.CommandName{protocol.CmdCreateGame, protocol.CmdFinishConnection},
		commandNames(fs.received(t, client)))
}
