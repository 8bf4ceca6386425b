package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/protocol"
)

func TestOutputText(t *testing.T) {
	created := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	slot := model.SlotRight

	tests := []struct {
		name     string
		data     any
		contains []string
	}{
		{
			name:     "health",
			data:     HealthResult{Status: "ok"},
			contains: []string{"Status: ok"},
		},
		{
			name:     "stats",
			data:     Stats{Connections: 3, Lobbies: 1, Matches: 1},
			contains: []string{"Connections: 3", "Lobbies: 1", "Matches: 1"},
		},
		{
			name:     "empty lobbies",
			data:     LobbyList{},
			contains: []string{"No open games."},
		},
		{
			name: "lobbies",
			data: LobbyList{Lobbies: []Lobby{
				{ID: "open", CreatedAt: created},
				{ID: "locked", HasPassword: true, CreatedAt: created},
			}},
			contains: []string{"Open games (2):", "- open (waiting since 15:04:05)", "- locked [password]"},
		},
		{
			name:     "empty matches",
			data:     MatchList{},
			contains: []string{"No matches in progress."},
		},
		{
			name:     "matches",
			data:     MatchList{Matches: []Match{{ID: "room1", Score: [2]int{2, 4}}}},
			contains: []string{"Matches in progress (1):", "- room1  2 - 4"},
		},
		{
			name:     "match",
			data:     Match{ID: "room1", Score: [2]int{1, 0}, StartedAt: created, UpdatedAt: created},
			contains: []string{"Match: room1", "Score: 1 - 0", "Started: 2026-01-02T15:04:05Z"},
		},
		{
			name:     "session result",
			data:     SessionResult{GameID: "room1", Slot: &slot, Winner: &slot, Score: [2]int{3, 5}, Frames: 900},
			contains: []string{"Game: room1", "You were player 1", "Final score: 3 - 5", "Winner: player 1", "Frames received: 900"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewOutput("text", &buf).Print(tt.data)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).Print(Stats{Connections: 2, Lobbies: 0, Matches: 1})

	var got Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, Stats{Connections: 2, Matches: 1}, got)
}

func TestOutputJSONFramesAreOnePerLine(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("json", &buf)

	out.PrintFrame(protocol.ServerMessage{Type: protocol.TypeGameStart, PlayerID: model.SlotLeft}, false)
	out.PrintFrame(protocol.ServerMessage{Type: protocol.TypeGameState, Ball: model.Vec{1, 2}}, false)
	out.PrintScore([2]int{1, 0})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var state protocol.ServerMessage
	require.NoError(t, json.Unmarshal(lines[1], &state))
	assert.Equal(t, protocol.TypeGameState, state.Type)
	assert.Equal(t, model.Vec{1, 2}, state.Ball)
}
