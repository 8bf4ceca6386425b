package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mcoot/netpong/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintFrame outputs one server frame. JSON output emits every frame as a
// compact line; text output skips GAME_STATE frames unless verbose.
func (o *Output) PrintFrame(msg protocol.ServerMessage, verbose bool) {
	if o.format == "json" {
		data, _ := json.Marshal(msg)
		fmt.Fprintln(o.w, string(data))
		return
	}

	switch {
	case msg.IsStatus():
		fmt.Fprintf(o.w, "[%s] %s\n", msg.Status, msg.Message)
	case msg.Type == protocol.TypeGameStart:
		fmt.Fprintf(o.w, "Game starting. You are player %d (%s paddle).\n", msg.PlayerID, sideName(int(msg.PlayerID)))
	case msg.Type == protocol.TypeGameState:
		if verbose {
			fmt.Fprintf(o.w, "ball=(%.1f, %.1f) paddles=(%.0f, %.0f) score=%d-%d\n",
				msg.Ball[0], msg.Ball[1], msg.Player1Y, msg.Player2Y, msg.Score[0], msg.Score[1])
		}
	case msg.Type == protocol.TypeGameOver:
		fmt.Fprintf(o.w, "Game over. Player %d (%s) wins.\n", msg.Winner, sideName(int(msg.Winner)))
	}
}

// PrintScore outputs a score change during a match
func (o *Output) PrintScore(score [2]int) {
	if o.format == "json" {
		return
	}
	fmt.Fprintf(o.w, "Score: %d - %d\n", score[0], score[1])
}

func sideName(slot int) string {
	if slot == 0 {
		return "left"
	}
	return "right"
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case Stats:
		fmt.Fprintf(o.w, "Connections: %d\nLobbies: %d\nMatches: %d\n", v.Connections, v.Lobbies, v.Matches)
	case LobbyList:
		o.printLobbies(v)
	case MatchList:
		o.printMatches(v)
	case Match:
		o.printMatch(v)
	case SessionResult:
		o.printSessionResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Stats response type
type Stats struct {
	Connections int `json:"connections"`
	Lobbies     int `json:"lobbies"`
	Matches     int `json:"matches"`
}

// Lobby response type
type Lobby struct {
	ID          string    `json:"id"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// LobbyList response type
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// Match response type
type Match struct {
	ID        string    `json:"id"`
	Score     [2]int    `json:"score"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchList response type
type MatchList struct {
	Matches []Match `json:"matches"`
}

func (o *Output) printLobbies(l LobbyList) {
	if len(l.Lobbies) == 0 {
		fmt.Fprintln(o.w, "No open games.")
		return
	}
	fmt.Fprintf(o.w, "Open games (%d):\n", len(l.Lobbies))
	for _, lobby := range l.Lobbies {
		lock := ""
		if lobby.HasPassword {
			lock = " [password]"
		}
		fmt.Fprintf(o.w, "  - %s%s (waiting since %s)\n", lobby.ID, lock, lobby.CreatedAt.Format(time.TimeOnly))
	}
}

func (o *Output) printMatches(m MatchList) {
	if len(m.Matches) == 0 {
		fmt.Fprintln(o.w, "No matches in progress.")
		return
	}
	fmt.Fprintf(o.w, "Matches in progress (%d):\n", len(m.Matches))
	for _, match := range m.Matches {
		fmt.Fprintf(o.w, "  - %s  %d - %d\n", match.ID, match.Score[0], match.Score[1])
	}
}

func (o *Output) printMatch(m Match) {
	fmt.Fprintf(o.w, "Match: %s\n", m.ID)
	fmt.Fprintf(o.w, "Score: %d - %d\n", m.Score[0], m.Score[1])
	fmt.Fprintf(o.w, "Started: %s\n", m.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(o.w, "Last point: %s\n", m.UpdatedAt.Format(time.RFC3339))
}

func (o *Output) printSessionResult(r SessionResult) {
	fmt.Fprintf(o.w, "Game: %s\n", r.GameID)
	if r.Slot != nil {
		fmt.Fprintf(o.w, "You were player %d\n", *r.Slot)
	}
	fmt.Fprintf(o.w, "Final score: %d - %d\n", r.Score[0], r.Score[1])
	if r.Winner != nil {
		fmt.Fprintf(o.w, "Winner: player %d\n", *r.Winner)
	}
	fmt.Fprintf(o.w, "Frames received: %d\n", r.Frames)
}
