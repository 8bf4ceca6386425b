package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/mcoot/netpong/internal/model"
)

// MaxFrameSize bounds a single inbound line
const MaxFrameSize = 64 * 1024

// ProtocolError reports a single malformed frame. The stream it came from remains usable.
type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	line := e.Line
	if len(line) > 80 {
		line = line[:80] + "..."
	}
	return fmt.Sprintf("malformed frame %q: %v", line, e.Err)
}

// Unwrap exposes both model.ErrProtocol and the underlying decode error
func (e *ProtocolError) Unwrap() []error {
	return []error{model.ErrProtocol, e.Err}
}

var errMissingCommand = errors.New("missing command field")

// Encode serializes msg as a single newline-terminated JSON frame
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Encoder writes frames to a stream. It is not safe for concurrent use.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Write encodes msg and writes it as one frame
func (e *Encoder) Write(msg any) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	_, err = e.w.Write(frame)
	return err
}

// Decoder splits a stream into frames. Ranging over one of its sequences a
// second time resumes where the previous range stopped.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a Decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &Decoder{scanner: scanner}
}

// Lines yields each non-blank line without its terminator. A stream error is
// yielded once and ends the sequence; io.EOF ends it silently.
func (d *Decoder) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for d.scanner.Scan() {
			line := bytes.TrimSpace(d.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if err := d.scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Commands yields decoded client commands. Malformed frames yield a
// *ProtocolError and the sequence continues with the next line.
func (d *Decoder) Commands() iter.Seq2[Command, error] {
	return decodeAll(d, DecodeCommand)
}

// ServerMessages yields decoded server frames, for use by clients
func (d *Decoder) ServerMessages() iter.Seq2[ServerMessage, error] {
	return decodeAll(d, DecodeServerMessage)
}

func decodeAll[T any](d *Decoder, decode func([]byte) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for line, err := range d.Lines() {
			if err != nil {
				yield(zero, err)
				return
			}
			msg, err := decode(line)
			if !yield(msg, err) {
				return
			}
		}
	}
}

// DecodeCommand parses one client frame
func DecodeCommand(line []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, &ProtocolError{Line: string(line), Err: err}
	}
	if cmd.Command == "" {
		return Command{}, &ProtocolError{Line: string(line), Err: errMissingCommand}
	}
	if cmd.Command == CmdUpdateBlock && cmd.Y == nil {
		return Command{}, &ProtocolError{Line: string(line), Err: errors.New("UPDATE_BLOCK requires numeric y")}
	}
	return cmd, nil
}

// DecodeServerMessage parses one server frame
func DecodeServerMessage(line []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return ServerMessage{}, &ProtocolError{Line: string(line), Err: err}
	}
	if msg.Type == "" && msg.Status == "" {
		return ServerMessage{}, &ProtocolError{Line: string(line), Err: errors.New("missing type or status field")}
	}
	return msg, nil
}
