package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// MaxMessageSize caps a single frame body.
const MaxMessageSize = 1 << 20

// ErrMessageTooLarge is returned by Decode for frames above MaxMessageSize.
var ErrMessageTooLarge = errors.New("message too large")

// MsgType identifies the type of network message.
type MsgType string

const (
	MsgJoin    MsgType = "join"
	MsgWelcome MsgType = "welcome"
	MsgCommand MsgType = "command"
	MsgState   MsgType = "state"
	MsgError   MsgType = "error"
)

// Envelope wraps all messages with a type discriminator for deserialization.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Spectator → Server Messages ---

// JoinMsg is sent by a spectator to attach to the session.
type JoinMsg struct {
	Name string `json:"name"`
}

// Command names accepted in CommandMsg.
const (
	CommandSteer     = "steer"
	CommandPause     = "pause"
	CommandStep      = "step"
	CommandSpeed     = "speed"
	CommandAutopilot = "autopilot"
	CommandRestart   = "restart"
)

// CommandMsg is a control command from a spectator.
type CommandMsg struct {
	Command   string             `json:"command"`
	Direction pathfind.Direction `json:"direction,omitempty"`
	Speed     int                `json:"speed,omitempty"`
}

// --- Server → Spectator Messages ---

// WelcomeMsg is sent to a spectator after joining.
type WelcomeMsg struct {
	SpectatorID string      `json:"spectator_id"`
	SessionID   string      `json:"session_id"`
	Config      game.Config `json:"config"`
}

// StateMsg is the full session state broadcast after every tick.
type StateMsg struct {
	State game.GameState `json:"state"`
}

// ErrorMsg notifies a spectator of an error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// ToCommand maps a wire command onto an engine command.
func (m CommandMsg) ToCommand(source string) (game.Command, error) {
	cmd := game.Command{Source: source}
	switch m.Command {
	case CommandSteer:
		if m.Direction == pathfind.None {
			return cmd, fmt.Errorf("steer requires a direction")
		}
		cmd.Type = game.CmdSteer
		cmd.Dir = m.Direction
	case CommandPause:
		cmd.Type = game.CmdPause
	case CommandStep:
		cmd.Type = game.CmdStep
	case CommandSpeed:
		if m.Speed < 0 {
			return cmd, fmt.Errorf("speed must not be negative, got %d", m.Speed)
		}
		cmd.Type = game.CmdSpeed
		cmd.Speed = m.Speed
	case CommandAutopilot:
		cmd.Type = game.CmdAutopilot
	case CommandRestart:
		cmd.Type = game.CmdRestart
	default:
		return cmd, fmt.Errorf("unknown command %q", m.Command)
	}
	return cmd, nil
}

// Encode serializes a message and writes it to the writer.
// Format: [4-byte big-endian length][JSON envelope]
func Encode(w io.Writer, msgType MsgType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	body, err := json.Marshal(Envelope{Type: msgType, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(body))
	}

	// Header and body in one write so concurrent frames never interleave
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Decode reads a length-prefixed JSON message from the reader.
func Decode(r io.Reader) (*Envelope, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// DecodePayload unmarshals the payload from an envelope into the target struct.
func DecodePayload(env *Envelope, target interface{}) error {
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return nil
}
