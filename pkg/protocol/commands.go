package protocol

import (
	"encoding/json"
	"errors"
)

// ErrUnknownCommand is returned by EncodeCommand for a command type it
// does not recognize.
var ErrUnknownCommand = errors.New("protocol: unknown command type")

// Command is the tagged union of client-to-server commands. The state
// engine never sends these itself; they exist so transports and UIs share
// one encoding.
type Command interface {
	isCommand()
}

// PauseCommand asks the agent to pause after the current operation.
type PauseCommand struct{}

func (PauseCommand) isCommand() {}

// ResumeCommand asks a paused agent to continue.
type ResumeCommand struct{}

func (ResumeCommand) isCommand() {}

// StrokeCommand submits a human-drawn stroke to the server.
type StrokeCommand struct {
	Points []Point `json:"points"`
}

func (StrokeCommand) isCommand() {}

// EncodeCommand renders a command in its JSON wire form, with the "type"
// tag the server dispatches on.
func EncodeCommand(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case PauseCommand:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: "pause"})
	case ResumeCommand:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: "resume"})
	case StrokeCommand:
		return json.Marshal(struct {
			Type   string  `json:"type"`
			Points []Point `json:"points"`
		}{Type: "stroke", Points: c.Points})
	default:
		return nil, ErrUnknownCommand
	}
}
