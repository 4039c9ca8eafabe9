package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event is the tagged union of server-sent events. The concrete type is
// selected by the "type" field on the wire; DecodeEvent performs that
// dispatch. All event state mutation happens downstream, in the canvas
// reducer — events themselves are inert data.
type Event interface {
	isEvent()
}

// ErrUnknownEvent is returned by DecodeEvent for a well-formed envelope
// whose type the client does not recognize. Callers are expected to drop
// the event rather than fail the stream.
var ErrUnknownEvent = errors.New("protocol: unknown event type")

// ThinkingDelta carries an incremental chunk of the agent's live
// thinking text.
type ThinkingDelta struct {
	Text      string `json:"text"`
	Iteration int    `json:"iteration,omitempty"`
}

func (ThinkingDelta) isEvent() {}

// Execution status values for CodeExecution events.
const (
	ExecutionStarted   = "started"
	ExecutionCompleted = "completed"
)

// CodeExecution reports a tool-execution transition. A started/completed
// pair is matched by (ToolName, Iteration), never by message id.
type CodeExecution struct {
	Status     string `json:"status"`
	ToolName   string `json:"tool_name"`
	ToolInput  string `json:"tool_input,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ReturnCode *int   `json:"return_code,omitempty"`
	Iteration  int    `json:"iteration"`
}

func (CodeExecution) isEvent() {}

// AgentStrokesReady announces that Count strokes for batch BatchID are
// available via the stroke fetch side channel.
type AgentStrokesReady struct {
	Count       int `json:"count"`
	BatchID     int `json:"batch_id"`
	PieceNumber int `json:"piece_number"`
}

func (AgentStrokesReady) isEvent() {}

// HumanStroke delivers a finished stroke drawn by a human collaborator.
// These bypass the animation pipeline and render immediately.
type HumanStroke struct {
	Path Path `json:"path"`
}

func (HumanStroke) isEvent() {}

// PieceState announces the current piece number.
type PieceState struct {
	Number int `json:"number"`
}

func (PieceState) isEvent() {}

// GalleryUpdate replaces the gallery listing wholesale.
type GalleryUpdate struct {
	Canvases []GalleryCanvas `json:"canvases"`
}

func (GalleryUpdate) isEvent() {}

// Iteration reports agent loop progress.
type Iteration struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func (Iteration) isEvent() {}

// Paused reflects the server-side pause state.
type Paused struct {
	Paused bool `json:"paused"`
}

func (Paused) isEvent() {}

// ErrorEvent surfaces a server-side failure.
type ErrorEvent struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (ErrorEvent) isEvent() {}

// Clear resets the canvas for a new piece.
type Clear struct{}

func (Clear) isEvent() {}

// DecodeEvent parses one server event from its JSON wire form. Unknown
// event types return ErrUnknownEvent; malformed JSON returns a decode
// error. Neither is fatal to the stream.
func DecodeEvent(data []byte) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	var (
		ev  Event
		err error
	)
	switch envelope.Type {
	case "thinking_delta":
		ev, err = decodeAs[ThinkingDelta](data)
	case "code_execution":
		ev, err = decodeAs[CodeExecution](data)
	case "agent_strokes_ready":
		ev, err = decodeAs[AgentStrokesReady](data)
	case "human_stroke":
		ev, err = decodeAs[HumanStroke](data)
	case "piece_state":
		ev, err = decodeAs[PieceState](data)
	case "gallery_update":
		ev, err = decodeAs[GalleryUpdate](data)
	case "iteration":
		ev, err = decodeAs[Iteration](data)
	case "paused":
		ev, err = decodeAs[Paused](data)
	case "error":
		ev, err = decodeAs[ErrorEvent](data)
	case "clear":
		ev = Clear{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", envelope.Type, err)
	}
	return ev, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
