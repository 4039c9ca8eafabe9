package canvas

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/easel/pkg/observability"
	"github.com/odvcencio/easel/pkg/protocol"
)

// Metadata keys on code_execution messages. Start/complete pairs match on
// tool name + iteration, never on message id.
const (
	MetaToolName   = "tool_name"
	MetaIteration  = "iteration"
	MetaReturnCode = "return_code"
	MetaStdout     = "stdout"
	MetaStderr     = "stderr"
	MetaDetails    = "details"
)

// Router maps incoming server events to zero or more actions on a Sink.
// It never touches state and never fails on a well-formed event; events it
// cannot use are dropped and counted.
type Router struct {
	sink   Sink
	logger *observability.Logger
	now    func() time.Time
	newID  func() string
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithClock overrides the router's timestamp source. Tests use this to
// pin message timestamps.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// WithIDSource overrides archived-message id generation.
func WithIDSource(newID func() string) RouterOption {
	return func(r *Router) { r.newID = newID }
}

// NewRouter builds a router emitting into sink.
func NewRouter(sink Sink, logger *observability.Logger, opts ...RouterOption) *Router {
	r := &Router{
		sink:   sink,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route dispatches the actions for one server event. Unknown event types
// emit nothing.
func (r *Router) Route(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.ThinkingDelta:
		// One event feeds both consumers: the live header text and the
		// paced reveal pipeline.
		r.emit("thinking_delta", AppendThinking{
			Text:      e.Text,
			Iteration: e.Iteration,
			Timestamp: r.now(),
		})
		r.emit("thinking_delta", EnqueueWords{Text: e.Text})

	case protocol.CodeExecution:
		r.emit("code_execution", AppendMessage{Message: r.executionMessage(e)})

	case protocol.AgentStrokesReady:
		// Acceptance policy lives in the reducer, not here.
		r.emit("agent_strokes_ready", StrokesReady{
			Count:       e.Count,
			BatchID:     e.BatchID,
			PieceNumber: e.PieceNumber,
		})

	case protocol.HumanStroke:
		path := e.Path
		if path.Author == "" {
			path.Author = protocol.AuthorHuman
		}
		r.emit("human_stroke", AddStroke{Path: path})

	case protocol.PieceState:
		r.emit("piece_state", SetPieceNumber{Number: e.Number})

	case protocol.GalleryUpdate:
		r.emit("gallery_update", SetGallery{Canvases: e.Canvases})

	case protocol.Iteration:
		r.emit("iteration", SetIteration{Current: e.Current, Max: e.Max})

	case protocol.Paused:
		r.emit("paused", SetPaused{Paused: e.Paused})

	case protocol.ErrorEvent:
		r.emit("error", AppendMessage{Message: protocol.AgentMessage{
			ID:        r.newID(),
			Type:      protocol.MessageError,
			Text:      e.Message,
			Timestamp: r.now(),
			Metadata:  map[string]any{MetaDetails: e.Details},
		}})

	case protocol.Clear:
		r.emit("clear", ClearCanvas{})

	default:
		observability.EventsDropped.WithLabelValues("unknown").Inc()
		if r.logger != nil {
			r.logger.Debug("dropping unroutable event", slog.Any("event", ev))
		}
	}
}

func (r *Router) emit(eventType string, a Action) {
	observability.EventsRouted.WithLabelValues(eventType).Inc()
	r.sink.Dispatch(a)
}

func (r *Router) executionMessage(e protocol.CodeExecution) protocol.AgentMessage {
	meta := map[string]any{
		MetaToolName:  e.ToolName,
		MetaIteration: e.Iteration,
	}
	text := e.ToolName
	// Only completion messages carry a return code; its absence marks the
	// started half of the pair as still in progress.
	if e.Status == protocol.ExecutionCompleted {
		rc := 0
		if e.ReturnCode != nil {
			rc = *e.ReturnCode
		}
		meta[MetaReturnCode] = rc
		if e.Stdout != "" {
			meta[MetaStdout] = e.Stdout
		}
		if e.Stderr != "" {
			meta[MetaStderr] = e.Stderr
		}
	}
	return protocol.AgentMessage{
		ID:        r.newID(),
		Type:      protocol.MessageCodeExecution,
		Text:      text,
		Timestamp: r.now(),
		Iteration: e.Iteration,
		Metadata:  meta,
	}
}
