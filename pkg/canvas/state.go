// Package canvas implements the client-side state engine for the drawing
// agent: the action union, the pure reducer, the event router, the derived
// status machine, and the staging pipeline that paces text reveal and
// stroke animation. All mutation flows through the reducer; everything
// else reads immutable snapshots.
package canvas

import "github.com/odvcencio/easel/pkg/protocol"

// AgentStatus is the single presentation-facing status derived from state.
type AgentStatus string

const (
	StatusPaused    AgentStatus = "paused"
	StatusError     AgentStatus = "error"
	StatusThinking  AgentStatus = "thinking"
	StatusExecuting AgentStatus = "executing"
	StatusDrawing   AgentStatus = "drawing"
	StatusIdle      AgentStatus = "idle"
)

// PendingStrokes is a promise of Count strokes retrievable via the fetch
// side channel, tied to a monotonically increasing batch id and the piece
// they belong to.
type PendingStrokes struct {
	Count       int
	BatchID     int
	PieceNumber int
}

// BufferItemKind tags a staging buffer entry.
type BufferItemKind string

const (
	ItemWords   BufferItemKind = "words"
	ItemStrokes BufferItemKind = "strokes"
)

// BufferItem is one unit of staged work: either a run of thinking text to
// reveal word-by-word, or a batch of strokes to animate point-by-point.
type BufferItem struct {
	Kind BufferItemKind

	// Words items.
	Text      string
	WordCount int

	// Strokes items. Batch boundaries are preserved: each
	// agent_strokes_ready batch animates as its own item.
	Strokes []protocol.Path
}

// PerformanceState is the staging pipeline: buffer -> onStage -> history,
// plus the animation cursors for whichever item is on stage.
type PerformanceState struct {
	Buffer  []BufferItem
	OnStage *BufferItem
	History []BufferItem

	// Stroke cursors.
	StrokeIndex      int
	StrokeProgress   int
	AgentStroke      []protocol.Point
	AgentStrokeStyle *protocol.PathStyle
	PenPosition      *protocol.Point
	PenDown          bool

	// Text cursors.
	RevealedText string
	WordIndex    int
}

// State is the whole client canvas state. It is structurally replaced on
// every action; readers between dispatches see an immutable snapshot.
type State struct {
	Strokes       []protocol.Path
	CurrentStroke []protocol.Point
	Messages      []protocol.AgentMessage
	Thinking      string
	Pending       *PendingStrokes
	PieceNumber   int

	// ViewingPiece is non-nil while the user browses the gallery;
	// live stroke batches are suppressed until it clears.
	ViewingPiece *int

	Paused  bool
	Gallery []protocol.GalleryCanvas

	CurrentIteration int
	MaxIterations    int

	Performance PerformanceState
}

// NewState returns the initial per-session state.
func NewState() *State {
	return &State{}
}

// LiveMessage returns the reserved still-streaming thinking message, or
// nil if none exists.
func (s *State) LiveMessage() *protocol.AgentMessage {
	for i := range s.Messages {
		if s.Messages[i].Live() {
			return &s.Messages[i]
		}
	}
	return nil
}

// clone returns a shallow copy. Reducer cases copy the slices they touch;
// untouched fields share backing storage with the previous state, which is
// safe because no state is ever mutated in place.
func (s *State) clone() *State {
	next := *s
	return &next
}
