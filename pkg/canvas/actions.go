package canvas

import (
	"time"

	"github.com/odvcencio/easel/pkg/protocol"
)

// Action is the interface for all state transitions. Every mutation of
// canvas state happens through reducing an Action; the router, the
// performer, and the stroke batch renderer all speak this union.
type Action interface {
	isAction()
}

// Sink receives actions. The router emits into a Sink so the caller
// controls the channel: direct dispatch, a queue, or a test recorder.
type Sink interface {
	Dispatch(Action)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Action)

// Dispatch calls f(a).
func (f SinkFunc) Dispatch(a Action) { f(a) }

// --- Staging pipeline ---

// EnqueueWords adds thinking text to the staging buffer. Consecutive word
// runs merge into one buffer item until the per-item word limit is hit.
type EnqueueWords struct {
	Text string
}

func (EnqueueWords) isAction() {}

// EnqueueStrokes appends a stroke batch to the staging buffer. Never
// merged: batch boundaries carry meaning for the stroke-id protocol.
type EnqueueStrokes struct {
	Strokes []protocol.Path
}

func (EnqueueStrokes) isAction() {}

// AdvanceStage moves buffer[0] on stage. No-op while something is already
// on stage or the buffer is empty.
type AdvanceStage struct{}

func (AdvanceStage) isAction() {}

// StrokeProgress appends one point to the in-flight agent stroke. Style is
// captured only on the first point of a stroke; later values are ignored.
type StrokeProgress struct {
	Point protocol.Point
	Style *protocol.PathStyle
}

func (StrokeProgress) isAction() {}

// StrokeComplete finalizes the current on-stage stroke into State.Strokes.
type StrokeComplete struct{}

func (StrokeComplete) isAction() {}

// RevealWord advances the text reveal cursor by the configured chunk size.
type RevealWord struct{}

func (RevealWord) isAction() {}

// StageComplete retires the on-stage item into history.
type StageComplete struct{}

func (StageComplete) isAction() {}

// --- Stroke batches ---

// StrokesReady records a server stroke-ready signal. The reducer applies
// the staleness and forward-sync policy; stale batches are dropped.
type StrokesReady struct {
	Count       int
	BatchID     int
	PieceNumber int
}

func (StrokesReady) isAction() {}

// ClearPendingStrokes clears the pending-strokes promise once the batch
// has been fetched and queued.
type ClearPendingStrokes struct{}

func (ClearPendingStrokes) isAction() {}

// AddStroke appends a finished path directly to the canvas, bypassing the
// staging pipeline. Clears any in-flight agent stroke.
type AddStroke struct {
	Path protocol.Path
}

func (AddStroke) isAction() {}

// SetPen moves the pen for real-time preview. Points accumulate into the
// human's current stroke or the agent's in-flight stroke by author.
type SetPen struct {
	X, Y   float64
	Down   bool
	Author protocol.Author
}

func (SetPen) isAction() {}

// --- Messages and session ---

// AppendMessage appends one archived agent message.
type AppendMessage struct {
	Message protocol.AgentMessage
}

func (AppendMessage) isAction() {}

// AppendThinking appends a delta to both the live thinking message and
// the concatenated thinking text.
type AppendThinking struct {
	Text      string
	Iteration int
	Timestamp time.Time
}

func (AppendThinking) isAction() {}

// SetIteration updates agent loop progress. Status-neutral.
type SetIteration struct {
	Current int
	Max     int
}

func (SetIteration) isAction() {}

// SetPaused mirrors the server pause state. Touches nothing else.
type SetPaused struct {
	Paused bool
}

func (SetPaused) isAction() {}

// SetGallery replaces the gallery listing wholesale. Last write wins.
type SetGallery struct {
	Canvases []protocol.GalleryCanvas
}

func (SetGallery) isAction() {}

// SetPieceNumber sets the current piece number.
type SetPieceNumber struct {
	Number int
}

func (SetPieceNumber) isAction() {}

// ViewPiece opens gallery browsing on a piece, or closes it with nil.
// While browsing, live stroke batches are suppressed.
type ViewPiece struct {
	Piece *int
}

func (ViewPiece) isAction() {}

// ClearCanvas resets to initial state for a new piece, preserving the
// connection-scoped pause flag and gallery.
type ClearCanvas struct{}

func (ClearCanvas) isAction() {}
