package canvas

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/easel/pkg/protocol"
)

func intPtr(n int) *int { return &n }

func TestReducer_UnknownActionReturnsSamePointer(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	type bogus struct{ Action }
	next := r.Reduce(s, bogus{})
	assert.Same(t, s, next, "unknown actions must preserve referential identity")
}

func TestReducer_EnqueueWords_MergesConsecutiveChunks(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	for _, text := range []string{"First ", "second ", "third"} {
		s = r.Reduce(s, EnqueueWords{Text: text})
	}

	require.Len(t, s.Performance.Buffer, 1)
	item := s.Performance.Buffer[0]
	assert.Equal(t, ItemWords, item.Kind)
	assert.Equal(t, "First second third", item.Text)
	assert.Equal(t, 3, item.WordCount)
}

func TestReducer_EnqueueWords_WordLimitStartsNewItem(t *testing.T) {
	r := NewReducer(Limits{MaxWordsPerItem: 25, RevealChunkSize: 3})
	s := NewState()

	thirty := strings.TrimSpace(strings.Repeat("word ", 30))
	s = r.Reduce(s, EnqueueWords{Text: thirty})
	s = r.Reduce(s, EnqueueWords{Text: " two more"})

	require.Len(t, s.Performance.Buffer, 2)
	assert.Equal(t, 30, s.Performance.Buffer[0].WordCount)
	assert.Equal(t, 2, s.Performance.Buffer[1].WordCount)
}

func TestReducer_EnqueueWords_NeverMergesIntoOnStage(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	s = r.Reduce(s, EnqueueWords{Text: "staged text"})
	s = r.Reduce(s, AdvanceStage{})
	require.NotNil(t, s.Performance.OnStage)
	require.Empty(t, s.Performance.Buffer)

	s = r.Reduce(s, EnqueueWords{Text: "new text"})
	require.Len(t, s.Performance.Buffer, 1)
	assert.Equal(t, "staged text", s.Performance.OnStage.Text)
	assert.Equal(t, "new text", s.Performance.Buffer[0].Text)
}

func TestReducer_EnqueueStrokes_NeverMerges(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	batch := []protocol.Path{{Type: protocol.PathLine, Points: []protocol.Point{{X: 1, Y: 1}}}}
	s = r.Reduce(s, EnqueueStrokes{Strokes: batch})
	s = r.Reduce(s, EnqueueStrokes{Strokes: batch})

	require.Len(t, s.Performance.Buffer, 2, "stroke batches keep their boundaries")
}

func TestReducer_AdvanceStage(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	// Empty buffer: no-op.
	assert.Same(t, s, r.Reduce(s, AdvanceStage{}))

	s = r.Reduce(s, EnqueueWords{Text: "hello world"})
	s = r.Reduce(s, AdvanceStage{})
	require.NotNil(t, s.Performance.OnStage)
	assert.Empty(t, s.Performance.Buffer)
	assert.Equal(t, 0, s.Performance.WordIndex)
	assert.Equal(t, "", s.Performance.RevealedText)

	// Occupied stage: no-op even with a waiting item.
	s = r.Reduce(s, EnqueueWords{Text: "more"})
	occupied := r.Reduce(s, AdvanceStage{})
	assert.Same(t, s, occupied)
}

func TestReducer_StageRoundTrip(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	strokes := []protocol.Path{
		{Type: protocol.PathLine, Points: []protocol.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}},
		{Type: protocol.PathLine, Points: []protocol.Point{{X: 5, Y: 5}, {X: 9, Y: 1}}},
	}
	s = r.Reduce(s, EnqueueStrokes{Strokes: strokes})
	s = r.Reduce(s, AdvanceStage{})

	for range strokes {
		s = r.Reduce(s, StrokeComplete{})
	}
	s = r.Reduce(s, StageComplete{})

	assert.Nil(t, s.Performance.OnStage)
	assert.Len(t, s.Performance.History, 1)
	assert.Len(t, s.Strokes, 2)
}

func TestReducer_StrokeProgress_StyleFixedAtStrokeStart(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	red := &protocol.PathStyle{Color: "red"}
	blue := &protocol.PathStyle{Color: "blue"}

	s = r.Reduce(s, StrokeProgress{Point: protocol.Point{X: 1, Y: 1}, Style: red})
	s = r.Reduce(s, StrokeProgress{Point: protocol.Point{X: 2, Y: 2}, Style: blue})

	require.NotNil(t, s.Performance.AgentStrokeStyle)
	assert.Equal(t, "red", s.Performance.AgentStrokeStyle.Color)
	assert.Len(t, s.Performance.AgentStroke, 2)
	assert.True(t, s.Performance.PenDown)
	require.NotNil(t, s.Performance.PenPosition)
	assert.Equal(t, 2.0, s.Performance.PenPosition.X)
}

func TestReducer_StrokeComplete_GuardsAndClearsCursors(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	// Nothing on stage: no-op.
	assert.Same(t, s, r.Reduce(s, StrokeComplete{}))

	// Words on stage: no-op.
	s = r.Reduce(s, EnqueueWords{Text: "words"})
	s = r.Reduce(s, AdvanceStage{})
	assert.Same(t, s, r.Reduce(s, StrokeComplete{}))
	s = r.Reduce(s, StageComplete{})

	strokes := []protocol.Path{{Type: protocol.PathLine, Points: []protocol.Point{{X: 0, Y: 0}}}}
	s = r.Reduce(s, EnqueueStrokes{Strokes: strokes})
	s = r.Reduce(s, AdvanceStage{})
	s = r.Reduce(s, StrokeProgress{Point: protocol.Point{X: 0, Y: 0}, Style: &protocol.PathStyle{Color: "red"}})

	s = r.Reduce(s, StrokeComplete{})
	assert.Len(t, s.Strokes, 1)
	assert.Equal(t, 1, s.Performance.StrokeIndex)
	assert.Empty(t, s.Performance.AgentStroke)
	assert.Nil(t, s.Performance.AgentStrokeStyle)
	assert.False(t, s.Performance.PenDown)

	// All strokes finalized: further completes are no-ops.
	assert.Same(t, s, r.Reduce(s, StrokeComplete{}))
}

func TestReducer_RevealWord(t *testing.T) {
	r := NewReducer(Limits{MaxWordsPerItem: 25, RevealChunkSize: 3})
	s := NewState()

	s = r.Reduce(s, EnqueueWords{Text: "one two three four five"})
	s = r.Reduce(s, AdvanceStage{})

	s = r.Reduce(s, RevealWord{})
	assert.Equal(t, "one two three", s.Performance.RevealedText)
	assert.Equal(t, 3, s.Performance.WordIndex)

	s = r.Reduce(s, RevealWord{})
	assert.Equal(t, "one two three four five", s.Performance.RevealedText)
	assert.Equal(t, 5, s.Performance.WordIndex, "cursor is bounded by the word count")

	assert.Same(t, s, r.Reduce(s, RevealWord{}))
}

func TestReducer_StrokesReady_StaleBatchesDropped(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	s = r.Reduce(s, SetPieceNumber{Number: 3})

	for _, piece := range []int{2, 1, 0} {
		next := r.Reduce(s, StrokesReady{Count: 4, BatchID: 9, PieceNumber: piece})
		assert.Same(t, s, next, "stale piece %d must be dropped", piece)
	}
	assert.Nil(t, s.Pending)
	assert.Equal(t, 3, s.PieceNumber)
}

func TestReducer_StrokesReady_ForwardSync(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	s = r.Reduce(s, SetPieceNumber{Number: 1})

	s = r.Reduce(s, StrokesReady{Count: 2, BatchID: 7, PieceNumber: 4})
	require.NotNil(t, s.Pending)
	assert.Equal(t, 4, s.Pending.PieceNumber)
	assert.Equal(t, 4, s.PieceNumber, "piece number forward-syncs to the batch")
	assert.Equal(t, 7, s.Pending.BatchID)
	assert.Equal(t, 2, s.Pending.Count)
}

func TestReducer_StrokesReady_SuppressedWhileViewingPiece(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	s = r.Reduce(s, ViewPiece{Piece: intPtr(2)})

	next := r.Reduce(s, StrokesReady{Count: 1, BatchID: 1, PieceNumber: 5})
	assert.Same(t, s, next)
	assert.Nil(t, next.Pending)

	s = r.Reduce(s, ViewPiece{Piece: nil})
	s = r.Reduce(s, StrokesReady{Count: 1, BatchID: 1, PieceNumber: 5})
	assert.NotNil(t, s.Pending)
}

func TestReducer_AddStroke_ClearsInFlightAgentStroke(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	s = r.Reduce(s, StrokeProgress{Point: protocol.Point{X: 1, Y: 1}})
	require.NotEmpty(t, s.Performance.AgentStroke)

	path := protocol.Path{
		Type:   protocol.PathLine,
		Points: []protocol.Point{{X: 0, Y: 0}, {X: 100, Y: 100}},
		Author: protocol.AuthorHuman,
	}
	s = r.Reduce(s, AddStroke{Path: path})

	require.Len(t, s.Strokes, 1)
	assert.Equal(t, path.Points, s.Strokes[0].Points)
	assert.Empty(t, s.Performance.AgentStroke)
	assert.False(t, s.Performance.PenDown)
}

func TestReducer_SetPen_RoutesByAuthor(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	s = r.Reduce(s, SetPen{X: 1, Y: 2, Down: true, Author: protocol.AuthorHuman})
	s = r.Reduce(s, SetPen{X: 3, Y: 4, Down: true, Author: protocol.AuthorAgent})

	assert.Len(t, s.CurrentStroke, 1)
	assert.Len(t, s.Performance.AgentStroke, 1)

	s = r.Reduce(s, SetPen{X: 5, Y: 6, Down: false, Author: protocol.AuthorAgent})
	assert.False(t, s.Performance.PenDown)
	assert.Len(t, s.Performance.AgentStroke, 1, "pen-up does not accumulate points")
}

func TestReducer_PieceNumberNeverDecreases(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	s = r.Reduce(s, SetPieceNumber{Number: 5})

	next := r.Reduce(s, SetPieceNumber{Number: 2})
	assert.Same(t, s, next)
	assert.Equal(t, 5, next.PieceNumber)
}

func TestReducer_ClearCanvas_PreservesConnectionScopedFields(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()

	s = r.Reduce(s, SetPaused{Paused: true})
	s = r.Reduce(s, SetGallery{Canvases: []protocol.GalleryCanvas{{PieceNumber: 1}}})
	s = r.Reduce(s, SetPieceNumber{Number: 3})
	s = r.Reduce(s, EnqueueWords{Text: "pending text"})
	s = r.Reduce(s, AddStroke{Path: protocol.Path{Type: protocol.PathLine, Points: []protocol.Point{{X: 1, Y: 1}}}})

	s = r.Reduce(s, ClearCanvas{})

	assert.True(t, s.Paused, "pause survives clear")
	assert.Len(t, s.Gallery, 1, "gallery survives clear")
	assert.Zero(t, s.PieceNumber)
	assert.Empty(t, s.Strokes)
	assert.Empty(t, s.Performance.Buffer)
	assert.Empty(t, s.Thinking)
}

func TestReducer_AppendThinking_LiveMessageLifecycle(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	s = r.Reduce(s, AppendThinking{Text: "I'll draw ", Iteration: 1, Timestamp: now})
	s = r.Reduce(s, AppendThinking{Text: "a line.", Iteration: 1, Timestamp: now})

	assert.Equal(t, "I'll draw a line.", s.Thinking)
	require.Len(t, s.Messages, 1)
	live := s.LiveMessage()
	require.NotNil(t, live)
	assert.Equal(t, "I'll draw a line.", live.Text)

	// A non-thinking message archives the live message.
	s = r.Reduce(s, AppendMessage{Message: protocol.AgentMessage{
		ID:   "m-1",
		Type: protocol.MessageCodeExecution,
	}})
	assert.Nil(t, s.LiveMessage())
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "I'll draw a line.", s.Messages[0].Text, "archived message keeps its text")
}

func TestReducer_InputStateIsNeverMutated(t *testing.T) {
	r := NewReducer(DefaultLimits())
	s := NewState()
	s = r.Reduce(s, EnqueueWords{Text: "alpha"})

	before := s.Performance.Buffer[0].Text
	_ = r.Reduce(s, EnqueueWords{Text: " beta"})
	assert.Equal(t, before, s.Performance.Buffer[0].Text, "previous snapshot must be unchanged")
}
