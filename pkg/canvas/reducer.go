package canvas

import (
	"fmt"
	"strings"

	"github.com/odvcencio/easel/pkg/protocol"
)

// Default pacing limits. Exported so collaborators and config share one
// source of truth.
const (
	DefaultMaxWordsPerItem = 25
	DefaultRevealChunkSize = 3
)

// Limits configures the reducer's staging behavior.
type Limits struct {
	// MaxWordsPerItem caps how many words merge into one buffer item.
	MaxWordsPerItem int
	// RevealChunkSize is how many words each RevealWord uncovers.
	RevealChunkSize int
}

// DefaultLimits returns the standard pacing limits.
func DefaultLimits() Limits {
	return Limits{
		MaxWordsPerItem: DefaultMaxWordsPerItem,
		RevealChunkSize: DefaultRevealChunkSize,
	}
}

// Reducer is the pure (state, action) -> state transition function. One
// action, one transition, no side effects. Unknown actions return the same
// pointer so consumers can skip re-render on reference equality.
type Reducer struct {
	limits Limits
}

// NewReducer builds a reducer with the given limits; zero values fall back
// to defaults.
func NewReducer(limits Limits) *Reducer {
	if limits.MaxWordsPerItem <= 0 {
		limits.MaxWordsPerItem = DefaultMaxWordsPerItem
	}
	if limits.RevealChunkSize <= 0 {
		limits.RevealChunkSize = DefaultRevealChunkSize
	}
	return &Reducer{limits: limits}
}

// Reduce applies one action. The input state is never mutated; every
// transition returns a structurally fresh state sharing untouched slices.
func (r *Reducer) Reduce(s *State, a Action) *State {
	switch act := a.(type) {
	case EnqueueWords:
		return r.enqueueWords(s, act)
	case EnqueueStrokes:
		return r.enqueueStrokes(s, act)
	case AdvanceStage:
		return r.advanceStage(s)
	case StrokeProgress:
		return r.strokeProgress(s, act)
	case StrokeComplete:
		return r.strokeComplete(s)
	case RevealWord:
		return r.revealWord(s)
	case StageComplete:
		return r.stageComplete(s)
	case StrokesReady:
		return r.strokesReady(s, act)
	case ClearPendingStrokes:
		next := s.clone()
		next.Pending = nil
		return next
	case AddStroke:
		return r.addStroke(s, act)
	case SetPen:
		return r.setPen(s, act)
	case AppendMessage:
		return r.appendMessage(s, act)
	case AppendThinking:
		return r.appendThinking(s, act)
	case SetIteration:
		next := s.clone()
		next.CurrentIteration = act.Current
		next.MaxIterations = act.Max
		return next
	case SetPaused:
		next := s.clone()
		next.Paused = act.Paused
		return next
	case SetGallery:
		next := s.clone()
		next.Gallery = act.Canvases
		return next
	case SetPieceNumber:
		if act.Number < s.PieceNumber {
			return s
		}
		next := s.clone()
		next.PieceNumber = act.Number
		return next
	case ViewPiece:
		next := s.clone()
		next.ViewingPiece = act.Piece
		return next
	case ClearCanvas:
		next := NewState()
		next.Paused = s.Paused
		next.Gallery = s.Gallery
		return next
	default:
		return s
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func (r *Reducer) enqueueWords(s *State, act EnqueueWords) *State {
	if act.Text == "" {
		return s
	}
	incoming := countWords(act.Text)

	next := s.clone()
	buf := append([]BufferItem(nil), s.Performance.Buffer...)

	// Merge into the trailing words item while the merged run stays at
	// or under the word limit. Merging never reaches into onStage.
	if n := len(buf); n > 0 && buf[n-1].Kind == ItemWords {
		last := buf[n-1]
		if last.WordCount+incoming <= r.limits.MaxWordsPerItem {
			merged := last.Text + act.Text
			buf[n-1] = BufferItem{
				Kind:      ItemWords,
				Text:      merged,
				WordCount: countWords(merged),
			}
			next.Performance.Buffer = buf
			return next
		}
	}

	buf = append(buf, BufferItem{
		Kind:      ItemWords,
		Text:      act.Text,
		WordCount: incoming,
	})
	next.Performance.Buffer = buf
	return next
}

func (r *Reducer) enqueueStrokes(s *State, act EnqueueStrokes) *State {
	if len(act.Strokes) == 0 {
		return s
	}
	next := s.clone()
	next.Performance.Buffer = append(
		append([]BufferItem(nil), s.Performance.Buffer...),
		BufferItem{Kind: ItemStrokes, Strokes: act.Strokes},
	)
	return next
}

func (r *Reducer) advanceStage(s *State) *State {
	if s.Performance.OnStage != nil || len(s.Performance.Buffer) == 0 {
		return s
	}
	next := s.clone()
	item := s.Performance.Buffer[0]
	next.Performance.Buffer = append([]BufferItem(nil), s.Performance.Buffer[1:]...)
	next.Performance.OnStage = &item

	switch item.Kind {
	case ItemStrokes:
		next.Performance.StrokeIndex = 0
		next.Performance.StrokeProgress = 0
		next.Performance.AgentStroke = nil
		next.Performance.AgentStrokeStyle = nil
	case ItemWords:
		next.Performance.RevealedText = ""
		next.Performance.WordIndex = 0
	}
	return next
}

func (r *Reducer) strokeProgress(s *State, act StrokeProgress) *State {
	next := s.clone()
	// Style is fixed at stroke start; later values are ignored.
	if len(s.Performance.AgentStroke) == 0 && act.Style != nil {
		style := *act.Style
		next.Performance.AgentStrokeStyle = &style
	}
	next.Performance.AgentStroke = append(
		append([]protocol.Point(nil), s.Performance.AgentStroke...),
		act.Point,
	)
	pos := act.Point
	next.Performance.PenPosition = &pos
	next.Performance.PenDown = true
	next.Performance.StrokeProgress = s.Performance.StrokeProgress + 1
	return next
}

func (r *Reducer) strokeComplete(s *State) *State {
	stage := s.Performance.OnStage
	if stage == nil || stage.Kind != ItemStrokes || len(stage.Strokes) == 0 {
		return s
	}
	if s.Performance.StrokeIndex >= len(stage.Strokes) {
		return s
	}
	next := s.clone()
	finished := stage.Strokes[s.Performance.StrokeIndex]
	next.Strokes = append(append([]protocol.Path(nil), s.Strokes...), finished)
	next.Performance.StrokeIndex = s.Performance.StrokeIndex + 1
	next.Performance.StrokeProgress = 0
	next.Performance.AgentStroke = nil
	next.Performance.AgentStrokeStyle = nil
	next.Performance.PenDown = false
	return next
}

func (r *Reducer) revealWord(s *State) *State {
	stage := s.Performance.OnStage
	if stage == nil || stage.Kind != ItemWords {
		return s
	}
	words := strings.Fields(stage.Text)
	if s.Performance.WordIndex >= len(words) {
		return s
	}
	next := s.clone()
	idx := s.Performance.WordIndex + r.limits.RevealChunkSize
	if idx > len(words) {
		idx = len(words)
	}
	next.Performance.WordIndex = idx
	next.Performance.RevealedText = strings.Join(words[:idx], " ")
	return next
}

func (r *Reducer) stageComplete(s *State) *State {
	stage := s.Performance.OnStage
	if stage == nil {
		return s
	}
	next := s.clone()
	next.Performance.History = append(
		append([]BufferItem(nil), s.Performance.History...),
		*stage,
	)
	next.Performance.OnStage = nil
	return next
}

func (r *Reducer) strokesReady(s *State, act StrokesReady) *State {
	// Suppress live batches while browsing the gallery, and drop batches
	// for pieces older than the one we are on.
	if s.ViewingPiece != nil {
		return s
	}
	if act.PieceNumber < s.PieceNumber {
		return s
	}
	next := s.clone()
	next.Pending = &PendingStrokes{
		Count:       act.Count,
		BatchID:     act.BatchID,
		PieceNumber: act.PieceNumber,
	}
	// Forward-sync: a strictly newer piece number advances ours.
	next.PieceNumber = act.PieceNumber
	return next
}

func (r *Reducer) addStroke(s *State, act AddStroke) *State {
	next := s.clone()
	next.Strokes = append(append([]protocol.Path(nil), s.Strokes...), act.Path)
	next.Performance.AgentStroke = nil
	next.Performance.AgentStrokeStyle = nil
	next.Performance.PenDown = false
	if act.Path.Author == protocol.AuthorHuman {
		next.CurrentStroke = nil
	}
	return next
}

func (r *Reducer) setPen(s *State, act SetPen) *State {
	next := s.clone()
	pt := protocol.Point{X: act.X, Y: act.Y}
	if act.Down {
		if act.Author == protocol.AuthorHuman {
			next.CurrentStroke = append(
				append([]protocol.Point(nil), s.CurrentStroke...), pt,
			)
		} else {
			next.Performance.AgentStroke = append(
				append([]protocol.Point(nil), s.Performance.AgentStroke...), pt,
			)
		}
	}
	next.Performance.PenPosition = &pt
	next.Performance.PenDown = act.Down
	return next
}

func (r *Reducer) appendMessage(s *State, act AppendMessage) *State {
	next := s.clone()
	messages := append([]protocol.AgentMessage(nil), s.Messages...)

	// A non-thinking message ends the live thinking segment: archive the
	// live message under a deterministic id so status derivation stops
	// reporting "thinking".
	if act.Message.Type != protocol.MessageThinking {
		for i := range messages {
			if messages[i].Live() {
				messages[i].ID = fmt.Sprintf("thinking-%d", i)
			}
		}
	}

	next.Messages = append(messages, act.Message)
	return next
}

func (r *Reducer) appendThinking(s *State, act AppendThinking) *State {
	next := s.clone()
	next.Thinking = s.Thinking + act.Text

	messages := append([]protocol.AgentMessage(nil), s.Messages...)
	updated := false
	for i := range messages {
		if messages[i].Live() {
			messages[i].Text += act.Text
			messages[i].Iteration = act.Iteration
			updated = true
			break
		}
	}
	if !updated {
		messages = append(messages, protocol.AgentMessage{
			ID:        protocol.LiveThinkingID,
			Type:      protocol.MessageThinking,
			Text:      act.Text,
			Timestamp: act.Timestamp,
			Iteration: act.Iteration,
		})
	}
	next.Messages = messages
	return next
}
