package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odvcencio/easel/pkg/protocol"
)

func executionMessage(id, tool string, iteration int, returnCode *int) protocol.AgentMessage {
	meta := map[string]any{
		MetaToolName:  tool,
		MetaIteration: iteration,
	}
	if returnCode != nil {
		meta[MetaReturnCode] = *returnCode
	}
	return protocol.AgentMessage{
		ID:        id,
		Type:      protocol.MessageCodeExecution,
		Text:      tool,
		Iteration: iteration,
		Metadata:  meta,
	}
}

func TestDeriveAgentStatus_PausedOverridesEverything(t *testing.T) {
	s := NewState()
	s.Paused = true
	s.Pending = &PendingStrokes{Count: 1, BatchID: 1}
	s.Messages = []protocol.AgentMessage{
		{ID: protocol.LiveThinkingID, Type: protocol.MessageThinking},
		executionMessage("e1", "draw_paths", 1, nil),
		{ID: "err", Type: protocol.MessageError, Text: "boom"},
	}

	assert.Equal(t, StatusPaused, DeriveAgentStatus(s))
}

func TestDeriveAgentStatus_Priority(t *testing.T) {
	rc := 0

	tests := []struct {
		name  string
		setup func(*State)
		want  AgentStatus
	}{
		{
			name:  "empty state is idle",
			setup: func(*State) {},
			want:  StatusIdle,
		},
		{
			name: "trailing error message",
			setup: func(s *State) {
				s.Messages = []protocol.AgentMessage{{ID: "e", Type: protocol.MessageError}}
				s.Pending = &PendingStrokes{Count: 1, BatchID: 1}
			},
			want: StatusError,
		},
		{
			name: "error is superseded by later messages",
			setup: func(s *State) {
				s.Messages = []protocol.AgentMessage{
					{ID: "e", Type: protocol.MessageError},
					executionMessage("x", "draw_paths", 1, &rc),
				}
			},
			want: StatusIdle,
		},
		{
			name: "live thinking message",
			setup: func(s *State) {
				s.Messages = []protocol.AgentMessage{
					{ID: protocol.LiveThinkingID, Type: protocol.MessageThinking},
				}
			},
			want: StatusThinking,
		},
		{
			name: "unresolved execution",
			setup: func(s *State) {
				s.Messages = []protocol.AgentMessage{
					executionMessage("a", "draw_paths", 1, nil),
				}
			},
			want: StatusExecuting,
		},
		{
			name: "resolved execution with pending strokes",
			setup: func(s *State) {
				s.Messages = []protocol.AgentMessage{
					executionMessage("a", "draw_paths", 1, nil),
					executionMessage("b", "draw_paths", 1, &rc),
				}
				s.Pending = &PendingStrokes{Count: 2, BatchID: 1}
			},
			want: StatusDrawing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			tt.setup(s)
			assert.Equal(t, tt.want, DeriveAgentStatus(s))
		})
	}
}

func TestHasInProgressEvents_MatchesByToolAndIteration(t *testing.T) {
	rc := 0

	// Completion for iteration 2 does not resolve iteration 1.
	messages := []protocol.AgentMessage{
		executionMessage("a", "draw_paths", 1, nil),
		executionMessage("b", "draw_paths", 2, &rc),
	}
	assert.True(t, hasInProgressEvents(messages))

	// Completion for a different tool does not resolve either.
	messages = []protocol.AgentMessage{
		executionMessage("a", "draw_paths", 1, nil),
		executionMessage("b", "erase_paths", 1, &rc),
	}
	assert.True(t, hasInProgressEvents(messages))

	// Exact pair match resolves.
	messages = []protocol.AgentMessage{
		executionMessage("a", "draw_paths", 1, nil),
		executionMessage("b", "draw_paths", 1, &rc),
	}
	assert.False(t, hasInProgressEvents(messages))
}

func TestShouldShowIdleAnimation(t *testing.T) {
	s := NewState()
	assert.True(t, ShouldShowIdleAnimation(s))

	withStroke := NewState()
	withStroke.Strokes = []protocol.Path{{Type: protocol.PathLine}}
	assert.False(t, ShouldShowIdleAnimation(withStroke))

	drawing := NewState()
	drawing.CurrentStroke = []protocol.Point{{X: 1, Y: 1}}
	assert.False(t, ShouldShowIdleAnimation(drawing))

	busy := NewState()
	busy.Messages = []protocol.AgentMessage{
		{ID: protocol.LiveThinkingID, Type: protocol.MessageThinking},
	}
	assert.False(t, ShouldShowIdleAnimation(busy))
}
