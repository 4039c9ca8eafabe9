package canvas

import "github.com/odvcencio/easel/pkg/protocol"

// DeriveAgentStatus reduces the whole state to one status label. Priority
// is fixed, highest first; the first match wins.
func DeriveAgentStatus(s *State) AgentStatus {
	if s.Paused {
		return StatusPaused
	}
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Type == protocol.MessageError {
		return StatusError
	}
	if s.LiveMessage() != nil {
		return StatusThinking
	}
	if hasInProgressEvents(s.Messages) {
		return StatusExecuting
	}
	if s.Pending != nil {
		return StatusDrawing
	}
	return StatusIdle
}

// hasInProgressEvents reports whether any work the agent announced is still
// unresolved: a live thinking message, or a code_execution start with no
// later completion for the same (tool_name, iteration) pair. Different
// iterations of one tool are independent.
//
// This rescans the full message list on every call. Messages grow without
// bound over a session, so this is O(n) per status query; sessions have
// stayed short enough that an index has not been worth it.
func hasInProgressEvents(messages []protocol.AgentMessage) bool {
	for i, m := range messages {
		if m.Live() {
			return true
		}
		if m.Type != protocol.MessageCodeExecution {
			continue
		}
		if _, done := m.Metadata[MetaReturnCode]; done {
			continue
		}
		if !completedLater(messages[i+1:], m) {
			return true
		}
	}
	return false
}

func completedLater(later []protocol.AgentMessage, started protocol.AgentMessage) bool {
	tool, _ := started.Metadata[MetaToolName].(string)
	for _, m := range later {
		if m.Type != protocol.MessageCodeExecution {
			continue
		}
		if _, done := m.Metadata[MetaReturnCode]; !done {
			continue
		}
		laterTool, _ := m.Metadata[MetaToolName].(string)
		if laterTool == tool && m.Iteration == started.Iteration {
			return true
		}
	}
	return false
}

// ShouldShowIdleAnimation reports whether the idle flourish should render:
// only on a truly blank, idle canvas.
func ShouldShowIdleAnimation(s *State) bool {
	return DeriveAgentStatus(s) == StatusIdle &&
		len(s.Strokes) == 0 &&
		len(s.CurrentStroke) == 0
}
