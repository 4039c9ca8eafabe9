// Package protocol defines the wire types exchanged between the easel client
// and the drawing-agent server: the tagged union of server-sent events, the
// small set of client commands, and the shared value types (points, paths,
// agent messages) the canvas state engine is built on.
package protocol

import "time"

// Point is a canvas coordinate. Units are whatever the canvas uses; the
// state engine never interprets them.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathType identifies how a path's points should be interpreted.
type PathType string

const (
	PathLine      PathType = "line"
	PathQuadratic PathType = "quadratic"
	PathCubic     PathType = "cubic"
	PathPolyline  PathType = "polyline"
	PathSVG       PathType = "svg"
)

// Author identifies who produced a stroke.
type Author string

const (
	AuthorAgent Author = "agent"
	AuthorHuman Author = "human"
)

// PathStyle carries optional per-path style overrides. A nil style means
// the renderer's defaults apply.
type PathStyle struct {
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Path is a single stroke. For PathSVG the geometry lives in SVG and Points
// is empty; for every other type Points is the ordered point sequence.
// Paths are immutable once appended to canvas state.
type Path struct {
	Type   PathType   `json:"type"`
	Points []Point    `json:"points,omitempty"`
	SVG    string     `json:"svg,omitempty"`
	Author Author     `json:"author,omitempty"`
	Style  *PathStyle `json:"style,omitempty"`
}

// MessageType classifies an AgentMessage.
type MessageType string

const (
	MessageThinking      MessageType = "thinking"
	MessageCodeExecution MessageType = "code_execution"
	MessageError         MessageType = "error"
	MessagePieceComplete MessageType = "piece_complete"
	MessageIteration     MessageType = "iteration"
)

// LiveThinkingID is the one reserved message id that denotes the live,
// still-streaming thinking message. Every other id is an archived message.
const LiveThinkingID = "live-thinking"

// AgentMessage is one entry in the agent's message feed. Messages are
// append-only and consumers must never reorder or deduplicate them.
type AgentMessage struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Iteration int            `json:"iteration,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Live reports whether this is the reserved still-streaming message.
func (m AgentMessage) Live() bool { return m.ID == LiveThinkingID }

// GalleryCanvas is one finished piece as listed by a gallery_update event.
type GalleryCanvas struct {
	PieceNumber int       `json:"piece_number"`
	Strokes     []Path    `json:"strokes,omitempty"`
	SVG         string    `json:"svg,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// StrokeRecord is one stroke payload returned by the stroke fetch
// side channel for a ready-signaled batch.
type StrokeRecord struct {
	BatchID int     `json:"batch_id"`
	Path    Path    `json:"path"`
	Points  []Point `json:"points"`
}
