// Package wire defines the WebSocket protocol for the live console channel.
package wire

import (
	"encoding/json"

	"github.com/flowdeck/flowdeck/internal/semantic"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "render", "diff", "fetch_more", "validate_args", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// RenderData is the payload for "render" messages.
type RenderData struct {
	Value     *semantic.TaggedValue `json:"value"`
	Overrides map[string]Override   `json:"overrides,omitempty"`
}

// Override names a renderer replacement for one semantic type.
type Override struct {
	Directive string `json:"directive"`
	Template  string `json:"template"`
}

// DiffData is the payload for "diff" messages.
type DiffData struct {
	Original *semantic.TaggedValue `json:"original"`
	Updated  *semantic.TaggedValue `json:"updated"`
}

// FetchMoreData is the payload for "fetch_more" messages: the remainder
// items carried by a fetch-more pseudo item, to render as the next page.
type FetchMoreData struct {
	Items []*semantic.TaggedValue `json:"items"`
}

// ValidateArgsData is the payload for "validate_args" messages.
type ValidateArgsData struct {
	Flow string         `json:"flow"`
	Args map[string]any `json:"args"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "node", "diff", "validation", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// NodeData carries one rendered tree.
type NodeData struct {
	Node *semantic.Node `json:"node"`
}

// DiffResultData carries both annotated sides of a diff.
type DiffResultData struct {
	Original *semantic.TaggedValue `json:"original"`
	Updated  *semantic.TaggedValue `json:"updated"`
}

// ValidationData carries schema validation results.
type ValidationData struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
}
