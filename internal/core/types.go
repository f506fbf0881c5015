package core

import (
	"encoding/json"
	"time"
)

const (
	AppName       = "VenueBot"
	AppUserAgent  = "VenueBot-Agent/0.1"
	RepositoryURL = "https://github.com/sandevgo/venuebot"
	AppVersion    = "0.1.0"
)

// EventKind enumerates everything that can appear in a session's event log.
type EventKind string

const (
	EventUserMessage  EventKind = "user_message"
	EventAgentMessage EventKind = "agent_message"
	EventToolRequest  EventKind = "tool_request"
	EventToolResponse EventKind = "tool_response"
	EventCheckpoint   EventKind = "checkpoint_summary"
)

// EventRange is the half-open-free inclusive span of sequence numbers a
// checkpoint summary replaces.
type EventRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Event is one immutable step of a session. Seq, Weight and CreatedAt are
// assigned by the event log on append; callers fill in the rest.
type Event struct {
	Seq       uint64        `json:"seq"`
	Kind      EventKind     `json:"kind"`
	Payload   string        `json:"payload,omitempty"`
	Request   *ToolRequest  `json:"request,omitempty"`
	Response  *ToolResponse `json:"response,omitempty"`
	Covers    *EventRange   `json:"covers,omitempty"`
	Weight    int           `json:"weight"`
	CreatedAt time.Time     `json:"created_at"`
}

// ToolRequest is one structured call the reasoning engine wants executed.
// ID is the correlation id; responses are matched solely by it.
type ToolRequest struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// ToolResponse carries either a success payload or a typed failure,
// never both.
type ToolResponse struct {
	ID      string   `json:"id"`
	Result  string   `json:"result,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// ToolSpec describes a tool the worker exposes, in the shape the reasoning
// engine expects (name + JSON Schema parameters).
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"parameters"`
}

// Reply is the tagged outcome of one reasoning-engine invocation: either a
// final answer for the user, or an ordered batch of tool calls. Exactly one
// side is populated.
type Reply struct {
	Text      string
	ToolCalls []ToolRequest
}

// SessionStatus is the coarse lifecycle state of a session.
type SessionStatus string

const (
	StatusActive     SessionStatus = "active"
	StatusCompacting SessionStatus = "compacting"
	StatusClosed     SessionStatus = "closed"
)

// MemoryRecord is a persisted, cross-session summary of a closed session.
// Immutable once written.
type MemoryRecord struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Location  string    `json:"location,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
