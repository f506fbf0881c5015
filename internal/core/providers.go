package core

import "context"

// Engine is the reasoning boundary: a pure, possibly slow, possibly failing
// remote call. Errors carry a Failure classification.
type Engine interface {
	// Generate produces either a final answer or tool calls from the event
	// window, recalled memory and the available tools.
	Generate(ctx context.Context, window []Event, memory []MemoryRecord, tools []ToolSpec) (*Reply, error)

	// Summarize condenses a slice of events into checkpoint or session-memory
	// prose.
	Summarize(ctx context.Context, events []Event) (string, error)
}

// ToolCaller is the IPC boundary to the worker process.
type ToolCaller interface {
	Call(ctx context.Context, method string, params map[string]any) (string, error)
}

// MemoryStore is the cross-session memory boundary. Both operations degrade
// gracefully: a session must survive either of them failing.
type MemoryStore interface {
	Write(ctx context.Context, rec MemoryRecord) error
	Query(ctx context.Context, hint string, limit int) ([]MemoryRecord, error)
}
