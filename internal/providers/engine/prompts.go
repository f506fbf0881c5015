package engine

import (
	"fmt"
	"strings"

	"github.com/sandevgo/venuebot/internal/core"
)

const systemPrompt = `You are VenueBot, a concierge that recommends restaurants, cafes, bars and
other venues. Use the search tools to ground every recommendation in real,
currently listed venues. Be concise and specific: name the venue, where it
is, and why it fits the request. If a tool fails repeatedly, say plainly
that search is unavailable right now and suggest the user try again shortly.
Never invent venue names, addresses or ratings.`

const summarizePrompt = `Condense the following conversation steps into a short factual summary.
Keep: the user's location and preferences, venues that were recommended or
rejected, and any stated constraints (budget, dietary, distance). Drop
pleasantries and tool mechanics. Write plain prose, no headers.`

// renderMemory folds recalled records into one system block so the model
// sees prior-session context without it masquerading as conversation.
func renderMemory(records []core.MemoryRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("What you remember about this user from earlier sessions:\n")
	for _, rec := range records {
		b.WriteString("- ")
		b.WriteString(rec.Summary)
		if rec.Location != "" {
			fmt.Fprintf(&b, " (around %s)", rec.Location)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderEventsForSummary flattens events into the transcript the summarizer
// condenses. Tool payloads are kept short; their details rarely matter after
// the turn that used them.
func renderEventsForSummary(events []core.Event) string {
	var b strings.Builder
	for _, ev := range events {
		switch ev.Kind {
		case core.EventUserMessage:
			fmt.Fprintf(&b, "User: %s\n", ev.Payload)
		case core.EventAgentMessage:
			fmt.Fprintf(&b, "Assistant: %s\n", ev.Payload)
		case core.EventCheckpoint:
			fmt.Fprintf(&b, "Earlier summary: %s\n", ev.Payload)
		case core.EventToolRequest:
			if ev.Request != nil {
				fmt.Fprintf(&b, "Tool call: %s\n", ev.Request.Method)
			}
		case core.EventToolResponse:
			if ev.Response != nil && ev.Response.Failure != nil {
				fmt.Fprintf(&b, "Tool failed: %s\n", ev.Response.Failure.Kind)
			}
		}
	}
	return b.String()
}
