package session

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandevgo/venuebot/internal/core"
)

// EventLog is the append-only record of one session. A single orchestrator
// goroutine owns writes; the busy flag turns any violation of that into a
// loud error instead of silent interleaving.
type EventLog struct {
	busy atomic.Bool

	mu      sync.RWMutex
	events  []core.Event
	nextSeq uint64
	size    int
}

func NewEventLog() *EventLog {
	return &EventLog{nextSeq: 1}
}

// Append assigns the next sequence number, weighs the event, and adds it to
// the tail. Returns ErrSequenceViolation if another append is in progress.
func (l *EventLog) Append(ev core.Event) (core.Event, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return core.Event{}, core.ErrSequenceViolation
	}
	defer l.busy.Store(false)

	l.mu.Lock()
	defer l.mu.Unlock()

	ev.Seq = l.nextSeq
	l.nextSeq++
	ev.Weight = eventWeight(ev)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	l.events = append(l.events, ev)
	l.size += ev.Weight
	return ev, nil
}

// Snapshot returns a copy of the current events in log order. After a
// compaction this is not sequence order: the checkpoint sits first with a
// higher number than the tail it precedes.
func (l *EventLog) Snapshot() []core.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Event, len(l.events))
	copy(out, l.events)
	return out
}

// EstimatedSize is the running token weight of the log. Maintained
// incrementally, so reading it costs nothing.
func (l *EventLog) EstimatedSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Len returns the number of events currently in the log.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// replaceLeadingSpan swaps the first n events for a checkpoint summary. The
// checkpoint takes the next number from the session counter, which never
// rewinds, so assignment across compactions stays strictly increasing. The
// rebuilt log places the checkpoint ahead of tail events with lower numbers;
// readers must not assume log order equals sequence order. Called only by
// the compactor while it holds the append path.
func (l *EventLog) replaceLeadingSpan(n int, summary string) (core.Event, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return core.Event{}, core.ErrSequenceViolation
	}
	defer l.busy.Store(false)

	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.events) {
		return core.Event{}, core.ErrCompactionDeferred
	}

	checkpoint := core.Event{
		Kind:    core.EventCheckpoint,
		Payload: summary,
		Covers: &core.EventRange{
			From: l.events[0].Seq,
			To:   l.events[n-1].Seq,
		},
		CreatedAt: time.Now(),
	}
	checkpoint.Seq = l.nextSeq
	l.nextSeq++
	checkpoint.Weight = eventWeight(checkpoint)

	tail := l.events[n:]
	rebuilt := make([]core.Event, 0, len(tail)+1)
	rebuilt = append(rebuilt, checkpoint)
	rebuilt = append(rebuilt, tail...)

	l.events = rebuilt
	l.size = 0
	for _, ev := range l.events {
		l.size += ev.Weight
	}

	return checkpoint, nil
}

// eventWeight estimates an event's token contribution from its rendered
// content.
func eventWeight(ev core.Event) int {
	switch ev.Kind {
	case core.EventToolRequest:
		if ev.Request != nil {
			raw, _ := json.Marshal(ev.Request)
			return countTokens(string(raw))
		}
	case core.EventToolResponse:
		if ev.Response != nil {
			raw, _ := json.Marshal(ev.Response)
			return countTokens(string(raw))
		}
	}
	return countTokens(ev.Payload)
}
