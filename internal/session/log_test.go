package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/sandevgo/venuebot/internal/core"
)

func TestEventLog_AppendAssignsGaplessSequence(t *testing.T) {
	l := NewEventLog()

	for i := 0; i < 5; i++ {
		ev, err := l.Append(core.Event{Kind: core.EventUserMessage, Payload: "hello"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Seq != uint64(i+1) {
			t.Errorf("expected seq %d, got %d", i+1, ev.Seq)
		}
		if ev.Weight <= 0 {
			t.Errorf("expected positive weight, got %d", ev.Weight)
		}
		if ev.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	}

	if l.Len() != 5 {
		t.Errorf("expected 5 events, got %d", l.Len())
	}
}

func TestEventLog_SizeGrowsWithAppends(t *testing.T) {
	l := NewEventLog()

	if l.EstimatedSize() != 0 {
		t.Fatalf("expected empty log size 0, got %d", l.EstimatedSize())
	}

	var total int
	for _, payload := range []string{"short", "a somewhat longer message about ramen in Shoreditch"} {
		ev, err := l.Append(core.Event{Kind: core.EventUserMessage, Payload: payload})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total += ev.Weight
	}

	if l.EstimatedSize() != total {
		t.Errorf("expected size %d, got %d", total, l.EstimatedSize())
	}
}

func TestEventLog_SnapshotIsACopy(t *testing.T) {
	l := NewEventLog()
	if _, err := l.Append(core.Event{Kind: core.EventUserMessage, Payload: "one"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := l.Snapshot()
	snap[0].Payload = "mutated"

	if got := l.Snapshot()[0].Payload; got != "one" {
		t.Errorf("snapshot mutation leaked into the log: %q", got)
	}
}

func TestEventLog_ConcurrentAppendsNeverCorruptSequence(t *testing.T) {
	l := NewEventLog()

	const writers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	var violations int

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Append(core.Event{Kind: core.EventUserMessage, Payload: "x"})
			if err != nil {
				if !errors.Is(err, core.ErrSequenceViolation) {
					t.Errorf("unexpected error: %v", err)
				}
				mu.Lock()
				violations++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every rejected append must be accounted for, and the survivors must
	// form a gapless run starting at 1.
	events := l.Snapshot()
	if len(events)+violations != writers {
		t.Fatalf("events (%d) + violations (%d) != writers (%d)", len(events), violations, writers)
	}
	for i, ev := range events {
		if ev.Seq != uint64(i+1) {
			t.Errorf("expected seq %d at position %d, got %d", i+1, i, ev.Seq)
		}
	}
}

func TestEventLog_ToolEventsWeighedByStructuredPayload(t *testing.T) {
	l := NewEventLog()

	ev, err := l.Append(core.Event{
		Kind: core.EventToolRequest,
		Request: &core.ToolRequest{
			ID:     "req-1",
			Method: "search_venues",
			Params: map[string]any{"location": "Shoreditch, London", "term": "ramen"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Weight <= 0 {
		t.Errorf("expected structured request to carry weight, got %d", ev.Weight)
	}
}
