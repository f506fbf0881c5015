package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/venuebot/internal/core"
)

type fakeEngine struct {
	replies      []*core.Reply
	replyErr     error
	summary      string
	summaryErr   error
	generateHits int
	summarized   [][]core.Event
}

func (f *fakeEngine) Generate(ctx context.Context, window []core.Event, memory []core.MemoryRecord, tools []core.ToolSpec) (*core.Reply, error) {
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	idx := f.generateHits
	f.generateHits++
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return f.replies[idx], nil
}

func (f *fakeEngine) Summarize(ctx context.Context, events []core.Event) (string, error) {
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	f.summarized = append(f.summarized, events)
	return f.summary, nil
}

func fillLog(t *testing.T, l *EventLog, payloads ...string) {
	t.Helper()
	for _, p := range payloads {
		kind := core.EventUserMessage
		if strings.HasPrefix(p, "bot:") {
			kind = core.EventAgentMessage
		}
		if _, err := l.Append(core.Event{Kind: kind, Payload: p}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
}

func TestCompactor_NoOpBelowBudget(t *testing.T) {
	eng := &fakeEngine{summary: "summary"}
	c := NewCompactor(eng, 1000000, 2)
	l := NewEventLog()
	fillLog(t, l, "hi", "bot: hello")

	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.summarized) != 0 {
		t.Error("summarizer should not run below the budget")
	}
	if l.Len() != 2 {
		t.Errorf("log should be untouched, got %d events", l.Len())
	}
}

func TestCompactor_FoldsPrefixAndKeepsRecentTail(t *testing.T) {
	eng := &fakeEngine{summary: "user wants ramen in Shoreditch"}
	c := NewCompactor(eng, 1, 2)
	l := NewEventLog()
	fillLog(t, l, "find me ramen", "bot: sure, looking", "what about sushi", "bot: also looking", "and pizza", "bot: noted")

	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := l.Snapshot()
	// checkpoint + the 2 kept recent events
	if len(events) != 3 {
		t.Fatalf("expected 3 events after compaction, got %d", len(events))
	}

	checkpoint := events[0]
	if checkpoint.Kind != core.EventCheckpoint {
		t.Fatalf("expected checkpoint first, got %s", checkpoint.Kind)
	}
	if checkpoint.Payload != "user wants ramen in Shoreditch" {
		t.Errorf("unexpected checkpoint payload: %q", checkpoint.Payload)
	}
	if checkpoint.Covers == nil || checkpoint.Covers.From != 1 || checkpoint.Covers.To != 4 {
		t.Errorf("unexpected covered range: %+v", checkpoint.Covers)
	}
	// The counter never rewinds: the checkpoint takes the number after the
	// last append.
	if checkpoint.Seq != 7 {
		t.Errorf("expected checkpoint seq 7, got %d", checkpoint.Seq)
	}

	if events[1].Payload != "and pizza" || events[2].Payload != "bot: noted" {
		t.Errorf("recent tail not preserved: %q, %q", events[1].Payload, events[2].Payload)
	}
}

func TestCompactor_SecondCallIsANoOp(t *testing.T) {
	eng := &fakeEngine{summary: "s"}
	c := NewCompactor(eng, 20, 1)
	l := NewEventLog()
	fillLog(t, l,
		"looking for a romantic italian restaurant tonight",
		"bot: checking a few places around Shoreditch for you",
		"somewhere quiet please, not a chain, good wine list",
		"bot: noted, filtering for independents with wine focus",
		"walking distance from Old Street station ideally",
	)

	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.EstimatedSize() > 20 {
		t.Fatalf("expected size under budget after compaction, got %d", l.EstimatedSize())
	}
	if len(eng.summarized) != 1 {
		t.Fatalf("expected 1 summarization, got %d", len(eng.summarized))
	}

	before := l.Snapshot()
	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.summarized) != 1 {
		t.Error("second call must not summarize again")
	}
	if len(l.Snapshot()) != len(before) {
		t.Error("second call must leave the log unchanged")
	}
}

func TestCompactor_SequenceContinuesAfterCompaction(t *testing.T) {
	eng := &fakeEngine{summary: "s"}
	c := NewCompactor(eng, 1, 1)
	l := NewEventLog()
	fillLog(t, l, "a", "b", "c")

	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev, err := l.Append(core.Event{Kind: core.EventUserMessage, Payload: "d"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// 3 appends, checkpoint took 4, so the next append gets 5.
	if ev.Seq != 5 {
		t.Errorf("expected seq 5 after compaction, got %d", ev.Seq)
	}
}

func TestCompactor_DefersWhenSummarizationFails(t *testing.T) {
	eng := &fakeEngine{summaryErr: errors.New("model overloaded")}
	c := NewCompactor(eng, 1, 1)
	l := NewEventLog()
	fillLog(t, l, "a", "b", "c")

	before := l.Snapshot()
	err := c.MaybeCompact(context.Background(), l)
	if !errors.Is(err, core.ErrCompactionDeferred) {
		t.Fatalf("expected ErrCompactionDeferred, got %v", err)
	}

	after := l.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("log changed on deferred compaction: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Seq != after[i].Seq || before[i].Payload != after[i].Payload {
			t.Errorf("event %d changed on deferred compaction", i)
		}
	}
}

func TestCompactor_NeverSplitsInFlightToolPair(t *testing.T) {
	eng := &fakeEngine{summary: "s"}
	c := NewCompactor(eng, 1, 1)
	l := NewEventLog()

	fillLog(t, l, "find ramen")
	if _, err := l.Append(core.Event{
		Kind:    core.EventToolRequest,
		Request: &core.ToolRequest{ID: "pending-1", Method: "search_venues"},
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	fillLog(t, l, "bot: still working", "anything yet?")

	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the lone user message before the pending request may fold.
	for _, ev := range l.Snapshot() {
		if ev.Kind == core.EventToolRequest && ev.Request.ID == "pending-1" {
			return
		}
	}
	t.Error("in-flight tool request was compacted away")
}

func TestCompactor_PairWithResponsePastTheCutStaysWhole(t *testing.T) {
	eng := &fakeEngine{summary: "s"}
	c := NewCompactor(eng, 1, 1)
	l := NewEventLog()

	fillLog(t, l, "msg one", "msg two")
	if _, err := l.Append(core.Event{
		Kind:    core.EventToolRequest,
		Request: &core.ToolRequest{ID: "r1", Method: "search_venues"},
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := l.Append(core.Event{
		Kind:     core.EventToolResponse,
		Response: &core.ToolResponse{ID: "r1", Result: "{}"},
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// keepRecent=1 would put the cut between request and response. The
	// prefix must shrink so the pair survives together.
	if err := c.MaybeCompact(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var haveReq, haveResp bool
	for _, ev := range l.Snapshot() {
		if ev.Kind == core.EventToolRequest && ev.Request.ID == "r1" {
			haveReq = true
		}
		if ev.Kind == core.EventToolResponse && ev.Response.ID == "r1" {
			haveResp = true
		}
	}
	if haveReq != haveResp {
		t.Errorf("tool pair was split: request=%v response=%v", haveReq, haveResp)
	}
}
