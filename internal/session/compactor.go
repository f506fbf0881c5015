package session

import (
	"context"
	"fmt"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
)

// Compactor folds the oldest stretch of an event log into a single
// checkpoint summary once the log outgrows its token budget.
type Compactor struct {
	engine     core.Engine
	budget     int
	keepRecent int
}

func NewCompactor(engine core.Engine, budgetTokens, keepRecent int) *Compactor {
	return &Compactor{engine: engine, budget: budgetTokens, keepRecent: keepRecent}
}

// MaybeCompact checks the log against the budget and, if needed, replaces a
// prefix with a summary checkpoint. A no-op below the budget, so calling it
// after every append is safe. Returns ErrCompactionDeferred when the
// summarization call fails; the log is untouched in that case.
func (c *Compactor) MaybeCompact(ctx context.Context, l *EventLog) error {
	if l.EstimatedSize() <= c.budget {
		return nil
	}

	events := l.Snapshot()
	n := c.selectPrefix(events)
	if n <= 0 {
		// Everything left is recent tail or in-flight pairs. Nothing safe
		// to fold; try again once the tail settles.
		return nil
	}

	summary, err := c.engine.Summarize(ctx, events[:n])
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Int("prefix", n).Msg("compaction summarization failed, deferring")
		return fmt.Errorf("%w: %v", core.ErrCompactionDeferred, err)
	}

	checkpoint, err := l.replaceLeadingSpan(n, summary)
	if err != nil {
		return err
	}

	log.FromCtx(ctx).Debug().
		Uint64("from", checkpoint.Covers.From).
		Uint64("to", checkpoint.Covers.To).
		Int("size", l.EstimatedSize()).
		Msg("compacted event log")
	return nil
}

// selectPrefix picks how many leading events to fold. The last keepRecent
// events always survive, and a tool request is never separated from its
// response: a pair either folds whole or stays whole.
func (c *Compactor) selectPrefix(events []core.Event) int {
	limit := len(events) - c.keepRecent
	if limit <= 0 {
		return 0
	}

	// Responses present anywhere in the log, by correlation id.
	answered := make(map[string]bool)
	for _, ev := range events {
		if ev.Kind == core.EventToolResponse && ev.Response != nil {
			answered[ev.Response.ID] = true
		}
	}

	// Correlation ids answered inside the candidate prefix.
	answeredInPrefix := make(map[string]bool)
	for _, ev := range events[:limit] {
		if ev.Kind == core.EventToolResponse && ev.Response != nil {
			answeredInPrefix[ev.Response.ID] = true
		}
	}

	// The prefix is contiguous from the start, so the first request that is
	// in-flight or answered past the cut caps it.
	n := limit
	for i, ev := range events[:limit] {
		if ev.Kind == core.EventToolRequest && ev.Request != nil {
			if !answered[ev.Request.ID] || !answeredInPrefix[ev.Request.ID] {
				n = i
				break
			}
		}
	}
	return n
}
