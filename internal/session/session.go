package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
)

// State is the fine-grained position of a session within one user turn.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingReasoning State = "awaiting_reasoning"
	StateAwaitingTool      State = "awaiting_tool"
	StateResponding        State = "responding"
	StateClosed            State = "closed"
)

// Dispatcher executes a batch of tool requests, preserving order. Failures
// come back embedded in the responses, never as dropped entries.
type Dispatcher interface {
	InvokeBatch(ctx context.Context, reqs []core.ToolRequest) []core.ToolResponse
}

// Config carries everything a session needs beyond its own log.
type Config struct {
	Engine        core.Engine
	Dispatcher    Dispatcher
	Memory        core.MemoryStore
	Tools         []core.ToolSpec
	Compactor     *Compactor
	RecallLimit   int
	MaxToolRounds int
}

// Session drives one conversation: it owns the event log, walks the turn
// state machine, and is the only writer of its log.
type Session struct {
	id  string
	cfg Config
	log *EventLog

	mu           sync.Mutex
	state        State
	status       core.SessionStatus
	lastActivity time.Time
	recalled     bool
	memory       []core.MemoryRecord

	// onState observes transitions in tests. Nil in production.
	onState func(State)
}

func New(id string, cfg Config) *Session {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 6
	}
	return &Session{
		id:           id,
		cfg:          cfg,
		log:          NewEventLog(),
		state:        StateIdle,
		status:       core.StatusActive,
		lastActivity: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() core.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Events returns a copy of the session's event log.
func (s *Session) Events() []core.Event {
	return s.log.Snapshot()
}

func (s *Session) transition(next State) {
	s.mu.Lock()
	s.state = next
	hook := s.onState
	s.mu.Unlock()
	if hook != nil {
		hook(next)
	}
}

// HandleMessage runs one full user turn: append the message, compact if the
// log outgrew its budget, then alternate reasoning and tool execution until
// the engine produces a final answer. The answer is both appended to the log
// and returned.
func (s *Session) HandleMessage(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	if s.status == core.StatusClosed {
		s.mu.Unlock()
		return "", core.ErrSessionClosed
	}
	s.lastActivity = time.Now()
	firstTurn := !s.recalled
	s.mu.Unlock()

	logger := log.FromCtx(ctx).With().Str("session", s.id).Logger()

	if _, err := s.log.Append(core.Event{Kind: core.EventUserMessage, Payload: text}); err != nil {
		return "", err
	}

	if firstTurn {
		s.recallMemory(ctx, text)
	}

	if err := s.maybeCompact(ctx); err != nil && !errors.Is(err, core.ErrCompactionDeferred) {
		return "", err
	}

	for round := 0; round < s.cfg.MaxToolRounds; round++ {
		s.transition(StateAwaitingReasoning)

		reply, err := s.cfg.Engine.Generate(ctx, s.log.Snapshot(), s.recalledMemory(), s.cfg.Tools)
		if err != nil {
			s.transition(StateIdle)
			return "", fmt.Errorf("reasoning failed: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			s.transition(StateResponding)
			if _, err := s.log.Append(core.Event{Kind: core.EventAgentMessage, Payload: reply.Text}); err != nil {
				s.transition(StateIdle)
				return "", err
			}
			s.transition(StateIdle)
			s.touch()
			return reply.Text, nil
		}

		s.transition(StateAwaitingTool)
		if err := s.runToolRound(ctx, reply.ToolCalls); err != nil {
			s.transition(StateIdle)
			return "", err
		}
		if err := ctx.Err(); err != nil {
			// Cancelled mid-turn: responses are recorded, but no partial
			// answer is produced.
			s.transition(StateIdle)
			return "", err
		}
		if err := s.maybeCompact(ctx); err != nil && !errors.Is(err, core.ErrCompactionDeferred) {
			s.transition(StateIdle)
			return "", err
		}
	}

	s.transition(StateIdle)
	logger.Warn().Int("rounds", s.cfg.MaxToolRounds).Msg("tool round limit reached without a final answer")
	return "", fmt.Errorf("no final answer after %d tool rounds", s.cfg.MaxToolRounds)
}

// runToolRound logs the requests, executes them through the dispatcher, and
// logs every response. Tool failures are recorded as structured payloads so
// the next reasoning pass can see and explain them.
func (s *Session) runToolRound(ctx context.Context, calls []core.ToolRequest) error {
	for i := range calls {
		req := calls[i]
		if _, err := s.log.Append(core.Event{Kind: core.EventToolRequest, Request: &req}); err != nil {
			return err
		}
	}

	responses := s.cfg.Dispatcher.InvokeBatch(ctx, calls)
	for i := range responses {
		resp := responses[i]
		if resp.Failure != nil {
			log.FromCtx(ctx).Warn().
				Str("session", s.id).
				Str("id", resp.ID).
				Str("kind", string(resp.Failure.Kind)).
				Msg("tool call failed")
		}
		if _, err := s.log.Append(core.Event{Kind: core.EventToolResponse, Response: &resp}); err != nil {
			return err
		}
	}
	return nil
}

// recallMemory loads prior-session context once, at the first user turn.
// Failure degrades to an empty recall.
func (s *Session) recallMemory(ctx context.Context, hint string) {
	records, err := s.cfg.Memory.Query(ctx, hint, s.cfg.RecallLimit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", s.id).Msg("memory recall failed, continuing without it")
		records = nil
	}

	s.mu.Lock()
	s.recalled = true
	s.memory = records
	s.mu.Unlock()
}

func (s *Session) recalledMemory() []core.MemoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

func (s *Session) maybeCompact(ctx context.Context) error {
	if s.cfg.Compactor == nil {
		return nil
	}

	s.mu.Lock()
	s.status = core.StatusCompacting
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.status == core.StatusCompacting {
			s.status = core.StatusActive
		}
		s.mu.Unlock()
	}()

	return s.cfg.Compactor.MaybeCompact(ctx, s.log)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close ends the session. It distills the conversation into one memory
// record; a failed write is logged and swallowed, closing always succeeds.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.status == core.StatusClosed {
		s.mu.Unlock()
		return
	}
	s.status = core.StatusClosed
	s.state = StateClosed
	s.mu.Unlock()

	logger := log.FromCtx(ctx).With().Str("session", s.id).Logger()

	events := s.log.Snapshot()
	if len(events) == 0 {
		return
	}

	summary, err := s.cfg.Engine.Summarize(ctx, events)
	if err != nil {
		logger.Warn().Err(err).Msg("session summary failed, skipping memory write")
		return
	}

	location, tags := sessionMetadata(events)
	rec := core.MemoryRecord{
		SessionID: s.id,
		Summary:   summary,
		Location:  location,
		Tags:      tags,
		CreatedAt: time.Now(),
	}
	if err := s.cfg.Memory.Write(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("memory write failed, session closed without a record")
		return
	}
	logger.Debug().Msg("session closed, memory saved")
}

// sessionMetadata mines the conversation's venue searches for the location
// and topical tags that should travel with the memory record. The last
// searched location wins; terms and categories accumulate, deduplicated.
func sessionMetadata(events []core.Event) (string, []string) {
	var location string
	var tags []string
	seen := make(map[string]bool)

	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		tags = append(tags, v)
	}

	for _, ev := range events {
		if ev.Kind != core.EventToolRequest || ev.Request == nil {
			continue
		}
		params := ev.Request.Params
		if loc, ok := params["location"].(string); ok && strings.TrimSpace(loc) != "" {
			location = strings.TrimSpace(loc)
		}
		if term, ok := params["term"].(string); ok {
			add(term)
		}
		if cats, ok := params["categories"].(string); ok {
			for _, c := range strings.Split(cats, ",") {
				add(c)
			}
		}
	}
	return location, tags
}
