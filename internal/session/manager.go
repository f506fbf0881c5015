package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
)

// Manager owns the live session table and reaps sessions that have gone
// quiet. It runs as a background service.
type Manager struct {
	cfg         Config
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	done chan struct{}
}

func NewManager(cfg Config, idleTimeout time.Duration) *Manager {
	return &Manager{
		cfg:         cfg,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
		done:        make(chan struct{}),
	}
}

// Open creates a fresh session with a unique id and registers it.
func (m *Manager) Open() *Session {
	s := New(uuid.NewString(), m.cfg)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get returns a registered session, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close closes one session and drops it from the table.
func (m *Manager) Close(ctx context.Context, id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if s != nil {
		s.Close(ctx)
	}
}

// Start runs the idle sweep until Shutdown. Implements srv.Service.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// Shutdown closes every remaining session so their memories get written.
func (m *Manager) Shutdown(ctx context.Context) error {
	close(m.done)

	m.mu.Lock()
	remaining := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		remaining = append(remaining, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range remaining {
		s.Close(ctx)
	}
	return nil
}

func (m *Manager) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.Status() != core.StatusClosed && s.LastActivity().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		log.FromCtx(ctx).Debug().Str("session", s.ID()).Msg("closing idle session")
		s.Close(ctx)
	}
}
