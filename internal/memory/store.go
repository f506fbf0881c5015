package memory

import (
	"context"
	"fmt"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
)

// candidateWindow bounds how many recent records relevance ranking
// considers. Memory volume grows slowly (one record per session), so a
// generous fixed window is fine.
const candidateWindow = 200

// Repo is the persistence surface the store needs.
type Repo interface {
	Add(ctx context.Context, rec core.MemoryRecord) (int64, error)
	Recent(ctx context.Context, limit int) ([]core.MemoryRecord, error)
}

// Store implements core.MemoryStore on sqlite, with relevance ranking done
// in process over a recent-records window.
type Store struct {
	repo Repo
}

func NewStore(repo Repo) *Store {
	return &Store{repo: repo}
}

func (s *Store) Write(ctx context.Context, rec core.MemoryRecord) error {
	id, err := s.repo.Add(ctx, rec)
	if err != nil {
		return fmt.Errorf("memory write: %w", err)
	}
	log.FromCtx(ctx).Debug().Int64("id", id).Str("session", rec.SessionID).Msg("memory record saved")
	return nil
}

// Query returns up to limit records ranked by relevance to the hint. A
// storage error degrades to an empty result; recall is an enrichment, never
// a prerequisite.
func (s *Store) Query(ctx context.Context, hint string, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	candidates, err := s.repo.Recent(ctx, candidateWindow)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("memory query failed, recalling nothing")
		return nil, nil
	}

	ranked := rankByRelevance(candidates, hint)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
