package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/venuebot/internal/core"
)

// MemoriesRepo persists cross-session memory records. Append-only: records
// are inserted and read, never updated.
type MemoriesRepo struct {
	db *sql.DB
}

func NewMemoriesRepo(db *sql.DB) *MemoriesRepo {
	return &MemoriesRepo{db: db}
}

func (r *MemoriesRepo) Add(ctx context.Context, rec core.MemoryRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO memories (session_id, summary, location, tags, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rec.SessionID, rec.Summary, rec.Location, strings.Join(rec.Tags, ","), createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memory: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the newest records first, up to limit. This is the
// candidate window relevance ranking runs over.
func (r *MemoriesRepo) Recent(ctx context.Context, limit int) ([]core.MemoryRecord, error) {
	query := `SELECT id, session_id, summary, location, tags, created_at FROM memories ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var records []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		var tags string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Summary, &rec.Location, &tags, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		if tags != "" {
			rec.Tags = strings.Split(tags, ",")
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
