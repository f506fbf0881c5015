package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/venuebot/internal/core"
)

type fakeRepo struct {
	records []core.MemoryRecord
	addErr  error
	listErr error
}

func (f *fakeRepo) Add(ctx context.Context, rec core.MemoryRecord) (int64, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.records = append(f.records, rec)
	return int64(len(f.records)), nil
}

func (f *fakeRepo) Recent(ctx context.Context, limit int) ([]core.MemoryRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestStore_QueryRanksByRelevance(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{records: []core.MemoryRecord{
		{ID: 1, Summary: "user enjoyed a jazz bar", Location: "Camden", CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Summary: "user loves spicy ramen and counter seating", Location: "Shoreditch", Tags: []string{"ramen"}, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 3, Summary: "user asked about brunch spots", Location: "Soho", CreatedAt: now},
	}}
	s := NewStore(repo)

	got, err := s.Query(context.Background(), "ramen in Shoreditch", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != 2 {
		t.Errorf("expected the ramen record first, got id %d", got[0].ID)
	}
}

func TestStore_QueryRecencyBreaksTies(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{records: []core.MemoryRecord{
		{ID: 1, Summary: "chatted about nothing specific", CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Summary: "another unrelated conversation", CreatedAt: now},
	}}
	s := NewStore(repo)

	got, err := s.Query(context.Background(), "sushi recommendations", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != 2 {
		t.Errorf("expected newest record first on a tie, got id %d", got[0].ID)
	}
}

func TestStore_QueryDegradesToEmptyOnStorageError(t *testing.T) {
	s := NewStore(&fakeRepo{listErr: errors.New("db locked")})

	got, err := s.Query(context.Background(), "ramen", 5)
	if err != nil {
		t.Fatalf("query must degrade, not fail: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty recall, got %d records", len(got))
	}
}

func TestStore_QueryZeroLimit(t *testing.T) {
	s := NewStore(&fakeRepo{records: []core.MemoryRecord{{ID: 1, Summary: "x"}}})

	got, err := s.Query(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for zero limit, got %v", got)
	}
}

func TestStore_WriteSurfacesStorageError(t *testing.T) {
	s := NewStore(&fakeRepo{addErr: errors.New("disk full")})

	err := s.Write(context.Background(), core.MemoryRecord{SessionID: "s1", Summary: "x"})
	if err == nil {
		t.Fatal("expected an error")
	}
}
