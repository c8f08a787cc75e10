package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/platform/id"
)

// LiveBlogRepository is an in-memory liveblog.Repository for tests and local
// runs.
type LiveBlogRepository struct {
	mu      sync.RWMutex
	byMatch map[string][]liveblog.Entry
	idGen   id.Generator
	now     func() time.Time
}

func NewLiveBlogRepository() *LiveBlogRepository {
	return &LiveBlogRepository{
		byMatch: make(map[string][]liveblog.Entry),
		idGen:   id.NewUUIDGenerator(),
		now:     time.Now,
	}
}

func (r *LiveBlogRepository) ReplaceForMatch(_ context.Context, matchID string, events []liveblog.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]liveblog.Entry, 0, len(r.byMatch[matchID]))
	for _, entry := range r.byMatch[matchID] {
		if !entry.AutoGenerated {
			kept = append(kept, entry)
		}
	}

	createdAt := r.now()
	for _, event := range events {
		kept = append(kept, liveblog.Entry{
			ID:            r.idGen.NewID(),
			MatchID:       matchID,
			Minute:        event.Minute,
			Type:          event.Type,
			Title:         event.Title,
			Content:       event.Content,
			Important:     event.Important,
			Side:          event.Side,
			AutoGenerated: true,
			CreatedAt:     createdAt,
		})
	}
	r.byMatch[matchID] = kept
	return len(events), nil
}

func (r *LiveBlogRepository) ListByMatch(_ context.Context, matchID string) ([]liveblog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byMatch[matchID]
	out := make([]liveblog.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *LiveBlogRepository) CountAutoGenerated(_ context.Context, matchID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.byMatch[matchID] {
		if entry.AutoGenerated {
			count++
		}
	}
	return count, nil
}

// SeedEntry inserts an entry directly, bypassing replace semantics. Test
// helper for editor-written rows.
func (r *LiveBlogRepository) SeedEntry(entry liveblog.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = r.idGen.NewID()
	}
	r.byMatch[entry.MatchID] = append(r.byMatch[entry.MatchID], entry)
}
