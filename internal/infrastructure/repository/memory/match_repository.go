package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/match"
	"github.com/clubpulse/liveblog/internal/usecase"
)

// MatchRepository is an in-memory match.Repository. It consults the entry
// repository so ListNeedingSync can mirror the SQL "no auto-generated
// timeline yet" filter.
type MatchRepository struct {
	mu      sync.RWMutex
	byID    map[string]match.Match
	entries *LiveBlogRepository
}

func NewMatchRepository(entries *LiveBlogRepository) *MatchRepository {
	return &MatchRepository{
		byID:    make(map[string]match.Match),
		entries: entries,
	}
}

func (r *MatchRepository) Put(m match.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m
}

func (r *MatchRepository) GetByID(_ context.Context, idValue string) (match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[idValue]
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match %s", usecase.ErrNotFound, idValue)
	}
	return m, nil
}

func (r *MatchRepository) ListNeedingSync(ctx context.Context, limit int) ([]match.Match, error) {
	r.mu.RLock()
	candidates := make([]match.Match, 0, len(r.byID))
	for _, m := range r.byID {
		if m.IsFinished() {
			candidates = append(candidates, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].MatchDate.Equal(candidates[j].MatchDate) {
			return candidates[i].MatchDate.Before(candidates[j].MatchDate)
		}
		return candidates[i].ID < candidates[j].ID
	})

	out := make([]match.Match, 0, len(candidates))
	for _, m := range candidates {
		if r.entries != nil {
			count, err := r.entries.CountAutoGenerated(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				continue
			}
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MatchRepository) SetExternalFixtureID(_ context.Context, idValue string, externalFixtureID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[idValue]
	if !ok {
		return fmt.Errorf("%w: match %s", usecase.ErrNotFound, idValue)
	}
	m.ExternalFixtureID = &externalFixtureID
	r.byID[idValue] = m
	return nil
}

func (r *MatchRepository) UpdateScores(_ context.Context, idValue string, homeScore, awayScore int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[idValue]
	if !ok {
		return fmt.Errorf("%w: match %s", usecase.ErrNotFound, idValue)
	}
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.UpdatedAt = updatedAt
	r.byID[idValue] = m
	return nil
}
