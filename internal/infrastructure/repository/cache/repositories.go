package cache

import (
	"context"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	basecache "github.com/clubpulse/liveblog/internal/platform/cache"
)

// LiveBlogRepository caches match timelines in front of the persistent
// repository. Writes go straight through and drop the cached timeline, so
// fan-facing reads pick up a resync on the next request.
type LiveBlogRepository struct {
	next  liveblog.Repository
	cache *basecache.Store
}

func NewLiveBlogRepository(next liveblog.Repository, cache *basecache.Store) *LiveBlogRepository {
	return &LiveBlogRepository{next: next, cache: cache}
}

func (r *LiveBlogRepository) ReplaceForMatch(ctx context.Context, matchID string, events []liveblog.Event) (int, error) {
	inserted, err := r.next.ReplaceForMatch(ctx, matchID, events)
	if err != nil {
		return 0, err
	}

	r.cache.Delete(ctx, timelineKey(matchID))
	return inserted, nil
}

func (r *LiveBlogRepository) ListByMatch(ctx context.Context, matchID string) ([]liveblog.Entry, error) {
	v, err := r.cache.GetOrLoad(ctx, timelineKey(matchID), func(ctx context.Context) (any, error) {
		entries, err := r.next.ListByMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return append([]liveblog.Entry(nil), entries...), nil
	})
	if err != nil {
		return nil, err
	}

	entries, _ := v.([]liveblog.Entry)
	return append([]liveblog.Entry(nil), entries...), nil
}

// CountAutoGenerated is not cached: it feeds sync decisions, which must see
// the latest state.
func (r *LiveBlogRepository) CountAutoGenerated(ctx context.Context, matchID string) (int, error) {
	return r.next.CountAutoGenerated(ctx, matchID)
}

func timelineKey(matchID string) string {
	return "liveblog:match:" + matchID
}
