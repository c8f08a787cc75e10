package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/platform/id"
	qb "github.com/clubpulse/liveblog/internal/platform/querybuilder"
)

type LiveBlogRepository struct {
	db    *sqlx.DB
	idGen id.Generator
	now   func() time.Time
}

func NewLiveBlogRepository(db *sqlx.DB) *LiveBlogRepository {
	return &LiveBlogRepository{
		db:    db,
		idGen: id.NewUUIDGenerator(),
		now:   time.Now,
	}
}

// ReplaceForMatch swaps the auto-generated timeline in one transaction.
// Editor-written entries survive the delete.
func (r *LiveBlogRepository) ReplaceForMatch(ctx context.Context, matchID string, events []liveblog.Event) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx replace live blog timeline: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("live_blog_entries").
		Where(
			qb.Eq("match_id", matchID),
			qb.Expr("auto_generated = TRUE"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete auto-generated entries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return 0, fmt.Errorf("delete auto-generated entries match=%s: %w", matchID, err)
	}

	createdAt := r.now()
	for _, event := range events {
		insertModel := liveBlogEntryInsertModel{
			ID:            r.idGen.NewID(),
			MatchID:       matchID,
			Minute:        nullableMinute(event.Minute),
			EntryType:     string(event.Type),
			Title:         event.Title,
			Content:       event.Content,
			Important:     event.Important,
			TeamSide:      nullableSide(event.Side),
			AutoGenerated: true,
			CreatedAt:     createdAt,
		}
		query, args, err := qb.InsertModel("live_blog_entries", insertModel, "")
		if err != nil {
			return 0, fmt.Errorf("build insert live blog entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert live blog entry match=%s type=%s: %w", matchID, event.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace live blog timeline tx: %w", err)
	}
	return len(events), nil
}

// ListByMatch returns the full timeline in display order: minuteless entries
// first, then by minute, insertion order as the tie-break.
func (r *LiveBlogRepository) ListByMatch(ctx context.Context, matchID string) ([]liveblog.Entry, error) {
	query, args, err := qb.Select("*").From("live_blog_entries").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("minute NULLS FIRST", "created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select live blog entries query: %w", err)
	}

	var rows []liveBlogEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select live blog entries: %w", err)
	}

	out := make([]liveblog.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LiveBlogRepository) CountAutoGenerated(ctx context.Context, matchID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("live_blog_entries").
		Where(
			qb.Eq("match_id", matchID),
			qb.Expr("auto_generated = TRUE"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count auto-generated entries query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count auto-generated entries: %w", err)
	}
	return count, nil
}
