package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubpulse/liveblog/internal/domain/match"
	qb "github.com/clubpulse/liveblog/internal/platform/querybuilder"
	"github.com/clubpulse/liveblog/internal/usecase"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, fmt.Errorf("%w: match %s", usecase.ErrNotFound, id)
		}
		return match.Match{}, fmt.Errorf("select match: %w", err)
	}
	return row.toDomain(), nil
}

// ListNeedingSync returns finished matches that have no auto-generated
// timeline yet, oldest first. Editor-written entries do not count as a
// timeline.
func (r *MatchRepository) ListNeedingSync(ctx context.Context, limit int) ([]match.Match, error) {
	builder := qb.Select("*").From("matches").
		Where(
			qb.Eq("status", string(match.StatusFinished)),
			qb.Expr("NOT EXISTS (SELECT 1 FROM live_blog_entries e WHERE e.match_id = matches.id AND e.auto_generated = TRUE)"),
		).
		OrderBy("match_date", "id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches needing sync query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches needing sync: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) SetExternalFixtureID(ctx context.Context, id string, externalFixtureID int64) error {
	query, args, err := qb.Update("matches").
		Set("external_fixture_id", externalFixtureID).
		SetRaw("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match fixture id query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match fixture id: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: match %s", usecase.ErrNotFound, id)
	}
	return nil
}

func (r *MatchRepository) UpdateScores(ctx context.Context, id string, homeScore, awayScore int, updatedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match scores query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match scores: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: match %s", usecase.ErrNotFound, id)
	}
	return nil
}
