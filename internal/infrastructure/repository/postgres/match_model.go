package postgres

import (
	"database/sql"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/match"
)

type matchTableModel struct {
	ID                string        `db:"id"`
	HomeTeam          string        `db:"home_team"`
	AwayTeam          string        `db:"away_team"`
	MatchDate         time.Time     `db:"match_date"`
	Status            string        `db:"status"`
	HomeScore         sql.NullInt64 `db:"home_score"`
	AwayScore         sql.NullInt64 `db:"away_score"`
	ExternalFixtureID sql.NullInt64 `db:"external_fixture_id"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:                m.ID,
		HomeTeam:          m.HomeTeam,
		AwayTeam:          m.AwayTeam,
		MatchDate:         m.MatchDate,
		Status:            m.Status,
		HomeScore:         nullInt64ToIntPtr(m.HomeScore),
		AwayScore:         nullInt64ToIntPtr(m.AwayScore),
		ExternalFixtureID: nullInt64ToPtr(m.ExternalFixtureID),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt64ToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
