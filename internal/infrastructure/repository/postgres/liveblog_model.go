package postgres

import (
	"database/sql"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
)

type liveBlogEntryTableModel struct {
	ID            string         `db:"id"`
	MatchID       string         `db:"match_id"`
	Minute        sql.NullInt64  `db:"minute"`
	EntryType     string         `db:"entry_type"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Important     bool           `db:"important"`
	TeamSide      sql.NullString `db:"team_side"`
	AutoGenerated bool           `db:"auto_generated"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (m liveBlogEntryTableModel) toDomain() liveblog.Entry {
	entry := liveblog.Entry{
		ID:            m.ID,
		MatchID:       m.MatchID,
		Type:          liveblog.EntryType(m.EntryType),
		Title:         m.Title,
		Content:       m.Content,
		Important:     m.Important,
		AutoGenerated: m.AutoGenerated,
		CreatedAt:     m.CreatedAt,
	}
	entry.Minute = nullInt64ToIntPtr(m.Minute)
	if m.TeamSide.Valid {
		side := liveblog.TeamSide(m.TeamSide.String)
		entry.Side = &side
	}
	return entry
}

type liveBlogEntryInsertModel struct {
	ID            string         `db:"id"`
	MatchID       string         `db:"match_id"`
	Minute        sql.NullInt64  `db:"minute"`
	EntryType     string         `db:"entry_type"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Important     bool           `db:"important"`
	TeamSide      sql.NullString `db:"team_side"`
	AutoGenerated bool           `db:"auto_generated"`
	CreatedAt     time.Time      `db:"created_at"`
}

func nullableMinute(minute *int) sql.NullInt64 {
	if minute == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*minute), Valid: true}
}

func nullableSide(side *liveblog.TeamSide) sql.NullString {
	if side == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*side), Valid: true}
}
