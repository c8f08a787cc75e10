package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/match"
)

func TestMatchModelToDomain(t *testing.T) {
	t.Parallel()

	matchDate := time.Date(2025, 9, 14, 21, 0, 0, 0, time.UTC)
	row := matchTableModel{
		ID:                "m1",
		HomeTeam:          "Real Madrid",
		AwayTeam:          "Alavés",
		MatchDate:         matchDate,
		Status:            "FINISHED",
		HomeScore:         sql.NullInt64{Int64: 2, Valid: true},
		AwayScore:         sql.NullInt64{Int64: 1, Valid: true},
		ExternalFixtureID: sql.NullInt64{Int64: 7002, Valid: true},
	}

	m := row.toDomain()
	if m.Status != match.StatusFinished || !m.IsFinished() {
		t.Fatalf("status = %q", m.Status)
	}
	if m.HomeScore == nil || *m.HomeScore != 2 || m.AwayScore == nil || *m.AwayScore != 1 {
		t.Fatal("scores not mapped")
	}
	if !m.HasExternalFixture() || *m.ExternalFixtureID != 7002 {
		t.Fatal("external fixture id not mapped")
	}
}

func TestMatchModelToDomainNulls(t *testing.T) {
	t.Parallel()

	m := matchTableModel{ID: "m1", Status: "SCHEDULED"}.toDomain()
	if m.HomeScore != nil || m.AwayScore != nil || m.ExternalFixtureID != nil {
		t.Fatal("null columns must map to nil pointers")
	}
}

func TestLiveBlogEntryModelRoundsSideAndMinute(t *testing.T) {
	t.Parallel()

	row := liveBlogEntryTableModel{
		ID:            "e1",
		MatchID:       "m1",
		Minute:        sql.NullInt64{Int64: 93, Valid: true},
		EntryType:     "goal",
		Title:         "But",
		Content:       "But de Vinicius",
		Important:     true,
		TeamSide:      sql.NullString{String: "home", Valid: true},
		AutoGenerated: true,
	}

	entry := row.toDomain()
	if entry.Type != liveblog.EntryGoal {
		t.Fatalf("type = %q", entry.Type)
	}
	if entry.Minute == nil || *entry.Minute != 93 {
		t.Fatal("minute not mapped")
	}
	if entry.Side == nil || *entry.Side != liveblog.SideHome {
		t.Fatal("side not mapped")
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if nullableMinute(nil).Valid {
		t.Fatal("nil minute must be null")
	}
	minute := 45
	if got := nullableMinute(&minute); !got.Valid || got.Int64 != 45 {
		t.Fatalf("minute = %+v", got)
	}

	if nullableSide(nil).Valid {
		t.Fatal("nil side must be null")
	}
	side := liveblog.SideAway
	if got := nullableSide(&side); !got.Valid || got.String != "away" {
		t.Fatalf("side = %+v", got)
	}
}
