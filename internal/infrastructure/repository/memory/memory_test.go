package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/match"
	"github.com/clubpulse/liveblog/internal/usecase"
)

func intPtr(v int) *int { return &v }

func TestReplaceForMatchIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewLiveBlogRepository()
	ctx := context.Background()

	events := []liveblog.Event{
		{Minute: intPtr(23), Type: liveblog.EntryGoal, Title: "Goal", Content: "Goal for Real Madrid! Vinicius scores.", Important: true},
		{Minute: intPtr(67), Type: liveblog.EntryYellowCard, Title: "Yellow card", Content: "Yellow card for Guridi (Alavés)."},
	}

	for run := 0; run < 2; run++ {
		inserted, err := repo.ReplaceForMatch(ctx, "m1", events)
		if err != nil {
			t.Fatalf("ReplaceForMatch run %d: %v", run, err)
		}
		if inserted != 2 {
			t.Fatalf("inserted = %d, want 2", inserted)
		}
	}

	count, err := repo.CountAutoGenerated(ctx, "m1")
	if err != nil {
		t.Fatalf("CountAutoGenerated: %v", err)
	}
	if count != 2 {
		t.Fatalf("auto-generated count after resync = %d, want 2", count)
	}
}

func TestReplaceForMatchPreservesManualEntries(t *testing.T) {
	t.Parallel()

	repo := NewLiveBlogRepository()
	ctx := context.Background()

	repo.SeedEntry(liveblog.Entry{
		MatchID: "m1", Type: liveblog.EntryUpdate, Title: "Pre-match",
		Content: "Lineups are in, Modric starts.", AutoGenerated: false,
	})
	if _, err := repo.ReplaceForMatch(ctx, "m1", []liveblog.Event{
		{Minute: intPtr(10), Type: liveblog.EntryGoal, Title: "Goal", Content: "Goal for Real Madrid! Mbappé scores.", Important: true},
	}); err != nil {
		t.Fatalf("ReplaceForMatch: %v", err)
	}

	entries, err := repo.ListByMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("ListByMatch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want manual + auto", len(entries))
	}

	manual := 0
	for _, entry := range entries {
		if !entry.AutoGenerated {
			manual++
			if entry.Title != "Pre-match" {
				t.Fatalf("manual entry title = %q, want preserved", entry.Title)
			}
		}
	}
	if manual != 1 {
		t.Fatalf("manual entries = %d, want 1", manual)
	}
}

func TestListNeedingSyncFiltersSyncedAndUnfinished(t *testing.T) {
	t.Parallel()

	entries := NewLiveBlogRepository()
	matches := NewMatchRepository(entries)
	ctx := context.Background()

	day := time.Date(2025, 9, 14, 21, 0, 0, 0, time.UTC)
	matches.Put(match.Match{ID: "m1", Status: match.StatusFinished, MatchDate: day})
	matches.Put(match.Match{ID: "m2", Status: match.StatusFinished, MatchDate: day.AddDate(0, 0, -7)})
	matches.Put(match.Match{ID: "m3", Status: match.StatusScheduled, MatchDate: day.AddDate(0, 0, 7)})

	// m2 already has an auto-generated timeline.
	if _, err := entries.ReplaceForMatch(ctx, "m2", []liveblog.Event{
		{Type: liveblog.EntryFullTime, Title: "Full-time", Content: "The referee blows the final whistle.", Important: true},
	}); err != nil {
		t.Fatalf("ReplaceForMatch: %v", err)
	}

	pending, err := matches.ListNeedingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListNeedingSync: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "m1" {
		t.Fatalf("pending = %+v, want only m1", pending)
	}
}

func TestListNeedingSyncHonorsLimitAndOrder(t *testing.T) {
	t.Parallel()

	matches := NewMatchRepository(NewLiveBlogRepository())
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	matches.Put(match.Match{ID: "m3", Status: match.StatusFinished, MatchDate: day.AddDate(0, 0, 2)})
	matches.Put(match.Match{ID: "m1", Status: match.StatusFinished, MatchDate: day})
	matches.Put(match.Match{ID: "m2", Status: match.StatusFinished, MatchDate: day.AddDate(0, 0, 1)})

	pending, err := matches.ListNeedingSync(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListNeedingSync: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "m1" || pending[1].ID != "m2" {
		t.Fatalf("pending = %+v, want oldest two in date order", pending)
	}
}

func TestMatchRepositoryNotFound(t *testing.T) {
	t.Parallel()

	matches := NewMatchRepository(NewLiveBlogRepository())
	if _, err := matches.GetByID(context.Background(), "missing"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := matches.UpdateScores(context.Background(), "missing", 1, 0, time.Now()); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScoreAndFixtureWriteBack(t *testing.T) {
	t.Parallel()

	matches := NewMatchRepository(NewLiveBlogRepository())
	matches.Put(match.Match{ID: "m1", Status: match.StatusFinished})
	ctx := context.Background()

	if err := matches.SetExternalFixtureID(ctx, "m1", 7002); err != nil {
		t.Fatalf("SetExternalFixtureID: %v", err)
	}
	updatedAt := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	if err := matches.UpdateScores(ctx, "m1", 2, 1, updatedAt); err != nil {
		t.Fatalf("UpdateScores: %v", err)
	}

	m, err := matches.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !m.HasExternalFixture() || *m.ExternalFixtureID != 7002 {
		t.Fatal("external fixture id not stored")
	}
	if m.HomeScore == nil || *m.HomeScore != 2 || m.AwayScore == nil || *m.AwayScore != 1 {
		t.Fatal("scores not stored")
	}
	if !m.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("updated at = %v, want %v", m.UpdatedAt, updatedAt)
	}
}
