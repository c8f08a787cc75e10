package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/match"
	"github.com/clubpulse/liveblog/internal/domain/teamalias"
	"github.com/clubpulse/liveblog/internal/platform/logging"
)

type stubMatchRepo struct {
	mu      sync.Mutex
	matches map[string]match.Match
	pending []match.Match
}

func (r *stubMatchRepo) GetByID(_ context.Context, id string) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return m, nil
}

func (r *stubMatchRepo) ListNeedingSync(_ context.Context, _ int) ([]match.Match, error) {
	return r.pending, nil
}

func (r *stubMatchRepo) SetExternalFixtureID(_ context.Context, id string, externalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.matches[id]
	m.ExternalFixtureID = &externalID
	r.matches[id] = m
	return nil
}

func (r *stubMatchRepo) UpdateScores(_ context.Context, id string, home, away int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.matches[id]
	m.HomeScore = &home
	m.AwayScore = &away
	m.UpdatedAt = updatedAt
	r.matches[id] = m
	return nil
}

type stubEntryRepo struct {
	mu       sync.Mutex
	byMatch  map[string][]liveblog.Event
	replaces int
	failWith error
}

func (r *stubEntryRepo) ReplaceForMatch(_ context.Context, matchID string, events []liveblog.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	if r.byMatch == nil {
		r.byMatch = make(map[string][]liveblog.Event)
	}
	r.byMatch[matchID] = append([]liveblog.Event(nil), events...)
	r.replaces++
	return len(events), nil
}

func (r *stubEntryRepo) ListByMatch(_ context.Context, matchID string) ([]liveblog.Entry, error) {
	return nil, nil
}

func (r *stubEntryRepo) CountAutoGenerated(_ context.Context, matchID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byMatch[matchID]), nil
}

type stubScraper struct {
	markdown string
	err      error
}

func (s *stubScraper) ScrapeMarkdown(_ context.Context, _ string) (string, error) {
	return s.markdown, s.err
}

func newTestSyncService(t *testing.T, matches *stubMatchRepo, entries *stubEntryRepo, provider FixtureProvider, scraper PageScraper, gateCfg TranslationGateConfig, translator Translator) *SyncService {
	t.Helper()

	matcher := teamalias.NewMatcher(teamalias.DefaultTable())
	resolver := NewFixtureResolver(provider, matcher,
		FixtureResolverConfig{TrackedClub: "Real Madrid", WindowDays: 5, Season: 2025}, logging.NewNop())
	if gateCfg.SourceLang == "" {
		gateCfg.SourceLang = "es"
	}
	if gateCfg.TargetLang == "" {
		gateCfg.TargetLang = "fr"
	}

	return NewSyncService(
		matches,
		entries,
		resolver,
		provider,
		scraper,
		NewEventNormalizer(matcher),
		NewTextClassifier(),
		NewTranslationGate(translator, gateCfg, logging.NewNop()),
		SyncServiceConfig{MaxWorkers: 2, BatchLimit: 20},
		logging.NewNop(),
	)
}

func TestSyncMatchFromAPIResolvesAndPersists(t *testing.T) {
	t.Parallel()

	matchDate := time.Date(2025, 9, 14, 21, 0, 0, 0, time.UTC)
	home, away := 2, 1
	provider := &stubProvider{
		windowFixtures: map[int][]CandidateFixture{
			2025: {
				{ExternalID: 7002, HomeTeam: "Real Madrid", AwayTeam: "Deportivo Alavés", KickoffAt: matchDate},
			},
		},
		timeline: FixtureTimeline{
			Fixture: CandidateFixture{
				ExternalID: 7002, HomeTeam: "Real Madrid", AwayTeam: "Deportivo Alavés",
				KickoffAt: matchDate, HomeGoals: &home, AwayGoals: &away,
			},
			Events: []RawEvent{
				{Minute: 23, Team: "Real Madrid", Player: "Vinicius", Type: "Goal", Detail: "Normal Goal"},
				{Minute: 67, Team: "Deportivo Alavés", Player: "Guridi", Type: "Card", Detail: "Yellow Card"},
			},
		},
	}
	matches := &stubMatchRepo{matches: map[string]match.Match{
		"m1": {ID: "m1", HomeTeam: "Real Madrid CF", AwayTeam: "Alavés", MatchDate: matchDate, Status: match.StatusFinished},
	}}
	entries := &stubEntryRepo{}
	service := newTestSyncService(t, matches, entries, provider, nil, TranslationGateConfig{}, nil)

	outcome, err := service.SyncMatchFromAPI(context.Background(), "m1", 0)
	if err != nil {
		t.Fatalf("SyncMatchFromAPI: %v", err)
	}
	if outcome.ExternalFixtureID != 7002 {
		t.Fatalf("external fixture id = %d, want 7002", outcome.ExternalFixtureID)
	}
	if outcome.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", outcome.Inserted)
	}

	stored := matches.matches["m1"]
	if stored.ExternalFixtureID == nil || *stored.ExternalFixtureID != 7002 {
		t.Fatal("external fixture id was not written back")
	}
	if stored.HomeScore == nil || *stored.HomeScore != 2 || stored.AwayScore == nil || *stored.AwayScore != 1 {
		t.Fatal("final score was not written back")
	}
}

func TestSyncMatchFromAPIEmptyTimelineIsSuccess(t *testing.T) {
	t.Parallel()

	matchDate := time.Date(2025, 9, 14, 21, 0, 0, 0, time.UTC)
	fixtureID := int64(7002)
	provider := &stubProvider{
		timeline: FixtureTimeline{
			Fixture: CandidateFixture{ExternalID: fixtureID, HomeTeam: "Real Madrid", AwayTeam: "Getafe"},
		},
	}
	matches := &stubMatchRepo{matches: map[string]match.Match{
		"m1": {ID: "m1", HomeTeam: "Real Madrid", AwayTeam: "Getafe", MatchDate: matchDate,
			Status: match.StatusFinished, ExternalFixtureID: &fixtureID},
	}}
	entries := &stubEntryRepo{}
	service := newTestSyncService(t, matches, entries, provider, nil, TranslationGateConfig{}, nil)

	outcome, err := service.SyncMatchFromAPI(context.Background(), "m1", 0)
	if err != nil {
		t.Fatalf("empty timeline must not fail: %v", err)
	}
	if outcome.Message != noEventsMessage {
		t.Fatalf("message = %q, want %q", outcome.Message, noEventsMessage)
	}
	if entries.replaces != 0 {
		t.Fatal("empty timeline must not replace existing entries")
	}
}

func TestSyncMatchFromTextScrapesClassifiesAndTranslates(t *testing.T) {
	t.Parallel()

	markdown := strings.Join([]string{
		"![foto](https://cdn.example.com/gol.jpg)",
		"23' ¡GOL de Vinicius! Centro de Valverde y definición cruzada del brasileño",
		"Más información en nuestra web oficial",
	}, "\n\n")

	translator := &stubTranslator{out: []string{"But de Vinicius ! Centre de Valverde et finition croisée"}}
	matches := &stubMatchRepo{matches: map[string]match.Match{
		"m1": {ID: "m1", HomeTeam: "Real Madrid", AwayTeam: "Getafe", Status: match.StatusFinished},
	}}
	entries := &stubEntryRepo{}
	service := newTestSyncService(t, matches, entries, &stubProvider{}, &stubScraper{markdown: markdown},
		TranslationGateConfig{Enabled: true}, translator)

	outcome, err := service.SyncMatchFromText(context.Background(), "m1", "https://example.com/directo")
	if err != nil {
		t.Fatalf("SyncMatchFromText: %v", err)
	}
	if outcome.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", outcome.Inserted)
	}

	persisted := entries.byMatch["m1"]
	if persisted[0].Type != liveblog.EntryGoal {
		t.Fatalf("type = %q, want goal", persisted[0].Type)
	}
	if persisted[0].Title != "But" {
		t.Fatalf("title = %q, want French title from the fixed table", persisted[0].Title)
	}
	if !strings.HasPrefix(persisted[0].Content, "But de Vinicius") {
		t.Fatalf("content = %q, want translated content", persisted[0].Content)
	}
}

func TestSyncMatchFromTextTranslationFailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	markdown := "23' ¡GOL de Vinicius! Centro de Valverde y definición cruzada del brasileño"
	translator := &stubTranslator{err: errors.New("quota exceeded")}
	matches := &stubMatchRepo{matches: map[string]match.Match{
		"m1": {ID: "m1", HomeTeam: "Real Madrid", AwayTeam: "Getafe", Status: match.StatusFinished},
	}}
	entries := &stubEntryRepo{}
	service := newTestSyncService(t, matches, entries, &stubProvider{}, &stubScraper{markdown: markdown},
		TranslationGateConfig{Enabled: true}, translator)

	if _, err := service.SyncMatchFromText(context.Background(), "m1", "https://example.com/directo"); err != nil {
		t.Fatalf("translation failure must not fail the sync: %v", err)
	}
	persisted := entries.byMatch["m1"]
	if !strings.Contains(persisted[0].Content, "¡GOL de Vinicius!") {
		t.Fatalf("content = %q, want original Spanish preserved", persisted[0].Content)
	}
}

func TestSyncMatchFromTextRequiresURL(t *testing.T) {
	t.Parallel()

	service := newTestSyncService(t, &stubMatchRepo{matches: map[string]match.Match{}}, &stubEntryRepo{},
		&stubProvider{}, &stubScraper{}, TranslationGateConfig{}, nil)

	if _, err := service.SyncMatchFromText(context.Background(), "m1", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSyncAllAggregatesPerMatchOutcomes(t *testing.T) {
	t.Parallel()

	matchDate := time.Date(2025, 9, 14, 21, 0, 0, 0, time.UTC)
	goodID := int64(7002)
	provider := &stubProvider{
		timeline: FixtureTimeline{
			Fixture: CandidateFixture{ExternalID: goodID, HomeTeam: "Real Madrid", AwayTeam: "Getafe"},
			Events: []RawEvent{
				{Minute: 10, Team: "Real Madrid", Player: "Mbappé", Type: "Goal", Detail: "Normal Goal"},
			},
		},
	}
	store := map[string]match.Match{
		"m1": {ID: "m1", HomeTeam: "Real Madrid", AwayTeam: "Getafe", MatchDate: matchDate,
			Status: match.StatusFinished, ExternalFixtureID: &goodID},
		"m2": {ID: "m2", HomeTeam: "Sevilla", AwayTeam: "Real Betis", MatchDate: matchDate,
			Status: match.StatusFinished},
		"m3": {ID: "m3", HomeTeam: "Real Madrid", AwayTeam: "Unknown Rovers", MatchDate: matchDate,
			Status: match.StatusFinished},
	}
	matches := &stubMatchRepo{
		matches: store,
		pending: []match.Match{store["m1"], store["m2"], store["m3"]},
	}
	entries := &stubEntryRepo{}
	service := newTestSyncService(t, matches, entries, provider, nil, TranslationGateConfig{}, nil)

	result, err := service.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if result.Checked != 3 {
		t.Fatalf("checked = %d, want 3", result.Checked)
	}
	if result.Synced != 1 {
		t.Fatalf("synced = %d, want 1", result.Synced)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1 (tracked club absent)", result.Skipped)
	}
	if len(result.Errors) != 1 || result.Errors[0].MatchID != "m3" {
		t.Fatalf("errors = %+v, want one unresolved fixture for m3", result.Errors)
	}
	if len(result.Tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(result.Tasks))
	}
	for i := 1; i < len(result.Tasks); i++ {
		if result.Tasks[i-1].MatchID > result.Tasks[i].MatchID {
			t.Fatal("tasks must be sorted by match id")
		}
	}
}
