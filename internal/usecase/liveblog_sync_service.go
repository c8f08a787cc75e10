package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/match"
	"github.com/clubpulse/liveblog/internal/platform/logging"
)

// PageScraper is the outbound port to the rendering scraper.
type PageScraper interface {
	ScrapeMarkdown(ctx context.Context, pageURL string) (string, error)
}

const (
	maxSyncWorkers = 2

	// noEventsMessage is the success message for a sync that found nothing:
	// an empty timeline is a valid outcome, not a failure.
	noEventsMessage = "no new events found"
)

type SyncServiceConfig struct {
	MaxWorkers int
	BatchLimit int
	CallDelay  time.Duration
}

// SyncService orchestrates the pipeline: resolve fixture, fetch or scrape,
// normalize or classify, translate, replace-persist, write back scores.
type SyncService struct {
	matches    match.Repository
	entries    liveblog.Repository
	resolver   *FixtureResolver
	provider   FixtureProvider
	scraper    PageScraper
	normalizer *EventNormalizer
	classifier *TextClassifier
	gate       *TranslationGate
	cfg        SyncServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewSyncService(
	matches match.Repository,
	entries liveblog.Repository,
	resolver *FixtureResolver,
	provider FixtureProvider,
	scraper PageScraper,
	normalizer *EventNormalizer,
	classifier *TextClassifier,
	gate *TranslationGate,
	cfg SyncServiceConfig,
	logger *logging.Logger,
) *SyncService {
	if cfg.BatchLimit < 1 {
		cfg.BatchLimit = 20
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		matches:    matches,
		entries:    entries,
		resolver:   resolver,
		provider:   provider,
		scraper:    scraper,
		normalizer: normalizer,
		classifier: classifier,
		gate:       gate,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncOutcome summarizes one match sync.
type SyncOutcome struct {
	MatchID           string `json:"matchId"`
	ExternalFixtureID int64  `json:"externalFixtureId,omitempty"`
	Inserted          int    `json:"inserted"`
	Message           string `json:"message,omitempty"`
}

// SyncMatchFromAPI syncs one match from the structured fixture source. When
// externalFixtureID is zero, the stored link is used if present, otherwise
// the resolver runs.
func (s *SyncService) SyncMatchFromAPI(ctx context.Context, matchID string, externalFixtureID int64) (SyncOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncMatchFromAPI")
	defer span.End()

	if s.provider == nil {
		return SyncOutcome{}, fmt.Errorf("%w: fixture source is not configured", ErrDependencyUnavailable)
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("load match %s: %w", matchID, err)
	}

	if externalFixtureID == 0 {
		if m.HasExternalFixture() {
			externalFixtureID = *m.ExternalFixtureID
		} else {
			candidate, err := s.resolver.Resolve(ctx, m)
			if err != nil {
				return SyncOutcome{}, err
			}
			externalFixtureID = candidate.ExternalID
			if err := s.matches.SetExternalFixtureID(ctx, m.ID, externalFixtureID); err != nil {
				return SyncOutcome{}, fmt.Errorf("store external fixture id: %w", err)
			}
		}
	}

	timeline, err := s.provider.FixtureTimeline(ctx, externalFixtureID)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("fetch fixture %d timeline: %w", externalFixtureID, err)
	}

	events := make([]liveblog.Event, 0, len(timeline.Events))
	for _, raw := range timeline.Events {
		events = append(events, s.normalizer.Normalize(raw, timeline.Fixture.HomeTeam, timeline.Fixture.AwayTeam))
	}
	events = s.gate.Localize(ctx, events)

	outcome := SyncOutcome{MatchID: m.ID, ExternalFixtureID: externalFixtureID}

	if timeline.Fixture.HomeGoals != nil && timeline.Fixture.AwayGoals != nil {
		if err := s.matches.UpdateScores(ctx, m.ID, *timeline.Fixture.HomeGoals, *timeline.Fixture.AwayGoals, s.now()); err != nil {
			return SyncOutcome{}, fmt.Errorf("update scores: %w", err)
		}
	}

	if len(events) == 0 {
		outcome.Message = noEventsMessage
		return outcome, nil
	}

	inserted, err := s.entries.ReplaceForMatch(ctx, m.ID, events)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("persist timeline for match %s: %w", m.ID, err)
	}
	outcome.Inserted = inserted

	s.logger.InfoContext(ctx, "match synced from fixture source",
		"match_id", m.ID, "external_fixture_id", externalFixtureID, "inserted", inserted)
	return outcome, nil
}

// SyncMatchFromText syncs one match from a scraped live-report page.
func (s *SyncService) SyncMatchFromText(ctx context.Context, matchID, pageURL string) (SyncOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncMatchFromText")
	defer span.End()

	if strings.TrimSpace(pageURL) == "" {
		return SyncOutcome{}, fmt.Errorf("%w: page url is required", ErrInvalidInput)
	}
	if s.scraper == nil {
		return SyncOutcome{}, fmt.Errorf("%w: scraper is not configured", ErrDependencyUnavailable)
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("load match %s: %w", matchID, err)
	}

	markdown, err := s.scraper.ScrapeMarkdown(ctx, pageURL)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("scrape %s: %w", pageURL, err)
	}

	events := s.gate.Localize(ctx, s.classifier.ExtractEvents(markdown))

	outcome := SyncOutcome{MatchID: m.ID}
	if len(events) == 0 {
		outcome.Message = noEventsMessage
		return outcome, nil
	}

	inserted, err := s.entries.ReplaceForMatch(ctx, m.ID, events)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("persist timeline for match %s: %w", m.ID, err)
	}
	outcome.Inserted = inserted

	s.logger.InfoContext(ctx, "match synced from scraped report",
		"match_id", m.ID, "inserted", inserted)
	return outcome, nil
}

type SyncError struct {
	MatchID string `json:"matchId"`
	Message string `json:"message"`
}

type SyncTaskResult struct {
	MatchID  string `json:"matchId"`
	Status   string `json:"status"`
	Inserted int    `json:"inserted"`
	Message  string `json:"message,omitempty"`
}

// SyncBatchResult aggregates a batch run. Per-match failures are recorded
// here; the batch itself succeeds.
type SyncBatchResult struct {
	Checked int              `json:"checked"`
	Synced  int              `json:"synced"`
	Skipped int              `json:"skipped"`
	Errors  []SyncError      `json:"errors,omitempty"`
	Tasks   []SyncTaskResult `json:"tasks,omitempty"`
}

// SyncAll loads finished matches without a timeline and syncs each from the
// fixture source with a small bounded worker pool. The pool stays narrow and
// a per-call delay applies so a batch cannot burn the provider quota.
func (s *SyncService) SyncAll(ctx context.Context) (SyncBatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncAll")
	defer span.End()

	pending, err := s.matches.ListNeedingSync(ctx, s.cfg.BatchLimit)
	if err != nil {
		return SyncBatchResult{}, fmt.Errorf("list matches needing sync: %w", err)
	}

	result := SyncBatchResult{Checked: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	workers := normalizeSyncWorkerCount(s.cfg.MaxWorkers, len(pending))
	workerPool, err := ants.NewPool(workers)
	if err != nil {
		return SyncBatchResult{}, fmt.Errorf("create sync worker pool: %w", err)
	}
	defer workerPool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, pendingMatch := range pending {
		m := pendingMatch
		wg.Add(1)
		submitErr := workerPool.Submit(func() {
			defer wg.Done()

			if s.cfg.CallDelay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(s.cfg.CallDelay):
				}
			}

			outcome, syncErr := s.SyncMatchFromAPI(ctx, m.ID, 0)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case syncErr == nil:
				result.Synced++
				result.Tasks = append(result.Tasks, SyncTaskResult{
					MatchID:  m.ID,
					Status:   "synced",
					Inserted: outcome.Inserted,
					Message:  outcome.Message,
				})
			case errors.Is(syncErr, ErrNotApplicable):
				result.Skipped++
				result.Tasks = append(result.Tasks, SyncTaskResult{
					MatchID: m.ID,
					Status:  "skipped",
					Message: syncErr.Error(),
				})
			default:
				result.Errors = append(result.Errors, SyncError{MatchID: m.ID, Message: syncErr.Error()})
				result.Tasks = append(result.Tasks, SyncTaskResult{
					MatchID: m.ID,
					Status:  "failed",
					Message: syncErr.Error(),
				})
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Errors = append(result.Errors, SyncError{MatchID: m.ID, Message: submitErr.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].MatchID < result.Tasks[j].MatchID
	})
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].MatchID < result.Errors[j].MatchID
	})

	s.logger.InfoContext(ctx, "batch sync finished",
		"checked", result.Checked, "synced", result.Synced,
		"skipped", result.Skipped, "failed", len(result.Errors))
	return result, nil
}

func normalizeSyncWorkerCount(configured, pendingCount int) int {
	workers := configured
	if workers < 1 {
		workers = 1
	}
	if workers > maxSyncWorkers {
		workers = maxSyncWorkers
	}
	if workers > pendingCount {
		workers = pendingCount
	}
	return workers
}
