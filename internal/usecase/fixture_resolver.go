package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/domain/match"
	"github.com/clubpulse/liveblog/internal/domain/teamalias"
	"github.com/clubpulse/liveblog/internal/platform/logging"
)

// RawEvent is a structured timeline item as the fixture source reports it.
type RawEvent struct {
	Minute      int
	ExtraMinute *int
	Team        string
	Player      string
	Assist      string
	Type        string
	Detail      string
}

// CandidateFixture is a provider fixture considered during resolution.
type CandidateFixture struct {
	ExternalID int64
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	HomeGoals  *int
	AwayGoals  *int
	StatusCode string
}

// FixtureTimeline carries the full detail fetched once a fixture is resolved.
type FixtureTimeline struct {
	Fixture    CandidateFixture
	Events     []RawEvent
	Statistics map[liveblog.TeamSide]liveblog.TeamStatistics
}

// FixtureProvider is the outbound port to the fixture source. All listing
// calls are scoped to the tracked club configured on the client.
type FixtureProvider interface {
	FixturesBetween(ctx context.Context, from, to time.Time, season int) ([]CandidateFixture, error)
	RecentResults(ctx context.Context, limit int) ([]CandidateFixture, error)
	UpcomingFixtures(ctx context.Context, limit int) ([]CandidateFixture, error)
	FixtureTimeline(ctx context.Context, externalID int64) (FixtureTimeline, error)
}

const fallbackFixtureCount = 10

type FixtureResolverConfig struct {
	TrackedClub string
	WindowDays  int
	Season      int
}

// FixtureResolver maps a stored fan-site match onto the provider fixture it
// describes, using team aliases and kickoff proximity.
type FixtureResolver struct {
	provider FixtureProvider
	matcher  *teamalias.Matcher
	cfg      FixtureResolverConfig
	logger   *logging.Logger
}

func NewFixtureResolver(provider FixtureProvider, matcher *teamalias.Matcher, cfg FixtureResolverConfig, logger *logging.Logger) *FixtureResolver {
	if cfg.WindowDays < 1 {
		cfg.WindowDays = 5
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureResolver{provider: provider, matcher: matcher, cfg: cfg, logger: logger}
}

// Resolve returns the best provider fixture for the stored match.
// ErrNotApplicable means the tracked club plays in neither side; ErrNoFixture
// means no candidate survived filtering.
func (r *FixtureResolver) Resolve(ctx context.Context, m match.Match) (CandidateFixture, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureResolver.Resolve")
	defer span.End()

	homeTracked := r.matcher.IsTrackedClub(m.HomeTeam, r.cfg.TrackedClub)
	awayTracked := r.matcher.IsTrackedClub(m.AwayTeam, r.cfg.TrackedClub)
	if !homeTracked && !awayTracked {
		return CandidateFixture{}, fmt.Errorf("%w: %s vs %s", ErrNotApplicable, m.HomeTeam, m.AwayTeam)
	}

	opponent := m.AwayTeam
	if !homeTracked {
		opponent = m.HomeTeam
	}

	candidates, err := r.collectCandidates(ctx, m)
	if err != nil {
		return CandidateFixture{}, err
	}

	matched := candidates[:0]
	for _, candidate := range candidates {
		if r.fixtureMatches(candidate, opponent) {
			matched = append(matched, candidate)
		}
	}
	if len(matched) == 0 {
		return CandidateFixture{}, fmt.Errorf("%w: %s vs %s on %s", ErrNoFixture, m.HomeTeam, m.AwayTeam, m.MatchDate.Format("2006-01-02"))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		di := absDuration(matched[i].KickoffAt.Sub(m.MatchDate))
		dj := absDuration(matched[j].KickoffAt.Sub(m.MatchDate))
		if di != dj {
			return di < dj
		}
		return matched[i].ExternalID < matched[j].ExternalID
	})

	return matched[0], nil
}

// collectCandidates queries the kickoff window first, then retries without
// the season filter, then falls back to recent results plus upcoming
// fixtures fetched concurrently.
func (r *FixtureResolver) collectCandidates(ctx context.Context, m match.Match) ([]CandidateFixture, error) {
	from := m.MatchDate.AddDate(0, 0, -r.cfg.WindowDays)
	to := m.MatchDate.AddDate(0, 0, r.cfg.WindowDays)

	candidates, err := r.provider.FixturesBetween(ctx, from, to, r.cfg.Season)
	if err != nil {
		return nil, fmt.Errorf("query fixtures in window: %w", err)
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	if r.cfg.Season > 0 {
		candidates, err = r.provider.FixturesBetween(ctx, from, to, 0)
		if err != nil {
			return nil, fmt.Errorf("query fixtures in window without season: %w", err)
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	// Both legs of the last-resort fallback are independent provider calls;
	// a failing leg logs and contributes nothing rather than failing the
	// resolution outright.
	p := pool.NewWithResults[[]CandidateFixture]().WithContext(ctx)
	p.Go(func(ctx context.Context) ([]CandidateFixture, error) {
		recent, err := r.provider.RecentResults(ctx, fallbackFixtureCount)
		if err != nil {
			r.logger.WarnContext(ctx, "recent results fallback failed", "error", err)
			return nil, nil
		}
		return recent, nil
	})
	p.Go(func(ctx context.Context) ([]CandidateFixture, error) {
		upcoming, err := r.provider.UpcomingFixtures(ctx, fallbackFixtureCount)
		if err != nil {
			r.logger.WarnContext(ctx, "upcoming fixtures fallback failed", "error", err)
			return nil, nil
		}
		return upcoming, nil
	})

	batches, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("fixture fallback fan-out: %w", err)
	}

	merged := make([]CandidateFixture, 0, 2*fallbackFixtureCount)
	seen := make(map[int64]struct{}, 2*fallbackFixtureCount)
	for _, batch := range batches {
		for _, candidate := range batch {
			if _, ok := seen[candidate.ExternalID]; ok {
				continue
			}
			seen[candidate.ExternalID] = struct{}{}
			merged = append(merged, candidate)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ExternalID < merged[j].ExternalID
	})
	return merged, nil
}

func (r *FixtureResolver) fixtureMatches(candidate CandidateFixture, opponent string) bool {
	if r.matcher.IsTrackedClub(candidate.HomeTeam, r.cfg.TrackedClub) {
		return r.matcher.TeamsMatch(candidate.AwayTeam, opponent)
	}
	if r.matcher.IsTrackedClub(candidate.AwayTeam, r.cfg.TrackedClub) {
		return r.matcher.TeamsMatch(candidate.HomeTeam, opponent)
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
