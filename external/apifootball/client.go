package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/platform/logging"
	"github.com/clubpulse/liveblog/internal/platform/resilience"
	"github.com/clubpulse/liveblog/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	dateFormat     = "2006-01-02"
	apiKeyHeader   = "x-apisports-key"
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	APIKey            string
	TeamID            int64
	Season            int
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client talks to the structured fixture source. All listing calls are scoped
// to the configured tracked-club team id. It implements
// usecase.FixtureProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	teamID         int64
	season         int
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	limiter        *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		teamID:         cfg.TeamID,
		season:         cfg.Season,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		limiter:        limiter,
	}
}

func (c *Client) FixturesBetween(ctx context.Context, from, to time.Time, season int) ([]usecase.CandidateFixture, error) {
	query := map[string]string{
		"team": strconv.FormatInt(c.teamID, 10),
		"from": from.UTC().Format(dateFormat),
		"to":   to.UTC().Format(dateFormat),
	}
	if season > 0 {
		query["season"] = strconv.Itoa(season)
	}

	items, err := c.fetchFixtures(ctx, "/fixtures", query)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures %s..%s: %w", query["from"], query["to"], err)
	}
	return mapCandidates(items), nil
}

func (c *Client) RecentResults(ctx context.Context, limit int) ([]usecase.CandidateFixture, error) {
	if limit < 1 {
		limit = 1
	}
	items, err := c.fetchFixtures(ctx, "/fixtures", map[string]string{
		"team": strconv.FormatInt(c.teamID, 10),
		"last": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch last %d fixtures: %w", limit, err)
	}
	return mapCandidates(items), nil
}

func (c *Client) UpcomingFixtures(ctx context.Context, limit int) ([]usecase.CandidateFixture, error) {
	if limit < 1 {
		limit = 1
	}
	items, err := c.fetchFixtures(ctx, "/fixtures", map[string]string{
		"team": strconv.FormatInt(c.teamID, 10),
		"next": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch next %d fixtures: %w", limit, err)
	}
	return mapCandidates(items), nil
}

// FixtureTimeline fetches the fixture by id; the provider inlines events and
// statistics on id lookups, so one call covers the whole timeline.
func (c *Client) FixtureTimeline(ctx context.Context, externalID int64) (usecase.FixtureTimeline, error) {
	items, err := c.fetchFixtures(ctx, "/fixtures", map[string]string{
		"id": strconv.FormatInt(externalID, 10),
	})
	if err != nil {
		return usecase.FixtureTimeline{}, fmt.Errorf("fetch fixture %d: %w", externalID, err)
	}
	if len(items) == 0 {
		return usecase.FixtureTimeline{}, fmt.Errorf("%w: fixture %d", usecase.ErrNotFound, externalID)
	}

	item := items[0]
	timeline := usecase.FixtureTimeline{
		Fixture: mapCandidate(item),
		Events:  make([]usecase.RawEvent, 0, len(item.Events)),
	}
	for _, event := range item.Events {
		timeline.Events = append(timeline.Events, usecase.RawEvent{
			Minute:      event.Time.Elapsed,
			ExtraMinute: event.Time.Extra,
			Team:        strings.TrimSpace(event.Team.Name),
			Player:      strings.TrimSpace(event.Player.Name),
			Assist:      strings.TrimSpace(event.Assist.Name),
			Type:        strings.TrimSpace(event.Type),
			Detail:      strings.TrimSpace(event.Detail),
		})
	}

	if len(item.Statistics) > 0 {
		timeline.Statistics = make(map[liveblog.TeamSide]liveblog.TeamStatistics, 2)
		for _, block := range item.Statistics {
			var side liveblog.TeamSide
			switch block.Team.ID {
			case item.Teams.Home.ID:
				side = liveblog.SideHome
			case item.Teams.Away.ID:
				side = liveblog.SideAway
			default:
				continue
			}
			timeline.Statistics[side] = mapStatistics(block)
		}
	}

	return timeline, nil
}

func mapStatistics(block statisticItem) liveblog.TeamStatistics {
	var out liveblog.TeamStatistics
	for _, stat := range block.Statistics {
		switch strings.ToLower(strings.TrimSpace(stat.Type)) {
		case "ball possession":
			out.Possession = stat.Value.intPtr()
		case "total shots":
			out.Shots = stat.Value.intPtr()
		case "shots on goal":
			out.ShotsOnTarget = stat.Value.intPtr()
		case "corner kicks":
			out.Corners = stat.Value.intPtr()
		case "fouls":
			out.Fouls = stat.Value.intPtr()
		case "offsides":
			out.Offsides = stat.Value.intPtr()
		case "yellow cards":
			out.YellowCards = stat.Value.intPtr()
		case "red cards":
			out.RedCards = stat.Value.intPtr()
		}
	}
	return out
}

func mapCandidates(items []fixtureItem) []usecase.CandidateFixture {
	out := make([]usecase.CandidateFixture, 0, len(items))
	for _, item := range items {
		if item.Fixture.ID <= 0 {
			continue
		}
		out = append(out, mapCandidate(item))
	}
	return out
}

func mapCandidate(item fixtureItem) usecase.CandidateFixture {
	kickoff, _ := time.Parse(time.RFC3339, item.Fixture.Date)
	return usecase.CandidateFixture{
		ExternalID: item.Fixture.ID,
		HomeTeam:   strings.TrimSpace(item.Teams.Home.Name),
		AwayTeam:   strings.TrimSpace(item.Teams.Away.Name),
		KickoffAt:  kickoff,
		HomeGoals:  item.Goals.Home,
		AwayGoals:  item.Goals.Away,
		StatusCode: strings.TrimSpace(item.Fixture.Status.Short),
	}
}

func (c *Client) fetchFixtures(ctx context.Context, path string, query map[string]string) ([]fixtureItem, error) {
	raw, err := c.doJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var env envelope[fixtureItem]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	if len(env.Errors) > 0 {
		return nil, fmt.Errorf("provider rejected request: %s", env.Errors)
	}
	return env.Response, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fixture source circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fixture source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errAPIFootballTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "fixture source request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return value
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
