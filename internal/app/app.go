package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/clubpulse/liveblog/external/apifootball"
	"github.com/clubpulse/liveblog/external/scraper"
	"github.com/clubpulse/liveblog/external/translator"
	"github.com/clubpulse/liveblog/internal/config"
	"github.com/clubpulse/liveblog/internal/domain/teamalias"
	cacherepo "github.com/clubpulse/liveblog/internal/infrastructure/repository/cache"
	"github.com/clubpulse/liveblog/internal/infrastructure/repository/postgres"
	"github.com/clubpulse/liveblog/internal/interfaces/httpapi"
	"github.com/clubpulse/liveblog/internal/platform/cache"
	"github.com/clubpulse/liveblog/internal/platform/logging"
	"github.com/clubpulse/liveblog/internal/platform/resilience"
	"github.com/clubpulse/liveblog/internal/usecase"
)

// timelineCacheTTL bounds how stale a fan-facing timeline read may be.
const timelineCacheTTL = 30 * time.Second

// App bundles the HTTP server with the resources it owns.
type App struct {
	Server *http.Server

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	matchRepo := postgres.NewMatchRepository(db)
	entryRepo := cacherepo.NewLiveBlogRepository(
		postgres.NewLiveBlogRepository(db),
		cache.NewStore(timelineCacheTTL),
	)

	matcher := teamalias.NewMatcher(teamalias.DefaultTable())

	var provider usecase.FixtureProvider
	if cfg.APIFootballEnabled {
		provider = apifootball.NewClient(apifootball.ClientConfig{
			HTTPClient:        &http.Client{Timeout: cfg.APIFootballTimeout},
			BaseURL:           cfg.APIFootballBaseURL,
			APIKey:            cfg.APIFootballAPIKey,
			TeamID:            cfg.APIFootballTeamID,
			Season:            cfg.APIFootballSeason,
			Timeout:           cfg.APIFootballTimeout,
			MaxRetries:        cfg.APIFootballMaxRetries,
			RequestsPerMinute: cfg.APIFootballRequestsPerMinute,
			Logger:            logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.APIFootballCircuitEnabled,
				FailureThreshold: cfg.APIFootballCircuitFailureCount,
				OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
			},
		})
	}

	var pageScraper usecase.PageScraper
	if cfg.ScraperEnabled {
		pageScraper = scraper.NewClient(scraper.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.ScraperTimeout},
			BaseURL:    cfg.ScraperBaseURL,
			APIKey:     cfg.ScraperAPIKey,
			Timeout:    cfg.ScraperTimeout,
			WaitFor:    cfg.ScraperWaitFor,
			Logger:     logger,
		})
	}

	var textTranslator usecase.Translator
	if cfg.TranslatorEnabled {
		textTranslator = translator.NewClient(translator.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.TranslatorTimeout},
			BaseURL:    cfg.TranslatorBaseURL,
			APIKey:     cfg.TranslatorAPIKey,
			Timeout:    cfg.TranslatorTimeout,
			Logger:     logger,
		})
	}

	resolver := usecase.NewFixtureResolver(provider, matcher, usecase.FixtureResolverConfig{
		TrackedClub: cfg.TrackedClub,
		WindowDays:  cfg.SyncWindowDays,
		Season:      cfg.APIFootballSeason,
	}, logger)

	gate := usecase.NewTranslationGate(textTranslator, usecase.TranslationGateConfig{
		Enabled:    cfg.TranslatorEnabled,
		SourceLang: cfg.TranslatorSourceLang,
		TargetLang: cfg.TranslatorTargetLang,
	}, logger)

	syncService := usecase.NewSyncService(
		matchRepo,
		entryRepo,
		resolver,
		provider,
		pageScraper,
		usecase.NewEventNormalizer(matcher),
		usecase.NewTextClassifier(),
		gate,
		usecase.SyncServiceConfig{
			MaxWorkers: cfg.SyncMaxWorkers,
			BatchLimit: cfg.SyncBatchLimit,
			CallDelay:  cfg.SyncCallDelay,
		},
		logger,
	)

	handler := httpapi.NewHandler(syncService, entryRepo, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, db: db}, nil
}

// Close releases resources not tied to the HTTP listener.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReadTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
