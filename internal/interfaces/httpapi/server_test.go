package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/clubpulse/liveblog/internal/domain/liveblog"
	"github.com/clubpulse/liveblog/internal/infrastructure/repository/memory"
	"github.com/clubpulse/liveblog/internal/platform/logging"
	"github.com/clubpulse/liveblog/internal/usecase"
)

func newTestRouter(t *testing.T, entries *memory.LiveBlogRepository) http.Handler {
	t.Helper()
	handler := NewHandler(nil, entries, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"https://fans.example.com"}, "job-token")
}

func decodeEnvelope(t *testing.T, body string) googleResponseEnvelope {
	t.Helper()
	var env googleResponseEnvelope
	if err := sonic.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHealthzEnvelope(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, memory.NewLiveBlogRepository())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body.String())
	if env.APIVersion != googleAPIVersion {
		t.Fatalf("apiVersion = %q", env.APIVersion)
	}
}

func TestGetLiveBlogReturnsTimeline(t *testing.T) {
	t.Parallel()

	entries := memory.NewLiveBlogRepository()
	minute := 23
	entries.SeedEntry(liveblog.Entry{
		ID: "e1", MatchID: "m1", Minute: &minute, Type: liveblog.EntryGoal,
		Title: "But", Content: "But de Vinicius", Important: true, AutoGenerated: true,
	})

	router := newTestRouter(t, entries)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches/m1/liveblog", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "But de Vinicius") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestInternalJobRoutesRequireToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, memory.NewLiveBlogRepository())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/liveblog/sync", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/liveblog/sync", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d", rec.Code)
	}
}

func TestInternalJobTokenUnconfiguredIsUnavailable(t *testing.T) {
	t.Parallel()

	guarded := RequireInternalJobToken("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/liveblog/sync", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when token is not configured", rec.Code)
	}
}

func TestRunMatchSyncJobValidatesPayload(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, memory.NewLiveBlogRepository())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/jobs/liveblog/sync/match", strings.NewReader(`{"match_id":""}`))
	req.Header.Set("X-Internal-Job-Token", "job-token")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty match_id status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/internal/jobs/liveblog/sync/match", strings.NewReader(`{not json`))
	req.Header.Set("X-Internal-Job-Token", "job-token")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad JSON status = %d", rec.Code)
	}
}

func TestMapErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		reason string
	}{
		{fmt.Errorf("wrap: %w", usecase.ErrInvalidInput), http.StatusBadRequest, "invalidInput"},
		{fmt.Errorf("wrap: %w", usecase.ErrNotFound), http.StatusNotFound, "notFound"},
		{fmt.Errorf("wrap: %w", usecase.ErrNoFixture), http.StatusNotFound, "fixtureNotResolved"},
		{fmt.Errorf("wrap: %w", usecase.ErrNotApplicable), http.StatusUnprocessableEntity, "trackedClubNotInvolved"},
		{fmt.Errorf("wrap: %w", usecase.ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("wrap: %w", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable, "dependencyUnavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internalError"},
	}
	for _, tc := range cases {
		mapped := mapError(context.Background(), tc.err)
		if mapped.HTTPStatus != tc.status || mapped.Reason != tc.reason {
			t.Fatalf("mapError(%v) = %+v, want %d/%s", tc.err, mapped, tc.status, tc.reason)
		}
	}
}

func TestCORSPreflightForAllowedOrigin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, memory.NewLiveBlogRepository())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/matches/m1/liveblog", nil)
	req.Header.Set("Origin", "https://fans.example.com")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://fans.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/v1/matches/m1/liveblog", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin for unlisted origin = %q", got)
	}
}
