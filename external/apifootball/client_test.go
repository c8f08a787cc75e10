package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
)

func TestAPIErrorsDecodesObjectAndArray(t *testing.T) {
	t.Parallel()

	var env envelope[fixtureItem]
	payload := `{"errors":{"token":"Error/Missing application key."},"results":0,"response":[]}`
	if err := sonic.Unmarshal([]byte(payload), &env); err != nil {
		t.Fatalf("unmarshal object errors: %v", err)
	}
	if len(env.Errors) != 1 || !strings.Contains(env.Errors.String(), "Missing application key") {
		t.Fatalf("errors = %v, want token error", env.Errors)
	}

	env = envelope[fixtureItem]{}
	payload = `{"errors":[],"results":1,"response":[]}`
	if err := sonic.Unmarshal([]byte(payload), &env); err != nil {
		t.Fatalf("unmarshal empty array errors: %v", err)
	}
	if len(env.Errors) != 0 {
		t.Fatalf("errors = %v, want none", env.Errors)
	}
}

func TestStatValueTolerantDecoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want *int
	}{
		{`54`, intPtr(54)},
		{`"54%"`, intPtr(54)},
		{`"7"`, intPtr(7)},
		{`null`, nil},
		{`"n/a"`, nil},
	}
	for _, tc := range cases {
		var v statValue
		if err := sonic.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		got := v.intPtr()
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("%s: got %d, want nil", tc.raw, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("%s: got %v, want %d", tc.raw, got, *tc.want)
		}
	}
}

func intPtr(v int) *int { return &v }

const timelinePayload = `{
  "errors": [],
  "results": 1,
  "response": [
    {
      "fixture": {"id": 7002, "date": "2025-09-14T21:00:00+02:00", "status": {"short": "FT"}},
      "teams": {"home": {"id": 541, "name": "Real Madrid"}, "away": {"id": 720, "name": "Alaves"}},
      "goals": {"home": 2, "away": 1},
      "events": [
        {"time": {"elapsed": 23, "extra": null}, "team": {"id": 541, "name": "Real Madrid"},
         "player": {"name": "Vinicius Junior"}, "assist": {"name": "F. Valverde"},
         "type": "Goal", "detail": "Normal Goal"},
        {"time": {"elapsed": 45, "extra": 2}, "team": {"id": 720, "name": "Alaves"},
         "player": {"name": "Guridi"}, "assist": {"name": null}, "type": "Card", "detail": "Yellow Card"}
      ],
      "statistics": [
        {"team": {"id": 541, "name": "Real Madrid"},
         "statistics": [{"type": "Ball Possession", "value": "61%"}, {"type": "Total Shots", "value": 17}]},
        {"team": {"id": 720, "name": "Alaves"},
         "statistics": [{"type": "Ball Possession", "value": "39%"}, {"type": "Red Cards", "value": null}]}
      ]
    }
  ]
}`

func TestFixtureTimelineMapsEventsAndStatistics(t *testing.T) {
	t.Parallel()

	var gotKey, gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(apiKeyHeader)
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(timelinePayload))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "secret-key", TeamID: 541})
	timeline, err := client.FixtureTimeline(context.Background(), 7002)
	if err != nil {
		t.Fatalf("FixtureTimeline: %v", err)
	}

	if gotKey != "secret-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotID != "7002" {
		t.Fatalf("id param = %q", gotID)
	}

	if timeline.Fixture.ExternalID != 7002 || timeline.Fixture.StatusCode != "FT" {
		t.Fatalf("fixture = %+v", timeline.Fixture)
	}
	if timeline.Fixture.HomeGoals == nil || *timeline.Fixture.HomeGoals != 2 {
		t.Fatal("home goals not mapped")
	}

	if len(timeline.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(timeline.Events))
	}
	if timeline.Events[0].Player != "Vinicius Junior" || timeline.Events[0].Assist != "F. Valverde" {
		t.Fatalf("event[0] = %+v", timeline.Events[0])
	}
	if timeline.Events[1].ExtraMinute == nil || *timeline.Events[1].ExtraMinute != 2 {
		t.Fatal("stoppage minute not mapped")
	}

	home := timeline.Statistics["home"]
	if home.Possession == nil || *home.Possession != 61 {
		t.Fatalf("home possession = %v", home.Possession)
	}
	if home.Shots == nil || *home.Shots != 17 {
		t.Fatalf("home shots = %v", home.Shots)
	}
	away := timeline.Statistics["away"]
	if away.RedCards != nil {
		t.Fatal("null stat must map to nil")
	}
}

func TestFixturesBetweenSendsWindowAndOmitsZeroSeason(t *testing.T) {
	t.Parallel()

	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"errors":[],"results":0,"response":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "k", TeamID: 541})
	from := time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)

	if _, err := client.FixturesBetween(context.Background(), from, to, 2025); err != nil {
		t.Fatalf("FixturesBetween: %v", err)
	}
	if _, err := client.FixturesBetween(context.Background(), from, to, 0); err != nil {
		t.Fatalf("FixturesBetween without season: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("requests = %d, want 2", len(queries))
	}
	if !strings.Contains(queries[0], "from=2025-09-09") || !strings.Contains(queries[0], "to=2025-09-19") ||
		!strings.Contains(queries[0], "season=2025") || !strings.Contains(queries[0], "team=541") {
		t.Fatalf("first query = %q", queries[0])
	}
	if strings.Contains(queries[1], "season=") {
		t.Fatalf("second query = %q, want no season param", queries[1])
	}
}

func TestExecuteRequestRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"errors":[],"results":0,"response":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "k", TeamID: 541, MaxRetries: 1})
	if _, err := client.RecentResults(context.Background(), 5); err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want retry after 500", calls.Load())
	}
}

func TestExecuteRequestDoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "k", TeamID: 541, MaxRetries: 3})
	if _, err := client.RecentResults(context.Background(), 5); err == nil {
		t.Fatal("want error on 403")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want no retries on 403", calls.Load())
	}
}

func TestProviderLevelErrorsSurface(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":{"token":"Error/Missing application key."},"results":0,"response":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, TeamID: 541})
	_, err := client.RecentResults(context.Background(), 5)
	if err == nil || !strings.Contains(err.Error(), "Missing application key") {
		t.Fatalf("err = %v, want provider error surfaced", err)
	}
}
