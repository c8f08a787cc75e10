package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/clubpulse/liveblog/internal/platform/logging"
)

const defaultTimeout = 45 * time.Second

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	WaitFor    time.Duration
	Logger     *logging.Logger
}

// Client renders a live-report page through the scraping service and returns
// its markdown. It implements usecase.PageScraper. Rendering waits WaitFor
// before capture so client-side liveblog widgets finish painting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	waitFor    time.Duration
	logger     *logging.Logger
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
		httpClient.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		waitFor:    cfg.WaitFor,
		logger:     logger,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
	WaitFor int64    `json:"waitFor,omitempty"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

func (c *Client) ScrapeMarkdown(ctx context.Context, pageURL string) (string, error) {
	if c.baseURL == "" {
		return "", crerr.New("scraper base url is not configured")
	}

	payload := scrapeRequest{
		URL:     strings.TrimSpace(pageURL),
		Formats: []string{"markdown"},
		WaitFor: c.waitFor.Milliseconds(),
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", crerr.Wrap(err, "marshal scrape request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", strings.NewReader(string(body)))
	if err != nil {
		return "", crerr.Wrap(err, "create scrape request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", payload.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read scrape response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("scraper status=%d body=%s", resp.StatusCode, truncateForLog(strings.TrimSpace(string(raw)), 240))
	}

	var decoded scrapeResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode scrape response: %w", err)
	}
	if !decoded.Success {
		message := strings.TrimSpace(decoded.Error)
		if message == "" {
			message = "unknown scraper failure"
		}
		return "", fmt.Errorf("scraper rejected %s: %s", payload.URL, message)
	}

	markdown := decoded.Data.Markdown
	c.logger.DebugContext(ctx, "page scraped", "url", payload.URL, "markdown_bytes", len(markdown))
	return markdown, nil
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
