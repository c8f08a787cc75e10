package translator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/clubpulse/liveblog/internal/platform/logging"
)

const defaultTimeout = 15 * time.Second

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client translates batches of entry content. It implements
// usecase.Translator: responses preserve input order and count.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
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
		logger:     logger,
	}
}

type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.baseURL == "" {
		return nil, crerr.New("translator base url is not configured")
	}

	payload := translateRequest{
		Text:       texts,
		SourceLang: strings.ToUpper(strings.TrimSpace(sourceLang)),
		TargetLang: strings.ToUpper(strings.TrimSpace(targetLang)),
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, crerr.Wrap(err, "marshal translate request")
	}

	c.logger.DebugContext(ctx, "translate batch request",
		"texts", len(texts), "source", payload.SourceLang, "target", payload.TargetLang,
		"preview", batchPreview(texts))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", strings.NewReader(string(body)))
	if err != nil {
		return nil, crerr.Wrap(err, "create translate request")
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate batch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("translator status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded translateResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode translate response: %w", err)
	}
	if len(decoded.Translations) != len(texts) {
		return nil, fmt.Errorf("translator returned %d texts, want %d", len(decoded.Translations), len(texts))
	}

	out := make([]string, len(texts))
	for i, item := range decoded.Translations {
		out[i] = item.Text
	}
	return out, nil
}

// batchPreview renders a short log preview of the batch without allocating a
// builder per call.
func batchPreview(texts []string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, text := range texts {
		if i > 0 {
			_, _ = buf.WriteString(" | ")
		}
		if len(text) > 60 {
			text = text[:60] + "..."
		}
		_, _ = buf.WriteString(text)
		if buf.Len() > 400 {
			break
		}
	}
	return buf.String()
}
