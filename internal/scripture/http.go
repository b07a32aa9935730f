package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rcliao/lessonforge/internal/httpx"
)

const defaultHTTPTimeout = 20 * time.Second

// HTTPConfig configures the passage API client.
type HTTPConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// HTTPProvider fetches passages from an ESV-style passage text API.
type HTTPProvider struct {
	cfg        HTTPConfig
	httpClient *http.Client
	retrier    httpx.Retrier
}

// Option customizes the provider.
type Option func(*HTTPProvider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *HTTPProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithRetrier overrides the retry policy.
func WithRetrier(r httpx.Retrier) Option {
	return func(p *HTTPProvider) {
		p.retrier = r
	}
}

// NewHTTPProvider constructs a provider from cfg.
func NewHTTPProvider(cfg HTTPConfig, opts ...Option) *HTTPProvider {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	p := &HTTPProvider{
		cfg: HTTPConfig{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		retrier:    httpx.DefaultRetrier(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type passageResponse struct {
	Query     string   `json:"query"`
	Canonical string   `json:"canonical"`
	Passages  []string `json:"passages"`
	Detail    string   `json:"detail"`
}

// GetPassage resolves reference. Missing passages wrap ErrNotFound; every
// other failure wraps ErrProviderUnavailable.
func (p *HTTPProvider) GetPassage(ctx context.Context, reference, translation string) (Passage, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Passage{}, fmt.Errorf("get passage: %w: empty reference", ErrNotFound)
	}
	if p.cfg.APIKey == "" {
		return Passage{}, fmt.Errorf("get passage: %w: api key required", ErrProviderUnavailable)
	}

	var parsed passageResponse
	err := p.retrier.Do(ctx, func() error {
		var err error
		parsed, err = p.fetch(ctx, reference, translation)
		return err
	})
	if err != nil {
		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return Passage{}, fmt.Errorf("get passage %q: %w", reference, ErrNotFound)
		}
		return Passage{}, fmt.Errorf("get passage %q: %w: %w", reference, ErrProviderUnavailable, err)
	}

	text := strings.TrimSpace(strings.Join(parsed.Passages, "\n\n"))
	if text == "" || strings.TrimSpace(parsed.Canonical) == "" {
		return Passage{}, fmt.Errorf("get passage %q: %w", reference, ErrNotFound)
	}
	return Passage{
		CanonicalReference: strings.TrimSpace(parsed.Canonical),
		Text:               text,
	}, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, reference, translation string) (passageResponse, error) {
	var parsed passageResponse
	q := url.Values{}
	q.Set("q", reference)
	q.Set("translation", NormalizeTranslation(translation))
	q.Set("include-passage-references", "false")
	q.Set("include-footnotes", "false")
	q.Set("include-headings", "false")
	q.Set("include-short-copyright", "false")
	endpoint := p.cfg.BaseURL + "/passage/text/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return parsed, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return parsed, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parsed, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return parsed, httpx.NewStatusError(resp, body)
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, fmt.Errorf("decode response: %w (body: %s)", err, httpx.Snippet(string(body)))
	}
	return parsed, nil
}
