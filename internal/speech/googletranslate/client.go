// Package googletranslate synthesizes speech with the public Google Translate
// TTS endpoint.
package googletranslate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"idioviet/internal/speech"
)

const (
	DefaultBaseURL  = "https://translate.google.com/translate_tts"
	DefaultLanguage = "vi"
	DefaultTimeout  = 10 * time.Second

	// maxAudioBytes bounds the upstream body read into memory
	maxAudioBytes = 5 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	accept    = "audio/mpeg,audio/*;q=0.9,*/*;q=0.8"
	referer   = "https://translate.google.com/"
)

// Metrics receives upstream call accounting
type Metrics interface {
	RecordTTSUpstream(outcome string, duration time.Duration)
}

// Client implements speech.Provider
type Client struct {
	baseURL    string
	language   string
	timeout    time.Duration
	httpClient *http.Client
	metrics    Metrics
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the translate_tts endpoint
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLanguage sets the spoken language code
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets the HTTP client used for upstream calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records every upstream call
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		language:   DefaultLanguage,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize fetches an MP3 clip for text
func (c *Client) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	start := time.Now()
	audio, outcome, err := c.fetch(ctx, text)
	if c.metrics != nil {
		c.metrics.RecordTTSUpstream(outcome, time.Since(start))
	}
	return audio, err
}

func (c *Client) fetch(ctx context.Context, text string) (*speech.Audio, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, "error", fmt.Errorf("invalid tts base url: %w", err)
	}
	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", c.language)
	q.Set("client", "tw-ob")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "error", fmt.Errorf("failed to build tts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Referer", referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "error", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, "upstream_error", &speech.UpstreamError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, "error", fmt.Errorf("failed to read tts response: %w", err)
	}
	if len(data) > maxAudioBytes {
		return nil, "error", fmt.Errorf("tts response exceeds %d bytes", maxAudioBytes)
	}

	return &speech.Audio{Data: data, ContentType: "audio/mpeg"}, "ok", nil
}
