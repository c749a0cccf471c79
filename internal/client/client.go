// Package client talks to the strategy backend that serves candles and
// trade tickets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/protrade/internal/core"
	"go.uber.org/zap"
)

const (
	candlesPath  = "/market/candles"
	strategyPath = "/strategies/video-bos"

	// Limit is the fixed number of candles requested per call.
	Limit = 200

	// maxErrorBody caps how much of an error response is kept for logs.
	maxErrorBody = 512
)

// Endpoint names used in errors, logs and metrics.
const (
	EndpointCandles  = "candles"
	EndpointStrategy = "strategy"
)

// Observer receives one observation per backend call.
type Observer interface {
	ObserveUpstream(endpoint string, status int, duration float64)
}

// StatusError reports a backend response outside the 2xx range.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s endpoint returned status %d", e.Endpoint, e.StatusCode)
}

// Client fetches candles and strategy reports from the backend.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("parsing api base: %w", err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("api base must be an absolute http(s) URL, got %q", baseURL))
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchCandles fetches the latest candles for symbol and tf. A response
// whose candles field is missing or not an array yields an empty slice.
func (c *Client) FetchCandles(ctx context.Context, symbol string, tf core.Timeframe) ([]core.Candle, error) {
	body, err := c.get(ctx, EndpointCandles, candlesPath, symbol, tf)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		if !json.Valid(body) {
			return nil, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("decoding candles: %w", err))
		}
		// Valid JSON that is not an object carries no candles.
		return []core.Candle{}, nil
	}

	raw, ok := envelope["candles"]
	if !ok || !isArray(raw) {
		c.logger.Debug("candles field missing or not an array",
			zap.String("symbol", symbol),
			zap.String("tf", string(tf)),
		)
		return []core.Candle{}, nil
	}

	candles := []core.Candle{}
	if err := json.Unmarshal(raw, &candles); err != nil {
		return nil, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("decoding candles: %w", err))
	}
	return candles, nil
}

// FetchStrategy fetches the strategy report for symbol and tf.
func (c *Client) FetchStrategy(ctx context.Context, symbol string, tf core.Timeframe) (*core.StrategyReport, error) {
	body, err := c.get(ctx, EndpointStrategy, strategyPath, symbol, tf)
	if err != nil {
		return nil, err
	}

	var report core.StrategyReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("decoding strategy: %w", err))
	}
	return &report, nil
}

// buildURL composes {base}{path}?symbol=..&tf=..&limit=200.
func (c *Client) buildURL(path, symbol string, tf core.Timeframe) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("tf", string(tf))
	q.Set("limit", strconv.Itoa(Limit))
	u.RawQuery = q.Encode()

	return u.String()
}

// get performs a single uncached GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint, path, symbol string, tf core.Timeframe) ([]byte, error) {
	target := c.buildURL(path, symbol, tf)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("fetching %s: %w", endpoint, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(endpoint, resp.StatusCode, start)
	if err != nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable, fmt.Errorf("reading %s response: %w", endpoint, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.logger.Debug("backend returned error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, core.WrapError(core.ErrUpstreamStatus, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		})
	}

	c.logger.Debug("backend request complete",
		zap.String("endpoint", endpoint),
		zap.String("symbol", symbol),
		zap.String("tf", string(tf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(endpoint, status, time.Since(start).Seconds())
	}
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// HTTPStatus returns the backend status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}
