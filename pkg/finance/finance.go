// Package finance looks up ticker symbols and intraday prices from Yahoo Finance.
package finance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	configpkg "github.com/minhyannv/stockbot-go/pkg/config"
	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes int64 = 4 * 1024 * 1024

var (
	// ErrNoPriceData indicates the chart endpoint returned no usable bar.
	ErrNoPriceData = errors.New("no price data")
	// ErrInvalidSymbol indicates an empty or unusable ticker symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// RequestError wraps a transport failure talking to an upstream endpoint.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("finance %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client calls the Yahoo Finance search and chart endpoints.
type Client struct {
	httpClient *http.Client
	searchURL  string
	chartURL   string
	country    string
	userAgent  string

	logger  loggerpkg.Logger
	verbose bool
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
		c.verbose = verbose
	}
}

// New builds a Client for the configured endpoints. A zero timeout leaves
// requests bounded only by their context.
func New(cfg configpkg.FinanceConfig, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		searchURL:  cfg.SearchURL,
		chartURL:   strings.TrimRight(cfg.ChartURL, "/"),
		country:    cfg.Country,
		userAgent:  cfg.UserAgent,
		logger:     loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) debug(msg string, obj any) {
	loggerpkg.Debug(c.verbose, c.logger, msg, obj)
}

// get issues a GET request and returns the status code and body. Only
// transport-level failures are reported as errors.
func (c *Client) get(ctx context.Context, op, endpoint string, query url.Values) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, errorsx.Wrap(&RequestError{Op: op, Err: err}, errorsx.ReasonProvider)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errorsx.Wrap(&RequestError{Op: op, Err: err}, errorsx.ReasonProvider)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, errorsx.Wrap(&RequestError{Op: op, Err: err}, errorsx.ReasonProvider)
	}
	c.debug("finance request", map[string]any{
		"op":          op,
		"status":      resp.StatusCode,
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return resp.StatusCode, body, nil
}
