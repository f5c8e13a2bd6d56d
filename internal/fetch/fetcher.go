package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const (
	defaultAttempts = 3
	defaultTimeout  = 30 * time.Second
	maxBodyBytes    = 8 << 20
)

// Request describes one outbound call. Body is JSON-encoded when non-nil.
type Request struct {
	Name   string
	Method string
	URL    string
	Body   any
}

// Fetcher performs outbound calls with a bounded number of attempts. Only
// timeouts are retried; every other failure aborts immediately.
type Fetcher struct {
	httpClient *http.Client
	attempts   uint
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithAttempts overrides the attempt budget. Values below 1 are ignored.
func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = uint(n)
		}
	}
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithRateLimit caps outbound attempts per minute across all callers of this
// Fetcher.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(f *Fetcher) {
		if requestsPerMinute <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{},
		attempts:   defaultAttempts,
		timeout:    defaultTimeout,
		logger:     slog.Default().With("component", "fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch sends req and returns the raw response body.
func (f *Fetcher) Fetch(ctx context.Context, req Request, creds Credentials) ([]byte, error) {
	if creds == nil {
		return nil, ErrMissingCredentials
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch: marshal %s request: %w", req.Name, err)
		}
	}

	var (
		body    []byte
		attempt uint
	)
	err := retry.Do(
		func() error {
			attempt++
			out, err := f.attempt(ctx, req, payload, creds)
			if err != nil {
				if isTimeout(err) {
					f.logger.Warn("upstream timeout", "api", req.Name, "attempt", attempt, "max_attempts", f.attempts)
				} else {
					f.logger.Error("upstream error", "api", req.Name, "attempt", attempt, "err", err)
				}
				return err
			}
			body = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && isTimeout(err)
		}),
	)
	if err == nil {
		return body, nil
	}
	if ctx.Err() == nil && isTimeout(err) {
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrExhausted, req.Name, attempt, err)
	}
	return nil, err
}

func (f *Fetcher) attempt(ctx context.Context, req Request, payload []byte, creds Credentials) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch: rate limit wait: %w", err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("fetch: create %s request: %w", req.Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	creds.Apply(httpReq.Header)

	res, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	f.logger.Info("upstream response", "api", req.Name, "status", res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &StatusError{
			StatusCode: res.StatusCode,
			URL:        req.URL,
			Body:       strings.TrimSpace(string(buf)),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read %s response body: %w", req.Name, err)
	}
	return buf, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
