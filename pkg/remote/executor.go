package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/requestid"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

const (
	// MutationsPath is where mutations are posted, relative to the base URL.
	MutationsPath = "/mutations"

	userAgent    = "syncqueue/1.0"
	maxErrorBody = 64 * 1024
)

// Executor posts mutations to a sync endpoint. Its Execute method matches
// syncqueue.Executor. It makes a single attempt per call; retries belong to
// the queue.
type Executor struct {
	endpoint string
	secret   string
	timeout  time.Duration
	client   *http.Client
	breaker  *CircuitBreaker
	headers  map[string]string
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithCircuitBreaker replaces the breaker built from Config. Nil disables it.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(e *Executor) {
		e.breaker = cb
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(e *Executor) {
		if key != "" {
			e.headers[key] = value
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor validates cfg and builds an executor posting to
// cfg.BaseURL + MutationsPath.
func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	endpoint, err := endpointURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	e := &Executor{
		endpoint: endpoint,
		secret:   cfg.Secret,
		timeout:  timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: NewCircuitBreaker(cfg.FailureThreshold, 1, cfg.RecoveryTimeout),
		headers: map[string]string{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logger.Component("remote"))
	if e.breaker != nil {
		e.breaker.OnStateChange(func(from, to CircuitState) {
			e.logger.Warn("circuit breaker state changed",
				slog.String("endpoint", e.endpoint),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		})
	}
	return e, nil
}

// Endpoint returns the URL mutations are posted to.
func (e *Executor) Endpoint() string {
	return e.endpoint
}

// Breaker returns the executor's circuit breaker, or nil.
func (e *Executor) Breaker() *CircuitBreaker {
	return e.breaker
}

// Execute sends m once. It returns nil on a 2xx response. While the breaker
// is open it sends nothing and returns ErrCircuitOpen wrapping
// syncqueue.ErrNotAttempted, so the queue keeps the mutation's retry budget.
func (e *Executor) Execute(ctx context.Context, m mutation.PendingMutation) error {
	if m.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMutation, mutation.ErrMissingID)
	}
	if e.breaker != nil && !e.breaker.Allow() {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, syncqueue.ErrNotAttempted)
	}

	body, err := json.Marshal(m)
	if err != nil {
		return errors.Join(ErrInvalidMutation, err)
	}

	status, err := e.send(ctx, m, body)
	e.record(err)
	if err != nil {
		e.logger.DebugContext(ctx, "remote execution failed",
			logger.MutationID(m.ID),
			slog.Int("status", status),
			logger.Error(err))
	}
	return err
}

func (e *Executor) send(ctx context.Context, m mutation.PendingMutation, body []byte) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderIdempotencyKey, m.ID)
	req.Header.Set(HeaderMutationType, string(m.Type))
	requestid.SetHeader(ctx, req.Header)
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}
	if e.secret != "" {
		sig, err := Sign(e.secret, body, time.Now())
		if err != nil {
			return 0, err
		}
		sig.Apply(req.Header)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}

	msg := fmt.Sprintf("remote returned status %d", resp.StatusCode)
	if b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); len(b) > 0 {
		text := strings.ReplaceAll(strings.TrimSpace(string(b)), "\n", " ")
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		msg += ": " + text
	}
	if isPermanent(resp.StatusCode) {
		return resp.StatusCode, fmt.Errorf("%w: %s", ErrPermanentFailure, msg)
	}
	return resp.StatusCode, fmt.Errorf("%w: %s", ErrTemporaryFailure, msg)
}

// record feeds the breaker. A rejected mutation says nothing about the
// endpoint's health, so permanent failures count as successes.
func (e *Executor) record(err error) {
	if e.breaker == nil {
		return
	}
	if err == nil || errors.Is(err, ErrPermanentFailure) {
		e.breaker.RecordSuccess()
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	e.breaker.RecordFailure()
}

// isPermanent reports 4xx responses that will fail again unchanged.
func isPermanent(status int) bool {
	if status < 400 || status >= 500 {
		return false
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}

func endpointURL(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("%w: base URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + MutationsPath
	return u.String(), nil
}
