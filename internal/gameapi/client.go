// Package gameapi talks to the chess game service over REST/JSON.
package gameapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.http.MaxConnsPerHost = n
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the number of attempts for idempotent reads. Writes are never retried.
func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateGame starts a new game. The request carries no body.
func (c *Client) CreateGame(ctx context.Context) (*chessdto.Game, error) {
	var g chessdto.Game
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/game", nil, &g, false); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) GetGame(ctx context.Context, id int64) (*chessdto.Game, error) {
	var g chessdto.Game
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id), nil, &g, true); err != nil {
		return nil, err
	}
	return &g, nil
}

// SubmitMove asks the service to apply from→to. Only the status is inspected;
// the response body is ignored.
func (c *Client) SubmitMove(ctx context.Context, id int64, from, to chessdto.Coord) error {
	req := chessdto.MoveRequest{From: from, To: to}
	return c.doJSON(ctx, fasthttp.MethodPatch, gamePath(id), req, nil, false)
}

func (c *Client) ListFigures(ctx context.Context, id int64) ([]chessdto.Figure, error) {
	var figs []chessdto.Figure
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id)+"/figures", nil, &figs, true); err != nil {
		return nil, err
	}
	return figs, nil
}

// ValidMoves returns the destinations the service allows for one figure.
func (c *Client) ValidMoves(ctx context.Context, id, figureID int64) ([]chessdto.Coord, error) {
	var resp chessdto.FigureMoves
	path := gamePath(id) + "/figures/" + strconv.FormatInt(figureID, 10)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return []chessdto.Coord(resp.ValidMoves), nil
}

func gamePath(id int64) string {
	return "/game/" + strconv.FormatInt(id, 10)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	requestID := uuid.NewString()
	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	logger := obslog.L().With(zap.String("method", method), zap.String("path", path), zap.String("request_id", requestID))

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		deadline := c.computeDeadline(ctx)
		start := time.Now()
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			logger.Debug("request_failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		logger.Debug("request_done", zap.Int("status", status), zap.Duration("took", time.Since(start)))
		if status < 200 || status >= 300 {
			lastErr = &StatusError{Method: method, Path: path, Code: status, Body: truncate(string(resp.Body()), 512)}
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, path, err)
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
