// Package feed fetches the task list from the remote demo endpoint.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/logging"
	"github.com/adriangreen/todo-tui/internal/todo"
)

// DefaultTimeout bounds a fetch when the client has no timeout configured.
const DefaultTimeout = 10 * time.Second

// MaxBodyBytes caps the response size.
const MaxBodyBytes = 10 << 20

// ErrBodyTooLarge is returned when the response exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

// Client fetches tasks over HTTP. It never retries.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
}

// NewClient builds a client from the feed settings.
func NewClient(cfg *config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		URL:        cfg.Feed.URL,
		HTTPClient: http.DefaultClient,
		Timeout:    cfg.Feed.Timeout(),
		Logger:     logger,
	}
}

// Fetch retrieves and validates the task list. Cancelling ctx aborts the request.
func (c *Client) Fetch(ctx context.Context) ([]todo.Task, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Warn("fetch failed", "url", c.URL, "err", err)
		return nil, fmt.Errorf("fetch %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		c.logger().Warn("fetch rejected", "url", c.URL, "status", resp.StatusCode)
		return nil, &StatusError{URL: c.URL, Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return nil, fmt.Errorf("fetch %s: %w", c.URL, ErrBodyTooLarge)
	}

	tasks, err := Decode(body)
	if err != nil {
		c.logger().Warn("payload rejected", "url", c.URL, "err", err)
		return nil, err
	}

	c.logger().Debug("fetched tasks", "url", c.URL, "count", len(tasks), "elapsed", time.Since(start))
	return tasks, nil
}

// Load runs Fetch and folds the outcome into a Result.
func (c *Client) Load(ctx context.Context) Result {
	tasks, err := c.Fetch(ctx)
	if err != nil {
		return Failure(err)
	}
	return Success(tasks)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard()
}
