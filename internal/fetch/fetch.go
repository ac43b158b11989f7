// Package fetch downloads GData documents, revalidating cached copies with
// If-None-Match and retrying transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jdholdren/gdata/internal/cache"
)

// Document is the result of a fetch.
type Document struct {
	Body []byte
	ETag string

	// NotModified is set when the server confirmed the cached copy.
	NotModified bool
}

type Client struct {
	http    *http.Client
	cache   cache.Cache
	backoff func() retry.Backoff
}

type Option func(*Client)

// WithBackoff replaces the retry schedule, which defaults to three retries
// on a Fibonacci sequence starting at half a second.
func WithBackoff(b func() retry.Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

func New(c cache.Cache, timeout time.Duration, opts ...Option) *Client {
	cl := &Client{
		http:  &http.Client{Timeout: timeout},
		cache: c,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
		},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Get downloads url. A cached copy is offered to the server with its etag and
// returned as is when the server answers 304.
func (c *Client) Get(ctx context.Context, url string) (Document, error) {
	cached, err := c.cache.Get(ctx, url)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		slog.WarnContext(ctx, "error reading cache", "error", err)
	}

	var doc Document
	if err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		d, err := c.get(ctx, url, cached.ETag)
		if err != nil {
			return err
		}
		doc = d
		return nil
	}); err != nil {
		return Document{}, err
	}

	if doc.NotModified {
		return Document{Body: cached.Body, ETag: cached.ETag, NotModified: true}, nil
	}

	if doc.ETag != "" {
		if err := c.cache.Set(ctx, url, cache.Document{ETag: doc.ETag, Body: doc.Body}); err != nil {
			slog.WarnContext(ctx, "error writing cache", "error", err)
		}
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url, etag string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("GData-Version", "2")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, retry.RetryableError(fmt.Errorf("error getting %s: %w", url, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && etag != "":
		return Document{NotModified: true}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Document{}, retry.RetryableError(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Document{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, retry.RetryableError(fmt.Errorf("error reading body: %w", err))
	}
	return Document{Body: body, ETag: resp.Header.Get("ETag")}, nil
}
