// Package catalog fetches the product list shown in the editor sidebar and
// keeps it in memory for drops and searches.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/gyaneshwarpardhi/productflow/internal/metrics"
)

// DefaultURL is the public demo catalog.
const DefaultURL = "https://dummyjson.com/products"

// maxBody caps the catalog response we are willing to decode.
const maxBody = 8 << 20

// FetchFailure describes a catalog fetch that did not produce items.
type FetchFailure struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (f *FetchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("catalog fetch %s: status %d", f.URL, f.StatusCode)
	}
	return fmt.Sprintf("catalog fetch %s: %v", f.URL, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	URL             string
	Timeout         time.Duration
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerOpenFor  time.Duration // how long the breaker stays open
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// Client performs single, unretried GETs against the catalog source.
type Client struct {
	url  string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
	log  *slog.Logger
}

// NewClient builds a Client guarded by a circuit breaker.
func NewClient(cfg ClientConfig) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{url: cfg.URL, http: hc, log: cfg.Logger}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// URL returns the catalog source address.
func (c *Client) URL() string { return c.url }

type productsPayload struct {
	Products []Item `json:"products"`
}

// Fetch retrieves the full product list. Every failure, including a
// rejection by the open breaker, is returned as *FetchFailure.
func (c *Client) Fetch(ctx context.Context) ([]Item, error) {
	res, err := c.cb.Execute(func() (any, error) {
		return c.get(ctx)
	})
	if err != nil {
		var ff *FetchFailure
		if errors.As(err, &ff) {
			metrics.CatalogFetches.WithLabelValues("error").Inc()
			return nil, ff
		}
		// ErrOpenState / ErrTooManyRequests
		metrics.CatalogFetches.WithLabelValues("rejected").Inc()
		return nil, &FetchFailure{URL: c.url, Err: err}
	}
	metrics.CatalogFetches.WithLabelValues("ok").Inc()
	return res.([]Item), nil
}

func (c *Client) get(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchFailure{URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchFailure{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchFailure{URL: c.url, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	var payload productsPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&payload); err != nil {
		return nil, &FetchFailure{URL: c.url, Err: fmt.Errorf("decode: %w", err)}
	}
	if payload.Products == nil {
		payload.Products = []Item{}
	}
	return payload.Products, nil
}
