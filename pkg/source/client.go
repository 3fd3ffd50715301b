package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/internal/observability"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

// Source names used in logs, spans and metrics.
const (
	NameWeather   = "weather"
	NameRiver     = "river"
	NameFlood     = "flood"
	NameBuildings = "buildings"
	NameTiles     = "tiles"
)

const tracerName = "github.com/nanoubon/hatyai-flood-simulation/pkg/source"

// Client fetches every upstream data source for one scene center. It is
// safe for concurrent use.
type Client struct {
	cfg     config.Sources
	center  geo.Coordinate
	zoom    int
	http    *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
	log     logging.Logger
	metrics *observability.FetchCollector
	now     func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Timeout, if any, wins
// over the configured one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *observability.FetchCollector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock fixes the cache-busting timestamp, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a Client for cfg's center and sources. A zero Timeout means
// requests never time out.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.Sources,
		center: cfg.Center,
		zoom:   cfg.Scene.TileZoom,
		http:   &http.Client{Timeout: cfg.Sources.Timeout},
		tracer: otel.Tracer(tracerName),
		log:    logging.Noop(),
		now:    time.Now,
	}
	if rps := cfg.Sources.RequestsPerSecond; rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logging.String("component", "source"))
	return c
}

// Center returns the coordinate every query is made around.
func (c *Client) Center() geo.Coordinate {
	return c.center
}

// begin waits for the rate limiter and opens a span. The returned func
// closes the span and records metrics; call it exactly once.
func (c *Client) begin(ctx context.Context, source, target string) (context.Context, func(error), error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ctx, nil, fmt.Errorf("%s: rate limit: %w", source, err)
		}
	}

	host := ""
	if u, err := url.Parse(target); err == nil {
		host = u.Host
	}
	ctx, span := c.tracer.Start(ctx, "fetch "+source,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("floodsim.source", source),
			attribute.String("server.address", host),
		),
	)
	start := time.Now()

	end := func(err error) {
		d := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.Warn(ctx, "fetch failed",
				logging.String("source", source),
				logging.Err(err),
				logging.Any("elapsed", d),
			)
		} else {
			c.log.Debug(ctx, "fetch complete",
				logging.String("source", source),
				logging.Any("elapsed", d),
			)
		}
		span.End()
		c.metrics.ObserveFetch(source, d, err)
	}
	return ctx, end, nil
}

// get performs a GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, source, target string) (body []byte, err error) {
	ctx, end, err := c.begin(ctx, source, target)
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", source, err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Source: source, Code: resp.StatusCode}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", source, err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, source, target string, v any) error {
	body, err := c.get(ctx, source, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: decode: %w", source, err)
	}
	return nil
}

// StatusError is a non-200 upstream response.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP error! status: %d", e.Source, e.Code)
}
