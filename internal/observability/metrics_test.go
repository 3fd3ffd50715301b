package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
)

func TestFetchCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewFetchCollector(reg)
	if err != nil {
		t.Fatalf("NewFetchCollector failed: %v", err)
	}

	c.ObserveFetch("weather", 120*time.Millisecond, nil)
	c.ObserveFetch("weather", 80*time.Millisecond, errors.New("timeout"))
	c.ObserveFetch("flood", time.Second, nil)

	if got := testutil.ToFloat64(c.Requests.WithLabelValues("weather", OutcomeOK)); got != 1 {
		t.Errorf("expected 1 ok weather fetch, got %v", got)
	}
	if got := testutil.ToFloat64(c.Requests.WithLabelValues("weather", OutcomeError)); got != 1 {
		t.Errorf("expected 1 failed weather fetch, got %v", got)
	}
	if n := testutil.CollectAndCount(c.Durations); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}

func TestCollectorsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
	a.IncFrames()
	b.IncFrames()
	if got := testutil.ToFloat64(a.Frames); got != 2 {
		t.Errorf("expected shared counter at 2, got %v", got)
	}
}

func TestSceneCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c.SetEntityCounts(map[string]int{"building": 12, "flood": 3})
	c.SetWaterLevel(4.5)
	c.SetRainParticles(15000)
	c.IncDropped()

	if got := testutil.ToFloat64(c.Entities.WithLabelValues("building")); got != 12 {
		t.Errorf("expected 12 buildings, got %v", got)
	}
	if got := testutil.ToFloat64(c.WaterLevel); got != 4.5 {
		t.Errorf("expected water level 4.5, got %v", got)
	}

	expected := `
# HELP floodsim_rain_particles Rain particles in the scene; 0 when dry.
# TYPE floodsim_rain_particles gauge
floodsim_rain_particles 15000
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "floodsim_rain_particles"); err != nil {
		t.Error(err)
	}
}

func TestNilCollectorsAreSafe(t *testing.T) {
	var f *FetchCollector
	f.ObserveFetch("weather", time.Second, nil)
	var s *SceneCollector
	s.IncFrames()
	s.SetWaterLevel(1)
	s.SetEntityCounts(map[string]int{"x": 1})
}

func TestHTTPCollectorMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewHTTPCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/labels/{id}.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})
	r.Handle("/metrics", c.Handler())

	for _, path := range []string{"/api/labels/a.png", "/api/labels/b.png", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(c.Requests.WithLabelValues("GET", "/api/labels/{id}.png", "404")); got != 2 {
		t.Errorf("expected 2 label requests under one route, got %v", got)
	}
	if got := testutil.ToFloat64(c.Requests.WithLabelValues("GET", "/healthz", "200")); got != 1 {
		t.Errorf("expected 1 healthz request, got %v", got)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "floodsim_http_requests_total") {
		t.Error("expected /metrics to expose http counters")
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingDef{}, nil, nil)
	if err != nil {
		t.Fatalf("InitTracing failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown failed: %v", err)
	}
}

func TestInitTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), config.TracingDef{Enabled: true, ServiceName: "floodsim-test"}, &buf, nil)
	if err != nil {
		t.Fatalf("InitTracing failed: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "fetch weather")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, nil)

	if !strings.Contains(buf.String(), "fetch weather") {
		t.Errorf("expected exported span, got %q", buf.String())
	}
}
