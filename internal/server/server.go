package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/internal/observability"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a running scene assembly to the browser renderer.
type Server struct {
	cfg      *config.Config
	asm      *scene.Assembly
	headless *scene.Headless
	log      logging.Logger
	metrics  *observability.HTTPCollector
}

// New creates a server for the given assembly. headless may be nil; when
// set, /healthz reports its last frame.
func New(cfg *config.Config, asm *scene.Assembly, headless *scene.Headless, log logging.Logger, metrics *observability.HTTPCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		cfg:      cfg,
		asm:      asm,
		headless: headless,
		log:      log.With(logging.String("component", "server")),
		metrics:  metrics,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(CORS(s.cfg.Server.AllowedOrigins))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/scene", s.handleScene)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/progress", s.handleProgress)
		r.Get("/validation", s.handleValidation)
		r.Get("/labels/{id}.png", s.handleLabel)
		r.Get("/ground.png", s.handleGround)
		r.Put("/water-level", s.handleWaterLevel)
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info(ctx, "floodsim server starting",
		logging.String("url", "http://localhost"+addr),
		logging.String("session", s.asm.SessionID()),
	)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Flood simulation: %s</title></head>
<body style="margin:0;background:#87CEEB;color:#111;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>%s</h1>
<p>Scene API at <code>/api/scene</code>, dashboard at <code>/api/dashboard</code>.</p>
</div>
</body></html>`, s.cfg.Name, s.cfg.Name)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.asm.State()
	body := map[string]any{
		"state":   state.String(),
		"session": s.asm.SessionID(),
		"frames":  s.asm.Frames(),
	}
	if s.headless != nil {
		seq, at := s.headless.Last()
		body["last_frame"] = seq
		body["renderer_closed"] = s.headless.Closed()
		if !at.IsZero() {
			body["last_frame_at"] = at.UTC().Format(time.RFC3339Nano)
		}
	}
	code := http.StatusOK
	if state != scene.StateReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.asm.Snapshot())
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	d, report := s.asm.Dashboard()
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": d,
		"sources":   report,
		"progress":  s.asm.Progress(),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.asm.Progress())
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scene.ValidateGraph(s.asm.Snapshot()))
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.asm.Graph().LabelPNG(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (s *Server) handleGround(w http.ResponseWriter, _ *http.Request) {
	img := s.asm.Graph().GroundTexture()
	if img == nil {
		writeError(w, http.StatusNotFound, "ground texture not loaded")
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

type waterLevelRequest struct {
	Level *float64 `json:"level"`
}

func (s *Server) handleWaterLevel(w http.ResponseWriter, r *http.Request) {
	var req waterLevelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Level == nil {
		writeError(w, http.StatusBadRequest, `missing "level"`)
		return
	}

	err := s.asm.SetWaterLevel(*req.Level)
	switch {
	case errors.Is(err, scene.ErrDisposed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Debug(r.Context(), "water level set", logging.Float("level", *req.Level))

	d, _ := s.asm.Dashboard()
	writeJSON(w, http.StatusOK, map[string]any{
		"level": *req.Level,
		"alert": d.Alert,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
