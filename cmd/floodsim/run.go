package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/internal/observability"
	"github.com/nanoubon/hatyai-flood-simulation/internal/server"
	"github.com/nanoubon/hatyai-flood-simulation/internal/viewer"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/source"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/validation"
)

// loadConfig resolves a project argument: nothing means the built-in Hat
// Yai defaults, a .yaml path is read directly, anything else is a project
// directory holding floodsim.yaml.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path == "":
		cfg := config.Default()
		return cfg, cfg.ApplyEnv(".")
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.ApplyEnv(filepath.Dir(path))
	default:
		return config.LoadProject(path)
	}
}

// loadAndValidate loads the config and runs schema validation.
func loadAndValidate(path string) (*config.Config, *validation.Report, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, validation.ValidateConfig(cfg), nil
}

// app holds everything a command shares: config, logging, metrics,
// tracing and the upstream client.
type app struct {
	cfg      *config.Config
	log      logging.Logger
	session  string
	registry *prometheus.Registry
	fetch    *observability.FetchCollector
	scene    *observability.SceneCollector
	http     *observability.HTTPCollector
	client   *source.Client
	labels   *label.Builder
	fontTTF  []byte
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, path string, flags globalFlags) (*app, error) {
	cfg, report, err := loadAndValidate(path)
	if err != nil {
		return nil, err
	}
	if !report.Valid {
		printValidationReport(report)
		return nil, fmt.Errorf("config has validation errors: %w", report.Err())
	}

	a := &app{
		cfg:      cfg,
		session:  logging.NewSessionID(),
		registry: prometheus.NewRegistry(),
	}
	a.log = logging.NewFromEnv(flags.logLevel).With(logging.String("session", a.session))
	for _, w := range report.Warnings {
		a.log.Warn(ctx, "config warning", logging.String("path", w.Path), logging.String("message", w.Message))
	}

	if a.fetch, err = observability.NewFetchCollector(a.registry); err != nil {
		return nil, err
	}
	if a.scene, err = observability.NewSceneCollector(a.registry); err != nil {
		return nil, err
	}
	if a.http, err = observability.NewHTTPCollector(a.registry); err != nil {
		return nil, err
	}

	if a.shutdown, err = observability.InitTracing(ctx, cfg.Tracing, nil, a.log); err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	if flags.labelFont != "" {
		a.fontTTF, err = os.ReadFile(flags.labelFont)
		if err != nil {
			return nil, fmt.Errorf("reading label font: %w", err)
		}
		a.labels, err = label.NewBuilderFromTTF(a.fontTTF)
	} else {
		a.labels, err = label.NewBuilder()
	}
	if err != nil {
		return nil, fmt.Errorf("loading label font: %w", err)
	}

	a.client = source.New(cfg,
		source.WithLogger(a.log),
		source.WithMetrics(a.fetch),
	)
	return a, nil
}

func (a *app) close() {
	observability.ShutdownWithTimeout(context.Background(), a.shutdown, a.log)
}

func (a *app) loader() *scene.SourceLoader {
	b := mesh.NewBuilder(a.cfg.Projection())
	b.FloodElevation = a.cfg.Scene.FloodElevation
	return scene.NewSourceLoader(
		a.client,
		b,
		a.labels,
		osm.NewRand(a.cfg.Scene.Seed),
		a.log,
	)
}

func (a *app) assembly(sched scene.Scheduler, r scene.Renderer, l scene.Loader) *scene.Assembly {
	return scene.NewAssembly(a.cfg, scene.Options{
		Scheduler: sched,
		Renderer:  r,
		Loader:    l,
		Logger:    a.log,
		Metrics:   a.scene,
		SessionID: a.session,
	})
}

func runServe(ctx context.Context, path string, flags globalFlags, port int) error {
	a, err := newApp(ctx, path, flags)
	if err != nil {
		return err
	}
	defer a.close()
	if port > 0 {
		a.cfg.Server.Port = port
	}

	sched := scene.NewTickerScheduler(a.cfg.Scene.FrameRate)
	defer sched.Stop()
	headless := &scene.Headless{}
	asm := a.assembly(sched, headless, a.loader())
	if err := asm.Start(ctx); err != nil {
		return err
	}
	defer asm.Dispose()

	return server.New(a.cfg, asm, headless, a.log, a.http).Start(ctx)
}

func runView(ctx context.Context, path string, flags globalFlags) error {
	a, err := newApp(ctx, path, flags)
	if err != nil {
		return err
	}
	defer a.close()

	sched := &scene.ManualScheduler{}
	v, err := viewer.New(a.cfg, sched, viewer.Options{FontTTF: a.fontTTF, Logger: a.log})
	if err != nil {
		return err
	}
	defer v.Dispose()

	asm := a.assembly(sched, v, a.loader())
	v.Attach(asm)
	if err := asm.Start(ctx); err != nil {
		return err
	}
	defer asm.Dispose()

	// Dispose closes the viewer, which ends the game loop.
	go func() {
		<-ctx.Done()
		asm.Dispose()
	}()
	return v.Run()
}

// buildOnce fetches every source, waits for all of them and applies them
// in a single frame.
func buildOnce(ctx context.Context, a *app, level float64) (*scene.Assembly, error) {
	sched := &scene.ManualScheduler{}
	asm := a.assembly(sched, &scene.Headless{}, nil)

	a.loader().Load(ctx, asm.Post)
	if err := asm.Start(ctx); err != nil {
		return nil, err
	}
	if err := asm.SetWaterLevel(level); err != nil {
		asm.Dispose()
		return nil, err
	}
	sched.Step(time.Now())
	return asm, nil
}

func runSnapshot(ctx context.Context, path string, flags globalFlags, level float64, out string) error {
	a, err := newApp(ctx, path, flags)
	if err != nil {
		return err
	}
	defer a.close()

	asm, err := buildOnce(ctx, a, level)
	if err != nil {
		return err
	}
	defer asm.Dispose()

	graph := asm.Snapshot()
	dashboard, report := asm.Dashboard()
	report.Merge(scene.ValidateGraph(graph))

	output := map[string]any{
		"progress":    asm.Progress(),
		"dashboard":   dashboard,
		"validation":  report,
		"scene_graph": graph,
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runSummary(ctx context.Context, path string, flags globalFlags) error {
	a, err := newApp(ctx, path, flags)
	if err != nil {
		return err
	}
	defer a.close()

	asm, err := buildOnce(ctx, a, a.cfg.Scene.Water.Min)
	if err != nil {
		return err
	}
	defer asm.Dispose()

	dashboard, report := asm.Dashboard()
	printDashboard(a.cfg, dashboard, asm.Snapshot())

	if len(report.Errors) > 0 || len(report.Warnings) > 0 {
		fmt.Println()
		printValidationReport(report)
	}
	return nil
}

func runValidate(path string) error {
	_, report, err := loadAndValidate(path)
	if err != nil {
		return err
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}
