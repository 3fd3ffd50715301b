package scene

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/internal/observability"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/analytics"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/source"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/validation"
)

// State is the assembly lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the outcome of one fetch, built completely before it is
// posted. Source is one of the source.Name* constants.
type Result struct {
	Source  string
	Weather *source.Weather
	River   *source.River
	Flood   *source.FloodResult
	Tile    *source.Tile
	Meshes  []*mesh.Mesh
	Sprites []*label.Sprite
	Err     error
}

// Loader fetches scene content and posts each result as soon as it is
// ready. Load returns once every fetch has resolved.
type Loader interface {
	Load(ctx context.Context, post func(Result))
}

// Progress is the loading indicator: Step of Total fetches have resolved.
type Progress struct {
	Step  int  `json:"step"`
	Total int  `json:"total"`
	Done  bool `json:"done"`
}

// Options wires an Assembly to its collaborators. Scheduler is required.
type Options struct {
	Scheduler Scheduler
	Renderer  Renderer
	Loader    Loader
	Logger    logging.Logger
	Metrics   *observability.SceneCollector
	SessionID string
}

// Assembly owns the live scene, the camera and the frame loop. Fetch
// results reach the scene only through Post and are applied between
// frames.
type Assembly struct {
	cfg      *config.Config
	graph    *LiveGraph
	sched    Scheduler
	renderer Renderer
	loader   Loader
	log      logging.Logger
	metrics  *observability.SceneCollector
	session  string
	rng      osm.RandSource

	// frameMu is held for a whole frame and by Dispose, so teardown never
	// interleaves with rendering.
	frameMu sync.Mutex

	mu        sync.Mutex
	state     State
	pending   []Result
	frameID   FrameID
	scheduled bool
	frames    uint64
	camera    Camera
	orbit     *Orbit
	loaded    map[string]bool
	inputs    analytics.Inputs

	disposeOnce sync.Once
}

// NewAssembly creates an assembly in the Uninitialized state.
func NewAssembly(cfg *config.Config, opts Options) *Assembly {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	session := opts.SessionID
	if session == "" {
		session = logging.NewSessionID()
	}
	seed := cfg.Scene.Seed
	if seed != 0 {
		// Keep the rain stream apart from the building heights.
		seed = rainSeed(seed)
	}
	return &Assembly{
		cfg:      cfg,
		graph:    NewLiveGraph(session, cfg),
		sched:    opts.Scheduler,
		renderer: opts.Renderer,
		loader:   opts.Loader,
		log:      log.With(logging.String("component", "scene")),
		metrics:  opts.Metrics,
		session:  session,
		rng:      osm.NewRand(seed),
		camera:   DefaultCamera(),
		orbit:    NewOrbit(),
		loaded:   make(map[string]bool),
		inputs:   analytics.Inputs{WaterLevel: cfg.Scene.Water.Min},
	}
}

// Start moves the assembly to Ready: the frame loop starts at once and
// the loader runs in the background. Results arriving later are added to
// the running scene.
func (a *Assembly) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateUninitialized {
		st := a.state
		a.mu.Unlock()
		return fmt.Errorf("scene: cannot start from state %s", st)
	}
	a.state = StateInitializing
	a.mu.Unlock()

	ctx = logging.ContextWithSession(ctx, a.session)
	a.log.Info(ctx, "scene initializing",
		logging.String("name", a.cfg.Name),
		logging.Float("lat", a.cfg.Center.Lat),
		logging.Float("lon", a.cfg.Center.Lon),
	)
	a.metrics.SetWaterLevel(a.graph.WaterLevel())
	a.metrics.SetEntityCounts(a.graph.Counts())

	if a.loader != nil {
		go a.loader.Load(ctx, a.Post)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateDisposed {
		return ErrDisposed
	}
	a.state = StateReady
	a.requestFrameLocked()
	return nil
}

// Post queues a fetch result for the next frame. Results posted after
// Dispose are dropped.
func (a *Assembly) Post(r Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateDisposed {
		a.metrics.IncDropped()
		a.log.Debug(context.Background(), "result dropped after dispose",
			logging.String("source", r.Source))
		return
	}
	a.pending = append(a.pending, r)
}

// requestFrameLocked registers the next frame unless one is already
// registered. Callers hold a.mu.
func (a *Assembly) requestFrameLocked() {
	if a.scheduled || a.sched == nil {
		return
	}
	a.frameID = a.sched.RequestFrame(a.frame)
	a.scheduled = true
}

func (a *Assembly) frame(now time.Time) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	a.mu.Lock()
	a.scheduled = false
	if a.state != StateReady {
		a.mu.Unlock()
		return
	}
	pending := a.pending
	a.pending = nil
	a.orbit.Update(&a.camera)
	cam := a.camera
	a.frames++
	seq := a.frames
	a.mu.Unlock()

	for _, r := range pending {
		a.apply(r)
	}
	a.graph.StepRain()
	a.metrics.IncFrames()

	if a.renderer != nil {
		a.renderer.Render(Frame{Seq: seq, Time: now, Camera: cam, Graph: a.graph})
	}

	a.mu.Lock()
	if a.state == StateReady {
		a.requestFrameLocked()
	}
	a.mu.Unlock()
}

// apply adds one result to the scene. It runs on the frame loop only.
func (a *Assembly) apply(r Result) {
	ctx := logging.ContextWithSession(context.Background(), a.session)
	if r.Err != nil {
		a.log.Warn(ctx, "source unavailable",
			logging.String("source", r.Source),
			logging.Err(r.Err),
		)
	}

	a.mu.Lock()
	switch r.Source {
	case source.NameWeather:
		a.inputs.Weather = r.Weather
		a.inputs.WeatherLoaded = true
	case source.NameRiver:
		a.inputs.River = r.River
	case source.NameFlood:
		a.inputs.Flood = r.Flood
	}
	a.loaded[r.Source] = true
	a.mu.Unlock()

	switch r.Source {
	case source.NameWeather:
		if r.Weather.Raining() && a.cfg.Scene.RainCount > 0 {
			if err := a.graph.SetRain(NewRain(a.cfg.Scene.RainCount, a.rng)); err == nil {
				a.metrics.SetRainParticles(a.cfg.Scene.RainCount)
			}
		}
	case source.NameTiles:
		if r.Tile != nil {
			_ = a.graph.SetGroundTexture(r.Tile.Image)
		}
	}

	if len(r.Meshes) > 0 || len(r.Sprites) > 0 {
		n, err := a.graph.AddBatch(r.Meshes, r.Sprites)
		if err != nil {
			return
		}
		a.log.Info(ctx, "scene content added",
			logging.String("source", r.Source),
			logging.Int("entities", n),
		)
	}
	a.metrics.SetEntityCounts(a.graph.Counts())
}

// SetWaterLevel moves the water plane. The level must lie on the
// configured slider range and step.
func (a *Assembly) SetWaterLevel(level float64) error {
	if err := ValidateWaterLevel(level, a.cfg.Scene.Water); err != nil {
		return err
	}
	if err := a.graph.SetWaterLevel(level); err != nil {
		return err
	}
	a.mu.Lock()
	a.inputs.WaterLevel = level
	a.mu.Unlock()
	a.metrics.SetWaterLevel(level)
	return nil
}

// rainSeed derives the rain stream's seed from a non-zero scene seed. It
// never returns 0, which would reseed from the clock.
func rainSeed(seed int64) int64 {
	s := seed ^ 0x5eed
	if s == 0 {
		s = ^seed
	}
	return s
}

// ValidateWaterLevel checks level against the slider range.
func ValidateWaterLevel(level float64, w config.WaterRange) error {
	if math.IsNaN(level) || level < w.Min || level > w.Max {
		return fmt.Errorf("water level %v outside [%v, %v]", level, w.Min, w.Max)
	}
	if w.Step > 0 {
		steps := (level - w.Min) / w.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return fmt.Errorf("water level %v is not a multiple of %v", level, w.Step)
		}
	}
	return nil
}

// Orbit queues camera input for the next frame.
func (a *Assembly) Orbit(dTheta, dPhi, dolly float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orbit.Rotate(dTheta, dPhi)
	a.orbit.Dolly(dolly)
}

// Dispose stops the frame loop, releases the scene and detaches the
// renderer. Fetches still in flight keep running but their results are
// dropped. It must not be called from inside a Renderer.
func (a *Assembly) Dispose() {
	a.disposeOnce.Do(func() {
		a.frameMu.Lock()
		defer a.frameMu.Unlock()

		a.mu.Lock()
		a.state = StateDisposed
		if a.scheduled {
			a.sched.CancelFrame(a.frameID)
			a.scheduled = false
		}
		dropped := len(a.pending)
		a.pending = nil
		frames := a.frames
		a.mu.Unlock()

		for i := 0; i < dropped; i++ {
			a.metrics.IncDropped()
		}
		a.graph.Dispose()
		if a.renderer != nil {
			a.renderer.Close()
		}
		a.metrics.SetEntityCounts(map[string]int{})
		a.metrics.SetRainParticles(0)

		ctx := logging.ContextWithSession(context.Background(), a.session)
		a.log.Info(ctx, "scene disposed",
			logging.Int("frames", int(frames)),
			logging.Int("dropped", dropped),
		)
	})
}

// State returns the lifecycle stage.
func (a *Assembly) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Frames returns the number of frames rendered.
func (a *Assembly) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Graph returns the live scene.
func (a *Assembly) Graph() *LiveGraph {
	return a.graph
}

// SessionID identifies this scene in logs and snapshots.
func (a *Assembly) SessionID() string {
	return a.session
}

// Camera returns the current camera.
func (a *Assembly) Camera() Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camera
}

// Snapshot copies the scene with the current camera.
func (a *Assembly) Snapshot() *Graph {
	g := a.graph.Snapshot()
	cam := a.Camera()
	g.Camera = &cam
	return g
}

// Progress reports how many of the loader's fetches have been applied.
func (a *Assembly) Progress() Progress {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := Progress{Total: len(LoadSources)}
	for _, name := range LoadSources {
		if a.loaded[name] {
			p.Step++
		}
	}
	p.Done = p.Step == p.Total
	return p
}

// Dashboard resolves the overlay panel from the applied results.
func (a *Assembly) Dashboard() (*analytics.Dashboard, *validation.Report) {
	a.mu.Lock()
	in := a.inputs
	a.mu.Unlock()
	return analytics.Resolve(in)
}
