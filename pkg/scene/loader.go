package scene

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nanoubon/hatyai-flood-simulation/internal/logging"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/source"
)

// LoadSources are the fetches counted by Progress, in the order the
// loading indicator names them.
var LoadSources = []string{
	source.NameWeather,
	source.NameFlood,
	source.NameRiver,
	source.NameBuildings,
	source.NameTiles,
}

// Fetcher is the subset of source.Client the loader needs.
type Fetcher interface {
	Weather(ctx context.Context) (*source.Weather, error)
	River(ctx context.Context) (source.River, error)
	FloodExtent(ctx context.Context) (source.FloodResult, error)
	Buildings(ctx context.Context) ([]osm.Element, error)
	GroundTile(ctx context.Context) (*source.Tile, error)
}

var _ Fetcher = (*source.Client)(nil)

// SourceLoader runs every fetch concurrently and turns each response into
// finished meshes and labels before posting it.
type SourceLoader struct {
	fetch   Fetcher
	builder *mesh.Builder
	labels  *label.Builder
	rng     osm.RandSource
	log     logging.Logger
}

// NewSourceLoader creates a loader. labels may be nil, in which case every
// building label is inert.
func NewSourceLoader(fetch Fetcher, builder *mesh.Builder, labels *label.Builder, rng osm.RandSource, log logging.Logger) *SourceLoader {
	if log == nil {
		log = logging.Noop()
	}
	return &SourceLoader{
		fetch:   fetch,
		builder: builder,
		labels:  labels,
		rng:     rng,
		log:     log,
	}
}

// Load fetches weather, flood extent, river discharge, buildings and the
// ground tile. The fetches are independent: one failing never stops the
// others, and each result is posted as soon as it is built.
func (l *SourceLoader) Load(ctx context.Context, post func(Result)) {
	var g errgroup.Group

	g.Go(func() error {
		w, err := l.fetch.Weather(ctx)
		post(Result{Source: source.NameWeather, Weather: w, Err: err})
		return nil
	})
	g.Go(func() error {
		res, err := l.fetch.FloodExtent(ctx)
		post(Result{
			Source: source.NameFlood,
			Flood:  &res,
			Meshes: l.builder.FloodOverlays(res.Data),
			Err:    err,
		})
		return nil
	})
	g.Go(func() error {
		river, err := l.fetch.River(ctx)
		post(Result{Source: source.NameRiver, River: &river, Err: err})
		return nil
	})
	g.Go(func() error {
		elements, err := l.fetch.Buildings(ctx)
		if err != nil {
			post(Result{Source: source.NameBuildings, Err: err})
			return nil
		}
		meshes, sprites := l.buildings(elements)
		post(Result{Source: source.NameBuildings, Meshes: meshes, Sprites: sprites})
		return nil
	})
	g.Go(func() error {
		tile, err := l.fetch.GroundTile(ctx)
		post(Result{Source: source.NameTiles, Tile: tile, Err: err})
		return nil
	})

	_ = g.Wait()
	l.log.Debug(ctx, "all sources resolved")
}

// buildings meshes every resolvable footprint and labels the named ones.
func (l *SourceLoader) buildings(elements []osm.Element) ([]*mesh.Mesh, []*label.Sprite) {
	recs := osm.Buildings(elements, l.rng)
	meshes := make([]*mesh.Mesh, 0, len(recs))
	var sprites []*label.Sprite
	for _, rec := range recs {
		m, ok := l.builder.Building(rec)
		if !ok {
			continue
		}
		meshes = append(meshes, m)
		if rec.Name == "" {
			continue
		}
		// Fall back from the Thai name when the face has no Thai glyphs.
		text := l.labels.Pick(osm.Names(rec.Tags)...)
		sprites = append(sprites, l.labels.Build(fmt.Sprintf("label-%d", rec.ID), text, m.LabelAnchor()))
	}
	return meshes, sprites
}
