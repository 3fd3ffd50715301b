package scene

import (
	"fmt"
	"image"
	"sync"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
)

// LiveGraph is the mutable scene read by the renderer every frame. Writers
// hold the lock for a whole object, so readers never see a partial mesh.
type LiveGraph struct {
	mu sync.RWMutex

	meta     Metadata
	env      Environment
	entities []Entity
	index    map[string]int
	groups   Groups
	rain     *Rain
	ground   image.Image
	disposed bool
}

var _ Scene = (*LiveGraph)(nil)

// NewLiveGraph creates a scene holding the static lights, ground and water.
func NewLiveGraph(sessionID string, cfg *config.Config) *LiveGraph {
	g := &LiveGraph{
		meta: Metadata{
			SessionID:  sessionID,
			Name:       cfg.Name,
			Center:     cfg.Center,
			WaterLevel: cfg.Scene.Water.Min,
		},
		env:    newEnvironment(cfg.Scene),
		index:  make(map[string]int),
		groups: newGroups(),
	}
	for _, e := range staticEntities(cfg.Scene) {
		g.add(e)
	}
	return g
}

// add appends e. Callers hold the write lock.
func (g *LiveGraph) add(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("scene: entity has empty id")
	}
	if _, ok := g.index[e.ID]; ok {
		return fmt.Errorf("scene: duplicate entity %q", e.ID)
	}
	g.index[e.ID] = len(g.entities)
	g.entities = append(g.entities, e)
	g.groups.add(e)
	return nil
}

func (g *LiveGraph) AddMesh(m *mesh.Mesh) error {
	if m == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	return g.add(meshEntity(m))
}

func (g *LiveGraph) AddSprite(s *label.Sprite) error {
	if s == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	return g.add(spriteEntity(s))
}

// AddBatch adds meshes and sprites as one update. Nothing is added if the
// scene is disposed; entities rejected as duplicates are skipped.
func (g *LiveGraph) AddBatch(meshes []*mesh.Mesh, sprites []*label.Sprite) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return 0, ErrDisposed
	}
	n := 0
	for _, m := range meshes {
		if m != nil && g.add(meshEntity(m)) == nil {
			n++
		}
	}
	for _, s := range sprites {
		if s != nil && g.add(spriteEntity(s)) == nil {
			n++
		}
	}
	return n, nil
}

// SetWaterLevel moves the water plane to elevation y.
func (g *LiveGraph) SetWaterLevel(y float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	g.meta.WaterLevel = y
	if i, ok := g.index[WaterID]; ok {
		e := &g.entities[i]
		e.Position.Y = y
		e.Bounds = e.Mesh.Bounds.Translate(e.Position)
	}
	return nil
}

// WaterLevel returns the current water plane elevation.
func (g *LiveGraph) WaterLevel() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.meta.WaterLevel
}

func (g *LiveGraph) Environment() Environment {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.env
}

// SetRain installs the rain particles, replacing any existing set.
func (g *LiveGraph) SetRain(r *Rain) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	g.rain = r
	return nil
}

// StepRain advances the rain by one frame.
func (g *LiveGraph) StepRain() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rain != nil {
		g.rain.Step()
	}
}

// RainDrops appends the current drop positions to dst[:0].
func (g *LiveGraph) RainDrops(dst []geo.Vec3) []geo.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.rain == nil {
		return dst[:0]
	}
	return append(dst[:0], g.rain.Drops...)
}

// SetGroundTexture sets the image tiled over the ground plane.
func (g *LiveGraph) SetGroundTexture(img image.Image) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	g.ground = img
	g.env.GroundTexture = img != nil
	return nil
}

// GroundTexture returns the ground image, or nil before it has loaded.
func (g *LiveGraph) GroundTexture() image.Image {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ground
}

// LabelPNG encodes the texture of label id.
func (g *LiveGraph) LabelPNG(id string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.index[id]
	if !ok || g.entities[i].Sprite == nil {
		return nil, fmt.Errorf("scene: no label %q", id)
	}
	return g.entities[i].Sprite.PNG()
}

// Each calls fn for every entity under the read lock. fn must not call
// back into the graph.
func (g *LiveGraph) Each(fn func(e *Entity)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := range g.entities {
		fn(&g.entities[i])
	}
}

// Counts returns the number of entities per type.
func (g *LiveGraph) Counts() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]int, len(g.groups.Types))
	for t, ids := range g.groups.Types {
		out[string(t)] = len(ids)
	}
	return out
}

// Snapshot copies the scene into a Graph. Sprites are copied by value so
// later disposal does not reach the copy.
func (g *LiveGraph) Snapshot() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := NewGraph()
	out.Metadata = g.meta
	out.Metadata.Disposed = g.disposed
	out.Environment = g.env
	out.Rain = g.rain.info()
	out.Entities = make([]Entity, len(g.entities))
	for i, e := range g.entities {
		if e.Sprite != nil {
			s := *e.Sprite
			e.Sprite = &s
		}
		if e.Light != nil {
			l := *e.Light
			e.Light = &l
		}
		out.Entities[i] = e
		out.Groups.add(e)
	}
	out.Metadata.Bounds = computeBounds(out.Entities)
	return out
}

// Disposed reports whether Dispose has run.
func (g *LiveGraph) Disposed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.disposed
}

// Dispose releases every texture and buffer reference. It is safe to call
// more than once.
func (g *LiveGraph) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return
	}
	for _, e := range g.entities {
		if e.Sprite != nil {
			e.Sprite.Release()
		}
	}
	g.entities = nil
	g.index = make(map[string]int)
	g.groups = newGroups()
	g.rain = nil
	g.ground = nil
	g.env.GroundTexture = false
	g.disposed = true
}
