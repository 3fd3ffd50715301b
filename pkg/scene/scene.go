package scene

import (
	"errors"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
)

// ErrDisposed is returned when mutating a scene after teardown.
var ErrDisposed = errors.New("scene: disposed")

// Scene is the capability the assembly draws into. Implementations must
// only ever expose fully built meshes and sprites to readers.
type Scene interface {
	AddMesh(m *mesh.Mesh) error
	AddSprite(s *label.Sprite) error
	Dispose()
}

// EntityType classifies a scene graph entity.
type EntityType string

const (
	EntityFlood    EntityType = "flood"
	EntityBuilding EntityType = "building"
	EntityGround   EntityType = "ground"
	EntityWater    EntityType = "water"
	EntityLabel    EntityType = "label"
	EntityLight    EntityType = "light"
)

// entityTypeForKind maps a mesh kind to its entity type.
func entityTypeForKind(k mesh.Kind) EntityType {
	switch k {
	case mesh.KindFlood:
		return EntityFlood
	case mesh.KindBuilding:
		return EntityBuilding
	case mesh.KindGround:
		return EntityGround
	case mesh.KindWater:
		return EntityWater
	default:
		return EntityType(k)
	}
}

// Entity is a single object in the scene. Exactly one of Mesh, Sprite and
// Light is set. Bounds are in world space, after Position is applied.
type Entity struct {
	ID       string        `json:"id"`
	Type     EntityType    `json:"type"`
	Position geo.Vec3      `json:"position"`
	Bounds   geo.Box       `json:"bounds"`
	Material string        `json:"material,omitempty"`
	Mesh     *mesh.Mesh    `json:"mesh,omitempty"`
	Sprite   *label.Sprite `json:"sprite,omitempty"`
	Light    *Light        `json:"light,omitempty"`
}

// Graph is a point-in-time copy of the scene, safe to serialize and
// validate while the live scene keeps changing.
type Graph struct {
	Metadata    Metadata    `json:"metadata"`
	Environment Environment `json:"environment"`
	Camera      *Camera     `json:"camera,omitempty"`
	Rain        *RainInfo   `json:"rain,omitempty"`
	Entities    []Entity    `json:"entities"`
	Groups      Groups      `json:"groups"`
}

// Metadata describes the scene as a whole.
type Metadata struct {
	SessionID  string         `json:"session_id"`
	Name       string         `json:"name"`
	Center     geo.Coordinate `json:"center"`
	Bounds     geo.Box        `json:"bounds"`
	WaterLevel float64        `json:"water_level"`
	Disposed   bool           `json:"disposed,omitempty"`
}

// Groups indexes entity ids for the renderer's layer toggles.
type Groups struct {
	Types     map[EntityType][]string `json:"types"`
	Materials map[string][]string     `json:"materials"`
}

// NewGraph returns an empty graph with initialized group maps.
func NewGraph() *Graph {
	return &Graph{
		Entities: []Entity{},
		Groups:   newGroups(),
	}
}

func newGroups() Groups {
	return Groups{
		Types:     make(map[EntityType][]string),
		Materials: make(map[string][]string),
	}
}

func (g *Groups) add(e Entity) {
	g.Types[e.Type] = append(g.Types[e.Type], e.ID)
	if e.Material != "" {
		g.Materials[e.Material] = append(g.Materials[e.Material], e.ID)
	}
}

// Count returns the number of entities of type t.
func (g *Graph) Count(t EntityType) int {
	return len(g.Groups.Types[t])
}

// computeBounds calculates the AABB of every mesh and label entity.
// Lights are excluded.
func computeBounds(entities []Entity) geo.Box {
	b := geo.EmptyBox()
	for _, e := range entities {
		if e.Light != nil {
			continue
		}
		b = b.Union(e.Bounds)
	}
	if b.IsEmpty() {
		return geo.Box{}
	}
	return b
}
