package scene

import (
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
)

const (
	SkyColor   = "#87CEEB"
	FogDensity = 0.0015

	// GroundY sits just under the flood overlays to avoid z-fighting.
	GroundY = -0.1

	GroundID = "ground"
	WaterID  = "water"
)

// Environment is the background, fog and ground texture setup.
type Environment struct {
	Background    string `json:"background"`
	Fog           Fog    `json:"fog"`
	GroundRepeat  int    `json:"ground_repeat"`
	GroundTexture bool   `json:"ground_texture"`
}

// Fog is exponential-squared fog.
type Fog struct {
	Color   string  `json:"color"`
	Density float64 `json:"density"`
}

type LightKind string

const (
	LightHemisphere  LightKind = "hemisphere"
	LightDirectional LightKind = "directional"
	LightAmbient     LightKind = "ambient"
)

// Light is a scene light source.
type Light struct {
	Kind        LightKind `json:"kind"`
	Color       string    `json:"color"`
	GroundColor string    `json:"ground_color,omitempty"`
	Intensity   float64   `json:"intensity"`
	CastShadow  bool      `json:"cast_shadow,omitempty"`
	Shadow      *Shadow   `json:"shadow,omitempty"`
}

// Shadow is a directional light's orthographic shadow camera.
type Shadow struct {
	// Extent is the half-width of the shadow camera frustum.
	Extent  float64 `json:"extent"`
	MapSize int     `json:"map_size"`
}

func newEnvironment(cfg config.SceneDef) Environment {
	return Environment{
		Background:   SkyColor,
		Fog:          Fog{Color: SkyColor, Density: FogDensity},
		GroundRepeat: cfg.TileRepeat,
	}
}

// staticEntities builds the lights, ground and water present from the
// first frame.
func staticEntities(cfg config.SceneDef) []Entity {
	lights := []struct {
		id    string
		pos   geo.Vec3
		light Light
	}{
		{"light-hemisphere", geo.V3(0, 200, 0), Light{
			Kind:        LightHemisphere,
			Color:       "#ffffff",
			GroundColor: "#444444",
			Intensity:   0.6,
		}},
		{"light-sun", geo.V3(100, 500, 100), Light{
			Kind:       LightDirectional,
			Color:      "#ffffff",
			Intensity:  1,
			CastShadow: true,
			Shadow:     &Shadow{Extent: 500, MapSize: 2048},
		}},
		{"light-ambient", geo.Vec3{}, Light{
			Kind:      LightAmbient,
			Color:     "#404040",
			Intensity: 0.5,
		}},
	}

	out := make([]Entity, 0, len(lights)+2)
	for _, l := range lights {
		light := l.light
		out = append(out, Entity{
			ID:       l.id,
			Type:     EntityLight,
			Position: l.pos,
			Light:    &light,
		})
	}

	ground := mesh.Plane(GroundID, mesh.KindGround, cfg.GroundSize, GroundY, mesh.GroundMaterial)
	out = append(out, meshEntity(ground))

	// The water plane is built at y=0 and raised by its entity position.
	water := mesh.Plane(WaterID, mesh.KindWater, cfg.GroundSize, 0, mesh.WaterMaterial)
	we := meshEntity(water)
	we.Position.Y = cfg.Water.Min
	we.Bounds = water.Bounds.Translate(we.Position)
	out = append(out, we)

	return out
}

func meshEntity(m *mesh.Mesh) Entity {
	return Entity{
		ID:       m.ID,
		Type:     entityTypeForKind(m.Kind),
		Bounds:   m.Bounds,
		Material: m.Material.Name,
		Mesh:     m,
	}
}

func spriteEntity(s *label.Sprite) Entity {
	return Entity{
		ID:       s.ID,
		Type:     EntityLabel,
		Position: s.Position,
		Bounds:   geo.EmptyBox().Extend(s.Position),
		Sprite:   s,
	}
}
