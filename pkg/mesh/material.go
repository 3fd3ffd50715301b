package mesh

// Material describes how a mesh is shaded. Colors are CSS hex strings so
// they pass straight through to the browser renderer.
type Material struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
	DoubleSided bool    `json:"double_sided"`
	DepthWrite  bool    `json:"depth_write"`
	Roughness   float64 `json:"roughness"`
	Metalness   float64 `json:"metalness,omitempty"`
}

var (
	FloodMaterial = Material{
		Name:        "flood",
		Color:       "#ff0000",
		Opacity:     0.3,
		Transparent: true,
		DoubleSided: true,
		DepthWrite:  false,
		Roughness:   1,
	}

	BuildingMaterial = Material{
		Name:       "building",
		Color:      "#e5e7eb",
		Opacity:    1,
		DepthWrite: true,
		Roughness:  0.5,
	}

	GroundMaterial = Material{
		Name:       "ground",
		Color:      "#ffffff",
		Opacity:    1,
		DepthWrite: true,
		Roughness:  0.9,
	}

	WaterMaterial = Material{
		Name:        "water",
		Color:       "#3b82f6",
		Opacity:     0.6,
		Transparent: true,
		DepthWrite:  true,
		Roughness:   0.1,
		Metalness:   0.1,
	}
)
