package mesh

import (
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

// Kind classifies a mesh for grouping and rendering.
type Kind string

const (
	KindFlood    Kind = "flood"
	KindBuilding Kind = "building"
	KindGround   Kind = "ground"
	KindWater    Kind = "water"
)

// Mesh is an indexed triangle mesh in scene coordinates (meters, y up).
// A Mesh is complete once returned by a Builder and is never modified
// afterwards.
type Mesh struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Positions []geo.Vec3 `json:"positions"`
	Indices   []uint32   `json:"indices"`
	Material  Material   `json:"material"`
	Bounds    geo.Box    `json:"bounds"`
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// LabelAnchor is the point a name label hangs from: the center of the
// footprint, 5 m above the top of the mesh.
func (m *Mesh) LabelAnchor() geo.Vec3 {
	c := m.Bounds.Center()
	return geo.V3(c.X, m.Bounds.Max.Y+5, c.Z)
}

// Plane returns a horizontal size×size square centered on the origin at
// height y, facing up.
func Plane(id string, kind Kind, size, y float64, mat Material) *Mesh {
	h := size / 2
	m := &Mesh{
		ID:   id,
		Kind: kind,
		Positions: []geo.Vec3{
			geo.V3(-h, y, -h),
			geo.V3(h, y, -h),
			geo.V3(h, y, h),
			geo.V3(-h, y, h),
		},
		Indices:  []uint32{0, 2, 1, 0, 3, 2},
		Material: mat,
	}
	m.computeBounds()
	return m
}

func (m *Mesh) computeBounds() {
	b := geo.EmptyBox()
	for _, p := range m.Positions {
		b = b.Extend(p)
	}
	m.Bounds = b
}
