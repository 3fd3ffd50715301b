package mesh

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
)

// DefaultFloodElevation keeps flood overlays above the ground plane.
const DefaultFloodElevation = 2.0

// minRingArea is the footprint, in square meters, below which a ring has
// no usable outline. Rings that revisit fewer than 3 distinct points or
// lie on a line fall under it.
const minRingArea = 1e-6

// Options controls extrusion and placement of a ring.
type Options struct {
	// Depth is the extrusion height. 0 builds a flat cap.
	Depth float64
	// Elevation is the scene height of the mesh base.
	Elevation float64
}

// Builder turns geographic rings into scene meshes. Every mesh from one
// Builder shares its projection.
type Builder struct {
	proj           geo.Projection
	FloodElevation float64
}

func NewBuilder(proj geo.Projection) *Builder {
	return &Builder{proj: proj, FloodElevation: DefaultFloodElevation}
}

// Projection returns the projection used for every mesh.
func (b *Builder) Projection() geo.Projection {
	return b.proj
}

// Shape projects a ring of [lon, lat] points onto the scene plane and
// drops repeated points. The ring is treated as closed whether or not its
// last point repeats the first.
func (b *Builder) Shape(ring orb.Ring) geo.Polygon {
	pts := make([]geo.Point2D, len(ring))
	for i, p := range ring {
		pts[i] = b.proj.Project(p.Lat(), p.Lon())
	}
	return geo.NewPolygon(pts...).Dedup()
}

// BuildRing builds a mesh for one ring. It reports false, without error,
// when fewer than 3 usable points remain.
func (b *Builder) BuildRing(id string, kind Kind, ring orb.Ring, mat Material, opts Options) (*Mesh, bool) {
	shape := b.Shape(ring)
	if shape.Len() < 3 || shape.Area() < minRingArea {
		return nil, false
	}
	// Walls need a counter-clockwise outline.
	if !shape.IsCounterClockwise() {
		shape = reversed(shape)
	}
	tris := shape.Triangulate()
	if len(tris) == 0 {
		return nil, false
	}

	m := &Mesh{ID: id, Kind: kind, Material: mat}
	top := opts.Elevation + opts.Depth
	n := shape.Len()

	// Top cap, wound to face up.
	for _, v := range shape.Vertices {
		m.Positions = append(m.Positions, toScene(v, top))
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, uint32(t[0]), uint32(t[2]), uint32(t[1]))
	}

	if opts.Depth > 0 {
		// Bottom cap, facing down.
		base := uint32(len(m.Positions))
		for _, v := range shape.Vertices {
			m.Positions = append(m.Positions, toScene(v, opts.Elevation))
		}
		for _, t := range tris {
			m.Indices = append(m.Indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
		}

		// Walls get their own vertices so each face shades flat.
		for i := 0; i < n; i++ {
			a, c := shape.Vertices[i], shape.Vertices[(i+1)%n]
			w := uint32(len(m.Positions))
			m.Positions = append(m.Positions,
				toScene(a, top),
				toScene(c, top),
				toScene(c, opts.Elevation),
				toScene(a, opts.Elevation),
			)
			m.Indices = append(m.Indices, w, w+1, w+2, w, w+2, w+3)
		}
	}

	m.computeBounds()
	return m, true
}

// FloodOverlays builds one flat overlay per polygon in the collection.
// Only outer rings are used; holes are not subtracted. Features without
// geometry and rings that collapse are skipped.
func (b *Builder) FloodOverlays(fc *geojson.FeatureCollection) []*Mesh {
	if fc == nil {
		return nil
	}
	opts := Options{Elevation: b.FloodElevation}

	var out []*Mesh
	add := func(id string, p orb.Polygon) {
		if len(p) == 0 {
			return
		}
		if m, ok := b.BuildRing(id, KindFlood, p[0], FloodMaterial, opts); ok {
			out = append(out, m)
		}
	}

	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			add(fmt.Sprintf("flood-%d", i), g)
		case orb.MultiPolygon:
			for j, p := range g {
				add(fmt.Sprintf("flood-%d-%d", i, j), p)
			}
		}
	}
	return out
}

// Building extrudes a building footprint from the ground up to its height.
func (b *Builder) Building(rec osm.Building) (*Mesh, bool) {
	return b.BuildRing(
		fmt.Sprintf("building-%d", rec.ID),
		KindBuilding,
		rec.Ring,
		BuildingMaterial,
		Options{Depth: rec.Height},
	)
}

// toScene lays a shape-plane point flat at height y. The shape plane's
// second axis becomes scene z, which is the 90° turn about x applied to
// an extruded shape.
func toScene(p geo.Point2D, y float64) geo.Vec3 {
	return geo.V3(p.X, y, p.Z)
}

func reversed(p geo.Polygon) geo.Polygon {
	n := len(p.Vertices)
	out := make([]geo.Point2D, n)
	for i, v := range p.Vertices {
		out[n-1-i] = v
	}
	return geo.NewPolygon(out...)
}
