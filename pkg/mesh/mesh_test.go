package mesh

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
)

const eps = 1e-6

var center = geo.Coordinate{Lat: 7.0075, Lon: 100.4705}

func testBuilder() *Builder {
	return NewBuilder(geo.NewProjection(center, 0))
}

// square returns a closed ring of side ~d degrees around the center.
func square(d float64) orb.Ring {
	lon, lat := center.Lon, center.Lat
	return orb.Ring{
		{lon, lat},
		{lon + d, lat},
		{lon + d, lat + d},
		{lon, lat + d},
		{lon, lat},
	}
}

func TestBuildRingFlat(t *testing.T) {
	b := testBuilder()
	m, ok := b.BuildRing("f", KindFlood, square(0.001), FloodMaterial, Options{Elevation: 2})
	if !ok {
		t.Fatal("expected mesh for 4-point ring")
	}
	if len(m.Positions) != 4 {
		t.Errorf("expected closing duplicate dropped, got %d vertices", len(m.Positions))
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
	for _, p := range m.Positions {
		if math.Abs(p.Y-2) > eps {
			t.Fatalf("flat mesh vertex at y=%f, want 2", p.Y)
		}
	}
	// North of center maps to negative z.
	if m.Bounds.Min.Z >= 0 || math.Abs(m.Bounds.Max.Z) > eps {
		t.Errorf("unexpected z bounds %+v", m.Bounds)
	}
}

func TestBuildRingFacesUp(t *testing.T) {
	b := testBuilder()
	m, _ := b.BuildRing("f", KindFlood, square(0.001), FloodMaterial, Options{})
	for i := 0; i < len(m.Indices); i += 3 {
		a, c, d := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		u, v := c.Sub(a), d.Sub(a)
		ny := u.Z*v.X - u.X*v.Z
		if ny <= 0 {
			t.Errorf("triangle %d faces down (ny=%f)", i/3, ny)
		}
	}
}

func TestBuildRingTooFewPoints(t *testing.T) {
	b := testBuilder()
	cases := map[string]orb.Ring{
		"empty":       {},
		"two":         {{100.47, 7.0}, {100.48, 7.0}},
		"duplicates":  {{100.47, 7.0}, {100.47, 7.0}, {100.48, 7.0}, {100.47, 7.0}},
		"alternating": {{100.47, 7.0}, {100.48, 7.0}, {100.47, 7.0}, {100.48, 7.0}, {100.47, 7.0}},
		"collinear":   {{100.47, 7.0}, {100.48, 7.0}, {100.49, 7.0}, {100.47, 7.0}},
	}
	for name, ring := range cases {
		m, ok := b.BuildRing(name, KindFlood, ring, FloodMaterial, Options{})
		if ok || m != nil {
			t.Errorf("%s: expected no mesh", name)
		}
	}
}

func TestBuildRingExtruded(t *testing.T) {
	b := testBuilder()
	m, ok := b.BuildRing("b", KindBuilding, square(0.0005), BuildingMaterial, Options{Depth: 20})
	if !ok {
		t.Fatal("expected extruded mesh")
	}
	// 2 caps + 4 walls
	if got, want := m.TriangleCount(), 2+2+4*2; got != want {
		t.Errorf("expected %d triangles, got %d", want, got)
	}
	if math.Abs(m.Bounds.Min.Y) > eps || math.Abs(m.Bounds.Max.Y-20) > eps {
		t.Errorf("expected y span [0,20], got [%f,%f]", m.Bounds.Min.Y, m.Bounds.Max.Y)
	}
}

func TestBuildRingClockwiseInput(t *testing.T) {
	b := testBuilder()
	ring := square(0.001)
	cw := make(orb.Ring, len(ring))
	for i := range ring {
		cw[i] = ring[len(ring)-1-i]
	}
	m, ok := b.BuildRing("cw", KindBuilding, cw, BuildingMaterial, Options{Depth: 5})
	if !ok {
		t.Fatal("expected mesh for clockwise ring")
	}
	// Each wall's first triangle normal must point away from the footprint center.
	c := m.Bounds.Center()
	for w := 0; w < 4; w++ {
		i := 12 + w*6
		a, p, q := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		u, v := p.Sub(a), q.Sub(a)
		nx := u.Y*v.Z - u.Z*v.Y
		nz := u.X*v.Y - u.Y*v.X
		mid := a.Add(p).Scale(0.5).Sub(c)
		if nx*mid.X+nz*mid.Z <= 0 {
			t.Errorf("wall %d faces inward", w)
		}
	}
}

func TestBuilding(t *testing.T) {
	b := testBuilder()
	rec := osm.Building{ID: 42, Ring: square(0.0003), Height: 25, Name: "Lee Garden"}
	m, ok := b.Building(rec)
	if !ok {
		t.Fatal("expected building mesh")
	}
	if m.ID != "building-42" || m.Material.Name != "building" {
		t.Errorf("unexpected mesh identity %s/%s", m.ID, m.Material.Name)
	}
	anchor := m.LabelAnchor()
	if math.Abs(anchor.Y-30) > eps {
		t.Errorf("label anchor y = %f, want height+5 = 30", anchor.Y)
	}
	if math.Abs(anchor.X-(m.Bounds.Min.X+m.Bounds.Max.X)/2) > eps {
		t.Errorf("label anchor x not centered: %f", anchor.X)
	}
}

func TestFloodOverlays(t *testing.T) {
	b := testBuilder()
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{square(0.001)}))
	fc.Append(geojson.NewFeature(orb.MultiPolygon{
		{square(0.002)},
		{square(0.003), square(0.0001)},
	}))
	fc.Append(&geojson.Feature{Type: "Feature"})
	fc.Append(geojson.NewFeature(orb.Polygon{{{100.47, 7.0}, {100.48, 7.0}}}))
	fc.Append(geojson.NewFeature(orb.Point{100.47, 7.0}))

	meshes := b.FloodOverlays(fc)
	if len(meshes) != 3 {
		t.Fatalf("expected 3 overlays, got %d", len(meshes))
	}
	ids := []string{"flood-0", "flood-1-0", "flood-1-1"}
	for i, m := range meshes {
		if m.ID != ids[i] {
			t.Errorf("mesh %d: expected id %s, got %s", i, ids[i], m.ID)
		}
		if m.Kind != KindFlood || m.Material.DepthWrite {
			t.Errorf("mesh %d: unexpected flood material %+v", i, m.Material)
		}
		if math.Abs(m.Bounds.Min.Y-DefaultFloodElevation) > eps {
			t.Errorf("mesh %d: expected elevation %f, got %f", i, DefaultFloodElevation, m.Bounds.Min.Y)
		}
	}
	// The hole in the second polygon is ignored: 4 outer vertices only.
	if len(meshes[2].Positions) != 4 {
		t.Errorf("expected outer ring only, got %d vertices", len(meshes[2].Positions))
	}
}

func TestFloodOverlaysNil(t *testing.T) {
	if got := testBuilder().FloodOverlays(nil); got != nil {
		t.Errorf("expected nil for nil collection, got %v", got)
	}
}

func TestSharedProjection(t *testing.T) {
	other := NewBuilder(geo.NewProjection(geo.Coordinate{Lat: 13.75, Lon: 100.5}, 0))
	m1, _ := testBuilder().BuildRing("a", KindFlood, square(0.001), FloodMaterial, Options{})
	m2, _ := other.BuildRing("a", KindFlood, square(0.001), FloodMaterial, Options{})
	if math.Abs(m1.Bounds.Min.X-m2.Bounds.Min.X) < 1 {
		t.Error("builders with different centers should place the same ring differently")
	}
}

func TestPlane(t *testing.T) {
	p := Plane("water", KindWater, 2000, 0, WaterMaterial)
	if p.Bounds.Min.X != -1000 || p.Bounds.Max.Z != 1000 {
		t.Errorf("unexpected plane bounds %+v", p.Bounds)
	}
	if p.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", p.TriangleCount())
	}
}
