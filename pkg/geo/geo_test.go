package geo

import (
	"math"
	"testing"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

var hatYai = Coordinate{Lat: 7.0075, Lon: 100.4705}

// --- Projection tests ---

func TestProjectCenterIsOrigin(t *testing.T) {
	p := NewProjection(hatYai, 0)
	got := p.Project(hatYai.Lat, hatYai.Lon)
	if got.X != 0 || got.Z != 0 {
		t.Errorf("expected (0,0), got (%f,%f)", got.X, got.Z)
	}
}

func TestProjectScaleFactors(t *testing.T) {
	p := NewProjection(hatYai, 0)
	if p.MetersPerDegLat != 111320 {
		t.Errorf("expected 111320 m/deg lat, got %f", p.MetersPerDegLat)
	}
	if !approxEqual(p.MetersPerDegLon, 110488.46, tolerance) {
		t.Errorf("expected ~110488.46 m/deg lon, got %f", p.MetersPerDegLon)
	}
}

func TestProjectAxes(t *testing.T) {
	p := NewProjection(hatYai, 0)

	// North of center maps to negative Z, east maps to positive X.
	north := p.Project(hatYai.Lat+0.001, hatYai.Lon)
	if !approxEqual(north.Z, -111.32, tolerance) || north.X != 0 {
		t.Errorf("expected (0,-111.32), got (%f,%f)", north.X, north.Z)
	}
	east := p.Project(hatYai.Lat, hatYai.Lon+0.001)
	if !approxEqual(east.X, 110.49, tolerance) || east.Z != 0 {
		t.Errorf("expected (110.49,0), got (%f,%f)", east.X, east.Z)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	p := NewProjection(hatYai, 0)
	for _, c := range []Coordinate{
		{7.0075, 100.4705},
		{7.0101, 100.4688},
		{7.0032, 100.4755},
		{6.9990, 100.4620},
	} {
		back := p.Unproject(p.ProjectCoordinate(c))
		if !approxEqual(back.Lat, c.Lat, 1e-9) || !approxEqual(back.Lon, c.Lon, 1e-9) {
			t.Errorf("round trip of %+v gave %+v", c, back)
		}
	}
}

func TestProjectIndependentCenters(t *testing.T) {
	a := NewProjection(hatYai, 0)
	b := NewProjection(Coordinate{Lat: 13.7563, Lon: 100.5018}, 0)
	if pt := b.Project(13.7563, 100.5018); pt.X != 0 || pt.Z != 0 {
		t.Errorf("expected second center at origin, got (%f,%f)", pt.X, pt.Z)
	}
	if pt := a.Project(13.7563, 100.5018); pt.Z > -700000 {
		t.Errorf("expected Bangkok far north of Hat Yai, got z=%f", pt.Z)
	}
}

func TestTileXY(t *testing.T) {
	x, y := TileXY(hatYai.Lat, hatYai.Lon, 16)
	if x != 51058 || y != 31489 {
		t.Errorf("expected tile (51058,31489), got (%d,%d)", x, y)
	}
}

// --- Polygon tests ---

func TestPolygonAreaSquare(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	if !approxEqual(sq.Area(), 100, tolerance) {
		t.Errorf("expected area 100, got %f", sq.Area())
	}
}

func TestPolygonDedupClosedRing(t *testing.T) {
	ring := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 0), Pt(10, 10), Pt(0, 0))
	d := ring.Dedup()
	if d.Len() != 3 {
		t.Fatalf("expected 3 vertices after dedup, got %d", d.Len())
	}
	if ring.Len() != 5 {
		t.Error("dedup modified the input polygon")
	}
}

func TestPolygonDedupAllSame(t *testing.T) {
	d := NewPolygon(Pt(1, 1), Pt(1, 1), Pt(1, 1)).Dedup()
	if !d.IsEmpty() {
		t.Errorf("expected empty polygon, got %d vertices", d.Len())
	}
}

// --- Triangulation tests ---

func triangulatedArea(p Polygon, tris [][3]int) float64 {
	total := 0.0
	for _, tri := range tris {
		total += NewPolygon(p.Vertices[tri[0]], p.Vertices[tri[1]], p.Vertices[tri[2]]).Area()
	}
	return total
}

func TestTriangulateSquare(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	tris := sq.Triangulate()
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(tris))
	}
	if !approxEqual(triangulatedArea(sq, tris), 100, tolerance) {
		t.Errorf("expected covered area 100, got %f", triangulatedArea(sq, tris))
	}
}

func TestTriangulateClockwiseConcave(t *testing.T) {
	// L-shape wound clockwise.
	l := NewPolygon(Pt(0, 0), Pt(0, 20), Pt(10, 20), Pt(10, 10), Pt(20, 10), Pt(20, 0))
	tris := l.Triangulate()
	if len(tris) != l.Len()-2 {
		t.Fatalf("expected %d triangles, got %d", l.Len()-2, len(tris))
	}
	if !approxEqual(triangulatedArea(l, tris), l.Area(), tolerance) {
		t.Errorf("expected covered area %f, got %f", l.Area(), triangulatedArea(l, tris))
	}
	for _, tri := range tris {
		a, b, c := l.Vertices[tri[0]], l.Vertices[tri[1]], l.Vertices[tri[2]]
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			t.Errorf("triangle %v is not counterclockwise", tri)
		}
	}
}

func TestTriangulateCollinearFallsBack(t *testing.T) {
	line := NewPolygon(Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(15, 0))
	tris := line.Triangulate()
	if len(tris) != 2 {
		t.Errorf("expected 2 fallback triangles, got %d", len(tris))
	}
}

func TestTriangulateTooFewVertices(t *testing.T) {
	if tris := NewPolygon(Pt(0, 0), Pt(1, 1)).Triangulate(); tris != nil {
		t.Errorf("expected nil, got %v", tris)
	}
}

// --- Vec3 / Box tests ---

func TestBoxExtend(t *testing.T) {
	b := EmptyBox()
	if !b.IsEmpty() {
		t.Fatal("expected empty box")
	}
	b = b.Extend(V3(1, 2, 3)).Extend(V3(-1, 0, 5))
	if b.Min != V3(-1, 0, 3) || b.Max != V3(1, 2, 5) {
		t.Errorf("unexpected box %+v", b)
	}
	if c := b.Center(); c != V3(0, 1, 4) {
		t.Errorf("expected center (0,1,4), got %+v", c)
	}
}

