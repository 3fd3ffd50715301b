package geo

import "math"

// dedupEpsilon is the distance in meters under which two projected vertices
// are treated as the same point.
const dedupEpsilon = 1e-9

// Polygon is a closed polygon defined by its vertices in order. The closing
// vertex is implicit.
type Polygon struct {
	Vertices []Point2D
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Vertices: pts}
}

// Len returns the number of vertices.
func (p Polygon) Len() int {
	return len(p.Vertices)
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.Vertices) < 3
}

// SignedArea returns the signed area using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].X * p.Vertices[j].Z
		area -= p.Vertices[j].X * p.Vertices[i].Z
	}
	return area / 2
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsCounterClockwise returns true if vertices are in CCW order.
func (p Polygon) IsCounterClockwise() bool {
	return p.SignedArea() > 0
}

// Dedup returns a copy of the polygon with consecutive duplicate vertices
// removed, including a trailing vertex that repeats the first (GeoJSON rings
// are explicitly closed).
func (p Polygon) Dedup() Polygon {
	out := make([]Point2D, 0, len(p.Vertices))
	for _, v := range p.Vertices {
		if len(out) > 0 && out[len(out)-1].NearlyEqual(v, dedupEpsilon) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[len(out)-1].NearlyEqual(out[0], dedupEpsilon) {
		out = out[:len(out)-1]
	}
	return Polygon{Vertices: out}
}
