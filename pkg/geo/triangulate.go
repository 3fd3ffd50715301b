package geo

// convexEpsilon rejects near-collinear corners as ears.
const convexEpsilon = 1e-12

// Triangulate splits the polygon into triangles by ear clipping and returns
// index triples into Vertices, wound counterclockwise in the XZ plane.
// Holes are not supported. A simple polygon with n >= 3 vertices always yields
// n-2 triangles; when no ear can be found (collinear or self-intersecting
// input) the remainder is fanned from its first vertex.
func (p Polygon) Triangulate() [][3]int {
	n := len(p.Vertices)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if !p.IsCounterClockwise() {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([][3]int, 0, n-2)
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !p.isEar(prev, cur, next, idx) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			return tris
		}
	}
	return append(tris, [3]int{idx[0], idx[1], idx[2]})
}

func (p Polygon) isEar(prev, cur, next int, remaining []int) bool {
	a, b, c := p.Vertices[prev], p.Vertices[cur], p.Vertices[next]
	if b.Sub(a).Cross(c.Sub(b)) <= convexEpsilon {
		return false
	}
	for _, k := range remaining {
		if k == prev || k == cur || k == next {
			continue
		}
		v := p.Vertices[k]
		if v.NearlyEqual(a, dedupEpsilon) || v.NearlyEqual(b, dedupEpsilon) || v.NearlyEqual(c, dedupEpsilon) {
			continue
		}
		if pointInTriangle(v, a, b, c) {
			return false
		}
	}
	return true
}

// pointInTriangle reports whether p lies inside or on the CCW triangle abc.
func pointInTriangle(p, a, b, c Point2D) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)) >= 0
}
