package geo

import "math"

// MetersPerDegree is the fixed equatorial scale of one degree of latitude.
const MetersPerDegree = 111320.0

// Coordinate is a geographic position in degrees (WGS84-like, no datum handling).
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Projection maps geographic coordinates onto a local tangent plane centered
// on Center. Scale factors are fixed at the center latitude, so distortion
// grows with distance from the center; no correction is applied.
type Projection struct {
	Center          Coordinate
	MetersPerDegLat float64
	MetersPerDegLon float64
}

// NewProjection builds an equirectangular projection around center using
// metersPerDeg meters per degree of latitude. Zero metersPerDeg selects
// MetersPerDegree.
func NewProjection(center Coordinate, metersPerDeg float64) Projection {
	if metersPerDeg == 0 {
		metersPerDeg = MetersPerDegree
	}
	return Projection{
		Center:          center,
		MetersPerDegLat: metersPerDeg,
		MetersPerDegLon: metersPerDeg * math.Cos(center.Lat*math.Pi/180),
	}
}

// Project converts (lat, lon) to a planar offset in meters from the center.
// +X is east, +Z is south.
func (p Projection) Project(lat, lon float64) Point2D {
	return Point2D{
		X: (lon - p.Center.Lon) * p.MetersPerDegLon,
		Z: (p.Center.Lat - lat) * p.MetersPerDegLat,
	}
}

// ProjectCoordinate is Project for a Coordinate value.
func (p Projection) ProjectCoordinate(c Coordinate) Point2D {
	return p.Project(c.Lat, c.Lon)
}

// Unproject is the inverse of Project.
func (p Projection) Unproject(pt Point2D) Coordinate {
	return Coordinate{
		Lat: p.Center.Lat - pt.Z/p.MetersPerDegLat,
		Lon: p.Center.Lon + pt.X/p.MetersPerDegLon,
	}
}

// TileXY returns the slippy-map tile containing (lat, lon) at the given zoom.
func TileXY(lat, lon float64, zoom int) (int, int) {
	n := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180
	x := math.Floor((lon + 180) / 360 * n)
	y := math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)
	return int(x), int(y)
}
