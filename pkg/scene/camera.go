package scene

import (
	"math"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

const (
	DefaultFOV  = 45.0
	DefaultNear = 1.0
	DefaultFar  = 5000.0

	DampingFactor = 0.05
	// MaxPolarAngle keeps the camera just above the ground plane.
	MaxPolarAngle = math.Pi/2 - 0.05

	minPolarAngle = 1e-6
	settleEps     = 1e-6
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	FOV      float64  `json:"fov"`
	Near     float64  `json:"near"`
	Far      float64  `json:"far"`
	Position geo.Vec3 `json:"position"`
	Target   geo.Vec3 `json:"target"`
}

// DefaultCamera frames the district from the south-east of the center.
func DefaultCamera() Camera {
	return Camera{
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: geo.V3(0, 400, 500),
	}
}

// Project maps a world point to pixel coordinates on a w×h viewport. ok
// is false for points outside the near and far planes.
func (c Camera) Project(p geo.Vec3, w, h float64) (x, y float64, ok bool) {
	forward := c.Target.Sub(c.Position).Unit()
	right := forward.Cross(geo.V3(0, 1, 0)).Unit()
	if right == (geo.Vec3{}) {
		// Looking straight down.
		right = geo.V3(1, 0, 0)
	}
	up := right.Cross(forward)

	d := p.Sub(c.Position)
	depth := d.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, false
	}

	f := 1 / math.Tan(c.FOV*math.Pi/360)
	aspect := w / h
	ndcX := d.Dot(right) * f / (aspect * depth)
	ndcY := d.Dot(up) * f / depth
	return (ndcX + 1) / 2 * w, (1 - ndcY) / 2 * h, true
}

// Orbit rotates and dollies a Camera around its target with damping.
// Input accumulates until Update applies a fraction of it each frame.
type Orbit struct {
	Damping     float64
	MaxPolar    float64
	MinDistance float64
	MaxDistance float64

	dTheta float64
	dPhi   float64
	scale  float64
}

// NewOrbit returns orbit controls with the default damping and polar
// limit.
func NewOrbit() *Orbit {
	return &Orbit{
		Damping:     DampingFactor,
		MaxPolar:    MaxPolarAngle,
		MinDistance: DefaultNear,
		MaxDistance: DefaultFar / 2,
		scale:       1,
	}
}

// Rotate queues a rotation in radians around the vertical axis (theta) and
// toward the ground (phi).
func (o *Orbit) Rotate(dTheta, dPhi float64) {
	o.dTheta += dTheta
	o.dPhi += dPhi
}

// Dolly queues a distance change; factor < 1 moves the camera closer.
func (o *Orbit) Dolly(factor float64) {
	if factor > 0 {
		o.scale *= factor
	}
}

// Update applies pending input to c and reports whether the camera moved.
func (o *Orbit) Update(c *Camera) bool {
	offset := c.Position.Sub(c.Target)
	r := offset.Length()
	if r == 0 {
		return false
	}
	theta := math.Atan2(offset.X, offset.Z)
	phi := math.Acos(math.Max(-1, math.Min(1, offset.Y/r)))

	theta += o.dTheta * o.Damping
	phi += o.dPhi * o.Damping
	phi = math.Max(minPolarAngle, math.Min(o.MaxPolar, phi))

	r *= o.scale
	r = math.Max(o.MinDistance, math.Min(o.MaxDistance, r))

	next := c.Target.Add(geo.V3(
		r*math.Sin(phi)*math.Sin(theta),
		r*math.Cos(phi),
		r*math.Sin(phi)*math.Cos(theta),
	))
	moved := next.Sub(c.Position).Length() > settleEps
	c.Position = next

	o.dTheta *= 1 - o.Damping
	o.dPhi *= 1 - o.Damping
	o.scale = 1
	return moved
}
