package scene

import (
	"math"
	"testing"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCameraProjectCenter(t *testing.T) {
	c := DefaultCamera()
	x, y, ok := c.Project(geo.Vec3{}, 800, 600)
	if !ok {
		t.Fatal("expected target to be visible")
	}
	if !approxEqual(x, 400, 1e-9) || !approxEqual(y, 300, 1e-9) {
		t.Errorf("expected target at viewport center, got (%f, %f)", x, y)
	}

	// Higher points appear higher on screen.
	_, yUp, _ := c.Project(geo.V3(0, 50, 0), 800, 600)
	if yUp >= y {
		t.Errorf("expected raised point above center, got y=%f", yUp)
	}
	// East is to the right when looking north from the south.
	xEast, _, _ := c.Project(geo.V3(50, 0, 0), 800, 600)
	if xEast <= x {
		t.Errorf("expected east point right of center, got x=%f", xEast)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	c := DefaultCamera()
	if _, _, ok := c.Project(geo.V3(0, 800, 1000), 800, 600); ok {
		t.Error("expected point behind the camera to be rejected")
	}
}

func TestOrbitDamping(t *testing.T) {
	c := DefaultCamera()
	o := NewOrbit()
	o.Rotate(1, 0)

	start := c.Position
	dist := start.Length()
	if !o.Update(&c) {
		t.Fatal("expected camera to move")
	}
	if approxEqual(c.Position.X, start.X, 1e-9) {
		t.Error("expected horizontal rotation")
	}
	if !approxEqual(c.Position.Length(), dist, 1e-6) {
		t.Errorf("rotation changed distance: %f -> %f", dist, c.Position.Length())
	}

	// Pending input decays; the camera eventually settles.
	moves := 0
	for i := 0; i < 2000 && o.Update(&c); i++ {
		moves++
	}
	if moves == 0 || moves >= 2000 {
		t.Errorf("expected damped motion to settle, got %d moves", moves)
	}
	t.Logf("settled after %d frames", moves)
}

func TestOrbitPolarLimit(t *testing.T) {
	c := DefaultCamera()
	o := NewOrbit()
	o.Rotate(0, 100)
	for i := 0; i < 200; i++ {
		o.Update(&c)
	}
	phi := math.Acos(c.Position.Y / c.Position.Length())
	if phi > MaxPolarAngle+1e-9 {
		t.Errorf("polar angle %f exceeds limit %f", phi, MaxPolarAngle)
	}
	if c.Position.Y <= 0 {
		t.Errorf("camera went below the ground: y=%f", c.Position.Y)
	}
}

func TestOrbitDolly(t *testing.T) {
	c := DefaultCamera()
	o := NewOrbit()
	before := c.Position.Length()
	o.Dolly(0.5)
	o.Update(&c)
	if !approxEqual(c.Position.Length(), before/2, 1e-6) {
		t.Errorf("expected distance %f, got %f", before/2, c.Position.Length())
	}
}
