package scene

import (
	"errors"
	"image"
	"testing"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/mesh"
)

func testLabels(t testing.TB) *label.Builder {
	t.Helper()
	b, err := label.NewBuilder()
	if err != nil {
		t.Fatalf("label builder: %v", err)
	}
	return b
}

func TestNewLiveGraphStatic(t *testing.T) {
	g := NewLiveGraph("s", config.Default())
	snap := g.Snapshot()

	if snap.Count(EntityLight) != 3 {
		t.Errorf("expected 3 lights, got %d", snap.Count(EntityLight))
	}
	if snap.Count(EntityGround) != 1 || snap.Count(EntityWater) != 1 {
		t.Errorf("expected ground and water, got %v", snap.Groups.Types)
	}
	if snap.Environment.Background != SkyColor || snap.Environment.Fog.Density != FogDensity {
		t.Errorf("unexpected environment %+v", snap.Environment)
	}
	if snap.Rain != nil {
		t.Error("expected no rain before weather arrives")
	}
	if snap.Metadata.SessionID != "s" {
		t.Errorf("expected session s, got %q", snap.Metadata.SessionID)
	}

	var ground *Entity
	for i := range snap.Entities {
		if snap.Entities[i].ID == GroundID {
			ground = &snap.Entities[i]
		}
	}
	if ground == nil {
		t.Fatal("ground entity missing")
	}
	if ground.Bounds.Min.Y != GroundY || ground.Bounds.Max.X != 1000 {
		t.Errorf("unexpected ground bounds %+v", ground.Bounds)
	}

	r := ValidateGraph(snap)
	if !r.Valid {
		t.Errorf("static scene invalid: %s", r.Summary)
	}
}

func TestLiveGraphWaterLevel(t *testing.T) {
	g := NewLiveGraph("s", config.Default())
	if err := g.SetWaterLevel(12.5); err != nil {
		t.Fatal(err)
	}
	if g.WaterLevel() != 12.5 {
		t.Errorf("expected 12.5, got %v", g.WaterLevel())
	}

	snap := g.Snapshot()
	for _, e := range snap.Entities {
		if e.ID != WaterID {
			continue
		}
		if e.Position.Y != 12.5 || e.Bounds.Max.Y != 12.5 {
			t.Errorf("expected water plane at 12.5, got position %v bounds %+v", e.Position.Y, e.Bounds)
		}
		if e.Mesh.Positions[0].Y != 0 {
			t.Error("water mesh buffer must not move")
		}
	}
	if snap.Metadata.Bounds.Max.Y < 12.5 {
		t.Errorf("scene bounds should include the water, got %+v", snap.Metadata.Bounds)
	}
}

func TestLiveGraphRejectsDuplicates(t *testing.T) {
	g := NewLiveGraph("s", config.Default())
	m := mesh.Plane("flood-0", mesh.KindFlood, 10, 2, mesh.FloodMaterial)
	if err := g.AddMesh(m); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMesh(m); err == nil {
		t.Error("expected duplicate id error")
	}

	n, err := g.AddBatch([]*mesh.Mesh{m, mesh.Plane("flood-1", mesh.KindFlood, 10, 2, mesh.FloodMaterial)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 new entity, got %d", n)
	}
	if got := g.Counts()["flood"]; got != 2 {
		t.Errorf("expected 2 flood meshes, got %d", got)
	}
}

func TestLiveGraphLabels(t *testing.T) {
	g := NewLiveGraph("s", config.Default())
	s := testLabels(t).Build("label-7", "Central", geo.V3(0, 30, 0))
	if err := g.AddSprite(s); err != nil {
		t.Fatal(err)
	}

	data, err := g.LabelPNG("label-7")
	if err != nil {
		t.Fatalf("LabelPNG: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("expected PNG bytes")
	}
	if _, err := g.LabelPNG("ground"); err == nil {
		t.Error("expected error for non-label entity")
	}
}

func TestLiveGraphDispose(t *testing.T) {
	g := NewLiveGraph("s", config.Default())
	s := testLabels(t).Build("label-1", "Central", geo.V3(0, 30, 0))
	_ = g.AddSprite(s)
	_ = g.SetRain(NewRain(10, fixedRand(0.5)))
	_ = g.SetGroundTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)))

	before := g.Snapshot()

	g.Dispose()
	g.Dispose()

	if !g.Disposed() {
		t.Fatal("expected disposed")
	}
	if !s.Inert() {
		t.Error("expected label texture released")
	}
	if g.GroundTexture() != nil {
		t.Error("expected ground texture released")
	}
	if len(g.RainDrops(nil)) != 0 {
		t.Error("expected rain released")
	}
	if len(g.Counts()) != 0 {
		t.Errorf("expected empty scene, got %v", g.Counts())
	}

	if err := g.AddMesh(mesh.Plane("late", mesh.KindFlood, 1, 0, mesh.FloodMaterial)); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	if err := g.SetWaterLevel(3); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}

	// Snapshots taken earlier keep their own sprite copies.
	for _, e := range before.Entities {
		if e.Sprite != nil && e.Sprite.Inert() {
			t.Error("snapshot sprite should survive dispose")
		}
	}
	if after := g.Snapshot(); !after.Metadata.Disposed || len(after.Entities) != 0 {
		t.Errorf("expected empty disposed snapshot, got %d entities", len(after.Entities))
	}
}

func TestRainStepWraps(t *testing.T) {
	r := NewRain(100, fixedRand(0.25))
	if len(r.Drops) != 100 {
		t.Fatalf("expected 100 drops, got %d", len(r.Drops))
	}
	for _, d := range r.Drops {
		if d.X < -RainSpread/2 || d.X > RainSpread/2 || d.Y < 0 || d.Y > RainTop {
			t.Fatalf("drop out of volume: %+v", d)
		}
	}

	r.Drops[0].Y = 10
	r.Drops[1].Y = 2
	r.Step()
	if r.Drops[0].Y != 6 {
		t.Errorf("expected drop at 6, got %v", r.Drops[0].Y)
	}
	if r.Drops[1].Y != RainTop {
		t.Errorf("expected wrapped drop at %v, got %v", RainTop, r.Drops[1].Y)
	}
}

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }
