package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProject(t *testing.T) {
	t.Setenv("GISTDA_TOKEN", "")
	c, err := LoadProject("../../examples/hatyai")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if c.Version != "0.1.0" {
		t.Errorf("version = %q, want %q", c.Version, "0.1.0")
	}
	if c.Center.Lat != 7.0075 || c.Center.Lon != 100.4705 {
		t.Errorf("center = %+v, want (7.0075, 100.4705)", c.Center)
	}
	if c.Scene.TileZoom != 16 {
		t.Errorf("tile_zoom = %d, want 16", c.Scene.TileZoom)
	}
	if c.Scene.Water.Max != 30 || c.Scene.Water.Step != 0.5 {
		t.Errorf("water = %+v, want max 30 step 0.5", c.Scene.Water)
	}
	if c.Sources.Buildings.RadiusM != 450 {
		t.Errorf("buildings.radius_m = %v, want 450", c.Sources.Buildings.RadiusM)
	}
	if c.Sources.Flood.Proxy != "https://corsproxy.io/?" {
		t.Errorf("flood.proxy = %q", c.Sources.Flood.Proxy)
	}
	if c.Sources.Timeout != 0 {
		t.Errorf("timeout = %v, want none", c.Sources.Timeout)
	}
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	if err == nil {
		t.Error("expected error for missing project directory")
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	if err := os.WriteFile(path, []byte("name: Songkhla\nsources:\n  timeout: 45s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Name != "Songkhla" {
		t.Errorf("name = %q, want Songkhla", c.Name)
	}
	if c.Sources.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", c.Sources.Timeout)
	}
	if c.Scene.RainCount != 15000 {
		t.Errorf("rain_count = %d, want default 15000", c.Scene.RainCount)
	}
	if c.Sources.Weather.URL == "" {
		t.Error("expected default weather URL to survive partial config")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	if err := os.WriteFile(path, []byte("scene: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GISTDA_TOKEN", "secret")
	t.Setenv("FLOODSIM_PORT", "8088")
	t.Setenv("FLOODSIM_SEED", "42")
	t.Setenv("FLOODSIM_TRACING", "true")

	c := Default()
	if err := c.ApplyEnv(t.TempDir()); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Sources.Flood.Token != "secret" {
		t.Errorf("token = %q, want secret", c.Sources.Flood.Token)
	}
	if c.Server.Port != 8088 {
		t.Errorf("port = %d, want 8088", c.Server.Port)
	}
	if c.Scene.Seed != 42 {
		t.Errorf("seed = %d, want 42", c.Scene.Seed)
	}
	if !c.Tracing.Enabled {
		t.Error("expected tracing enabled")
	}
}

func TestApplyEnvReadsDotEnvLocal(t *testing.T) {
	t.Setenv("GISTDA_TOKEN", "")
	os.Unsetenv("GISTDA_TOKEN")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("GISTDA_TOKEN=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := Default()
	if err := c.ApplyEnv(dir); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Sources.Flood.Token != "from-file" {
		t.Errorf("token = %q, want from-file", c.Sources.Flood.Token)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	t.Setenv("FLOODSIM_PORT", "eighty")
	if err := Default().ApplyEnv(t.TempDir()); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestProjectionSharesCenter(t *testing.T) {
	c := Default()
	p := c.Projection()
	if pt := p.Project(c.Center.Lat, c.Center.Lon); pt.X != 0 || pt.Z != 0 {
		t.Errorf("expected center at origin, got (%f,%f)", pt.X, pt.Z)
	}
}
