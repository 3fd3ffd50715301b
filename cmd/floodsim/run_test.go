package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FLOODSIM_PORT", "")
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Center != config.Default().Center {
		t.Errorf("expected default center, got %+v", cfg.Center)
	}
}

func TestLoadConfigFileAndDirectory(t *testing.T) {
	t.Setenv("FLOODSIM_PORT", "")
	for _, path := range []string{"../../examples/hatyai", "../../examples/hatyai/floodsim.yaml"} {
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if cfg.Scene.Water.Max != 30 || cfg.Sources.Buildings.RadiusM != 450 {
			t.Errorf("%s: unexpected config %+v", path, cfg.Scene)
		}
	}
}

func TestLoadAndValidateRejectsInvertedWater(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  water:\n    min: 10\n    max: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, report, err := loadAndValidate(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Valid {
		t.Error("expected inverted water range to be invalid")
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  water:\n    min: 10\n    max: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := newApp(context.Background(), path, globalFlags{})
	if err == nil {
		a.close()
		t.Fatal("expected invalid config to be rejected")
	}
	if !strings.Contains(err.Error(), "scene.water") {
		t.Errorf("expected error to name scene.water, got %v", err)
	}
}

func TestProjectArg(t *testing.T) {
	if got := projectArg(nil); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
	if got := projectArg([]string{"examples/hatyai"}); got != "examples/hatyai" {
		t.Errorf("expected examples/hatyai, got %q", got)
	}
}
