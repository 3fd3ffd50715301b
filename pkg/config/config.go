package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

// ProjectFile is the config file name looked up by LoadProject.
const ProjectFile = "floodsim.yaml"

// Default returns the Hat Yai district configuration.
func Default() *Config {
	return &Config{
		Version:         "0.1.0",
		Name:            "Hat Yai",
		Center:          geo.Coordinate{Lat: 7.0075, Lon: 100.4705},
		MetersPerDegree: geo.MetersPerDegree,
		Scene: SceneDef{
			GroundSize:     2000,
			TileZoom:       16,
			TileRepeat:     4,
			FloodElevation: 2,
			Water:          WaterRange{Min: 0, Max: 30, Step: 0.5},
			RainCount:      15000,
			FrameRate:      60,
		},
		Sources: Sources{
			RequestsPerSecond: 2,
			UserAgent:         "floodsim/0.1 (+https://github.com/nanoubon/hatyai-flood-simulation)",
			Weather: WeatherSource{
				URL:      "https://api.open-meteo.com/v1/forecast",
				Timezone: "Asia/Bangkok",
			},
			River: RiverSource{
				URL: "https://flood-api.open-meteo.com/v1/flood",
			},
			Flood: FloodSource{
				URL: "https://api-gateway.gistda.or.th/api/2.0/resources/stac/flood/collections/flood1day_r2/items/items_flood1day_r2",
			},
			Buildings: BuildingsSource{
				URL:         "https://overpass-api.de/api/interpreter",
				RadiusM:     450,
				MaxParallel: 2,
			},
			Tiles: TileSource{
				URL: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			},
		},
		Server: ServerDef{
			Port:           3000,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Tracing: TracingDef{
			ServiceName: "floodsim",
			SampleRatio: 1,
		},
	}
}

// Load reads a config from a YAML file. Fields absent from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// LoadProject loads floodsim.yaml from a project directory and applies
// environment overrides, including a .env.local file in that directory.
func LoadProject(projectDir string) (*Config, error) {
	cfg, err := Load(filepath.Join(projectDir, ProjectFile))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(projectDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config. An optional
// .env.local in projectDir is loaded first; variables already set in the
// process win over it.
//
// Environment variables:
//   - GISTDA_TOKEN: access token for the flood-extent API
//   - FLOODSIM_PORT: HTTP server port
//   - FLOODSIM_SEED: generator seed
//   - FLOODSIM_TRACING: "true" enables span export
func (c *Config) ApplyEnv(projectDir string) error {
	// .env.local is optional.
	_ = godotenv.Load(filepath.Join(projectDir, ".env.local"))

	if v := strings.TrimSpace(os.Getenv("GISTDA_TOKEN")); v != "" {
		c.Sources.Flood.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("FLOODSIM_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLOODSIM_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("FLOODSIM_SEED")); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FLOODSIM_SEED: %w", err)
		}
		c.Scene.Seed = seed
	}
	if strings.EqualFold(os.Getenv("FLOODSIM_TRACING"), "true") {
		c.Tracing.Enabled = true
	}
	return nil
}
