package config

import (
	"time"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

// Config is the top-level description of a flood scene project.
type Config struct {
	Version         string         `yaml:"version" json:"version"`
	Name            string         `yaml:"name" json:"name"`
	Center          geo.Coordinate `yaml:"center" json:"center"`
	MetersPerDegree float64        `yaml:"meters_per_degree" json:"meters_per_degree"`
	Scene           SceneDef       `yaml:"scene" json:"scene"`
	Sources         Sources        `yaml:"sources" json:"sources"`
	Server          ServerDef      `yaml:"server" json:"server"`
	Tracing         TracingDef     `yaml:"tracing" json:"tracing"`
}

// Projection returns the projection every consumer of this config must share.
func (c *Config) Projection() geo.Projection {
	return geo.NewProjection(c.Center, c.MetersPerDegree)
}

type SceneDef struct {
	GroundSize     float64    `yaml:"ground_size" json:"ground_size"`
	TileZoom       int        `yaml:"tile_zoom" json:"tile_zoom"`
	TileRepeat     int        `yaml:"tile_repeat" json:"tile_repeat"`
	FloodElevation float64    `yaml:"flood_elevation" json:"flood_elevation"`
	Water          WaterRange `yaml:"water" json:"water"`
	RainCount      int        `yaml:"rain_count" json:"rain_count"`
	FrameRate      int        `yaml:"frame_rate" json:"frame_rate"`
	// Seed fixes the building-height and rain generators; 0 seeds from the clock.
	Seed int64 `yaml:"seed" json:"seed"`
}

// WaterRange bounds the user-controlled water plane elevation in meters.
type WaterRange struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// Sources configures the upstream data providers.
type Sources struct {
	Timeout           time.Duration   `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64         `yaml:"requests_per_second" json:"requests_per_second"`
	UserAgent         string          `yaml:"user_agent" json:"user_agent"`
	Weather           WeatherSource   `yaml:"weather" json:"weather"`
	River             RiverSource     `yaml:"river" json:"river"`
	Flood             FloodSource     `yaml:"flood" json:"flood"`
	Buildings         BuildingsSource `yaml:"buildings" json:"buildings"`
	Tiles             TileSource      `yaml:"tiles" json:"tiles"`
}

type WeatherSource struct {
	URL      string `yaml:"url" json:"url"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

type RiverSource struct {
	URL string `yaml:"url" json:"url"`
}

type FloodSource struct {
	URL   string `yaml:"url" json:"url"`
	Token string `yaml:"token" json:"-"`
	// Proxy is prepended to the escaped target URL when set.
	Proxy string `yaml:"proxy" json:"proxy"`
}

type BuildingsSource struct {
	URL         string  `yaml:"url" json:"url"`
	RadiusM     float64 `yaml:"radius_m" json:"radius_m"`
	MaxParallel int     `yaml:"max_parallel" json:"max_parallel"`
}

type TileSource struct {
	// URL is a template with {z}, {x} and {y} placeholders.
	URL string `yaml:"url" json:"url"`
}

type ServerDef struct {
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type TracingDef struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}
