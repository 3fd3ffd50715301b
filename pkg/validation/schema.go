package validation

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
)

// maxLocalSpanM is the ground size beyond which the fixed-scale projection
// drifts by more than a few meters at the edges.
const maxLocalSpanM = 20000

// ValidateConfig checks a parsed Config before any scene is built.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateCenter(c, r)
	validateScene(c, r)
	validateWater(c, r)
	validateSources(c, r)
	validateServer(c, r)

	return r
}

func validateCenter(c *config.Config, r *Report) {
	if c.Center.Lat < -90 || c.Center.Lat > 90 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "center latitude out of range",
			Path:        "center.lat",
			ActualValue: c.Center.Lat,
			Expected:    "[-90, 90]",
		})
	}
	if c.Center.Lon < -180 || c.Center.Lon > 180 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "center longitude out of range",
			Path:        "center.lon",
			ActualValue: c.Center.Lon,
			Expected:    "[-180, 180]",
		})
	}
	if math.Abs(c.Center.Lat) > 85 {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     "equirectangular scale degenerates near the poles",
			Path:        "center.lat",
			ActualValue: c.Center.Lat,
		})
	}
	if c.MetersPerDegree < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "meters_per_degree must not be negative",
			Path:        "meters_per_degree",
			ActualValue: c.MetersPerDegree,
			Expected:    ">= 0 (0 selects 111320)",
		})
	}
}

func validateScene(c *config.Config, r *Report) {
	s := c.Scene
	if s.GroundSize <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "ground_size must be greater than 0",
			Path:        "scene.ground_size",
			ActualValue: s.GroundSize,
			Expected:    "> 0",
		})
	} else if s.GroundSize > maxLocalSpanM {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("ground_size above %d m exceeds the local tangent-plane approximation", maxLocalSpanM),
			Path:        "scene.ground_size",
			ActualValue: s.GroundSize,
		})
	}
	if s.TileZoom < 0 || s.TileZoom > 19 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "tile_zoom out of range",
			Path:        "scene.tile_zoom",
			ActualValue: s.TileZoom,
			Expected:    "[0, 19]",
		})
	}
	if s.RainCount < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "rain_count must not be negative",
			Path:        "scene.rain_count",
			ActualValue: s.RainCount,
			Expected:    ">= 0",
		})
	}
	if s.FrameRate <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "frame_rate must be greater than 0",
			Path:        "scene.frame_rate",
			ActualValue: s.FrameRate,
			Expected:    "> 0",
		})
	}
}

func validateWater(c *config.Config, r *Report) {
	w := c.Scene.Water
	if w.Max <= w.Min {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "water.max must exceed water.min",
			Path:        "scene.water",
			ActualValue: fmt.Sprintf("%v..%v", w.Min, w.Max),
		})
		return
	}
	if w.Step <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "water.step must be greater than 0",
			Path:        "scene.water.step",
			ActualValue: w.Step,
			Expected:    "> 0",
		})
		return
	}
	steps := (w.Max - w.Min) / w.Step
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     "water range is not a whole number of steps; max is unreachable",
			Path:        "scene.water",
			ActualValue: steps,
		})
	}
}

func validateSources(c *config.Config, r *Report) {
	src := c.Sources
	endpoints := map[string]string{
		"sources.weather.url":   src.Weather.URL,
		"sources.river.url":     src.River.URL,
		"sources.flood.url":     src.Flood.URL,
		"sources.buildings.url": src.Buildings.URL,
		"sources.tiles.url":     src.Tiles.URL,
	}
	for path, raw := range endpoints {
		u, err := url.Parse(raw)
		if raw == "" || err != nil || u.Scheme == "" || u.Host == "" {
			r.AddError(Result{
				Level:       LevelConfig,
				Message:     "endpoint must be an absolute URL",
				Path:        path,
				ActualValue: raw,
			})
		}
	}

	if src.Tiles.URL != "" {
		for _, ph := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(src.Tiles.URL, ph) {
				r.AddError(Result{
					Level:       LevelConfig,
					Message:     fmt.Sprintf("tile URL template is missing %s", ph),
					Path:        "sources.tiles.url",
					ActualValue: src.Tiles.URL,
				})
			}
		}
	}

	if src.Flood.Token == "" {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     "no flood-extent token configured; flood polygons will be unavailable",
			Path:        "sources.flood.token",
			Suggestions: []string{"Set GISTDA_TOKEN in the environment or .env.local"},
		})
	}
	if src.Buildings.RadiusM <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "buildings.radius_m must be greater than 0",
			Path:        "sources.buildings.radius_m",
			ActualValue: src.Buildings.RadiusM,
			Expected:    "> 0",
		})
	}
	if src.RequestsPerSecond < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "requests_per_second must not be negative",
			Path:        "sources.requests_per_second",
			ActualValue: src.RequestsPerSecond,
			Expected:    ">= 0 (0 disables limiting)",
		})
	}
	if src.Timeout == 0 {
		r.AddInfo(Result{
			Level:   LevelConfig,
			Message: "upstream fetches have no timeout",
			Path:    "sources.timeout",
		})
	}
}

func validateServer(c *config.Config, r *Report) {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "server.port out of range",
			Path:        "server.port",
			ActualValue: c.Server.Port,
			Expected:    "[1, 65535]",
		})
	}
}
