package main

import (
	"fmt"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/analytics"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/config"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/scene"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Path != "" {
				fmt.Printf("    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Path != "" {
				fmt.Printf("    -> %s = %v\n", w.Path, w.ActualValue)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printDashboard(cfg *config.Config, d *analytics.Dashboard, g *scene.Graph) {
	fmt.Printf("=== %s (%.4f, %.4f) ===\n\n", cfg.Name, cfg.Center.Lat, cfg.Center.Lon)

	fmt.Println("WEATHER")
	if d.Weather.Available {
		fmt.Printf("  Temperature:       %8.1f C\n", d.Weather.Temperature)
		fmt.Printf("  Precipitation:     %8.1f mm\n", d.Weather.PrecipitationMM)
		fmt.Printf("  Raining:           %8v\n", d.Weather.Raining)
	}
	fmt.Printf("  %s\n", d.Weather.Text)
	fmt.Println()

	fmt.Println("RIVER")
	fmt.Printf("  Discharge:         %8.1f m3/s\n", d.River.Discharge)
	fmt.Println()

	fmt.Println("FLOOD EXTENT")
	switch {
	case !d.Flood.Loaded:
		fmt.Println("  not loaded")
	case !d.Flood.Available:
		fmt.Printf("  unavailable: %s\n", d.Flood.Error)
	default:
		fmt.Printf("  Affected features: %8d\n", d.Flood.AffectedCount)
		for _, a := range d.Flood.Areas {
			fmt.Printf("    %-30s %6d\n", a.AreaName, a.Count)
		}
	}
	if d.Flood.Notice != "" {
		fmt.Printf("  %s\n", d.Flood.Notice)
	}
	fmt.Println()

	fmt.Println("WATER")
	fmt.Printf("  Level:             %8.1f m\n", d.WaterLevel)
	fmt.Printf("  Alert:             %8s  %s\n", d.Alert.Level, d.Alert.Text)
	fmt.Println()

	fmt.Println("SCENE")
	for _, t := range []scene.EntityType{
		scene.EntityBuilding, scene.EntityLabel, scene.EntityFlood, scene.EntityLight,
	} {
		fmt.Printf("  %-18s %8d\n", string(t)+":", g.Count(t))
	}
	triangles := 0
	for _, e := range g.Entities {
		if e.Mesh != nil {
			triangles += e.Mesh.TriangleCount()
		}
	}
	fmt.Printf("  %-18s %8d\n", "triangles:", triangles)
	if g.Rain != nil {
		fmt.Printf("  %-18s %8d\n", "rain particles:", g.Rain.Count)
	}
}
