package analytics

import (
	"github.com/nanoubon/hatyai-flood-simulation/pkg/source"
)

// ImpactSummary counts flood features in one named area.
type ImpactSummary struct {
	AreaName string `json:"area_name"`
	Count    int    `json:"count"`
}

// AlertLevel grades the simulated water level.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "normal"
	AlertWatch    AlertLevel = "watch"
	AlertCritical AlertLevel = "critical"
)

// Alert is the water-level banner.
type Alert struct {
	Level AlertLevel `json:"level"`
	Text  string     `json:"text"`
}

// WeatherStatus is the weather widget.
type WeatherStatus struct {
	Available       bool    `json:"available"`
	Temperature     float64 `json:"temperature"`
	Raining         bool    `json:"raining"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	Text            string  `json:"text"`
}

// FloodReport is the flood-impact panel.
type FloodReport struct {
	// Loaded is false until the flood fetch has resolved either way.
	Loaded        bool            `json:"loaded"`
	Available     bool            `json:"available"`
	Error         string          `json:"error,omitempty"`
	AffectedCount int             `json:"affected_count"`
	Areas         []ImpactSummary `json:"areas"`
	Notice        string          `json:"notice"`
}

// Dashboard is everything the overlay panel shows.
type Dashboard struct {
	Weather    WeatherStatus `json:"weather"`
	River      source.River  `json:"river"`
	Flood      FloodReport   `json:"flood"`
	WaterLevel float64       `json:"water_level"`
	Alert      Alert         `json:"alert"`
}

// Inputs are the latest fetch results. A nil pointer means the fetch has
// not resolved yet, except Weather where nil also means unavailable.
type Inputs struct {
	Weather       *source.Weather
	WeatherLoaded bool
	River         *source.River
	Flood         *source.FloodResult
	WaterLevel    float64
}
