package source

import (
	"github.com/paulmach/orb/geojson"
)

// Weather is the subset of the Open-Meteo forecast the scene uses. A nil
// *Weather means the forecast is unavailable.
type Weather struct {
	Current CurrentWeather `json:"current"`
	Daily   DailyWeather   `json:"daily"`
}

type CurrentWeather struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
	Rain        float64 `json:"rain"`
	Showers     float64 `json:"showers"`
	WeatherCode int     `json:"weather_code"`
}

type DailyWeather struct {
	Time             []string  `json:"time"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
}

// Raining reports whether there is any current rain or showers.
func (w *Weather) Raining() bool {
	return w != nil && (w.Current.Rain > 0 || w.Current.Showers > 0)
}

// Precipitation is the current rain plus showers in mm.
func (w *Weather) Precipitation() float64 {
	if w == nil {
		return 0
	}
	return w.Current.Rain + w.Current.Showers
}

// River is today's forecast discharge. Discharge is 0 when unavailable.
type River struct {
	Discharge float64 `json:"discharge"`
}

// FloodResult is the outcome of a flood-extent fetch. On success Data is
// always a FeatureCollection; otherwise Error says why.
type FloodResult struct {
	Success bool                       `json:"success"`
	Data    *geojson.FeatureCollection `json:"data,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// FeatureCount returns the number of flood features, 0 on failure.
func (r FloodResult) FeatureCount() int {
	if !r.Success || r.Data == nil {
		return 0
	}
	return len(r.Data.Features)
}
