package analytics

import (
	"fmt"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/source"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/validation"
)

// WatchThreshold is the water level at which the alert turns critical.
const WatchThreshold = 2.0

const (
	textClear          = "ท้องฟ้าแจ่มใส"
	textWeatherMissing = "Weather data unavailable"
	textFloodDetected  = "ตรวจพบพื้นที่เสี่ยงภัย โปรดระมัดระวัง"
	textFloodClear     = "ยังไม่ตรวจพบพื้นที่น้ำท่วมขัง"
	textFloodFailed    = "ไม่สามารถดึงข้อมูล GISTDA ได้"
)

// Resolve builds the dashboard from the latest fetch results. The report
// carries one finding per source that is unavailable or still pending;
// none of them are errors.
func Resolve(in Inputs) (*Dashboard, *validation.Report) {
	report := validation.NewReport()

	d := &Dashboard{
		Weather:    ResolveWeather(in.Weather),
		Flood:      ResolveFlood(in.Flood),
		WaterLevel: in.WaterLevel,
		Alert:      WaterAlert(in.WaterLevel),
	}
	if in.River != nil {
		d.River = *in.River
	}

	validateSources(in, report)
	return d, report
}

// ResolveWeather formats the weather widget. A nil forecast is unavailable.
func ResolveWeather(w *source.Weather) WeatherStatus {
	if w == nil {
		return WeatherStatus{Text: textWeatherMissing}
	}
	s := WeatherStatus{
		Available:   true,
		Temperature: w.Current.Temperature,
		Raining:     w.Raining(),
	}
	if s.Raining {
		s.PrecipitationMM = w.Precipitation()
		s.Text = fmt.Sprintf("ฝนตก: %.1f mm", s.PrecipitationMM)
	} else {
		s.Text = textClear
	}
	return s
}

// ResolveFlood summarizes a flood fetch. A nil result is still loading.
func ResolveFlood(r *source.FloodResult) FloodReport {
	if r == nil {
		return FloodReport{Areas: []ImpactSummary{}}
	}
	if !r.Success {
		return FloodReport{
			Loaded: true,
			Error:  r.Error,
			Areas:  []ImpactSummary{},
			Notice: textFloodFailed,
		}
	}

	rep := FloodReport{
		Loaded:        true,
		Available:     true,
		AffectedCount: r.FeatureCount(),
		Areas:         Summarize(r.Data),
		Notice:        textFloodClear,
	}
	if rep.AffectedCount > 0 {
		rep.Notice = textFloodDetected
	}
	return rep
}

// WaterAlert grades a simulated water level in meters.
func WaterAlert(level float64) Alert {
	switch {
	case level == 0:
		return Alert{Level: AlertNormal, Text: "ระดับน้ำปกติ"}
	case level < WatchThreshold:
		return Alert{Level: AlertWatch, Text: "เฝ้าระวังน้ำล้นตลิ่ง"}
	default:
		return Alert{Level: AlertCritical, Text: "วิกฤตน้ำท่วมสูง"}
	}
}

func validateSources(in Inputs, report *validation.Report) {
	if in.WeatherLoaded && in.Weather == nil {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSource,
			Message: "weather forecast unavailable",
			Path:    "weather",
		})
	}
	if in.Flood == nil {
		report.AddInfo(validation.Result{
			Level:   validation.LevelSource,
			Message: "flood extent still loading",
			Path:    "flood",
		})
	} else if !in.Flood.Success {
		report.AddWarning(validation.Result{
			Level:       validation.LevelSource,
			Message:     "flood extent unavailable",
			Path:        "flood",
			ActualValue: in.Flood.Error,
		})
	}
	if in.River != nil && in.River.Discharge == 0 {
		report.AddInfo(validation.Result{
			Level:   validation.LevelSource,
			Message: "river discharge reported as 0; the forecast may be unavailable",
			Path:    "river",
		})
	}
}
