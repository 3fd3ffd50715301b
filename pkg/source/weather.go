package source

import (
	"context"
	"net/url"
	"strconv"
)

// Weather fetches the current conditions and daily precipitation. On any
// failure it returns nil and the error; nil means unavailable.
func (c *Client) Weather(ctx context.Context) (*Weather, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(c.center.Lat))
	q.Set("longitude", formatCoord(c.center.Lon))
	q.Set("current", "temperature_2m,rain,showers,weather_code")
	q.Set("daily", "precipitation_sum")
	q.Set("timezone", c.cfg.Weather.Timezone)

	var w Weather
	if err := c.getJSON(ctx, NameWeather, c.cfg.Weather.URL+"?"+q.Encode(), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// River fetches today's forecast river discharge. On failure the returned
// River has Discharge 0 alongside the error.
func (c *Client) River(ctx context.Context) (River, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(c.center.Lat))
	q.Set("longitude", formatCoord(c.center.Lon))
	q.Set("daily", "river_discharge")
	q.Set("forecast_days", "1")

	var resp struct {
		Daily struct {
			RiverDischarge []float64 `json:"river_discharge"`
		} `json:"daily"`
	}
	if err := c.getJSON(ctx, NameRiver, c.cfg.River.URL+"?"+q.Encode(), &resp); err != nil {
		return River{}, err
	}
	if len(resp.Daily.RiverDischarge) == 0 {
		return River{}, nil
	}
	return River{Discharge: resp.Daily.RiverDischarge[0]}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
