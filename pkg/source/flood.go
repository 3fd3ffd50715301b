package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// ErrNoToken is reported when no flood-extent token is configured.
var ErrNoToken = errors.New("flood: no access token configured")

// FloodExtent fetches the latest satellite flood-extent polygons. The
// result is never nil-valued: failures come back as Success=false with
// the error text, and the error is also returned for logging.
func (c *Client) FloodExtent(ctx context.Context) (FloodResult, error) {
	if c.cfg.Flood.Token == "" {
		return FloodResult{Error: ErrNoToken.Error()}, ErrNoToken
	}

	body, err := c.get(ctx, NameFlood, c.floodURL())
	if err != nil {
		return FloodResult{Error: err.Error()}, err
	}
	fc, err := Normalize(body)
	if err != nil {
		return FloodResult{Error: err.Error()}, err
	}
	return FloodResult{Success: true, Data: fc}, nil
}

// floodURL adds the token and a cache-busting timestamp, then wraps the
// whole URL in the proxy prefix when one is configured.
func (c *Client) floodURL() string {
	q := url.Values{}
	q.Set("token", c.cfg.Flood.Token)
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	target := c.cfg.Flood.URL + "?" + q.Encode()

	if c.cfg.Flood.Proxy == "" {
		return target
	}
	return c.cfg.Flood.Proxy + url.QueryEscape(target)
}

// Normalize decodes a GeoJSON document into a FeatureCollection. A lone
// Feature becomes a one-element collection.
func Normalize(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type     string          `json:"type"`
		Features json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("flood: decode: %w", err)
	}

	switch {
	case probe.Type == "Feature" && (len(probe.Features) == 0 || string(probe.Features) == "null"):
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("flood: decode feature: %w", err)
		}
		return geojson.NewFeatureCollection().Append(f), nil
	case probe.Type == "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("flood: decode collection: %w", err)
		}
		return fc, nil
	default:
		return nil, fmt.Errorf("flood: unexpected GeoJSON type %q", probe.Type)
	}
}
