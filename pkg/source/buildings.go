package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/serjvanilla/go-overpass"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
)

// BuildingsQuery returns the Overpass QL for every building way and
// relation within radius meters of (lat, lon), with member nodes.
func BuildingsQuery(lat, lon, radius float64) string {
	return fmt.Sprintf(`[out:json];
(
  way["building"](around:%g,%g,%g);
  relation["building"](around:%g,%g,%g);
);
out body;
>;
out skel qt;`, radius, lat, lon, radius, lat, lon)
}

// Buildings fetches building footprints around the center as raw OSM
// elements: nodes first, then ways, each in id order.
func (c *Client) Buildings(ctx context.Context) (elements []osm.Element, err error) {
	endpoint := c.cfg.Buildings.URL
	ctx, end, err := c.begin(ctx, NameBuildings, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	if c.http.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.http.Timeout)
		defer cancel()
	}
	// go-overpass has no context parameter, so the context rides on the
	// transport of a per-call client.
	hc := &http.Client{
		Transport: &contextTransport{ctx: ctx, userAgent: c.cfg.UserAgent, base: c.http.Transport},
	}
	parallel := c.cfg.Buildings.MaxParallel
	if parallel <= 0 {
		parallel = 1
	}
	client := overpass.NewWithSettings(endpoint, parallel, hc)

	q := BuildingsQuery(c.center.Lat, c.center.Lon, c.cfg.Buildings.RadiusM)
	result, err := client.Query(q)
	if err != nil {
		return nil, fmt.Errorf("%s: overpass query: %w", NameBuildings, err)
	}
	return convertResult(&result), nil
}

// convertResult flattens an overpass.Result. go-overpass creates empty
// placeholder nodes for ids it saw referenced but never received; those
// sit at exactly (0, 0) and are left out so ways drop them like any other
// unresolved id.
func convertResult(result *overpass.Result) []osm.Element {
	elements := make([]osm.Element, 0, len(result.Nodes)+len(result.Ways))

	nodeIDs := make([]int64, 0, len(result.Nodes))
	for id, n := range result.Nodes {
		if n == nil || (n.Lat == 0 && n.Lon == 0) {
			continue
		}
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	for _, id := range nodeIDs {
		n := result.Nodes[id]
		elements = append(elements, osm.Element{
			Type: osm.TypeNode,
			ID:   n.ID,
			Lat:  n.Lat,
			Lon:  n.Lon,
			Tags: n.Tags,
		})
	}

	wayIDs := make([]int64, 0, len(result.Ways))
	for id := range result.Ways {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })
	for _, id := range wayIDs {
		w := result.Ways[id]
		if w == nil {
			continue
		}
		refs := make([]int64, 0, len(w.Nodes))
		for _, n := range w.Nodes {
			if n != nil {
				refs = append(refs, n.ID)
			}
		}
		elements = append(elements, osm.Element{
			Type:  osm.TypeWay,
			ID:    w.ID,
			Nodes: refs,
			Tags:  w.Tags,
		})
	}
	return elements
}

type contextTransport struct {
	ctx       context.Context
	userAgent string
	base      http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(t.ctx)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
