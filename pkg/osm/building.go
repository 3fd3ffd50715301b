package osm

import (
	"github.com/paulmach/orb"
)

// Building is a resolved building footprint ready for meshing.
type Building struct {
	ID     int64             `json:"id"`
	Ring   orb.Ring          `json:"ring"`
	Tags   map[string]string `json:"tags,omitempty"`
	Height float64           `json:"height"`
	// Name is the label text, empty for unnamed buildings.
	Name string `json:"name,omitempty"`
}

// IndexNodes maps node id to [lon, lat] for every node element.
func IndexNodes(elements []Element) map[int64]orb.Point {
	idx := make(map[int64]orb.Point)
	for _, el := range elements {
		if el.Type == TypeNode {
			idx[el.ID] = orb.Point{el.Lon, el.Lat}
		}
	}
	return idx
}

// Buildings resolves every building way into a Building. Node ids with no
// matching node are dropped; ways left with fewer than 3 points are
// skipped. Output follows input order.
func Buildings(elements []Element, rng RandSource) []Building {
	nodes := IndexNodes(elements)

	var out []Building
	for _, el := range elements {
		if !el.IsBuilding() {
			continue
		}
		ring := make(orb.Ring, 0, len(el.Nodes))
		for _, id := range el.Nodes {
			if pt, ok := nodes[id]; ok {
				ring = append(ring, pt)
			}
		}
		if len(ring) < 3 {
			continue
		}
		out = append(out, Building{
			ID:     el.ID,
			Ring:   ring,
			Tags:   el.Tags,
			Height: Height(el.Tags, rng),
			Name:   DisplayName(el.Tags),
		})
	}
	return out
}
