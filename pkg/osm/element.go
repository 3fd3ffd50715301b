package osm

import (
	"encoding/json"
	"fmt"
	"io"
)

// Element is one raw Overpass element. Nodes carry Lat/Lon, ways carry
// an ordered list of node ids.
type Element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// Response is the top-level Overpass JSON document.
type Response struct {
	Elements []Element `json:"elements"`
}

// Decode reads an Overpass JSON document.
func Decode(r io.Reader) ([]Element, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}
	return resp.Elements, nil
}

// IsBuilding reports whether the element is a way with a building tag.
func (e Element) IsBuilding() bool {
	return e.Type == TypeWay && e.Tags["building"] != ""
}
