package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
)

// Tile is the slippy-map tile under the scene center.
type Tile struct {
	Z, X, Y int
	// Data is the encoded tile as served.
	Data  []byte
	Image image.Image
}

// TileURL expands the configured template for a tile.
func (c *Client) TileURL(z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(c.cfg.Tiles.URL)
}

// GroundTile fetches the map tile containing the center at the configured
// zoom, used as the ground texture.
func (c *Client) GroundTile(ctx context.Context) (*Tile, error) {
	x, y := geo.TileXY(c.center.Lat, c.center.Lon, c.zoom)
	data, err := c.get(ctx, NameTiles, c.TileURL(c.zoom, x, y))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: decode tile %d/%d/%d: %w", NameTiles, c.zoom, x, y, err)
	}
	return &Tile{Z: c.zoom, X: x, Y: y, Data: data, Image: img}, nil
}
