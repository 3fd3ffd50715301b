package scene

import (
	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/osm"
)

const (
	// RainSpread is the side of the square the drops fall over.
	RainSpread = 1000.0
	RainTop    = 600.0
	RainFall   = 4.0
)

// PointsMaterial styles a particle cloud.
type PointsMaterial struct {
	Color       string  `json:"color"`
	Size        float64 `json:"size"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
}

var RainMaterial = PointsMaterial{
	Color:       "#aaaaaa",
	Size:        0.5,
	Opacity:     0.6,
	Transparent: true,
}

// RainInfo is the serializable summary of a rain particle set.
type RainInfo struct {
	Count    int            `json:"count"`
	Material PointsMaterial `json:"material"`
}

// Rain is a fixed set of falling particles.
type Rain struct {
	Drops []geo.Vec3
}

// NewRain scatters count drops uniformly over the rain volume.
func NewRain(count int, rng osm.RandSource) *Rain {
	r := &Rain{Drops: make([]geo.Vec3, count)}
	for i := range r.Drops {
		r.Drops[i] = geo.V3(
			(rng.Float64()-0.5)*RainSpread,
			rng.Float64()*RainTop,
			(rng.Float64()-0.5)*RainSpread,
		)
	}
	return r
}

// Step drops every particle by RainFall and wraps those below the ground
// back to the top.
func (r *Rain) Step() {
	for i := range r.Drops {
		r.Drops[i].Y -= RainFall
		if r.Drops[i].Y < 0 {
			r.Drops[i].Y = RainTop
		}
	}
}

func (r *Rain) info() *RainInfo {
	if r == nil {
		return nil
	}
	return &RainInfo{Count: len(r.Drops), Material: RainMaterial}
}
