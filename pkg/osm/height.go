package osm

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	MetersPerLevel    = 4.0
	FallbackMinHeight = 6.0
	FallbackSpread    = 12.0
	NamedMinHeight    = 25.0

	maxLevels = 1000
)

// nameTags are the tags that mark a building as named.
var nameTags = []string{"name:th", "name", "name:en"}

// RandSource supplies the fallback height jitter.
type RandSource interface {
	Float64() float64
}

// NewRand returns a RandSource seeded with seed, or from the clock when
// seed is 0.
func NewRand(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Height derives an extrusion height in meters from a building's tags.
// An explicit positive building:levels wins; otherwise a value in
// [6, 18) is drawn from rng. Named buildings are at least 25 m.
func Height(tags map[string]string, rng RandSource) float64 {
	var h float64
	if levels := parseLevels(tags["building:levels"]); levels > 0 {
		h = float64(levels) * MetersPerLevel
	} else {
		h = FallbackMinHeight + rng.Float64()*FallbackSpread
	}
	if DisplayName(tags) != "" {
		h = math.Max(h, NamedMinHeight)
	}
	return h
}

// DisplayName returns the label text for a building, preferring the Thai
// name. Empty when the building is unnamed.
func DisplayName(tags map[string]string) string {
	if names := Names(tags); len(names) > 0 {
		return names[0]
	}
	return ""
}

// Names lists a building's non-empty names in label precedence order:
// name:th, name, name:en.
func Names(tags map[string]string) []string {
	var out []string
	for _, k := range nameTags {
		if v := strings.TrimSpace(tags[k]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseLevels reads the leading integer of s, so "5", " 5 " and "5.5"
// all give 5. Anything without leading digits gives 0.
func parseLevels(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > maxLevels {
			n = maxLevels
		}
	}
	if neg {
		return -n
	}
	return n
}
