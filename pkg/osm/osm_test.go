package osm

import (
	"strings"
	"testing"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestHeightFromLevels(t *testing.T) {
	h := Height(map[string]string{"building:levels": "5"}, fixedRand(0.9))
	if h != 20 {
		t.Errorf("expected 20, got %f", h)
	}
}

func TestHeightNamedClamp(t *testing.T) {
	// Fallback with rng 0 gives 6 m, below the named minimum.
	h := Height(map[string]string{"name": "Central Festival"}, fixedRand(0))
	if h != NamedMinHeight {
		t.Errorf("expected %f, got %f", NamedMinHeight, h)
	}

	h = Height(map[string]string{"name:en": "Tower", "building:levels": "10"}, fixedRand(0))
	if h != 40 {
		t.Errorf("named building above the minimum should keep 40, got %f", h)
	}
}

func TestHeightFallbackRange(t *testing.T) {
	rng := NewRand(7)
	for i := 0; i < 1000; i++ {
		h := Height(map[string]string{"building": "yes"}, rng)
		if h < 6 || h >= 18 {
			t.Fatalf("fallback height %f outside [6,18)", h)
		}
	}
}

func TestHeightMalformedLevels(t *testing.T) {
	cases := []string{"", "abc", "0", "-3", "  "}
	for _, lv := range cases {
		h := Height(map[string]string{"building:levels": lv}, fixedRand(0.5))
		if h != 12 {
			t.Errorf("levels %q: expected fallback 12, got %f", lv, h)
		}
	}
}

func TestParseLevels(t *testing.T) {
	cases := map[string]int{
		"5":     5,
		" 7 ":   7,
		"3.5":   3,
		"4 fl":  4,
		"+2":    2,
		"-1":    -1,
		"x3":    0,
		"99999": maxLevels,
	}
	for in, want := range cases {
		if got := parseLevels(in); got != want {
			t.Errorf("parseLevels(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestDisplayNamePrecedence(t *testing.T) {
	tags := map[string]string{"name": "Hat Yai Hospital", "name:th": "โรงพยาบาลหาดใหญ่", "name:en": "HY"}
	if got := DisplayName(tags); got != "โรงพยาบาลหาดใหญ่" {
		t.Errorf("expected Thai name, got %q", got)
	}
	delete(tags, "name:th")
	if got := DisplayName(tags); got != "Hat Yai Hospital" {
		t.Errorf("expected name, got %q", got)
	}
	if got := DisplayName(map[string]string{"building": "yes"}); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
}

func TestNames(t *testing.T) {
	tags := map[string]string{"name:en": "HY Hospital", "name": " ", "name:th": "โรงพยาบาลหาดใหญ่"}
	got := Names(tags)
	if len(got) != 2 || got[0] != "โรงพยาบาลหาดใหญ่" || got[1] != "HY Hospital" {
		t.Errorf("expected Thai then English name, got %q", got)
	}
	if got := Names(nil); len(got) != 0 {
		t.Errorf("expected no names, got %q", got)
	}
}

const overpassFixture = `{
  "version": 0.6,
  "elements": [
    {"type": "way", "id": 10, "nodes": [1, 2, 3, 4, 1], "tags": {"building": "yes", "building:levels": "3"}},
    {"type": "way", "id": 11, "nodes": [1, 2, 99], "tags": {"building": "yes"}},
    {"type": "way", "id": 12, "nodes": [1, 2, 3], "tags": {"highway": "service"}},
    {"type": "relation", "id": 20, "tags": {"building": "yes"}},
    {"type": "way", "id": 13, "nodes": [2, 3, 4], "tags": {"building": "commercial", "name": "Lee Garden"}},
    {"type": "node", "id": 1, "lat": 7.0070, "lon": 100.4700},
    {"type": "node", "id": 2, "lat": 7.0070, "lon": 100.4710},
    {"type": "node", "id": 3, "lat": 7.0080, "lon": 100.4710},
    {"type": "node", "id": 4, "lat": 7.0080, "lon": 100.4700}
  ]
}`

func TestBuildings(t *testing.T) {
	elements, err := Decode(strings.NewReader(overpassFixture))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(elements) != 9 {
		t.Fatalf("expected 9 elements, got %d", len(elements))
	}

	bs := Buildings(elements, fixedRand(0))
	if len(bs) != 2 {
		t.Fatalf("expected 2 buildings, got %d", len(bs))
	}

	if bs[0].ID != 10 || len(bs[0].Ring) != 5 || bs[0].Height != 12 {
		t.Errorf("unexpected first building: id=%d ring=%d height=%f", bs[0].ID, len(bs[0].Ring), bs[0].Height)
	}
	if bs[0].Ring[0][0] != 100.4700 || bs[0].Ring[0][1] != 7.0070 {
		t.Errorf("ring should be [lon, lat], got %v", bs[0].Ring[0])
	}
	if bs[1].ID != 13 || bs[1].Name != "Lee Garden" || bs[1].Height != NamedMinHeight {
		t.Errorf("unexpected second building: %+v", bs[1])
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode(strings.NewReader("<html>rate limited</html>")); err == nil {
		t.Error("expected error for non-JSON body")
	}
}
