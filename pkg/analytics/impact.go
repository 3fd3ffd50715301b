package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// Property keys in GISTDA flood features.
const (
	PropTambon = "tb_tn"
	PropAmphoe = "ap_tn"
	PropID     = "id"
)

// UnnamedArea labels features with no usable name or id.
const UnnamedArea = "พื้นที่ไม่ระบุชื่อ"

// AreaName picks the display name for a flood feature: tambon with
// amphoe, then amphoe, then tambon, then the feature id.
func AreaName(props geojson.Properties) string {
	tambon := propString(props, PropTambon)
	amphoe := propString(props, PropAmphoe)

	switch {
	case tambon != "" && amphoe != "":
		return fmt.Sprintf("ต.%s อ.%s", tambon, amphoe)
	case amphoe != "":
		return "อ." + amphoe
	case tambon != "":
		return "ต." + tambon
	}
	if id := propString(props, PropID); id != "" {
		return "Area ID: " + id
	}
	return UnnamedArea
}

// Summarize groups features by AreaName, most affected first. Areas with
// equal counts keep first-seen order. Every feature lands in exactly one
// bucket.
func Summarize(fc *geojson.FeatureCollection) []ImpactSummary {
	out := []ImpactSummary{}
	if fc == nil {
		return out
	}

	index := make(map[string]int)
	for _, f := range fc.Features {
		var props geojson.Properties
		if f != nil {
			props = f.Properties
		}
		name := AreaName(props)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ImpactSummary{AreaName: name})
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}

// propString renders a property the way a template literal would, and
// returns "" for values that would read as false: missing, null, empty
// string, zero and false.
func propString(props geojson.Properties, key string) string {
	if props == nil {
		return ""
	}
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(v)
	}
}
