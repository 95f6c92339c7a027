package provider

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ExtractValue normalizes a stat value from various feed formats.
//
// football-data.org and the seed file return flat numbers, FBref cells arrive
// as strings ("1,234"), and some aggregates come as {"total": 15}. This handles
// all of them, extracting the aggregate.
//
// Returns the scalar float64 value, and ok=false if not extractable. NaN and
// ±Inf are never returned as ok.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case map[string]interface{}:
		for _, key := range []string{"total", "all", "count", "value"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ExtractString returns a trimmed display string for a raw field. Nested
// objects such as {"name": "Arsenal FC"} unwrap to their name.
func ExtractString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]interface{}:
		for _, key := range []string{"name", "shortName", "value"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractString(inner)
			}
		}
		return ""
	default:
		return ""
	}
}
