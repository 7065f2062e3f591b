package schema

import (
	"math"
	"net/url"
	"strconv"
)

// CoerceQuery converts query values to a JSON-like object for validation.
// Any value that parses fully as a finite number becomes a float64 so that
// integer and numeric keywords apply. Numeric-looking strings such as zip
// codes are coerced too; schemas that need them as strings must accept both.
// Only the first value of a repeated key is kept.
func CoerceQuery(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[key] = coerceScalar(vs[0])
	}
	return out
}

func coerceScalar(v string) any {
	if v == "" {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}
	return f
}

// Int reads an integer previously coerced by CoerceQuery, returning def when
// the key is absent or not numeric.
func Int(data map[string]any, key string, def int) int {
	if f, ok := data[key].(float64); ok {
		return int(f)
	}
	return def
}

// String reads a string value, returning def when the key is absent.
func String(data map[string]any, key string, def string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return def
}
