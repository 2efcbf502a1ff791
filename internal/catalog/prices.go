package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// hintSources are consulted in order when the dataset carries no usd price.
var hintSources = []string{"usd", "ck", "scg", "ct", "csi"}

var pythonLiterals = strings.NewReplacer("'", `"`, "True", "true", "False", "false", "None", "null")

// ParsePriceHint extracts a positive price from the dataset's prices column,
// which holds a Python dict literal. It returns nil when no source has a
// positive price or the value cannot be parsed.
func ParsePriceHint(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "None" || raw == "[]" || raw == "{}" {
		return nil
	}

	var prices map[string]any
	if err := json.Unmarshal([]byte(pythonLiterals.Replace(raw)), &prices); err != nil {
		return nil
	}

	for _, src := range hintSources {
		if v, ok := positivePrice(prices[src]); ok {
			return &v
		}
	}
	return nil
}

func positivePrice(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	return f, f > 0
}
