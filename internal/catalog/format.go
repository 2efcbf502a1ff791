package catalog

import "strings"

const formatUnknown = "unknown"

// formatRule maps a matcher to a canonical format tag. Rules are evaluated in
// order and the first match wins.
type formatRule struct {
	match func(normalized string) bool
	tag   string
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

var formatRules = []formatRule{
	{match: func(s string) bool { return s == "" }, tag: formatUnknown},
	{match: contains("commander"), tag: "commander"},
	{match: contains("precon"), tag: "commander"},
	{match: contains("standard"), tag: "standard"},
	{match: contains("modern"), tag: "modern"},
	{match: contains("legacy"), tag: "legacy"},
	{match: contains("vintage"), tag: "vintage"},
	{match: contains("pioneer"), tag: "pioneer"},
	// Long values are columns shifted by broken CSV quoting.
	{match: func(s string) bool { return len(s) > 50 }, tag: "commander"},
}

// NormalizeFormat maps free-text format strings onto the closed set
// commander, standard, modern, legacy, vintage, pioneer, unknown.
func NormalizeFormat(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, r := range formatRules {
		if r.match(s) {
			return r.tag
		}
	}
	return formatUnknown
}
