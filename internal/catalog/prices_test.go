package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceHint(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"empty", "", nil},
		{"python none", "None", nil},
		{"empty list", "[]", nil},
		{"usd string", `{'usd': '1.25', 'usd_foil': None}`, ptr(1.25)},
		{"usd number", `{'usd': 3.5}`, ptr(3.5)},
		{"zero usd falls back", `{'usd': '0', 'ck': '2.10'}`, ptr(2.10)},
		{"fallback order", `{'usd': None, 'scg': 4, 'ct': 9}`, ptr(4)},
		{"booleans tolerated", `{'usd': None, 'csi': '0.99', 'foil': True}`, ptr(0.99)},
		{"no positive price", `{'usd': None, 'ck': '0'}`, nil},
		{"garbage", `{not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePriceHint(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(f float64) *float64 { return &f }
