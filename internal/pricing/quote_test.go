package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ramonehamilton/precon-analyzer/internal/scryfall"
)

func str(s string) *string { return &s }

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name       string
		prices     scryfall.Prices
		wantOK     bool
		wantPrice  string
		wantSource string
	}{
		{name: "usd", prices: scryfall.Prices{USD: str("1.25"), USDFoil: str("3.00")}, wantOK: true, wantPrice: "1.25", wantSource: SourceUSD},
		{name: "foil fallback", prices: scryfall.Prices{USDFoil: str("3.00")}, wantOK: true, wantPrice: "3", wantSource: SourceUSDFoil},
		{name: "empty usd falls back", prices: scryfall.Prices{USD: str(""), USDFoil: str("0.75")}, wantOK: true, wantPrice: "0.75", wantSource: SourceUSDFoil},
		{name: "garbage usd falls back", prices: scryfall.Prices{USD: str("n/a"), USDFoil: str("2")}, wantOK: true, wantPrice: "2", wantSource: SourceUSDFoil},
		{name: "zero is a price", prices: scryfall.Prices{USD: str("0.00")}, wantOK: true, wantPrice: "0", wantSource: SourceUSD},
		{name: "negative skipped", prices: scryfall.Prices{USD: str("-1")}},
		{name: "none", prices: scryfall.Prices{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, source, ok := ExtractPrice(tt.prices)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.True(t, price.IsZero())
				return
			}
			assert.Equal(t, tt.wantPrice, price.String())
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestQuote_Value(t *testing.T) {
	q := Quote{Status: StatusNotFound}
	assert.True(t, q.Value().IsZero())
	assert.False(t, q.Priced())
}
