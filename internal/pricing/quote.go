package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
	"github.com/ramonehamilton/precon-analyzer/internal/scryfall"
)

// Status is the outcome of a price lookup.
type Status string

const (
	// StatusPriced means a usable market price was found.
	StatusPriced Status = "priced"
	// StatusNotFound means the card does not exist or has no price.
	StatusNotFound Status = "not_found"
	// StatusUnavailable means the lookup failed for a transient reason.
	StatusUnavailable Status = "unavailable"
)

// Price sources, in order of preference.
const (
	SourceUSD     = "usd"
	SourceUSDFoil = "usd_foil"
)

// Quote is the typed result of resolving one card. Price is only meaningful
// when Status is StatusPriced.
type Quote struct {
	Status Status
	Price  decimal.Decimal
	Source string
	Card   *scryfall.Card
	Err    error
}

// Priced reports whether the quote carries a usable price.
func (q Quote) Priced() bool {
	return q.Status == StatusPriced
}

// Value returns the price, or zero for any non-priced outcome.
func (q Quote) Value() decimal.Decimal {
	if !q.Priced() {
		return decimal.Zero
	}
	return q.Price
}

func (s Status) metricOutcome() string {
	switch s {
	case StatusPriced:
		return metrics.OutcomePriced
	case StatusNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeUnavailable
	}
}

// ExtractPrice picks the non-foil market price, falling back to the foil
// price. Empty, unparseable or negative values are skipped.
func ExtractPrice(p scryfall.Prices) (decimal.Decimal, string, bool) {
	if d, ok := parsePrice(p.USD); ok {
		return d, SourceUSD, true
	}
	if d, ok := parsePrice(p.USDFoil); ok {
		return d, SourceUSDFoil, true
	}
	return decimal.Zero, "", false
}

func parsePrice(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
