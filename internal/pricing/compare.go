package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
)

// HintStore persists last-seen prices per card. Hints are only ever used as
// the "before" side of a price comparison.
type HintStore interface {
	GetHint(ctx context.Context, cardKey string) (*float64, error)
	SaveHint(ctx context.Context, cardKey string, price float64, at time.Time) error
}

// PriceChange is one successfully refreshed card.
type PriceChange struct {
	CardName   string  `json:"cardName"`
	OldPrice   float64 `json:"oldPrice"`
	NewPrice   float64 `json:"newPrice"`
	Difference float64 `json:"difference"`
}

// PriceComparison compares stored hints with fresh prices for one deck.
type PriceComparison struct {
	DeckID          string        `json:"deckId"`
	DeckName        string        `json:"deckName"`
	UpdatedCards    int           `json:"updatedCards"`
	FailedCards     int           `json:"failedCards"`
	TotalCards      int           `json:"totalCards"`
	OldTotalValue   float64       `json:"oldTotalValue"`
	NewTotalValue   float64       `json:"newTotalValue"`
	ValueDifference float64       `json:"valueDifference"`
	UpdateResults   []PriceChange `json:"updateResults"`
}

// ComparePrices refreshes every line of deck and reports how it moved against
// the stored hints. The new total only includes fresh prices; a line that
// fails to resolve contributes zero, never its hint. Fresh prices are written
// back as hints.
func (v *Valuator) ComparePrices(ctx context.Context, deck *catalog.Deck, spacing time.Duration, hints HintStore) (*PriceComparison, error) {
	cmp := &PriceComparison{
		DeckID:        deck.ID,
		DeckName:      deck.Name,
		TotalCards:    len(deck.Lines),
		UpdateResults: []PriceChange{},
	}
	oldTotal, newTotal := decimal.Zero, decimal.Zero
	now := time.Now().UTC()

	for _, line := range deck.Lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("price comparison of deck %s interrupted: %w", deck.ID, err)
		}

		card := line.Card
		qty := decimal.NewFromInt(int64(line.Quantity))

		old := v.hint(ctx, hints, card)
		oldTotal = oldTotal.Add(old.Mul(qty))

		q := v.resolver.Resolve(ctx, CardRef{Name: card.Name, SetCode: card.SetCode, ExternalID: card.ExternalID}, spacing)
		if !q.Priced() {
			cmp.FailedCards++
			continue
		}

		newTotal = newTotal.Add(q.Price.Mul(qty))
		cmp.UpdatedCards++
		cmp.UpdateResults = append(cmp.UpdateResults, PriceChange{
			CardName:   card.Name,
			OldPrice:   old.Round(2).InexactFloat64(),
			NewPrice:   q.Price.Round(2).InexactFloat64(),
			Difference: q.Price.Sub(old).Round(2).InexactFloat64(),
		})

		if hints != nil {
			if err := hints.SaveHint(ctx, card.Key, q.Price.InexactFloat64(), now); err != nil {
				v.logger.Warn("Failed to store price hint", "card", card.Name, "error", err)
			}
		}
	}

	cmp.OldTotalValue = oldTotal.Round(2).InexactFloat64()
	cmp.NewTotalValue = newTotal.Round(2).InexactFloat64()
	cmp.ValueDifference = newTotal.Sub(oldTotal).Round(2).InexactFloat64()
	return cmp, nil
}

// hint returns the stored hint for card, falling back to the catalog's hint.
func (v *Valuator) hint(ctx context.Context, hints HintStore, card *catalog.Card) decimal.Decimal {
	if hints != nil {
		p, err := hints.GetHint(ctx, card.Key)
		if err != nil {
			v.logger.Warn("Failed to read price hint", "card", card.Name, "error", err)
		} else if p != nil {
			return decimal.NewFromFloat(*p)
		}
	}
	if card.PriceUSD != nil {
		return decimal.NewFromFloat(*card.PriceUSD)
	}
	return decimal.Zero
}
