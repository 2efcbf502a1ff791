package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
)

// PriceResolver resolves a card reference to a quote.
type PriceResolver interface {
	Resolve(ctx context.Context, ref CardRef, spacing time.Duration) Quote
}

// LineBreakdown is one priced card line.
type LineBreakdown struct {
	Name       string         `json:"name"`
	SetCode    string         `json:"setCode,omitempty"`
	SetName    string         `json:"setName,omitempty"`
	Quantity   int            `json:"quantity"`
	Finish     catalog.Finish `json:"finish"`
	UnitPrice  float64        `json:"priceUsd"`
	LineTotal  float64        `json:"totalPrice"`
	ManaCost   string         `json:"manaCost,omitempty"`
	CMC        float64        `json:"cmc"`
	TypeLine   string         `json:"type,omitempty"`
	Rarity     string         `json:"rarity,omitempty"`
	ExternalID string         `json:"scryfallId,omitempty"`
	CardKey    string         `json:"cardId"`
	Status     Status         `json:"priceStatus"`
	PriceFrom  string         `json:"priceSource,omitempty"`
}

// ValuationResult is the live value of one deck.
type ValuationResult struct {
	DeckID      string          `json:"deckId"`
	TotalValue  float64         `json:"totalValue"`
	Lines       []LineBreakdown `json:"cards"`
	Priced      int             `json:"pricedCards"`
	NotFound    int             `json:"notFoundCards"`
	Unavailable int             `json:"unavailableCards"`
	ValuedAt    time.Time       `json:"valuedAt"`
}

// LineFunc is called after each line is priced with the running line count.
type LineFunc func(done int, line LineBreakdown)

// Valuator prices decks line by line through a PriceResolver.
type Valuator struct {
	resolver PriceResolver
	logger   *slog.Logger
}

// NewValuator creates a valuator.
func NewValuator(resolver PriceResolver, logger *slog.Logger) *Valuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Valuator{resolver: resolver, logger: logger}
}

// ValuateDeck resolves every line of deck in list order and sums the totals.
// Lines that cannot be priced stay in the breakdown at zero. Stored price
// hints on the cards are never read. The breakdown is sorted by line total,
// highest first, keeping list order for ties. Only context cancellation
// aborts a deck.
func (v *Valuator) ValuateDeck(ctx context.Context, deck *catalog.Deck, spacing time.Duration, onLine LineFunc) (*ValuationResult, error) {
	res := &ValuationResult{
		DeckID: deck.ID,
		Lines:  make([]LineBreakdown, 0, len(deck.Lines)),
	}
	total := decimal.Zero

	for i, line := range deck.Lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("valuation of deck %s interrupted: %w", deck.ID, err)
		}

		card := line.Card
		q := v.resolver.Resolve(ctx, CardRef{
			Name:       card.Name,
			SetCode:    card.SetCode,
			ExternalID: card.ExternalID,
		}, spacing)

		if !q.Priced() {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("valuation of deck %s interrupted: %w", deck.ID, err)
			}
		}

		unit := q.Value()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)

		switch q.Status {
		case StatusPriced:
			res.Priced++
		case StatusNotFound:
			res.NotFound++
		default:
			res.Unavailable++
		}

		b := LineBreakdown{
			Name:       card.Name,
			SetCode:    card.SetCode,
			SetName:    card.SetName,
			Quantity:   line.Quantity,
			Finish:     line.Finish,
			UnitPrice:  unit.Round(2).InexactFloat64(),
			LineTotal:  lineTotal.Round(2).InexactFloat64(),
			ManaCost:   card.ManaCost,
			CMC:        card.CMC,
			TypeLine:   card.TypeLine,
			Rarity:     card.Rarity,
			ExternalID: card.ExternalID,
			CardKey:    card.Key,
			Status:     q.Status,
			PriceFrom:  q.Source,
		}
		res.Lines = append(res.Lines, b)

		if onLine != nil {
			onLine(i+1, b)
		}
	}

	sort.SliceStable(res.Lines, func(i, j int) bool {
		return res.Lines[i].LineTotal > res.Lines[j].LineTotal
	})

	res.TotalValue = total.Round(2).InexactFloat64()
	res.ValuedAt = time.Now().UTC()

	v.logger.Debug("Deck valued",
		"deck", deck.ID,
		"total", res.TotalValue,
		"priced", res.Priced,
		"not_found", res.NotFound,
		"unavailable", res.Unavailable,
	)

	return res, nil
}
