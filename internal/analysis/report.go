package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
)

// DeckValuation pairs a deck with its live valuation.
type DeckValuation struct {
	Deck   *catalog.Deck
	Result *pricing.ValuationResult
}

// TotalValue returns the valued total, or zero when the deck was not valued.
func (v DeckValuation) TotalValue() float64 {
	if v.Result == nil {
		return 0
	}
	return v.Result.TotalValue
}

// DeckSummary is the deck shape returned by listing and ranking endpoints.
type DeckSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Format          string  `json:"format"`
	Commander       *string `json:"commander"`
	SetName         string  `json:"setName,omitempty"`
	ReleaseYear     int     `json:"releaseYear,omitempty"`
	CardCount       int     `json:"cardCount"`
	UniqueCardCount int     `json:"uniqueCardCount"`
	TotalValue      float64 `json:"totalValue"`
	PublicURL       string  `json:"publicUrl,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// Summarize builds a DeckSummary with the given total.
func Summarize(d *catalog.Deck, total float64) DeckSummary {
	return DeckSummary{
		ID:              d.ID,
		Name:            d.Name,
		Format:          d.Format,
		Commander:       d.Commander,
		SetName:         d.SetName,
		ReleaseYear:     d.ReleaseYear,
		CardCount:       d.CardCount(),
		UniqueCardCount: d.UniqueCardCount(),
		TotalValue:      total,
		PublicURL:       d.PublicURL,
		Description:     d.Description,
	}
}

// RankingEntry is one ranked deck.
type RankingEntry struct {
	Rank       int         `json:"rank"`
	Deck       DeckSummary `json:"deck"`
	CardCount  int         `json:"cardCount"`
	TotalValue float64     `json:"totalValue"`
}

// Rank orders valuations by total value, highest first. Ties keep input
// order and ranks are 1-based positions. The input is not modified.
func Rank(vals []DeckValuation) []RankingEntry {
	order := make([]DeckValuation, len(vals))
	copy(order, vals)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].TotalValue() > order[j].TotalValue()
	})

	out := make([]RankingEntry, len(order))
	for i, v := range order {
		total := v.TotalValue()
		out[i] = RankingEntry{
			Rank:       i + 1,
			Deck:       Summarize(v.Deck, total),
			CardCount:  v.Deck.CardCount(),
			TotalValue: total,
		}
	}
	return out
}

// Stats summarizes a portfolio. Value statistics only cover decks with a
// positive total; every deck counts towards TotalDecks.
type Stats struct {
	TotalDecks   int     `json:"totalDecks"`
	UniqueCards  int     `json:"uniqueCards"`
	AvgPrice     float64 `json:"avgPrice"`
	HighestValue float64 `json:"highestValue"`
	LowestValue  float64 `json:"lowestValue"`
}

// ComputeStats derives portfolio statistics from valuations.
func ComputeStats(vals []DeckValuation) Stats {
	st := Stats{TotalDecks: len(vals)}

	cards := make(map[string]struct{})
	sum := decimal.Zero
	priced := 0
	for _, v := range vals {
		for _, l := range v.Deck.Lines {
			cards[l.Card.Key] = struct{}{}
		}

		total := v.TotalValue()
		if total <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(total))
		if priced == 0 || total > st.HighestValue {
			st.HighestValue = total
		}
		if priced == 0 || total < st.LowestValue {
			st.LowestValue = total
		}
		priced++
	}
	st.UniqueCards = len(cards)

	if priced > 0 {
		st.AvgPrice = sum.Div(decimal.NewFromInt(int64(priced))).Round(2).InexactFloat64()
	}
	return st
}

// Report is the outcome of one completed job.
type Report struct {
	JobID       string
	CompletedAt time.Time
	valuations  []DeckValuation
}

// NewReport creates a report over vals.
func NewReport(jobID string, vals []DeckValuation) *Report {
	cp := make([]DeckValuation, len(vals))
	copy(cp, vals)
	return &Report{JobID: jobID, CompletedAt: time.Now().UTC(), valuations: cp}
}

// Valuations returns the deck valuations in processing order.
func (r *Report) Valuations() []DeckValuation {
	out := make([]DeckValuation, len(r.valuations))
	copy(out, r.valuations)
	return out
}

// Rankings ranks the report. A limit of zero or less returns every entry.
func (r *Report) Rankings(limit int) []RankingEntry {
	ranked := Rank(r.valuations)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Stats computes the report statistics.
func (r *Report) Stats() Stats {
	return ComputeStats(r.valuations)
}

// Value returns the valued total of a deck in this report.
func (r *Report) Value(deckID string) (float64, bool) {
	for _, v := range r.valuations {
		if v.Deck.ID == deckID {
			return v.TotalValue(), true
		}
	}
	return 0, false
}
