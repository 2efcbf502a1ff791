package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrCatalogUnavailable is returned when the underlying dataset cannot be loaded.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrDeckNotFound is returned when a deck id is not present in the catalog.
	ErrDeckNotFound = errors.New("deck not found")
)

// Finish is the printing finish of a card line.
type Finish string

const (
	FinishNonFoil Finish = "nonFoil"
	FinishFoil    Finish = "foil"
)

// ParseFinish maps free text to a Finish, defaulting to non-foil.
func ParseFinish(s string) Finish {
	if strings.EqualFold(strings.TrimSpace(s), string(FinishFoil)) {
		return FinishFoil
	}
	return FinishNonFoil
}

// Card is a card identity with display attributes and an optional price hint.
// PriceUSD is nil when the card is unpriced; it is never used for valuation.
type Card struct {
	Key            string     `json:"id"`
	Name           string     `json:"name"`
	SetCode        string     `json:"setCode,omitempty"`
	SetName        string     `json:"setName,omitempty"`
	ExternalID     string     `json:"scryfallId,omitempty"`
	ManaCost       string     `json:"manaCost,omitempty"`
	CMC            float64    `json:"cmc"`
	TypeLine       string     `json:"type,omitempty"`
	Rarity         string     `json:"rarity,omitempty"`
	ReleasedAt     string     `json:"releasedAt,omitempty"`
	PriceUSD       *float64   `json:"priceUsd"`
	PriceUpdatedAt *time.Time `json:"priceUpdatedAt,omitempty"`
}

// CardKey builds the identity key of a card from its (name, set, external id) triple.
func CardKey(name, setCode, externalID string) string {
	return name + "|" + setCode + "|" + externalID
}

// CardLine is one (card, quantity, finish) entry of a deck.
type CardLine struct {
	Card     *Card
	Quantity int
	Finish   Finish
}

// Deck is a preconstructed deck. It carries no value: totals only exist in
// valuation results.
type Deck struct {
	ID          string
	Name        string
	Format      string
	Commander   *string
	SetName     string
	ReleaseYear int
	PublicURL   string
	Description string
	Lines       []CardLine
}

// CardCount is the sum of line quantities.
func (d *Deck) CardCount() int {
	n := 0
	for _, l := range d.Lines {
		n += l.Quantity
	}
	return n
}

// UniqueCardCount is the number of distinct card identities in the deck.
func (d *Deck) UniqueCardCount() int {
	seen := make(map[string]struct{}, len(d.Lines))
	for _, l := range d.Lines {
		seen[l.Card.Key] = struct{}{}
	}
	return len(seen)
}

// IsPrecon reports whether the deck name marks it as a preconstructed product.
func (d *Deck) IsPrecon() bool {
	return strings.Contains(d.Name, "Precon")
}

// Metadata describes a built dataset.
type Metadata struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	TotalDecks         int       `json:"totalDecks"`
	TotalCards         int       `json:"totalCards"`
	TotalProcessedRows int       `json:"totalProcessedRows"`
	Source             string    `json:"source,omitempty"`
}

// Catalog is an immutable, ordered set of decks.
type Catalog struct {
	meta   Metadata
	decks  []*Deck
	byID   map[string]*Deck
	byName map[string]*Deck
}

// New creates a catalog. Decks keep the given order; the first deck wins on
// duplicate ids.
func New(meta Metadata, decks []*Deck) *Catalog {
	c := &Catalog{
		meta:   meta,
		decks:  make([]*Deck, 0, len(decks)),
		byID:   make(map[string]*Deck, len(decks)),
		byName: make(map[string]*Deck, len(decks)),
	}
	for _, d := range decks {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.decks = append(c.decks, d)
		c.byID[d.ID] = d
		if _, ok := c.byName[d.Name]; !ok {
			c.byName[d.Name] = d
		}
	}
	return c
}

// Deck looks a deck up by id, falling back to its exact name.
func (c *Catalog) Deck(id string) (*Deck, bool) {
	if d, ok := c.byID[id]; ok {
		return d, true
	}
	d, ok := c.byName[id]
	return d, ok
}

// Lookup is Deck with an error: ErrDeckNotFound for an unknown id.
func (c *Catalog) Lookup(id string) (*Deck, error) {
	d, ok := c.Deck(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	return d, nil
}

// Decks returns the decks in catalog order.
func (c *Catalog) Decks() []*Deck {
	out := make([]*Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// Len returns the number of decks.
func (c *Catalog) Len() int {
	return len(c.decks)
}

// Metadata returns the dataset metadata.
func (c *Catalog) Metadata() Metadata {
	return c.meta
}

// FormatCount is one bucket of the format distribution.
type FormatCount struct {
	Format string `json:"format"`
	Count  int    `json:"count"`
}

// FormatDistribution counts decks per normalized format, most common first.
func (c *Catalog) FormatDistribution() []FormatCount {
	counts := make(map[string]int)
	for _, d := range c.decks {
		counts[d.Format]++
	}
	out := make([]FormatCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, FormatCount{Format: f, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Format < out[j].Format
	})
	return out
}
