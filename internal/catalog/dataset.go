package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Dataset is the on-disk form of a catalog written by the build step.
type Dataset struct {
	Metadata Metadata      `json:"metadata"`
	Decks    []DatasetDeck `json:"decks"`
	Cards    []*Card       `json:"cards"`
}

// DatasetDeck is a deck with its lines referencing cards by key.
type DatasetDeck struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Format          string        `json:"format"`
	Commander       *string       `json:"commander"`
	SetName         string        `json:"setName"`
	ReleaseYear     int           `json:"releaseYear"`
	PublicURL       string        `json:"publicUrl,omitempty"`
	Description     string        `json:"description,omitempty"`
	CardCount       int           `json:"cardCount"`
	UniqueCardCount int           `json:"uniqueCardCount"`
	Cards           []DatasetLine `json:"cards"`
}

// DatasetLine is one card line in a DatasetDeck.
type DatasetLine struct {
	CardID   string `json:"cardId"`
	Quantity int    `json:"quantity"`
	Finish   Finish `json:"finish"`
}

// Dataset converts the catalog into its serializable form.
func (c *Catalog) Dataset() *Dataset {
	ds := &Dataset{Metadata: c.meta}
	seen := make(map[string]struct{})

	for _, d := range c.decks {
		dd := DatasetDeck{
			ID:              d.ID,
			Name:            d.Name,
			Format:          d.Format,
			Commander:       d.Commander,
			SetName:         d.SetName,
			ReleaseYear:     d.ReleaseYear,
			PublicURL:       d.PublicURL,
			Description:     d.Description,
			CardCount:       d.CardCount(),
			UniqueCardCount: d.UniqueCardCount(),
			Cards:           make([]DatasetLine, 0, len(d.Lines)),
		}
		for _, l := range d.Lines {
			dd.Cards = append(dd.Cards, DatasetLine{CardID: l.Card.Key, Quantity: l.Quantity, Finish: l.Finish})
			if _, ok := seen[l.Card.Key]; !ok {
				seen[l.Card.Key] = struct{}{}
				ds.Cards = append(ds.Cards, l.Card)
			}
		}
		ds.Decks = append(ds.Decks, dd)
	}

	return ds
}

// FromDataset rebuilds a catalog. Lines referencing unknown cards fail the load.
func FromDataset(ds *Dataset) (*Catalog, error) {
	cards := make(map[string]*Card, len(ds.Cards))
	for _, c := range ds.Cards {
		if c == nil || c.Name == "" {
			continue
		}
		if c.Key == "" {
			c.Key = CardKey(c.Name, c.SetCode, c.ExternalID)
		}
		cards[c.Key] = c
	}

	decks := make([]*Deck, 0, len(ds.Decks))
	for _, dd := range ds.Decks {
		id := dd.ID
		if id == "" {
			id = DeckID(dd.Name)
		}
		d := &Deck{
			ID:          id,
			Name:        dd.Name,
			Format:      NormalizeFormat(dd.Format),
			Commander:   dd.Commander,
			SetName:     dd.SetName,
			ReleaseYear: dd.ReleaseYear,
			PublicURL:   dd.PublicURL,
			Description: dd.Description,
			Lines:       make([]CardLine, 0, len(dd.Cards)),
		}
		for _, l := range dd.Cards {
			card, ok := cards[l.CardID]
			if !ok {
				return nil, fmt.Errorf("deck %s references unknown card %q", id, l.CardID)
			}
			qty := l.Quantity
			if qty < 1 {
				qty = 1
			}
			finish := l.Finish
			if finish != FinishFoil {
				finish = FinishNonFoil
			}
			d.Lines = append(d.Lines, CardLine{Card: card, Quantity: qty, Finish: finish})
		}
		decks = append(decks, d)
	}

	return New(ds.Metadata, decks), nil
}

// Decode reads a JSON dataset.
func Decode(r io.Reader) (*Catalog, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return FromDataset(&ds)
}

// Encode writes the catalog as an indented JSON dataset.
func Encode(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Dataset()); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// LoadFile reads a JSON dataset from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}
