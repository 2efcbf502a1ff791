package catalog

import (
	"strings"
	"time"
)

const unknownSet = "Unknown Set"

// Build groups rows into decks in order of first appearance. Rows without a
// deck name or card name are skipped. Cards sharing an identity key are shared
// between decks.
func Build(rows []Row, source string) *Catalog {
	var (
		decks     []*Deck
		byName    = make(map[string]*Deck)
		cards     = make(map[string]*Card)
		processed int
	)

	for _, row := range rows {
		if !row.Valid() {
			continue
		}
		deckName := strings.TrimSpace(row.Name)

		deck, ok := byName[deckName]
		if !ok {
			setName := row.Info.SetName
			if setName == "" {
				setName = unknownSet
			}
			deck = &Deck{
				ID:          DeckID(deckName),
				Name:        deckName,
				Format:      NormalizeFormat(row.Format),
				Commander:   ExtractCommander(deckName),
				SetName:     setName,
				ReleaseYear: ReleaseYear(row.Info.ReleasedAt, setName, deckName),
				PublicURL:   row.PublicURL,
				Description: row.Description,
			}
			byName[deckName] = deck
			decks = append(decks, deck)
		}

		info := row.Info
		key := CardKey(strings.TrimSpace(info.Name), info.Set, info.ScryfallID)
		card, ok := cards[key]
		if !ok {
			card = &Card{
				Key:        key,
				Name:       strings.TrimSpace(info.Name),
				SetCode:    info.Set,
				SetName:    info.SetName,
				ExternalID: info.ScryfallID,
				ManaCost:   info.ManaCost,
				CMC:        float64(info.CMC),
				TypeLine:   info.TypeLine,
				Rarity:     info.Rarity,
				ReleasedAt: info.ReleasedAt,
				PriceUSD:   ParsePriceHint(info.Prices),
			}
			cards[key] = card
		}

		deck.Lines = append(deck.Lines, CardLine{
			Card:     card,
			Quantity: row.Qty(),
			Finish:   ParseFinish(row.Finish),
		})
		processed++
	}

	return New(Metadata{
		GeneratedAt:        time.Now().UTC(),
		TotalDecks:         len(decks),
		TotalCards:         len(cards),
		TotalProcessedRows: processed,
		Source:             source,
	}, decks)
}
