package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) *Catalog {
	t.Helper()
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return Build(rows, "sample.csv")
}

func TestBuild(t *testing.T) {
	c := buildSample(t)

	require.Equal(t, 2, c.Len())
	meta := c.Metadata()
	assert.Equal(t, 2, meta.TotalDecks)
	assert.Equal(t, 2, meta.TotalCards)
	assert.Equal(t, 3, meta.TotalProcessedRows)
	assert.Equal(t, "sample.csv", meta.Source)

	decks := c.Decks()
	one := decks[0]
	assert.Equal(t, "deck_one__bloomburrow_commander_precon_decklist_", one.ID)
	assert.Equal(t, "commander", one.Format)
	require.NotNil(t, one.Commander)
	assert.Equal(t, "Bloomburrow", *one.Commander)
	assert.Equal(t, 2024, one.ReleaseYear)
	assert.Equal(t, "https://example.test/1", one.PublicURL)
	assert.Equal(t, 11, one.CardCount())
	assert.Equal(t, 2, one.UniqueCardCount())
	assert.True(t, one.IsPrecon())

	two := decks[1]
	require.Len(t, two.Lines, 1)
	assert.Equal(t, FinishFoil, two.Lines[0].Finish)
	assert.Same(t, one.Lines[0].Card, two.Lines[0].Card, "identical cards are shared")

	require.NotNil(t, one.Lines[0].Card.PriceUSD)
	assert.InDelta(t, 1.5, *one.Lines[0].Card.PriceUSD, 1e-9)
}

func TestCatalog_DeckLookup(t *testing.T) {
	c := buildSample(t)

	d, ok := c.Deck("deck_one__bloomburrow_commander_precon_decklist_")
	require.True(t, ok)
	assert.Equal(t, "Deck One (Bloomburrow Commander Precon Decklist)", d.Name)

	byName, ok := c.Deck("Deck Two (Duskmourn Commander Precon Decklist)")
	require.True(t, ok)
	assert.Equal(t, DeckID(byName.Name), byName.ID)

	_, ok = c.Deck("missing")
	assert.False(t, ok)
}

func TestCatalog_Lookup(t *testing.T) {
	c := buildSample(t)

	d, err := c.Lookup("deck_one__bloomburrow_commander_precon_decklist_")
	require.NoError(t, err)
	assert.Equal(t, "Deck One (Bloomburrow Commander Precon Decklist)", d.Name)

	_, err = c.Lookup("missing")
	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestCatalog_FormatDistribution(t *testing.T) {
	c := New(Metadata{}, []*Deck{
		{ID: "a", Format: "commander"},
		{ID: "b", Format: "modern"},
		{ID: "c", Format: "commander"},
		{ID: "a", Format: "legacy"},
	})

	assert.Equal(t, 3, c.Len(), "duplicate ids are dropped")
	assert.Equal(t, []FormatCount{{"commander", 2}, {"modern", 1}}, c.FormatDistribution())
}

func TestDataset_RoundTrip(t *testing.T) {
	c := buildSample(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c))

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, c.Len(), loaded.Len())

	orig := c.Decks()
	for i, d := range loaded.Decks() {
		assert.Equal(t, orig[i].ID, d.ID)
		assert.Equal(t, orig[i].CardCount(), d.CardCount())
		assert.Equal(t, orig[i].UniqueCardCount(), d.UniqueCardCount())
	}
}

func TestFromDataset_UnknownCard(t *testing.T) {
	_, err := FromDataset(&Dataset{
		Decks: []DatasetDeck{{ID: "d", Name: "D", Cards: []DatasetLine{{CardID: "nope", Quantity: 1}}}},
	})
	assert.Error(t, err)
}
