package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = ` id , name ,format,quantity,finish,publicUrl,description,info.name,info.set,info.set_name,info.scryfall_id,info.mana_cost,info.cmc,info.type_line,info.rarity,info.released_at,info.prices
1,Deck One (Bloomburrow Commander Precon Decklist),commanderPrecons,1,nonFoil,https://example.test/1,First,Sol Ring,blc,Bloomburrow Commander,sol-1,{1},1,Artifact,uncommon,2024-08-02,"{'usd': '1.50'}"
2,Deck One (Bloomburrow Commander Precon Decklist),commanderPrecons,10,nonFoil,,,Forest,blc,Bloomburrow Commander,forest-1,,0,Basic Land - Forest,common,2024-08-02,"{'usd': '0.10'}"
3,Deck Two (Duskmourn Commander Precon Decklist),commanderPrecons,,foil,,,Sol Ring,blc,Bloomburrow Commander,sol-1,{1},1,Artifact,uncommon,2024-08-02,None

4,,commanderPrecons,1,nonFoil,,,Orphan,xxx,,,,,,,,
5,Deck Two (Duskmourn Commander Precon Decklist),commanderPrecons,abc,nonFoil,,,,,,,,,,,,
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Deck One (Bloomburrow Commander Precon Decklist)", first.Name)
	assert.Equal(t, "Sol Ring", first.Info.Name)
	assert.Equal(t, "sol-1", first.Info.ScryfallID)
	assert.Equal(t, Number(1), first.Info.CMC)
	assert.Equal(t, "{'usd': '1.50'}", first.Info.Prices)
	assert.True(t, first.Valid())

	assert.Equal(t, 10, rows[1].Qty())
	assert.Equal(t, 1, rows[2].Qty(), "missing quantity defaults to 1")
	assert.False(t, rows[3].Valid(), "row without deck name")
	assert.False(t, rows[4].Valid(), "row without card name")
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRow_JSONNumbers(t *testing.T) {
	var rows []Row
	body := `[
		{"name":"D","quantity":"3","info":{"name":"A","cmc":"2.0"}},
		{"name":"D","quantity":2,"info":{"name":"B","cmc":null}},
		{"name":"D","quantity":"x","info":{"name":"C"}}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &rows))

	assert.Equal(t, 3, rows[0].Qty())
	assert.Equal(t, Number(2), rows[0].Info.CMC)
	assert.Equal(t, 2, rows[1].Qty())
	assert.Equal(t, 1, rows[2].Qty())
}
