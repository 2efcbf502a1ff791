package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
)

func testReport() *analysis.Report {
	solRing := &catalog.Card{Key: catalog.CardKey("Sol Ring", "c21", ""), Name: "Sol Ring", SetCode: "c21"}
	island := &catalog.Card{Key: catalog.CardKey("Island", "c21", ""), Name: "Island", SetCode: "c21"}

	cheap := &catalog.Deck{ID: "cheap", Name: "Cheap Deck", Format: "commander",
		Lines: []catalog.CardLine{{Card: island, Quantity: 10, Finish: catalog.FinishNonFoil}}}
	pricey := &catalog.Deck{ID: "pricey", Name: "Pricey Deck", Format: "commander",
		Lines: []catalog.CardLine{{Card: solRing, Quantity: 1, Finish: catalog.FinishNonFoil}}}

	return analysis.NewReport("job-x", []analysis.DeckValuation{
		{Deck: cheap, Result: &pricing.ValuationResult{DeckID: "cheap", TotalValue: 1.5, Lines: []pricing.LineBreakdown{
			{Name: "Island", SetCode: "c21", Quantity: 10, UnitPrice: 0.15, LineTotal: 1.5, Status: pricing.StatusPriced},
		}}},
		{Deck: pricey, Result: &pricing.ValuationResult{DeckID: "pricey", TotalValue: 3, Lines: []pricing.LineBreakdown{
			{Name: "Sol Ring", SetCode: "c21", Quantity: 1, UnitPrice: 3, LineTotal: 3, Status: pricing.StatusPriced},
		}}},
	})
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, testReport()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetRankings, SheetStats, SheetCards}, f.GetSheetList())

	rows, err := f.GetRows(SheetRankings)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Pricey Deck", rows[1][1])
	assert.Equal(t, "Cheap Deck", rows[2][1])

	total, err := f.GetCellValue(SheetStats, "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	cards, err := f.GetRows(SheetCards)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
	assert.Equal(t, "Island", cards[1][1])
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, analysis.NewReport("empty", nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetRankings)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
