// Package export writes valuation reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
)

// Sheet names.
const (
	SheetRankings = "Rankings"
	SheetStats    = "Stats"
	SheetCards    = "Cards"
)

// Number format id 4 is "#,##0.00".
const moneyFormat = 4

var (
	rankingHeader = []any{"Rank", "Deck", "Format", "Commander", "Set", "Year", "Cards", "Unique Cards", "Total Value (USD)"}
	cardHeader    = []any{"Deck", "Card", "Set", "Quantity", "Finish", "Unit Price (USD)", "Line Total (USD)", "Status", "Source"}
)

// WriteReport writes rankings, stats and per-card breakdowns for rep as an
// xlsx workbook.
func WriteReport(w io.Writer, rep *analysis.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetRankings); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetStats, SheetCards} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeRankings(f, styles, rep.Rankings(0)); err != nil {
		return err
	}
	if err := writeStats(f, styles, rep); err != nil {
		return err
	}
	if err := writeCards(f, styles, rep.Valuations()); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type styles struct {
	header int
	money  int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create money style: %w", err)
	}
	return styles{header: header, money: money}, nil
}

func writeHeader(f *excelize.File, st styles, sheet string, header []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, st.header)
}

func writeRankings(f *excelize.File, st styles, rankings []analysis.RankingEntry) error {
	if err := writeHeader(f, st, SheetRankings, rankingHeader); err != nil {
		return err
	}

	for i, r := range rankings {
		commander := ""
		if r.Deck.Commander != nil {
			commander = *r.Deck.Commander
		}
		row := []any{
			r.Rank, r.Deck.Name, r.Deck.Format, commander, r.Deck.SetName,
			r.Deck.ReleaseYear, r.CardCount, r.Deck.UniqueCardCount, r.TotalValue,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetRankings, cell, &row); err != nil {
			return fmt.Errorf("failed to write ranking %d: %w", r.Rank, err)
		}
	}

	if len(rankings) > 0 {
		end := fmt.Sprintf("I%d", len(rankings)+1)
		if err := f.SetCellStyle(SheetRankings, "I2", end, st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetRankings, "B", "B", 40)
}

func writeStats(f *excelize.File, st styles, rep *analysis.Report) error {
	stats := rep.Stats()
	rows := [][]any{
		{"Metric", "Value"},
		{"Job", rep.JobID},
		{"Completed At", rep.CompletedAt.Format(time.RFC3339)},
		{"Total Decks", stats.TotalDecks},
		{"Unique Cards", stats.UniqueCards},
		{"Average Value (USD)", stats.AvgPrice},
		{"Highest Value (USD)", stats.HighestValue},
		{"Lowest Value (USD)", stats.LowestValue},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(SheetStats, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write stats: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetStats, "A1", "B1", st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetStats, "B6", "B8", st.money); err != nil {
		return err
	}
	return f.SetColWidth(SheetStats, "A", "B", 24)
}

func writeCards(f *excelize.File, st styles, vals []analysis.DeckValuation) error {
	if err := writeHeader(f, st, SheetCards, cardHeader); err != nil {
		return err
	}

	n := 2
	for _, v := range vals {
		if v.Result == nil {
			continue
		}
		for _, line := range v.Result.Lines {
			row := []any{
				v.Deck.Name, line.Name, line.SetCode, line.Quantity, string(line.Finish),
				line.UnitPrice, line.LineTotal, string(line.Status), line.PriceFrom,
			}
			if err := f.SetSheetRow(SheetCards, fmt.Sprintf("A%d", n), &row); err != nil {
				return fmt.Errorf("failed to write card row: %w", err)
			}
			n++
		}
	}

	if n > 2 {
		if err := f.SetCellStyle(SheetCards, "F2", fmt.Sprintf("G%d", n-1), st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetCards, "A", "B", 32)
}
