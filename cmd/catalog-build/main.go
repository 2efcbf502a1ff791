// Package main builds the deck catalog JSON dataset from a precon CSV export.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
)

var (
	inPath  = flag.String("in", "", "CSV export of precon deck lists (required)")
	outPath = flag.String("out", "data/precons.json", "Where to write the JSON dataset")
	top     = flag.Int("top", 10, "Number of decks to list in the summary")
)

func main() {
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: catalog-build -in decks.csv [-out data/precons.json]")
		os.Exit(2)
	}

	if err := build(*inPath, *outPath, *top, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-build: %v\n", err)
		os.Exit(1)
	}
}

func build(in, out string, top int, w io.Writer) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", in, err)
	}
	defer f.Close()

	rows, err := catalog.ParseCSV(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", in, err)
	}
	cat := catalog.Build(rows, in)

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := catalog.Encode(dst, cat); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	meta := cat.Metadata()
	fmt.Fprintf(w, "Wrote %s: %d decks, %d cards from %d rows\n", out, meta.TotalDecks, meta.TotalCards, meta.TotalProcessedRows)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Top decks by stored price hints:\n")
	for i, d := range topDecks(cat, top) {
		fmt.Fprintf(w, "%3d. %-50s %-12s $%s\n", i+1, d.name, d.format, d.value.StringFixed(2))
	}
	return nil
}

type deckValue struct {
	name   string
	format string
	value  decimal.Decimal
}

// topDecks ranks decks by the sum of their card price hints. Unpriced cards
// count as zero.
func topDecks(cat *catalog.Catalog, n int) []deckValue {
	out := make([]deckValue, 0, cat.Len())
	for _, d := range cat.Decks() {
		total := decimal.Zero
		for _, l := range d.Lines {
			if l.Card.PriceUSD == nil {
				continue
			}
			total = total.Add(decimal.NewFromFloat(*l.Card.PriceUSD).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		out = append(out, deckValue{name: d.Name, format: d.Format, value: total})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].value.GreaterThan(out[j].value)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
