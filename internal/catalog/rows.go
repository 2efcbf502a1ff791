package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one exported deck-list row: a card line plus its deck's attributes.
// The JSON shape matches the dotted CSV headers (info.name -> info.name).
type Row struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Format      string   `json:"format"`
	Quantity    Number   `json:"quantity"`
	Finish      string   `json:"finish"`
	PublicURL   string   `json:"publicUrl"`
	Description string   `json:"description"`
	Info        CardInfo `json:"info"`
}

// CardInfo holds the card columns of a Row.
type CardInfo struct {
	Name       string `json:"name"`
	Set        string `json:"set"`
	SetName    string `json:"set_name"`
	ScryfallID string `json:"scryfall_id"`
	ManaCost   string `json:"mana_cost"`
	CMC        Number `json:"cmc"`
	TypeLine   string `json:"type_line"`
	Rarity     string `json:"rarity"`
	ReleasedAt string `json:"released_at"`
	Prices     string `json:"prices"`
}

// Number decodes from a JSON number, a numeric string, or null.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Valid reports whether the row names both a deck and a card.
func (r Row) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Info.Name) != ""
}

// Qty returns the line quantity, defaulting to 1 when absent or invalid.
func (r Row) Qty() int {
	q := int(r.Quantity)
	if q < 1 {
		return 1
	}
	return q
}

var errNoHeader = errors.New("csv has no header row")

// ParseCSV reads a header-driven deck export. Headers and values are trimmed;
// rows are returned as-is, validity is decided by the caller.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i)
		}
		cols[h] = i
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if blank(rec) {
			continue
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		rows = append(rows, Row{
			ID:          get("id"),
			Name:        get("name"),
			Format:      get("format"),
			Quantity:    parseNumber(get("quantity")),
			Finish:      get("finish"),
			PublicURL:   get("publicUrl"),
			Description: get("description"),
			Info: CardInfo{
				Name:       get("info.name"),
				Set:        get("info.set"),
				SetName:    get("info.set_name"),
				ScryfallID: get("info.scryfall_id"),
				ManaCost:   get("info.mana_cost"),
				CMC:        parseNumber(get("info.cmc")),
				TypeLine:   get("info.type_line"),
				Rarity:     get("info.rarity"),
				ReleasedAt: get("info.released_at"),
				Prices:     get("info.prices"),
			},
		})
	}

	return rows, nil
}

func parseNumber(s string) Number {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Number(f)
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
