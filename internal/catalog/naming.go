package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DeckID derives the stable deck id from a deck name.
func DeckID(name string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(name, "_"))
}

// commanderPatterns are tried in order; the first capture wins.
var commanderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(([^)]+)\s+Commander\s+Precon`),
	regexp.MustCompile(`(?i)Commander:\s*([^,)]+)`),
	regexp.MustCompile(`^([^(]+?)\s+\(`),
	regexp.MustCompile(`([^-]+)\s+-\s+`),
}

// ExtractCommander guesses the commander or theme label from a deck name.
// It returns nil when no pattern matches.
func ExtractCommander(deckName string) *string {
	for _, p := range commanderPatterns {
		m := p.FindStringSubmatch(deckName)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return &v
		}
	}
	return nil
}

// seriesYears maps precon series names to their release year.
var seriesYears = map[string]int{
	"Commander Theme Decks":                                  2009,
	"Commander":                                              2011,
	"Commander's Arsenal":                                    2012,
	"Commander 2013":                                         2013,
	"Commander 2014":                                         2014,
	"Commander 2015":                                         2015,
	"Commander 2016":                                         2016,
	"Commander 2017":                                         2017,
	"Commander 2018":                                         2018,
	"Commander 2019":                                         2019,
	"Commander 2020":                                         2020,
	"Ikoria Commander":                                       2020,
	"Zendikar Rising Commander":                              2020,
	"Commander Legends Commander":                            2020,
	"Kaldheim Commander":                                     2021,
	"Commander 2021":                                         2021,
	"Strixhaven Commander":                                   2021,
	"Forgotten Realms Commander":                             2021,
	"Adventures in the Forgotten Realms Commander":           2021,
	"Innistrad: Midnight Hunt Commander":                     2021,
	"Innistrad: Crimson Vow Commander":                       2021,
	"Kamigawa: Neon Dynasty Commander":                       2022,
	"Streets of New Capenna Commander":                       2022,
	"New Capenna Commander":                                  2022,
	"Commander Legends: Battle for Baldur's Gate Commander":  2022,
	"Dominaria United Commander":                             2022,
	"The Brothers' War Commander":                            2022,
	"Phyrexia: All Will Be One Commander":                    2023,
	"March of the Machine Commander":                         2023,
	"Commander Masters":                                      2023,
	"Wilds of Eldraine Commander":                            2023,
	"The Lost Caverns of Ixalan Commander":                   2023,
	"Lost Caverns Commander":                                 2023,
	"Murders at Karlov Manor Commander":                      2024,
	"Outlaws of Thunder Junction Commander":                  2024,
	"Thunder Junction Commander":                             2024,
	"Modern Horizons 3 Commander":                            2024,
	"MH3 Commander":                                          2024,
	"Bloomburrow Commander":                                  2024,
	"Duskmourn: House of Horror Commander":                   2024,
	"Duskmourn Commander":                                    2024,
	"Aetherdrift Commander":                                  2025,
	"Tarkir: Dragonstorm Commander":                          2025,
	"Tarkir Dragonstorm Commander":                           2025,
	"Tarkir: Dragonstorm":                                    2025,
	"Commander Anthology":                                    2017,
	"Commander Anthology Volume II":                          2018,
	"Starter Commander":                                      2022,
	"Starter Commander Decks":                                2022,
	"Warhammer 40,000 Commander":                             2022,
	"Warhammer 40000 Commander":                              2022,
	"The Lord of the Rings: Tales of Middle-Earth Commander": 2023,
	"Lord of the Rings Commander":                            2023,
	"Doctor Who Commander":                                   2023,
	"Fallout Commander":                                      2024,
	"Secret Lair Commander":                                  2021,
}

// seriesByLength lists series names longest first so that specific names
// ("Commander 2019") win over their prefixes ("Commander").
var seriesByLength = func() []string {
	names := make([]string, 0, len(seriesYears))
	for n := range seriesYears {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

var (
	releasedAtPattern = regexp.MustCompile(`^(\d{4})-\d{2}-\d{2}$`)
	commanderYear     = regexp.MustCompile(`(?i)Commander 20(\d{2})`)
	shortCodeYear     = regexp.MustCompile(`\bC(\d{2})\b`)
	anyYear           = regexp.MustCompile(`(20\d{2})`)
)

const (
	minReleaseYear = 2009
	maxReleaseYear = 2030
)

// ReleaseYear infers a deck's release year. It tries the card print date,
// then the known series table against the set and deck names, then the
// "Commander 20xx" and "Cxx" patterns, then any 20xx in either name.
// It returns 0 when nothing matches.
func ReleaseYear(releasedAt, setName, deckName string) int {
	if m := releasedAtPattern.FindStringSubmatch(strings.TrimSpace(releasedAt)); m != nil {
		if y, _ := strconv.Atoi(m[1]); y >= 2011 && y <= maxReleaseYear {
			return y
		}
	}

	for _, name := range []string{setName, deckName} {
		if name == "" {
			continue
		}
		if y, ok := seriesYears[name]; ok {
			return y
		}
		lower := strings.ToLower(name)
		for _, series := range seriesByLength {
			if series == "Commander" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(series)) {
				return seriesYears[series]
			}
		}
	}

	for _, name := range []string{deckName, setName} {
		if m := commanderYear.FindStringSubmatch(name); m != nil {
			y, _ := strconv.Atoi(m[1])
			return 2000 + y
		}
		if m := shortCodeYear.FindStringSubmatch(name); m != nil {
			if y, _ := strconv.Atoi(m[1]); y >= 11 {
				return 2000 + y
			}
		}
		if m := anyYear.FindStringSubmatch(name); m != nil {
			if y, _ := strconv.Atoi(m[1]); y >= minReleaseYear && y <= maxReleaseYear {
				return y
			}
		}
	}

	return 0
}
