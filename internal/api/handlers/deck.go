package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/api/response"
	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
)

// allFormats is the UI's "no filter" value.
const allFormats = "All Formats"

// DeckHandler handles deck catalog and live pricing requests.
type DeckHandler struct {
	catalog  analysis.CatalogSource
	pricer   DeckPricer
	analyzer Analyzer
	hints    pricing.HintStore
	spacing  time.Duration
	logger   *slog.Logger
}

// DeckHandlerConfig configures a DeckHandler.
type DeckHandlerConfig struct {
	Catalog  analysis.CatalogSource
	Pricer   DeckPricer
	Analyzer Analyzer
	// Hints may be nil; comparisons then fall back to catalog prices.
	Hints pricing.HintStore
	// Spacing between lookups for single-deck pricing.
	Spacing time.Duration
	Logger  *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(cfg DeckHandlerConfig) *DeckHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &DeckHandler{
		catalog:  cfg.Catalog,
		pricer:   cfg.Pricer,
		analyzer: cfg.Analyzer,
		hints:    cfg.Hints,
		spacing:  cfg.Spacing,
		logger:   cfg.Logger,
	}
}

// DeckDetails is a deck with its live card breakdown.
type DeckDetails struct {
	Deck  analysis.DeckSummary    `json:"deck"`
	Cards []pricing.LineBreakdown `json:"cards"`
}

// ParseDecksRequest carries uploaded CSV rows.
type ParseDecksRequest struct {
	CSVData []catalog.Row `json:"csvData"`
}

// GetDecks lists catalog decks, filtered and ordered by current value.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.loadCatalog(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	minPrice, err := parsePrice(r, "minPrice")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	maxPrice, err := parsePrice(r, "maxPrice")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	format := q.Get("format")
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	preconOnly := q.Get("precon") == "true"

	rep := h.analyzer.Latest()
	decks := make([]analysis.DeckSummary, 0, cat.Len())
	for _, d := range cat.Decks() {
		if format != "" && format != allFormats && d.Format != format {
			continue
		}
		if search != "" && !matchesSearch(d, search) {
			continue
		}
		if preconOnly && !d.IsPrecon() {
			continue
		}

		var total float64
		if rep != nil {
			total, _ = rep.Value(d.ID)
		}
		if minPrice != nil && total < *minPrice {
			continue
		}
		if maxPrice != nil && total > *maxPrice {
			continue
		}
		decks = append(decks, analysis.Summarize(d, total))
	}

	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].TotalValue > decks[j].TotalValue
	})
	response.OK(w, decks)
}

func matchesSearch(d *catalog.Deck, term string) bool {
	if strings.Contains(strings.ToLower(d.Name), term) {
		return true
	}
	return d.Commander != nil && strings.Contains(strings.ToLower(*d.Commander), term)
}

// GetFormats returns how many decks each format has.
func (h *DeckHandler) GetFormats(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.loadCatalog(w, r)
	if !ok {
		return
	}
	response.OK(w, cat.FormatDistribution())
}

// GetMetadata describes the loaded dataset.
func (h *DeckHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.loadCatalog(w, r)
	if !ok {
		return
	}
	response.OK(w, cat.Metadata())
}

// GetDeckDetails prices a deck live and returns the card breakdown.
func (h *DeckHandler) GetDeckDetails(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.lookupDeck(w, r)
	if !ok {
		return
	}

	res, err := h.pricer.ValuateDeck(r.Context(), deck, h.spacing, nil)
	if err != nil {
		h.logger.Warn("Deck valuation interrupted", "deck", deck.ID, "error", err)
		response.InternalError(w, "Failed to price deck")
		return
	}

	response.OK(w, DeckDetails{
		Deck:  analysis.Summarize(deck, res.TotalValue),
		Cards: res.Lines,
	})
}

// UpdatePrices refreshes a deck's prices and compares them with the last
// stored prices.
func (h *DeckHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.lookupDeck(w, r)
	if !ok {
		return
	}

	cmp, err := h.pricer.ComparePrices(r.Context(), deck, h.spacing, h.hints)
	if err != nil {
		h.logger.Warn("Price update interrupted", "deck", deck.ID, "error", err)
		response.InternalError(w, "Failed to update prices")
		return
	}
	response.OK(w, cmp)
}

// ParseDecks summarizes the decks in uploaded CSV rows without pricing them.
func (h *DeckHandler) ParseDecks(w http.ResponseWriter, r *http.Request) {
	var req ParseDecksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CSVData == nil {
		response.BadRequest(w, "Invalid CSV data")
		return
	}

	cat := catalog.Build(req.CSVData, "upload")
	decks := make([]analysis.DeckSummary, 0, cat.Len())
	for _, d := range cat.Decks() {
		decks = append(decks, analysis.Summarize(d, 0))
	}
	response.OK(w, decks)
}

func (h *DeckHandler) lookupDeck(w http.ResponseWriter, r *http.Request) (*catalog.Deck, bool) {
	cat, ok := h.loadCatalog(w, r)
	if !ok {
		return nil, false
	}
	deck, err := cat.Lookup(chi.URLParam(r, "deckId"))
	if errors.Is(err, catalog.ErrDeckNotFound) {
		response.NotFound(w, "Deck not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(w, "Failed to load deck")
		return nil, false
	}
	return deck, true
}

func (h *DeckHandler) loadCatalog(w http.ResponseWriter, r *http.Request) (*catalog.Catalog, bool) {
	cat, err := h.catalog.Get(r.Context())
	if err != nil {
		h.logger.Error("Catalog unavailable", "error", err)
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			response.ServiceUnavailable(w, "deck catalog is unavailable")
		} else {
			response.InternalError(w, "Failed to load decks")
		}
		return nil, false
	}
	return cat, true
}
