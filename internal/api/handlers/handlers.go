// Package handlers implements the HTTP API handlers.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
)

// Analyzer starts and tracks valuation jobs.
type Analyzer interface {
	Start(req analysis.StartRequest) (*analysis.Job, error)
	Job(id string) (*analysis.Job, error)
	Latest() *analysis.Report
	Reset()
}

// DeckPricer prices single decks on demand.
type DeckPricer interface {
	ValuateDeck(ctx context.Context, deck *catalog.Deck, spacing time.Duration, onLine pricing.LineFunc) (*pricing.ValuationResult, error)
	ComparePrices(ctx context.Context, deck *catalog.Deck, spacing time.Duration, hints pricing.HintStore) (*pricing.PriceComparison, error)
}

// HistoryStore lists recorded jobs.
type HistoryStore interface {
	RecentJobs(ctx context.Context, limit int) ([]*models.AnalysisJob, error)
}

// parseLimit reads the "limit" query parameter. Missing means def; values
// above max are capped.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// parsePrice reads an optional non-negative price query parameter.
func parsePrice(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}
