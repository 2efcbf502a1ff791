package pricing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
	"github.com/ramonehamilton/precon-analyzer/internal/scryfall"
	"github.com/ramonehamilton/precon-analyzer/internal/scryfall/scryfalltest"
)

const testSpacing = time.Millisecond

func newTestResolver(t *testing.T, srv *scryfalltest.Server, m *metrics.PricingMetrics) *Resolver {
	t.Helper()
	return NewResolver(ResolverConfig{
		Fetcher: scryfall.NewClient(scryfall.Config{BaseURL: srv.URL}),
		Pacer:   NewPacer(time.Millisecond),
		Metrics: m,
	})
}

func TestResolver_Resolve(t *testing.T) {
	srv := scryfalltest.NewServer()
	defer srv.Close()

	srv.Price("Sol Ring", "c21", "1.25")
	srv.FoilPrice("Shiny Thing", "", "7.50")
	srv.Price("Unpriced Token", "", "")
	srv.PriceByID("abc-123", "42.00")
	srv.Fail("Flaky Card", http.StatusInternalServerError)
	srv.Fail("Throttled Card", http.StatusTooManyRequests)

	tests := []struct {
		name       string
		ref        CardRef
		wantStatus Status
		wantPrice  string
		wantPath   string
	}{
		{name: "by name and set", ref: CardRef{Name: "Sol Ring", SetCode: "C21"}, wantStatus: StatusPriced, wantPrice: "1.25", wantPath: "/cards/named"},
		{name: "by id", ref: CardRef{Name: "Ignored", SetCode: "xxx", ExternalID: "abc-123"}, wantStatus: StatusPriced, wantPrice: "42", wantPath: "/cards/abc-123"},
		{name: "foil fallback", ref: CardRef{Name: "Shiny Thing"}, wantStatus: StatusPriced, wantPrice: "7.5", wantPath: "/cards/named"},
		{name: "no price fields", ref: CardRef{Name: "Unpriced Token"}, wantStatus: StatusNotFound, wantPath: "/cards/named"},
		{name: "unknown card", ref: CardRef{Name: "Nope"}, wantStatus: StatusNotFound, wantPath: "/cards/named"},
		{name: "unknown id", ref: CardRef{Name: "Sol Ring", ExternalID: "missing"}, wantStatus: StatusNotFound, wantPath: "/cards/missing"},
		{name: "server error", ref: CardRef{Name: "Flaky Card"}, wantStatus: StatusUnavailable, wantPath: "/cards/named"},
		{name: "rate limited", ref: CardRef{Name: "Throttled Card"}, wantStatus: StatusUnavailable, wantPath: "/cards/named"},
	}

	r := newTestResolver(t, srv, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(srv.Requests())
			q := r.Resolve(context.Background(), tt.ref, testSpacing)

			assert.Equal(t, tt.wantStatus, q.Status)
			if tt.wantStatus == StatusPriced {
				assert.Equal(t, tt.wantPrice, q.Price.String())
			} else {
				assert.True(t, q.Value().IsZero())
			}

			reqs := srv.Requests()
			require.Len(t, reqs, before+1, "exactly one request, no retry")
			assert.Equal(t, tt.wantPath, reqs[len(reqs)-1].Path)
		})
	}
}

func TestResolver_RecordsMetrics(t *testing.T) {
	srv := scryfalltest.NewServer()
	defer srv.Close()
	srv.Price("A", "", "1")
	srv.Fail("B", http.StatusBadGateway)

	m := metrics.NewPricingMetrics()
	r := newTestResolver(t, srv, m)

	r.Resolve(context.Background(), CardRef{Name: "A"}, testSpacing)
	r.Resolve(context.Background(), CardRef{Name: "B"}, testSpacing)
	r.Resolve(context.Background(), CardRef{Name: "C"}, testSpacing)

	stats := m.GetStats()
	assert.Equal(t, uint64(3), stats.Lookups)
	assert.Equal(t, uint64(1), stats.LookupsPriced)
	assert.Equal(t, uint64(1), stats.LookupsUnavailable)
	assert.Equal(t, uint64(1), stats.LookupsNotFound)
}

func TestResolver_PacesCalls(t *testing.T) {
	srv := scryfalltest.NewServer()
	defer srv.Close()
	srv.Price("A", "", "1")

	r := NewResolver(ResolverConfig{
		Fetcher: scryfall.NewClient(scryfall.Config{BaseURL: srv.URL}),
		Pacer:   NewPacer(10 * time.Millisecond),
	})

	const calls = 5
	spacing := 20 * time.Millisecond
	start := time.Now()
	for i := 0; i < calls; i++ {
		r.Resolve(context.Background(), CardRef{Name: "A"}, spacing)
	}
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(calls-1)*spacing)
}

func TestResolver_CancelledBeforeCall(t *testing.T) {
	srv := scryfalltest.NewServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := newTestResolver(t, srv, nil).Resolve(ctx, CardRef{Name: "A"}, testSpacing)
	assert.Equal(t, StatusUnavailable, q.Status)
	assert.ErrorIs(t, q.Err, context.Canceled)
	assert.Empty(t, srv.Requests())
}
