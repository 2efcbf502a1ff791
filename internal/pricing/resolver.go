package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
	"github.com/ramonehamilton/precon-analyzer/internal/scryfall"
)

// CardRef identifies a card for a price lookup.
type CardRef struct {
	Name       string
	SetCode    string
	ExternalID string
}

// CardFetcher is the subset of the Scryfall client used by the resolver.
type CardFetcher interface {
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
	GetCardByName(ctx context.Context, name, setCode string) (*scryfall.Card, error)
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	Fetcher CardFetcher
	Pacer   *Pacer
	Metrics *metrics.PricingMetrics
	Logger  *slog.Logger
}

// Resolver turns card identities into price quotes. Each call is paced and
// issues exactly one external request; there is no retry and no caching.
type Resolver struct {
	fetcher CardFetcher
	pacer   *Pacer
	metrics *metrics.PricingMetrics
	logger  *slog.Logger
}

// NewResolver creates a resolver. A nil Pacer gets a private default pacer.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Pacer == nil {
		cfg.Pacer = NewPacer(DefaultSlot)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		fetcher: cfg.Fetcher,
		pacer:   cfg.Pacer,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Resolve looks up the current price of ref. An external id is authoritative;
// otherwise the exact name, narrowed by set code when present, is used.
func (r *Resolver) Resolve(ctx context.Context, ref CardRef, spacing time.Duration) Quote {
	if err := r.pacer.Pace(ctx, spacing); err != nil {
		return Quote{Status: StatusUnavailable, Err: err}
	}

	start := time.Now()
	var (
		card *scryfall.Card
		err  error
	)
	if ref.ExternalID != "" {
		card, err = r.fetcher.GetCard(ctx, ref.ExternalID)
	} else {
		card, err = r.fetcher.GetCardByName(ctx, ref.Name, ref.SetCode)
	}

	q := r.classify(ref, card, err)
	r.metrics.RecordLookup(q.Status.metricOutcome(), time.Since(start))
	return q
}

func (r *Resolver) classify(ref CardRef, card *scryfall.Card, err error) Quote {
	switch {
	case err == nil:
	case scryfall.IsNotFound(err):
		r.logger.Info("Card not found", "card", ref.Name, "set", ref.SetCode, "id", ref.ExternalID)
		return Quote{Status: StatusNotFound, Err: err}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.logger.Debug("Price lookup cancelled", "card", ref.Name, "error", err)
		return Quote{Status: StatusUnavailable, Err: err}
	default:
		r.logger.Warn("Price lookup failed", "card", ref.Name, "set", ref.SetCode, "id", ref.ExternalID, "error", err)
		return Quote{Status: StatusUnavailable, Err: err}
	}

	if card == nil {
		return Quote{Status: StatusNotFound}
	}

	price, source, ok := ExtractPrice(card.Prices)
	if !ok {
		r.logger.Debug("Card has no usable price", "card", ref.Name, "set", ref.SetCode)
		return Quote{Status: StatusNotFound, Card: card}
	}

	return Quote{Status: StatusPriced, Price: price, Source: source, Card: card}
}
