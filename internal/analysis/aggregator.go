package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
)

// ErrEmptySelection is returned when a valuation is requested without decks.
var ErrEmptySelection = errors.New("no decks selected")

// DefaultSpacing is the pacing used for batch valuations.
const DefaultSpacing = 100 * time.Millisecond

// CatalogSource provides the catalog snapshot a job runs against.
type CatalogSource interface {
	Get(ctx context.Context) (*catalog.Catalog, error)
}

// DeckValuer values a single deck.
type DeckValuer interface {
	ValuateDeck(ctx context.Context, deck *catalog.Deck, spacing time.Duration, onLine pricing.LineFunc) (*pricing.ValuationResult, error)
}

// Observer is notified after every job state change.
type Observer interface {
	JobChanged(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Progress)

// JobChanged implements Observer.
func (f ObserverFunc) JobChanged(p Progress) { f(p) }

// Config configures an Aggregator.
type Config struct {
	Valuator DeckValuer
	Catalog  CatalogSource
	Spacing  time.Duration
	Metrics  *metrics.PricingMetrics
	Logger   *slog.Logger
}

// Aggregator runs batch valuations. Each job runs in its own goroutine and
// prices decks and lines strictly in order.
type Aggregator struct {
	valuator DeckValuer
	catalog  CatalogSource
	spacing  time.Duration
	metrics  *metrics.PricingMetrics
	logger   *slog.Logger
	registry *Registry

	obsMu     sync.RWMutex
	observers []Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAggregator creates an aggregator. Jobs are cancelled only by Shutdown.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Spacing <= 0 {
		cfg.Spacing = DefaultSpacing
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Aggregator{
		valuator: cfg.Valuator,
		catalog:  cfg.Catalog,
		spacing:  cfg.Spacing,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe registers an observer for job changes.
func (a *Aggregator) Subscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// StartRequest selects the decks to value. Catalog overrides the default
// catalog, e.g. for decks parsed from an uploaded CSV.
type StartRequest struct {
	DeckIDs []string
	Catalog CatalogSource
}

// Start validates the selection, registers a pending job and runs it in the
// background. It never blocks on pricing.
func (a *Aggregator) Start(req StartRequest) (*Job, error) {
	ids := make([]string, 0, len(req.DeckIDs))
	for _, id := range req.DeckIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	src := req.Catalog
	if src == nil {
		src = a.catalog
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no catalog configured", catalog.ErrCatalogUnavailable)
	}

	job := newJob(uuid.NewString(), ids)
	a.registry.add(job)
	a.notify(job)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.run(a.ctx, job, src)
	}()

	a.logger.Info("Valuation job started", "job", job.ID(), "decks", len(ids))
	return job, nil
}

func (a *Aggregator) run(ctx context.Context, job *Job, src CatalogSource) {
	a.metrics.JobStarted()
	start := time.Now()

	cat, err := src.Get(ctx)
	if err != nil {
		a.failJob(job, fmt.Errorf("failed to load catalog: %w", err))
		return
	}

	decks := a.selectDecks(job, cat)
	total := 0
	for _, d := range decks {
		total += len(d.Lines)
	}
	if err := job.begin(total); err != nil {
		a.logger.Error("Job could not start", "job", job.ID(), "error", err)
		return
	}
	a.notify(job)

	vals := make([]DeckValuation, 0, len(decks))
	for _, deck := range decks {
		res, err := a.valuator.ValuateDeck(ctx, deck, a.spacing, func(_ int, line pricing.LineBreakdown) {
			if err := job.advance(deck.Name + ": " + line.Name); err != nil {
				a.logger.Warn("Progress update rejected", "job", job.ID(), "error", err)
				return
			}
			a.notify(job)
		})
		if err != nil {
			a.failJob(job, err)
			return
		}
		vals = append(vals, DeckValuation{Deck: deck, Result: res})
	}

	published, err := a.registry.finish(job, NewReport(job.ID(), vals))
	if err != nil {
		a.failJob(job, err)
		return
	}
	a.metrics.JobFinished(string(StatusCompleted))
	a.notify(job)

	a.logger.Info("Valuation job completed",
		"job", job.ID(),
		"decks", len(vals),
		"published", published,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// selectDecks resolves requested ids in order, skipping unknown ids and
// repeated decks.
func (a *Aggregator) selectDecks(job *Job, cat *catalog.Catalog) []*catalog.Deck {
	var (
		decks []*catalog.Deck
		seen  = make(map[string]struct{})
	)
	for _, id := range job.DeckIDs() {
		d, err := cat.Lookup(id)
		if err != nil {
			a.logger.Info("Skipping unknown deck", "job", job.ID(), "error", err)
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		decks = append(decks, d)
	}
	return decks
}

func (a *Aggregator) failJob(job *Job, cause error) {
	if err := job.fail(cause); err != nil {
		return
	}
	a.metrics.JobFinished(string(StatusFailed))
	a.notify(job)
	a.logger.Error("Valuation job failed", "job", job.ID(), "error", cause)
}

func (a *Aggregator) notify(job *Job) {
	a.obsMu.RLock()
	obs := a.observers
	a.obsMu.RUnlock()
	if len(obs) == 0 {
		return
	}
	p := job.Progress()
	for _, o := range obs {
		o.JobChanged(p)
	}
}

// Job returns a registered job.
func (a *Aggregator) Job(id string) (*Job, error) {
	return a.registry.Job(id)
}

// Latest returns the current results, or nil before any job completed.
func (a *Aggregator) Latest() *Report {
	return a.registry.Latest()
}

// Reset clears jobs and results. Running jobs keep running.
func (a *Aggregator) Reset() {
	a.registry.Reset()
	a.logger.Info("Analysis state reset")
}

// Shutdown cancels running jobs and waits for them to finish.
func (a *Aggregator) Shutdown(ctx context.Context) error {
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
