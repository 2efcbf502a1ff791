package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Loader produces a catalog snapshot.
type Loader func(ctx context.Context) (*Catalog, error)

// FileLoader loads a JSON dataset from path.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (*Catalog, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadFile(path)
	}
}

// Handle owns the process catalog. The first Get loads it; later calls return
// the same snapshot until Reload swaps in a new one. Failed loads are not
// cached, so the next Get retries.
type Handle struct {
	load   Loader
	logger *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[Catalog]
}

// NewHandle creates a lazily loaded catalog handle.
func NewHandle(load Loader, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{load: load, logger: logger}
}

// Static wraps an already built catalog.
func Static(c *Catalog) *Handle {
	h := &Handle{
		load:   func(context.Context) (*Catalog, error) { return c, nil },
		logger: slog.Default(),
	}
	h.current.Store(c)
	return h
}

// Get returns the current snapshot, loading it on first use.
func (h *Handle) Get(ctx context.Context) (*Catalog, error) {
	if c := h.current.Load(); c != nil {
		return c, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c := h.current.Load(); c != nil {
		return c, nil
	}

	c, err := h.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	h.current.Store(c)
	h.logger.Info("Catalog loaded", "decks", c.Len(), "cards", c.Metadata().TotalCards)
	return c, nil
}

// Reload loads a fresh snapshot and swaps it in. On failure the previous
// snapshot stays in place. Callers holding the old snapshot keep using it.
func (h *Handle) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	h.current.Store(c)
	h.logger.Info("Catalog reloaded", "decks", c.Len())
	return nil
}

// Loaded reports whether a snapshot is available without loading one.
func (h *Handle) Loaded() bool {
	return h.current.Load() != nil
}
