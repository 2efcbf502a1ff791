package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	want := New(Metadata{}, []*Deck{{ID: "a", Name: "A"}})
	h := NewHandle(func(context.Context) (*Catalog, error) {
		calls.Add(1)
		return want, nil
	}, nil)

	assert.False(t, h.Loaded())
	for i := 0; i < 3; i++ {
		got, err := h.Get(context.Background())
		require.NoError(t, err)
		assert.Same(t, want, got)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, h.Loaded())
}

func TestHandle_FailureNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	h := NewHandle(func(context.Context) (*Catalog, error) {
		if fail.Load() {
			return nil, errors.New("disk gone")
		}
		return New(Metadata{}, nil), nil
	}, nil)

	_, err := h.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	fail.Store(false)
	_, err = h.Get(context.Background())
	assert.NoError(t, err)
}

func TestHandle_ReloadKeepsOldOnFailure(t *testing.T) {
	first := New(Metadata{}, []*Deck{{ID: "a"}})
	var fail atomic.Bool
	h := NewHandle(func(context.Context) (*Catalog, error) {
		if fail.Load() {
			return nil, errors.New("bad file")
		}
		return first, nil
	}, nil)

	_, err := h.Get(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	assert.Error(t, h.Reload(context.Background()))

	got, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestFileLoader_Missing(t *testing.T) {
	h := NewHandle(FileLoader(filepath.Join(t.TempDir(), "missing.json")), nil)
	_, err := h.Get(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	writeDataset(t, path, New(Metadata{}, []*Deck{{ID: "a", Name: "A"}}))

	h := NewHandle(FileLoader(path), nil)
	c, err := h.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(h, WatcherConfig{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		OnReload: func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeDataset(t, path, New(Metadata{}, []*Deck{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload the dataset")
	}

	c, err = h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	cancel()
	assert.NoError(t, <-done)
}

func writeDataset(t *testing.T, path string, c *Catalog) {
	t.Helper()
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	require.NoError(t, err)
	require.NoError(t, Encode(f, c))
	require.NoError(t, f.Close())
	require.NoError(t, os.Rename(tmp, path))
}
