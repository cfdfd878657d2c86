package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/model"
)

// Cache owns the live Snapshot of every kind.
//
// CONCURRENCY:
//   - Readers call Snapshot, which is a single atomic pointer load. They never
//     take a lock and always get a fully built snapshot.
//   - Initialize and Reload are serialized by mu. They build new snapshots
//     off to the side and publish each one with one atomic store.
//   - A failed load never touches the published pointer, so the previous
//     snapshot stays live.
type Cache struct {
	loader *Loader
	slots  map[model.Kind]*atomic.Pointer[Snapshot] // keys fixed in NewCache
	ready  atomic.Bool
	mu     sync.Mutex
}

// NewCache creates an empty cache for every kind in model.Kinds.
// Nothing is loaded until Initialize.
func NewCache(loader *Loader) *Cache {
	slots := make(map[model.Kind]*atomic.Pointer[Snapshot], len(model.Kinds))
	for _, k := range model.Kinds {
		slots[k] = new(atomic.Pointer[Snapshot])
	}
	return &Cache{loader: loader, slots: slots}
}

// Initialize loads every kind exactly once. If any kind fails, nothing is
// published and the cache stays uninitialized; the process should not serve
// traffic. Calling Initialize again after success is a no-op.
func (c *Cache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready.Load() {
		return nil
	}

	loaded := make(map[model.Kind]*Snapshot, len(c.slots))
	for _, k := range model.Kinds {
		snap, err := c.loader.Load(ctx, k)
		if err != nil {
			return err
		}
		loaded[k] = snap
	}

	for k, snap := range loaded {
		c.slots[k].Store(snap)
	}
	c.ready.Store(true)
	return nil
}

// Initialized reports whether Initialize has completed successfully.
func (c *Cache) Initialized() bool {
	return c.ready.Load()
}

// Snapshot returns the live snapshot of kind.
// It fails with ErrNotInitialized before Initialize has succeeded.
func (c *Cache) Snapshot(kind model.Kind) (*Snapshot, error) {
	if !c.ready.Load() {
		return nil, notInitialized()
	}
	slot, ok := c.slots[kind]
	if !ok {
		return nil, apperror.ValidationFailed("kind", fmt.Sprintf("unknown content kind %q", kind))
	}
	return slot.Load(), nil
}

// ReloadResult describes the outcome of reloading one kind.
// On failure Err is a *LoadError and Generation is the snapshot still live.
type ReloadResult struct {
	Kind       model.Kind
	Generation string
	Previous   string
	Items      int
	Err        error
}

// Reload re-runs the Loader for the given kinds (all kinds when none are
// given) and swaps in each snapshot that loaded cleanly.
//
// Kinds are independent: a failure for dares does not stop truths from being
// replaced. The returned error joins every per-kind failure; results always
// has one entry per requested kind. Reload before Initialize fails with
// ErrNotInitialized.
func (c *Cache) Reload(ctx context.Context, kinds ...model.Kind) ([]ReloadResult, error) {
	if len(kinds) == 0 {
		kinds = model.Kinds
	}
	unique := make([]model.Kind, 0, len(kinds))
	for _, k := range kinds {
		if _, ok := c.slots[k]; !ok {
			return nil, apperror.ValidationFailed("kind", fmt.Sprintf("unknown content kind %q", k))
		}
		if !slices.Contains(unique, k) {
			unique = append(unique, k)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready.Load() {
		return nil, notInitialized()
	}

	results := make([]ReloadResult, 0, len(unique))
	var errs []error
	for _, k := range unique {
		slot := c.slots[k]
		res := ReloadResult{Kind: k}

		snap, err := c.loader.Load(ctx, k)
		if err != nil {
			live := slot.Load()
			res.Generation = live.Generation()
			res.Previous = live.Generation()
			res.Items = live.Len()
			res.Err = err
			errs = append(errs, err)
			results = append(results, res)
			continue
		}

		prev := slot.Swap(snap)
		res.Generation = snap.Generation()
		res.Previous = prev.Generation()
		res.Items = snap.Len()
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}
