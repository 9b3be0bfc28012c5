package gallery

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/observability"
)

type registryEntry struct {
	view     *View
	lastSeen time.Time
}

// Registry keeps the views mounted by HTTP clients, keyed by a random ID
type Registry struct {
	catalog     domain.Catalog
	opts        Options
	idleTimeout time.Duration
	now         func() time.Time
	logger      *observability.Logger

	mu    sync.Mutex
	views map[string]*registryEntry
}

// NewRegistry creates a registry mounting views over catalog. Views unused
// for longer than idleTimeout are removed by Sweep.
func NewRegistry(catalog domain.Catalog, opts Options, idleTimeout time.Duration) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return &Registry{
		catalog:     catalog,
		opts:        opts,
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logger.Component("views"),
		views:       make(map[string]*registryEntry),
	}
}

// Mount creates and registers a new view
func (r *Registry) Mount(ctx context.Context, query url.Values) (string, *View, error) {
	view, err := Mount(ctx, r.catalog, query, r.opts)
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()

	r.mu.Lock()
	r.views[id] = &registryEntry{view: view, lastSeen: r.now()}
	r.mu.Unlock()

	r.logger.Debug(ctx).Str("view_id", id).Msg("View mounted")
	return id, view, nil
}

// Get returns a registered view and marks it as used
func (r *Registry) Get(id string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrViewNotFound, id)
	}
	entry.lastSeen = r.now()
	return entry.view, nil
}

// Teardown tears a view down and forgets it
func (r *Registry) Teardown(id string) error {
	r.mu.Lock()
	entry, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrViewNotFound, id)
	}
	entry.view.Teardown()
	return nil
}

// Len returns the number of registered views
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep tears down views idle for longer than the idle timeout and returns
// how many were removed
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*View
	for id, entry := range r.views {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Teardown()
	}
	return len(expired)
}

// RunSweeper sweeps idle views every interval until ctx is done
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info(ctx).Int("views", n).Msg("Swept idle views")
			}
		}
	}
}

// Close tears down every registered view
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range views {
		entry.view.Teardown()
	}
}
