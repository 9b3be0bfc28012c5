package imageload

import (
	"context"
	"sync"

	"decor-gallery/internal/imagepath"
)

// Snapshot is the observable part of an ImageState
type Snapshot struct {
	Src      string `json:"src"`
	Loaded   bool   `json:"loaded"`
	HasError bool   `json:"has_error"`
}

// ImageState holds the load state of the image shown by one view. Loads
// started through Track only commit while the state is still owned, the
// context is alive and no newer Track call superseded them.
type ImageState struct {
	loader   *Loader
	resolver *imagepath.Resolver

	mu       sync.Mutex
	current  Snapshot
	gen      uint64
	released bool
}

// NewImageState creates a state bound to a loader. A nil resolver means the
// loader's own resolver.
func NewImageState(loader *Loader, resolver *imagepath.Resolver) *ImageState {
	if resolver == nil {
		resolver = loader.Resolver()
	}
	return &ImageState{loader: loader, resolver: resolver}
}

// Track loads raw and commits the outcome. It reports whether the outcome was
// committed.
func (s *ImageState) Track(ctx context.Context, raw string) (Result, bool) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return Result{Cancelled: true}, false
	}
	s.gen++
	gen := s.gen
	s.current = Snapshot{}
	s.mu.Unlock()

	result := s.loader.LoadFrom(ctx, s.resolver, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released || gen != s.gen || result.Cancelled || ctx.Err() != nil {
		return result, false
	}

	s.current = Snapshot{
		Src:      result.Src,
		Loaded:   result.Loaded,
		HasError: result.HasError,
	}
	return result, true
}

// Release marks the state as no longer owned; in-flight loads are dropped
func (s *ImageState) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

// Released reports whether Release was called
func (s *ImageState) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Snapshot returns the committed state
func (s *ImageState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
