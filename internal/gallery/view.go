// Package gallery implements the navigation state of a gallery page: the
// active category sequence, the lightbox and its zoom and rotation.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"sync"
	"time"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/imageload"
	"decor-gallery/internal/imagepath"
	"decor-gallery/internal/observability"
)

// DefaultFilterDelay is the time the filtering signal stays up before a
// category change is committed
const DefaultFilterDelay = 100 * time.Millisecond

// ErrNoLoader is returned by LoadCurrent when the view has no image loader
var ErrNoLoader = errors.New("view has no image loader")

// Options configures a mounted view
type Options struct {
	// FilterDelay is the pause between selecting a category and committing it.
	// Negative values mean DefaultFilterDelay.
	FilterDelay time.Duration
	Loader      *imageload.Loader
	// Resolver overrides the loader's resolver, e.g. for a file: location
	Resolver *imagepath.Resolver
	Logger   *observability.Logger
	Metrics  *observability.GalleryMetrics
}

// View is the state of one mounted gallery page. All transitions are
// serialized by the view's mutex.
type View struct {
	opts   Options
	logger *observability.Logger

	mu         sync.Mutex
	catalog    []domain.ImageRecord
	categories []string
	category   string
	filtered   []domain.ImageRecord
	selected   int
	zoom       float64
	rotation   int
	filtering  bool
	filterGen  uint64
	closed     bool
	image      *imageload.ImageState
}

// Mount snapshots the catalog and starts Idle on the "All" category. When
// query names a known category in "category" it is selected as if clicked;
// unknown values are ignored.
func Mount(ctx context.Context, catalog domain.Catalog, query url.Values, opts Options) (*View, error) {
	images, err := catalog.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	v := NewView(images, opts)

	if requested := query.Get("category"); requested != "" {
		if !v.HasCategory(requested) {
			v.logger.Debug(ctx).Str("category", requested).Msg("Ignoring unknown category in query")
		} else if err := v.SelectCategory(ctx, requested); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// NewView creates an Idle view over a catalog snapshot
func NewView(images []domain.ImageRecord, opts Options) *View {
	if opts.FilterDelay < 0 {
		opts.FilterDelay = DefaultFilterDelay
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}

	catalog := slices.Clone(images)
	v := &View{
		opts:       opts,
		logger:     opts.Logger.Component("gallery"),
		catalog:    catalog,
		categories: domain.WithAll(domain.DeriveCategories(catalog)),
		category:   domain.AllCategory,
		filtered:   domain.FilterByCategory(catalog, domain.AllCategory),
		selected:   -1,
		zoom:       domain.DefaultZoom,
	}
	opts.Metrics.ViewMounted(context.Background())
	return v
}

// Categories returns "All" followed by the catalog categories
func (v *View) Categories() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.categories)
}

// HasCategory reports whether c is selectable
func (v *View) HasCategory(c string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Contains(v.categories, c)
}

// Filtering reports whether a category change is pending
func (v *View) Filtering() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtering
}

// Viewing reports whether the lightbox is open
func (v *View) Viewing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected >= 0
}

// Open shows the image at index i of the active sequence
func (v *View) Open(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return domain.ErrViewClosed
	}
	if len(v.filtered) == 0 {
		return domain.ErrEmptySequence
	}
	if i < 0 || i >= len(v.filtered) {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, i, len(v.filtered))
	}

	v.enter(i)
	return nil
}

// OpenRecord shows the image with the given identity in the active sequence
func (v *View) OpenRecord(src, alt string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return domain.ErrViewClosed
	}
	i := domain.IndexOf(v.filtered, src, alt)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, src)
	}

	v.enter(i)
	return nil
}

// Next moves to the following image, wrapping at the end. No-op when Idle.
func (v *View) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.selected < 0 {
		return
	}
	v.enter((v.selected + 1) % len(v.filtered))
}

// Prev moves to the preceding image, wrapping at the start. No-op when Idle.
func (v *View) Prev() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.selected < 0 {
		return
	}
	n := len(v.filtered)
	v.enter((v.selected - 1 + n) % n)
}

// Close returns to Idle
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.leave()
}

// ZoomIn raises the zoom by one step up to MaxZoom
func (v *View) ZoomIn() {
	v.adjustZoom(domain.ZoomStep)
}

// ZoomOut lowers the zoom by one step down to MinZoom
func (v *View) ZoomOut() {
	v.adjustZoom(-domain.ZoomStep)
}

func (v *View) adjustZoom(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.selected < 0 {
		return
	}
	z := math.Max(domain.MinZoom, math.Min(domain.MaxZoom, v.zoom+delta))
	v.zoom = math.Round(z*100) / 100
}

// RotateClockwise turns the image by +90 degrees
func (v *View) RotateClockwise() {
	v.rotate(domain.RotateStep)
}

// RotateCounterClockwise turns the image by -90 degrees
func (v *View) RotateCounterClockwise() {
	v.rotate(-domain.RotateStep)
}

func (v *View) rotate(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.selected < 0 {
		return
	}
	v.rotation += delta
}

// ResetTransform restores zoom 1 and rotation 0
func (v *View) ResetTransform() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.selected < 0 {
		return
	}
	v.zoom = domain.DefaultZoom
	v.rotation = 0
}

// SelectCategory raises the filtering signal, waits the filter delay and then
// commits the category's sequence, returning the view to Idle. The wait ends
// early when ctx is done; the commit still happens. A later selection
// supersedes this one, and a teardown during the wait suppresses it.
func (v *View) SelectCategory(ctx context.Context, c string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.ErrViewClosed
	}
	if !slices.Contains(v.categories, c) {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownCategory, c)
	}
	v.category = c
	v.filtering = true
	v.filterGen++
	gen := v.filterGen
	delay := v.opts.FilterDelay
	v.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return domain.ErrViewClosed
	}
	if gen != v.filterGen {
		return nil
	}

	v.filtered = domain.FilterByCategory(v.catalog, c)
	v.filtering = false
	v.leave()

	commitCtx := context.WithoutCancel(ctx)
	v.opts.Metrics.RecordFilterTransition(commitCtx, c)
	v.logger.Debug(commitCtx).
		Str("category", c).
		Int("images", len(v.filtered)).
		Msg("Category filter committed")
	return nil
}

// LoadCurrent runs the fallback chain for the open image. The outcome is
// dropped if the view moves to another image or is torn down meanwhile.
func (v *View) LoadCurrent(ctx context.Context) (imageload.Result, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return imageload.Result{}, domain.ErrViewClosed
	}
	if v.selected < 0 {
		v.mu.Unlock()
		return imageload.Result{}, domain.ErrNotViewing
	}
	if v.image == nil {
		v.mu.Unlock()
		return imageload.Result{}, ErrNoLoader
	}
	state := v.image
	src := v.filtered[v.selected].Src
	v.mu.Unlock()

	result, _ := state.Track(ctx, src)
	return result, nil
}

// Teardown closes the view. Pending filter commits and image loads are
// dropped. Calling it again has no effect.
func (v *View) Teardown() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.leave()
	v.closed = true
	v.filtering = false
	v.opts.Metrics.ViewTornDown(context.Background())
}

// Closed reports whether Teardown was called
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// enter switches to Viewing(i) with a fresh transform and image state.
// Callers hold v.mu.
func (v *View) enter(i int) {
	v.releaseImage()
	v.selected = i
	v.zoom = domain.DefaultZoom
	v.rotation = 0
	if v.opts.Loader != nil {
		v.image = imageload.NewImageState(v.opts.Loader, v.opts.Resolver)
	}
}

// leave switches to Idle. Callers hold v.mu.
func (v *View) leave() {
	v.releaseImage()
	v.selected = -1
	v.zoom = domain.DefaultZoom
	v.rotation = 0
}

func (v *View) releaseImage() {
	if v.image != nil {
		v.image.Release()
		v.image = nil
	}
}
