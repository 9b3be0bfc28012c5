// Package slideshow drives the home page slideshow and category previews.
package slideshow

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/observability"
)

const (
	// DefaultInterval is the autoplay period
	DefaultInterval = 4 * time.Second
	// DefaultAspect is used until the current slide has been measured
	DefaultAspect = "16 / 9"
)

// FallbackSlides are shown when the catalog has no slideshow set
var FallbackSlides = []domain.ImageRecord{
	{Src: "/images/fallback/stage.jpg", Alt: "Decorated wedding stage", Category: "Weddings"},
	{Src: "/images/fallback/balloons.jpg", Alt: "Balloon arch", Category: "Birthdays"},
	{Src: "/images/fallback/florals.jpg", Alt: "Floral table setting", Category: "Corporate"},
}

// Options configures a Show
type Options struct {
	Interval   time.Duration
	Dimensions domain.DimensionReader
	Logger     *observability.Logger
}

// State is a snapshot of the slideshow
type State struct {
	Index   int                `json:"index"`
	Count   int                `json:"count"`
	Slide   domain.ImageRecord `json:"slide"`
	Aspect  string             `json:"aspect"`
	Playing bool               `json:"playing"`
}

// Show is a cyclic slideshow with autoplay
type Show struct {
	interval   time.Duration
	dimensions domain.DimensionReader
	logger     *observability.Logger

	mu      sync.Mutex
	slides  []domain.ImageRecord
	current int
	playing bool
	aspect  string
	gen     uint64
}

// New creates a playing slideshow. An empty slide set falls back to
// FallbackSlides.
func New(slides []domain.ImageRecord, opts Options) *Show {
	if len(slides) == 0 {
		slides = FallbackSlides
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}

	return &Show{
		interval:   opts.Interval,
		dimensions: opts.Dimensions,
		logger:     opts.Logger.Component("slideshow"),
		slides:     slices.Clone(slides),
		playing:    true,
	}
}

// Slides returns the slide set in display order
func (s *Show) Slides() []domain.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.slides)
}

// Next advances to the following slide, wrapping at the end
func (s *Show) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo((s.current + 1) % len(s.slides))
}

// Prev goes back one slide, wrapping at the start
func (s *Show) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.slides)
	s.moveTo((s.current - 1 + n) % n)
}

// GoTo jumps to slide i
func (s *Show) GoTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.slides) {
		return fmt.Errorf("%w: slide %d not in [0, %d)", domain.ErrIndexOutOfRange, i, len(s.slides))
	}
	s.moveTo(i)
	return nil
}

// Play resumes autoplay
func (s *Show) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
}

// Pause stops autoplay
func (s *Show) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Toggle flips autoplay and returns the new playing flag
func (s *Show) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = !s.playing
	return s.playing
}

// Playing reports whether autoplay is on
func (s *Show) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// State returns the current slide, its aspect ratio and the playing flag
func (s *Show) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	aspect := s.aspect
	if aspect == "" {
		aspect = DefaultAspect
	}
	return State{
		Index:   s.current,
		Count:   len(s.slides),
		Slide:   s.slides[s.current],
		Aspect:  aspect,
		Playing: s.playing,
	}
}

// Measure reads the natural size of the current slide and records its aspect
// ratio as "w / h". The result is dropped if the slide changed meanwhile.
func (s *Show) Measure(ctx context.Context) (string, error) {
	if s.dimensions == nil {
		return DefaultAspect, nil
	}

	s.mu.Lock()
	gen := s.gen
	src := s.slides[s.current].Src
	s.mu.Unlock()

	w, h, err := s.dimensions.Dimensions(ctx, src)
	if err != nil {
		return "", fmt.Errorf("failed to measure slide %s: %w", src, err)
	}
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("slide %s has no size", src)
	}

	aspect := Aspect(w, h)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.aspect = aspect
	}
	return aspect, nil
}

// Run advances the slideshow every interval while playing, until ctx is done
func (s *Show) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.measure(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Playing() {
				continue
			}
			s.Next()
			s.measure(ctx)
		}
	}
}

func (s *Show) measure(ctx context.Context) {
	if _, err := s.Measure(ctx); err != nil && ctx.Err() == nil {
		s.logger.Debug(ctx).Err(err).Msg("Slide aspect unavailable")
	}
}

// moveTo changes the current slide and forgets the measured aspect.
// Callers hold s.mu.
func (s *Show) moveTo(i int) {
	s.current = i
	s.aspect = ""
	s.gen++
}

// Aspect formats a CSS aspect-ratio value
func Aspect(width, height int) string {
	return strconv.Itoa(width) + " / " + strconv.Itoa(height)
}

// CategoryPreviews returns the first record of each category, in category
// order. Categories without records are skipped.
func CategoryPreviews(records []domain.ImageRecord, categories []string) []domain.ImageRecord {
	previews := make([]domain.ImageRecord, 0, len(categories))
	for _, c := range categories {
		if c == domain.AllCategory {
			continue
		}
		for _, r := range records {
			if r.Category == c {
				previews = append(previews, r)
				break
			}
		}
	}
	return previews
}
