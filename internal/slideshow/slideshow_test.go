package slideshow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "decor-gallery/internal/domain/gallery"
)

type fakeDimensions struct {
	mu    sync.Mutex
	sizes map[string][2]int
	hook  func()
}

func (f *fakeDimensions) Dimensions(_ context.Context, src string) (int, int, error) {
	if f.hook != nil {
		f.hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	size, ok := f.sizes[src]
	if !ok {
		return 0, 0, errors.New("no such image")
	}
	return size[0], size[1], nil
}

func slides() []domain.ImageRecord {
	return []domain.ImageRecord{
		{Src: "/s/1.jpg", Alt: "one", Category: "Weddings"},
		{Src: "/s/2.jpg", Alt: "two", Category: "Birthdays"},
		{Src: "/s/3.jpg", Alt: "three", Category: "Weddings"},
	}
}

func TestNew_FallbackSlides(t *testing.T) {
	s := New(nil, Options{})

	state := s.State()
	assert.Equal(t, len(FallbackSlides), state.Count)
	assert.Equal(t, FallbackSlides[0], state.Slide)
	assert.True(t, state.Playing, "slideshow autoplays by default")
	assert.Equal(t, DefaultAspect, state.Aspect)
}

func TestShow_SlidesReturnsCopy(t *testing.T) {
	s := New(slides(), Options{})

	got := s.Slides()
	require.Len(t, got, 3)
	got[0].Src = "/changed.jpg"
	assert.Equal(t, "/s/1.jpg", s.Slides()[0].Src)
}

func TestShow_CyclicNavigation(t *testing.T) {
	s := New(slides(), Options{})

	s.Prev()
	assert.Equal(t, 2, s.State().Index)

	s.Next()
	assert.Equal(t, 0, s.State().Index)

	for i := 0; i < 3; i++ {
		s.Next()
	}
	assert.Equal(t, 0, s.State().Index)

	require.NoError(t, s.GoTo(1))
	assert.Equal(t, "two", s.State().Slide.Alt)
	assert.ErrorIs(t, s.GoTo(3), domain.ErrIndexOutOfRange)
}

func TestShow_PlayPause(t *testing.T) {
	s := New(slides(), Options{})

	assert.False(t, s.Toggle())
	assert.False(t, s.Playing())
	assert.True(t, s.Toggle())

	s.Pause()
	assert.False(t, s.State().Playing)
	s.Play()
	assert.True(t, s.State().Playing)
}

func TestShow_MeasureAndReset(t *testing.T) {
	dims := &fakeDimensions{sizes: map[string][2]int{"/s/1.jpg": {1200, 800}, "/s/2.jpg": {600, 900}}}
	s := New(slides(), Options{Dimensions: dims})

	aspect, err := s.Measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1200 / 800", aspect)
	assert.Equal(t, "1200 / 800", s.State().Aspect)

	s.Next()
	assert.Equal(t, DefaultAspect, s.State().Aspect, "aspect resets on slide change")

	_, err = s.Measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "600 / 900", s.State().Aspect)

	s.Next()
	_, err = s.Measure(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultAspect, s.State().Aspect)
}

func TestShow_StaleMeasurementDropped(t *testing.T) {
	dims := &fakeDimensions{sizes: map[string][2]int{"/s/1.jpg": {4, 3}}}
	s := New(slides(), Options{Dimensions: dims})
	dims.hook = func() {
		dims.hook = nil
		s.Next()
	}

	aspect, err := s.Measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4 / 3", aspect)
	assert.Equal(t, DefaultAspect, s.State().Aspect, "measurement of an old slide is not applied")
}

func TestShow_Run(t *testing.T) {
	s := New(slides(), Options{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.State().Index != 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestShow_RunPaused(t *testing.T) {
	s := New(slides(), Options{Interval: 2 * time.Millisecond})
	s.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, 0, s.State().Index)
}

func TestAspect(t *testing.T) {
	assert.Equal(t, "1920 / 1080", Aspect(1920, 1080))
}

func TestCategoryPreviews(t *testing.T) {
	records := []domain.ImageRecord{
		{Src: "/a.jpg", Category: "Weddings"},
		{Src: "/b.jpg", Category: "Birthdays"},
		{Src: "/c.jpg", Category: "Weddings"},
	}

	previews := CategoryPreviews(records, []string{"All", "Birthdays", "Weddings", "Corporate"})

	require.Len(t, previews, 2)
	assert.Equal(t, "/b.jpg", previews[0].Src)
	assert.Equal(t, "/a.jpg", previews[1].Src)
	assert.Empty(t, CategoryPreviews(nil, []string{"Weddings"}))
}
