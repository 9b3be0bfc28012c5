package gallery

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "decor-gallery/internal/domain/gallery"
	"decor-gallery/internal/imageload"
	"decor-gallery/internal/imagepath"
)

type staticCatalog struct {
	images []domain.ImageRecord
	err    error
}

func (c staticCatalog) Images(context.Context) ([]domain.ImageRecord, error) {
	return c.images, c.err
}

func (c staticCatalog) Slides(context.Context) ([]domain.ImageRecord, error) {
	return nil, c.err
}

func (c staticCatalog) Categories(context.Context) ([]string, error) {
	return domain.DeriveCategories(c.images), c.err
}

type acceptProber map[string]bool

func (p acceptProber) Probe(_ context.Context, src string) error {
	if p[src] {
		return nil
	}
	return errors.New("not found")
}

func testImages() []domain.ImageRecord {
	return []domain.ImageRecord{
		{Src: "/images/weddings/1.jpg", Alt: "Mandap", Category: "Weddings"},
		{Src: "/images/birthdays/1.jpg", Alt: "Balloon arch", Category: "Birthdays"},
		{Src: "/images/weddings/2.jpg", Alt: "Stage", Category: "Weddings"},
		{Src: "/images/corporate/1.jpg", Alt: "Launch", Category: "Corporate"},
		{Src: "/images/weddings/3.jpg", Alt: "Entrance", Category: "Weddings"},
	}
}

func newTestView(t *testing.T, images []domain.ImageRecord) *View {
	t.Helper()
	v := NewView(images, Options{})
	t.Cleanup(v.Teardown)
	return v
}

func TestMount_Defaults(t *testing.T) {
	v, err := Mount(context.Background(), staticCatalog{images: testImages()}, nil, Options{})
	require.NoError(t, err)
	defer v.Teardown()

	s := v.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, domain.AllCategory, s.SelectedCategory)
	assert.Equal(t, []string{"All", "Weddings", "Birthdays", "Corporate"}, s.Categories)
	assert.Equal(t, testImages(), s.Images)
	assert.Nil(t, s.SelectedIndex)
	assert.False(t, s.Filtering)
	assert.Equal(t, 1.0, s.Zoom)
	assert.Len(t, s.Groups, 3)
}

func TestMount_CategoryQuery(t *testing.T) {
	tests := []struct {
		name             string
		query            url.Values
		expectedCategory string
		expectedCount    int
	}{
		{name: "known category preselected", query: url.Values{"category": {"Weddings"}}, expectedCategory: "Weddings", expectedCount: 3},
		{name: "unknown category ignored", query: url.Values{"category": {"Funerals"}}, expectedCategory: "All", expectedCount: 5},
		{name: "empty category ignored", query: url.Values{"category": {""}}, expectedCategory: "All", expectedCount: 5},
		{name: "category names are case sensitive", query: url.Values{"category": {"weddings"}}, expectedCategory: "All", expectedCount: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Mount(context.Background(), staticCatalog{images: testImages()}, tt.query, Options{FilterDelay: time.Millisecond})
			require.NoError(t, err)
			defer v.Teardown()

			s := v.Snapshot()
			assert.Equal(t, tt.expectedCategory, s.SelectedCategory)
			assert.Equal(t, tt.expectedCount, s.Count)
			assert.False(t, s.Filtering)
		})
	}
}

func TestMount_CatalogError(t *testing.T) {
	boom := errors.New("catalog offline")
	_, err := Mount(context.Background(), staticCatalog{err: boom}, nil, Options{})
	assert.ErrorIs(t, err, boom)
}

func TestView_OpenValidation(t *testing.T) {
	empty := newTestView(t, nil)
	assert.ErrorIs(t, empty.Open(0), domain.ErrEmptySequence)
	assert.False(t, empty.Viewing())

	v := newTestView(t, testImages())
	assert.ErrorIs(t, v.Open(5), domain.ErrIndexOutOfRange)
	assert.ErrorIs(t, v.Open(-1), domain.ErrIndexOutOfRange)
	require.NoError(t, v.Open(4))

	s := v.Snapshot()
	assert.Equal(t, StateViewing, s.State)
	require.NotNil(t, s.SelectedIndex)
	assert.Equal(t, 4, *s.SelectedIndex)
	assert.Equal(t, "5 of 5", s.Position)
	assert.Equal(t, "Entrance", s.Current.Alt)
}

func TestView_OpenRecord(t *testing.T) {
	v := newTestView(t, testImages())

	require.NoError(t, v.OpenRecord("/images/weddings/2.jpg", "Stage"))
	assert.Equal(t, 2, *v.Snapshot().SelectedIndex)

	assert.ErrorIs(t, v.OpenRecord("/images/weddings/2.jpg", "Wrong alt"), domain.ErrImageNotFound)
	assert.Equal(t, 2, *v.Snapshot().SelectedIndex, "failed open keeps the current image")
}

func TestView_CyclicNavigation(t *testing.T) {
	images := testImages()
	n := len(images)

	for start := 0; start < n; start++ {
		v := newTestView(t, images)
		require.NoError(t, v.Open(start))

		for i := 0; i < n; i++ {
			v.Next()
		}
		assert.Equal(t, start, *v.Snapshot().SelectedIndex, "next applied N times returns to the start")

		for i := 0; i < n; i++ {
			v.Prev()
		}
		assert.Equal(t, start, *v.Snapshot().SelectedIndex, "prev applied N times returns to the start")

		v.Next()
		v.Prev()
		assert.Equal(t, start, *v.Snapshot().SelectedIndex, "prev undoes next")
	}
}

func TestView_NavigationWraps(t *testing.T) {
	v := newTestView(t, testImages())

	require.NoError(t, v.Open(4))
	v.Next()
	assert.Equal(t, 0, *v.Snapshot().SelectedIndex)

	v.Prev()
	assert.Equal(t, 4, *v.Snapshot().SelectedIndex)
}

func TestView_SingleImageNavigation(t *testing.T) {
	v := newTestView(t, testImages()[:1])
	require.NoError(t, v.Open(0))

	v.Next()
	assert.Equal(t, 0, *v.Snapshot().SelectedIndex)
	v.Prev()
	assert.Equal(t, 0, *v.Snapshot().SelectedIndex)
}

func TestView_IdleNavigationIsNoop(t *testing.T) {
	v := newTestView(t, testImages())

	v.Next()
	v.Prev()
	v.ZoomIn()
	v.RotateClockwise()

	s := v.Snapshot()
	assert.Nil(t, s.SelectedIndex)
	assert.Equal(t, 1.0, s.Zoom)
	assert.Zero(t, s.Rotation)
}

func TestView_Close(t *testing.T) {
	v := newTestView(t, testImages())
	require.NoError(t, v.Open(1))

	v.Close()
	assert.False(t, v.Viewing())
	assert.Equal(t, StateIdle, v.Snapshot().State)
}

func TestView_ZoomBounds(t *testing.T) {
	v := newTestView(t, testImages())
	require.NoError(t, v.Open(0))

	v.ZoomIn()
	assert.Equal(t, 1.2, v.Snapshot().Zoom)

	for i := 0; i < 20; i++ {
		v.ZoomIn()
		z := v.Snapshot().Zoom
		assert.LessOrEqual(t, z, domain.MaxZoom)
	}
	assert.Equal(t, 3.0, v.Snapshot().Zoom)

	for i := 0; i < 30; i++ {
		v.ZoomOut()
		z := v.Snapshot().Zoom
		assert.GreaterOrEqual(t, z, domain.MinZoom)
	}
	assert.Equal(t, 0.2, v.Snapshot().Zoom)

	v.ZoomIn()
	assert.Equal(t, 0.4, v.Snapshot().Zoom)
}

func TestView_Rotation(t *testing.T) {
	v := newTestView(t, testImages())
	require.NoError(t, v.Open(0))

	for i := 0; i < 5; i++ {
		v.RotateClockwise()
	}
	assert.Equal(t, 450, v.Snapshot().Rotation, "rotation is not normalized")

	v.RotateCounterClockwise()
	assert.Equal(t, 360, v.Snapshot().Rotation)

	v.ZoomIn()
	v.ResetTransform()
	s := v.Snapshot()
	assert.Equal(t, 1.0, s.Zoom)
	assert.Zero(t, s.Rotation)
}

func TestView_TransformResetsOnImageChange(t *testing.T) {
	transitions := []struct {
		name  string
		apply func(v *View)
	}{
		{name: "next", apply: func(v *View) { v.Next() }},
		{name: "prev", apply: func(v *View) { v.Prev() }},
		{name: "reopen same image", apply: func(v *View) { _ = v.Open(1) }},
		{name: "open other image", apply: func(v *View) { _ = v.Open(3) }},
		{name: "close then open", apply: func(v *View) { v.Close(); _ = v.Open(1) }},
	}

	for _, tt := range transitions {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(t, testImages())
			require.NoError(t, v.Open(1))
			v.ZoomIn()
			v.ZoomIn()
			v.RotateCounterClockwise()

			tt.apply(v)

			s := v.Snapshot()
			assert.Equal(t, 1.0, s.Zoom)
			assert.Zero(t, s.Rotation)
			assert.Equal(t, "scale(1) rotate(0deg)", s.Transform)
		})
	}
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "scale(1.4) rotate(-90deg)", Transform(1.4, -90))
	assert.Equal(t, "scale(0.2) rotate(450deg)", Transform(0.2, 450))
}

func TestView_SelectCategory(t *testing.T) {
	v := NewView(testImages(), Options{FilterDelay: 50 * time.Millisecond})
	defer v.Teardown()
	require.NoError(t, v.Open(2))

	done := make(chan error, 1)
	go func() { done <- v.SelectCategory(context.Background(), "Weddings") }()

	assert.Eventually(t, v.Filtering, time.Second, time.Millisecond, "filtering signal is raised during the delay")
	assert.Equal(t, "Weddings", v.Snapshot().SelectedCategory)

	require.NoError(t, <-done)

	s := v.Snapshot()
	assert.False(t, s.Filtering)
	assert.Equal(t, StateIdle, s.State, "committing a filter returns to Idle")
	assert.Nil(t, s.Groups)
	require.Len(t, s.Images, 3)
	assert.Equal(t, []string{"Mandap", "Stage", "Entrance"}, []string{s.Images[0].Alt, s.Images[1].Alt, s.Images[2].Alt})
}

func TestView_SelectAllRestoresCatalog(t *testing.T) {
	v := newTestView(t, testImages())

	require.NoError(t, v.SelectCategory(context.Background(), "Corporate"))
	assert.Equal(t, 1, v.Snapshot().Count)

	require.NoError(t, v.SelectCategory(context.Background(), domain.AllCategory))
	assert.Equal(t, testImages(), v.Snapshot().Images)
}

func TestView_SelectUnknownCategory(t *testing.T) {
	v := newTestView(t, testImages())

	err := v.SelectCategory(context.Background(), "Funerals")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.Equal(t, domain.AllCategory, v.Snapshot().SelectedCategory)
	assert.False(t, v.Filtering())
}

func TestView_TeardownDuringDelay(t *testing.T) {
	v := NewView(testImages(), Options{FilterDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.SelectCategory(ctx, "Birthdays") }()
	require.Eventually(t, v.Filtering, time.Second, time.Millisecond)

	v.Teardown()
	cancel()

	assert.ErrorIs(t, <-done, domain.ErrViewClosed)
	assert.Equal(t, 5, v.Snapshot().Count, "filtered sequence is not committed")
}

func TestView_ContextCutsDelayShort(t *testing.T) {
	v := NewView(testImages(), Options{FilterDelay: time.Hour})
	defer v.Teardown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.NoError(t, v.SelectCategory(ctx, "Corporate"))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, v.Snapshot().Count)
	assert.False(t, v.Filtering())
}

func TestView_NewerSelectionSupersedes(t *testing.T) {
	v := NewView(testImages(), Options{FilterDelay: time.Hour})
	defer v.Teardown()

	slow, cancelSlow := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.SelectCategory(slow, "Birthdays") }()
	require.Eventually(t, v.Filtering, time.Second, time.Millisecond)

	fast, cancelFast := context.WithCancel(context.Background())
	cancelFast()
	require.NoError(t, v.SelectCategory(fast, "Corporate"))

	cancelSlow()
	require.NoError(t, <-done)

	s := v.Snapshot()
	assert.Equal(t, "Corporate", s.SelectedCategory)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, "Launch", s.Images[0].Alt, "the superseded selection must not overwrite the newer one")
}

func TestView_ClosedViewRejectsTransitions(t *testing.T) {
	v := NewView(testImages(), Options{})
	v.Teardown()
	v.Teardown()

	assert.ErrorIs(t, v.Open(0), domain.ErrViewClosed)
	assert.ErrorIs(t, v.OpenRecord("/images/weddings/1.jpg", "Mandap"), domain.ErrViewClosed)
	assert.ErrorIs(t, v.SelectCategory(context.Background(), "Weddings"), domain.ErrViewClosed)
	_, err := v.LoadCurrent(context.Background())
	assert.ErrorIs(t, err, domain.ErrViewClosed)
}

func TestView_LoadCurrent(t *testing.T) {
	images := []domain.ImageRecord{
		{Src: "/images/My Photo.jpg", Alt: "Spaced", Category: "Weddings"},
		{Src: "/images/missing.jpg", Alt: "Missing", Category: "Weddings"},
	}
	prober := acceptProber{"/images/My Photo.jpg": true}
	loader := imageload.NewLoader(imagepath.New("/", ""), prober, imageload.Options{})

	v := NewView(images, Options{Loader: loader})
	defer v.Teardown()

	_, err := v.LoadCurrent(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotViewing)

	require.NoError(t, v.Open(0))
	result, err := v.LoadCurrent(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Loaded)
	assert.Equal(t, "/images/My Photo.jpg", result.Src)
	assert.Equal(t, &imageload.Snapshot{Src: "/images/My Photo.jpg", Loaded: true}, v.Snapshot().Image)

	v.Next()
	assert.Equal(t, &imageload.Snapshot{}, v.Snapshot().Image, "a new image starts unloaded")

	result, err = v.LoadCurrent(context.Background())
	require.NoError(t, err)
	assert.True(t, result.HasError)
	assert.Equal(t, imageload.DefaultPlaceholder, v.Snapshot().Image.Src)
}

func TestView_LoadCurrentWithoutLoader(t *testing.T) {
	v := newTestView(t, testImages())
	require.NoError(t, v.Open(0))

	_, err := v.LoadCurrent(context.Background())
	assert.ErrorIs(t, err, ErrNoLoader)
}
