package gallery

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "decor-gallery/internal/domain/gallery"
)

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry(staticCatalog{images: testImages()}, Options{}, time.Minute)
	ctx := context.Background()

	id, view, err := r.Mount(ctx, url.Values{"category": {"Corporate"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "Corporate", view.Snapshot().SelectedCategory)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, view, got)

	require.NoError(t, r.Teardown(id))
	assert.True(t, view.Closed())
	assert.Zero(t, r.Len())

	_, err = r.Get(id)
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
	assert.ErrorIs(t, r.Teardown(id), domain.ErrViewNotFound)
}

func TestRegistry_ViewsAreIndependent(t *testing.T) {
	r := NewRegistry(staticCatalog{images: testImages()}, Options{}, time.Minute)
	ctx := context.Background()

	idA, a, err := r.Mount(ctx, nil)
	require.NoError(t, err)
	idB, b, err := r.Mount(ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	require.NoError(t, a.Open(3))
	assert.True(t, a.Viewing())
	assert.False(t, b.Viewing())
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(staticCatalog{images: testImages()}, Options{}, 10*time.Minute)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	staleID, stale, err := r.Mount(ctx, nil)
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	freshID, _, err := r.Mount(ctx, nil)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.True(t, stale.Closed())

	_, err = r.Get(staleID)
	assert.ErrorIs(t, err, domain.ErrViewNotFound)
	_, err = r.Get(freshID)
	assert.NoError(t, err)

	now = now.Add(9 * time.Minute)
	assert.Zero(t, r.Sweep(), "Get refreshed the view")
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry(staticCatalog{images: testImages()}, Options{}, time.Minute)

	_, view, err := r.Mount(context.Background(), nil)
	require.NoError(t, err)

	r.Close()
	assert.Zero(t, r.Len())
	assert.True(t, view.Closed())
}
