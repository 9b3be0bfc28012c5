package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decor-gallery/internal/platform/cache"
	"decor-gallery/internal/testutils"
)

func TestRedisClient_Integration(t *testing.T) {
	testutils.SkipIfNoDocker(t)

	ctx := context.Background()
	r := testutils.StartRedis(ctx, t)
	client := r.Client

	t.Run("miss", func(t *testing.T) {
		_, err := client.GetWinner(ctx, "/images/none.jpg")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, client.SetWinner(ctx, "|false|/images/a b.jpg", "/images/a%20b.jpg", time.Minute))

		winner, err := client.GetWinner(ctx, "|false|/images/a b.jpg")
		require.NoError(t, err)
		assert.Equal(t, "/images/a%20b.jpg", winner)

		require.NoError(t, client.DeleteWinner(ctx, "|false|/images/a b.jpg"))
		_, err = client.GetWinner(ctx, "|false|/images/a b.jpg")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, client.SetWinner(ctx, "/images/short.jpg", "/images/short.jpg", time.Second))

		assert.Eventually(t, func() bool {
			_, err := client.GetWinner(ctx, "/images/short.jpg")
			return err != nil
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("invalidate all winners", func(t *testing.T) {
		require.NoError(t, r.Flush(ctx))
		for _, key := range []string{"/a.jpg", "/b.jpg", "/c.jpg"} {
			require.NoError(t, client.SetWinner(ctx, key, key, time.Minute))
		}

		removed, err := client.InvalidateWinners(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		_, err = client.GetWinner(ctx, "/a.jpg")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("probe cache round trip", func(t *testing.T) {
		pc := cache.NewProbeCache(client, nil)
		require.NoError(t, pc.SetWinner(ctx, "/images/x.jpg", "/images/x.jpg", 0))

		winner, err := pc.GetWinner(ctx, "/images/x.jpg")
		require.NoError(t, err)
		assert.Equal(t, "/images/x.jpg", winner)
		assert.NoError(t, pc.Health(ctx))
	})
}
