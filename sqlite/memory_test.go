package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/sqlite"
)

// mustOpenDB opens an in-memory database and registers cleanup.
func mustOpenDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func descriptor(siteKey string) *harvest.ContainerDescriptor {
	return &harvest.ContainerDescriptor{
		SiteKey:   siteKey,
		Signature: "div|product-card|aip",
		Depth:     4,
		Score:     0.92,
		Support:   24,
	}
}

func TestMemoryService(t *testing.T) {
	t.Parallel()

	t.Run("remember then recall round trip", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))
		ctx := context.Background()

		d := descriptor("shop.example.com")
		require.NoError(t, svc.Remember(ctx, d))
		assert.NotEmpty(t, d.ID)
		assert.False(t, d.UpdatedAt.IsZero())

		got, err := svc.Recall(ctx, "shop.example.com")
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
		assert.Equal(t, "div|product-card|aip", got.Signature)
		assert.Equal(t, 4, got.Depth)
		assert.InDelta(t, 0.92, got.Score, 0.001)
		assert.Equal(t, 24, got.Support)
	})

	t.Run("remember replaces the descriptor for a site", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, svc.Remember(ctx, descriptor("shop.example.com")))

		updated := descriptor("shop.example.com")
		updated.Signature = "li|offer|ap"
		updated.Support = 40
		require.NoError(t, svc.Remember(ctx, updated))

		got, err := svc.Recall(ctx, "shop.example.com")
		require.NoError(t, err)
		assert.Equal(t, "li|offer|ap", got.Signature)
		assert.Equal(t, 40, got.Support)

		all, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "upsert must not duplicate rows")
	})

	t.Run("recall unknown site returns not found", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))

		_, err := svc.Recall(context.Background(), "nowhere.test")
		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})

	t.Run("forget removes the descriptor", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, svc.Remember(ctx, descriptor("shop.example.com")))
		require.NoError(t, svc.Forget(ctx, "shop.example.com"))

		_, err := svc.Recall(ctx, "shop.example.com")
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))

		err = svc.Forget(ctx, "shop.example.com")
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})

	t.Run("list orders by site key", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, svc.Remember(ctx, descriptor("zeta.test")))
		require.NoError(t, svc.Remember(ctx, descriptor("alpha.test")))
		require.NoError(t, svc.Remember(ctx, descriptor("mid.test")))

		all, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "alpha.test", all[0].SiteKey)
		assert.Equal(t, "mid.test", all[1].SiteKey)
		assert.Equal(t, "zeta.test", all[2].SiteKey)
	})

	t.Run("rejects invalid descriptors", func(t *testing.T) {
		t.Parallel()
		svc := sqlite.NewMemoryService(mustOpenDB(t))

		err := svc.Remember(context.Background(), &harvest.ContainerDescriptor{SiteKey: "x.test"})
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
