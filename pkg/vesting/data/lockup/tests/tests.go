package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
)

func RunTests(t *testing.T, s lockup.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s lockup.Store){
		testHappyPath,
		testMultipleAssets,
		testNegativeGuard,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s lockup.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		// Validate the record initially doesn't exist

		_, err := s.Get(ctx, "asset")
		assert.Equal(t, lockup.ErrLockupNotFound, err)

		// First add creates the record

		require.NoError(t, s.Add(ctx, "asset", 1000))

		actual, err := s.Get(ctx, "asset")
		require.NoError(t, err)
		assert.True(t, actual.Id > 0)
		assert.Equal(t, "asset", actual.Asset)
		assert.EqualValues(t, 1000, actual.Quantity)

		// Subsequent adds and subtracts accumulate

		require.NoError(t, s.Add(ctx, "asset", 500))
		require.NoError(t, s.Subtract(ctx, "asset", 300))

		actual, err = s.Get(ctx, "asset")
		require.NoError(t, err)
		assert.EqualValues(t, 1200, actual.Quantity)

		// Draining to exactly zero is allowed

		require.NoError(t, s.Subtract(ctx, "asset", 1200))

		actual, err = s.Get(ctx, "asset")
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.Quantity)
	})
}

func testMultipleAssets(t *testing.T, s lockup.Store) {
	t.Run("testMultipleAssets", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Add(ctx, "asset1", 100))
		require.NoError(t, s.Add(ctx, "asset2", 200))

		actual, err := s.Get(ctx, "asset1")
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Quantity)

		actual, err = s.Get(ctx, "asset2")
		require.NoError(t, err)
		assert.EqualValues(t, 200, actual.Quantity)

		require.NoError(t, s.Subtract(ctx, "asset1", 100))

		actual, err = s.Get(ctx, "asset2")
		require.NoError(t, err)
		assert.EqualValues(t, 200, actual.Quantity)
	})
}

func testNegativeGuard(t *testing.T, s lockup.Store) {
	t.Run("testNegativeGuard", func(t *testing.T) {
		ctx := context.Background()

		// Subtracting from an asset that was never locked

		assert.Equal(t, lockup.ErrNegativeLockup, s.Subtract(ctx, "asset", 1))

		// Zero-delta subtractions are a no-op, even without a record

		require.NoError(t, s.Subtract(ctx, "asset", 0))

		require.NoError(t, s.Add(ctx, "asset", 100))

		assert.Equal(t, lockup.ErrNegativeLockup, s.Subtract(ctx, "asset", 101))

		// The failed subtract left the balance untouched

		actual, err := s.Get(ctx, "asset")
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Quantity)
	})
}
