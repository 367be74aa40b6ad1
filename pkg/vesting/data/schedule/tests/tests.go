package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
)

func RunTests(t *testing.T, s schedule.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s schedule.Store){
		testHappyPath,
		testDenseIndices,
		testGetAllByAccount,
		testGetAllByAsset,
		testSetClaimed,
		testZeroTotal,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s schedule.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		start := time.Now()

		ctx := context.Background()

		expected := &schedule.Record{
			Account: "account",

			Asset: "asset",

			TotalAmount:   1000,
			ClaimedAmount: 0,

			StartTime: 1700000000,
			CliffTime: 1700000000 + 52*604800,
			EndTime:   1700000000 + 55*604800,

			IsFixed: false,
		}
		cloned := expected.Clone()

		// Validate the record initially doesn't exist

		_, err := s.Get(ctx, expected.Account, 0)
		assert.Equal(t, schedule.ErrScheduleNotFound, err)

		count, err := s.CountByAccount(ctx, expected.Account)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		// Append the record

		require.NoError(t, s.Append(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 0, expected.Index)
		assert.True(t, expected.LastUpdatedAt.After(start))

		// Ensure we can fetch the same record back

		actual, err := s.Get(ctx, expected.Account, 0)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		count, err = s.CountByAccount(ctx, expected.Account)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func testDenseIndices(t *testing.T, s schedule.Store) {
	t.Run("testDenseIndices", func(t *testing.T) {
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			record := &schedule.Record{
				Account: "account",

				Asset: "asset",

				TotalAmount: uint64(1000 * (i + 1)),

				StartTime: 1700000000,
				CliffTime: 1700000000 + 604800,
				EndTime:   1700000000 + 2*604800,
			}

			require.NoError(t, s.Append(ctx, record))
			assert.EqualValues(t, i, record.Index)
		}

		count, err := s.CountByAccount(ctx, "account")
		require.NoError(t, err)
		assert.EqualValues(t, 5, count)

		// Indices are per account

		other := &schedule.Record{
			Account: "other",

			Asset: "asset",

			TotalAmount: 1,

			StartTime: 1700000000,
			CliffTime: 1700000000,
			EndTime:   1700000000 + 604800,
		}
		require.NoError(t, s.Append(ctx, other))
		assert.EqualValues(t, 0, other.Index)
	})
}

func testGetAllByAccount(t *testing.T, s schedule.Store) {
	t.Run("testGetAllByAccount", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByAccount(ctx, "account")
		assert.Equal(t, schedule.ErrScheduleNotFound, err)

		for i := 0; i < 3; i++ {
			record := &schedule.Record{
				Account: "account",

				Asset: fmt.Sprintf("asset-%d", i),

				TotalAmount: uint64(100 * (i + 1)),

				StartTime: 1700000000,
				CliffTime: 1700000000 + uint64(i)*604800,
				EndTime:   1700000000 + uint64(i+1)*604800,
			}
			require.NoError(t, s.Append(ctx, record))
		}

		actual, err := s.GetAllByAccount(ctx, "account")
		require.NoError(t, err)
		require.Len(t, actual, 3)

		for i, record := range actual {
			assert.EqualValues(t, i, record.Index)
			assert.Equal(t, fmt.Sprintf("asset-%d", i), record.Asset)
		}
	})
}

func testGetAllByAsset(t *testing.T, s schedule.Store) {
	t.Run("testGetAllByAsset", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByAsset(ctx, "asset", query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, schedule.ErrScheduleNotFound, err)

		for i := 0; i < 5; i++ {
			record := &schedule.Record{
				Account: fmt.Sprintf("account-%d", i),

				Asset: "asset",

				TotalAmount: uint64(100 * (i + 1)),

				StartTime: 1700000000,
				CliffTime: 1700000000,
				EndTime:   1700000000 + 604800,
			}
			require.NoError(t, s.Append(ctx, record))
		}

		// Unrelated asset

		require.NoError(t, s.Append(ctx, &schedule.Record{
			Account: "account-other",

			Asset: "other",

			TotalAmount: 1,

			StartTime: 1700000000,
			CliffTime: 1700000000,
			EndTime:   1700000000 + 604800,
		}))

		actual, err := s.GetAllByAsset(ctx, "asset", query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i, record := range actual {
			assert.Equal(t, fmt.Sprintf("account-%d", i), record.Account)
		}

		actual, err = s.GetAllByAsset(ctx, "asset", query.EmptyCursor, 2, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assert.Equal(t, "account-0", actual[0].Account)
		assert.Equal(t, "account-1", actual[1].Account)

		actual, err = s.GetAllByAsset(ctx, "asset", query.ToCursor(actual[1].Id), 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		assert.Equal(t, "account-2", actual[0].Account)

		actual, err = s.GetAllByAsset(ctx, "asset", query.EmptyCursor, 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		assert.Equal(t, "account-4", actual[0].Account)
	})
}

func testSetClaimed(t *testing.T, s schedule.Store) {
	t.Run("testSetClaimed", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, schedule.ErrScheduleNotFound, s.SetClaimed(ctx, "account", 0, 100))

		record := &schedule.Record{
			Account: "account",

			Asset: "asset",

			TotalAmount: 1000,

			StartTime: 1700000000,
			CliffTime: 1700000000,
			EndTime:   1700000000 + 604800,
		}
		require.NoError(t, s.Append(ctx, record))

		require.NoError(t, s.SetClaimed(ctx, "account", 0, 250))

		actual, err := s.Get(ctx, "account", 0)
		require.NoError(t, err)
		assert.EqualValues(t, 250, actual.ClaimedAmount)
		assert.EqualValues(t, 1000, actual.TotalAmount)
		assert.EqualValues(t, 750, actual.Outstanding())

		require.NoError(t, s.SetClaimed(ctx, "account", 0, 1000))

		actual, err = s.Get(ctx, "account", 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, actual.ClaimedAmount)
		assert.EqualValues(t, 0, actual.Outstanding())
	})
}

func testZeroTotal(t *testing.T, s schedule.Store) {
	t.Run("testZeroTotal", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, schedule.ErrScheduleNotFound, s.ZeroTotal(ctx, "account", 0))

		record := &schedule.Record{
			Account: "account",

			Asset: "asset",

			TotalAmount:   1000,
			ClaimedAmount: 0,

			StartTime: 1700000000,
			CliffTime: 1700000000,
			EndTime:   1700000000 + 604800,
		}
		require.NoError(t, s.Append(ctx, record))

		require.NoError(t, s.ZeroTotal(ctx, "account", 0))

		// The schedule stays addressable, but inert

		actual, err := s.Get(ctx, "account", 0)
		require.NoError(t, err)
		assert.True(t, actual.IsCancelled())
		assert.EqualValues(t, 0, actual.TotalAmount)
		assert.EqualValues(t, 0, actual.Outstanding())

		count, err := s.CountByAccount(ctx, "account")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func testInvalidRecords(t *testing.T, s schedule.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*schedule.Record{
			{
				// Missing account
				Asset:       "asset",
				TotalAmount: 1000,
				StartTime:   1700000000,
				CliffTime:   1700000000,
				EndTime:     1700000000 + 604800,
			},
			{
				// Missing asset
				Account:     "account",
				TotalAmount: 1000,
				StartTime:   1700000000,
				CliffTime:   1700000000,
				EndTime:     1700000000 + 604800,
			},
			{
				// Zero total amount
				Account:   "account",
				Asset:     "asset",
				StartTime: 1700000000,
				CliffTime: 1700000000,
				EndTime:   1700000000 + 604800,
			},
			{
				// Zero-length vesting period
				Account:     "account",
				Asset:       "asset",
				TotalAmount: 1000,
				StartTime:   1700000000,
				CliffTime:   1700000000,
				EndTime:     1700000000,
			},
			{
				// Cliff before start
				Account:     "account",
				Asset:       "asset",
				TotalAmount: 1000,
				StartTime:   1700000000,
				CliffTime:   1600000000,
				EndTime:     1700000000 + 604800,
			},
		} {
			assert.Error(t, s.Append(ctx, invalid))
		}

		count, err := s.CountByAccount(ctx, "account")
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *schedule.Record) {
	assert.Equal(t, obj1.Account, obj2.Account)
	assert.Equal(t, obj1.Index, obj2.Index)

	assert.Equal(t, obj1.Asset, obj2.Asset)

	assert.Equal(t, obj1.TotalAmount, obj2.TotalAmount)
	assert.Equal(t, obj1.ClaimedAmount, obj2.ClaimedAmount)

	assert.Equal(t, obj1.StartTime, obj2.StartTime)
	assert.Equal(t, obj1.CliffTime, obj2.CliffTime)
	assert.Equal(t, obj1.EndTime, obj2.EndTime)

	assert.Equal(t, obj1.IsFixed, obj2.IsFixed)
}
