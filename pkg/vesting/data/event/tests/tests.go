package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

func RunTests(t *testing.T, s event.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s event.Store){
		testHappyPath,
		testPagination,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s event.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		start := time.Now()

		ctx := context.Background()

		account := uuid.New().String()

		_, err := s.GetAllByAccount(ctx, account, query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, event.ErrEventNotFound, err)

		expected := &event.Record{
			Kind: event.KindVest,

			Account: account,
			Asset:   "asset",

			Quantity: 1000,
		}

		require.NoError(t, s.Put(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.True(t, expected.CreatedAt.After(start))

		actual, err := s.GetAllByAccount(ctx, account, query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 1)

		assert.Equal(t, event.KindVest, actual[0].Kind)
		assert.Equal(t, account, actual[0].Account)
		assert.Equal(t, "asset", actual[0].Asset)
		assert.EqualValues(t, 1000, actual[0].Quantity)
	})
}

func testPagination(t *testing.T, s event.Store) {
	t.Run("testPagination", func(t *testing.T) {
		ctx := context.Background()

		account := uuid.New().String()

		kinds := []event.Kind{
			event.KindVest,
			event.KindClaim,
			event.KindClaim,
			event.KindCancel,
		}
		for _, kind := range kinds {
			require.NoError(t, s.Put(ctx, &event.Record{
				Kind: kind,

				Account: account,
				Asset:   "asset",

				Quantity: 100,
			}))
		}

		// Another account's events don't leak in

		require.NoError(t, s.Put(ctx, &event.Record{
			Kind: event.KindWithdraw,

			Account: uuid.New().String(),
			Asset:   "asset",

			Quantity: 1,
		}))

		actual, err := s.GetAllByAccount(ctx, account, query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 4)
		for i, record := range actual {
			assert.Equal(t, kinds[i], record.Kind)
		}

		actual, err = s.GetAllByAccount(ctx, account, query.EmptyCursor, 2, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assert.Equal(t, event.KindVest, actual[0].Kind)

		actual, err = s.GetAllByAccount(ctx, account, query.ToCursor(actual[1].Id), 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assert.Equal(t, event.KindClaim, actual[0].Kind)
		assert.Equal(t, event.KindCancel, actual[1].Kind)

		actual, err = s.GetAllByAccount(ctx, account, query.EmptyCursor, 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 4)
		assert.Equal(t, event.KindCancel, actual[0].Kind)
	})
}

func testInvalidRecords(t *testing.T, s event.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*event.Record{
			{
				// Missing kind
				Account:  "account",
				Asset:    "asset",
				Quantity: 100,
			},
			{
				// Missing account
				Kind:     event.KindVest,
				Asset:    "asset",
				Quantity: 100,
			},
			{
				// Missing asset
				Kind:     event.KindVest,
				Account:  "account",
				Quantity: 100,
			},
		} {
			assert.Error(t, s.Put(ctx, invalid))
		}
	})
}
