package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed lockup.Store
func New(db *sql.DB) lockup.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Get implements lockup.Store.Get
func (s *store) Get(ctx context.Context, asset string) (*lockup.Record, error) {
	model, err := dbGet(ctx, s.db, asset)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// Add implements lockup.Store.Add
func (s *store) Add(ctx context.Context, asset string, delta uint64) error {
	if len(asset) == 0 {
		return lockup.ErrInvalidLockup
	}

	return dbAdd(ctx, s.db, asset, delta)
}

// Subtract implements lockup.Store.Subtract
func (s *store) Subtract(ctx context.Context, asset string, delta uint64) error {
	if len(asset) == 0 {
		return lockup.ErrInvalidLockup
	}

	return dbSubtract(ctx, s.db, asset, delta)
}
