package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed schedule.Store
func New(db *sql.DB) schedule.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Append implements schedule.Store.Append
func (s *store) Append(ctx context.Context, record *schedule.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbAppend(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// Get implements schedule.Store.Get
func (s *store) Get(ctx context.Context, account string, index uint64) (*schedule.Record, error) {
	model, err := dbGet(ctx, s.db, account, index)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetAllByAccount implements schedule.Store.GetAllByAccount
func (s *store) GetAllByAccount(ctx context.Context, account string) ([]*schedule.Record, error) {
	models, err := dbGetAllByAccount(ctx, s.db, account)
	if err != nil {
		return nil, err
	}

	schedules := make([]*schedule.Record, len(models))
	for i, model := range models {
		schedules[i] = fromModel(model)
	}
	return schedules, nil
}

// GetAllByAsset implements schedule.Store.GetAllByAsset
func (s *store) GetAllByAsset(ctx context.Context, asset string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*schedule.Record, error) {
	models, err := dbGetAllByAsset(ctx, s.db, asset, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	schedules := make([]*schedule.Record, len(models))
	for i, model := range models {
		schedules[i] = fromModel(model)
	}
	return schedules, nil
}

// CountByAccount implements schedule.Store.CountByAccount
func (s *store) CountByAccount(ctx context.Context, account string) (uint64, error) {
	return dbCountByAccount(ctx, s.db, account)
}

// SetClaimed implements schedule.Store.SetClaimed
func (s *store) SetClaimed(ctx context.Context, account string, index uint64, newClaimed uint64) error {
	return dbSetClaimed(ctx, s.db, account, index, newClaimed)
}

// ZeroTotal implements schedule.Store.ZeroTotal
func (s *store) ZeroTotal(ctx context.Context, account string, index uint64) error {
	return dbZeroTotal(ctx, s.db, account, index)
}
