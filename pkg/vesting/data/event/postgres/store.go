package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed event.Store
func New(db *sql.DB) event.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements event.Store.Put
func (s *store) Put(ctx context.Context, record *event.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbPut(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// GetAllByAccount implements event.Store.GetAllByAccount
func (s *store) GetAllByAccount(ctx context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	models, err := dbGetAllByAccount(ctx, s.db, account, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	events := make([]*event.Record, len(models))
	for i, model := range models {
		events[i] = fromModel(model)
	}
	return events, nil
}
