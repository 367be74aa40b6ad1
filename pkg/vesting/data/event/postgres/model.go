package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/elasticvest/vesting-server/pkg/database/postgres"
	q "github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

const (
	tableName = "elasticvest__core_vestingevent"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Kind uint `db:"kind"`

	Account string `db:"account"`
	Asset   string `db:"asset"`

	Quantity uint64 `db:"quantity"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *event.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Kind: uint(obj.Kind),

		Account: obj.Account,
		Asset:   obj.Asset,

		Quantity: obj.Quantity,

		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromModel(obj *model) *event.Record {
	return &event.Record{
		Id: uint64(obj.Id.Int64),

		Kind: event.Kind(obj.Kind),

		Account: obj.Account,
		Asset:   obj.Asset,

		Quantity: obj.Quantity,

		CreatedAt: obj.CreatedAt,
	}
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(kind, account, asset, quantity, created_at)
			VALUES ($1, $2, $3, $4, $5)

			RETURNING id, kind, account, asset, quantity, created_at`

		m.CreatedAt = time.Now()

		return tx.QueryRowxContext(
			ctx,
			query,

			m.Kind,

			m.Account,
			m.Asset,

			m.Quantity,

			m.CreatedAt.UTC(),
		).StructScan(m)
	})
}

func dbGetAllByAccount(ctx context.Context, db *sqlx.DB, account string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, kind, account, asset, quantity, created_at
		FROM ` + tableName + `
		WHERE (account = $1)
	`

	opts := []interface{}{account}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, event.ErrEventNotFound)
	}

	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}
	return res, nil
}
