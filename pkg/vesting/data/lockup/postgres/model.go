package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/elasticvest/vesting-server/pkg/database/postgres"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
)

const (
	tableName = "elasticvest__core_lockup"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Asset    string `db:"asset"`
	Quantity uint64 `db:"quantity"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func fromModel(obj *model) *lockup.Record {
	return &lockup.Record{
		Id: uint64(obj.Id.Int64),

		Asset:    obj.Asset,
		Quantity: obj.Quantity,

		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func dbGet(ctx context.Context, db *sqlx.DB, asset string) (*model, error) {
	res := &model{}

	query := `SELECT id, asset, quantity, last_updated_at
		FROM ` + tableName + `
		WHERE asset = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, asset)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, lockup.ErrLockupNotFound)
	}
	return res, nil
}

func dbAdd(ctx context.Context, db *sqlx.DB, asset string, delta uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(asset, quantity, last_updated_at)
			VALUES ($1, $2, $3)

			ON CONFLICT (asset)
			DO UPDATE
				SET quantity = ` + tableName + `.quantity + $2, last_updated_at = $3

			RETURNING id, asset, quantity, last_updated_at`

		m := &model{}
		return tx.QueryRowxContext(ctx, query, asset, delta, time.Now().UTC()).StructScan(m)
	})
}

func dbSubtract(ctx context.Context, db *sqlx.DB, asset string, delta uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		// The quantity guard keeps the counter from ever wrapping below zero
		query := `UPDATE ` + tableName + `
			SET quantity = quantity - $2, last_updated_at = $3
			WHERE asset = $1 AND quantity >= $2

			RETURNING id, asset, quantity, last_updated_at`

		m := &model{}
		err := tx.QueryRowxContext(ctx, query, asset, delta, time.Now().UTC()).StructScan(m)
		if pgutil.IsNoRows(err) && delta == 0 {
			return nil
		}

		return pgutil.CheckNoRows(err, lockup.ErrNegativeLockup)
	})
}
