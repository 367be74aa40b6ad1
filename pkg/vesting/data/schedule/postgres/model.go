package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/elasticvest/vesting-server/pkg/database/postgres"
	q "github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
)

const (
	tableName = "elasticvest__core_schedule"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Account string `db:"account"`
	Index   uint64 `db:"schedule_index"`

	Asset string `db:"asset"`

	TotalAmount   uint64 `db:"total_amount"`
	ClaimedAmount uint64 `db:"claimed_amount"`

	StartTime uint64 `db:"start_time"`
	CliffTime uint64 `db:"cliff_time"`
	EndTime   uint64 `db:"end_time"`

	IsFixed bool `db:"is_fixed"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *schedule.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Account: obj.Account,
		Index:   obj.Index,

		Asset: obj.Asset,

		TotalAmount:   obj.TotalAmount,
		ClaimedAmount: obj.ClaimedAmount,

		StartTime: obj.StartTime,
		CliffTime: obj.CliffTime,
		EndTime:   obj.EndTime,

		IsFixed: obj.IsFixed,

		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *schedule.Record {
	return &schedule.Record{
		Id: uint64(obj.Id.Int64),

		Account: obj.Account,
		Index:   obj.Index,

		Asset: obj.Asset,

		TotalAmount:   obj.TotalAmount,
		ClaimedAmount: obj.ClaimedAmount,

		StartTime: obj.StartTime,
		CliffTime: obj.CliffTime,
		EndTime:   obj.EndTime,

		IsFixed: obj.IsFixed,

		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbAppend(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelSerializable, func(tx *sqlx.Tx) error {
		// The schedule index is assigned at insert time from the account's
		// current schedule count, keeping per-account indices dense. The
		// unique constraint on (account, schedule_index) guards racing
		// inserts under weaker isolation.
		query := `INSERT INTO ` + tableName + `
			(account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at)
			SELECT $1, COUNT(*), $2, $3, $4, $5, $6, $7, $8, $9 FROM ` + tableName + ` WHERE account = $1

			RETURNING
				id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at`

		m.LastUpdatedAt = time.Now()

		err := tx.QueryRowxContext(
			ctx,
			query,

			m.Account,

			m.Asset,

			m.TotalAmount,
			m.ClaimedAmount,

			m.StartTime,
			m.CliffTime,
			m.EndTime,

			m.IsFixed,

			m.LastUpdatedAt.UTC(),
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, schedule.ErrInvalidSchedule)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, account string, index uint64) (*model, error) {
	res := &model{}

	query := `SELECT
		id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at
		FROM ` + tableName + `
		WHERE account = $1 AND schedule_index = $2
		LIMIT 1`

	err := db.GetContext(ctx, res, query, account, index)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, schedule.ErrScheduleNotFound)
	}
	return res, nil
}

func dbGetAllByAccount(ctx context.Context, db *sqlx.DB, account string) ([]*model, error) {
	res := []*model{}

	query := `SELECT
		id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at
		FROM ` + tableName + `
		WHERE account = $1
		ORDER BY schedule_index ASC`

	err := db.SelectContext(ctx, &res, query, account)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, schedule.ErrScheduleNotFound)
	}

	if len(res) == 0 {
		return nil, schedule.ErrScheduleNotFound
	}
	return res, nil
}

func dbGetAllByAsset(ctx context.Context, db *sqlx.DB, asset string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT
		id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at
		FROM ` + tableName + `
		WHERE (asset = $1)
	`

	opts := []interface{}{asset}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, schedule.ErrScheduleNotFound)
	}

	if len(res) == 0 {
		return nil, schedule.ErrScheduleNotFound
	}
	return res, nil
}

func dbCountByAccount(ctx context.Context, db *sqlx.DB, account string) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + tableName + ` WHERE account = $1`
	err := db.GetContext(ctx, &res, query, account)
	if err != nil {
		return 0, err
	}

	return res, nil
}

func dbSetClaimed(ctx context.Context, db *sqlx.DB, account string, index uint64, newClaimed uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET claimed_amount = $3, last_updated_at = $4
			WHERE account = $1 AND schedule_index = $2

			RETURNING
				id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at`

		m := &model{}
		err := tx.QueryRowxContext(ctx, query, account, index, newClaimed, time.Now().UTC()).StructScan(m)

		return pgutil.CheckNoRows(err, schedule.ErrScheduleNotFound)
	})
}

func dbZeroTotal(ctx context.Context, db *sqlx.DB, account string, index uint64) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET total_amount = 0, last_updated_at = $3
			WHERE account = $1 AND schedule_index = $2

			RETURNING
				id, account, schedule_index, asset, total_amount, claimed_amount, start_time, cliff_time, end_time, is_fixed, last_updated_at`

		m := &model{}
		err := tx.QueryRowxContext(ctx, query, account, index, time.Now().UTC()).StructScan(m)

		return pgutil.CheckNoRows(err, schedule.ErrScheduleNotFound)
	})
}
