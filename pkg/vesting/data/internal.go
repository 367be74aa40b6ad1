package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	pg "github.com/elasticvest/vesting-server/pkg/database/postgres"
	"github.com/elasticvest/vesting-server/pkg/database/query"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"

	event_memory_client "github.com/elasticvest/vesting-server/pkg/vesting/data/event/memory"
	lockup_memory_client "github.com/elasticvest/vesting-server/pkg/vesting/data/lockup/memory"
	schedule_memory_client "github.com/elasticvest/vesting-server/pkg/vesting/data/schedule/memory"

	event_postgres_client "github.com/elasticvest/vesting-server/pkg/vesting/data/event/postgres"
	lockup_postgres_client "github.com/elasticvest/vesting-server/pkg/vesting/data/lockup/postgres"
	schedule_postgres_client "github.com/elasticvest/vesting-server/pkg/vesting/data/schedule/postgres"
)

// Provider is the aggregated data layer consumed by the vesting engine. It
// owns one store per entity; no other component may mutate vesting state.
type Provider interface {
	// Schedules
	// --------------------------------------------------------------------------------
	AppendSchedule(ctx context.Context, record *schedule.Record) error
	GetSchedule(ctx context.Context, account string, index uint64) (*schedule.Record, error)
	GetAllSchedulesByAccount(ctx context.Context, account string) ([]*schedule.Record, error)
	GetAllSchedulesByAsset(ctx context.Context, asset string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*schedule.Record, error)
	GetScheduleCountByAccount(ctx context.Context, account string) (uint64, error)
	SetScheduleClaimed(ctx context.Context, account string, index uint64, newClaimed uint64) error
	ZeroScheduleTotal(ctx context.Context, account string, index uint64) error

	// Lockups
	// --------------------------------------------------------------------------------
	GetLockup(ctx context.Context, asset string) (*lockup.Record, error)
	AddToLockup(ctx context.Context, asset string, delta uint64) error
	SubtractFromLockup(ctx context.Context, asset string, delta uint64) error

	// Events
	// --------------------------------------------------------------------------------
	PutEvent(ctx context.Context, record *event.Record) error
	GetAllEventsByAccount(ctx context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error)

	// ExecuteInTx executes fn with all store operations scoped to a single DB
	// transaction, which is committed or rolled back based on whether fn
	// returns an error. The memory-backed provider executes fn directly.
	ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error
}

type DatabaseProvider struct {
	schedules schedule.Store
	lockups   lockup.Store
	events    event.Store

	db *sqlx.DB
}

// NewDatabaseProvider returns a postgres-backed Provider
func NewDatabaseProvider(dbConfig *pg.Config) (Provider, error) {
	db, err := pg.New(dbConfig)
	if err != nil {
		return nil, err
	}

	return &DatabaseProvider{
		schedules: schedule_postgres_client.New(db),
		lockups:   lockup_postgres_client.New(db),
		events:    event_postgres_client.New(db),

		db: sqlx.NewDb(db, "pgx"),
	}, nil
}

// NewTestDatabaseProvider returns an in memory Provider for testing
func NewTestDatabaseProvider() Provider {
	return &DatabaseProvider{
		schedules: schedule_memory_client.New(),
		lockups:   lockup_memory_client.New(),
		events:    event_memory_client.New(),
	}
}

func (dp *DatabaseProvider) ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error {
	if dp.db == nil {
		return fn(ctx)
	}

	return pg.ExecuteTxWithinCtx(ctx, dp.db, isolation, fn)
}

// Schedules
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) AppendSchedule(ctx context.Context, record *schedule.Record) error {
	return dp.schedules.Append(ctx, record)
}
func (dp *DatabaseProvider) GetSchedule(ctx context.Context, account string, index uint64) (*schedule.Record, error) {
	return dp.schedules.Get(ctx, account, index)
}
func (dp *DatabaseProvider) GetAllSchedulesByAccount(ctx context.Context, account string) ([]*schedule.Record, error) {
	return dp.schedules.GetAllByAccount(ctx, account)
}
func (dp *DatabaseProvider) GetAllSchedulesByAsset(ctx context.Context, asset string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*schedule.Record, error) {
	return dp.schedules.GetAllByAsset(ctx, asset, cursor, limit, direction)
}
func (dp *DatabaseProvider) GetScheduleCountByAccount(ctx context.Context, account string) (uint64, error) {
	return dp.schedules.CountByAccount(ctx, account)
}
func (dp *DatabaseProvider) SetScheduleClaimed(ctx context.Context, account string, index uint64, newClaimed uint64) error {
	return dp.schedules.SetClaimed(ctx, account, index, newClaimed)
}
func (dp *DatabaseProvider) ZeroScheduleTotal(ctx context.Context, account string, index uint64) error {
	return dp.schedules.ZeroTotal(ctx, account, index)
}

// Lockups
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) GetLockup(ctx context.Context, asset string) (*lockup.Record, error) {
	return dp.lockups.Get(ctx, asset)
}
func (dp *DatabaseProvider) AddToLockup(ctx context.Context, asset string, delta uint64) error {
	return dp.lockups.Add(ctx, asset, delta)
}
func (dp *DatabaseProvider) SubtractFromLockup(ctx context.Context, asset string, delta uint64) error {
	return dp.lockups.Subtract(ctx, asset, delta)
}

// Events
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) PutEvent(ctx context.Context, record *event.Record) error {
	return dp.events.Put(ctx, record)
}
func (dp *DatabaseProvider) GetAllEventsByAccount(ctx context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	return dp.events.GetAllByAccount(ctx, account, cursor, limit, direction)
}
