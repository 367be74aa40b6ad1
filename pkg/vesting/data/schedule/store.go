package schedule

import (
	"context"

	"github.com/elasticvest/vesting-server/pkg/database/query"
)

type Store interface {
	// Append inserts a new schedule at the account's next index. The record's
	// Index is assigned by the store; per-account indices are dense and never
	// reused.
	Append(ctx context.Context, record *Record) error

	// Get gets an account's schedule by its index. ErrScheduleNotFound is
	// returned if the index hasn't been assigned for the account.
	Get(ctx context.Context, account string, index uint64) (*Record, error)

	// GetAllByAccount gets all of an account's schedules, ordered by index
	// ascending. ErrScheduleNotFound is returned if the account has none.
	GetAllByAccount(ctx context.Context, account string) ([]*Record, error)

	// GetAllByAsset gets all schedules releasing the provided asset
	GetAllByAsset(ctx context.Context, asset string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// CountByAccount gets the number of schedules created for an account
	CountByAccount(ctx context.Context, account string) (uint64, error)

	// SetClaimed overwrites the claimed amount for an account's schedule.
	// Callers guarantee the new value is a monotonic non-decrease.
	SetClaimed(ctx context.Context, account string, index uint64, newClaimed uint64) error

	// ZeroTotal zeroes the total amount for an account's schedule. This is
	// the cancellation primitive; callers guarantee the schedule is not
	// fixed and not already cancelled.
	ZeroTotal(ctx context.Context, account string, index uint64) error
}
