package event

import (
	"context"

	"github.com/elasticvest/vesting-server/pkg/database/query"
)

type Store interface {
	// Put inserts a new audit event
	Put(ctx context.Context, record *Record) error

	// GetAllByAccount gets all audit events for an account
	GetAllByAccount(ctx context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)
}
