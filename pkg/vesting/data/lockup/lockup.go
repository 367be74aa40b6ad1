package lockup

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrLockupNotFound = errors.New("no lockup could be found")
	ErrInvalidLockup  = errors.New("invalid lockup")

	// ErrNegativeLockup indicates a subtraction would take the locked
	// balance below zero. This is an accounting invariant violation, not
	// a user error.
	ErrNegativeLockup = errors.New("locked balance would go negative")
)

// Record is the aggregate locked balance for an asset: the sum of all
// outstanding (unclaimed) committed amounts across the asset's live
// schedules. The locked balance must never exceed the engine's custodial
// balance on the asset ledger.
type Record struct {
	Id uint64

	Asset    string
	Quantity uint64

	LastUpdatedAt time.Time
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Asset:    r.Asset,
		Quantity: r.Quantity,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Asset = r.Asset
	dst.Quantity = r.Quantity

	dst.LastUpdatedAt = r.LastUpdatedAt
}

func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if len(r.Asset) == 0 {
		return errors.New("asset is required")
	}

	return nil
}
