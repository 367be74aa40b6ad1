package lockup

import "context"

type Store interface {
	// Get gets an asset's locked balance record. ErrLockupNotFound is
	// returned if the asset has never had a locked balance; callers treat
	// that as a zero balance.
	Get(ctx context.Context, asset string) (*Record, error)

	// Add increments an asset's locked balance, creating the record if it
	// doesn't exist.
	Add(ctx context.Context, asset string, delta uint64) error

	// Subtract decrements an asset's locked balance. ErrNegativeLockup is
	// returned if the balance would go below zero.
	Subtract(ctx context.Context, asset string, delta uint64) error
}
