package ledger

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Ledger is the external token ledger holding the balances the vesting engine
// locks and releases. Implementations must apply Transfer atomically, so a
// returned error implies no balance movement.
type Ledger interface {
	// BalanceOf returns the spendable balance held by holder for asset.
	BalanceOf(ctx context.Context, holder, asset string) (uint64, error)

	// Transfer moves amount of asset from one holder to another. A zero
	// amount transfer always succeeds without side effects.
	Transfer(ctx context.Context, from, to, asset string, amount uint64) error
}
