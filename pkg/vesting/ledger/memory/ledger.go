package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/elasticvest/vesting-server/pkg/vesting/ledger"
)

type Ledger struct {
	mu       sync.Mutex
	balances map[string]uint64

	failTransfers bool
}

// New returns an in memory Ledger for testing
func New() *Ledger {
	return &Ledger{
		balances: make(map[string]uint64),
	}
}

func key(holder, asset string) string {
	return fmt.Sprintf("%s:%s", holder, asset)
}

// Mint credits amount of asset to holder out of thin air.
func (l *Ledger) Mint(holder, asset string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[key(holder, asset)] += amount
}

// InduceTransferFailures makes all subsequent non-zero transfers fail until
// StopInducingTransferFailures is called.
func (l *Ledger) InduceTransferFailures() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failTransfers = true
}

func (l *Ledger) StopInducingTransferFailures() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failTransfers = false
}

func (l *Ledger) BalanceOf(_ context.Context, holder, asset string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[key(holder, asset)], nil
}

func (l *Ledger) Transfer(_ context.Context, from, to, asset string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == 0 {
		return nil
	}

	if l.failTransfers {
		return errors.New("transfer rejected")
	}

	fromKey := key(from, asset)
	if l.balances[fromKey] < amount {
		return ledger.ErrInsufficientBalance
	}

	l.balances[fromKey] -= amount
	l.balances[key(to, asset)] += amount

	return nil
}
