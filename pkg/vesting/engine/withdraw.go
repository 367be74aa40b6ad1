package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/metrics"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

// Withdraw moves amount of asset from the engine's custody to the treasury.
// Only the surplus above the locked amount is ever withdrawable; locked funds
// are unreachable here no matter what, as the last line of defense for
// vesting solvency.
func (e *Engine) Withdraw(ctx context.Context, caller string, amount uint64, asset string) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Withdraw")
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method": "Withdraw",
		"asset":  asset,
		"amount": amount,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		tracer.OnError(err)
		return err
	}

	locked, err := e.getLocked(ctx, asset)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	balance, err := e.ledger.BalanceOf(ctx, e.address, asset)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	if balance < locked || balance-locked < amount {
		return ErrInsufficientUnlocked
	}

	treasury := e.treasury(ctx)
	if err := e.ledger.Transfer(ctx, e.address, treasury, asset, amount); err != nil {
		log.WithError(err).Warn("asset ledger refused withdrawal transfer")
		tracer.OnError(err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	err = e.data.PutEvent(ctx, &event.Record{
		Kind:      event.KindWithdraw,
		Account:   treasury,
		Asset:     asset,
		Quantity:  amount,
		CreatedAt: e.nowFunc(),
	})
	if err != nil {
		log.WithError(err).Warn("failure recording withdrawal event")
		tracer.OnError(err)
		return err
	}

	recordOperationEvent(ctx, "withdraw", treasury, asset, amount)

	log.Debug("withdrawal complete")
	return nil
}
