package engine

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/metrics"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

// Cancel permanently retires the schedule at (account, index), moving its
// outstanding amount to the treasury. The record stays addressable but inert;
// claims against it fail from then on. Returns the amount reclaimed.
func (e *Engine) Cancel(ctx context.Context, caller, account string, index uint64) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Cancel")
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method":  "Cancel",
		"account": account,
		"index":   index,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		tracer.OnError(err)
		return 0, err
	}

	record, err := e.data.GetSchedule(ctx, account, index)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	if record.IsFixed {
		return 0, ErrFixedSchedule
	}

	outstanding := record.Outstanding()
	if outstanding == 0 {
		return 0, ErrNothingOutstanding
	}

	if err := e.ledger.Transfer(ctx, e.address, e.treasury(ctx), record.Asset, outstanding); err != nil {
		log.WithError(err).Warn("asset ledger refused cancellation transfer")
		tracer.OnError(err)
		return 0, errors.Wrap(ErrTransferFailed, err.Error())
	}

	err = e.data.ExecuteInTx(ctx, sql.LevelDefault, func(ctx context.Context) error {
		if err := e.data.ZeroScheduleTotal(ctx, account, index); err != nil {
			return err
		}

		if err := e.data.SubtractFromLockup(ctx, record.Asset, outstanding); err != nil {
			return err
		}

		return e.data.PutEvent(ctx, &event.Record{
			Kind:      event.KindCancel,
			Account:   account,
			Asset:     record.Asset,
			Quantity:  outstanding,
			CreatedAt: e.nowFunc(),
		})
	})
	if err != nil {
		log.WithError(err).Warn("failure committing cancellation")
		tracer.OnError(err)
		return 0, err
	}

	recordOperationEvent(ctx, "cancel", account, record.Asset, outstanding)

	log.WithField("outstanding", outstanding).Debug("schedule cancelled")
	return outstanding, nil
}
