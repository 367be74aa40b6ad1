package engine

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/metrics"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

// Claim releases the linearly vested portion of the schedule at
// (account, index) that hasn't been claimed yet and transfers it to the
// account. Callable by the beneficiary itself or by the controller on its
// behalf. Returns the amount transferred, which is zero when nothing new has
// vested since the last claim.
func (e *Engine) Claim(ctx context.Context, caller, account string, index uint64) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Claim")
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method":  "Claim",
		"account": account,
		"index":   index,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != account && caller != e.controller {
		tracer.OnError(ErrUnauthorized)
		return 0, ErrUnauthorized
	}

	record, err := e.data.GetSchedule(ctx, account, index)
	if err != nil {
		tracer.OnError(err)
		return 0, err
	}

	// The cliff is checked first, so pre-cliff claims are reported as such
	// even against a cancelled schedule.
	now := e.nowFunc()
	if uint64(now.Unix()) < record.CliffTime {
		return 0, ErrCliffNotReached
	}

	if record.TotalAmount == 0 {
		return 0, ErrNotClaimable
	}

	releasable := linearRelease(record.TotalAmount, uint64(now.Unix()), record.StartTime, record.EndTime)
	if releasable < record.ClaimedAmount {
		err := errors.Errorf("claimed amount %d exceeds releasable %d", record.ClaimedAmount, releasable)
		log.WithError(err).Error("claim accounting invariant violated")
		tracer.OnError(err)
		return 0, err
	}
	delta := releasable - record.ClaimedAmount

	// Transfer before bookkeeping, so a ledger refusal leaves all state
	// untouched. Zero deltas still go through as no-op transfers.
	if err := e.ledger.Transfer(ctx, e.address, account, record.Asset, delta); err != nil {
		log.WithError(err).Warn("asset ledger refused claim transfer")
		tracer.OnError(err)
		return 0, errors.Wrap(ErrTransferFailed, err.Error())
	}

	err = e.data.ExecuteInTx(ctx, sql.LevelDefault, func(ctx context.Context) error {
		if err := e.data.SetScheduleClaimed(ctx, account, index, releasable); err != nil {
			return err
		}

		if err := e.data.SubtractFromLockup(ctx, record.Asset, delta); err != nil {
			return err
		}

		return e.data.PutEvent(ctx, &event.Record{
			Kind:      event.KindClaim,
			Account:   account,
			Asset:     record.Asset,
			Quantity:  releasable,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.WithError(err).Warn("failure committing claim")
		tracer.OnError(err)
		return 0, err
	}

	recordOperationEvent(ctx, "claim", account, record.Asset, delta)

	log.WithField("delta", delta).Debug("claim released")
	return delta, nil
}
