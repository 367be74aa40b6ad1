package engine

import (
	"context"
	"database/sql"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/metrics"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
)

// Vest creates a new schedule for account, reserving amount of asset out of
// the engine's custody balance. No transfer happens here; the tokens must
// already be held by the engine.
func (e *Engine) Vest(
	ctx context.Context,
	caller string,
	account string,
	amount uint64,
	asset string,
	isFixed bool,
	cliffWeeks uint64,
	vestingWeeks uint64,
	startTime uint64,
) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Vest")
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method":  "Vest",
		"account": account,
		"asset":   asset,
		"amount":  amount,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		tracer.OnError(err)
		return err
	}

	if !e.vestingEnabled(ctx) {
		return ErrVestingInactive
	}

	if err := validateVestingParams(account, amount, asset, cliffWeeks, vestingWeeks, startTime); err != nil {
		return err
	}

	if err := e.checkUnlockedSupply(ctx, asset, amount); err != nil {
		tracer.OnError(err)
		return err
	}

	err := e.data.ExecuteInTx(ctx, sql.LevelSerializable, func(ctx context.Context) error {
		return e.applyVest(ctx, account, amount, asset, isFixed, cliffWeeks, vestingWeeks, startTime)
	})
	if err != nil {
		log.WithError(err).Warn("failure creating schedule")
		tracer.OnError(err)
		return err
	}

	recordOperationEvent(ctx, "vest", account, asset, amount)

	log.Debug("schedule created")
	return nil
}

// MultiVest creates one schedule per (account, amount) pair, sharing the
// remaining parameters. All or nothing: a single invalid pair or a combined
// solvency failure leaves no schedule created and the lockup untouched.
func (e *Engine) MultiVest(
	ctx context.Context,
	caller string,
	accounts []string,
	amounts []uint64,
	asset string,
	isFixed bool,
	cliffWeeks uint64,
	vestingWeeks uint64,
	startTime uint64,
) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MultiVest")
	defer tracer.End()

	log := e.log.WithFields(logrus.Fields{
		"method": "MultiVest",
		"asset":  asset,
		"count":  len(accounts),
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		tracer.OnError(err)
		return err
	}

	if len(accounts) != len(amounts) {
		return ErrLengthMismatch
	}

	if !e.vestingEnabled(ctx) {
		return ErrVestingInactive
	}

	var total uint64
	for i, account := range accounts {
		if err := validateVestingParams(account, amounts[i], asset, cliffWeeks, vestingWeeks, startTime); err != nil {
			return err
		}

		if total > math.MaxUint64-amounts[i] {
			return ErrInvalidParams
		}
		total += amounts[i]
	}

	if err := e.checkUnlockedSupply(ctx, asset, total); err != nil {
		tracer.OnError(err)
		return err
	}

	err := e.data.ExecuteInTx(ctx, sql.LevelSerializable, func(ctx context.Context) error {
		for i, account := range accounts {
			if err := e.applyVest(ctx, account, amounts[i], asset, isFixed, cliffWeeks, vestingWeeks, startTime); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("failure creating schedule batch")
		tracer.OnError(err)
		return err
	}

	for i, account := range accounts {
		recordOperationEvent(ctx, "vest", account, asset, amounts[i])
	}

	log.Debug("schedule batch created")
	return nil
}

func validateVestingParams(account string, amount uint64, asset string, cliffWeeks, vestingWeeks, startTime uint64) error {
	if len(account) == 0 || len(asset) == 0 {
		return ErrInvalidParams
	}
	if amount == 0 {
		return ErrInvalidParams
	}
	if vestingWeeks == 0 || vestingWeeks < cliffWeeks {
		return ErrInvalidParams
	}

	// The end time must not wrap around
	if vestingWeeks > math.MaxUint64/WeekSeconds {
		return ErrInvalidParams
	}
	if startTime > math.MaxUint64-vestingWeeks*WeekSeconds {
		return ErrInvalidParams
	}

	return nil
}

// checkUnlockedSupply enforces locked(asset) + amount ≤ custody balance.
// Callers hold e.mu, so the read is stable until the operation commits.
func (e *Engine) checkUnlockedSupply(ctx context.Context, asset string, amount uint64) error {
	locked, err := e.getLocked(ctx, asset)
	if err != nil {
		return err
	}

	balance, err := e.ledger.BalanceOf(ctx, e.address, asset)
	if err != nil {
		return err
	}

	if locked > math.MaxUint64-amount || locked+amount > balance {
		return ErrInsufficientUnlockedSupply
	}
	return nil
}

func (e *Engine) applyVest(
	ctx context.Context,
	account string,
	amount uint64,
	asset string,
	isFixed bool,
	cliffWeeks uint64,
	vestingWeeks uint64,
	startTime uint64,
) error {
	record := &schedule.Record{
		Account:     account,
		Asset:       asset,
		TotalAmount: amount,
		StartTime:   startTime,
		CliffTime:   startTime + cliffWeeks*WeekSeconds,
		EndTime:     startTime + vestingWeeks*WeekSeconds,
		IsFixed:     isFixed,
	}

	if err := e.data.AppendSchedule(ctx, record); err != nil {
		return err
	}

	if err := e.data.AddToLockup(ctx, asset, amount); err != nil {
		return err
	}

	return e.data.PutEvent(ctx, &event.Record{
		Kind:      event.KindVest,
		Account:   account,
		Asset:     asset,
		Quantity:  amount,
		CreatedAt: e.nowFunc(),
	})
}
