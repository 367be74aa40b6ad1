package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/metrics"
	"github.com/elasticvest/vesting-server/pkg/vesting/data"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
	"github.com/elasticvest/vesting-server/pkg/vesting/ledger"
)

// Status determines whether new schedules can be created
type Status uint8

const (
	StatusActive Status = iota
	StatusInactive
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	}
	return "unknown"
}

// Summary is the compact per-schedule view exposed to callers and UIs.
// Times are unix seconds.
type Summary struct {
	Index     uint64
	CliffTime uint64
	EndTime   uint64
}

// Engine owns all vesting state transitions. Every mutating operation is
// serialized under a single mutex, and its bookkeeping commits in one data
// provider transaction. The engine exclusively owns the schedule and lockup
// stores; nothing else may write to them.
type Engine struct {
	log  *logrus.Entry
	conf *conf

	data   data.Provider
	ledger ledger.Ledger

	// address is the ledger holder whose custody balance backs all
	// locked amounts
	address    string
	controller string

	status Status

	mu sync.Mutex

	nowFunc func() time.Time
}

func New(
	data data.Provider,
	assetLedger ledger.Ledger,
	address string,
	controller string,
	configProvider ConfigProvider,
) *Engine {
	return &Engine{
		log:        logrus.StandardLogger().WithField("type", "vesting/engine"),
		conf:       configProvider(),
		data:       data,
		ledger:     assetLedger,
		address:    address,
		controller: controller,
		status:     StatusActive,
		nowFunc:    time.Now,
	}
}

// requireController assumes e.mu is held, since control is transferable.
func (e *Engine) requireController(caller string) error {
	if caller != e.controller {
		return ErrUnauthorized
	}
	return nil
}

// treasury is where cancelled and withdrawn funds land. Falls back to the
// controller when unconfigured.
func (e *Engine) treasury(ctx context.Context) string {
	address, err := e.conf.treasuryAddress.GetSafe(ctx)
	if err != nil || len(address) == 0 {
		return e.controller
	}
	return address
}

// SetStatus toggles whether new schedules can be created. Claims against
// existing schedules are never gated.
func (e *Engine) SetStatus(ctx context.Context, caller string, status Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"method": "SetStatus",
		"status": status.String(),
	}).Debug("updating vesting status")

	e.status = status
	return nil
}

func (e *Engine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

// TransferControl hands the controller role to a new principal.
func (e *Engine) TransferControl(ctx context.Context, caller, newController string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireController(caller); err != nil {
		return err
	}
	if len(newController) == 0 {
		return ErrInvalidParams
	}

	e.log.WithFields(logrus.Fields{
		"method":         "TransferControl",
		"new_controller": newController,
	}).Debug("transferring control")

	e.controller = newController
	return nil
}

// vestingEnabled consults the dynamic kill switch on top of the status flag.
func (e *Engine) vestingEnabled(ctx context.Context) bool {
	disabled, err := e.conf.disableVesting.GetSafe(ctx)
	if err == nil && disabled {
		return false
	}
	return e.status == StatusActive
}

// GetScheduleSummaries returns (index, cliff, end) for every schedule owned
// by account, ascending by index. Accounts with no schedules get an empty
// slice.
func (e *Engine) GetScheduleSummaries(ctx context.Context, account string) ([]*Summary, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetScheduleSummaries")
	defer tracer.End()

	records, err := e.data.GetAllSchedulesByAccount(ctx, account)
	if err == schedule.ErrScheduleNotFound {
		return []*Summary{}, nil
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	summaries := make([]*Summary, len(records))
	for i, record := range records {
		summaries[i] = &Summary{
			Index:     record.Index,
			CliffTime: record.CliffTime,
			EndTime:   record.EndTime,
		}
	}
	return summaries, nil
}

// GetSchedule returns the full schedule record at (account, index).
func (e *Engine) GetSchedule(ctx context.Context, account string, index uint64) (*schedule.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetSchedule")
	defer tracer.End()

	record, err := e.data.GetSchedule(ctx, account, index)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return record, nil
}

// GetLocked returns the total outstanding amount reserved for vesting in
// asset. Unknown assets report zero.
func (e *Engine) GetLocked(ctx context.Context, asset string) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetLocked")
	defer tracer.End()

	return e.getLocked(ctx, asset)
}

// GetEvents returns the audit trail for account, paginated.
func (e *Engine) GetEvents(ctx context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetEvents")
	defer tracer.End()

	records, err := e.data.GetAllEventsByAccount(ctx, account, cursor, limit, direction)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return records, nil
}

func (e *Engine) getLocked(ctx context.Context, asset string) (uint64, error) {
	record, err := e.data.GetLockup(ctx, asset)
	if err == lockup.ErrLockupNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return record.Quantity, nil
}
