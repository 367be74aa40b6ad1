package schedule

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrScheduleNotFound = errors.New("no schedule could be found")
	ErrInvalidSchedule  = errors.New("invalid schedule")
)

// Record is a single vesting schedule for a beneficiary account. Schedules
// are appended at the account's next dense index and are never deleted; a
// cancelled schedule has its total amount zeroed and stays addressable.
type Record struct {
	Id uint64

	Account string
	Index   uint64

	Asset string

	// TotalAmount is fixed at creation and zeroed only by cancellation.
	TotalAmount uint64

	// ClaimedAmount is monotonically non-decreasing and never exceeds
	// TotalAmount.
	ClaimedAmount uint64

	StartTime uint64
	CliffTime uint64
	EndTime   uint64

	IsFixed bool

	LastUpdatedAt time.Time
}

// IsCancelled returns whether the schedule has been cancelled
func (r *Record) IsCancelled() bool {
	return r.TotalAmount == 0
}

// Outstanding returns the unclaimed portion of the schedule's total amount
func (r *Record) Outstanding() uint64 {
	if r.ClaimedAmount >= r.TotalAmount {
		return 0
	}
	return r.TotalAmount - r.ClaimedAmount
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Account: r.Account,
		Index:   r.Index,

		Asset: r.Asset,

		TotalAmount:   r.TotalAmount,
		ClaimedAmount: r.ClaimedAmount,

		StartTime: r.StartTime,
		CliffTime: r.CliffTime,
		EndTime:   r.EndTime,

		IsFixed: r.IsFixed,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Account = r.Account
	dst.Index = r.Index

	dst.Asset = r.Asset

	dst.TotalAmount = r.TotalAmount
	dst.ClaimedAmount = r.ClaimedAmount

	dst.StartTime = r.StartTime
	dst.CliffTime = r.CliffTime
	dst.EndTime = r.EndTime

	dst.IsFixed = r.IsFixed

	dst.LastUpdatedAt = r.LastUpdatedAt
}

func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if len(r.Account) == 0 {
		return errors.New("account is required")
	}

	if len(r.Asset) == 0 {
		return errors.New("asset is required")
	}

	if r.TotalAmount == 0 {
		return errors.New("total amount must be positive")
	}

	if r.ClaimedAmount > r.TotalAmount {
		return errors.New("claimed amount exceeds total amount")
	}

	if r.CliffTime < r.StartTime {
		return errors.New("cliff time is before start time")
	}

	if r.EndTime < r.CliffTime {
		return errors.New("end time is before cliff time")
	}

	// Guards the linear release math against division by zero
	if r.EndTime <= r.StartTime {
		return errors.New("end time must be after start time")
	}

	return nil
}
