package engine

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned when the caller isn't allowed to perform
	// the requested operation
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrVestingInactive is returned when vesting is toggled off and a new
	// schedule is being created
	ErrVestingInactive = errors.New("vesting is inactive")

	// ErrInvalidParams is returned when schedule parameters are malformed
	ErrInvalidParams = errors.New("invalid vesting params set")

	// ErrInsufficientUnlockedSupply is returned when a new schedule would
	// lock more than the engine's unlocked custody balance
	ErrInsufficientUnlockedSupply = errors.New("insufficient unlocked supply")

	// ErrLengthMismatch is returned when batch argument slices differ in length
	ErrLengthMismatch = errors.New("accounts and amounts length mismatch")

	// ErrCliffNotReached is returned when claiming before the cliff
	ErrCliffNotReached = errors.New("cliff not reached")

	// ErrNotClaimable is returned when claiming against a zeroed or
	// cancelled schedule
	ErrNotClaimable = errors.New("schedule is not claimable")

	// ErrFixedSchedule is returned when cancelling a fixed schedule
	ErrFixedSchedule = errors.New("schedule is fixed")

	// ErrNothingOutstanding is returned when cancelling a fully claimed or
	// already cancelled schedule
	ErrNothingOutstanding = errors.New("nothing outstanding")

	// ErrInsufficientUnlocked is returned when a withdrawal exceeds the
	// unlocked surplus
	ErrInsufficientUnlocked = errors.New("insufficient unlocked balance")

	// ErrTransferFailed is returned when the asset ledger refuses a transfer
	ErrTransferFailed = errors.New("asset ledger transfer failed")
)
