package event

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrEventNotFound = errors.New("no events could be found")
	ErrInvalidEvent  = errors.New("invalid event")
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindVest
	KindClaim
	KindCancel
	KindWithdraw
)

func (k Kind) String() string {
	switch k {
	case KindVest:
		return "vest"
	case KindClaim:
		return "claim"
	case KindCancel:
		return "cancel"
	case KindWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// Record is an append-only audit entry for a vesting operation's outcome.
// Events are written in the same logical operation as the state change they
// describe.
type Record struct {
	Id uint64

	Kind Kind

	Account string
	Asset   string

	// Quantity is the amount the operation reported: the vested amount for
	// vest events, the cumulative claimed amount for claim events, and the
	// returned outstanding amount for cancel and withdraw events.
	Quantity uint64

	CreatedAt time.Time
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Kind: r.Kind,

		Account: r.Account,
		Asset:   r.Asset,

		Quantity: r.Quantity,

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Kind = r.Kind

	dst.Account = r.Account
	dst.Asset = r.Asset

	dst.Quantity = r.Quantity

	dst.CreatedAt = r.CreatedAt
}

func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if r.Kind == KindUnknown {
		return errors.New("event kind is required")
	}

	if len(r.Account) == 0 {
		return errors.New("account is required")
	}

	if len(r.Asset) == 0 {
		return errors.New("asset is required")
	}

	return nil
}
