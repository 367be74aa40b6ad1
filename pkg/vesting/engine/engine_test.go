package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
	ledger_memory "github.com/elasticvest/vesting-server/pkg/vesting/ledger/memory"

	// Silences engine logging during tests unless run verbosely
	_ "github.com/elasticvest/vesting-server/pkg/testutil"
)

const (
	testEngineAddress = "vault1"
	testController    = "controller1"
	testTreasury      = "treasury1"
	testAsset         = "tokenA"
	testOtherAsset    = "tokenB"
	testAccount       = "alice"
	testOtherAccount  = "bob"

	testStartTime uint64 = 1_000_000
)

type testEnv struct {
	ctx    context.Context
	data   data.Provider
	ledger *ledger_memory.Ledger
	engine *Engine
}

func setup(t *testing.T) *testEnv {
	provider := data.NewTestDatabaseProvider()
	assetLedger := ledger_memory.New()

	engine := New(
		provider,
		assetLedger,
		testEngineAddress,
		testController,
		withManualTestOverrides(&testOverrides{
			treasuryAddress: testTreasury,
		}),
	)

	return &testEnv{
		ctx:    context.Background(),
		data:   provider,
		ledger: assetLedger,
		engine: engine,
	}
}

// setNow pins the engine clock to ts (unix seconds)
func (env *testEnv) setNow(ts uint64) {
	env.engine.nowFunc = func() time.Time {
		return time.Unix(int64(ts), 0)
	}
}

func (env *testEnv) assertSolvent(t *testing.T, asset string) {
	locked, err := env.engine.GetLocked(env.ctx, asset)
	require.NoError(t, err)

	balance, err := env.ledger.BalanceOf(env.ctx, testEngineAddress, asset)
	require.NoError(t, err)

	assert.LessOrEqual(t, locked, balance)
}

func TestVest_HappyPath(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 600, testAsset, false, 1, 4, testStartTime))

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.Equal(t, testAccount, record.Account)
	assert.Equal(t, testAsset, record.Asset)
	assert.EqualValues(t, 600, record.TotalAmount)
	assert.EqualValues(t, 0, record.ClaimedAmount)
	assert.Equal(t, testStartTime, record.StartTime)
	assert.Equal(t, testStartTime+WeekSeconds, record.CliffTime)
	assert.Equal(t, testStartTime+4*WeekSeconds, record.EndTime)
	assert.False(t, record.IsFixed)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 600, locked)

	env.assertSolvent(t, testAsset)

	// Second schedule lands at the next index
	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 300, testAsset, true, 0, 2, testStartTime))

	record, err = env.engine.GetSchedule(env.ctx, testAccount, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 300, record.TotalAmount)
	assert.True(t, record.IsFixed)

	locked, err = env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 900, locked)
}

func TestVest_InvalidParams(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	for _, tc := range []struct {
		account      string
		amount       uint64
		asset        string
		cliffWeeks   uint64
		vestingWeeks uint64
	}{
		{testAccount, 0, testAsset, 1, 4},   // zero amount
		{testAccount, 100, testAsset, 1, 0}, // zero vesting period
		{testAccount, 100, testAsset, 5, 4}, // cliff beyond vesting period
		{"", 100, testAsset, 1, 4},          // missing account
		{testAccount, 100, "", 1, 4},        // missing asset
	} {
		err := env.engine.Vest(env.ctx, testController, tc.account, tc.amount, tc.asset, false, tc.cliffWeeks, tc.vestingWeeks, testStartTime)
		assert.Equal(t, ErrInvalidParams, err)
	}

	// Parameters whose end time would wrap around are rejected up front
	err := env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 0, math.MaxUint64, testStartTime)
	assert.Equal(t, ErrInvalidParams, err)

	err = env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 0, 1, math.MaxUint64-WeekSeconds+1)
	assert.Equal(t, ErrInvalidParams, err)

	_, err = env.engine.GetSchedule(env.ctx, testAccount, 0)
	assert.Equal(t, schedule.ErrScheduleNotFound, err)
}

func TestVest_Unauthorized(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	err := env.engine.Vest(env.ctx, testAccount, testAccount, 100, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrUnauthorized, err)
}

func TestVest_InsufficientUnlockedSupply(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 500)

	err := env.engine.Vest(env.ctx, testController, testAccount, 600, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrInsufficientUnlockedSupply, err)

	// The full balance can be locked exactly
	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 500, testAsset, false, 1, 4, testStartTime))

	// But nothing beyond it, even a single unit
	err = env.engine.Vest(env.ctx, testController, testOtherAccount, 1, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrInsufficientUnlockedSupply, err)

	// A different asset has its own supply
	env.ledger.Mint(testEngineAddress, testOtherAsset, 100)
	require.NoError(t, env.engine.Vest(env.ctx, testController, testOtherAccount, 100, testOtherAsset, false, 1, 4, testStartTime))

	env.assertSolvent(t, testAsset)
	env.assertSolvent(t, testOtherAsset)
}

func TestVest_StatusGating(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	assert.Equal(t, ErrUnauthorized, env.engine.SetStatus(env.ctx, testAccount, StatusInactive))
	require.NoError(t, env.engine.SetStatus(env.ctx, testController, StatusInactive))
	assert.Equal(t, StatusInactive, env.engine.GetStatus())

	err := env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 0, 4, testStartTime)
	assert.Equal(t, ErrVestingInactive, err)

	err = env.engine.MultiVest(env.ctx, testController, []string{testAccount}, []uint64{100}, testAsset, false, 0, 4, testStartTime)
	assert.Equal(t, ErrVestingInactive, err)

	require.NoError(t, env.engine.SetStatus(env.ctx, testController, StatusActive))
	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 0, 4, testStartTime))

	// Claims are never gated by status
	require.NoError(t, env.engine.SetStatus(env.ctx, testController, StatusInactive))
	env.setNow(testStartTime + 4*WeekSeconds)

	delta, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 100, delta)
}

func TestVest_DisabledByConfig(t *testing.T) {
	provider := data.NewTestDatabaseProvider()
	assetLedger := ledger_memory.New()
	assetLedger.Mint(testEngineAddress, testAsset, 1000)

	engine := New(provider, assetLedger, testEngineAddress, testController, withManualTestOverrides(&testOverrides{
		disableVesting:  true,
		treasuryAddress: testTreasury,
	}))

	err := engine.Vest(context.Background(), testController, testAccount, 100, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrVestingInactive, err)
}

func TestMultiVest_HappyPath(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	accounts := []string{testAccount, testOtherAccount, testAccount}
	amounts := []uint64{300, 200, 100}

	require.NoError(t, env.engine.MultiVest(env.ctx, testController, accounts, amounts, testAsset, false, 1, 4, testStartTime))

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 600, locked)

	count, err := env.data.GetScheduleCountByAccount(env.ctx, testAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 100, record.TotalAmount)

	record, err = env.engine.GetSchedule(env.ctx, testOtherAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 200, record.TotalAmount)

	env.assertSolvent(t, testAsset)
}

func TestMultiVest_LengthMismatch(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	err := env.engine.MultiVest(env.ctx, testController, []string{testAccount, testOtherAccount}, []uint64{100}, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrLengthMismatch, err)
}

func TestMultiVest_Atomicity(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	// Funding the second schedule would exceed custody, so neither may exist
	err := env.engine.MultiVest(env.ctx, testController, []string{testAccount, testOtherAccount}, []uint64{600, 600}, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrInsufficientUnlockedSupply, err)

	for _, account := range []string{testAccount, testOtherAccount} {
		count, err := env.data.GetScheduleCountByAccount(env.ctx, account)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	}

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 0, locked)

	// An invalid pair mid-batch also rejects the whole batch
	err = env.engine.MultiVest(env.ctx, testController, []string{testAccount, ""}, []uint64{100, 100}, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrInvalidParams, err)

	count, err := env.data.GetScheduleCountByAccount(env.ctx, testAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestClaim_CliffGating(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	for _, offset := range []uint64{0, 1, WeekSeconds - 1} {
		env.setNow(testStartTime + offset)

		_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
		assert.Equal(t, ErrCliffNotReached, err)
	}

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, record.ClaimedAmount)
}

func TestClaim_CliffGatingAfterCancel(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	_, err := env.engine.Cancel(env.ctx, testController, testAccount, 0)
	require.NoError(t, err)

	// The cliff is reported first, even for a cancelled schedule
	env.setNow(testStartTime)

	_, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	assert.Equal(t, ErrCliffNotReached, err)

	// Past the cliff the cancellation takes over
	env.setNow(testStartTime + WeekSeconds)

	_, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	assert.Equal(t, ErrNotClaimable, err)
}

func TestClaim_LinearRelease(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	// At the cliff, a quarter of the vesting period has elapsed
	env.setNow(testStartTime + WeekSeconds)

	delta, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 175, delta)

	balance, err := env.ledger.BalanceOf(env.ctx, testAccount, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 175, balance)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 525, locked)

	env.assertSolvent(t, testAsset)

	// Halfway through only the new portion is transferred
	env.setNow(testStartTime + 2*WeekSeconds)

	delta, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 175, delta)

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 350, record.ClaimedAmount)

	// Past the end the remainder is released and capped
	env.setNow(testStartTime + 10*WeekSeconds)

	delta, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 350, delta)

	record, err = env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 700, record.ClaimedAmount)

	balance, err = env.ledger.BalanceOf(env.ctx, testAccount, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 700, balance)

	locked, err = env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 0, locked)

	env.assertSolvent(t, testAsset)
}

func TestClaim_IdempotentZeroClaim(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	env.setNow(testStartTime + 2*WeekSeconds)

	delta, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 350, delta)

	// Same timestamp, nothing new has vested, still a success
	delta, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, delta)

	balance, err := env.ledger.BalanceOf(env.ctx, testAccount, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 350, balance)
}

func TestClaim_Authorization(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 0, 4, testStartTime))

	env.setNow(testStartTime + 4*WeekSeconds)

	_, err := env.engine.Claim(env.ctx, testOtherAccount, testAccount, 0)
	assert.Equal(t, ErrUnauthorized, err)

	// The controller can claim on the beneficiary's behalf; funds still go
	// to the beneficiary
	delta, err := env.engine.Claim(env.ctx, testController, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 700, delta)

	balance, err := env.ledger.BalanceOf(env.ctx, testAccount, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 700, balance)
}

func TestClaim_NotFound(t *testing.T) {
	env := setup(t)

	_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	assert.Equal(t, schedule.ErrScheduleNotFound, err)
}

func TestClaim_TransferFailed(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 0, 4, testStartTime))

	env.setNow(testStartTime + 2*WeekSeconds)

	env.ledger.InduceTransferFailures()

	_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	assert.Equal(t, ErrTransferFailed, errors.Cause(err))

	// No bookkeeping may have moved
	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, record.ClaimedAmount)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 700, locked)

	env.ledger.StopInducingTransferFailures()

	delta, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 350, delta)
}

func TestCancel_HappyPath(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 0, 4, testStartTime))

	// Claim half, then cancel the rest
	env.setNow(testStartTime + 2*WeekSeconds)

	_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)

	outstanding, err := env.engine.Cancel(env.ctx, testController, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 350, outstanding)

	balance, err := env.ledger.BalanceOf(env.ctx, testTreasury, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 350, balance)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 0, locked)

	env.assertSolvent(t, testAsset)

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.True(t, record.IsCancelled())

	// Cancelling again finds nothing outstanding
	_, err = env.engine.Cancel(env.ctx, testController, testAccount, 0)
	assert.Equal(t, ErrNothingOutstanding, err)
}

func TestCancel_Finality(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	_, err := env.engine.Cancel(env.ctx, testController, testAccount, 0)
	require.NoError(t, err)

	// Claims fail forever after, no matter how much time passes
	for _, offset := range []uint64{WeekSeconds, 4 * WeekSeconds, 100 * WeekSeconds} {
		env.setNow(testStartTime + offset)

		_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
		assert.Equal(t, ErrNotClaimable, err)
	}
}

func TestCancel_FixedImmutability(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, true, 1, 4, testStartTime))

	_, err := env.engine.Cancel(env.ctx, testController, testAccount, 0)
	assert.Equal(t, ErrFixedSchedule, err)

	// Still fixed after the full amount vests and is claimed
	env.setNow(testStartTime + 4*WeekSeconds)

	_, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)

	_, err = env.engine.Cancel(env.ctx, testController, testAccount, 0)
	assert.Equal(t, ErrFixedSchedule, err)
}

func TestCancel_Unauthorized(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	_, err := env.engine.Cancel(env.ctx, testAccount, testAccount, 0)
	assert.Equal(t, ErrUnauthorized, err)
}

func TestCancel_TransferFailed(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 1, 4, testStartTime))

	env.ledger.InduceTransferFailures()

	_, err := env.engine.Cancel(env.ctx, testController, testAccount, 0)
	assert.Equal(t, ErrTransferFailed, errors.Cause(err))

	record, err := env.engine.GetSchedule(env.ctx, testAccount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 700, record.TotalAmount)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 700, locked)
}

func TestWithdraw_Ceiling(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 600, testAsset, false, 1, 4, testStartTime))

	// Only the 400 unlocked surplus is reachable
	err := env.engine.Withdraw(env.ctx, testController, 401, testAsset)
	assert.Equal(t, ErrInsufficientUnlocked, err)

	require.NoError(t, env.engine.Withdraw(env.ctx, testController, 400, testAsset))

	balance, err := env.ledger.BalanceOf(env.ctx, testTreasury, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, 400, balance)

	// Nothing unlocked remains, locked funds stay untouchable
	err = env.engine.Withdraw(env.ctx, testController, 1, testAsset)
	assert.Equal(t, ErrInsufficientUnlocked, err)

	env.assertSolvent(t, testAsset)

	// Claims free up nothing for withdrawal; they pay the beneficiary
	env.setNow(testStartTime + 4*WeekSeconds)

	_, err = env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)

	err = env.engine.Withdraw(env.ctx, testController, 1, testAsset)
	assert.Equal(t, ErrInsufficientUnlocked, err)
}

func TestWithdraw_Unauthorized(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	err := env.engine.Withdraw(env.ctx, testAccount, 100, testAsset)
	assert.Equal(t, ErrUnauthorized, err)
}

func TestTransferControl(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	assert.Equal(t, ErrUnauthorized, env.engine.TransferControl(env.ctx, testAccount, testOtherAccount))
	assert.Equal(t, ErrInvalidParams, env.engine.TransferControl(env.ctx, testController, ""))

	require.NoError(t, env.engine.TransferControl(env.ctx, testController, testOtherAccount))

	// The old controller is locked out, the new one takes over
	err := env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 1, 4, testStartTime)
	assert.Equal(t, ErrUnauthorized, err)

	require.NoError(t, env.engine.Vest(env.ctx, testOtherAccount, testAccount, 100, testAsset, false, 1, 4, testStartTime))
}

func TestTransferControl_ConcurrentVesting(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1_000_000)

	// Vesting races control handoffs; each attempt must observe a single
	// coherent controller, succeeding or failing ErrUnauthorized cleanly
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		controller := testController
		next := testOtherAccount
		for i := 0; i < 50; i++ {
			assert.NoError(t, env.engine.TransferControl(env.ctx, controller, next))
			controller, next = next, controller
		}
	}()

	var succeeded uint64
	for _, caller := range []string{testController, testOtherAccount} {
		wg.Add(1)
		go func(caller string) {
			defer wg.Done()

			for i := 0; i < 50; i++ {
				err := env.engine.Vest(env.ctx, caller, testAccount, 1, testAsset, false, 1, 4, testStartTime)
				if err == nil {
					atomic.AddUint64(&succeeded, 1)
				} else {
					assert.Equal(t, ErrUnauthorized, err)
				}
			}
		}(caller)
	}

	wg.Wait()

	count, err := env.data.GetScheduleCountByAccount(env.ctx, testAccount)
	require.NoError(t, err)
	assert.EqualValues(t, atomic.LoadUint64(&succeeded), count)

	locked, err := env.engine.GetLocked(env.ctx, testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, atomic.LoadUint64(&succeeded), locked)

	env.assertSolvent(t, testAsset)
}

func TestGetScheduleSummaries(t *testing.T) {
	env := setup(t)

	summaries, err := env.engine.GetScheduleSummaries(env.ctx, testAccount)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 100, testAsset, false, 1, 4, testStartTime))
	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 200, testAsset, false, 2, 8, testStartTime))

	summaries, err = env.engine.GetScheduleSummaries(env.ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.EqualValues(t, 0, summaries[0].Index)
	assert.Equal(t, testStartTime+WeekSeconds, summaries[0].CliffTime)
	assert.Equal(t, testStartTime+4*WeekSeconds, summaries[0].EndTime)

	assert.EqualValues(t, 1, summaries[1].Index)
	assert.Equal(t, testStartTime+2*WeekSeconds, summaries[1].CliffTime)
	assert.Equal(t, testStartTime+8*WeekSeconds, summaries[1].EndTime)
}

func TestGetLocked_UnknownAsset(t *testing.T) {
	env := setup(t)

	locked, err := env.engine.GetLocked(env.ctx, "never-seen")
	require.NoError(t, err)
	assert.EqualValues(t, 0, locked)
}

func TestEventAuditTrail(t *testing.T) {
	env := setup(t)

	env.ledger.Mint(testEngineAddress, testAsset, 1000)

	require.NoError(t, env.engine.Vest(env.ctx, testController, testAccount, 700, testAsset, false, 0, 4, testStartTime))

	env.setNow(testStartTime + 2*WeekSeconds)

	_, err := env.engine.Claim(env.ctx, testAccount, testAccount, 0)
	require.NoError(t, err)

	_, err = env.engine.Cancel(env.ctx, testController, testAccount, 0)
	require.NoError(t, err)

	records, err := env.engine.GetEvents(env.ctx, testAccount, query.EmptyCursor, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, event.KindVest, records[0].Kind)
	assert.EqualValues(t, 700, records[0].Quantity)

	assert.Equal(t, event.KindClaim, records[1].Kind)
	assert.EqualValues(t, 350, records[1].Quantity)

	assert.Equal(t, event.KindCancel, records[2].Kind)
	assert.EqualValues(t, 350, records[2].Quantity)

	// Withdrawals land on the treasury's trail
	require.NoError(t, env.engine.Withdraw(env.ctx, testController, 100, testAsset))

	records, err = env.engine.GetEvents(env.ctx, testTreasury, query.EmptyCursor, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, event.KindWithdraw, records[0].Kind)
	assert.EqualValues(t, 100, records[0].Quantity)
}
