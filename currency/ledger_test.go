// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
	"github.com/vechain/npos/state"
)

var (
	alice = npos.BytesToAddress([]byte("alice"))
	bob   = npos.BytesToAddress([]byte("bob"))
)

type testLedger struct {
	*Ledger
	block npos.BlockNumber
}

func newTestLedger(t *testing.T, minimum npos.Balance) *testLedger {
	tl := &testLedger{}
	tl.Ledger = New("ring", state.New(kv.NewMemStore()), minimum, func() npos.BlockNumber { return tl.block })
	return tl
}

func (tl *testLedger) free(t *testing.T, who npos.Address) npos.Balance {
	b, err := tl.FreeBalance(who)
	require.NoError(t, err)
	return b
}

func TestTransfer(t *testing.T) {
	l := newTestLedger(t, 0)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 100))

	assert.ErrorIs(t, l.Transfer(alice, bob, 101), ErrBalanceTooLow)
	require.NoError(t, l.Transfer(alice, bob, 40))
	assert.Equal(t, npos.Balance(60), l.free(t, alice))
	assert.Equal(t, npos.Balance(40), l.free(t, bob))

	require.NoError(t, l.Transfer(alice, alice, 60))
	assert.Equal(t, npos.Balance(60), l.free(t, alice), "self transfer is a no-op")

	require.NoError(t, l.MakeFreeBalanceBe(bob, npos.MaxBalance))
	assert.ErrorIs(t, l.Transfer(alice, bob, 1), ErrDestinationTooHigh)

	issuance, err := l.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, npos.MaxBalance, issuance, "issuance saturates")
}

func TestLocks(t *testing.T) {
	l := newTestLedger(t, 0)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 1000))

	id := NewLockID("staking ")
	require.NoError(t, l.SetLock(id, alice, 500, npos.MaxBlockNumber, AllReasons))

	err := l.Transfer(alice, bob, 501)
	assert.ErrorIs(t, err, ErrLiquidity)
	assert.True(t, reverts.IsRevertErr(err))
	require.NoError(t, l.Transfer(alice, bob, 500))

	// SetLock replaces, ExtendLock merges
	require.NoError(t, l.SetLock(id, alice, 100, npos.MaxBlockNumber, ReasonFee))
	require.NoError(t, l.ExtendLock(id, alice, 50, 10, ReasonTransfer))
	locks, err := l.Locks(alice)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, Lock{ID: id, Amount: 100, Until: npos.MaxBlockNumber, Reasons: ReasonFee | ReasonTransfer}, locks[0])

	require.NoError(t, l.RemoveLock(id, alice))
	locks, err = l.Locks(alice)
	require.NoError(t, err)
	assert.Empty(t, locks)
	require.NoError(t, l.Transfer(alice, bob, 500))
}

func TestLockExpiry(t *testing.T) {
	l := newTestLedger(t, 0)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 100))

	require.NoError(t, l.SetLock(NewLockID("a"), alice, 100, 10, AllReasons))
	assert.ErrorIs(t, l.Withdraw(alice, 1, ReasonFee, false), ErrLiquidity)

	l.block = 10
	require.NoError(t, l.Withdraw(alice, 1, ReasonFee, false))

	// expired locks are pruned on the next lock update
	require.NoError(t, l.SetLock(NewLockID("b"), alice, 1, 20, ReasonReserve))
	locks, err := l.Locks(alice)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, NewLockID("b"), locks[0].ID)
}

func TestVesting(t *testing.T) {
	l := newTestLedger(t, 0)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 100))
	require.NoError(t, l.SetVesting(alice, NewVesting(100, 0, 10)))

	vesting, err := l.VestingBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(100), vesting)
	assert.ErrorIs(t, l.Transfer(alice, bob, 1), ErrVestingTooHigh)

	l.block = 4
	require.NoError(t, l.Transfer(alice, bob, 40))
	assert.ErrorIs(t, l.Transfer(alice, bob, 1), ErrVestingTooHigh)

	// fees are not restricted by vesting
	require.NoError(t, l.Withdraw(alice, 1, ReasonFee, false))
}

func TestWithdrawKeepAlive(t *testing.T) {
	l := newTestLedger(t, 10)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 100))

	assert.ErrorIs(t, l.Withdraw(alice, 95, ReasonTransfer, true), ErrWouldKill)
	assert.ErrorIs(t, l.Withdraw(alice, 101, ReasonTransfer, false), ErrTooFewFreeFunds)
	require.NoError(t, l.Withdraw(alice, 95, ReasonTransfer, false))
	assert.Equal(t, npos.Balance(5), l.free(t, alice))
}

func TestSlashAndReserve(t *testing.T) {
	l := newTestLedger(t, 0)
	require.NoError(t, l.MakeFreeBalanceBe(alice, 100))
	require.NoError(t, l.Reserve(alice, 30))

	realized, unmet, err := l.Slash(alice, 90)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(90), realized)
	assert.Zero(t, unmet)
	assert.Zero(t, l.free(t, alice))

	reserved, err := l.ReservedBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(10), reserved)

	realized, unmet, err = l.Slash(alice, 25)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(10), realized)
	assert.Equal(t, npos.Balance(15), unmet)

	total, err := l.TotalBalance(alice)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeposit(t *testing.T) {
	l := newTestLedger(t, 0)

	assert.ErrorIs(t, l.DepositIntoExisting(alice, 5), ErrBeneficiaryMissing)
	require.NoError(t, l.DepositCreating(alice, 5))
	require.NoError(t, l.DepositIntoExisting(alice, 5))
	assert.Equal(t, npos.Balance(10), l.free(t, alice))
}

func TestOnFreeBalanceZero(t *testing.T) {
	l := newTestLedger(t, 0)
	var purged []npos.Address
	l.OnFreeBalanceZero(func(who npos.Address) error {
		purged = append(purged, who)
		return nil
	})

	require.NoError(t, l.MakeFreeBalanceBe(alice, 10))
	require.NoError(t, l.Transfer(alice, bob, 10))
	assert.Equal(t, []npos.Address{alice}, purged)

	_, _, err := l.Slash(bob, 100)
	require.NoError(t, err)
	assert.Equal(t, []npos.Address{alice, bob}, purged)
}

func TestIssuance(t *testing.T) {
	l := newTestLedger(t, 0)
	sink := NewIssuance(l.Ledger)

	require.NoError(t, sink.OnReward(100))
	require.NoError(t, sink.OnSlash(30))
	issued, err := l.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(70), issued)

	require.NoError(t, sink.OnSlash(1000))
	issued, err = l.TotalIssuance()
	require.NoError(t, err)
	assert.Zero(t, issued, "burn clamps at zero")
}
