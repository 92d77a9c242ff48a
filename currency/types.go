// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
)

// WithdrawReasons is a bit set of the purposes funds may leave an account for.
type WithdrawReasons uint8

const (
	ReasonTransactionPayment WithdrawReasons = 1 << iota
	ReasonTransfer
	ReasonReserve
	ReasonFee

	AllReasons = ReasonTransactionPayment | ReasonTransfer | ReasonReserve | ReasonFee
)

// Contains reports whether all reasons in r are present.
func (rs WithdrawReasons) Contains(r WithdrawReasons) bool {
	return rs&r == r
}

// LockID names a lock. At most one lock per id exists on an account.
type LockID [8]byte

// NewLockID right pads s to eight bytes.
func NewLockID(s string) (id LockID) {
	copy(id[:], s)
	return
}

func (id LockID) String() string {
	return string(id[:])
}

// Lock restricts withdrawals leaving less than Amount in the free balance
// for any of Reasons, until block Until.
type Lock struct {
	ID      LockID
	Amount  npos.Balance
	Until   npos.BlockNumber
	Reasons WithdrawReasons
}

// Vesting unlocks Offset linearly, PerBlock every block from genesis.
type Vesting struct {
	Offset   npos.Balance
	PerBlock npos.Balance
}

// LockedAt returns the amount still locked at block n.
func (v *Vesting) LockedAt(n npos.BlockNumber) npos.Balance {
	x, ok := npos.CheckedMul(npos.Balance(n), v.PerBlock)
	if !ok {
		return 0
	}
	return max(v.Offset, x) - x
}

// NewVesting derives the schedule of balance unlocking linearly over length blocks starting at begin.
func NewVesting(balance npos.Balance, begin, length npos.BlockNumber) Vesting {
	perBlock := balance / npos.Balance(max(length, 1))
	return Vesting{
		Offset:   npos.SaturatingAdd(npos.SaturatingMul(npos.Balance(begin), perBlock), balance),
		PerBlock: perBlock,
	}
}

type account struct {
	Free     npos.Balance
	Reserved npos.Balance
}

func (a *account) isEmpty() bool {
	return a.Free == 0 && a.Reserved == 0
}

var (
	ErrVestingTooHigh       = reverts.New("vesting balance too high to send value")
	ErrLiquidity            = reverts.New("account liquidity restrictions prevent withdrawal")
	ErrBalanceTooLow        = reverts.New("balance too low to send value")
	ErrDestinationTooHigh   = reverts.New("destination balance too high to receive value")
	ErrWouldKill            = reverts.New("payment would kill account")
	ErrTooFewFreeFunds      = reverts.New("too few free funds in account")
	ErrBeneficiaryMissing   = reverts.New("beneficiary account must pre-exist")
	ErrInsufficientReserved = reverts.New("not enough reserved funds")
)
