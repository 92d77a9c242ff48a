// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package currency implements a lockable balance ledger on top of state.
// Two instances back the staking module: one for the staked asset and one for the reward asset.
package currency

import (
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

var logger = log.WithContext("pkg", "currency")

// BlockNumberFunc returns the current block number, used to expire locks and vesting.
type BlockNumberFunc func() npos.BlockNumber

// Ledger keeps free/reserved balances, locks, vesting schedules and the total issuance of one asset.
type Ledger struct {
	name           string
	minimumBalance npos.Balance
	blockNumber    BlockNumberFunc

	accounts *state.Mapping[npos.Address, *account]
	locks    *state.Mapping[npos.Address, []Lock]
	vesting  *state.Mapping[npos.Address, *Vesting]
	issuance *state.Value[npos.Balance]

	onFreeBalanceZero []func(npos.Address) error
}

// New creates a ledger named name. The name prefixes every storage key of the ledger.
func New(name string, st *state.State, minimumBalance npos.Balance, blockNumber BlockNumberFunc) *Ledger {
	if blockNumber == nil {
		blockNumber = func() npos.BlockNumber { return 0 }
	}
	return &Ledger{
		name:           name,
		minimumBalance: minimumBalance,
		blockNumber:    blockNumber,
		accounts:       state.NewMapping[npos.Address, *account](st, name+"/account"),
		locks:          state.NewMapping[npos.Address, []Lock](st, name+"/locks"),
		vesting:        state.NewMapping[npos.Address, *Vesting](st, name+"/vesting"),
		issuance:       state.NewValue[npos.Balance](st, name+"/issuance"),
	}
}

// Name returns the asset name.
func (l *Ledger) Name() string {
	return l.name
}

// OnFreeBalanceZero registers a hook run when an account's free balance drops to zero.
func (l *Ledger) OnFreeBalanceZero(fn func(who npos.Address) error) {
	l.onFreeBalanceZero = append(l.onFreeBalanceZero, fn)
}

func (l *Ledger) getAccount(who npos.Address) (*account, error) {
	return l.accounts.Get(who)
}

func (l *Ledger) setAccount(who npos.Address, acc *account) error {
	if acc.isEmpty() {
		l.accounts.Delete(who)
		return nil
	}
	return l.accounts.Set(who, acc)
}

// setFreeBalance updates the free balance and fires the zero hooks on a transition to zero.
func (l *Ledger) setFreeBalance(who npos.Address, balance npos.Balance) error {
	acc, err := l.getAccount(who)
	if err != nil {
		return err
	}
	wasFunded := acc.Free > 0
	acc.Free = balance
	if err := l.setAccount(who, acc); err != nil {
		return err
	}
	if wasFunded && balance == 0 {
		logger.Debug("free balance zero", "asset", l.name, "who", who)
		for _, fn := range l.onFreeBalanceZero {
			if err := fn(who); err != nil {
				return err
			}
		}
	}
	return nil
}

// FreeBalance returns the spendable (though possibly locked) balance.
func (l *Ledger) FreeBalance(who npos.Address) (npos.Balance, error) {
	acc, err := l.getAccount(who)
	if err != nil {
		return 0, err
	}
	return acc.Free, nil
}

// ReservedBalance returns the reserved balance.
func (l *Ledger) ReservedBalance(who npos.Address) (npos.Balance, error) {
	acc, err := l.getAccount(who)
	if err != nil {
		return 0, err
	}
	return acc.Reserved, nil
}

// TotalBalance returns free plus reserved.
func (l *Ledger) TotalBalance(who npos.Address) (npos.Balance, error) {
	acc, err := l.getAccount(who)
	if err != nil {
		return 0, err
	}
	return npos.SaturatingAdd(acc.Free, acc.Reserved), nil
}

// TotalIssuance returns the units issued in the system.
func (l *Ledger) TotalIssuance() (npos.Balance, error) {
	return l.issuance.Get()
}

// MinimumBalance returns the smallest balance an account may keep.
func (l *Ledger) MinimumBalance() npos.Balance {
	return l.minimumBalance
}

// SetVesting installs a vesting schedule for who.
func (l *Ledger) SetVesting(who npos.Address, v Vesting) error {
	return l.vesting.Set(who, &v)
}

// VestingBalance returns the part of the free balance still held by vesting.
func (l *Ledger) VestingBalance(who npos.Address) (npos.Balance, error) {
	v, exists, err := l.vesting.Lookup(who)
	if err != nil || !exists {
		return 0, err
	}
	free, err := l.FreeBalance(who)
	if err != nil {
		return 0, err
	}
	return min(free, v.LockedAt(l.blockNumber())), nil
}

// Locks returns the locks currently stored on who.
func (l *Ledger) Locks(who npos.Address) ([]Lock, error) {
	return l.locks.Get(who)
}

// EnsureCanWithdraw checks whether who may withdraw amount for reason, leaving newBalance free.
func (l *Ledger) EnsureCanWithdraw(who npos.Address, _ npos.Balance, reason WithdrawReasons, newBalance npos.Balance) error {
	if reason&(ReasonReserve|ReasonTransfer) != 0 {
		vesting, err := l.VestingBalance(who)
		if err != nil {
			return err
		}
		if vesting > newBalance {
			return ErrVestingTooHigh
		}
	}

	locks, err := l.locks.Get(who)
	if err != nil {
		return err
	}
	now := l.blockNumber()
	for _, lock := range locks {
		if now < lock.Until && newBalance < lock.Amount && lock.Reasons&reason != 0 {
			return ErrLiquidity
		}
	}
	return nil
}

// Transfer moves value of free balance from one account to another.
func (l *Ledger) Transfer(from, to npos.Address, value npos.Balance) error {
	fromBalance, err := l.FreeBalance(from)
	if err != nil {
		return err
	}
	toBalance, err := l.FreeBalance(to)
	if err != nil {
		return err
	}

	newFromBalance, ok := npos.CheckedSub(fromBalance, value)
	if !ok {
		return ErrBalanceTooLow
	}
	if err := l.EnsureCanWithdraw(from, value, ReasonTransfer, newFromBalance); err != nil {
		return err
	}
	newToBalance, ok := npos.CheckedAdd(toBalance, value)
	if !ok {
		return ErrDestinationTooHigh
	}

	if from != to {
		if err := l.setFreeBalance(from, newFromBalance); err != nil {
			return err
		}
		if err := l.setFreeBalance(to, newToBalance); err != nil {
			return err
		}
	}
	logger.Debug("transfer", "asset", l.name, "from", from, "to", to, "value", value)
	return nil
}

// Withdraw removes value from the free balance of who. With keepAlive the remaining
// balance may not fall below the minimum balance.
func (l *Ledger) Withdraw(who npos.Address, value npos.Balance, reason WithdrawReasons, keepAlive bool) error {
	oldBalance, err := l.FreeBalance(who)
	if err != nil {
		return err
	}
	newBalance, ok := npos.CheckedSub(oldBalance, value)
	if !ok {
		return ErrTooFewFreeFunds
	}
	if keepAlive && newBalance < l.minimumBalance {
		return ErrWouldKill
	}
	if err := l.EnsureCanWithdraw(who, value, reason, newBalance); err != nil {
		return err
	}
	return l.setFreeBalance(who, newBalance)
}

// Slash deducts up to value from who, free balance first, then reserved.
// It ignores locks and returns the realized amount and the part that could not be met.
func (l *Ledger) Slash(who npos.Address, value npos.Balance) (realized, unmet npos.Balance, err error) {
	acc, err := l.getAccount(who)
	if err != nil {
		return 0, 0, err
	}
	freeSlash := min(acc.Free, value)
	remaining := value - freeSlash

	reservedSlash := min(acc.Reserved, remaining)
	if reservedSlash > 0 {
		acc.Reserved -= reservedSlash
		if err := l.setAccount(who, &account{Free: acc.Free, Reserved: acc.Reserved}); err != nil {
			return 0, 0, err
		}
	}
	if err := l.setFreeBalance(who, acc.Free-freeSlash); err != nil {
		return 0, 0, err
	}
	return freeSlash + reservedSlash, remaining - reservedSlash, nil
}

// DepositIntoExisting adds value to an account that already holds funds.
func (l *Ledger) DepositIntoExisting(who npos.Address, value npos.Balance) error {
	total, err := l.TotalBalance(who)
	if err != nil {
		return err
	}
	if total == 0 {
		return ErrBeneficiaryMissing
	}
	free, err := l.FreeBalance(who)
	if err != nil {
		return err
	}
	return l.setFreeBalance(who, npos.SaturatingAdd(free, value))
}

// DepositCreating adds value to who, creating the account if needed.
func (l *Ledger) DepositCreating(who npos.Address, value npos.Balance) error {
	free, err := l.FreeBalance(who)
	if err != nil {
		return err
	}
	return l.setFreeBalance(who, npos.SaturatingAdd(free, value))
}

// MakeFreeBalanceBe forces the free balance of who, adjusting total issuance by the difference.
func (l *Ledger) MakeFreeBalanceBe(who npos.Address, balance npos.Balance) error {
	original, err := l.FreeBalance(who)
	if err != nil {
		return err
	}
	if original <= balance {
		if _, err := l.Issue(balance - original); err != nil {
			return err
		}
	} else if _, err := l.Burn(original - balance); err != nil {
		return err
	}
	return l.setFreeBalance(who, balance)
}

// Reserve moves value from free to reserved.
func (l *Ledger) Reserve(who npos.Address, value npos.Balance) error {
	acc, err := l.getAccount(who)
	if err != nil {
		return err
	}
	newFree, ok := npos.CheckedSub(acc.Free, value)
	if !ok {
		return ErrTooFewFreeFunds
	}
	if err := l.EnsureCanWithdraw(who, value, ReasonReserve, newFree); err != nil {
		return err
	}
	acc.Reserved = npos.SaturatingAdd(acc.Reserved, value)
	if err := l.setAccount(who, &account{Free: acc.Free, Reserved: acc.Reserved}); err != nil {
		return err
	}
	return l.setFreeBalance(who, newFree)
}

// Unreserve moves up to value from reserved back to free. It returns the part that was not reserved.
func (l *Ledger) Unreserve(who npos.Address, value npos.Balance) (npos.Balance, error) {
	acc, err := l.getAccount(who)
	if err != nil {
		return 0, err
	}
	actual := min(acc.Reserved, value)
	acc.Reserved -= actual
	acc.Free = npos.SaturatingAdd(acc.Free, actual)
	if err := l.setAccount(who, acc); err != nil {
		return 0, err
	}
	return value - actual, nil
}

// Issue increases total issuance by amount, saturating. It returns the amount actually issued.
func (l *Ledger) Issue(amount npos.Balance) (npos.Balance, error) {
	issued, err := l.issuance.Get()
	if err != nil {
		return 0, err
	}
	if next, ok := npos.CheckedAdd(issued, amount); ok {
		return amount, l.issuance.Set(next)
	}
	return npos.MaxBalance - issued, l.issuance.Set(npos.MaxBalance)
}

// Burn decreases total issuance by amount, clamping at zero. It returns the amount actually burned.
func (l *Ledger) Burn(amount npos.Balance) (npos.Balance, error) {
	issued, err := l.issuance.Get()
	if err != nil {
		return 0, err
	}
	if next, ok := npos.CheckedSub(issued, amount); ok {
		return amount, l.issuance.Set(next)
	}
	return issued, l.issuance.Set(0)
}
