// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"github.com/vechain/npos/npos"
)

// SetLock creates or replaces the lock with the given id. Expired locks are dropped.
func (l *Ledger) SetLock(id LockID, who npos.Address, amount npos.Balance, until npos.BlockNumber, reasons WithdrawReasons) error {
	return l.updateLocks(who, Lock{ID: id, Amount: amount, Until: until, Reasons: reasons}, func(old, lock Lock) Lock {
		return lock
	})
}

// ExtendLock merges into an existing lock: max amount, max until, union of reasons.
func (l *Ledger) ExtendLock(id LockID, who npos.Address, amount npos.Balance, until npos.BlockNumber, reasons WithdrawReasons) error {
	return l.updateLocks(who, Lock{ID: id, Amount: amount, Until: until, Reasons: reasons}, func(old, lock Lock) Lock {
		return Lock{
			ID:      old.ID,
			Amount:  max(old.Amount, lock.Amount),
			Until:   max(old.Until, lock.Until),
			Reasons: old.Reasons | lock.Reasons,
		}
	})
}

// RemoveLock removes the lock with the given id along with expired locks.
func (l *Ledger) RemoveLock(id LockID, who npos.Address) error {
	locks, err := l.locks.Get(who)
	if err != nil {
		return err
	}
	now := l.blockNumber()
	kept := locks[:0]
	for _, lock := range locks {
		if lock.Until > now && lock.ID != id {
			kept = append(kept, lock)
		}
	}
	return l.storeLocks(who, kept)
}

func (l *Ledger) updateLocks(who npos.Address, lock Lock, merge func(old, lock Lock) Lock) error {
	locks, err := l.locks.Get(who)
	if err != nil {
		return err
	}
	now := l.blockNumber()
	kept := make([]Lock, 0, len(locks)+1)
	found := false
	for _, old := range locks {
		switch {
		case old.ID == lock.ID:
			if !found {
				kept = append(kept, merge(old, lock))
				found = true
			}
		case old.Until > now:
			kept = append(kept, old)
		}
	}
	if !found {
		kept = append(kept, lock)
	}
	return l.storeLocks(who, kept)
}

func (l *Ledger) storeLocks(who npos.Address, locks []Lock) error {
	if len(locks) == 0 {
		l.locks.Delete(who)
		return nil
	}
	return l.locks.Set(who, locks)
}
