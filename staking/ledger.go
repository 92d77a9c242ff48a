// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
)

var (
	ErrStashAlreadyBonded      = reverts.New("stash already bonded")
	ErrControllerAlreadyPaired = reverts.New("controller already paired")
	ErrNotStash                = reverts.New("not a stash")
	ErrNotController           = reverts.New("not a controller")
	ErrNoMoreChunks            = reverts.New("can not schedule more unlock chunks")
)

// updateLedger stores the ledger of controller and sets the stash lock to its total.
func (s *Staking) updateLedger(controller npos.Address, ledger *StakingLedger) error {
	if err := s.deps.Currency.SetLock(LockID, ledger.Stash, ledger.Total, npos.MaxBlockNumber, currency.AllReasons); err != nil {
		return err
	}
	return s.store.ledgers.Set(controller, ledger)
}

// ledgerOf returns the ledger owned by controller or ErrNotController.
func (s *Staking) ledgerOf(controller npos.Address) (*StakingLedger, error) {
	ledger, ok, err := s.store.ledgers.Lookup(controller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotController
	}
	return ledger, nil
}

//
// Setters - state change
//

// Bond pairs stash with controller and locks up to value of the stash free balance.
func (s *Staking) Bond(stash, controller npos.Address, value npos.Balance, payee RewardDestination) error {
	logger.Debug("bonding", "stash", stash, "controller", controller, "value", value, "payee", payee)

	var bonded npos.Balance
	err := s.atomic(func() error {
		if _, ok, err := s.store.bonded.Lookup(stash); err != nil {
			return err
		} else if ok {
			return ErrStashAlreadyBonded
		}
		if _, ok, err := s.store.ledgers.Lookup(controller); err != nil {
			return err
		} else if ok {
			return ErrControllerAlreadyPaired
		}

		if err := s.store.bonded.Set(stash, controller); err != nil {
			return err
		}
		if err := s.store.payees.Set(stash, payee); err != nil {
			return err
		}

		free, err := s.deps.Currency.FreeBalance(stash)
		if err != nil {
			return err
		}
		bonded = min(value, free)
		return s.updateLedger(controller, &StakingLedger{Stash: stash, Total: bonded, Active: bonded})
	})
	if err != nil {
		logger.Info("bond failed", "stash", stash, "error", err)
		return err
	}

	s.deps.Events.Emit(BondedEvent{Stash: stash, Controller: controller, Amount: bonded})
	logger.Info("bonded", "stash", stash, "controller", controller, "value", bonded)
	return nil
}

// BondExtra adds up to maxAdditional of the stash's unbonded free balance to its ledger.
func (s *Staking) BondExtra(stash npos.Address, maxAdditional npos.Balance) error {
	logger.Debug("bonding extra", "stash", stash, "max", maxAdditional)

	err := s.atomic(func() error {
		controller, ok, err := s.store.bonded.Lookup(stash)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotStash
		}
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}

		free, err := s.deps.Currency.FreeBalance(stash)
		if err != nil {
			return err
		}
		if extra, ok := npos.CheckedSub(free, ledger.Total); ok {
			extra = min(extra, maxAdditional)
			ledger.Total += extra
			ledger.Active += extra
			return s.updateLedger(controller, ledger)
		}
		return nil
	})
	if err != nil {
		logger.Info("bond extra failed", "stash", stash, "error", err)
		return err
	}
	return nil
}

// Unbond schedules up to value of the active stake for withdrawal after the bonding duration.
// An active remainder below the minimum balance is unbonded along with it.
func (s *Staking) Unbond(controller npos.Address, value npos.Balance) error {
	logger.Debug("unbonding", "controller", controller, "value", value)

	var chunk UnlockChunk
	var stash npos.Address
	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		if len(ledger.Unlocking) >= MaxUnlockingChunks {
			return ErrNoMoreChunks
		}

		value = min(value, ledger.Active)
		if value == 0 {
			return nil
		}
		ledger.Active -= value
		// no dust left in the system
		if ledger.Active < s.deps.Currency.MinimumBalance() {
			value += ledger.Active
			ledger.Active = 0
		}

		era, err := s.store.currentEra.Get()
		if err != nil {
			return err
		}
		chunk = UnlockChunk{Value: value, Era: era + s.params.BondingDuration}
		stash = ledger.Stash
		ledger.Unlocking = append(ledger.Unlocking, chunk)
		return s.updateLedger(controller, ledger)
	})
	if err != nil {
		logger.Info("unbond failed", "controller", controller, "error", err)
		return err
	}

	if chunk.Value > 0 {
		s.deps.Events.Emit(UnbondedEvent{Stash: stash, Amount: chunk.Value, Era: chunk.Era})
		logger.Info("unbonded", "stash", stash, "value", chunk.Value, "era", chunk.Era)
	}
	return nil
}

// WithdrawUnbonded releases every unlocking chunk matured at the current era.
func (s *Staking) WithdrawUnbonded(controller npos.Address) error {
	logger.Debug("withdrawing unbonded", "controller", controller)

	var (
		withdrawn npos.Balance
		stash     npos.Address
	)
	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		era, err := s.store.currentEra.Get()
		if err != nil {
			return err
		}
		stash = ledger.Stash
		withdrawn = ledger.consolidateUnlocked(era)
		return s.updateLedger(controller, ledger)
	})
	if err != nil {
		logger.Info("withdraw unbonded failed", "controller", controller, "error", err)
		return err
	}

	if withdrawn > 0 {
		s.deps.Events.Emit(WithdrawnEvent{Stash: stash, Amount: withdrawn})
		logger.Info("withdrew unbonded", "stash", stash, "value", withdrawn)
	}
	return nil
}

// SetController moves the ledger of stash to a new controller.
func (s *Staking) SetController(stash, controller npos.Address) error {
	logger.Debug("setting controller", "stash", stash, "controller", controller)

	err := s.atomic(func() error {
		old, ok, err := s.store.bonded.Lookup(stash)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotStash
		}
		if controller == old {
			return nil
		}
		if _, ok, err := s.store.ledgers.Lookup(controller); err != nil {
			return err
		} else if ok {
			return ErrControllerAlreadyPaired
		}

		if err := s.store.bonded.Set(stash, controller); err != nil {
			return err
		}
		ledger, ok, err := s.store.ledgers.Lookup(old)
		if err != nil || !ok {
			return err
		}
		s.store.ledgers.Delete(old)
		return s.store.ledgers.Set(controller, ledger)
	})
	if err != nil {
		logger.Info("set controller failed", "stash", stash, "error", err)
		return err
	}

	logger.Info("set controller", "stash", stash, "controller", controller)
	return nil
}

// SetPayee sets the reward destination of the stash owned by controller.
func (s *Staking) SetPayee(controller npos.Address, payee RewardDestination) error {
	logger.Debug("setting payee", "controller", controller, "payee", payee)

	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		return s.store.payees.Set(ledger.Stash, payee)
	})
	if err != nil {
		logger.Info("set payee failed", "controller", controller, "error", err)
		return err
	}
	return nil
}
