// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"slices"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
)

var (
	ErrEmptyTargets          = reverts.New("targets cannot be empty")
	ErrUnstakeThresholdLarge = reverts.New("unstake threshold too large")
)

// Validate declares the stash of controller a validator candidate.
func (s *Staking) Validate(controller npos.Address, prefs ValidatorPrefs) error {
	logger.Debug("validating", "controller", controller, "threshold", prefs.UnstakeThreshold, "payment", prefs.ValidatorPayment)

	var stash npos.Address
	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		if prefs.UnstakeThreshold > MaxUnstakeThreshold {
			return ErrUnstakeThresholdLarge
		}
		stash = ledger.Stash
		s.store.nominators.Delete(stash)
		return s.store.validators.Set(stash, &prefs)
	})
	if err != nil {
		logger.Info("validate failed", "controller", controller, "error", err)
		return err
	}

	logger.Info("registered validator", "stash", stash, "name", prefs.Name)
	return nil
}

// Nominate declares the stash of controller a nominator of the first MaxNominations targets.
func (s *Staking) Nominate(controller npos.Address, targets []npos.Address) error {
	logger.Debug("nominating", "controller", controller, "targets", len(targets))

	var stash npos.Address
	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return ErrEmptyTargets
		}
		stash = ledger.Stash
		targets = slices.Clone(targets[:min(len(targets), MaxNominations)])
		s.store.validators.Delete(stash)
		return s.store.nominators.Set(stash, targets)
	})
	if err != nil {
		logger.Info("nominate failed", "controller", controller, "error", err)
		return err
	}

	logger.Info("registered nominator", "stash", stash, "targets", len(targets))
	return nil
}

// Chill withdraws the stash of controller from validating and nominating.
func (s *Staking) Chill(controller npos.Address) error {
	logger.Debug("chilling", "controller", controller)

	err := s.atomic(func() error {
		ledger, err := s.ledgerOf(controller)
		if err != nil {
			return err
		}
		s.store.validators.Delete(ledger.Stash)
		s.store.nominators.Delete(ledger.Stash)
		return nil
	})
	if err != nil {
		logger.Info("chill failed", "controller", controller, "error", err)
		return err
	}
	return nil
}

// OnFreeBalanceZero purges all staking records of a stash whose balance reached zero.
func (s *Staking) OnFreeBalanceZero(stash npos.Address) error {
	controller, ok, err := s.store.bonded.Lookup(stash)
	if err != nil {
		return err
	}
	if ok {
		s.store.bonded.Delete(stash)
		s.store.ledgers.Delete(controller)
	}
	s.store.payees.Delete(stash)
	s.store.slashCount.Delete(stash)
	s.store.validators.Delete(stash)
	s.store.nominators.Delete(stash)

	logger.Debug("purged stash", "stash", stash, "bonded", ok)
	return nil
}
