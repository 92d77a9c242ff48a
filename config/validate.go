// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

// Validate reports the first inconsistency found in the configuration.
func (c *Config) Validate() error {
	if c.Staking.OfflineSlash > fixed.Billion {
		return errors.New("staking.offline_slash exceeds one billion parts")
	}
	if c.Staking.Equalize.Iterations < 0 {
		return errors.New("staking.equalize.iterations must not be negative")
	}
	if c.Minting.Decay > fixed.Billion {
		return errors.New("minting.decay exceeds one billion parts")
	}

	accounts := make(map[npos.Address]*Account, len(c.Genesis.Accounts))
	for i := range c.Genesis.Accounts {
		a := &c.Genesis.Accounts[i]
		if _, ok := accounts[a.Address]; ok {
			return errors.Errorf("genesis account %v: duplicated", a.Address)
		}
		accounts[a.Address] = a
	}

	stashes := make(map[npos.Address]bool)
	controllers := make(map[npos.Address]bool)
	for i := range c.Genesis.Stakers {
		s := &c.Genesis.Stakers[i]
		if err := c.validateStaker(s, accounts); err != nil {
			return errors.WithMessagef(err, "genesis staker %v", s.Stash)
		}
		if stashes[s.Stash] {
			return errors.Errorf("genesis staker %v: stash already bonded", s.Stash)
		}
		if controllers[s.Controller] {
			return errors.Errorf("genesis staker %v: controller already paired", s.Stash)
		}
		stashes[s.Stash] = true
		controllers[s.Controller] = true
	}

	for i, a := range c.Scenario {
		if _, ok := actionKinds[a.Kind]; !ok {
			return errors.Errorf("scenario action %d: unknown action %q", i, a.Kind)
		}
		if _, err := a.Staker().PayeeDestination(); err != nil {
			return errors.WithMessagef(err, "scenario action %d", i)
		}
	}
	return nil
}

func (c *Config) validateStaker(s *Staker, accounts map[npos.Address]*Account) error {
	acc, ok := accounts[s.Stash]
	if !ok {
		return errors.New("stash has no genesis account")
	}
	if s.Bond < c.Currency.StakeMinimumBalance || s.Bond > acc.Stake {
		return errors.Errorf("bond %d outside [%d, %d]", s.Bond, c.Currency.StakeMinimumBalance, acc.Stake)
	}
	if _, err := s.PayeeDestination(); err != nil {
		return err
	}
	switch s.Role {
	case RoleValidator:
		if s.UnstakeThreshold != nil && *s.UnstakeThreshold > staking.MaxUnstakeThreshold {
			return errors.Errorf("unstake threshold %d too large", *s.UnstakeThreshold)
		}
	case RoleNominator:
		if len(s.Targets) == 0 {
			return errors.New("nominator without targets")
		}
	case RoleIdle, "":
	default:
		return errors.Errorf("unknown role %q", s.Role)
	}
	return nil
}
