// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps the balances and stakers of a network and elects its first validators.
package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

var logger = log.WithContext("pkg", "genesis")

const markerKey = "genesis"

// Genesis is the outcome of a build.
type Genesis struct {
	// ID is the state digest right after the first election.
	ID npos.Bytes32
	// Validators are the controllers elected at genesis.
	Validators []npos.Address
}

// Load returns the id of the genesis recorded in st, if any.
func Load(st *state.State) (npos.Bytes32, bool, error) {
	return state.NewValue[npos.Bytes32](st, markerKey).Lookup()
}

// New creates a builder for the genesis section of cfg.
func New(cfg *config.Genesis) *Builder {
	return new(Builder).
		State(func(m *Modules) error {
			for _, a := range cfg.Accounts {
				if a.Stake > 0 {
					if err := m.Stake.MakeFreeBalanceBe(a.Address, a.Stake); err != nil {
						return errors.WithMessagef(err, "account %v", a.Address)
					}
				}
				if a.Reward > 0 {
					if err := m.Reward.MakeFreeBalanceBe(a.Address, a.Reward); err != nil {
						return errors.WithMessagef(err, "account %v", a.Address)
					}
				}
			}
			return nil
		}).
		State(func(m *Modules) error {
			if cfg.SessionReward == 0 {
				return nil
			}
			return m.Staking.SetCurrentSessionReward(cfg.SessionReward)
		}).
		State(func(m *Modules) error {
			for i := range cfg.Stakers {
				if err := bondStaker(m, &cfg.Stakers[i]); err != nil {
					return errors.WithMessagef(err, "staker %v", cfg.Stakers[i].Stash)
				}
			}
			return nil
		})
}

func bondStaker(m *Modules, s *config.Staker) error {
	payee, err := s.PayeeDestination()
	if err != nil {
		return err
	}
	if err := m.Staking.Bond(s.Stash, s.Controller, s.Bond, payee); err != nil {
		return err
	}
	switch s.Role {
	case config.RoleValidator:
		return m.Staking.Validate(s.Controller, s.Prefs())
	case config.RoleNominator:
		return m.Staking.Nominate(s.Controller, s.Targets)
	}
	return nil
}
