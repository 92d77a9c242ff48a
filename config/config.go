// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the YAML configuration of a staking network.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/staking/election"
)

// Config is the root document.
type Config struct {
	Staking  Staking  `yaml:"staking"`
	Currency Currency `yaml:"currency"`
	Minting  Minting  `yaml:"minting"`
	Genesis  Genesis  `yaml:"genesis"`
	Scenario []Action `yaml:"scenario,omitempty"`
}

// Staking holds the staking module parameters.
type Staking struct {
	SessionsPerEra        uint32         `yaml:"sessions_per_era"`
	BondingDuration       uint32         `yaml:"bonding_duration"`
	ErasPerEpoch          uint32         `yaml:"eras_per_epoch"`
	ValidatorCount        uint32         `yaml:"validator_count"`
	MinimumValidatorCount uint32         `yaml:"minimum_validator_count"`
	OfflineSlash          uint32         `yaml:"offline_slash"` // parts per billion
	OfflineSlashGrace     uint32         `yaml:"offline_slash_grace"`
	Invulnerables         []npos.Address `yaml:"invulnerables,omitempty"`
	Equalize              Equalize       `yaml:"equalize"`
}

type Equalize struct {
	Iterations int          `yaml:"iterations"`
	Tolerance  npos.Balance `yaml:"tolerance"`
}

// Currency holds the existential deposits of both assets.
type Currency struct {
	StakeMinimumBalance  npos.Balance `yaml:"stake_minimum_balance"`
	RewardMinimumBalance npos.Balance `yaml:"reward_minimum_balance"`
}

// Minting configures the reward curve.
type Minting struct {
	Cap   npos.Balance `yaml:"cap"`
	Decay uint32       `yaml:"decay"` // parts per billion of the remaining supply per epoch
}

// Genesis describes the initial balances and stakers.
type Genesis struct {
	SessionReward npos.Balance `yaml:"session_reward"`
	Accounts      []Account    `yaml:"accounts"`
	Stakers       []Staker     `yaml:"stakers"`
}

type Account struct {
	Address npos.Address `yaml:"address"`
	Stake   npos.Balance `yaml:"stake"`
	Reward  npos.Balance `yaml:"reward"`
}

const (
	RoleValidator = "validator"
	RoleNominator = "nominator"
	RoleIdle      = "idle"
)

// Staker is a stash bonded at genesis.
type Staker struct {
	Stash            npos.Address   `yaml:"stash"`
	Controller       npos.Address   `yaml:"controller"`
	Bond             npos.Balance   `yaml:"bond"`
	Payee            string         `yaml:"payee,omitempty"`
	Role             string         `yaml:"role"`
	Targets          []npos.Address `yaml:"targets,omitempty"`
	UnstakeThreshold *uint32        `yaml:"unstake_threshold,omitempty"`
	ValidatorPayment npos.Balance   `yaml:"validator_payment,omitempty"`
	Name             string         `yaml:"name,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	params := staking.DefaultParams()
	return &Config{
		Staking: Staking{
			SessionsPerEra:        params.SessionsPerEra,
			BondingDuration:       params.BondingDuration,
			ErasPerEpoch:          params.ErasPerEpoch,
			ValidatorCount:        params.ValidatorCount,
			MinimumValidatorCount: params.MinimumValidatorCount,
			OfflineSlash:          params.OfflineSlash.Parts(),
			OfflineSlashGrace:     params.OfflineSlashGrace,
			Equalize: Equalize{
				Iterations: params.Equalize.Iterations,
				Tolerance:  params.Equalize.Tolerance,
			},
		},
		Currency: Currency{
			StakeMinimumBalance:  1,
			RewardMinimumBalance: 1,
		},
		Minting: Minting{
			Cap:   1_000_000_000,
			Decay: fixed.PerbillFromPercent(10).Parts(),
		},
	}
}

// Load reads and validates the file at path. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Params converts the staking section into module parameters.
func (s *Staking) Params() staking.Params {
	return staking.Params{
		SessionsPerEra:        s.SessionsPerEra,
		BondingDuration:       s.BondingDuration,
		ErasPerEpoch:          s.ErasPerEpoch,
		ValidatorCount:        s.ValidatorCount,
		MinimumValidatorCount: s.MinimumValidatorCount,
		OfflineSlash:          fixed.PerbillFromParts(s.OfflineSlash),
		OfflineSlashGrace:     s.OfflineSlashGrace,
		Invulnerables:         s.Invulnerables,
		Equalize: election.EqualizeOptions{
			Iterations: s.Equalize.Iterations,
			Tolerance:  s.Equalize.Tolerance,
		},
	}
}

// PayeeDestination maps the payee field to a reward destination.
func (s *Staker) PayeeDestination() (staking.RewardDestination, error) {
	switch s.Payee {
	case "", "stash":
		return staking.RewardToStash, nil
	case "controller":
		return staking.RewardToController, nil
	}
	return 0, errors.Errorf("unknown payee %q", s.Payee)
}

// Prefs returns the validator preferences of the staker.
func (s *Staker) Prefs() staking.ValidatorPrefs {
	prefs := staking.DefaultValidatorPrefs()
	if s.UnstakeThreshold != nil {
		prefs.UnstakeThreshold = *s.UnstakeThreshold
	}
	prefs.ValidatorPayment = s.ValidatorPayment
	prefs.Name = s.Name
	return prefs
}
