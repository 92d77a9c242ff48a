// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"github.com/vechain/npos/npos"
)

// Action kinds understood by the simulator.
const (
	ActionFund          = "fund"
	ActionBond          = "bond"
	ActionBondExtra     = "bond_extra"
	ActionUnbond        = "unbond"
	ActionWithdraw      = "withdraw"
	ActionValidate      = "validate"
	ActionNominate      = "nominate"
	ActionChill         = "chill"
	ActionSetPayee      = "set_payee"
	ActionSetController = "set_controller"
	ActionOffline       = "offline"
	ActionForceEra      = "force_era"
)

var actionKinds = map[string]struct{}{
	ActionFund:          {},
	ActionBond:          {},
	ActionBondExtra:     {},
	ActionUnbond:        {},
	ActionWithdraw:      {},
	ActionValidate:      {},
	ActionNominate:      {},
	ActionChill:         {},
	ActionSetPayee:      {},
	ActionSetController: {},
	ActionOffline:       {},
	ActionForceEra:      {},
}

// Action is one scripted call, applied before the session with index Session ends.
//
// Stash is the signer of bond, bond_extra, set_controller and fund. Every other call is
// signed by Controller.
type Action struct {
	Session    npos.SessionIndex `yaml:"session"`
	Kind       string            `yaml:"action"`
	Stash      npos.Address      `yaml:"stash,omitempty"`
	Controller npos.Address      `yaml:"controller,omitempty"`
	Value      npos.Balance      `yaml:"value,omitempty"`
	Payee      string            `yaml:"payee,omitempty"`
	Targets    []npos.Address    `yaml:"targets,omitempty"`
	Count      uint32            `yaml:"count,omitempty"`

	UnstakeThreshold *uint32      `yaml:"unstake_threshold,omitempty"`
	ValidatorPayment npos.Balance `yaml:"validator_payment,omitempty"`
}

// Staker views the action as a staker entry, to share payee and prefs parsing.
func (a *Action) Staker() *Staker {
	return &Staker{
		Stash:            a.Stash,
		Controller:       a.Controller,
		Bond:             a.Value,
		Payee:            a.Payee,
		Targets:          a.Targets,
		UnstakeThreshold: a.UnstakeThreshold,
		ValidatorPayment: a.ValidatorPayment,
	}
}
