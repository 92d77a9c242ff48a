// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import "github.com/vechain/npos/npos"

// Issuance settles the combined reward and slash amounts of an era against total issuance.
// Rewards were deposited into accounts and are issued; slashed funds were removed and are burned.
type Issuance struct {
	ledger *Ledger
}

func NewIssuance(ledger *Ledger) *Issuance {
	return &Issuance{ledger: ledger}
}

// OnReward issues the total reward paid out in an era.
func (i *Issuance) OnReward(amount npos.Balance) error {
	issued, err := i.ledger.Issue(amount)
	if err != nil {
		return err
	}
	logger.Debug("reward issued", "asset", i.ledger.name, "amount", issued)
	return nil
}

// OnSlash burns the total realized by a slash.
func (i *Issuance) OnSlash(amount npos.Balance) error {
	burned, err := i.ledger.Burn(amount)
	if err != nil {
		return err
	}
	logger.Debug("slash burned", "asset", i.ledger.name, "amount", burned)
	return nil
}
