// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/npos"
)

// Currency is the balance capability consumed by the staking module.
// It is implemented by currency.Ledger.
type Currency interface {
	FreeBalance(who npos.Address) (npos.Balance, error)
	TotalBalance(who npos.Address) (npos.Balance, error)
	MinimumBalance() npos.Balance
	SetLock(id currency.LockID, who npos.Address, amount npos.Balance, until npos.BlockNumber, reasons currency.WithdrawReasons) error
	ExtendLock(id currency.LockID, who npos.Address, amount npos.Balance, until npos.BlockNumber, reasons currency.WithdrawReasons) error
	RemoveLock(id currency.LockID, who npos.Address) error
	Slash(who npos.Address, value npos.Balance) (realized, unmet npos.Balance, err error)
	DepositIntoExisting(who npos.Address, value npos.Balance) error
	DepositCreating(who npos.Address, value npos.Balance) error
	EnsureCanWithdraw(who npos.Address, amount npos.Balance, reason currency.WithdrawReasons, newBalance npos.Balance) error
}

// RewardSink accepts the combined reward paid out in an era.
type RewardSink interface {
	OnReward(amount npos.Balance) error
}

// SlashSink accepts the combined amount removed by one slash.
type SlashSink interface {
	OnSlash(amount npos.Balance) error
}

// RewardCurve computes the reward budget of the eras in a new epoch.
type RewardCurve interface {
	ComputeCurrentEraReward() (npos.Balance, error)
}

// Session is the session rotation driver.
type Session interface {
	// Disable removes a validator, identified by its controller, from the current session.
	Disable(controller npos.Address) error
}

var (
	_ Currency   = (*currency.Ledger)(nil)
	_ RewardSink = (*currency.Issuance)(nil)
	_ SlashSink  = (*currency.Issuance)(nil)
)
