// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
)

const (
	// MaxNominations is the number of targets kept from a nomination.
	MaxNominations = 16
	// MaxUnlockingChunks bounds the unbonding queue of a ledger.
	MaxUnlockingChunks = 32
	// MaxUnstakeThreshold bounds ValidatorPrefs.UnstakeThreshold.
	MaxUnstakeThreshold = 10
	// RecentOfflineCount is the capacity of the recently offline buffer.
	RecentOfflineCount = 32
	// DefaultUnstakeThreshold is used when no preference is given.
	DefaultUnstakeThreshold = 3
)

// UnlockChunk is an amount that becomes withdrawable at Era.
type UnlockChunk struct {
	Value npos.Balance
	Era   npos.EraIndex
}

// StakingLedger is owned by a controller and tracks the bonded funds of its stash.
type StakingLedger struct {
	Stash     npos.Address
	Total     npos.Balance
	Active    npos.Balance
	Unlocking []UnlockChunk
}

// unlockingTotal sums the values of all unlocking chunks.
func (l *StakingLedger) unlockingTotal() npos.Balance {
	var sum npos.Balance
	for _, c := range l.Unlocking {
		sum = npos.SaturatingAdd(sum, c.Value)
	}
	return sum
}

// consolidateUnlocked drops every chunk matured at era and returns the withdrawn total.
func (l *StakingLedger) consolidateUnlocked(era npos.EraIndex) npos.Balance {
	var (
		withdrawn npos.Balance
		remaining = l.Unlocking[:0]
	)
	for _, c := range l.Unlocking {
		if c.Era > era {
			remaining = append(remaining, c)
			continue
		}
		withdrawn = npos.SaturatingAdd(withdrawn, c.Value)
	}
	l.Unlocking = remaining
	l.Total = npos.SaturatingSub(l.Total, withdrawn)
	return withdrawn
}

// ValidatorPrefs are the preferences of a stash willing to validate.
type ValidatorPrefs struct {
	UnstakeThreshold uint32
	ValidatorPayment npos.Balance
	Name             string
}

// DefaultValidatorPrefs returns prefs with the default unstake threshold and no payment.
func DefaultValidatorPrefs() ValidatorPrefs {
	return ValidatorPrefs{UnstakeThreshold: DefaultUnstakeThreshold}
}

// IndividualExposure is the stake of one backer behind a validator.
type IndividualExposure struct {
	Who   npos.Address
	Value npos.Balance
}

// Exposure is the stake behind an elected validator for the current era.
type Exposure struct {
	Total  npos.Balance
	Own    npos.Balance
	Others []IndividualExposure
}

// RewardDestination selects the account receiving rewards of a stash.
type RewardDestination uint8

const (
	RewardToStash RewardDestination = iota
	RewardToController
)

func (d RewardDestination) String() string {
	switch d {
	case RewardToStash:
		return "stash"
	case RewardToController:
		return "controller"
	default:
		return "unknown"
	}
}

// OfflineRecord is an entry of the recently offline buffer.
type OfflineRecord struct {
	Stash npos.Address
	Block npos.BlockNumber
	Count uint32
}

// Phase is a step of the session, era and epoch lifecycle.
type Phase uint8

const (
	PhaseWithinEra Phase = iota
	PhaseEraEnding
	PhaseEpochEnded
	PhaseEraEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWithinEra:
		return "within-era"
	case PhaseEraEnding:
		return "era-ending"
	case PhaseEpochEnded:
		return "epoch-ended"
	case PhaseEraEnded:
		return "era-ended"
	default:
		return "unknown"
	}
}

// SessionEnd is delivered when a session ends. NextIndex is the index of the session starting.
type SessionEnd struct {
	NextIndex npos.SessionIndex
}

// Transition reports what a SessionEnd caused.
type Transition struct {
	// Phases lists the phases visited, in order, ending with PhaseWithinEra.
	Phases []Phase
	// Validators are the controllers of the newly elected set. Nil unless an election succeeded.
	Validators []npos.Address
}

// NewEra reports whether the transition ended an era.
func (t *Transition) NewEra() bool {
	for _, p := range t.Phases {
		if p == PhaseEraEnded {
			return true
		}
	}
	return false
}
