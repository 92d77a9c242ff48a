// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

// Era summarizes the lifecycle counters and the reward state.
type Era struct {
	Session           npos.SessionIndex `json:"session"`
	Era               npos.EraIndex     `json:"era"`
	Epoch             npos.EraIndex     `json:"epoch"`
	ForceNewEra       bool              `json:"forceNewEra"`
	SlotStake         npos.Balance      `json:"slotStake"`
	SessionReward     npos.Balance      `json:"sessionReward"`
	EraReward         npos.Balance      `json:"eraReward"`
	EraTotalReward    npos.Balance      `json:"eraTotalReward"`
	ValidatorCount    uint32            `json:"validatorCount"`
	MinValidatorCount uint32            `json:"minimumValidatorCount"`
}

// Elected is the current validator set.
type Elected struct {
	Stashes     []npos.Address `json:"stashes"`
	Controllers []npos.Address `json:"controllers"`
	Disabled    []npos.Address `json:"disabled"`
}

type Backer struct {
	Who   npos.Address `json:"who"`
	Value npos.Balance `json:"value"`
}

type Exposure struct {
	Stash  npos.Address `json:"stash"`
	Total  npos.Balance `json:"total"`
	Own    npos.Balance `json:"own"`
	Others []Backer     `json:"others"`
}

func convertExposure(stash npos.Address, e *staking.Exposure) *Exposure {
	out := &Exposure{Stash: stash, Total: e.Total, Own: e.Own, Others: make([]Backer, 0, len(e.Others))}
	for _, o := range e.Others {
		out.Others = append(out.Others, Backer{Who: o.Who, Value: o.Value})
	}
	return out
}

type UnlockChunk struct {
	Value npos.Balance  `json:"value"`
	Era   npos.EraIndex `json:"era"`
}

type Ledger struct {
	Controller npos.Address  `json:"controller"`
	Stash      npos.Address  `json:"stash"`
	Total      npos.Balance  `json:"total"`
	Active     npos.Balance  `json:"active"`
	Unlocking  []UnlockChunk `json:"unlocking"`
	Payee      string        `json:"payee"`
}

type Validator struct {
	Stash            npos.Address `json:"stash"`
	UnstakeThreshold uint32       `json:"unstakeThreshold"`
	ValidatorPayment npos.Balance `json:"validatorPayment"`
	Name             string       `json:"name,omitempty"`
	SlashCount       uint32       `json:"slashCount"`
}

type Nominator struct {
	Stash   npos.Address   `json:"stash"`
	Targets []npos.Address `json:"targets"`
}

type Offline struct {
	Stash npos.Address     `json:"stash"`
	Block npos.BlockNumber `json:"block"`
	Count uint32           `json:"count"`
}
