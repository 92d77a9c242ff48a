// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

const prefix = "staking"

// storage holds every staking table and slot.
type storage struct {
	bonded          *state.Mapping[npos.Address, npos.Address]
	ledgers         *state.Mapping[npos.Address, *StakingLedger]
	payees          *state.Mapping[npos.Address, RewardDestination]
	validators      *state.Mapping[npos.Address, *ValidatorPrefs]
	nominators      *state.Mapping[npos.Address, []npos.Address]
	stakers         *state.Mapping[npos.Address, *Exposure]
	slashCount      *state.Mapping[npos.Address, uint32]
	recentlyOffline *state.Value[[]OfflineRecord]

	currentEra            *state.Value[npos.EraIndex]
	epochIndex            *state.Value[npos.EraIndex]
	currentElected        *state.Value[[]npos.Address]
	slotStake             *state.Value[npos.Balance]
	forceNewEra           *state.Value[bool]
	currentSessionReward  *state.Value[npos.Balance]
	currentEraReward      *state.Value[npos.Balance]
	currentEraTotalReward *state.Value[npos.Balance]

	validatorCount        *state.Value[uint32]
	minimumValidatorCount *state.Value[uint32]
	offlineSlash          *state.Value[fixed.Perbill]
	offlineSlashGrace     *state.Value[uint32]
	invulnerables         *state.Value[[]npos.Address]
}

func newStorage(st *state.State) *storage {
	return &storage{
		bonded:          state.NewMapping[npos.Address, npos.Address](st, prefix+"/bonded"),
		ledgers:         state.NewMapping[npos.Address, *StakingLedger](st, prefix+"/ledger"),
		payees:          state.NewMapping[npos.Address, RewardDestination](st, prefix+"/payee"),
		validators:      state.NewMapping[npos.Address, *ValidatorPrefs](st, prefix+"/validators"),
		nominators:      state.NewMapping[npos.Address, []npos.Address](st, prefix+"/nominators"),
		stakers:         state.NewMapping[npos.Address, *Exposure](st, prefix+"/stakers"),
		slashCount:      state.NewMapping[npos.Address, uint32](st, prefix+"/slash-count"),
		recentlyOffline: state.NewValue[[]OfflineRecord](st, prefix+"/recently-offline"),

		currentEra:            state.NewValue[npos.EraIndex](st, prefix+"/current-era"),
		epochIndex:            state.NewValue[npos.EraIndex](st, prefix+"/epoch-index"),
		currentElected:        state.NewValue[[]npos.Address](st, prefix+"/current-elected"),
		slotStake:             state.NewValue[npos.Balance](st, prefix+"/slot-stake"),
		forceNewEra:           state.NewValue[bool](st, prefix+"/force-new-era"),
		currentSessionReward:  state.NewValue[npos.Balance](st, prefix+"/current-session-reward"),
		currentEraReward:      state.NewValue[npos.Balance](st, prefix+"/current-era-reward"),
		currentEraTotalReward: state.NewValue[npos.Balance](st, prefix+"/current-era-total-reward"),

		validatorCount:        state.NewValue[uint32](st, prefix+"/validator-count"),
		minimumValidatorCount: state.NewValue[uint32](st, prefix+"/minimum-validator-count"),
		offlineSlash:          state.NewValue[fixed.Perbill](st, prefix+"/offline-slash"),
		offlineSlashGrace:     state.NewValue[uint32](st, prefix+"/offline-slash-grace"),
		invulnerables:         state.NewValue[[]npos.Address](st, prefix+"/invulnerables"),
	}
}

// lookupOr returns the stored value of v, or def when unset.
func lookupOr[V any](v *state.Value[V], def V) (V, error) {
	value, exists, err := v.Lookup()
	if err != nil || !exists {
		return def, err
	}
	return value, nil
}

// ledgerOf resolves the ledger of a stash through its controller.
func (s *storage) ledgerOf(stash npos.Address) (*StakingLedger, bool, error) {
	controller, ok, err := s.bonded.Lookup(stash)
	if err != nil || !ok {
		return nil, false, err
	}
	return s.ledgers.Lookup(controller)
}

// slashableBalanceOf is the bonded total of a stash.
func (s *storage) slashableBalanceOf(stash npos.Address) (npos.Balance, error) {
	ledger, ok, err := s.ledgerOf(stash)
	if err != nil || !ok {
		return 0, err
	}
	return ledger.Total, nil
}
