// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements nominated proof of stake: bonding, validator and nominator
// registration, per-era elections, reward distribution and offline slashing.
package staking

import (
	"slices"

	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

var (
	logger = log.WithContext("pkg", "staking")

	// LockID is the lock placed on bonded stashes.
	LockID = currency.NewLockID("staking ")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Deps are the collaborators of the staking module. Currency and RewardCurrency are required.
type Deps struct {
	Currency       Currency
	RewardCurrency Currency
	RewardSink     RewardSink
	SlashSink      SlashSink
	RewardCurve    RewardCurve
	Session        Session
	Events         EventSink
	BlockNumber    func() npos.BlockNumber
}

// Staking is the staking module bound to a state.
type Staking struct {
	params Params
	state  *state.State
	deps   Deps
	store  *storage
}

// New creates the staking module.
func New(st *state.State, params Params, deps Deps) *Staking {
	if deps.Events == nil {
		deps.Events = discardEvents{}
	}
	if deps.BlockNumber == nil {
		deps.BlockNumber = func() npos.BlockNumber { return 0 }
	}
	return &Staking{
		params: params,
		state:  st,
		deps:   deps,
		store:  newStorage(st),
	}
}

// atomic runs fn in a state checkpoint and reverts every write when fn fails.
func (s *Staking) atomic(fn func() error) error {
	checkpoint := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		return err
	}
	return nil
}

//
// Getters - no state change
//

// Params returns the fixed parameters.
func (s *Staking) Params() Params {
	return s.params
}

// Bonded returns the controller of stash.
func (s *Staking) Bonded(stash npos.Address) (npos.Address, bool, error) {
	return s.store.bonded.Lookup(stash)
}

// Ledger returns the ledger owned by controller.
func (s *Staking) Ledger(controller npos.Address) (*StakingLedger, bool, error) {
	return s.store.ledgers.Lookup(controller)
}

// Payee returns where the rewards of stash are paid.
func (s *Staking) Payee(stash npos.Address) (RewardDestination, error) {
	return s.store.payees.Get(stash)
}

// Validator returns the preferences of a validating stash.
func (s *Staking) Validator(stash npos.Address) (*ValidatorPrefs, bool, error) {
	return s.store.validators.Lookup(stash)
}

// Nominations returns the targets of a nominating stash.
func (s *Staking) Nominations(stash npos.Address) ([]npos.Address, bool, error) {
	return s.store.nominators.Lookup(stash)
}

// Validators lists every validating stash in ascending order.
func (s *Staking) Validators() (map[npos.Address]*ValidatorPrefs, []npos.Address, error) {
	prefs := make(map[npos.Address]*ValidatorPrefs)
	var order []npos.Address
	err := s.store.validators.Iterate(func(key []byte, value *ValidatorPrefs) error {
		stash := npos.BytesToAddress(key)
		prefs[stash] = value
		order = append(order, stash)
		return nil
	})
	return prefs, order, err
}

// Nominators lists every nominating stash in ascending order.
func (s *Staking) Nominators() (map[npos.Address][]npos.Address, []npos.Address, error) {
	targets := make(map[npos.Address][]npos.Address)
	var order []npos.Address
	err := s.store.nominators.Iterate(func(key []byte, value []npos.Address) error {
		stash := npos.BytesToAddress(key)
		targets[stash] = value
		order = append(order, stash)
		return nil
	})
	return targets, order, err
}

// Stakers returns the exposure of an elected validator stash.
func (s *Staking) Stakers(stash npos.Address) (*Exposure, error) {
	return s.store.stakers.Get(stash)
}

// SlashCount returns the offline count of stash.
func (s *Staking) SlashCount(stash npos.Address) (uint32, error) {
	return s.store.slashCount.Get(stash)
}

// RecentlyOffline returns the recently offline buffer.
func (s *Staking) RecentlyOffline() ([]OfflineRecord, error) {
	return s.store.recentlyOffline.Get()
}

func (s *Staking) CurrentEra() (npos.EraIndex, error) {
	return s.store.currentEra.Get()
}

func (s *Staking) EpochIndex() (npos.EraIndex, error) {
	return s.store.epochIndex.Get()
}

// CurrentElected returns the stashes elected for the current era.
func (s *Staking) CurrentElected() ([]npos.Address, error) {
	return s.store.currentElected.Get()
}

// SlotStake returns the lowest exposure total among the current elected.
func (s *Staking) SlotStake() (npos.Balance, error) {
	return s.store.slotStake.Get()
}

func (s *Staking) CurrentSessionReward() (npos.Balance, error) {
	return s.store.currentSessionReward.Get()
}

func (s *Staking) CurrentEraReward() (npos.Balance, error) {
	return s.store.currentEraReward.Get()
}

func (s *Staking) CurrentEraTotalReward() (npos.Balance, error) {
	return s.store.currentEraTotalReward.Get()
}

func (s *Staking) IsForceNewEra() (bool, error) {
	return s.store.forceNewEra.Get()
}

func (s *Staking) ValidatorCount() (uint32, error) {
	return lookupOr(s.store.validatorCount, s.params.ValidatorCount)
}

func (s *Staking) MinimumValidatorCount() (uint32, error) {
	return lookupOr(s.store.minimumValidatorCount, s.params.MinimumValidatorCount)
}

func (s *Staking) OfflineSlash() (fixed.Perbill, error) {
	return lookupOr(s.store.offlineSlash, s.params.OfflineSlash)
}

func (s *Staking) OfflineSlashGrace() (uint32, error) {
	return lookupOr(s.store.offlineSlashGrace, s.params.OfflineSlashGrace)
}

// Invulnerables returns the stashes exempt from offline slashing.
func (s *Staking) Invulnerables() ([]npos.Address, error) {
	return lookupOr(s.store.invulnerables, s.params.Invulnerables)
}

// SlashableBalanceOf returns the bonded total of stash.
func (s *Staking) SlashableBalanceOf(stash npos.Address) (npos.Balance, error) {
	return s.store.slashableBalanceOf(stash)
}

//
// Root setters
//

// SetValidatorCount sets the desired number of validators.
func (s *Staking) SetValidatorCount(n uint32) error {
	logger.Info("set validator count", "count", n)
	return s.store.validatorCount.Set(n)
}

// SetMinimumValidatorCount sets the election floor.
func (s *Staking) SetMinimumValidatorCount(n uint32) error {
	return s.store.minimumValidatorCount.Set(n)
}

// ForceNewEra ends the era at the next session end.
func (s *Staking) ForceNewEra() error {
	logger.Info("forcing new era")
	return s.store.forceNewEra.Set(true)
}

// SetOfflineSlash sets the base offline slash rate.
func (s *Staking) SetOfflineSlash(rate fixed.Perbill) error {
	return s.store.offlineSlash.Set(rate)
}

// SetOfflineSlashGrace sets the number of offline reports tolerated on top of the unstake threshold.
func (s *Staking) SetOfflineSlashGrace(n uint32) error {
	logger.Info("set offline slash grace", "grace", n)
	return s.store.offlineSlashGrace.Set(n)
}

// SetInvulnerables sets the stashes exempt from offline slashing.
func (s *Staking) SetInvulnerables(stashes []npos.Address) error {
	return s.store.invulnerables.Set(slices.Clone(stashes))
}

// SetCurrentSessionReward sets the reward accrued for each ending session.
func (s *Staking) SetCurrentSessionReward(reward npos.Balance) error {
	return s.store.currentSessionReward.Set(reward)
}
