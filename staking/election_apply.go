// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"time"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

// electionInput snapshots the registry. Validators and nominators come out of state in
// ascending key order.
func (s *Staking) electionInput() (election.Input, error) {
	count, err := s.ValidatorCount()
	if err != nil {
		return election.Input{}, err
	}
	minimum, err := s.MinimumValidatorCount()
	if err != nil {
		return election.Input{}, err
	}
	_, validators, err := s.Validators()
	if err != nil {
		return election.Input{}, err
	}
	targets, nominators, err := s.Nominators()
	if err != nil {
		return election.Input{}, err
	}

	stakes := make(map[npos.Address]npos.Balance)
	var stakeErr error
	stakeOf := func(stash npos.Address) npos.Balance {
		if v, ok := stakes[stash]; ok {
			return v
		}
		v, err := s.store.slashableBalanceOf(stash)
		if err != nil && stakeErr == nil {
			stakeErr = err
		}
		stakes[stash] = v
		return v
	}

	in := election.Input{
		ValidatorCount:        int(count),
		MinimumValidatorCount: int(minimum),
		Validators:            validators,
		StakeOf:               stakeOf,
		Equalize:              s.params.Equalize,
	}
	for _, n := range nominators {
		in.Nominations = append(in.Nominations, election.Nomination{Nominator: n, Targets: targets[n]})
	}

	// resolve every stake up front so storage errors surface here
	for _, v := range validators {
		stakeOf(v)
	}
	for _, n := range nominators {
		stakeOf(n)
	}
	return in, stakeErr
}

// SelectValidators runs an election outside the era cycle, as done once at genesis.
// It returns the controllers of the elected set, or false when too few candidates qualify.
func (s *Staking) SelectValidators() ([]npos.Address, bool, error) {
	var (
		controllers []npos.Address
		ok          bool
	)
	err := s.atomic(func() (err error) {
		controllers, ok, err = s.selectValidators()
		return
	})
	if err != nil {
		return nil, false, err
	}
	return controllers, ok, nil
}

// selectValidators runs the election and, on success, replaces the exposures of the
// outgoing set, decays their slash counts and records the new set and slot stake.
// It returns the controllers of the elected stashes.
func (s *Staking) selectValidators() ([]npos.Address, bool, error) {
	in, err := s.electionInput()
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	res, ok := election.Elect(in)
	metricElectionDuration().Observe(time.Since(start).Milliseconds())
	if !ok {
		return nil, false, nil
	}

	outgoing, err := s.store.currentElected.Get()
	if err != nil {
		return nil, false, err
	}
	for _, stash := range outgoing {
		s.store.stakers.Delete(stash)
		count, err := s.store.slashCount.Get(stash)
		if err != nil {
			return nil, false, err
		}
		if count > 1 {
			err = s.store.slashCount.Set(stash, count-1)
		} else {
			s.store.slashCount.Delete(stash)
		}
		if err != nil {
			return nil, false, err
		}
	}

	slotStake := npos.MaxBalance
	for _, sup := range res.Supports {
		exposure := &Exposure{Total: sup.Total, Own: sup.Own}
		for _, b := range sup.Backers {
			exposure.Others = append(exposure.Others, IndividualExposure{Who: b.Who, Value: b.Value})
		}
		if err := s.store.stakers.Set(sup.Validator, exposure); err != nil {
			return nil, false, err
		}
		slotStake = min(slotStake, exposure.Total)
	}
	if err := s.store.slotStake.Set(slotStake); err != nil {
		return nil, false, err
	}
	if err := s.store.currentElected.Set(res.Elected); err != nil {
		return nil, false, err
	}
	metricSlotStake().Set(asMetric(slotStake))
	metricElectedCount().Set(int64(len(res.Elected)))

	controllers := make([]npos.Address, 0, len(res.Elected))
	for _, stash := range res.Elected {
		controller, ok, err := s.store.bonded.Lookup(stash)
		if err != nil {
			return nil, false, err
		}
		if ok {
			controllers = append(controllers, controller)
		}
	}
	return controllers, true, nil
}
