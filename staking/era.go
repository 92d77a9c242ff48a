// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/npos"
)

// OnSessionEnding is called by the session driver when session i ends. It returns the
// controllers of a newly elected validator set, or nil when the set is unchanged.
func (s *Staking) OnSessionEnding(i npos.SessionIndex) ([]npos.Address, error) {
	t, err := s.Advance(SessionEnd{NextIndex: i + 1})
	if err != nil {
		return nil, err
	}
	return t.Validators, nil
}

// Advance drives the lifecycle through one session end.
//
// The session reward is accrued first. When the next session starts a new era, or a new
// era was forced, the accrued reward is paid over the current elected set, the epoch is
// advanced if due, the era counter is incremented and a new set is elected.
func (s *Staking) Advance(ev SessionEnd) (*Transition, error) {
	t := &Transition{}
	err := s.atomic(func() error {
		phase := PhaseWithinEra
		for {
			t.Phases = append(t.Phases, phase)

			next, err := s.step(phase, ev, t)
			if err != nil {
				return errors.WithMessagef(err, "phase %v", phase)
			}
			if next == PhaseWithinEra {
				if phase != PhaseWithinEra {
					t.Phases = append(t.Phases, next)
				}
				return nil
			}
			phase = next
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// step performs the work of phase and returns the phase that follows.
func (s *Staking) step(phase Phase, ev SessionEnd, t *Transition) (Phase, error) {
	switch phase {
	case PhaseWithinEra:
		return s.endSession(ev)
	case PhaseEraEnding:
		return s.endEra()
	case PhaseEpochEnded:
		return PhaseEraEnded, s.newEpoch()
	case PhaseEraEnded:
		validators, err := s.newEra()
		t.Validators = validators
		return PhaseWithinEra, err
	default:
		return PhaseWithinEra, errors.Errorf("unknown phase %d", phase)
	}
}

// endSession accrues the session reward and decides whether the era ends.
func (s *Staking) endSession(ev SessionEnd) (Phase, error) {
	sessionReward, err := s.store.currentSessionReward.Get()
	if err != nil {
		return 0, err
	}
	eraReward, err := s.store.currentEraReward.Get()
	if err != nil {
		return 0, err
	}
	if err := s.store.currentEraReward.Set(npos.SaturatingAdd(eraReward, sessionReward)); err != nil {
		return 0, err
	}

	forced, err := s.store.forceNewEra.Get()
	if err != nil {
		return 0, err
	}
	s.store.forceNewEra.Delete()

	perEra := max(s.params.SessionsPerEra, 1)
	if forced || ev.NextIndex%perEra == 0 {
		return PhaseEraEnding, nil
	}
	return PhaseWithinEra, nil
}

// endEra pays the accrued era reward over the outgoing elected set.
func (s *Staking) endEra() (Phase, error) {
	reward, err := s.store.currentEraReward.Get()
	if err != nil {
		return 0, err
	}
	elected, err := s.store.currentElected.Get()
	if err != nil {
		return 0, err
	}
	if err := s.payEraReward(reward, elected); err != nil {
		return 0, err
	}
	s.store.currentEraReward.Delete()

	era, err := s.store.currentEra.Get()
	if err != nil {
		return 0, err
	}
	if s.params.ErasPerEpoch > 0 && era%s.params.ErasPerEpoch == 0 {
		return PhaseEpochEnded, nil
	}
	return PhaseEraEnded, nil
}

// newEpoch advances the epoch and asks the reward curve for the budget of its eras.
// A failing curve leaves the previous budget in place.
func (s *Staking) newEpoch() error {
	epoch, err := s.store.epochIndex.Get()
	if err != nil {
		return err
	}
	if err := s.store.epochIndex.Set(epoch + 1); err != nil {
		return err
	}
	if s.deps.RewardCurve == nil {
		return nil
	}

	budget, err := s.deps.RewardCurve.ComputeCurrentEraReward()
	if err != nil {
		logger.Warn("reward curve failed, keeping previous budget", "epoch", epoch+1, "error", err)
		return nil
	}
	if err := s.store.currentEraTotalReward.Set(budget); err != nil {
		return err
	}
	sessionReward := budget / npos.Balance(max(s.params.SessionsPerEra, 1))
	if err := s.store.currentSessionReward.Set(sessionReward); err != nil {
		return err
	}
	logger.Info("new epoch", "epoch", epoch+1, "era-budget", budget)
	return nil
}

// newEra increments the era and elects the next validator set.
func (s *Staking) newEra() ([]npos.Address, error) {
	era, err := s.store.currentEra.Get()
	if err != nil {
		return nil, err
	}
	era++
	if err := s.store.currentEra.Set(era); err != nil {
		return nil, err
	}
	metricCurrentEra().Set(int64(era))

	controllers, ok, err := s.selectValidators()
	if err != nil {
		return nil, err
	}
	if !ok {
		metricElectionsFailed().Add(1)
		s.deps.Events.Emit(ElectionFailedEvent{Era: era})
		logger.Warn("election failed, keeping validator set", "era", era)
		return nil, nil
	}

	s.deps.Events.Emit(NewEraEvent{Era: era, Elected: len(controllers)})
	logger.Info("new era", "era", era, "elected", len(controllers))
	return controllers, nil
}
