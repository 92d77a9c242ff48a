// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
)

// payEraReward splits budget evenly over elected and pays every validator and its backers.
// The remainder of the division is not carried over.
func (s *Staking) payEraReward(budget npos.Balance, elected []npos.Address) error {
	if budget == 0 || len(elected) == 0 {
		return nil
	}
	perValidator := budget / npos.Balance(len(elected))

	var paid npos.Balance
	for _, stash := range elected {
		amount, err := s.rewardValidator(stash, perValidator)
		if err != nil {
			return err
		}
		paid = npos.SaturatingAdd(paid, amount)
	}
	s.deps.Events.Emit(RewardEvent{PerValidator: perValidator})

	if s.deps.RewardSink != nil {
		if err := s.deps.RewardSink.OnReward(paid); err != nil {
			return err
		}
	}
	metricRewardsPaid().Add(asMetric(paid))
	logger.Debug("paid era reward", "budget", budget, "per-validator", perValidator, "paid", paid)
	return nil
}

// rewardValidator pays reward to stash and its backers. The validator takes its payment
// cut first, the rest is shared pro rata over the exposure. It returns the amount deposited.
func (s *Staking) rewardValidator(stash npos.Address, reward npos.Balance) (npos.Balance, error) {
	prefs, err := s.store.validators.Get(stash)
	if err != nil {
		return 0, err
	}
	cut := min(reward, prefs.ValidatorPayment)
	rest := reward - cut

	var paid, validatorShare npos.Balance
	if rest > 0 {
		exposure, err := s.store.stakers.Get(stash)
		if err != nil {
			return 0, err
		}
		total := max(exposure.Total, 1)
		for _, other := range exposure.Others {
			amount, err := s.makePayout(other.Who, fixed.RationalApproximation(other.Value, total).MulFloor(rest))
			if err != nil {
				return 0, err
			}
			paid = npos.SaturatingAdd(paid, amount)
		}
		validatorShare = fixed.RationalApproximation(exposure.Own, total).MulFloor(rest)
	}

	amount, err := s.makePayout(stash, npos.SaturatingAdd(validatorShare, cut))
	if err != nil {
		return 0, err
	}
	return npos.SaturatingAdd(paid, amount), nil
}

// makePayout deposits amount to the reward destination of stash.
// A deposit refused by the reward currency is skipped and counts as zero.
func (s *Staking) makePayout(stash npos.Address, amount npos.Balance) (npos.Balance, error) {
	if amount == 0 {
		return 0, nil
	}
	dest, err := s.store.payees.Get(stash)
	if err != nil {
		return 0, err
	}

	who := stash
	if dest == RewardToController {
		controller, ok, err := s.store.bonded.Lookup(stash)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		who = controller
	}

	if err := s.deps.RewardCurrency.DepositIntoExisting(who, amount); err != nil {
		if reverts.IsRevertErr(err) {
			logger.Debug("payout skipped", "stash", stash, "payee", who, "error", err)
			return 0, nil
		}
		return 0, err
	}
	return amount, nil
}
