// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/npos"
)

// payOneEra accrues three sessions of sessionReward and ends the era on the third.
func payOneEra(t *testing.T, env *testEnv, sessionReward npos.Balance) {
	require.NoError(t, env.staking.SetCurrentSessionReward(sessionReward))
	for next := npos.SessionIndex(1); next <= 3; next++ {
		_, err := env.staking.Advance(SessionEnd{NextIndex: next})
		require.NoError(t, err)
	}
}

func TestEraRewardSplit(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)
	issued, err := env.reward.TotalIssuance()
	require.NoError(t, err)
	env.events.Take()

	payOneEra(t, env, 100)

	// 150 per validator, shared over exposures of 225
	assert.Equal(t, npos.Balance(66), env.rewardBalance(t, stashOf(1)))
	assert.Equal(t, npos.Balance(133), env.rewardBalance(t, stashOf(2)))
	assert.Equal(t, npos.Balance(16+83), env.rewardBalance(t, stashOf(10)))
	assert.Zero(t, env.rewardBalance(t, stashOf(3)))

	after, err := env.reward.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, issued+66+133+99, after, "reward sink issues what was paid")
	assert.Contains(t, env.events.Take(), Event(RewardEvent{PerValidator: 150}))
}

func TestRewardConservation(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	NewSequence(env).
		Validator(1, 1000, ValidatorPrefs{UnstakeThreshold: 3, ValidatorPayment: 17}).
		Validator(2, 700, DefaultValidatorPrefs()).
		Nominator(10, 333, 1, 2).
		Nominator(11, 501, 1).
		Nominator(12, 99, 2).
		EndEra(true).
		Run(t)

	elected, err := env.staking.CurrentElected()
	require.NoError(t, err)
	require.Len(t, elected, 2)

	for _, stash := range elected {
		exposure, err := env.staking.Stakers(stash)
		require.NoError(t, err)
		assertExposureInvariant(t, exposure)

		prefs, _, err := env.staking.Validator(stash)
		require.NoError(t, err)

		const reward = 1_000_003
		before := env.state.NewCheckpoint()
		paid, err := env.staking.rewardValidator(stash, reward)
		require.NoError(t, err)
		env.state.RevertTo(before)

		// only floor rounding of each share is lost
		assert.LessOrEqual(t, paid, npos.Balance(reward))
		assert.GreaterOrEqual(t, paid+npos.Balance(len(exposure.Others))+1, npos.Balance(reward))
		assert.GreaterOrEqual(t, paid, prefs.ValidatorPayment)
	}
}

func TestRewardValidatorPayment(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)
	require.NoError(t, env.staking.Validate(controllerOf(2), ValidatorPrefs{UnstakeThreshold: 3, ValidatorPayment: 50}))

	paid, err := env.staking.rewardValidator(stashOf(2), 150)
	require.NoError(t, err)

	assert.Equal(t, npos.Balance(50+88), env.rewardBalance(t, stashOf(2)))
	assert.Equal(t, npos.Balance(11), env.rewardBalance(t, stashOf(10)))
	assert.Equal(t, npos.Balance(149), paid)

	// the cut is capped at the reward
	paid, err = env.staking.rewardValidator(stashOf(2), 20)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(20), paid)
}

func TestRewardDestination(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)
	require.NoError(t, env.staking.SetPayee(controllerOf(1), RewardToController))

	_, err := env.staking.rewardValidator(stashOf(1), 150)
	require.NoError(t, err)
	assert.Zero(t, env.rewardBalance(t, stashOf(1)))
	assert.Equal(t, npos.Balance(66), env.rewardBalance(t, controllerOf(1)))
}

func TestPayoutSkipsMissingAccounts(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)

	// the nominator has no reward account any more
	_, _, err := env.reward.Slash(stashOf(10), 1)
	require.NoError(t, err)

	paid, err := env.staking.rewardValidator(stashOf(1), 150)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(66), paid)
	free, err := env.reward.FreeBalance(stashOf(10))
	require.NoError(t, err)
	assert.Zero(t, free)
}
