// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

func TestSlashValidator(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	validator, a, b := stashOf(1), stashOf(2), stashOf(3)
	env.fund(t, validator, 40)
	env.fund(t, a, 1000)
	env.fund(t, b, 1000)
	require.NoError(t, env.staking.store.stakers.Set(validator, &Exposure{
		Total:  300,
		Own:    100,
		Others: []IndividualExposure{{Who: a, Value: 150}, {Who: b, Value: 50}},
	}))
	issued, err := env.stake.TotalIssuance()
	require.NoError(t, err)

	removed, err := env.staking.slashValidator(validator, 250)
	require.NoError(t, err)

	// the validator covers 40 of its 100, backers split the remaining 210 three to one
	assert.Equal(t, npos.Balance(40+157+52), removed)
	assert.LessOrEqual(t, removed, npos.Balance(250))
	for who, want := range map[npos.Address]npos.Balance{validator: 0, a: 1000 - 157, b: 1000 - 52} {
		free, err := env.stake.FreeBalance(who)
		require.NoError(t, err)
		assert.Equal(t, want, free)
	}
	after, err := env.stake.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, issued-removed, after, "slash sink burns what was removed")
}

func TestSlashValidatorCapsAtExposure(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	validator := stashOf(1)
	env.fund(t, validator, 1000)
	require.NoError(t, env.staking.store.stakers.Set(validator, &Exposure{Total: 100, Own: 100}))

	removed, err := env.staking.slashValidator(validator, 500)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(100), removed)
}

func TestOfflineSlashAmount(t *testing.T) {
	tests := []struct {
		rate      fixed.Perbill
		exposure  npos.Balance
		threshold uint32
		want      npos.Balance
	}{
		{fixed.PerbillFromPercent(1), 1000, 0, 10},
		{fixed.PerbillFromPercent(1), 1000, 3, 80},
		{fixed.PerbillFromPercent(10), 1000, 4, 1000},
		{fixed.PerbillFromPercent(100), npos.MaxBalance, MaxUnstakeThreshold, npos.MaxBalance},
		{fixed.PerbillFromMillionths(1000), 225, 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, offlineSlashAmount(tt.rate, tt.exposure, tt.threshold), "%v of %d, threshold %d", tt.rate.Parts(), tt.exposure, tt.threshold)
	}
}

func TestOfflineEscalation(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)
	require.NoError(t, env.staking.SetOfflineSlashGrace(2))
	require.NoError(t, env.staking.SetOfflineSlash(fixed.PerbillFromPercent(1)))
	env.events.Take()

	stash, controller := stashOf(1), controllerOf(1)
	for i := 0; i < 5; i++ {
		env.block = npos.BlockNumber(10 + i)
		require.NoError(t, env.staking.OnOfflineValidator(controller, 1))
		assert.Equal(t, []Event{OfflineWarningEvent{Stash: stash, SlashCount: uint32(i)}}, env.events.Take())
		_, ok, err := env.staking.Validator(stash)
		require.NoError(t, err)
		assert.True(t, ok, "still validating after %d reports", i+1)
	}
	assert.Empty(t, env.session.disabled)

	free, err := env.stake.FreeBalance(stash)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(100), free, "warnings move no funds")

	// 1% of 225 doubled three times
	env.block = 20
	require.NoError(t, env.staking.OnOfflineValidator(controller, 1))
	assert.Equal(t, []Event{OfflineSlashEvent{Stash: stash, Amount: 16}}, env.events.Take())

	free, err = env.stake.FreeBalance(stash)
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(84), free)
	_, ok, err := env.staking.Validator(stash)
	require.NoError(t, err)
	assert.False(t, ok, "forced chill")
	assert.Equal(t, []npos.Address{controller}, env.session.disabled)

	count, err := env.staking.SlashCount(stash)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), count)
	records, err := env.staking.RecentlyOffline()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, OfflineRecord{Stash: stash, Block: 20, Count: 1}, records[5])
}

func TestOfflineInvulnerable(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	maxMinSequence(env).EndEra(true).Run(t)
	require.NoError(t, env.staking.SetInvulnerables([]npos.Address{stashOf(1)}))
	env.events.Take()

	for _i := 0; _i < 20; _i++ {
		require.NoError(t, env.staking.OnOfflineValidator(controllerOf(1), 1))
	}
	assert.Empty(t, env.events.Take())
	count, err := env.staking.SlashCount(stashOf(1))
	require.NoError(t, err)
	assert.Zero(t, count)

	// unknown controllers are ignored
	require.NoError(t, env.staking.OnOfflineValidator(controllerOf(99), 1))
	assert.Empty(t, env.events.Take())
}

func TestRecentlyOfflineEvictsOldest(t *testing.T) {
	env := newTestEnv(t, defaultTestParams())
	for i := 0; i < RecentOfflineCount; i++ {
		block := npos.BlockNumber(100 + i)
		if i == 5 || i == 7 {
			block = 3
		}
		require.NoError(t, env.staking.recordOffline(OfflineRecord{Stash: stashOf(i), Block: block, Count: 1}))
	}

	record := OfflineRecord{Stash: stashOf(200), Block: 500, Count: 2}
	require.NoError(t, env.staking.recordOffline(record))

	records, err := env.staking.RecentlyOffline()
	require.NoError(t, err)
	require.Len(t, records, RecentOfflineCount)
	assert.Equal(t, record, records[5], "first of the oldest is replaced")
	assert.Equal(t, npos.BlockNumber(3), records[7].Block)
}
