// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/lvldb"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
)

func stashOf(i byte) npos.Address      { return npos.BytesToAddress([]byte{0x5, i}) }
func controllerOf(i byte) npos.Address { return npos.BytesToAddress([]byte{0xc, i}) }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Staking.SessionsPerEra = 2
	cfg.Staking.ValidatorCount = 2
	cfg.Staking.MinimumValidatorCount = 1
	cfg.Genesis = config.Genesis{
		SessionReward: 10,
		Accounts: []config.Account{
			{Address: stashOf(1), Stake: 1000, Reward: 1},
			{Address: stashOf(2), Stake: 2000, Reward: 1},
			{Address: stashOf(3), Stake: 1500, Reward: 1},
		},
		Stakers: []config.Staker{
			{Stash: stashOf(1), Controller: controllerOf(1), Bond: 1000, Role: config.RoleValidator},
			{Stash: stashOf(2), Controller: controllerOf(2), Bond: 2000, Role: config.RoleValidator},
			{Stash: stashOf(3), Controller: controllerOf(3), Bond: 1500, Role: config.RoleNominator,
				Targets: []npos.Address{stashOf(1), stashOf(2)}},
		},
	}
	return cfg
}

func newEngine(t *testing.T, store kv.Store, cfg *config.Config) *Engine {
	e := New(store, cfg)
	_, err := e.Init()
	require.NoError(t, err)
	return e
}

func TestEngineLifecycle(t *testing.T) {
	e := newEngine(t, kv.NewMemStore(), testConfig())

	require.NoError(t, e.View(func(s *Snapshot) error {
		validators, err := s.Session.Validators()
		require.NoError(t, err)
		assert.ElementsMatch(t, []npos.Address{controllerOf(1), controllerOf(2)}, validators)
		era, err := s.Staking.CurrentEra()
		require.NoError(t, err)
		assert.Equal(t, npos.EraIndex(0), era)
		return nil
	}))

	tr, err := e.EndSession()
	require.NoError(t, err)
	assert.False(t, tr.NewEra())

	tr, err = e.EndSession()
	require.NoError(t, err)
	assert.True(t, tr.NewEra())
	assert.ElementsMatch(t, []npos.Address{controllerOf(1), controllerOf(2)}, tr.Validators)

	require.NoError(t, e.View(func(s *Snapshot) error {
		index, err := s.Session.Index()
		require.NoError(t, err)
		assert.Equal(t, npos.SessionIndex(2), index)

		era, err := s.Staking.CurrentEra()
		require.NoError(t, err)
		assert.Equal(t, npos.EraIndex(1), era)

		// two sessions of 10 were paid out over the elected set
		issuance, err := s.Reward.TotalIssuance()
		require.NoError(t, err)
		assert.Greater(t, issuance, npos.Balance(3))
		assert.LessOrEqual(t, issuance, npos.Balance(23))
		return nil
	}))
}

func TestEngineDeterministic(t *testing.T) {
	digest := func() npos.Bytes32 {
		e := newEngine(t, kv.NewMemStore(), testConfig())
		require.NoError(t, e.Run(context.Background(), 7, 0))
		d, err := e.Digest()
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, digest(), digest())
}

func TestEngineReopen(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	cfg := testConfig()
	e := New(store, cfg)
	id, err := e.Init()
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background(), 3, 0))
	digest, err := e.Digest()
	require.NoError(t, err)

	reopened := New(store, cfg)
	id2, err := reopened.Init()
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	digest2, err := reopened.Digest()
	require.NoError(t, err)
	assert.Equal(t, digest, digest2)

	require.NoError(t, reopened.View(func(s *Snapshot) error {
		index, err := s.Session.Index()
		require.NoError(t, err)
		assert.Equal(t, npos.SessionIndex(3), index)
		return nil
	}))
}

func TestEngineScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Scenario = []config.Action{
		{Session: 0, Kind: config.ActionUnbond, Controller: controllerOf(3), Value: 500},
		{Session: 0, Kind: config.ActionChill, Controller: controllerOf(9)},
		{Session: 0, Kind: config.ActionOffline, Controller: controllerOf(1), Count: 10},
		{Session: 1, Kind: config.ActionFund, Stash: stashOf(4), Value: 300},
		{Session: 1, Kind: config.ActionBond, Stash: stashOf(4), Controller: controllerOf(4), Value: 300},
		{Session: 1, Kind: config.ActionValidate, Controller: controllerOf(4)},
	}
	e := newEngine(t, kv.NewMemStore(), cfg)

	_, err := e.EndSession()
	require.NoError(t, err)

	require.NoError(t, e.View(func(s *Snapshot) error {
		ledger, ok, err := s.Staking.Ledger(controllerOf(3))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, npos.Balance(1000), ledger.Active)
		assert.Len(t, ledger.Unlocking, 1)

		disabled, err := s.Session.Disabled()
		require.NoError(t, err)
		assert.Equal(t, []npos.Address{controllerOf(1)}, disabled)

		_, ok, err = s.Staking.Validator(stashOf(1))
		require.NoError(t, err)
		assert.False(t, ok)

		count, err := s.Staking.SlashCount(stashOf(1))
		require.NoError(t, err)
		assert.Equal(t, uint32(10), count)
		return nil
	}))

	tr, err := e.EndSession()
	require.NoError(t, err)
	require.True(t, tr.NewEra())

	require.NoError(t, e.View(func(s *Snapshot) error {
		disabled, err := s.Session.Disabled()
		require.NoError(t, err)
		assert.Empty(t, disabled)

		prefs, ok, err := s.Staking.Validator(stashOf(4))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, staking.DefaultValidatorPrefs(), *prefs)
		return nil
	}))
}

func TestEngineAbortedSessionLeavesNoWrites(t *testing.T) {
	cfg := testConfig()
	cfg.Scenario = []config.Action{
		{Session: 0, Kind: config.ActionFund, Stash: stashOf(4), Value: 300},
		{Session: 0, Kind: config.ActionBond, Stash: stashOf(4), Controller: controllerOf(4), Value: 300},
		{Session: 0, Kind: "vote"},
	}
	e := newEngine(t, kv.NewMemStore(), cfg)

	_, err := e.EndSession()
	assert.ErrorContains(t, err, `unknown action "vote"`)
	assert.False(t, e.state.Dirty(), "applied actions are rolled back")
	assert.Empty(t, e.events.Take())

	require.NoError(t, e.View(func(s *Snapshot) error {
		index, err := s.Session.Index()
		require.NoError(t, err)
		assert.Equal(t, npos.SessionIndex(0), index)

		free, err := s.Stake.FreeBalance(stashOf(4))
		require.NoError(t, err)
		assert.Zero(t, free)
		_, ok, err := s.Staking.Bonded(stashOf(4))
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	// retrying without the bad action applies the rest exactly once
	e.scenario[0] = e.scenario[0][:2]
	_, err = e.EndSession()
	require.NoError(t, err)

	require.NoError(t, e.View(func(s *Snapshot) error {
		free, err := s.Stake.FreeBalance(stashOf(4))
		require.NoError(t, err)
		assert.Equal(t, npos.Balance(300), free)
		ledger, ok, err := s.Staking.Ledger(controllerOf(4))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, npos.Balance(300), ledger.Total)
		return nil
	}))
}

func TestEngineRunCanceled(t *testing.T) {
	e := newEngine(t, kv.NewMemStore(), testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, e.Run(ctx, 5, 0), context.Canceled)
	require.NoError(t, e.View(func(s *Snapshot) error {
		index, err := s.Session.Index()
		require.NoError(t, err)
		assert.Equal(t, npos.SessionIndex(1), index)
		return nil
	}))
}

func TestEngineOnSessionEnd(t *testing.T) {
	e := newEngine(t, kv.NewMemStore(), testConfig())
	var ended []npos.SessionIndex
	e.OnSessionEnd(func(index npos.SessionIndex) { ended = append(ended, index) })

	require.NoError(t, e.Run(context.Background(), 3, 0))
	assert.Equal(t, []npos.SessionIndex{1, 2, 3}, ended)
}

func TestEngineDump(t *testing.T) {
	e := newEngine(t, kv.NewMemStore(), testConfig())

	var keys []string
	require.NoError(t, e.Dump(func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	}))
	assert.Contains(t, keys, "genesis")
	assert.IsIncreasing(t, keys)
}

func TestSessionDisable(t *testing.T) {
	e := newEngine(t, kv.NewMemStore(), testConfig())
	require.NoError(t, e.View(func(s *Snapshot) error {
		assert.ErrorIs(t, s.Session.Disable(controllerOf(9)), errNotActive)
		require.NoError(t, s.Session.Disable(controllerOf(2)))
		require.NoError(t, s.Session.Disable(controllerOf(2)))
		disabled, err := s.Session.Disabled()
		require.NoError(t, err)
		assert.Equal(t, []npos.Address{controllerOf(2)}, disabled)
		return nil
	}))
}
