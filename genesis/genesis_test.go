// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/state"
)

var (
	stash1 = npos.BytesToAddress([]byte{0x5, 1})
	stash2 = npos.BytesToAddress([]byte{0x5, 2})
	stash3 = npos.BytesToAddress([]byte{0x5, 3})
	ctrl1  = npos.BytesToAddress([]byte{0xc, 1})
	ctrl2  = npos.BytesToAddress([]byte{0xc, 2})
	ctrl3  = npos.BytesToAddress([]byte{0xc, 3})
)

func newModules(store kv.Store) *Modules {
	st := state.New(store)
	stake := currency.New("stake", st, 1, nil)
	reward := currency.New("reward", st, 1, nil)
	params := staking.DefaultParams()
	params.ValidatorCount = 2
	params.MinimumValidatorCount = 1
	return &Modules{
		State:  st,
		Stake:  stake,
		Reward: reward,
		Staking: staking.New(st, params, staking.Deps{
			Currency:       stake,
			RewardCurrency: reward,
		}),
	}
}

func testGenesis() *config.Genesis {
	return &config.Genesis{
		SessionReward: 30,
		Accounts: []config.Account{
			{Address: stash1, Stake: 100, Reward: 1},
			{Address: stash2, Stake: 200, Reward: 1},
			{Address: stash3, Stake: 150},
		},
		Stakers: []config.Staker{
			{Stash: stash1, Controller: ctrl1, Bond: 100, Role: config.RoleValidator},
			{Stash: stash2, Controller: ctrl2, Bond: 200, Role: config.RoleValidator, Payee: "controller"},
			{Stash: stash3, Controller: ctrl3, Bond: 150, Role: config.RoleNominator, Targets: []npos.Address{stash1, stash2}},
		},
	}
}

func TestBuild(t *testing.T) {
	store := kv.NewMemStore()
	m := newModules(store)

	gene, err := New(testGenesis()).Build(m)
	require.NoError(t, err)
	assert.ElementsMatch(t, []npos.Address{ctrl1, ctrl2}, gene.Validators)
	assert.False(t, m.State.Dirty())

	elected, err := m.Staking.CurrentElected()
	require.NoError(t, err)
	assert.ElementsMatch(t, []npos.Address{stash1, stash2}, elected)

	ledger, ok, err := m.Staking.Ledger(ctrl3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, npos.Balance(150), ledger.Active)

	payee, err := m.Staking.Payee(stash2)
	require.NoError(t, err)
	assert.Equal(t, staking.RewardToController, payee)

	reward, err := m.Staking.CurrentSessionReward()
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(30), reward)

	issuance, err := m.Stake.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, npos.Balance(450), issuance)

	// the genesis survives a reload from the store
	reloaded := newModules(store)
	id, ok, err := Load(reloaded.State)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, gene.ID, id)

	_, err = New(testGenesis()).Build(reloaded)
	assert.EqualError(t, err, "genesis already built")
}

func TestBuildDeterministic(t *testing.T) {
	a, err := New(testGenesis()).Build(newModules(kv.NewMemStore()))
	require.NoError(t, err)
	b, err := New(testGenesis()).Build(newModules(kv.NewMemStore()))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestBuildWithoutCandidates(t *testing.T) {
	cfg := testGenesis()
	cfg.Stakers = cfg.Stakers[:2]

	m := newModules(kv.NewMemStore())
	gene, err := New(cfg).Build(m)
	require.NoError(t, err)
	assert.Empty(t, gene.Validators)

	_, ok, err := Load(m.State)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildFailure(t *testing.T) {
	cfg := testGenesis()
	cfg.Stakers[1].Controller = ctrl1

	m := newModules(kv.NewMemStore())
	_, err := New(cfg).Build(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state process")

	_, ok, err := Load(m.State)
	require.NoError(t, err)
	assert.False(t, ok)
}
