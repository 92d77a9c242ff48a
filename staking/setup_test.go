// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/state"
)

func stashOf(i int) npos.Address {
	return npos.BytesToAddress([]byte{0x5, byte(i)})
}

func controllerOf(i int) npos.Address {
	return npos.BytesToAddress([]byte{0xc, byte(i)})
}

type fakeSession struct {
	disabled []npos.Address
}

func (s *fakeSession) Disable(controller npos.Address) error {
	s.disabled = append(s.disabled, controller)
	return nil
}

type fakeCurve struct {
	budget npos.Balance
	err    error
	calls  int
}

func (c *fakeCurve) ComputeCurrentEraReward() (npos.Balance, error) {
	c.calls++
	return c.budget, c.err
}

var errCurve = errors.New("curve overflow")

type testEnv struct {
	state   *state.State
	stake   *currency.Ledger
	reward  *currency.Ledger
	staking *Staking
	events  *EventLog
	session *fakeSession
	curve   *fakeCurve
	block   npos.BlockNumber
}

// newTestEnv creates a staking module over an in-memory store. The election floor and
// the validator count are both two.
func newTestEnv(t *testing.T, params Params) *testEnv {
	env := &testEnv{
		state:   state.New(kv.NewMemStore()),
		events:  &EventLog{},
		session: &fakeSession{},
		curve:   &fakeCurve{},
	}
	blockNumber := func() npos.BlockNumber { return env.block }
	env.stake = currency.New("stake", env.state, 10, blockNumber)
	env.reward = currency.New("reward", env.state, 1, blockNumber)

	env.staking = New(env.state, params, Deps{
		Currency:       env.stake,
		RewardCurrency: env.reward,
		RewardSink:     currency.NewIssuance(env.reward),
		SlashSink:      currency.NewIssuance(env.stake),
		RewardCurve:    env.curve,
		Session:        env.session,
		Events:         env.events,
		BlockNumber:    blockNumber,
	})
	env.stake.OnFreeBalanceZero(env.staking.OnFreeBalanceZero)

	require.NoError(t, env.staking.SetValidatorCount(2))
	require.NoError(t, env.staking.SetMinimumValidatorCount(2))
	return env
}

func defaultTestParams() Params {
	p := DefaultParams()
	p.ErasPerEpoch = 100
	return p
}

// fund gives who free stake and a reward account able to receive deposits.
func (env *testEnv) fund(t *testing.T, who npos.Address, stake npos.Balance) {
	require.NoError(t, env.stake.MakeFreeBalanceBe(who, stake))
	require.NoError(t, env.reward.MakeFreeBalanceBe(who, 1))
}

func (env *testEnv) rewardBalance(t *testing.T, who npos.Address) npos.Balance {
	b, err := env.reward.FreeBalance(who)
	require.NoError(t, err)
	return b - 1
}

// endEra forces the era to end at the next session end.
func (env *testEnv) endEra(t *testing.T) *Transition {
	require.NoError(t, env.staking.ForceNewEra())
	tr, err := env.staking.Advance(SessionEnd{NextIndex: 1})
	require.NoError(t, err)
	return tr
}

func (env *testEnv) ledger(t *testing.T, controller npos.Address) *StakingLedger {
	l, ok, err := env.staking.Ledger(controller)
	require.NoError(t, err)
	require.True(t, ok, "no ledger for %v", controller)
	assertLedgerInvariant(t, l)
	return l
}

func assertLedgerInvariant(t *testing.T, l *StakingLedger) {
	assert.Equal(t, l.Total, l.Active+l.unlockingTotal(), "total = active + unlocking")
	assert.LessOrEqual(t, len(l.Unlocking), MaxUnlockingChunks)
}

func assertExposureInvariant(t *testing.T, e *Exposure) {
	sum := e.Own
	for _, o := range e.Others {
		sum = npos.SaturatingAdd(sum, o.Value)
	}
	assert.Equal(t, e.Total, sum, "total = own + others")
}

type TestFunc func(t *testing.T)

// TestSequence chains staking operations and runs them in order.
type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

// Validator funds stash i, bonds it to controller i and registers it as a validator.
func (st *TestSequence) Validator(i int, stake npos.Balance, prefs ValidatorPrefs) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.fund(t, stashOf(i), stake)
		st.env.fund(t, controllerOf(i), 0)
		if err := st.env.staking.Bond(stashOf(i), controllerOf(i), stake, RewardToStash); err != nil {
			t.Fatalf("failed to bond validator %d: %v", i, err)
		}
		if err := st.env.staking.Validate(controllerOf(i), prefs); err != nil {
			t.Fatalf("failed to validate %d: %v", i, err)
		}
		t.Logf("registered validator %d with %d", i, stake)
	})
}

// Nominator funds stash i, bonds it and nominates the stashes of targets.
func (st *TestSequence) Nominator(i int, stake npos.Balance, targets ...int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.fund(t, stashOf(i), stake)
		st.env.fund(t, controllerOf(i), 0)
		if err := st.env.staking.Bond(stashOf(i), controllerOf(i), stake, RewardToStash); err != nil {
			t.Fatalf("failed to bond nominator %d: %v", i, err)
		}
		var stashes []npos.Address
		for _, target := range targets {
			stashes = append(stashes, stashOf(target))
		}
		if err := st.env.staking.Nominate(controllerOf(i), stashes); err != nil {
			t.Fatalf("failed to nominate %d: %v", i, err)
		}
		t.Logf("registered nominator %d with %d", i, stake)
	})
}

// EndEra forces an era end and checks whether an election succeeded.
func (st *TestSequence) EndEra(elected bool) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		tr := st.env.endEra(t)
		assert.True(t, tr.NewEra())
		assert.Equal(t, elected, tr.Validators != nil, "election outcome")
		t.Logf("era ended, phases %v", tr.Phases)
	})
}

func (st *TestSequence) Offline(i int, count uint32) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staking.OnOfflineValidator(controllerOf(i), count); err != nil {
			t.Fatalf("failed to report %d offline: %v", i, err)
		}
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}

// maxMinSequence registers validators 1, 2 and 3 with 100, 200 and 300 and nominator 10
// with 150 backing validators 1 and 2.
func maxMinSequence(env *testEnv) *TestSequence {
	return NewSequence(env).
		Validator(1, 100, DefaultValidatorPrefs()).
		Validator(2, 200, DefaultValidatorPrefs()).
		Validator(3, 300, DefaultValidatorPrefs()).
		Nominator(10, 150, 1, 2)
}
