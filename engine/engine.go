// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine wires the currency, minting and staking modules over one state
// and drives them through scripted session ends.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/npos/co"
	"github.com/vechain/npos/config"
	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/genesis"
	"github.com/vechain/npos/kv"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/minting"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/state"
)

var logger = log.WithContext("pkg", "engine")

// Snapshot is the read surface handed to View callbacks.
type Snapshot struct {
	Staking *staking.Staking
	Session *Session
	Stake   *currency.Ledger
	Reward  *currency.Ledger
}

// Engine owns the state of a network. Writes go through EndSession, reads through View.
type Engine struct {
	mu       sync.RWMutex
	state    *state.State
	modules  *genesis.Modules
	session  *Session
	events   *staking.EventLog
	genesis  *config.Genesis
	scenario map[npos.SessionIndex][]config.Action

	onSessionEnd []func(npos.SessionIndex)
	sessionFeed  co.Signal
}

// New creates an engine over store. Call Init before driving sessions.
func New(store kv.Store, cfg *config.Config) *Engine {
	st := state.New(store)
	session := newSession(st)
	stake := currency.New("stake", st, cfg.Currency.StakeMinimumBalance, session.BlockNumber)
	reward := currency.New("reward", st, cfg.Currency.RewardMinimumBalance, session.BlockNumber)
	params := cfg.Staking.Params()
	events := &staking.EventLog{}

	stk := staking.New(st, params, staking.Deps{
		Currency:       stake,
		RewardCurrency: reward,
		RewardSink:     currency.NewIssuance(reward),
		SlashSink:      currency.NewIssuance(stake),
		RewardCurve:    minting.NewCurve(reward, cfg.Minting.Cap, fixed.PerbillFromParts(cfg.Minting.Decay), params.ErasPerEpoch),
		Session:        session,
		Events:         events,
		BlockNumber:    session.BlockNumber,
	})
	stake.OnFreeBalanceZero(stk.OnFreeBalanceZero)

	scenario := make(map[npos.SessionIndex][]config.Action)
	for _, a := range cfg.Scenario {
		scenario[a.Session] = append(scenario[a.Session], a)
	}

	return &Engine{
		state: st,
		modules: &genesis.Modules{
			State:   st,
			Stake:   stake,
			Reward:  reward,
			Staking: stk,
		},
		session:  session,
		events:   events,
		genesis:  &cfg.Genesis,
		scenario: scenario,
	}
}

// OnSessionEnd registers fn to be called with the index of each new session after it is committed.
func (e *Engine) OnSessionEnd(fn func(npos.SessionIndex)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSessionEnd = append(e.onSessionEnd, fn)
}

// NewSessionWaiter returns a waiter woken each time a session ends.
func (e *Engine) NewSessionWaiter() *co.Waiter {
	return e.sessionFeed.NewWaiter()
}

// Init builds the genesis on a fresh store and returns its id. An initialized store is left untouched.
func (e *Engine) Init() (npos.Bytes32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id, ok, err := genesis.Load(e.state); err != nil {
		return npos.Bytes32{}, err
	} else if ok {
		logger.Info("genesis loaded", "id", id)
		return id, nil
	}

	gene, err := genesis.New(e.genesis).Build(e.modules)
	if err != nil {
		return npos.Bytes32{}, errors.Wrap(err, "build genesis")
	}
	validators := gene.Validators
	if validators == nil {
		validators = []npos.Address{}
	}
	if err := e.session.rotate(0, validators); err != nil {
		return npos.Bytes32{}, err
	}
	if err := e.state.Commit(); err != nil {
		return npos.Bytes32{}, err
	}
	e.logEvents()
	logger.Info("genesis built", "id", gene.ID, "validators", len(gene.Validators))
	return gene.ID, nil
}

// EndSession applies the scripted actions of the running session, ends it and commits.
func (e *Engine) EndSession() (*staking.Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	index, err := e.session.Index()
	if err != nil {
		return nil, err
	}

	// an aborted session leaves nothing behind for the next commit
	checkpoint := e.state.NewCheckpoint()
	abort := func() {
		e.state.RevertTo(checkpoint)
		e.events.Take()
	}
	if err := e.applyActions(e.scenario[index]); err != nil {
		abort()
		return nil, errors.WithMessagef(err, "session %d", index)
	}

	t, err := e.modules.Staking.Advance(staking.SessionEnd{NextIndex: index + 1})
	if err != nil {
		abort()
		return nil, errors.WithMessagef(err, "session %d", index)
	}
	if err := e.session.rotate(index+1, t.Validators); err != nil {
		abort()
		return nil, err
	}
	if err := e.state.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	e.logEvents()
	metricSessions().Add(1)
	metricSessionDuration().Observe(time.Since(start).Milliseconds())
	for _, fn := range e.onSessionEnd {
		fn(index + 1)
	}
	e.sessionFeed.Broadcast()

	if t.NewEra() {
		era, err := e.modules.Staking.CurrentEra()
		if err != nil {
			return nil, err
		}
		digest, err := e.state.Digest()
		if err != nil {
			return nil, err
		}
		logger.Info("era transition", "session", index+1, "era", era, "phases", t.Phases, "elected", len(t.Validators), "digest", digest)
	} else {
		logger.Debug("session ended", "session", index+1)
	}
	return t, nil
}

// Run ends up to n sessions, pausing interval between them. It stops early when ctx is done.
func (e *Engine) Run(ctx context.Context, n int, interval time.Duration) error {
	for i := 0; i < n; i++ {
		if _, err := e.EndSession(); err != nil {
			return err
		}
		if interval <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil
}

// View runs fn against a consistent snapshot. Sessions do not end while fn runs.
func (e *Engine) View(fn func(s *Snapshot) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(&Snapshot{
		Staking: e.modules.Staking,
		Session: e.session,
		Stake:   e.modules.Stake,
		Reward:  e.modules.Reward,
	})
}

// Digest returns the digest of the committed state.
func (e *Engine) Digest() (npos.Bytes32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Digest()
}

// Dump visits every committed key-value pair in ascending key order.
func (e *Engine) Dump(fn func(key, val []byte) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Iterate(nil, fn)
}

func (e *Engine) logEvents() {
	for _, ev := range e.events.Take() {
		logger.Debug("event", "name", ev.Name(), "data", fmt.Sprintf("%+v", ev))
	}
}
