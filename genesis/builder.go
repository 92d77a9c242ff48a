// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/currency"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking"
	"github.com/vechain/npos/state"
)

// Modules are the state backed modules a genesis writes to.
type Modules struct {
	State   *state.State
	Stake   *currency.Ledger
	Reward  *currency.Ledger
	Staking *staking.Staking
}

// Builder helper to build the genesis state.
type Builder struct {
	procs []func(m *Modules) error
}

// State add a state process.
func (b *Builder) State(proc func(m *Modules) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// Build runs the state processes in order, elects the first validator set and commits.
// It fails if the state already holds a genesis.
func (b *Builder) Build(m *Modules) (*Genesis, error) {
	marker := state.NewValue[npos.Bytes32](m.State, markerKey)
	if _, exists, err := marker.Lookup(); err != nil {
		return nil, err
	} else if exists {
		return nil, errors.New("genesis already built")
	}

	for _, proc := range b.procs {
		if err := proc(m); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}

	validators, ok, err := m.Staking.SelectValidators()
	if err != nil {
		return nil, errors.Wrap(err, "select validators")
	}
	if !ok {
		logger.Warn("no validator set elected at genesis")
	}

	digest, err := m.State.Digest()
	if err != nil {
		return nil, errors.Wrap(err, "digest")
	}
	if err := marker.Set(digest); err != nil {
		return nil, err
	}
	if err := m.State.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	return &Genesis{ID: digest, Validators: validators}, nil
}
