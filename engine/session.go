// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"slices"

	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
	"github.com/vechain/npos/state"
)

var errNotActive = reverts.New("not an active validator")

// Session tracks the session index and the controllers validating it.
// One session is one block, so the session index doubles as the block number.
type Session struct {
	index      *state.Value[npos.SessionIndex]
	validators *state.Value[[]npos.Address]
	disabled   *state.Value[[]npos.Address]
}

func newSession(st *state.State) *Session {
	return &Session{
		index:      state.NewValue[npos.SessionIndex](st, "session/index"),
		validators: state.NewValue[[]npos.Address](st, "session/validators"),
		disabled:   state.NewValue[[]npos.Address](st, "session/disabled"),
	}
}

// Index returns the index of the running session.
func (s *Session) Index() (npos.SessionIndex, error) {
	return s.index.Get()
}

// Validators returns the controllers of the running validator set.
func (s *Session) Validators() ([]npos.Address, error) {
	return s.validators.Get()
}

// Disabled returns the controllers disabled during the running set.
func (s *Session) Disabled() ([]npos.Address, error) {
	return s.disabled.Get()
}

// BlockNumber returns the running session index.
func (s *Session) BlockNumber() npos.BlockNumber {
	index, err := s.index.Get()
	if err != nil {
		logger.Warn("failed to read session index", "err", err)
		return 0
	}
	return index
}

// Disable marks an active controller as disabled until the validator set rotates.
func (s *Session) Disable(controller npos.Address) error {
	validators, err := s.validators.Get()
	if err != nil {
		return err
	}
	if !slices.Contains(validators, controller) {
		return errNotActive
	}
	disabled, err := s.disabled.Get()
	if err != nil {
		return err
	}
	if slices.Contains(disabled, controller) {
		return nil
	}
	logger.Info("validator disabled", "controller", controller)
	return s.disabled.Set(append(disabled, controller))
}

// rotate starts session next. A non-nil validators replaces the set and clears the disabled list.
func (s *Session) rotate(next npos.SessionIndex, validators []npos.Address) error {
	if err := s.index.Set(next); err != nil {
		return err
	}
	if validators == nil {
		return nil
	}
	s.disabled.Delete()
	return s.validators.Set(validators)
}
