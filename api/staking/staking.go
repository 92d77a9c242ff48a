// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking serves read only views of the staking state.
package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/npos/api/utils"
	"github.com/vechain/npos/engine"
)

// Backend provides consistent snapshots of the network state.
type Backend interface {
	View(fn func(s *engine.Snapshot) error) error
}

type Staking struct {
	backend Backend
}

func New(backend Backend) *Staking {
	return &Staking{backend}
}

func (s *Staking) handleGetEra(w http.ResponseWriter, _ *http.Request) error {
	var era Era
	err := s.backend.View(func(snap *engine.Snapshot) (err error) {
		stk := snap.Staking
		if era.Session, err = snap.Session.Index(); err != nil {
			return
		}
		if era.Era, err = stk.CurrentEra(); err != nil {
			return
		}
		if era.Epoch, err = stk.EpochIndex(); err != nil {
			return
		}
		if era.ForceNewEra, err = stk.IsForceNewEra(); err != nil {
			return
		}
		if era.SlotStake, err = stk.SlotStake(); err != nil {
			return
		}
		if era.SessionReward, err = stk.CurrentSessionReward(); err != nil {
			return
		}
		if era.EraReward, err = stk.CurrentEraReward(); err != nil {
			return
		}
		if era.EraTotalReward, err = stk.CurrentEraTotalReward(); err != nil {
			return
		}
		if era.ValidatorCount, err = stk.ValidatorCount(); err != nil {
			return
		}
		era.MinValidatorCount, err = stk.MinimumValidatorCount()
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &era)
}

func (s *Staking) handleGetElected(w http.ResponseWriter, _ *http.Request) error {
	var elected Elected
	err := s.backend.View(func(snap *engine.Snapshot) (err error) {
		if elected.Stashes, err = snap.Staking.CurrentElected(); err != nil {
			return
		}
		if elected.Controllers, err = snap.Session.Validators(); err != nil {
			return
		}
		elected.Disabled, err = snap.Session.Disabled()
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &elected)
}

func (s *Staking) handleGetExposure(w http.ResponseWriter, req *http.Request) error {
	stash, err := utils.AddressVar(req, "stash")
	if err != nil {
		return err
	}
	var exposure *Exposure
	err = s.backend.View(func(snap *engine.Snapshot) error {
		e, err := snap.Staking.Stakers(stash)
		if err != nil {
			return err
		}
		exposure = convertExposure(stash, e)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, exposure)
}

func (s *Staking) handleGetLedger(w http.ResponseWriter, req *http.Request) error {
	controller, err := utils.AddressVar(req, "controller")
	if err != nil {
		return err
	}
	var ledger *Ledger
	err = s.backend.View(func(snap *engine.Snapshot) error {
		l, ok, err := snap.Staking.Ledger(controller)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NotFound(errors.New("controller not found"))
		}
		payee, err := snap.Staking.Payee(l.Stash)
		if err != nil {
			return err
		}
		ledger = &Ledger{
			Controller: controller,
			Stash:      l.Stash,
			Total:      l.Total,
			Active:     l.Active,
			Unlocking:  make([]UnlockChunk, 0, len(l.Unlocking)),
			Payee:      payee.String(),
		}
		for _, c := range l.Unlocking {
			ledger.Unlocking = append(ledger.Unlocking, UnlockChunk{Value: c.Value, Era: c.Era})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ledger)
}

func (s *Staking) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	validators := []*Validator{}
	err := s.backend.View(func(snap *engine.Snapshot) error {
		prefs, order, err := snap.Staking.Validators()
		if err != nil {
			return err
		}
		for _, stash := range order {
			count, err := snap.Staking.SlashCount(stash)
			if err != nil {
				return err
			}
			p := prefs[stash]
			validators = append(validators, &Validator{
				Stash:            stash,
				UnstakeThreshold: p.UnstakeThreshold,
				ValidatorPayment: p.ValidatorPayment,
				Name:             p.Name,
				SlashCount:       count,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, validators)
}

func (s *Staking) handleGetNominators(w http.ResponseWriter, _ *http.Request) error {
	nominators := []*Nominator{}
	err := s.backend.View(func(snap *engine.Snapshot) error {
		targets, order, err := snap.Staking.Nominators()
		if err != nil {
			return err
		}
		for _, stash := range order {
			nominators = append(nominators, &Nominator{Stash: stash, Targets: targets[stash]})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, nominators)
}

func (s *Staking) handleGetOffline(w http.ResponseWriter, _ *http.Request) error {
	offline := []*Offline{}
	err := s.backend.View(func(snap *engine.Snapshot) error {
		records, err := snap.Staking.RecentlyOffline()
		if err != nil {
			return err
		}
		for _, r := range records {
			offline = append(offline, &Offline{Stash: r.Stash, Block: r.Block, Count: r.Count})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, offline)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/era").
		Methods(http.MethodGet).
		Name("staking_get_era").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetEra))
	sub.Path("/elected").
		Methods(http.MethodGet).
		Name("staking_get_elected").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetElected))
	sub.Path("/exposures/{stash}").
		Methods(http.MethodGet).
		Name("staking_get_exposure").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetExposure))
	sub.Path("/ledgers/{controller}").
		Methods(http.MethodGet).
		Name("staking_get_ledger").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetLedger))
	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("staking_get_validators").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetValidators))
	sub.Path("/nominators").
		Methods(http.MethodGet).
		Name("staking_get_nominators").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetNominators))
	sub.Path("/offline").
		Methods(http.MethodGet).
		Name("staking_get_offline").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetOffline))
}
