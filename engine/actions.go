// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/config"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/reverts"
)

// applyActions runs actions in order. Rejected calls are logged and skipped,
// any other failure aborts the session.
func (e *Engine) applyActions(actions []config.Action) error {
	for i := range actions {
		a := &actions[i]
		err := e.apply(a)
		switch {
		case err == nil:
			metricActions().AddWithLabel(1, map[string]string{"kind": a.Kind, "outcome": "applied"})
			logger.Debug("action applied", "action", a.Kind, "session", a.Session)
		case reverts.IsRevertErr(err):
			metricActions().AddWithLabel(1, map[string]string{"kind": a.Kind, "outcome": "rejected"})
			logger.Info("action rejected", "action", a.Kind, "session", a.Session, "reason", err)
		default:
			return errors.WithMessagef(err, "action %s", a.Kind)
		}
	}
	return nil
}

func (e *Engine) apply(a *config.Action) error {
	stk := e.modules.Staking
	switch a.Kind {
	case config.ActionFund:
		free, err := e.modules.Stake.FreeBalance(a.Stash)
		if err != nil {
			return err
		}
		return e.modules.Stake.MakeFreeBalanceBe(a.Stash, npos.SaturatingAdd(free, a.Value))
	case config.ActionBond:
		payee, err := a.Staker().PayeeDestination()
		if err != nil {
			return err
		}
		return stk.Bond(a.Stash, a.Controller, a.Value, payee)
	case config.ActionBondExtra:
		return stk.BondExtra(a.Stash, a.Value)
	case config.ActionUnbond:
		return stk.Unbond(a.Controller, a.Value)
	case config.ActionWithdraw:
		return stk.WithdrawUnbonded(a.Controller)
	case config.ActionValidate:
		return stk.Validate(a.Controller, a.Staker().Prefs())
	case config.ActionNominate:
		return stk.Nominate(a.Controller, a.Targets)
	case config.ActionChill:
		return stk.Chill(a.Controller)
	case config.ActionSetPayee:
		payee, err := a.Staker().PayeeDestination()
		if err != nil {
			return err
		}
		return stk.SetPayee(a.Controller, payee)
	case config.ActionSetController:
		return stk.SetController(a.Stash, a.Controller)
	case config.ActionOffline:
		return stk.OnOfflineValidator(a.Controller, a.Count)
	case config.ActionForceEra:
		return stk.ForceNewEra()
	}
	return errors.Errorf("unknown action %q", a.Kind)
}
