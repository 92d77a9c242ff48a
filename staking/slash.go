// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"slices"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

// slashValidator removes up to amount from the exposure of stash. The validator's own stake
// is slashed first and its backers cover the rest pro rata. Underfunded accounts are slashed
// as far as possible. It returns the amount actually removed.
func (s *Staking) slashValidator(stash npos.Address, amount npos.Balance) (npos.Balance, error) {
	exposure, err := s.store.stakers.Get(stash)
	if err != nil {
		return 0, err
	}
	amount = min(amount, exposure.Total)
	ownSlash := min(exposure.Own, amount)

	removed, missing, err := s.deps.Currency.Slash(stash, ownSlash)
	if err != nil {
		return 0, err
	}
	ownSlash -= missing

	if rest := amount - ownSlash; rest > 0 {
		if others := npos.SaturatingSub(exposure.Total, exposure.Own); others > 0 {
			for _, other := range exposure.Others {
				realized, _, err := s.deps.Currency.Slash(other.Who, fixed.RationalApproximation(other.Value, others).MulFloor(rest))
				if err != nil {
					return 0, err
				}
				removed = npos.SaturatingAdd(removed, realized)
			}
		}
	}

	if s.deps.SlashSink != nil {
		if err := s.deps.SlashSink.OnSlash(removed); err != nil {
			return 0, err
		}
	}
	metricSlashedTotal().Add(asMetric(removed))
	logger.Debug("slashed validator", "stash", stash, "requested", amount, "removed", removed)
	return removed, nil
}

// offlineSlashAmount is rate * exposure doubled threshold times, capped at the exposure.
func offlineSlashAmount(rate fixed.Perbill, exposure npos.Balance, threshold uint32) npos.Balance {
	base := rate.MulFloor(exposure)
	if base > npos.MaxBalance>>threshold {
		return exposure
	}
	return min(base<<threshold, exposure)
}

// OnOfflineValidator reports the validator controlled by controller offline count times.
// Past the tolerated count the validator is slashed, chilled and disabled for the session.
func (s *Staking) OnOfflineValidator(controller npos.Address, count uint32) error {
	logger.Debug("offline report", "controller", controller, "count", count)

	var event Event
	err := s.atomic(func() error {
		ledger, ok, err := s.store.ledgers.Lookup(controller)
		if err != nil || !ok {
			return err
		}
		stash := ledger.Stash

		invulnerables, err := s.Invulnerables()
		if err != nil {
			return err
		}
		if slices.Contains(invulnerables, stash) {
			return nil
		}

		slashCount, err := s.store.slashCount.Get(stash)
		if err != nil {
			return err
		}
		newSlashCount := slashCount + count
		if newSlashCount < slashCount {
			newSlashCount = ^uint32(0)
		}
		if err := s.store.slashCount.Set(stash, newSlashCount); err != nil {
			return err
		}
		if err := s.recordOffline(OfflineRecord{Stash: stash, Block: s.deps.BlockNumber(), Count: count}); err != nil {
			return err
		}

		grace, err := s.OfflineSlashGrace()
		if err != nil {
			return err
		}
		prefs, ok, err := s.store.validators.Lookup(stash)
		if err != nil {
			return err
		}
		if !ok {
			def := DefaultValidatorPrefs()
			prefs = &def
		}
		threshold := min(prefs.UnstakeThreshold, MaxUnstakeThreshold)
		maxSlashes := grace + threshold
		if maxSlashes < grace {
			maxSlashes = ^uint32(0)
		}

		if newSlashCount <= maxSlashes {
			metricOfflineReports().AddWithLabel(1, map[string]string{"outcome": "warning"})
			event = OfflineWarningEvent{Stash: stash, SlashCount: slashCount}
			return nil
		}

		exposure, err := s.store.stakers.Get(stash)
		if err != nil {
			return err
		}
		rate, err := s.OfflineSlash()
		if err != nil {
			return err
		}
		amount := offlineSlashAmount(rate, exposure.Total, threshold)
		if _, err := s.slashValidator(stash, amount); err != nil {
			return err
		}
		s.store.validators.Delete(stash)
		if s.deps.Session != nil {
			if err := s.deps.Session.Disable(controller); err != nil {
				logger.Warn("failed to disable validator", "controller", controller, "error", err)
			}
		}

		metricOfflineReports().AddWithLabel(1, map[string]string{"outcome": "slash"})
		event = OfflineSlashEvent{Stash: stash, Amount: amount}
		return nil
	})
	if err != nil {
		logger.Info("offline report failed", "controller", controller, "error", err)
		return err
	}

	if event != nil {
		s.deps.Events.Emit(event)
		logger.Info("offline validator", "event", event.Name(), "controller", controller)
	}
	return nil
}

// recordOffline appends to the recently offline buffer, replacing the record with the
// lowest block when full.
func (s *Staking) recordOffline(record OfflineRecord) error {
	records, err := s.store.recentlyOffline.Get()
	if err != nil {
		return err
	}
	if len(records) < RecentOfflineCount {
		records = append(records, record)
	} else {
		oldest := 0
		for i, r := range records {
			if r.Block < records[oldest].Block {
				oldest = i
			}
		}
		records[oldest] = record
	}
	return s.store.recentlyOffline.Set(records)
}
