// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"

	"github.com/vechain/npos/metrics"
	"github.com/vechain/npos/npos"
)

var (
	metricCurrentEra       = metrics.LazyLoadGauge("staking_current_era")
	metricSlotStake        = metrics.LazyLoadGauge("staking_slot_stake")
	metricElectedCount     = metrics.LazyLoadGauge("staking_elected_count")
	metricRewardsPaid      = metrics.LazyLoadCounter("staking_rewards_paid")
	metricSlashedTotal     = metrics.LazyLoadCounter("staking_slashed_total")
	metricOfflineReports   = metrics.LazyLoadCounterVec("staking_offline_reports", []string{"outcome"})
	metricElectionsFailed  = metrics.LazyLoadCounter("staking_elections_failed")
	metricElectionDuration = metrics.LazyLoadHistogram("staking_election_ms", metrics.Bucket10s)
)

// asMetric clamps a balance into the int64 range used by meters.
func asMetric(b npos.Balance) int64 {
	if b > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}
