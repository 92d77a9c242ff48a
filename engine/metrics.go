// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import "github.com/vechain/npos/metrics"

var (
	metricSessions        = metrics.LazyLoadCounter("engine_sessions_count")
	metricSessionDuration = metrics.LazyLoadHistogram("engine_session_duration_ms", metrics.Bucket10s)
	metricActions         = metrics.LazyLoadCounterVec("engine_actions_count", []string{"kind", "outcome"})
)
