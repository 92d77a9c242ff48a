// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache lookups.
type Stats struct {
	hit, miss atomic.Int64
	lastRate  atomic.Int64
}

func (s *Stats) record(hit bool) {
	if hit {
		s.hit.Add(1)
	} else {
		s.miss.Add(1)
	}
}

// Hits returns the number of lookups served from the cache.
func (s *Stats) Hits() int64 { return s.hit.Load() }

// Misses returns the number of lookups that fell through.
func (s *Stats) Misses() int64 { return s.miss.Load() }

// HitRate returns the hit rate in permille and whether it moved since the previous call.
func (s *Stats) HitRate() (permille int64, changed bool) {
	hit, miss := s.hit.Load(), s.miss.Load()
	if lookups := hit + miss; lookups > 0 {
		permille = hit * 1000 / lookups
	}
	return permille, s.lastRate.Swap(permille) != permille
}
