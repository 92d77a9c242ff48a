// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsHitRate(t *testing.T) {
	var s Stats
	rate, changed := s.HitRate()
	assert.Zero(t, rate)
	assert.False(t, changed)

	s.record(true)
	s.record(false)
	rate, changed = s.HitRate()
	assert.Equal(t, int64(500), rate)
	assert.True(t, changed)

	_, changed = s.HitRate()
	assert.False(t, changed)

	s.record(true)
	s.record(true)
	rate, changed = s.HitRate()
	assert.Equal(t, int64(750), rate)
	assert.True(t, changed)
	assert.Equal(t, int64(3), s.Hits())
	assert.Equal(t, int64(1), s.Misses())
}
