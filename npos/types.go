// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package npos

import (
	"math"
	"math/bits"
)

// Balance is the native-width amount of an asset.
type Balance = uint64

// MaxBalance is the largest representable balance.
const MaxBalance Balance = math.MaxUint64

type (
	// EraIndex counts eras since genesis.
	EraIndex = uint32
	// SessionIndex counts sessions since genesis.
	SessionIndex = uint32
	// BlockNumber is the height of the block a report was made in.
	BlockNumber = uint32
)

// MaxBlockNumber is used as the `until` of locks that never expire.
const MaxBlockNumber BlockNumber = math.MaxUint32

// SaturatingAdd returns a+b, clamped at MaxBalance.
func SaturatingAdd(a, b Balance) Balance {
	if c := a + b; c >= a {
		return c
	}
	return MaxBalance
}

// SaturatingSub returns a-b, clamped at zero.
func SaturatingSub(a, b Balance) Balance {
	if a < b {
		return 0
	}
	return a - b
}

// CheckedSub returns a-b and false when it would underflow.
func CheckedSub(a, b Balance) (Balance, bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// CheckedAdd returns a+b and false when it would overflow.
func CheckedAdd(a, b Balance) (Balance, bool) {
	c := a + b
	return c, c >= a
}

// SaturatingMul returns a*b, clamped at MaxBalance.
func SaturatingMul(a, b Balance) Balance {
	if c, ok := CheckedMul(a, b); ok {
		return c
	}
	return MaxBalance
}

// CheckedMul returns a*b and false on overflow.
func CheckedMul(a, b Balance) (Balance, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
