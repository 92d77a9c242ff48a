// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixed implements the fixed-point arithmetic shared by election, reward and slash
// apportionment. Products of a native balance and a ratio are computed in a 256-bit Wide
// integer and floored back to native width, so results never exceed the exact value.
package fixed

import (
	"github.com/holiman/uint256"

	"github.com/vechain/npos/npos"
)

var maxWide = new(uint256.Int).SetAllOne()

// Wide is a 256-bit unsigned intermediate. All operations saturate instead of wrapping.
type Wide struct {
	v uint256.Int
}

// NewWide creates a Wide from a uint64.
func NewWide(x uint64) Wide {
	var w Wide
	w.v.SetUint64(x)
	return w
}

// FromBalance widens a native balance.
func FromBalance(b npos.Balance) Wide {
	return NewWide(b)
}

// Pow2 returns 2^n, saturating for n >= 256.
func Pow2(n uint) Wide {
	if n >= 256 {
		return MaxWide()
	}
	var r Wide
	r.v.Lsh(uint256.NewInt(1), n)
	return r
}

// MaxWide returns the largest representable Wide.
func MaxWide() Wide {
	return Wide{v: *maxWide}
}

// Add returns w+x, saturating at MaxWide.
func (w Wide) Add(x Wide) Wide {
	var r Wide
	if _, overflow := r.v.AddOverflow(&w.v, &x.v); overflow {
		return MaxWide()
	}
	return r
}

// Sub returns w-x, saturating at zero.
func (w Wide) Sub(x Wide) Wide {
	var r Wide
	if _, underflow := r.v.SubOverflow(&w.v, &x.v); underflow {
		return Wide{}
	}
	return r
}

// Mul returns w*x, saturating at MaxWide.
func (w Wide) Mul(x Wide) Wide {
	var r Wide
	if _, overflow := r.v.MulOverflow(&w.v, &x.v); overflow {
		return MaxWide()
	}
	return r
}

// CheckedMul returns w*x and false on overflow.
func (w Wide) CheckedMul(x Wide) (Wide, bool) {
	var r Wide
	_, overflow := r.v.MulOverflow(&w.v, &x.v)
	return r, !overflow
}

// Div returns floor(w/x). Division by zero yields zero.
func (w Wide) Div(x Wide) Wide {
	var r Wide
	r.v.Div(&w.v, &x.v)
	return r
}

// MulDiv returns floor(w*x/d) without intermediate saturation.
// Division by zero yields zero.
func (w Wide) MulDiv(x, d Wide) Wide {
	var r Wide
	if d.IsZero() {
		return r
	}
	r.v.MulDivOverflow(&w.v, &x.v, &d.v)
	return r
}

// Cmp compares w and x and returns -1, 0 or +1.
func (w Wide) Cmp(x Wide) int {
	return w.v.Cmp(&x.v)
}

// Lt reports whether w < x.
func (w Wide) Lt(x Wide) bool {
	return w.v.Lt(&x.v)
}

// IsZero reports whether w is zero.
func (w Wide) IsZero() bool {
	return w.v.IsZero()
}

// Balance floors w back to native width, clamping at npos.MaxBalance.
func (w Wide) Balance() npos.Balance {
	if !w.v.IsUint64() {
		return npos.MaxBalance
	}
	return w.v.Uint64()
}

// String returns the decimal representation.
func (w Wide) String() string {
	return w.v.Dec()
}
