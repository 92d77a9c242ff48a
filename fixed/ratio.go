// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"fmt"

	"github.com/vechain/npos/npos"
)

// Accuracy is the fixed denominator of a Ratio.
const Accuracy uint64 = 1 << 32

var wideAccuracy = NewWide(Accuracy)

// Ratio is a fraction in [0, 1] expressed as parts of Accuracy.
type Ratio uint64

// One is the ratio representing the whole.
const One = Ratio(Accuracy)

// RationalApproximation returns floor(num * Accuracy / den), capped at One.
// A zero denominator yields a zero ratio.
func RationalApproximation(num, den npos.Balance) Ratio {
	return RatioOf(FromBalance(num), FromBalance(den))
}

// RatioOf is RationalApproximation over wide operands.
func RatioOf(num, den Wide) Ratio {
	if den.IsZero() {
		return 0
	}
	if !num.Lt(den) {
		return One
	}
	return Ratio(num.MulDiv(wideAccuracy, den).Balance())
}

// MulFloor returns floor(b * r / Accuracy).
func (r Ratio) MulFloor(b npos.Balance) npos.Balance {
	return r.MulWide(FromBalance(b)).Balance()
}

// MulWide returns floor(w * r / Accuracy).
func (r Ratio) MulWide(w Wide) Wide {
	return w.MulDiv(NewWide(uint64(r)), wideAccuracy)
}

// Saturating adds two ratios, capping at One.
func (r Ratio) SaturatingAdd(x Ratio) Ratio {
	if s := r + x; s <= One && s >= r {
		return s
	}
	return One
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", uint64(r), Accuracy)
}

// Billion is the denominator of a Perbill.
const Billion uint32 = 1_000_000_000

// Perbill is a fraction in [0, 1] expressed in parts per billion.
// It is used for configured rates such as the offline slash.
type Perbill uint32

// PerbillFromParts creates a Perbill, capping at one billion parts.
func PerbillFromParts(parts uint32) Perbill {
	if parts > Billion {
		return Perbill(Billion)
	}
	return Perbill(parts)
}

// PerbillFromMillionths creates a Perbill from parts per million.
func PerbillFromMillionths(m uint32) Perbill {
	if m > Billion/1000 {
		return Perbill(Billion)
	}
	return Perbill(m * 1000)
}

// PerbillFromPercent creates a Perbill from a percentage.
func PerbillFromPercent(p uint32) Perbill {
	if p > 100 {
		return Perbill(Billion)
	}
	return Perbill(p * (Billion / 100))
}

// MulFloor returns floor(b * p / 10^9).
func (p Perbill) MulFloor(b npos.Balance) npos.Balance {
	return FromBalance(b).MulDiv(NewWide(uint64(p)), NewWide(uint64(Billion))).Balance()
}

// Parts returns the number of parts per billion.
func (p Perbill) Parts() uint32 {
	return uint32(p)
}
