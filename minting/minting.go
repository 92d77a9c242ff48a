// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package minting derives the era reward budget from the issuance cap of the reward asset.
//
// Each epoch releases a fixed fraction (the decay rate) of the issuance still available
// below the cap, spread evenly across the eras of the epoch.
package minting

import (
	"github.com/pkg/errors"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

// IssuanceSource reports the current total issuance of the reward asset.
type IssuanceSource interface {
	TotalIssuance() (npos.Balance, error)
}

// Curve computes era reward budgets.
type Curve struct {
	issuance     IssuanceSource
	cap          npos.Balance
	decay        fixed.Perbill
	erasPerEpoch uint32
}

// NewCurve creates a curve releasing decay of the remaining cap every epoch.
func NewCurve(issuance IssuanceSource, cap npos.Balance, decay fixed.Perbill, erasPerEpoch uint32) *Curve {
	return &Curve{
		issuance:     issuance,
		cap:          cap,
		decay:        decay,
		erasPerEpoch: erasPerEpoch,
	}
}

// EpochBudget returns the reward released over the next epoch.
func (c *Curve) EpochBudget() (npos.Balance, error) {
	issued, err := c.issuance.TotalIssuance()
	if err != nil {
		return 0, errors.Wrap(err, "total issuance")
	}
	remaining := npos.SaturatingSub(c.cap, issued)

	// remaining * decay must fit the native width before the per-era split
	product, ok := fixed.FromBalance(remaining).CheckedMul(fixed.NewWide(uint64(c.decay.Parts())))
	if !ok {
		return 0, errors.New("epoch budget overflow")
	}
	return product.Div(fixed.NewWide(uint64(fixed.Billion))).Balance(), nil
}

// ComputeCurrentEraReward returns the reward budget of each era in the next epoch.
func (c *Curve) ComputeCurrentEraReward() (npos.Balance, error) {
	if c.erasPerEpoch == 0 {
		return 0, errors.New("eras per epoch is zero")
	}
	budget, err := c.EpochBudget()
	if err != nil {
		return 0, err
	}
	return budget / npos.Balance(c.erasPerEpoch), nil
}
