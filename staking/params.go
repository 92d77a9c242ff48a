// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
	"github.com/vechain/npos/staking/election"
)

// Params are the fixed parameters of the staking module.
//
// ValidatorCount, MinimumValidatorCount, OfflineSlash, OfflineSlashGrace and Invulnerables
// are defaults: values written to state through the root setters take precedence.
type Params struct {
	SessionsPerEra        npos.SessionIndex
	BondingDuration       npos.EraIndex
	ErasPerEpoch          npos.EraIndex
	ValidatorCount        uint32
	MinimumValidatorCount uint32
	OfflineSlash          fixed.Perbill
	OfflineSlashGrace     uint32
	Invulnerables         []npos.Address
	Equalize              election.EqualizeOptions
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		SessionsPerEra:        3,
		BondingDuration:       1,
		ErasPerEpoch:          10,
		ValidatorCount:        4,
		MinimumValidatorCount: 4,
		OfflineSlash:          fixed.PerbillFromMillionths(1000),
		OfflineSlashGrace:     0,
		Equalize:              election.DefaultEqualize,
	}
}
