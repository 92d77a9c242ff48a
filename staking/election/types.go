// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

// Nomination is the set of validator stashes a nominator votes for.
type Nomination struct {
	Nominator npos.Address
	Targets   []npos.Address
}

// EqualizeOptions bounds the equalization pass. Zero iterations disables it.
type EqualizeOptions struct {
	Iterations int
	Tolerance  npos.Balance
}

// DefaultEqualize is applied by the staking module.
var DefaultEqualize = EqualizeOptions{Iterations: 2, Tolerance: 0}

// Input is a snapshot of the registry.
type Input struct {
	ValidatorCount        int
	MinimumValidatorCount int
	Validators            []npos.Address
	Nominations           []Nomination
	StakeOf               func(npos.Address) npos.Balance
	Equalize              EqualizeOptions
}

// Edge is the share of a nominator's stake allocated to one elected target.
type Edge struct {
	Target npos.Address
	Ratio  fixed.Ratio
	Stake  npos.Balance
}

// Assignment is the allocation of one nominator's stake.
type Assignment struct {
	Nominator npos.Address
	Budget    npos.Balance
	Edges     []Edge
}

// Backer is a nominator's share behind an elected validator.
type Backer struct {
	Who   npos.Address
	Value npos.Balance
}

// Support is the stake behind one elected validator.
type Support struct {
	Validator npos.Address
	Own       npos.Balance
	Total     npos.Balance
	Backers   []Backer
}

// Result is the outcome of an election.
// Elected and Supports share the order in which candidates were elected.
type Result struct {
	Elected     []npos.Address
	Assignments []Assignment
	Supports    []Support
}
