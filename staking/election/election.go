// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package election implements the validator election: sequential Phragmén over
// self-votes and nominations, followed by an optional equalization pass.
//
// Every loop runs over slices sorted by address, so identical inputs produce
// identical results on every replica.
package election

import (
	"slices"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

// scale is the numerator of an unloaded candidate score.
var scale = fixed.Pow2(128)

type candidate struct {
	who      npos.Address
	stake    npos.Balance
	approval fixed.Wide
	score    fixed.Wide
	backed   bool
	elected  bool
}

type edge struct {
	cand int
	load fixed.Wide
}

type voter struct {
	who    npos.Address
	budget npos.Balance
	load   fixed.Wide
	edges  []edge
	self   bool
}

// Elect runs the election. It returns false when fewer than the minimum number of
// candidates are eligible.
func Elect(in Input) (*Result, bool) {
	floor := max(in.MinimumValidatorCount, 1)

	candidates, index := collectCandidates(in)
	voters := collectVoters(in, candidates, index)

	eligible := 0
	for _, c := range candidates {
		if c.backed {
			eligible++
		}
	}
	if eligible < floor {
		return nil, false
	}

	rounds := min(in.ValidatorCount, eligible)
	elected := make([]int, 0, rounds)
	for r := 0; r < rounds; r++ {
		winner := runRound(candidates, voters)
		if winner < 0 {
			break
		}
		elected = append(elected, winner)
	}
	if len(elected) < floor {
		return nil, false
	}

	res := &Result{
		Elected:     make([]npos.Address, 0, len(elected)),
		Assignments: buildAssignments(voters, candidates),
	}
	for _, c := range elected {
		res.Elected = append(res.Elected, candidates[c].who)
	}
	res.Supports = buildSupports(res.Elected, res.Assignments, in.StakeOf, in.Equalize)
	return res, true
}

// collectCandidates returns validators with non-zero stake in ascending order.
func collectCandidates(in Input) ([]*candidate, map[npos.Address]int) {
	validators := slices.Clone(in.Validators)
	npos.SortAddresses(validators)
	validators = slices.Compact(validators)

	candidates := make([]*candidate, 0, len(validators))
	index := make(map[npos.Address]int, len(validators))
	for _, v := range validators {
		stake := in.StakeOf(v)
		if stake == 0 {
			continue
		}
		index[v] = len(candidates)
		candidates = append(candidates, &candidate{
			who:      v,
			stake:    stake,
			approval: fixed.FromBalance(stake),
		})
	}
	return candidates, index
}

// collectVoters returns a self-vote per candidate followed by nominators in ascending order.
func collectVoters(in Input, candidates []*candidate, index map[npos.Address]int) []*voter {
	voters := make([]*voter, 0, len(candidates)+len(in.Nominations))
	for i, c := range candidates {
		voters = append(voters, &voter{
			who:    c.who,
			budget: c.stake,
			edges:  []edge{{cand: i}},
			self:   true,
		})
	}

	nominations := slices.Clone(in.Nominations)
	slices.SortStableFunc(nominations, func(a, b Nomination) int {
		return a.Nominator.Compare(b.Nominator)
	})
	for i, n := range nominations {
		if i > 0 && nominations[i-1].Nominator == n.Nominator {
			continue
		}
		budget := in.StakeOf(n.Nominator)
		if budget == 0 {
			continue
		}
		v := &voter{who: n.Nominator, budget: budget}
		for _, t := range n.Targets {
			c, ok := index[t]
			if !ok || slices.ContainsFunc(v.edges, func(e edge) bool { return e.cand == c }) {
				continue
			}
			v.edges = append(v.edges, edge{cand: c})
			candidates[c].approval = candidates[c].approval.Add(fixed.FromBalance(budget))
			candidates[c].backed = true
		}
		if len(v.edges) > 0 {
			voters = append(voters, v)
		}
	}
	return voters
}

// runRound elects the eligible candidate with the lowest score and loads its voters.
// It returns -1 when no eligible candidate is left.
func runRound(candidates []*candidate, voters []*voter) int {
	for _, c := range candidates {
		c.score = scale
	}
	for _, v := range voters {
		if v.load.IsZero() {
			continue
		}
		weighted := fixed.FromBalance(v.budget).Mul(v.load)
		for _, e := range v.edges {
			if c := candidates[e.cand]; !c.elected {
				c.score = c.score.Add(weighted)
			}
		}
	}

	winner := -1
	for i, c := range candidates {
		if c.elected || !c.backed {
			continue
		}
		c.score = c.score.Div(c.approval)
		// candidates are ascending, so a strict comparison keeps the lowest address on ties
		if winner < 0 || c.score.Lt(candidates[winner].score) {
			winner = i
		}
	}
	if winner < 0 {
		return -1
	}

	w := candidates[winner]
	w.elected = true
	for _, v := range voters {
		for i := range v.edges {
			if v.edges[i].cand == winner {
				v.edges[i].load = w.score.Sub(v.load)
				v.load = w.score
			}
		}
	}
	return winner
}

// buildAssignments converts nominator edge loads into ratios and stakes.
func buildAssignments(voters []*voter, candidates []*candidate) []Assignment {
	var assignments []Assignment
	for _, v := range voters {
		if v.self || v.load.IsZero() {
			continue
		}
		a := Assignment{Nominator: v.who, Budget: v.budget}
		var sum fixed.Ratio
		for _, e := range v.edges {
			if !candidates[e.cand].elected {
				continue
			}
			r := fixed.RatioOf(e.load, v.load)
			sum = sum.SaturatingAdd(r)
			a.Edges = append(a.Edges, Edge{Target: candidates[e.cand].who, Ratio: r})
		}
		if len(a.Edges) == 0 {
			continue
		}
		spreadLeftover(a.Edges, fixed.One-sum)
		for i := range a.Edges {
			a.Edges[i].Stake = a.Edges[i].Ratio.MulFloor(v.budget)
		}
		assignments = append(assignments, a)
	}
	return assignments
}

// spreadLeftover hands rounding leftovers back to the edges so that ratios sum to One.
func spreadLeftover(edges []Edge, leftover fixed.Ratio) {
	if leftover == 0 {
		return
	}
	n := fixed.Ratio(len(edges))
	each, rest := leftover/n, leftover%n
	for i := range edges {
		edges[i].Ratio += each
		if fixed.Ratio(i) < rest {
			edges[i].Ratio++
		}
	}
}
