// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"slices"

	"github.com/vechain/npos/fixed"
	"github.com/vechain/npos/npos"
)

type support struct {
	who   npos.Address
	own   npos.Balance
	total fixed.Wide
}

// buildSupports sums own stake and assigned stakes per elected validator,
// equalizing the assignments in place when enabled.
func buildSupports(elected []npos.Address, assignments []Assignment, stakeOf func(npos.Address) npos.Balance, opts EqualizeOptions) []Support {
	supports := make([]*support, len(elected))
	index := make(map[npos.Address]int, len(elected))
	for i, who := range elected {
		own := stakeOf(who)
		supports[i] = &support{who: who, own: own, total: fixed.FromBalance(own)}
		index[who] = i
	}
	for _, a := range assignments {
		for _, e := range a.Edges {
			s := supports[index[e.Target]]
			s.total = s.total.Add(fixed.FromBalance(e.Stake))
		}
	}

	if opts.Iterations > 0 {
		equalize(assignments, supports, index, opts)
	}

	out := make([]Support, len(supports))
	for i, s := range supports {
		out[i] = Support{Validator: s.who, Own: s.own, Total: s.own}
	}
	// assignments are ordered by nominator, so are the backers
	for _, a := range assignments {
		for _, e := range a.Edges {
			if e.Stake == 0 {
				continue
			}
			s := &out[index[e.Target]]
			s.Backers = append(s.Backers, Backer{Who: a.Nominator, Value: e.Stake})
			s.Total = npos.SaturatingAdd(s.Total, e.Stake)
		}
	}
	return out
}

func equalize(assignments []Assignment, supports []*support, index map[npos.Address]int, opts EqualizeOptions) {
	for it := 0; it < opts.Iterations; it++ {
		var maxDiff npos.Balance
		for i := range assignments {
			if diff := equalizeOne(&assignments[i], supports, index, opts.Tolerance); diff > maxDiff {
				maxDiff = diff
			}
		}
		if maxDiff <= opts.Tolerance {
			return
		}
	}
}

// equalizeOne water-fills a nominator's budget over its elected targets, lifting the
// least backed first. It returns the backing spread observed before the move.
func equalizeOne(a *Assignment, supports []*support, index map[npos.Address]int, tolerance npos.Balance) npos.Balance {
	if len(a.Edges) == 0 {
		return 0
	}
	budget := fixed.FromBalance(a.Budget)
	supportOf := func(e Edge) *support { return supports[index[e.Target]] }

	var (
		used     fixed.Wide
		minStake fixed.Wide
		maxStake fixed.Wide
		backing  bool
		diff     = budget
	)
	for i, e := range a.Edges {
		total := supportOf(e).total
		used = used.Add(fixed.FromBalance(e.Stake))
		if i == 0 || total.Lt(minStake) {
			minStake = total
		}
		if e.Stake > 0 && (!backing || maxStake.Lt(total)) {
			maxStake = total
			backing = true
		}
	}
	if backing {
		diff = maxStake.Sub(minStake).Add(budget.Sub(used))
		if diff.Lt(fixed.FromBalance(tolerance)) {
			return diff.Balance()
		}
	}

	for i := range a.Edges {
		s := supportOf(a.Edges[i])
		s.total = s.total.Sub(fixed.FromBalance(a.Edges[i].Stake))
		a.Edges[i].Stake = 0
	}

	order := make([]int, len(a.Edges))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		if c := supportOf(a.Edges[x]).total.Cmp(supportOf(a.Edges[y]).total); c != 0 {
			return c
		}
		return a.Edges[x].Target.Compare(a.Edges[y].Target)
	})

	var cumulative fixed.Wide
	last := len(order) - 1
	for idx, i := range order {
		total := supportOf(a.Edges[i]).total
		if budget.Lt(total.Mul(fixed.NewWide(uint64(idx))).Sub(cumulative)) {
			last = idx - 1
			break
		}
		cumulative = cumulative.Add(total)
	}

	split := last + 1
	level := budget.Add(cumulative).Div(fixed.NewWide(uint64(split)))
	for _, i := range order[:split] {
		s := supportOf(a.Edges[i])
		stake := level.Sub(s.total).Balance()
		a.Edges[i].Stake = stake
		s.total = s.total.Add(fixed.FromBalance(stake))
	}
	for i := range a.Edges {
		a.Edges[i].Ratio = fixed.RationalApproximation(a.Edges[i].Stake, a.Budget)
	}
	return diff.Balance()
}
