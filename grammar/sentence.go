package grammar

import (
	"fmt"
	"math"
)

// unboundedCost is the external API's "no finite maximum" sentinel, per
// SPEC_FULL.md §4.4. A finite max-cost computation that would land exactly
// on this value is treated as CostOverflow rather than silently colliding
// with the sentinel.
const unboundedCost = math.MaxUint16

// TokenCost supplies the cost of a single token. The contract is that cost
// is strictly positive; callers passing a zero-cost token get unspecified
// behavior from the analyses below, per SPEC_FULL.md §4.4.
type TokenCost[T storage] func(TIdx[T]) uint8

// SentenceGenerator computes minimum/maximum derivable-sentence costs for a
// Grammar and can construct minimal sentences. Cost vectors are computed
// lazily on first query and cached for the lifetime of the generator; the
// cache is not safe for concurrent use without external synchronization.
type SentenceGenerator[T storage] struct {
	g    *Grammar[T]
	cost TokenCost[T]

	minCost    []uint16
	minCosted  bool
	minCostErr error

	maxCost    []uint16
	maxCosted  bool
	maxCostErr error
}

// SentenceGenerator returns a generator over g using cost to price tokens.
func (g *Grammar[T]) SentenceGenerator(cost TokenCost[T]) *SentenceGenerator[T] {
	return &SentenceGenerator[T]{g: g, cost: cost}
}

func (sg *SentenceGenerator[T]) prodCost(p PIdx[T]) uint32 {
	var c uint32
	for _, s := range sg.g.Prod(p) {
		if s.IsToken() {
			c += uint32(sg.cost(s.Tok))
		} else {
			c += uint32(sg.minCost[s.R])
		}
	}
	return c
}

// ensureMinCosts runs the minimum-rule-cost fixed point of §4.4 exactly
// once, tracking per-rule "done" (complete vs. incomplete minimum found so
// far) until every rule is done or a full pass makes no further progress.
func (sg *SentenceGenerator[T]) ensureMinCosts() error {
	if sg.minCosted {
		return sg.minCostErr
	}
	sg.minCosted = true

	g := sg.g
	rules := g.RulesLen()
	cost := make([]uint16, rules)
	done := make([]bool, rules)

	for {
		changed := false
		for r := 0; r < rules; r++ {
			if done[r] {
				continue
			}
			rIdx := RIdx[T](r)

			var cmpltMin, noncmpltMin uint32
			var hasCmplt, hasNoncmplt bool

			for _, p := range g.RuleToProds(rIdx) {
				var c uint32
				complete := true
				for _, s := range g.Prod(p) {
					if s.IsToken() {
						c += uint32(sg.cost(s.Tok))
					} else {
						q := int(s.R)
						if !done[q] {
							complete = false
						}
						c += uint32(cost[q])
					}
				}
				if complete {
					if !hasCmplt || c < cmpltMin {
						cmpltMin, hasCmplt = c, true
					}
				} else {
					if !hasNoncmplt || c < noncmpltMin {
						noncmpltMin, hasNoncmplt = c, true
					}
				}
			}

			if hasCmplt && (!hasNoncmplt || cmpltMin <= noncmpltMin) {
				if cmpltMin > math.MaxUint16 {
					sg.minCostErr = costOverflowErr("min", rIdx)
					return sg.minCostErr
				}
				newCost := uint16(cmpltMin)
				if newCost != cost[r] || !done[r] {
					changed = true
				}
				cost[r] = newCost
				done[r] = true
			} else if hasNoncmplt {
				if noncmpltMin > math.MaxUint16 {
					sg.minCostErr = costOverflowErr("min", rIdx)
					return sg.minCostErr
				}
				newCost := uint16(noncmpltMin)
				if newCost != cost[r] {
					changed = true
				}
				cost[r] = newCost
			}
		}
		if !changed {
			break
		}
	}

	sg.minCost = cost
	return nil
}

// ensureMaxCosts runs the maximum-rule-cost fixed point of §4.4 exactly
// once: every rule on a self-cycle is pre-seeded to the unbounded sentinel,
// then a symmetric maximizing fixed point runs, short-circuiting to the
// sentinel whenever a production references an already-unbounded rule.
func (sg *SentenceGenerator[T]) ensureMaxCosts() error {
	if sg.maxCosted {
		return sg.maxCostErr
	}
	sg.maxCosted = true

	if err := sg.ensureMinCosts(); err != nil {
		sg.maxCostErr = err
		return err
	}

	g := sg.g
	rules := g.RulesLen()
	cost := make([]uint16, rules)
	done := make([]bool, rules)

	for r := 0; r < rules; r++ {
		rIdx := RIdx[T](r)
		if g.HasPath(rIdx, rIdx) {
			cost[r] = unboundedCost
			done[r] = true
		}
	}

	for {
		changed := false
		for r := 0; r < rules; r++ {
			if done[r] {
				continue
			}
			rIdx := RIdx[T](r)

			var curMax uint32
			first := true
			infinite := false

			for _, p := range g.RuleToProds(rIdx) {
				var c uint32
				prodInfinite := false
				for _, s := range g.Prod(p) {
					if s.IsToken() {
						c += uint32(sg.cost(s.Tok))
						continue
					}
					q := int(s.R)
					if cost[q] == unboundedCost {
						prodInfinite = true
						break
					}
					c += uint32(cost[q])
				}
				if prodInfinite {
					infinite = true
					break
				}
				if first || c > curMax {
					curMax, first = c, false
				}
			}

			if infinite {
				if cost[r] != unboundedCost {
					changed = true
				}
				cost[r] = unboundedCost
				done[r] = true
				continue
			}

			if curMax >= unboundedCost {
				sg.maxCostErr = costOverflowErr("max", rIdx)
				return sg.maxCostErr
			}
			newCost := uint16(curMax)
			if newCost != cost[r] {
				changed = true
			}
			cost[r] = newCost
		}
		if !changed {
			break
		}
	}

	sg.maxCost = cost
	return nil
}

// MinSentenceCost returns the minimum summed token cost of any sentence
// derivable from r.
func (sg *SentenceGenerator[T]) MinSentenceCost(r RIdx[T]) (uint16, error) {
	if err := sg.ensureMinCosts(); err != nil {
		return 0, err
	}
	return sg.minCost[r], nil
}

// MaxSentenceCost returns the maximum summed token cost of any sentence
// derivable from r, or unbounded=true if r lies on a cycle in the rule
// graph (no finite maximum exists).
func (sg *SentenceGenerator[T]) MaxSentenceCost(r RIdx[T]) (cost uint16, unbounded bool, err error) {
	if err := sg.ensureMaxCosts(); err != nil {
		return 0, false, err
	}
	c := sg.maxCost[r]
	if c == unboundedCost {
		return 0, true, nil
	}
	return c, false, nil
}

// MinSentence deterministically constructs one minimum-cost sentence
// derivable from r by repeatedly descending into the cheapest production of
// whatever rule is currently being expanded, breaking ties by whichever
// production was encountered first in build order.
func (sg *SentenceGenerator[T]) MinSentence(r RIdx[T]) ([]TIdx[T], error) {
	if err := sg.ensureMinCosts(); err != nil {
		return nil, err
	}

	type frame struct {
		syms []Symbol[T]
		idx  int
	}

	var out []TIdx[T]
	stack := []frame{{syms: sg.g.Prod(sg.cheapestProd(r))}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(top.syms) {
			stack = stack[:len(stack)-1]
			continue
		}
		sym := top.syms[top.idx]
		top.idx++

		if sym.IsToken() {
			out = append(out, sym.Tok)
		} else {
			stack = append(stack, frame{syms: sg.g.Prod(sg.cheapestProd(sym.R))})
		}
	}

	return out, nil
}

func (sg *SentenceGenerator[T]) cheapestProd(r RIdx[T]) PIdx[T] {
	var best PIdx[T]
	var bestCost uint32
	first := true
	for _, p := range sg.g.RuleToProds(r) {
		c := sg.prodCost(p)
		if first || c < bestCost {
			best, bestCost, first = p, c, false
		}
	}
	return best
}

// MinSentences returns every minimum-cost sentence derivable from r, as the
// left-to-right Cartesian product of each minimal production's symbols'
// own minimal-sentence sets. Enumeration order is unspecified.
//
// A rule that is only reachable from itself through productions that are
// all themselves minimal (a minimal-cost cycle) would make this set
// infinite; such a production contributes no sentences rather than
// recursing forever.
func (sg *SentenceGenerator[T]) MinSentences(r RIdx[T]) ([][]TIdx[T], error) {
	if err := sg.ensureMinCosts(); err != nil {
		return nil, err
	}
	memo := map[RIdx[T]][][]TIdx[T]{}
	visiting := map[RIdx[T]]bool{}
	return sg.ruleSentences(r, memo, visiting), nil
}

func (sg *SentenceGenerator[T]) ruleSentences(r RIdx[T], memo map[RIdx[T]][][]TIdx[T], visiting map[RIdx[T]]bool) [][]TIdx[T] {
	if v, ok := memo[r]; ok {
		return v
	}
	if visiting[r] {
		return nil
	}
	visiting[r] = true
	defer delete(visiting, r)

	target := sg.minCost[r]
	var out [][]TIdx[T]
	for _, p := range sg.g.RuleToProds(r) {
		if uint16(sg.prodCost(p)) != target {
			continue
		}
		out = append(out, sg.prodSentences(p, memo, visiting)...)
	}

	memo[r] = out
	return out
}

func (sg *SentenceGenerator[T]) prodSentences(p PIdx[T], memo map[RIdx[T]][][]TIdx[T], visiting map[RIdx[T]]bool) [][]TIdx[T] {
	result := [][]TIdx[T]{{}}
	for _, s := range sg.g.Prod(p) {
		var options [][]TIdx[T]
		if s.IsToken() {
			options = [][]TIdx[T]{{s.Tok}}
		} else {
			options = sg.ruleSentences(s.R, memo, visiting)
			if len(options) == 0 {
				return nil
			}
		}
		result = crossProductSentences(result, options)
	}
	return result
}

func crossProductSentences[T storage](a, b [][]TIdx[T]) [][]TIdx[T] {
	out := make([][]TIdx[T], 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			combo := make([]TIdx[T], 0, len(x)+len(y))
			combo = append(combo, x...)
			combo = append(combo, y...)
			out = append(out, combo)
		}
	}
	return out
}

func costOverflowErr[T storage](kind string, r RIdx[T]) error {
	return fmt.Errorf("%w: %s-cost of rule %d overflows uint16", ErrCostOverflow, kind, r)
}
