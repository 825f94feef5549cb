package grammar

import "fmt"

// Itemset is a set of LR(1) items over a single Grammar, represented as a
// packed bit array per production rather than a set of discrete item
// values: for production a of length n(a), active[a] is a length-(n(a)+1)
// bit vector ("is the item [a, dot=d] present") and dots[a] is a length-
// (n(a)+1)*tokens bit vector whose slice [d*tokens, (d+1)*tokens) is the
// lookahead mask for dot d, meaningful only when active[a][d] is set.
//
// Itemset is mutable. Concurrent mutation of a single Itemset from more
// than one goroutine is not supported; Clone it first if independent copies
// are needed (e.g. while building a canonical collection of states, which
// is out of scope for this package).
type Itemset[T storage] struct {
	tokens int
	active [][]bool
	dots   [][]bool
}

// NewItemset returns an empty Itemset sized for g, with every bit clear.
func NewItemset[T storage](g *Grammar[T]) *Itemset[T] {
	tokens := g.TokensLen()
	n := g.ProdsLen()
	active := make([][]bool, n)
	dots := make([][]bool, n)
	for p := 0; p < n; p++ {
		pn := g.ProdLen(PIdx[T](p))
		active[p] = make([]bool, pn+1)
		dots[p] = make([]bool, (pn+1)*tokens)
	}
	return &Itemset[T]{tokens: tokens, active: active, dots: dots}
}

// Clone returns an independent deep copy of is.
func (is *Itemset[T]) Clone() *Itemset[T] {
	active := make([][]bool, len(is.active))
	dots := make([][]bool, len(is.dots))
	for p := range is.active {
		active[p] = append([]bool(nil), is.active[p]...)
		dots[p] = append([]bool(nil), is.dots[p]...)
	}
	return &Itemset[T]{tokens: is.tokens, active: active, dots: dots}
}

func (is *Itemset[T]) lookaheadSlice(p, d int) TokenSet[T] {
	start := d * is.tokens
	return TokenSet[T]{tokens: is.tokens, bits: is.dots[p][start : start+is.tokens]}
}

// Add marks the item [prod, dot=dot] as present, OR-ing lookahead into its
// lookahead slice. lookahead's width must equal the grammar's token count,
// or ErrLookaheadShapeMismatch is returned.
func (is *Itemset[T]) Add(g *Grammar[T], prod PIdx[T], dot SIdx[T], lookahead TokenSet[T]) error {
	if lookahead.Len() != is.tokens {
		return fmt.Errorf("%w: got width %d, want %d", ErrLookaheadShapeMismatch, lookahead.Len(), is.tokens)
	}
	is.active[prod][dot] = true
	is.lookaheadSlice(int(prod), int(dot)).Union(lookahead)
	return nil
}

// Active reports whether [prod, dot=dot] is present in is.
func (is *Itemset[T]) Active(prod PIdx[T], dot SIdx[T]) bool {
	return is.active[prod][dot]
}

// Lookahead returns a copy of the lookahead mask for [prod, dot=dot].
func (is *Itemset[T]) Lookahead(prod PIdx[T], dot SIdx[T]) TokenSet[T] {
	return is.lookaheadSlice(int(prod), int(dot)).Clone()
}

// ProdCount returns the number of productions is tracks items for (always
// the owning grammar's ProdsLen).
func (is *Itemset[T]) ProdCount() int { return len(is.active) }

// DotCount returns the number of dot positions tracked for production p,
// i.e. ProdLen(p)+1.
func (is *Itemset[T]) DotCount(p PIdx[T]) int { return len(is.active[p]) }

func symbolsEqual[T storage](a, b Symbol[T]) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == SymRule {
		return a.R == b.R
	}
	return a.Tok == b.Tok
}

// Close saturates is under LR(1) closure, per SPEC_FULL.md §4.3: repeatedly,
// for every active item [a, dot=d] whose symbol at d is a rule reference n,
// compute the propagated lookahead over the remainder of a and OR it into
// dot 0 of every production of n, until a full pass makes no change.
func (is *Itemset[T]) Close(g *Grammar[T], firsts *Firsts[T]) {
	for {
		changed := false

		for p := 0; p < len(is.active); p++ {
			prodSyms := g.Prod(PIdx[T](p))
			for d := 0; d < len(prodSyms); d++ {
				if !is.active[p][d] {
					continue
				}
				sym := prodSyms[d]
				if !sym.IsRule() {
					continue
				}
				n := sym.R

				lp := NewTokenSet[T](is.tokens)
				nullable := true
				for k := d + 1; k < len(prodSyms); k++ {
					s2 := prodSyms[k]
					if s2.IsToken() {
						lp.Set(s2.Tok)
						nullable = false
						break
					}
					m := s2.R
					for t := 0; t < is.tokens; t++ {
						if firsts.IsSet(m, TIdx[T](t)) {
							lp.Set(TIdx[T](t))
						}
					}
					if !firsts.IsEpsilonSet(m) {
						nullable = false
						break
					}
				}
				if nullable {
					lp.Union(is.lookaheadSlice(p, d))
				}

				for _, pn := range g.RuleToProds(n) {
					if !is.active[pn][0] {
						is.active[pn][0] = true
						changed = true
					}
					if is.lookaheadSlice(int(pn), 0).Union(lp) {
						changed = true
					}
				}
			}
		}

		if !changed {
			break
		}
	}
}

// Goto advances is in place to the GOTO of the current set on sym: every
// active dot whose next symbol equals sym is advanced one position, with
// its lookahead copied forward, and the result is reclosed. Clone is before
// calling Goto if the pre-GOTO set must be retained.
func (is *Itemset[T]) Goto(g *Grammar[T], firsts *Firsts[T], sym Symbol[T]) {
	newActive := make([][]bool, len(is.active))
	newDots := make([][]bool, len(is.dots))
	for p := range is.active {
		newActive[p] = make([]bool, len(is.active[p]))
		newDots[p] = make([]bool, len(is.dots[p]))
	}

	for p := 0; p < len(is.active); p++ {
		prodSyms := g.Prod(PIdx[T](p))
		for d := 0; d < len(is.active[p]); d++ {
			if !is.active[p][d] {
				continue
			}
			if d >= len(prodSyms) {
				continue
			}
			if !symbolsEqual(prodSyms[d], sym) {
				continue
			}
			newActive[p][d+1] = true
			start := (d + 1) * is.tokens
			dst := TokenSet[T]{tokens: is.tokens, bits: newDots[p][start : start+is.tokens]}
			dst.Union(is.lookaheadSlice(p, d))
		}
	}

	is.active = newActive
	is.dots = newDots
	is.Close(g, firsts)
}
