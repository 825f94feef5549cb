package grammar

import "fmt"

const (
	startSeed         = "^"
	implicitSeed      = "~"
	implicitStartSeed = "^~"
)

// Grammar is the compact, immutable table produced by the builder (C3) from
// an ASTGrammar. It is generic over the unsigned integer width W used to
// store every index; New defaults to uint32, NewWithStorage lets the caller
// pick a narrower width for a grammar known to be small.
//
// A *Grammar[T] is safe for concurrent read-only use by any number of
// goroutines once New/NewWithStorage has returned: nothing in this package
// ever mutates it afterwards.
type Grammar[T storage] struct {
	ruleNames  []string
	ruleMap    map[string]RIdx[T]
	tokenNames []string // last entry is the unnamed EOF token
	tokenPrecs []*Precedence
	tokenMap   map[string]TIdx[T]
	eofTok     TIdx[T]

	prods      [][]Symbol[T]
	prodPrecs  []*Precedence
	prodsRules []RIdx[T]
	rulesProds [][]PIdx[T]

	startProd PIdx[T]
	implicit  *RIdx[T]
}

// New lowers ast into a Grammar backed by uint32 indices. It is a thin
// wrapper over NewWithStorage[uint32].
func New(dialect Dialect, ast *ASTGrammar) (*Grammar[uint32], error) {
	return NewWithStorage[uint32](dialect, ast)
}

// NewWithStorage lowers ast into a Grammar backed by the given storage
// width T, failing with ErrStorageOverflow if any count (rules, tokens,
// productions, or symbols within a single production) does not fit in T.
func NewWithStorage[T storage](dialect Dialect, ast *ASTGrammar) (*Grammar[T], error) {
	b := &builder[T]{ast: ast, dialect: dialect}
	return b.build()
}

// builder holds the intermediate state of one lowering pass. It is discarded
// once build returns.
type builder[T storage] struct {
	ast     *ASTGrammar
	dialect Dialect

	ruleNames []string
	ruleMap   map[string]RIdx[T]

	implicitTokSet   map[string]bool
	implicitRuleIdx  *RIdx[T]
	implicitStartIdx *RIdx[T]
}

func maxForWidth[T storage]() uint64 {
	var zero T
	zero--
	return uint64(zero)
}

func (b *builder[T]) build() (*Grammar[T], error) {
	a := b.ast
	max := maxForWidth[T]()

	nUserProds := 0
	maxProdSymbols := 0
	for _, rn := range a.RuleOrder {
		prods := a.Rules[rn]
		nUserProds += len(prods)
		for _, p := range prods {
			if len(p.Symbols) > maxProdSymbols {
				maxProdSymbols = len(p.Symbols)
			}
		}
	}

	// 1. Sizing check.
	nSynthRules := 1 // "^"
	useImplicit := b.dialect == ImplicitTokens && len(a.ImplicitTokens) > 0
	if useImplicit {
		nSynthRules += 2 // "~", "^~"
	}
	nSynthProds := 1
	if useImplicit {
		nSynthProds += 1 + len(a.ImplicitTokens) + 1 // ^~ prod, one per implicit token, plus empty
	}
	totalRules := nSynthRules + len(a.RuleOrder)
	totalTokens := len(a.Tokens) + 1 // + EOF
	totalProds := nUserProds + nSynthProds

	if uint64(totalRules) > max || uint64(totalTokens) > max ||
		uint64(totalProds) > max || uint64(maxProdSymbols) > max {
		return nil, fmt.Errorf("%w: rules=%d tokens=%d prods=%d max-symbols=%d exceed storage width", ErrStorageOverflow, totalRules, totalTokens, totalProds, maxProdSymbols)
	}

	// 2. Synthetic start-rule naming.
	existing := make(map[string]bool, totalRules)
	for _, rn := range a.RuleOrder {
		existing[rn] = true
	}
	startName := uniqueName(startSeed, existing)
	existing[startName] = true

	b.ruleNames = []string{startName}
	b.ruleMap = map[string]RIdx[T]{startName: 0}

	// 3. Implicit-rule naming.
	if useImplicit {
		implicitStartName := uniqueName(implicitStartSeed, existing)
		existing[implicitStartName] = true
		implicitName := uniqueName(implicitSeed, existing)
		existing[implicitName] = true

		isIdx := RIdx[T](len(b.ruleNames))
		b.ruleNames = append(b.ruleNames, implicitStartName)
		b.ruleMap[implicitStartName] = isIdx
		b.implicitStartIdx = &isIdx

		iIdx := RIdx[T](len(b.ruleNames))
		b.ruleNames = append(b.ruleNames, implicitName)
		b.ruleMap[implicitName] = iIdx
		b.implicitRuleIdx = &iIdx

		b.implicitTokSet = make(map[string]bool, len(a.ImplicitTokens))
		for _, t := range a.ImplicitTokens {
			b.implicitTokSet[t] = true
		}
	}

	// 4. User rules.
	for _, rn := range a.RuleOrder {
		idx := RIdx[T](len(b.ruleNames))
		b.ruleNames = append(b.ruleNames, rn)
		b.ruleMap[rn] = idx
	}

	// 5. Tokens.
	tokenNames := make([]string, 0, totalTokens)
	tokenPrecs := make([]*Precedence, 0, totalTokens)
	tokenMap := make(map[string]TIdx[T], len(a.Tokens))
	for _, tn := range a.Tokens {
		idx := TIdx[T](len(tokenNames))
		tokenNames = append(tokenNames, tn)
		if p, ok := a.Precs[tn]; ok {
			pc := p
			tokenPrecs = append(tokenPrecs, &pc)
		} else {
			tokenPrecs = append(tokenPrecs, nil)
		}
		tokenMap[tn] = idx
	}
	eofTok := TIdx[T](len(tokenNames))
	tokenNames = append(tokenNames, "")
	tokenPrecs = append(tokenPrecs, nil)

	// 6. Productions.
	prods := make([][]Symbol[T], totalProds)
	prodPrecs := make([]*Precedence, totalProds)
	prodsRules := make([]RIdx[T], totalProds)
	filled := make([]bool, totalProds)
	rulesProds := make([][]PIdx[T], len(b.ruleNames))

	startRuleName := a.startRuleName()
	userStartIdx, ok := b.ruleMap[startRuleName]
	if !ok && startRuleName != "" {
		return nil, wrapValidation("declared start rule %q not found", startRuleName)
	}

	nextSynth := PIdx[T](nUserProds)
	appendSynth := func(rule RIdx[T], syms []Symbol[T], prec *Precedence) PIdx[T] {
		p := nextSynth
		prods[p] = syms
		prodPrecs[p] = prec
		prodsRules[p] = rule
		filled[p] = true
		rulesProds[rule] = append(rulesProds[rule], p)
		nextSynth++
		return p
	}

	// ^
	var startProd PIdx[T]
	if useImplicit {
		startProd = appendSynth(0, []Symbol[T]{RuleSymbol(*b.implicitStartIdx)}, nil)
	} else {
		startProd = appendSynth(0, []Symbol[T]{RuleSymbol(userStartIdx)}, nil)
	}

	// ^~
	if useImplicit {
		appendSynth(*b.implicitStartIdx, []Symbol[T]{RuleSymbol(*b.implicitRuleIdx), RuleSymbol(userStartIdx)}, nil)

		// ~
		for _, t := range a.ImplicitTokens {
			tok, ok := tokenMap[t]
			if !ok {
				return nil, wrapValidation("implicit token %q not declared", t)
			}
			appendSynth(*b.implicitRuleIdx, []Symbol[T]{TokenSymbol(tok), RuleSymbol(*b.implicitRuleIdx)}, nil)
		}
		appendSynth(*b.implicitRuleIdx, []Symbol[T]{}, nil)
	}

	// User rules.
	globalIdx := 0
	for _, rn := range a.RuleOrder {
		rIdx := b.ruleMap[rn]
		for _, ap := range a.Rules[rn] {
			p := PIdx[T](globalIdx)
			globalIdx++

			syms := make([]Symbol[T], 0, len(ap.Symbols)*2)
			for _, as := range ap.Symbols {
				if as.IsToken {
					tok, ok := tokenMap[as.TokenName]
					if !ok {
						return nil, wrapValidation("production of %q references undeclared token %q", rn, as.TokenName)
					}
					syms = append(syms, TokenSymbol(tok))
					if useImplicit {
						syms = append(syms, RuleSymbol(*b.implicitRuleIdx))
					}
				} else {
					rr, ok := b.ruleMap[as.RuleName]
					if !ok {
						return nil, wrapValidation("production of %q references undeclared rule %q", rn, as.RuleName)
					}
					syms = append(syms, RuleSymbol(rr))
				}
			}

			prec := productionPrecedence(ap, a.Precs, tokenPrecs, tokenMap)

			prods[p] = syms
			prodPrecs[p] = prec
			prodsRules[p] = rIdx
			filled[p] = true
			rulesProds[rIdx] = append(rulesProds[rIdx], p)
		}
	}

	for i, ok := range filled {
		if !ok {
			return nil, wrapValidation("production slot %d was never populated", i)
		}
	}

	g := &Grammar[T]{
		ruleNames:  b.ruleNames,
		ruleMap:    b.ruleMap,
		tokenNames: tokenNames,
		tokenPrecs: tokenPrecs,
		tokenMap:   tokenMap,
		eofTok:     eofTok,
		prods:      prods,
		prodPrecs:  prodPrecs,
		prodsRules: prodsRules,
		rulesProds: rulesProds,
		startProd:  startProd,
		implicit:   b.implicitRuleIdx,
	}
	return g, nil
}

// uniqueName returns seed, repeating it (seed, seed+seed, ...) until the
// result is absent from existing. Terminates because existing has finite
// size and each iteration strictly lengthens the candidate.
func uniqueName(seed string, existing map[string]bool) string {
	name := seed
	for existing[name] {
		name += seed
	}
	return name
}

// productionPrecedence implements SPEC_FULL.md §4.1 step 6's "Production
// precedence" rule against the pre-rewrite AST symbols of ap.
func productionPrecedence[T storage](ap ASTProduction, precs map[string]Precedence, tokenPrecs []*Precedence, tokenMap map[string]TIdx[T]) *Precedence {
	if ap.Prec != "" {
		if p, ok := precs[ap.Prec]; ok {
			pc := p
			return &pc
		}
		return nil
	}

	for i := len(ap.Symbols) - 1; i >= 0; i-- {
		s := ap.Symbols[i]
		if s.IsToken {
			if tok, ok := tokenMap[s.TokenName]; ok {
				return tokenPrecs[tok]
			}
			return nil
		}
	}
	return nil
}

// ---- Accessors. All panic on an out-of-range index, per §4.5: these are
// programmer errors, not runtime conditions to recover from. ----

// RulesLen returns the number of rules, including synthetic ones.
func (g *Grammar[T]) RulesLen() int { return len(g.ruleNames) }

// TokensLen returns the number of tokens, including EOF.
func (g *Grammar[T]) TokensLen() int { return len(g.tokenNames) }

// ProdsLen returns the total number of productions.
func (g *Grammar[T]) ProdsLen() int { return len(g.prods) }

// RuleName returns the name of rule r.
func (g *Grammar[T]) RuleName(r RIdx[T]) string {
	return g.ruleNames[r]
}

// RuleIdx returns the index of the rule named name and true, or the zero
// value and false if no such rule exists.
func (g *Grammar[T]) RuleIdx(name string) (RIdx[T], bool) {
	r, ok := g.ruleMap[name]
	return r, ok
}

// RuleToProds returns the productions belonging to rule r, in build order.
func (g *Grammar[T]) RuleToProds(r RIdx[T]) []PIdx[T] {
	return g.rulesProds[r]
}

// Prod returns the symbol sequence of production p.
func (g *Grammar[T]) Prod(p PIdx[T]) []Symbol[T] {
	return g.prods[p]
}

// ProdLen returns the number of symbols in production p.
func (g *Grammar[T]) ProdLen(p PIdx[T]) int {
	return len(g.prods[p])
}

// ProdToRule returns the rule production p belongs to.
func (g *Grammar[T]) ProdToRule(p PIdx[T]) RIdx[T] {
	return g.prodsRules[p]
}

// ProdPrecedence returns the precedence of production p, or nil if none.
func (g *Grammar[T]) ProdPrecedence(p PIdx[T]) *Precedence {
	return g.prodPrecs[p]
}

// TokenName returns the name of token t, or "" for the EOF token.
func (g *Grammar[T]) TokenName(t TIdx[T]) string {
	return g.tokenNames[t]
}

// TokenIdx returns the index of the token named name and true, or the zero
// value and false if no such (non-EOF) token exists.
func (g *Grammar[T]) TokenIdx(name string) (TIdx[T], bool) {
	t, ok := g.tokenMap[name]
	return t, ok
}

// TokenPrecedence returns the precedence declared for token t, or nil.
func (g *Grammar[T]) TokenPrecedence(t TIdx[T]) *Precedence {
	return g.tokenPrecs[t]
}

// TokensMap returns a fresh map from every named (non-EOF) token to its
// index.
func (g *Grammar[T]) TokensMap() map[string]TIdx[T] {
	m := make(map[string]TIdx[T], len(g.tokenMap))
	for k, v := range g.tokenMap {
		m[k] = v
	}
	return m
}

// EOFTokenIdx returns the index of the synthetic EOF token.
func (g *Grammar[T]) EOFTokenIdx() TIdx[T] { return g.eofTok }

// StartProd returns the production index of the synthetic start rule's sole
// production.
func (g *Grammar[T]) StartProd() PIdx[T] { return g.startProd }

// StartRuleIdx returns the rule that owns StartProd, i.e. the synthetic
// start rule, always RIdx 0.
func (g *Grammar[T]) StartRuleIdx() RIdx[T] {
	return g.ProdToRule(g.startProd)
}

// ImplicitRule returns the implicit rule's index and true if this grammar
// was built under the ImplicitTokens dialect with declared implicit tokens,
// or the zero value and false otherwise.
func (g *Grammar[T]) ImplicitRule() (RIdx[T], bool) {
	if g.implicit == nil {
		var zero RIdx[T]
		return zero, false
	}
	return *g.implicit, true
}

// HasPath reports whether some production of "from" transitively contains
// Rule(to), including from == to via a self-referencing production chain.
// Implemented as a BFS over the rule graph using two bit-arrays, per
// SPEC_FULL.md §4.1.
func (g *Grammar[T]) HasPath(from, to RIdx[T]) bool {
	n := len(g.ruleNames)
	seen := make([]bool, n)
	todo := make([]bool, n)
	todo[from] = true

	for {
		progressed := false
		for r := 0; r < n; r++ {
			if !todo[r] || seen[r] {
				continue
			}
			seen[r] = true
			todo[r] = false
			progressed = true

			for _, p := range g.rulesProds[RIdx[T](r)] {
				for _, sym := range g.prods[p] {
					if !sym.IsRule() {
						continue
					}
					target := int(sym.R)
					if RIdx[T](target) == to {
						return true
					}
					if !seen[target] {
						todo[target] = true
					}
				}
			}
		}
		if !progressed {
			break
		}
	}
	return false
}
