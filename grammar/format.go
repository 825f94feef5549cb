package grammar

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

const defaultTableWidth = 100

// String renders g as a table of rules, one row per production, in the
// style of the teacher's canonicalLR1Table.String(). This is a read-only
// diagnostic view; it never participates in FIRST/closure/cost analyses.
func (g *Grammar[T]) String() string {
	return g.Format(defaultTableWidth)
}

// Format renders g as a table wrapped to the given width.
func (g *Grammar[T]) Format(width int) string {
	data := [][]string{{"Rule", "Prod", "Symbols", "Prec"}}

	for r := 0; r < g.RulesLen(); r++ {
		rIdx := RIdx[T](r)
		for _, p := range g.RuleToProds(rIdx) {
			data = append(data, []string{
				g.RuleName(rIdx),
				fmt.Sprintf("%d", p),
				symbolsString(g, g.Prod(p)),
				precString(g.ProdPrecedence(p)),
			})
		}
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func symbolsString[T storage](g *Grammar[T], syms []Symbol[T]) string {
	if len(syms) == 0 {
		return "ε"
	}
	s := ""
	for i, sym := range syms {
		if i > 0 {
			s += " "
		}
		if sym.IsRule() {
			s += g.RuleName(sym.R)
		} else {
			name := g.TokenName(sym.Tok)
			if name == "" {
				name = "$"
			}
			s += fmt.Sprintf("'%s'", name)
		}
	}
	return s
}

func precString(p *Precedence) string {
	if p == nil {
		return ""
	}
	return p.String()
}

// String renders f as a rule × (tokens+1) table, with the epsilon column
// last and "X" marking a set bit.
func (f *Firsts[T]) String(g *Grammar[T]) string {
	headers := []string{"Rule"}
	for t := 0; t < f.tokens; t++ {
		name := g.TokenName(TIdx[T](t))
		if name == "" {
			name = "$"
		}
		headers = append(headers, name)
	}
	headers = append(headers, "ε")

	data := [][]string{headers}
	for r := 0; r < f.rules; r++ {
		row := []string{g.RuleName(RIdx[T](r))}
		for t := 0; t < f.tokens; t++ {
			if f.IsSet(RIdx[T](r), TIdx[T](t)) {
				row = append(row, "X")
			} else {
				row = append(row, "")
			}
		}
		if f.IsEpsilonSet(RIdx[T](r)) {
			row = append(row, "X")
		} else {
			row = append(row, "")
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, defaultTableWidth, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// String renders is as one row per active (production, dot) pair, with its
// lookahead set rendered as a token list.
func (is *Itemset[T]) String(g *Grammar[T]) string {
	data := [][]string{{"Prod", "Dot", "Item", "Lookahead"}}

	for p := 0; p < is.ProdCount(); p++ {
		pIdx := PIdx[T](p)
		syms := g.Prod(pIdx)
		for d := 0; d < is.DotCount(pIdx); d++ {
			if !is.active[p][d] {
				continue
			}
			la := is.Lookahead(pIdx, SIdx[T](d))
			data = append(data, []string{
				fmt.Sprintf("%d", p),
				fmt.Sprintf("%d", d),
				dottedItemString(g, g.ProdToRule(pIdx), syms, d),
				lookaheadString(g, la),
			})
		}
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, defaultTableWidth, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func dottedItemString[T storage](g *Grammar[T], rule RIdx[T], syms []Symbol[T], dot int) string {
	s := g.RuleName(rule) + " ->"
	for i := 0; i <= len(syms); i++ {
		if i == dot {
			s += " ."
		}
		if i < len(syms) {
			sym := syms[i]
			if sym.IsRule() {
				s += " " + g.RuleName(sym.R)
			} else {
				name := g.TokenName(sym.Tok)
				if name == "" {
					name = "$"
				}
				s += fmt.Sprintf(" '%s'", name)
			}
		}
	}
	return s
}

func lookaheadString[T storage](g *Grammar[T], la TokenSet[T]) string {
	toks := la.Tokens()
	if len(toks) == 0 {
		return "{}"
	}
	s := ""
	for i, t := range toks {
		if i > 0 {
			s += "/"
		}
		name := g.TokenName(t)
		if name == "" {
			name = "$"
		}
		s += name
	}
	return s
}
