package grammar

import (
	"github.com/dekarrin/rezi"
)

// wireSymbol is the rezi-encodable shape of a Symbol, always stored at
// uint32 width regardless of the source Grammar's storage width.
type wireSymbol struct {
	IsToken bool
	R       uint32
	Tok     uint32
}

// wirePrecedence is the rezi-encodable shape of a *Precedence; Set is false
// for a nil precedence.
type wirePrecedence struct {
	Set   bool
	Level uint64
	Assoc int
}

// wireGrammar is the rezi-encodable shape persisted by MarshalBinary. It
// mirrors Grammar's fields with every index widened to uint32, since only
// uint32-backed grammars round-trip through UnmarshalGrammar.
type wireGrammar struct {
	RuleNames  []string
	TokenNames []string
	TokenPrecs []wirePrecedence
	EOFTok     uint32

	Prods      [][]wireSymbol
	ProdPrecs  []wirePrecedence
	ProdsRules []uint32
	RulesProds [][]uint32

	StartProd    uint32
	HasImplicit  bool
	ImplicitRule uint32
}

func toWirePrec(p *Precedence) wirePrecedence {
	if p == nil {
		return wirePrecedence{}
	}
	return wirePrecedence{Set: true, Level: p.Level, Assoc: int(p.Assoc)}
}

func fromWirePrec(w wirePrecedence) *Precedence {
	if !w.Set {
		return nil
	}
	return &Precedence{Level: w.Level, Assoc: AssocKind(w.Assoc)}
}

// MarshalBinary encodes g into a compact binary form via rezi, widening
// every index to uint32 on the wire. Decode it with UnmarshalGrammar.
func (g *Grammar[T]) MarshalBinary() ([]byte, error) {
	w := wireGrammar{
		RuleNames:  append([]string(nil), g.ruleNames...),
		TokenNames: append([]string(nil), g.tokenNames...),
		EOFTok:     uint32(g.eofTok),
		StartProd:  uint32(g.startProd),
	}

	for _, p := range g.tokenPrecs {
		w.TokenPrecs = append(w.TokenPrecs, toWirePrec(p))
	}

	for _, prod := range g.prods {
		syms := make([]wireSymbol, len(prod))
		for i, s := range prod {
			if s.IsToken() {
				syms[i] = wireSymbol{IsToken: true, Tok: uint32(s.Tok)}
			} else {
				syms[i] = wireSymbol{R: uint32(s.R)}
			}
		}
		w.Prods = append(w.Prods, syms)
	}

	for _, p := range g.prodPrecs {
		w.ProdPrecs = append(w.ProdPrecs, toWirePrec(p))
	}

	for _, r := range g.prodsRules {
		w.ProdsRules = append(w.ProdsRules, uint32(r))
	}

	for _, ps := range g.rulesProds {
		row := make([]uint32, len(ps))
		for i, p := range ps {
			row[i] = uint32(p)
		}
		w.RulesProds = append(w.RulesProds, row)
	}

	if g.implicit != nil {
		w.HasImplicit = true
		w.ImplicitRule = uint32(*g.implicit)
	}

	return rezi.EncBinary(w), nil
}

// UnmarshalGrammar decodes a grammar previously produced by
// Grammar.MarshalBinary. The result is always uint32-backed: narrower
// storage widths are a construction-time memory optimization, not a wire
// format.
func UnmarshalGrammar(data []byte) (*Grammar[uint32], error) {
	var w wireGrammar
	n, err := rezi.DecBinary(data, &w)
	if err != nil {
		return nil, wrapValidation("REZI decode: %v", err)
	}
	if n != len(data) {
		return nil, wrapValidation("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data))
	}

	g := &Grammar[uint32]{
		ruleNames:  w.RuleNames,
		ruleMap:    make(map[string]RIdx[uint32], len(w.RuleNames)),
		tokenNames: w.TokenNames,
		tokenMap:   make(map[string]TIdx[uint32], len(w.TokenNames)),
		eofTok:     TIdx[uint32](w.EOFTok),
		startProd:  PIdx[uint32](w.StartProd),
	}

	for i, name := range w.RuleNames {
		g.ruleMap[name] = RIdx[uint32](i)
	}
	for i, name := range w.TokenNames {
		if i == int(w.EOFTok) {
			continue
		}
		g.tokenMap[name] = TIdx[uint32](i)
	}

	for _, wp := range w.TokenPrecs {
		g.tokenPrecs = append(g.tokenPrecs, fromWirePrec(wp))
	}

	for _, syms := range w.Prods {
		row := make([]Symbol[uint32], len(syms))
		for i, s := range syms {
			if s.IsToken {
				row[i] = TokenSymbol(TIdx[uint32](s.Tok))
			} else {
				row[i] = RuleSymbol(RIdx[uint32](s.R))
			}
		}
		g.prods = append(g.prods, row)
	}

	for _, wp := range w.ProdPrecs {
		g.prodPrecs = append(g.prodPrecs, fromWirePrec(wp))
	}

	for _, r := range w.ProdsRules {
		g.prodsRules = append(g.prodsRules, RIdx[uint32](r))
	}

	for _, row := range w.RulesProds {
		ps := make([]PIdx[uint32], len(row))
		for i, p := range row {
			ps[i] = PIdx[uint32](p)
		}
		g.rulesProds = append(g.rulesProds, ps)
	}

	if w.HasImplicit {
		r := RIdx[uint32](w.ImplicitRule)
		g.implicit = &r
	}

	return g, nil
}
