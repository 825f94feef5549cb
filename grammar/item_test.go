package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Itemset_AddAndClose(t *testing.T) {
	a := newAST("R", []string{"T"}, func() (string, []ASTProduction) {
		return astRule("R", prod(tok("T")))
	})
	g, err := New(Classic, a)
	require.NoError(t, err)

	f := NewFirsts(g)
	is := NewItemset(g)

	eof := NewTokenSet[uint32](g.TokensLen())
	eof.Set(g.EOFTokenIdx())

	require.NoError(t, is.Add(g, g.StartProd(), 0, eof))
	is.Close(g, f)

	rIdx, _ := g.RuleIdx("R")
	rProds := g.RuleToProds(rIdx)
	require.Len(t, rProds, 1)

	assert.True(t, is.Active(rProds[0], 0))
	la := is.Lookahead(rProds[0], 0)
	assert.True(t, la.IsSet(g.EOFTokenIdx()))
}

func Test_Itemset_Goto(t *testing.T) {
	a := newAST("R", []string{"T"}, func() (string, []ASTProduction) {
		return astRule("R", prod(tok("T")))
	})
	g, err := New(Classic, a)
	require.NoError(t, err)

	f := NewFirsts(g)
	is := NewItemset(g)

	eof := NewTokenSet[uint32](g.TokensLen())
	eof.Set(g.EOFTokenIdx())
	require.NoError(t, is.Add(g, g.StartProd(), 0, eof))
	is.Close(g, f)

	rIdx, _ := g.RuleIdx("R")
	rProd := g.RuleToProds(rIdx)[0]
	tIdx, _ := g.TokenIdx("T")

	is.Goto(g, f, TokenSymbol(tIdx))

	assert.True(t, is.Active(rProd, 1))
	la := is.Lookahead(rProd, 1)
	assert.True(t, la.IsSet(g.EOFTokenIdx()))
}

func Test_Itemset_Add_shapeMismatch(t *testing.T) {
	a := newAST("R", []string{"T"}, func() (string, []ASTProduction) {
		return astRule("R", prod(tok("T")))
	})
	g, err := New(Classic, a)
	require.NoError(t, err)

	is := NewItemset(g)
	wrongWidth := NewTokenSet[uint32](1)

	err = is.Add(g, g.StartProd(), 0, wrongWidth)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLookaheadShapeMismatch))
}

// Regression test for the design note in SPEC_FULL.md §9: closure's dot-slice
// arithmetic must use tokens_len uniformly even when rules_len != tokens_len.
func Test_Itemset_Close_dotSliceWidthMatchesTokensNotRules(t *testing.T) {
	// 2 rules (R, S) total user rules, 3 tokens (a, b, c): rules_len (3 incl.
	// synthetic start) != tokens_len (4 incl. EOF).
	a := newAST("R", []string{"a", "b", "c"},
		func() (string, []ASTProduction) {
			return astRule("R", prod(tok("a"), rule("S")))
		},
		func() (string, []ASTProduction) {
			return astRule("S", prod(tok("b")), prod(tok("c")))
		},
	)
	g, err := New(Classic, a)
	require.NoError(t, err)
	require.NotEqual(t, g.RulesLen(), g.TokensLen())

	f := NewFirsts(g)
	is := NewItemset(g)

	eof := NewTokenSet[uint32](g.TokensLen())
	eof.Set(g.EOFTokenIdx())
	require.NoError(t, is.Add(g, g.StartProd(), 0, eof))
	is.Close(g, f)

	rIdx, _ := g.RuleIdx("R")
	rProd := g.RuleToProds(rIdx)[0]
	aTok, _ := g.TokenIdx("a")

	is.Goto(g, f, TokenSymbol(aTok))
	assert.True(t, is.Active(rProd, 1))

	sIdx, _ := g.RuleIdx("S")
	bTok, _ := g.TokenIdx("b")
	cTok, _ := g.TokenIdx("c")
	for _, p := range g.RuleToProds(sIdx) {
		assert.True(t, is.Active(p, 0))
		la := is.Lookahead(p, 0)
		assert.True(t, la.IsSet(g.EOFTokenIdx()))
		assert.False(t, la.IsSet(bTok))
		assert.False(t, la.IsSet(cTok))
	}
}
