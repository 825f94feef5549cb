package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCost(t TIdx[uint32]) uint8 { return 1 }

// S5. A: A B | ; B: C | D | E; C: 'x' B | 'x'; D: 'y' B | 'y' 'z'; E: 'x' A | 'x' 'y';
func Test_SentenceGenerator_S5_minCosts(t *testing.T) {
	a := newAST("A", []string{"x", "y", "z"},
		func() (string, []ASTProduction) {
			return astRule("A", prod(rule("A"), rule("B")), prod())
		},
		func() (string, []ASTProduction) {
			return astRule("B", prod(rule("C")), prod(rule("D")), prod(rule("E")))
		},
		func() (string, []ASTProduction) {
			return astRule("C", prod(tok("x"), rule("B")), prod(tok("x")))
		},
		func() (string, []ASTProduction) {
			return astRule("D", prod(tok("y"), rule("B")), prod(tok("y"), tok("z")))
		},
		func() (string, []ASTProduction) {
			return astRule("E", prod(tok("x"), rule("A")), prod(tok("x"), tok("y")))
		},
	)
	g, err := New(Classic, a)
	require.NoError(t, err)

	sg := g.SentenceGenerator(unitCost)

	cases := map[string]uint16{"A": 0, "B": 1, "C": 1, "D": 2, "E": 1}
	for name, want := range cases {
		idx, ok := g.RuleIdx(name)
		require.True(t, ok)
		got, err := sg.MinSentenceCost(idx)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "min cost of %s", name)
	}

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		idx, _ := g.RuleIdx(name)
		_, unbounded, err := sg.MaxSentenceCost(idx)
		require.NoError(t, err)
		assert.Truef(t, unbounded, "%s should have no finite maximum", name)
	}
}

// S6. A: A B | B; B: C | D; C: 'x' 'y' | 'x'; D: 'y' 'x' | 'y' 'x' 'z';
func Test_SentenceGenerator_S6_maxCosts(t *testing.T) {
	a := newAST("A", []string{"x", "y", "z"},
		func() (string, []ASTProduction) {
			return astRule("A", prod(rule("A"), rule("B")), prod(rule("B")))
		},
		func() (string, []ASTProduction) {
			return astRule("B", prod(rule("C")), prod(rule("D")))
		},
		func() (string, []ASTProduction) {
			return astRule("C", prod(tok("x"), tok("y")), prod(tok("x")))
		},
		func() (string, []ASTProduction) {
			return astRule("D", prod(tok("y"), tok("x")), prod(tok("y"), tok("x"), tok("z")))
		},
	)
	g, err := New(Classic, a)
	require.NoError(t, err)

	sg := g.SentenceGenerator(unitCost)

	aIdx, _ := g.RuleIdx("A")
	_, unbounded, err := sg.MaxSentenceCost(aIdx)
	require.NoError(t, err)
	assert.True(t, unbounded)

	cases := map[string]uint16{"B": 3, "C": 2, "D": 3}
	for name, want := range cases {
		idx, _ := g.RuleIdx(name)
		got, unbounded, err := sg.MaxSentenceCost(idx)
		require.NoError(t, err)
		require.Falsef(t, unbounded, "%s should have a finite maximum", name)
		assert.Equalf(t, want, got, "max cost of %s", name)
	}
}

// Invariant 8 & 10: min_sentence_cost equals the minimum over productions,
// and every sentence in min_sentences sums to that cost; min_sentence is a
// member of min_sentences.
func Test_SentenceGenerator_Invariant_minSentencesMatchCost(t *testing.T) {
	// R: 'a' 'b' | 'c';
	a := newAST("R", []string{"a", "b", "c"}, func() (string, []ASTProduction) {
		return astRule("R", prod(tok("a"), tok("b")), prod(tok("c")))
	})
	g, err := New(Classic, a)
	require.NoError(t, err)

	sg := g.SentenceGenerator(unitCost)
	rIdx, _ := g.RuleIdx("R")

	cost, err := sg.MinSentenceCost(rIdx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cost)

	sentences, err := sg.MinSentences(rIdx)
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Len(t, sentences[0], 1)

	single, err := sg.MinSentence(rIdx)
	require.NoError(t, err)
	assert.Len(t, single, 1)

	var found bool
	for _, s := range sentences {
		if tokenSliceEqual(s, single) {
			found = true
		}
	}
	assert.True(t, found, "MinSentence must be a member of MinSentences")
}

func tokenSliceEqual(a, b []TIdx[uint32]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Invariant 9: max_sentence_cost is unbounded iff r lies on a cycle.
func Test_SentenceGenerator_Invariant_unboundedIffCycle(t *testing.T) {
	// R: R 'a' | 'b'; S: 'c';
	a := newAST("R", []string{"a", "b", "c"},
		func() (string, []ASTProduction) {
			return astRule("R", prod(rule("R"), tok("a")), prod(tok("b")))
		},
		func() (string, []ASTProduction) {
			return astRule("S", prod(tok("c")))
		},
	)
	g, err := New(Classic, a)
	require.NoError(t, err)

	sg := g.SentenceGenerator(unitCost)
	rIdx, _ := g.RuleIdx("R")
	sIdx, _ := g.RuleIdx("S")

	_, unbounded, err := sg.MaxSentenceCost(rIdx)
	require.NoError(t, err)
	assert.Equal(t, g.HasPath(rIdx, rIdx), unbounded)

	_, unbounded, err = sg.MaxSentenceCost(sIdx)
	require.NoError(t, err)
	assert.Equal(t, g.HasPath(sIdx, sIdx), unbounded)
}
