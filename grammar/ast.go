package grammar

// Dialect selects which rewrite the builder applies while lowering an
// ASTGrammar into a Grammar.
type Dialect int

const (
	// Classic applies no implicit-token rewrite.
	Classic Dialect = iota
	// ImplicitTokens applies the implicit-token rewrite described in
	// SPEC_FULL.md §3/§4.1 when the AST declares any implicit tokens.
	ImplicitTokens
)

func (d Dialect) String() string {
	switch d {
	case Classic:
		return "Classic"
	case ImplicitTokens:
		return "ImplicitTokens"
	default:
		return "Dialect(unknown)"
	}
}

// ASTSymbol is one element of a production's right-hand side as produced by
// the upstream grammar-text parser. Exactly one of RuleName or TokenName is
// set, matching which the symbol refers to.
type ASTSymbol struct {
	IsToken   bool
	RuleName  string
	TokenName string
}

// ASTRuleSymbol returns an ASTSymbol referencing rule name.
func ASTRuleSymbol(name string) ASTSymbol {
	return ASTSymbol{RuleName: name}
}

// ASTTokenSymbol returns an ASTSymbol referencing token name.
func ASTTokenSymbol(name string) ASTSymbol {
	return ASTSymbol{IsToken: true, TokenName: name}
}

// ASTProduction is one right-hand-side alternative attached to a rule, as
// the upstream parser produced it. Prec, if non-empty, names a token whose
// precedence the production inherits via an explicit %prec marker.
type ASTProduction struct {
	Symbols []ASTSymbol
	Prec    string
}

// ASTGrammar is the abstract grammar consumed by the builder (C3). It is the
// design-level shape of what the external grammar-text parser and the
// external lexer-specification parser hand to this package; nothing in this
// module produces one from source text.
type ASTGrammar struct {
	// RuleOrder lists rule names in declaration order; Rules maps each to
	// its ordered list of productions (also in declaration order).
	RuleOrder []string
	Rules     map[string][]ASTProduction

	// Tokens lists user-declared token names in declaration order.
	Tokens []string
	// Precs maps a token name to its declared precedence, if any.
	Precs map[string]Precedence

	// Start names the user's declared start rule. If empty, the first
	// entry of RuleOrder is used.
	Start string

	// ImplicitTokens, if non-empty, names the tokens eligible for the
	// implicit-token rewrite under the ImplicitTokens dialect.
	ImplicitTokens []string
}

func (a *ASTGrammar) startRuleName() string {
	if a.Start != "" {
		return a.Start
	}
	if len(a.RuleOrder) > 0 {
		return a.RuleOrder[0]
	}
	return ""
}
