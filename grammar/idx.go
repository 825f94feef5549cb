// Package grammar implements the compact, immutable representation of a
// Yacc-style context-free grammar along with the analyses built on top of it:
// FIRST sets, LR(1) item-set closure, and sentence cost analysis.
//
// Nothing in this package parses grammar text. It consumes an already-parsed
// AST (ASTGrammar) and lowers it into a dense, index-addressed table. The
// text parser, the lexer-specification parser, and full LR(1) table
// construction are all external collaborators.
package grammar

import "fmt"

// storage is the set of unsigned integer kinds usable as the backing width
// for an index. Grammar is generic over this constraint so that small
// grammars can be packed into a narrower width than the default uint32.
type storage interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// RIdx is the index of a rule (non-terminal) within a Grammar. It is a
// distinct type from PIdx, SIdx, and TIdx so that the compiler rejects any
// attempt to use an index of one kind to address a table of another.
type RIdx[T storage] T

// PIdx is the index of a production within a Grammar.
type PIdx[T storage] T

// SIdx is the index of a symbol position within a single production (a "dot"
// position when used by the item-set engine).
type SIdx[T storage] T

// TIdx is the index of a token (terminal) within a Grammar.
type TIdx[T storage] T

func idxOf[T storage](v int) T {
	return T(v)
}

// SymbolKind distinguishes the two cases a Symbol may hold.
type SymbolKind int

const (
	// SymRule marks a Symbol that refers to a rule (non-terminal).
	SymRule SymbolKind = iota
	// SymToken marks a Symbol that refers to a token (terminal).
	SymToken
)

func (k SymbolKind) String() string {
	switch k {
	case SymRule:
		return "Rule"
	case SymToken:
		return "Token"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Symbol is a tagged union over a rule reference and a token reference. The
// zero value is the Rule variant with index 0; callers should construct
// values with RuleSymbol/TokenSymbol rather than struct literals.
type Symbol[T storage] struct {
	Kind SymbolKind
	R    RIdx[T]
	Tok  TIdx[T]
}

// RuleSymbol returns a Symbol referring to rule r.
func RuleSymbol[T storage](r RIdx[T]) Symbol[T] {
	return Symbol[T]{Kind: SymRule, R: r}
}

// TokenSymbol returns a Symbol referring to token tok.
func TokenSymbol[T storage](tok TIdx[T]) Symbol[T] {
	return Symbol[T]{Kind: SymToken, Tok: tok}
}

// IsRule reports whether sym is the Rule variant.
func (sym Symbol[T]) IsRule() bool { return sym.Kind == SymRule }

// IsToken reports whether sym is the Token variant.
func (sym Symbol[T]) IsToken() bool { return sym.Kind == SymToken }

func (sym Symbol[T]) String() string {
	if sym.IsRule() {
		return fmt.Sprintf("Rule(%d)", sym.R)
	}
	return fmt.Sprintf("Token(%d)", sym.Tok)
}

// AssocKind is the associativity half of a Precedence.
type AssocKind int

const (
	// Left marks left-associative precedence.
	Left AssocKind = iota
	// Right marks right-associative precedence.
	Right
	// Nonassoc marks non-associative precedence.
	Nonassoc
)

func (a AssocKind) String() string {
	switch a {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Nonassoc:
		return "Nonassoc"
	default:
		return fmt.Sprintf("AssocKind(%d)", int(a))
	}
}

// Precedence is a (level, associativity) pair attached to tokens and, by
// derivation, to productions.
type Precedence struct {
	Level  uint64
	Assoc  AssocKind
}

func (p Precedence) String() string {
	return fmt.Sprintf("(%d, %s)", p.Level, p.Assoc)
}
