package grammar

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package. Callers should use errors.Is
// against these rather than type-asserting a concrete error type; none of
// the builder's errors carry more structure than a message.
var (
	// ErrGrammarSyntax wraps a propagated error from the upstream grammar
	// text parser. The core never produces this error itself.
	ErrGrammarSyntax = errors.New("grammar syntax error")

	// ErrGrammarValidation is returned by the builder when an otherwise
	// well-formed ASTGrammar fails a semantic check (an undeclared token or
	// rule reference, an unresolvable start rule, and the like), and by
	// UnmarshalGrammar when persisted data cannot be decoded.
	ErrGrammarValidation = errors.New("grammar validation error")

	// ErrStorageOverflow is returned when a rule, token, production, or
	// per-production symbol count exceeds what the chosen storage width can
	// represent.
	ErrStorageOverflow = errors.New("grammar exceeds storage width")

	// ErrCostOverflow is returned when minimum or maximum sentence-cost
	// arithmetic exceeds the uint16 cost domain.
	ErrCostOverflow = errors.New("sentence cost overflow")

	// ErrLookaheadShapeMismatch is returned by Itemset.Add when the supplied
	// lookahead mask's width does not equal the grammar's token count.
	ErrLookaheadShapeMismatch = errors.New("lookahead mask shape mismatch")
)

// WrapSyntax formats a message describing a failure to read or decode the
// upstream grammar source (malformed JSON, unextractable literate Markdown,
// and the like) so that errors.Is(result, ErrGrammarSyntax) holds. This
// package never produces ErrGrammarSyntax itself — it has no text grammar
// parser — but exports this constructor for the boundary that does the
// decoding, such as cmd/cfgstat's ASTGrammar loader.
func WrapSyntax(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrGrammarSyntax}, args...)...)
}

// wrapValidation formats a message describing a semantically invalid but
// syntactically well-formed ASTGrammar (an undeclared token/rule reference,
// an unresolvable start rule, and the like) so that
// errors.Is(result, ErrGrammarValidation) holds.
func wrapValidation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrGrammarValidation}, args...)...)
}
