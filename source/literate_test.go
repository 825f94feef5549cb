package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ExtractFenced_singleBlock(t *testing.T) {
	md := []byte("# Title\n\nSome prose.\n\n```cfgrammar\n%start R\n%%\nR: 'a';\n```\n\nMore prose.\n")

	got := ExtractFenced(md, "cfgrammar")

	assert.Equal(t, "%start R\n%%\nR: 'a';\n", string(got))
}

func Test_ExtractFenced_onlyMatchingLang(t *testing.T) {
	md := []byte("```cfgrammar\n%% R: 'a';\n```\n\n```go\nfunc main() {}\n```\n")

	got := ExtractFenced(md, "cfgrammar")

	assert.Equal(t, "%% R: 'a';\n", string(got))
}

func Test_ExtractFenced_concatenatesMultipleBlocksInOrder(t *testing.T) {
	md := []byte("```cfgrammar\n%token T1\n```\n\nprose\n\n```cfgrammar\n%% R: 'T1';\n```\n")

	got := ExtractFenced(md, "cfgrammar")

	assert.Equal(t, "%token T1\n%% R: 'T1';\n", string(got))
}

func Test_ExtractFenced_noMatch(t *testing.T) {
	md := []byte("```go\nfunc main() {}\n```\n")

	got := ExtractFenced(md, "cfgrammar")

	assert.Empty(t, got)
}

func Test_ExtractFenced_caseInsensitiveLang(t *testing.T) {
	md := []byte("```CfGrammar\n%% R: 'a';\n```\n")

	got := ExtractFenced(md, "cfgrammar")

	assert.Equal(t, "%% R: 'a';\n", string(got))
}
