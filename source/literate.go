// Package source pulls grammar text out of a literate Markdown document: a
// spec written in prose with the grammar itself embedded in fenced code
// blocks. It stops at the text-extraction boundary; the extracted bytes are
// handed to a caller-supplied AST builder, never parsed here.
package source

import (
	"io"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	mkast "github.com/gomarkdown/markdown/ast"
	mkparser "github.com/gomarkdown/markdown/parser"
)

// fencedScanner renders only the literal contents of fenced code blocks
// whose info string (case-insensitively, trimmed) equals lang, concatenating
// them in document order.
type fencedScanner string

func (fs fencedScanner) RenderNode(w io.Writer, node mkast.Node, entering bool) mkast.WalkStatus {
	if !entering {
		return mkast.GoToNext
	}

	codeBlock, ok := node.(*mkast.CodeBlock)
	if !ok || codeBlock == nil {
		return mkast.GoToNext
	}

	if strings.EqualFold(strings.TrimSpace(string(codeBlock.Info)), string(fs)) {
		w.Write(codeBlock.Literal)
	}
	return mkast.GoToNext
}

func (fs fencedScanner) RenderHeader(w io.Writer, doc mkast.Node) {}
func (fs fencedScanner) RenderFooter(w io.Writer, doc mkast.Node) {}

// ExtractFenced scans a Markdown document and returns the concatenated
// contents of every fenced code block tagged with the given language info
// string (e.g. the ` ```cfgrammar ` in a fence opened with that info
// string), in document order.
func ExtractFenced(md []byte, lang string) []byte {
	doc := markdown.Parse(md, mkparser.New())
	scanner := fencedScanner(lang)
	return markdown.Render(doc, scanner)
}

// ReadFencedFile reads path and returns the result of ExtractFenced over its
// contents.
func ReadFencedFile(path, lang string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ExtractFenced(data, lang), nil
}
