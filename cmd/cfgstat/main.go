/*
Cfgstat loads a Yacc-style context-free grammar and reports its productions,
FIRST sets, and (in explore mode) sentence-cost statistics about it.

Usage:

	cfgstat [flags]
	cfgstat explore [flags]

The flags are:

	-i, --input FILE
		Read the grammar from FILE, a JSON-encoded ASTGrammar (or, with -m, a
		literate Markdown document containing one).

	-m, --markdown
		Treat -i's file as a literate Markdown document and extract its
		fenced "cfgrammar" code blocks before JSON-decoding the result,
		instead of JSON-decoding the file directly.

	-d, --dialect {classic,implicit}
		Select the builder dialect. Defaults to "classic".

	-c, --config FILE
		Load cfgstat.toml-style configuration overrides from FILE.

	-v, --version
		Print the version and exit.

In "explore" mode, cfgstat loads the grammar once and then repeatedly reads a
rule name from stdin, printing its FIRST set and minimum-cost sentence. Type
"quit" or send EOF to exit.
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dekarrin/cfgrammar/grammar"
	"github.com/dekarrin/cfgrammar/source"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates the command line was malformed.
	ExitUsageError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading or building the grammar.
	ExitInitError

	// ExitRuntimeError indicates a failure after the grammar was loaded.
	ExitRuntimeError
)

const version = "0.1.0"

var (
	returnCode   = ExitSuccess
	flagVersion  = pflag.BoolP("version", "v", false, "Print the version and exit")
	flagInput    = pflag.StringP("input", "i", "", "JSON-encoded ASTGrammar file (or literate Markdown, with -m)")
	flagMarkdown = pflag.BoolP("markdown", "m", false, "Treat -i's file as literate Markdown and extract its fenced cfgrammar blocks first")
	flagDialect  = pflag.StringP("dialect", "d", "classic", "Builder dialect: classic or implicit")
	flagConfig   = pflag.StringP("config", "c", "", "TOML configuration file")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("cfgstat %s\n", version)
		return
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	if *flagInput == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -i/--input is required")
		returnCode = ExitUsageError
		return
	}

	dialect, err := parseDialect(*flagDialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	ast, err := loadAST(*flagInput, *flagMarkdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	g, err := grammar.New(dialect, ast)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	args := pflag.Args()
	if len(args) > 0 && args[0] == "explore" {
		if err := runExplore(g, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitRuntimeError
		}
		return
	}

	fmt.Println(g.Format(cfg.Output.Width))
	firsts := grammar.NewFirsts(g)
	fmt.Println(firsts.String(g))
}

func parseDialect(s string) (grammar.Dialect, error) {
	switch s {
	case "classic":
		return grammar.Classic, nil
	case "implicit":
		return grammar.ImplicitTokens, nil
	default:
		return 0, fmt.Errorf("dialect must be one of \"classic\" or \"implicit\", got %q", s)
	}
}

// loadAST reads the ASTGrammar JSON from inputPath. If asMarkdown is set,
// inputPath is first treated as a literate Markdown document and its fenced
// "cfgrammar" blocks are extracted before JSON-decoding the result.
func loadAST(inputPath string, asMarkdown bool) (*grammar.ASTGrammar, error) {
	var data []byte
	var err error

	if asMarkdown {
		data, err = source.ReadFencedFile(inputPath, "cfgrammar")
		if err != nil {
			return nil, fmt.Errorf("extract literate source %q: %w", inputPath, err)
		}
	} else {
		data, err = os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", inputPath, err)
		}
	}

	var ast grammar.ASTGrammar
	if err := json.Unmarshal(data, &ast); err != nil {
		return nil, grammar.WrapSyntax("parse %q as ASTGrammar JSON: %v", inputPath, err)
	}
	return &ast, nil
}
