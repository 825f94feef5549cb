package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/cfgrammar/grammar"
	"github.com/google/uuid"
)

// runExplore loads a Grammar once and repeatedly reads a rule name from
// stdin via chzyer/readline line editing, printing its FIRST set and minimum-
// cost sentence, in the style of the teacher's InteractiveCommandReader.
func runExplore(g *grammar.Grammar[uint32], cfg config) error {
	sessionID, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("mint session id: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "cfgstat> "})
	if err != nil {
		return fmt.Errorf("create readline config: %w", err)
	}
	defer rl.Close()

	firsts := grammar.NewFirsts(g)
	sg := g.SentenceGenerator(func(grammar.TIdx[uint32]) uint8 {
		return cfg.Costs.Default
	})

	fmt.Printf("cfgstat explore [session %s]: enter a rule name, or \"quit\" to exit\n", sessionID)
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if name == "quit" {
			return nil
		}

		rIdx, ok := g.RuleIdx(name)
		if !ok {
			fmt.Printf("no such rule: %q\n", name)
			continue
		}

		printFirsts(g, firsts, rIdx)

		cost, err := sg.MinSentenceCost(rIdx)
		if err != nil {
			fmt.Printf("min cost: %s\n", err.Error())
			continue
		}
		sentence, err := sg.MinSentence(rIdx)
		if err != nil {
			fmt.Printf("min sentence: %s\n", err.Error())
			continue
		}
		fmt.Printf("min cost: %d\n", cost)
		fmt.Printf("min sentence: %s\n", sentenceString(g, sentence))

		_, unbounded, err := sg.MaxSentenceCost(rIdx)
		if err != nil {
			fmt.Printf("max cost: %s\n", err.Error())
			continue
		}
		if unbounded {
			fmt.Println("max cost: unbounded")
		} else {
			maxCost, _, _ := sg.MaxSentenceCost(rIdx)
			fmt.Printf("max cost: %d\n", maxCost)
		}
	}
}

func printFirsts(g *grammar.Grammar[uint32], firsts *grammar.Firsts[uint32], r grammar.RIdx[uint32]) {
	names := make([]string, 0, g.TokensLen())
	for t := 0; t < g.TokensLen(); t++ {
		tIdx := grammar.TIdx[uint32](t)
		if firsts.IsSet(r, tIdx) {
			names = append(names, g.TokenName(tIdx))
		}
	}
	if firsts.IsEpsilonSet(r) {
		names = append(names, "ε")
	}
	fmt.Printf("FIRST: %s\n", strings.Join(names, ", "))
}

func sentenceString(g *grammar.Grammar[uint32], sentence []grammar.TIdx[uint32]) string {
	names := make([]string, len(sentence))
	for i, t := range sentence {
		names[i] = g.TokenName(t)
	}
	return strings.Join(names, " ")
}
