package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/alexeyden/ecmascript-toy/ast"
	"github.com/alexeyden/ecmascript-toy/lexer"
	"github.com/alexeyden/ecmascript-toy/parser"
	"github.com/alexeyden/ecmascript-toy/token"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/subcommands"
)

// replCmd is a quick-inspection loop: it tokenizes and parses whatever is
// typed, printing the resulting AST, but never compiles or executes it —
// there is no VM in this repo to run bytecode against.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Interactively tokenize and parse source lines" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive loop that parses whatever you type and prints its AST.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	red := color.New(color.FgRed)

	var buffer strings.Builder
	for {
		if buffer.Len() > 0 {
			rl.SetPrompt("... ")
		} else {
			rl.SetPrompt(">>> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buffer.Len() == 0 {
				break
			}
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println(err)
			break
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		toks, lexErr := lexer.New(source).Scan()
		if lexErr != nil {
			red.Println(lexErr)
			buffer.Reset()
			continue
		}

		if !isInputReady(toks) {
			continue
		}

		stmts, parseErr := parseLine(toks)
		if parseErr != nil {
			if syn, ok := parseErr.(parser.SyntaxError); ok && syn.Line == toks[len(toks)-1].Line && syn.Column == toks[len(toks)-1].Column {
				continue
			}
			red.Println(parseErr)
			buffer.Reset()
			continue
		}

		parser.PrintASTJSON(stmts)
		buffer.Reset()
	}

	return subcommands.ExitSuccess
}

// isInputReady reports whether the line(s) typed so far form a complete
// statement: braces must balance, and the last non-EOF token must not be
// one that obviously expects a continuation.
func isInputReady(toks []token.Token) bool {
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case token.LCUR:
			depth++
		case token.RCUR:
			depth--
		}
	}
	if depth > 0 {
		return false
	}

	last := lastNonEOF(toks)
	if last == nil {
		return true
	}

	switch last.Type {
	case token.ASSIGN, token.ADD, token.SUB, token.MULT, token.DIV, token.MOD,
		token.BANG, token.EQUAL_EQUAL, token.NOT_EQUAL,
		token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL,
		token.AND_AND, token.OR_OR,
		token.COMMA, token.LPA, token.LCUR, token.COLON, token.DOT,
		token.IF, token.ELSE, token.WHILE, token.RETURN, token.VAR, token.FUNCTION:
		return false
	}
	return true
}

func lastNonEOF(toks []token.Token) *token.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Type != token.EOF {
			return &toks[i]
		}
	}
	return nil
}

// parseLine runs the parser over the buffered line(s), recovering its
// panic-on-first-error into a plain error return so the REPL loop can
// decide whether to keep buffering or report the failure.
func parseLine(toks []token.Token) (stmts []ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(parser.SyntaxError)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	return parser.Make(toks).Parse(), nil
}
