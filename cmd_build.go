package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alexeyden/ecmascript-toy/ast"
	"github.com/alexeyden/ecmascript-toy/compiler"
	"github.com/alexeyden/ecmascript-toy/lexer"
	"github.com/alexeyden/ecmascript-toy/parser"
	"github.com/alexeyden/ecmascript-toy/token"
	"github.com/google/subcommands"
)

// buildCmd runs one of three mutually exclusive stages of the pipeline
// against a single source file: tokenize, parse, or (the default) compile
// to a bytecode image.
type buildCmd struct {
	tokenize bool
	parse    bool
	compile  bool
	outPath  string
	listPath string
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Tokenize, parse, or compile a source file" }
func (*buildCmd) Usage() string {
	return `build [-t | -p | -c] [-o path] [-s path] <file>:
  Runs the pipeline up to the requested stage. -c (compile) is the default.
`
}

func (cmd *buildCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.tokenize, "t", false, "tokenize only, print the token stream")
	f.BoolVar(&cmd.parse, "p", false, "parse only, print the AST as JSON")
	f.BoolVar(&cmd.compile, "c", false, "compile to a bytecode image (default)")
	f.StringVar(&cmd.outPath, "o", "", "output path (defaults depend on the stage)")
	f.StringVar(&cmd.listPath, "s", "", "optional human-readable instruction listing, compile stage only")
}

func (cmd *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) (status subcommands.ExitStatus) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", r)
			status = subcommands.ExitFailure
		}
	}()

	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file given\n")
		return subcommands.ExitUsageError
	}
	if countTrue(cmd.tokenize, cmd.parse, cmd.compile) > 1 {
		fmt.Fprintf(os.Stderr, "💥 -t, -p and -c are mutually exclusive\n")
		return subcommands.ExitUsageError
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	toks, err := lexer.New(string(src)).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if cmd.tokenize {
		return cmd.runTokenize(toks)
	}

	stmts := parser.Make(toks).Parse()

	if cmd.parse {
		return cmd.runParse(stmts)
	}

	return cmd.runCompile(path, stmts)
}

func (cmd *buildCmd) runTokenize(toks []token.Token) subcommands.ExitStatus {
	var sb strings.Builder
	for _, t := range toks {
		fmt.Fprintln(&sb, t.String())
	}

	if cmd.outPath == "" {
		fmt.Fprint(os.Stderr, sb.String())
		return subcommands.ExitSuccess
	}
	if err := writeFileAtomic(cmd.outPath, []byte(sb.String())); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *buildCmd) runParse(stmts []ast.Node) subcommands.ExitStatus {
	if cmd.outPath == "" {
		if _, err := parser.PrintASTJSON(stmts); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := parser.WriteASTJSONToFile(stmts, cmd.outPath); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *buildCmd) runCompile(srcPath string, stmts []ast.Node) subcommands.ExitStatus {
	c := compiler.New(cmd.listPath != "")
	bc, err := c.Compile(stmts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	outPath := cmd.outPath
	if outPath == "" {
		outPath = stem(srcPath) + ".bin"
	}
	if err := writeFileAtomic(outPath, bc); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.listPath != "" {
		if err := writeFileAtomic(cmd.listPath, []byte(c.Listing())); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func stem(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// writeFileAtomic writes data to a temporary file and renames it into
// place, so a failure partway through never leaves a partial file at the
// final path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
