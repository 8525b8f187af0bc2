package compiler

import "fmt"

// SemanticError reports an AST shape the code generator has no lowering
// for: a statement or expression tag that shouldn't reach this stage given
// what the parser is able to produce.
type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: %s", e.Message)
}

// DeveloperError reports an invariant violation internal to the compiler
// itself (assembler misuse, frame-stack desync) rather than anything in
// the source program.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}

// ResolveError reports a reference to a symbol that is neither a declared
// variable nor a recognized system object.
type ResolveError struct {
	Name   string
	Line   int
	Column int
}

func (e ResolveError) Error() string {
	return fmt.Sprintf("💥 ResolveError: line %d, column %d - no such variable %q", e.Line, e.Column, e.Name)
}
