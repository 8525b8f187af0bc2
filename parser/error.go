package parser

import "fmt"

// SyntaxError reports a malformed token sequence encountered while parsing.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func NewSyntaxError(line, column int, message string) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 syntax error: line %d, column %d - %s", e.Line, e.Column, e.Message)
}
