package token

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		typ  TokenType
		text string
		want Token
	}{
		{"assign", ASSIGN, "=", Token{Type: ASSIGN, Lexeme: "=", Line: 1, Column: 2}},
		{"identifier", IDENTIFIER, "myVar", Token{Type: IDENTIFIER, Lexeme: "myVar", Line: 1, Column: 2}},
		{"number", NUMBER, "42", Token{Type: NUMBER, Lexeme: "42", Line: 1, Column: 2}},
		{"mult", MULT, "*", Token{Type: MULT, Lexeme: "*", Line: 1, Column: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.typ, tt.text, 1, 2)
			if got != tt.want {
				t.Errorf("New() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	for word, typ := range Keywords {
		if typ == IDENTIFIER {
			t.Errorf("keyword %q mapped to IDENTIFIER", word)
		}
	}
}
