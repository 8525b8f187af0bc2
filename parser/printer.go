package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexeyden/ecmascript-toy/ast"
	"github.com/fatih/color"
)

// nodeToJSON converts a single AST node into a JSON-friendly value by
// switching on its tag, rather than dispatching through a Visitor.
func nodeToJSON(n ast.Node) any {
	switch n.Tag {
	case ast.Number:
		return map[string]any{"type": "Number", "value": n.Number}
	case ast.String:
		return map[string]any{"type": "String", "value": n.Text}
	case ast.Symbol:
		return map[string]any{"type": "Symbol", "name": n.Text}
	case ast.Function:
		params := make([]any, 0, len(n.Params()))
		for _, p := range n.Params() {
			params = append(params, p.Text)
		}
		return map[string]any{"type": "Function", "params": params, "body": nodeToJSON(n.Body())}
	case ast.Call:
		return map[string]any{"type": "Call", "callee": nodeToJSON(n.Children[0]), "args": nodesToJSON(n.Children[1].Children)}
	case ast.Dict:
		entries := make([]any, 0, len(n.Children)/2)
		for i := 0; i+1 < len(n.Children); i += 2 {
			entries = append(entries, map[string]any{
				"key":   nodeToJSON(n.Children[i]),
				"value": nodeToJSON(n.Children[i+1]),
			})
		}
		return map[string]any{"type": "Dict", "entries": entries}
	case ast.Array:
		return map[string]any{"type": "Array", "elements": nodesToJSON(n.Children)}
	case ast.StmtVar:
		return map[string]any{"type": "StmtVar", "name": n.Children[0].Text, "value": nodeToJSON(n.Children[1])}
	case ast.StmtIf:
		return map[string]any{"type": "StmtIf", "condition": nodeToJSON(n.Children[0]), "then": nodeToJSON(n.Children[1])}
	case ast.StmtIfElse:
		return map[string]any{
			"type":      "StmtIfElse",
			"condition": nodeToJSON(n.Children[0]),
			"then":      nodeToJSON(n.Children[1]),
			"else":      nodeToJSON(n.Children[2]),
		}
	case ast.StmtWhile:
		return map[string]any{"type": "StmtWhile", "condition": nodeToJSON(n.Children[0]), "body": nodeToJSON(n.Children[1])}
	case ast.StmtReturn:
		return map[string]any{"type": "StmtReturn", "value": nodeToJSON(n.Children[0])}
	case ast.Member:
		return map[string]any{"type": "Member", "key": nodeToJSON(n.Children[0]), "object": nodeToJSON(n.Children[1])}
	case ast.Index:
		return map[string]any{"type": "Index", "key": nodeToJSON(n.Children[0]), "object": nodeToJSON(n.Children[1])}
	case ast.Op:
		entry := map[string]any{"type": "Op", "operator": n.Operator.String(), "operands": nodesToJSON(n.Children)}
		return entry
	case ast.Assign:
		return map[string]any{"type": "Assign", "target": nodeToJSON(n.Children[0]), "value": nodeToJSON(n.Children[1])}
	case ast.Block:
		return map[string]any{"type": "Block", "statements": nodesToJSON(n.Children)}
	case ast.Empty:
		return map[string]any{"type": "Empty"}
	default:
		return map[string]any{"type": fmt.Sprintf("Unknown(%d)", int(n.Tag))}
	}
}

func nodesToJSON(nodes []ast.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeToJSON(n))
	}
	return out
}

// PrintASTJSON renders a slice of top-level statements as prettified JSON
// and also prints it to stdout in yellow, the way the original tree
// printer did for interactive use.
func PrintASTJSON(statements []ast.Node) (string, error) {
	raw, err := json.MarshalIndent(nodesToJSON(statements), "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(raw)
	yellow := color.New(color.FgYellow)
	yellow.Println("----- AST JSON -----")
	yellow.Println(jsonStr)
	yellow.Println("-----")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the AST JSON for statements to path without
// the colored console echo.
func WriteASTJSONToFile(statements []ast.Node, path string) error {
	raw, err := json.MarshalIndent(nodesToJSON(statements), "", "  ")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("error writing AST to file: %w", err)
	}
	return nil
}
