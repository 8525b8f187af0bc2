// Package analyzer resolves lexical scope. It runs two passes over the AST
// and populates a scope.Tree: a local pass that creates one frame per
// function and declares every `var`-bound name and parameter, and a global
// pass that declares as a global every bare assignment target not already
// visible from the assignment's own frame.
package analyzer

import (
	"github.com/alexeyden/ecmascript-toy/ast"
	"github.com/alexeyden/ecmascript-toy/scope"
)

// BuildFrameStack runs both passes over a top-level program (the statement
// list returned by the parser) and returns the populated tree, cursor
// parked at the root.
func BuildFrameStack(program []ast.Node) *scope.Tree {
	root := ast.NewBlock(program, 0, 0)

	tree := scope.New()
	localPass(&root, tree)
	tree.Reset()
	globalPass(&root, tree)
	tree.Reset()

	return tree
}

// localPass creates one frame per function literal (in its enclosing
// frame's child list) and declares every `var` name and function parameter
// in the frame that owns it.
func localPass(n *ast.Node, tree *scope.Tree) {
	switch n.Tag {
	case ast.StmtVar:
		tree.PutVar(n.Children[0].Text)
	case ast.Function:
		tree.AddChild()
		tree.Enter()
		for _, param := range n.Params() {
			tree.InsertVarFront(param.Text)
		}
		for i := range n.Children {
			localPass(&n.Children[i], tree)
		}
		tree.Exit()
		return
	}

	for i := range n.Children {
		localPass(&n.Children[i], tree)
	}
}

// globalPass re-walks the already-shaped tree (replaying Enter/Exit only,
// never creating frames) and declares a global for every bare assignment
// whose target isn't visible from the assignment's own frame.
func globalPass(n *ast.Node, tree *scope.Tree) {
	switch n.Tag {
	case ast.Assign:
		if target := n.Children[0]; target.Tag == ast.Symbol {
			if _, ok := tree.FindVar(target.Text); !ok {
				tree.PutVarGlobal(target.Text)
			}
		}
	case ast.Function:
		tree.Enter()
		for i := range n.Children {
			globalPass(&n.Children[i], tree)
		}
		tree.Exit()
		return
	}

	for i := range n.Children {
		globalPass(&n.Children[i], tree)
	}
}
