// Package compiler lowers a parsed program into a bytecode image for the
// stack machine: it resolves every variable reference through the
// frame-stack tree built by the analyzer, then walks the syntax tree once,
// emitting one instruction sequence per construct through the assembler.
package compiler

import (
	"fmt"

	"github.com/alexeyden/ecmascript-toy/analyzer"
	"github.com/alexeyden/ecmascript-toy/ast"
	"github.com/alexeyden/ecmascript-toy/scope"
)

// sysObjects names the host objects visible to every program without a
// declaration, each mapped to its runtime pointer value.
var sysObjects = map[string]uint32{
	"std": 0x00,
}

// Compiler holds the state threaded through one Compile call: the
// frame-stack tree built by the analyzer and the assembler accumulating
// the output image.
type Compiler struct {
	frames *scope.Tree
	asm    *Assembler
}

// New returns a Compiler ready for one Compile call. verbose turns on the
// assembler's human-readable instruction listing, retrievable afterward
// through Listing.
func New(verbose bool) *Compiler {
	asm := NewAssembler()
	asm.Verbose(verbose)
	return &Compiler{asm: asm}
}

// Listing returns the disassembly collected during the last Compile call,
// empty unless New was called with verbose set.
func (c *Compiler) Listing() string {
	return c.asm.Listing()
}

// Compile lowers a full program (the statement list the parser returns)
// into a bytecode image. A panic raised while walking the tree whose value
// is an error is recovered and returned as that error; any other panic
// value propagates.
func (c *Compiler) Compile(program []ast.Node) (bytecode []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	c.frames = analyzer.BuildFrameStack(program)
	root := c.frames.RootFrame()
	numGlobals := uint32(len(root.Slots))

	// The whole program runs as the body of an implicit top-level function,
	// invoked once through the same call mechanism every other function
	// uses. A sentinel return address of 0 sits under it; a top-level
	// `return` jumps back to that address. No return sequence is emitted
	// after the top-level body itself.
	c.asm.PushInt(0)
	startLabel := c.asm.GenLabel()
	c.asm.PutLabel(startLabel)
	c.asm.PushFn(0, 0, numGlobals)
	c.asm.Call(0)
	c.asm.FillLabel(startLabel)

	c.compileBlock(ast.NewBlock(program, 0, 0))

	return c.asm.Bytes(), nil
}

func (c *Compiler) compileBlock(n ast.Node) {
	switch n.Tag {
	case ast.Block:
		for _, stmt := range n.Children {
			c.compileBlock(stmt)
		}
	case ast.Assign, ast.StmtVar:
		c.compileAssign(n)
	case ast.Call:
		c.compileCall(n)
		c.asm.Pop(1)
	case ast.StmtIf, ast.StmtIfElse:
		c.compileIf(n)
	case ast.StmtWhile:
		c.compileWhile(n)
	case ast.StmtReturn:
		c.compileReturn(n)
	case ast.Empty:
	default:
		panic(SemanticError{Message: fmt.Sprintf("unsupported statement: %s", n.Tag)})
	}
}

// compileAssign handles both `lhs = rhs` and `var name = rhs`: the lhs
// (a Symbol, Member or Index) is compiled as an address, never dereferenced
// with takeValue, so Store has somewhere to write.
func (c *Compiler) compileAssign(n ast.Node) {
	lhs, rhs := n.Children[0], n.Children[1]
	c.compileExpr(rhs)
	c.takeValue(rhs)
	c.compileExpr(lhs)
	c.asm.Store()
}

// compileDictKey compiles a dict-literal key or a Member target, neither
// of which is a general expression: it is always a bare name, a string, or
// a number.
func (c *Compiler) compileDictKey(n ast.Node) {
	switch n.Tag {
	case ast.Symbol, ast.String:
		c.asm.PushStr(n.Text)
	case ast.Number:
		c.asm.PushFloat(float32(n.Number))
	default:
		panic(SemanticError{Message: fmt.Sprintf("invalid dict key: %s", n.Tag)})
	}
}

func (c *Compiler) compileExpr(n ast.Node) {
	switch n.Tag {
	case ast.Op:
		c.compileOp(n)
	case ast.Member:
		key, obj := n.Children[0], n.Children[1]
		c.compileExpr(obj)
		c.takeValue(obj)
		c.compileDictKey(key)
		c.asm.Get()
	case ast.Index:
		key, obj := n.Children[0], n.Children[1]
		c.compileExpr(obj)
		c.takeValue(obj)
		c.compileExpr(key)
		c.takeValue(key)
		c.asm.Get()
	case ast.Dict:
		for i := 0; i+1 < len(n.Children); i += 2 {
			key, val := n.Children[i], n.Children[i+1]
			c.compileDictKey(key)
			c.compileExpr(val)
			c.takeValue(val)
		}
		c.asm.PushDict(uint32(len(n.Children) / 2))
	case ast.Array:
		for _, el := range n.Children {
			c.compileExpr(el)
			c.takeValue(el)
		}
		c.asm.PushArray(uint32(len(n.Children)))
	case ast.Number:
		c.asm.PushFloat(float32(n.Number))
	case ast.String:
		c.asm.PushStr(n.Text)
	case ast.Symbol:
		c.compileSymbol(n)
	case ast.Call:
		c.compileCall(n)
	case ast.Function:
		c.compileFn(n)
	default:
		panic(SemanticError{Message: fmt.Sprintf("invalid expression: %s", n.Tag)})
	}
}

// compileOp lowers an Op node. Binary operators always carry two operands;
// the three unary operators (+, -, !) carry one. A literal `-n` was
// already folded into a Number by the parser; the fold is repeated here so
// a negated number reaching this stage by some other path is still
// collapsed instead of round-tripping through Neg.
func (c *Compiler) compileOp(n ast.Node) {
	if opcode, ok := binaryOpcodes[n.Operator]; ok {
		left, right := n.Children[0], n.Children[1]
		c.compileExpr(left)
		c.takeValue(left)
		c.compileExpr(right)
		c.takeValue(right)
		c.asm.BinaryOp(opcode)
		return
	}

	operand := n.Children[0]
	switch n.Operator {
	case ast.OpPos:
		c.compileExpr(operand)
		c.takeValue(operand)
	case ast.OpNot:
		c.compileExpr(operand)
		c.takeValue(operand)
		c.asm.UnaryOp(OpNot)
	case ast.OpNeg:
		if operand.Tag == ast.Number {
			c.asm.PushFloat(float32(-operand.Number))
			return
		}
		c.compileExpr(operand)
		c.takeValue(operand)
		c.asm.UnaryOp(OpNeg)
	default:
		panic(SemanticError{Message: fmt.Sprintf("unknown operator: %s", n.Operator)})
	}
}

// compileSymbol resolves a bare name to a runtime address: system objects
// resolve to a fixed pointer; everything else is looked up in the
// frame-stack tree and turned into take(frame-relative offset) + the
// slot's constant offset.
func (c *Compiler) compileSymbol(n ast.Node) {
	if ptr, ok := sysObjects[n.Text]; ok {
		c.asm.PushInt(ptr)
		return
	}

	descr, ok := c.frames.FindVar(n.Text)
	if !ok {
		panic(ResolveError{Name: n.Text, Line: n.Line, Column: n.Column})
	}

	spOffset := uint32(c.asm.SP()) - uint32(descr.FrameDistance)
	c.asm.Take(spOffset)
	c.asm.PushInt(uint32(descr.Slot))
	c.asm.BinaryOp(OpAdd)
}

// compileFn emits a function literal as a value: a PushFn descriptor
// pointing past an unconditional jump that skips the function body at
// runtime, with the body itself compiled in between and reachable only
// through a call.
func (c *Compiler) compileFn(n ast.Node) {
	c.frames.Enter()

	labelBypass := c.asm.GenLabel()
	labelBegin := c.asm.GenLabel()

	parentsLen := uint32(len(c.frames.Parents()))
	frameSize := uint32(len(c.frames.Frame(c.frames.Current()).Slots))
	captureSP := uint32(c.asm.SP()) + 1

	c.asm.PutLabel(labelBegin)
	c.asm.PushFn(parentsLen, captureSP, frameSize)

	c.asm.PutLabel(labelBypass)
	c.asm.Jump()

	c.asm.FillLabel(labelBegin)
	c.asm.PushSP(int(parentsLen))

	c.compileBlock(n.Body())

	// A function whose body falls off the end instead of returning still
	// needs to unwind its frame and hand control back; this mirrors
	// compileReturn, with a 0 result in place of a compiled one.
	sp := c.asm.SP()
	c.asm.Pop(uint32(sp + 1))
	c.asm.PopSP()
	c.asm.PushInt(0)
	c.asm.Swap(0, 1)
	c.asm.Jump()

	c.asm.FillLabel(labelBypass)

	c.frames.Exit()
}

// compileReturn evaluates the return expression, then unwinds the current
// frame's locals and the return address beneath them before jumping back
// to the caller.
func (c *Compiler) compileReturn(n ast.Node) {
	sp := c.asm.SP()
	c.asm.PushSP(sp)

	value := n.Children[0]
	c.compileExpr(value)
	c.takeValue(value)

	c.asm.Swap(0, uint32(sp+1))
	c.asm.Pop(uint32(sp + 1))

	c.asm.Swap(0, 1)
	c.asm.Jump()

	c.asm.PopSP()
}

// compileCall pushes a return-address label first, then the arguments,
// then the argument count, then the callee, matching the layout `call`
// expects on the stack.
func (c *Compiler) compileCall(n ast.Node) {
	retLabel := c.asm.GenLabel()
	c.asm.PutLabel(retLabel)

	callee := n.Children[0]
	args := n.Children[1].Children

	for _, arg := range args {
		c.compileExpr(arg)
		c.takeValue(arg)
	}

	c.asm.PushInt(uint32(len(args)))
	c.compileExpr(callee)
	c.takeValue(callee)

	c.asm.Call(uint32(len(args)))
	c.asm.FillLabel(retLabel)
}

func (c *Compiler) compileIf(n ast.Node) {
	cond, then := n.Children[0], n.Children[1]

	c.compileExpr(cond)
	c.takeValue(cond)
	c.asm.UnaryOp(OpNot)

	elseLabel := c.asm.GenLabel()
	c.asm.PutLabel(elseLabel)
	c.asm.JumpIf()

	c.compileBlock(then)

	endLabel := c.asm.GenLabel()
	c.asm.PutLabel(endLabel)
	c.asm.Jump()

	c.asm.FillLabel(elseLabel)
	if n.Tag == ast.StmtIfElse {
		c.compileBlock(n.Children[2])
	}
	c.asm.FillLabel(endLabel)
}

func (c *Compiler) compileWhile(n ast.Node) {
	cond, body := n.Children[0], n.Children[1]

	begin := uint32(c.asm.IP())

	c.compileExpr(cond)
	c.takeValue(cond)
	c.asm.UnaryOp(OpNot)

	endLabel := c.asm.GenLabel()
	c.asm.PutLabel(endLabel)
	c.asm.JumpIf()

	c.compileBlock(body)

	c.asm.PushInt(begin)
	c.asm.Jump()

	c.asm.FillLabel(endLabel)
}

// takeValue turns a compiled address into its pointed-to value. Symbol,
// Member and Index are the only node shapes compileExpr leaves as an
// address on the stack; everything else already produced a value.
func (c *Compiler) takeValue(n ast.Node) {
	switch n.Tag {
	case ast.Symbol, ast.Member, ast.Index:
		c.asm.Load(0)
	}
}
