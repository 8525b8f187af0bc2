package compiler

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// labelFixup is a sentinel PushInt site waiting for its real target.
type labelFixup struct {
	site int
}

// Assembler emits a bytecode image into an in-memory buffer and tracks the
// simulated operand-stack depth so the code generator can compute
// closure-capture offsets without running anything. Labels are resolved by
// recording every fixup site and rewriting it once the label's target IP is
// known, rather than by seeking a backing file as the original tool did.
type Assembler struct {
	buf    []byte
	sp     simStack
	labels [][]labelFixup

	listing strings.Builder
	verbose bool
}

func NewAssembler() *Assembler {
	return &Assembler{sp: simStack{0}}
}

// Verbose turns on the human-readable instruction listing collected in
// Listing.
func (a *Assembler) Verbose(v bool) {
	a.verbose = v
}

// Bytes returns the assembled image.
func (a *Assembler) Bytes() []byte {
	return a.buf
}

// Listing returns the accumulated disassembly, empty unless Verbose(true)
// was called before assembling.
func (a *Assembler) Listing() string {
	return a.listing.String()
}

// IP returns the offset the next emitted byte will land at.
func (a *Assembler) IP() int {
	return len(a.buf)
}

// SP returns the current simulated stack depth.
func (a *Assembler) SP() int {
	return a.sp.Peek()
}

// PushSP starts a fresh depth counter, scoped to the function currently
// being compiled.
func (a *Assembler) PushSP(depth int) {
	a.sp.Push(depth)
}

// PopSP discards the innermost depth counter and returns its final value.
// The outermost counter belongs to the top-level program and must never be
// popped; doing so would mean a compileFn exited without a matching
// PushSP, a bug in the compiler rather than in the source program.
func (a *Assembler) PopSP() int {
	if len(a.sp) <= 1 {
		panic(DeveloperError{Message: "PopSP: no nested function scope to pop"})
	}
	return a.sp.Pop()
}

func (a *Assembler) print(format string, args ...any) {
	if !a.verbose {
		return
	}
	fmt.Fprintf(&a.listing, "%05d %s\n", a.IP(), fmt.Sprintf(format, args...))
}

func (a *Assembler) writeByte(b byte) {
	a.buf = append(a.buf, b)
}

func (a *Assembler) writeU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
}

func (a *Assembler) writeF32(v float32) {
	a.writeU32(math.Float32bits(v))
}

// PushFloat emits a numeric literal. Δsp +1.
func (a *Assembler) PushFloat(v float32) {
	a.print("push_num %v", v)
	a.writeByte(byte(OpPushNum))
	a.writeF32(v)
	a.sp.bump(1)
}

// PushStr emits a string literal, length-prefixed. Δsp +1.
func (a *Assembler) PushStr(s string) {
	a.print("push_str %q", s)
	a.writeByte(byte(OpPushStr))
	a.writeU32(uint32(len(s)))
	a.buf = append(a.buf, s...)
	a.sp.bump(1)
}

// PushInt emits an integer literal, used both for raw addresses and for
// label fixups. Δsp +1.
func (a *Assembler) PushInt(v uint32) {
	a.print("push_int %d", v)
	a.writeByte(byte(OpPushInt))
	a.writeU32(v)
	a.sp.bump(1)
}

// PushFn emits a function-value descriptor: how many parent frames it
// closes over, the frame offset its captured slots begin at, and its own
// frame size. The runtime target address is the immediately preceding
// label, not an operand here: the closure replaces that address on top of
// the stack. Δsp 0.
func (a *Assembler) PushFn(parentCount, parentOffset, frameSize uint32) {
	a.print("push_fn %d %d %d", parentCount, parentOffset, frameSize)
	a.writeByte(byte(OpPushFn))
	a.writeU32(parentCount)
	a.writeU32(parentOffset)
	a.writeU32(frameSize)
}

// PushDict pops n key/value pairs and pushes one dict. Δsp = 1 - 2n.
func (a *Assembler) PushDict(n uint32) {
	a.print("push_dict %d", n)
	a.writeByte(byte(OpPushDict))
	a.writeU32(n)
	a.sp.bump(1 - 2*int(n))
}

// PushArray pops n elements and pushes one array. Δsp = 1 - n.
func (a *Assembler) PushArray(n uint32) {
	a.print("push_array %d", n)
	a.writeByte(byte(OpPushArray))
	a.writeU32(n)
	a.sp.bump(1 - int(n))
}

// Take duplicates the value `offset` slots below the current top and
// pushes the copy. Δsp +1.
func (a *Assembler) Take(offset uint32) {
	a.print("take %d", offset)
	a.writeByte(byte(OpTake))
	a.writeU32(offset)
	a.sp.bump(1)
}

// Swap exchanges the values at depth x and depth y below the top. Δsp 0.
func (a *Assembler) Swap(x, y uint32) {
	a.print("swap %d %d", x, y)
	a.writeByte(byte(OpSwap))
	a.writeU32(x)
	a.writeU32(y)
}

// Pop discards the top n values. Δsp = -n.
func (a *Assembler) Pop(n uint32) {
	a.print("pop %d", n)
	a.writeByte(byte(OpPop))
	a.writeU32(n)
	a.sp.bump(-int(n))
}

// Load dereferences the address on top of the stack, reading `offset`
// cells past it, replacing the address with the loaded value. Δsp 0.
func (a *Assembler) Load(offset uint32) {
	a.print("load %d", offset)
	a.writeByte(byte(OpLoad))
	a.writeU32(offset)
}

// Store writes the value below the address on top into that address,
// popping both. Δsp -2.
func (a *Assembler) Store() {
	a.print("store")
	a.writeByte(byte(OpStore))
	a.sp.bump(-2)
}

// BinaryOp pops two operands and pushes one result. Δsp -1.
func (a *Assembler) BinaryOp(op Opcode) {
	a.print(op.String())
	a.writeByte(byte(op))
	a.sp.bump(-1)
}

// UnaryOp pops one operand and pushes one result. Δsp 0.
func (a *Assembler) UnaryOp(op Opcode) {
	a.print(op.String())
	a.writeByte(byte(op))
}

// Jump pops a target address and transfers control to it. Δsp -1.
func (a *Assembler) Jump() {
	a.print("jump")
	a.writeByte(byte(OpJump))
	a.sp.bump(-1)
}

// JumpIf pops a condition and a target address; transfers control to the
// target when the condition is truthy. Δsp -2.
func (a *Assembler) JumpIf() {
	a.print("jump_if")
	a.writeByte(byte(OpJumpIf))
	a.sp.bump(-2)
}

// Call pops the callee, an argument count, nArgs arguments and a return
// address, and transfers control into the callee; the callee's return value
// is left in their place. Δsp = -(nArgs + 2).
func (a *Assembler) Call(nArgs uint32) {
	a.print("call %d", nArgs)
	a.writeByte(byte(OpCall))
	a.sp.bump(-(int(nArgs) + 2))
}

// Get pops a dict/array and a key, pushing the looked-up value. Δsp -1.
func (a *Assembler) Get() {
	a.print("get")
	a.writeByte(byte(OpGet))
	a.sp.bump(-1)
}

// GenLabel allocates a new label id with no fixup sites yet.
func (a *Assembler) GenLabel() int {
	a.labels = append(a.labels, nil)
	return len(a.labels) - 1
}

// PutLabel emits a placeholder address (PushInt of a sentinel value) and
// remembers its location so FillLabel can rewrite it. Δsp +1.
func (a *Assembler) PutLabel(id int) {
	a.print("push_int @label_%d", id)
	site := a.IP()
	a.labels[id] = append(a.labels[id], labelFixup{site: site})
	a.writeByte(byte(OpPushInt))
	a.writeU32(0xDEAD)
	a.sp.bump(1)
}

// FillLabel resolves a label to the current IP and rewrites every site
// that was emitted for it via PutLabel.
func (a *Assembler) FillLabel(id int) {
	a.print("@label_%d:", id)
	target := uint32(a.IP())
	for _, fix := range a.labels[id] {
		a.buf[fix.site] = byte(OpPushInt)
		binary.LittleEndian.PutUint32(a.buf[fix.site+1:fix.site+5], target)
	}
}
