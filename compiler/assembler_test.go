package compiler

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushIntEncoding(t *testing.T) {
	a := NewAssembler()
	a.PushInt(1234)

	require.Len(t, a.Bytes(), 5)
	assert.Equal(t, byte(OpPushInt), a.Bytes()[0])
	assert.Equal(t, uint32(1234), binary.LittleEndian.Uint32(a.Bytes()[1:5]))
	assert.Equal(t, 1, a.SP())
}

func TestPushStrEncodesLengthPrefixThenBytes(t *testing.T) {
	a := NewAssembler()
	a.PushStr("hi")

	want := append([]byte{byte(OpPushStr)}, 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(want[1:5], 2)
	want = append(want, 'h', 'i')
	assert.Equal(t, want, a.Bytes())
}

func TestLabelFixupResolvesToFinalIP(t *testing.T) {
	a := NewAssembler()

	label := a.GenLabel()
	a.PutLabel(label)
	site := 0

	a.PushInt(0) // padding so the label's target isn't offset 0
	a.FillLabel(label)

	target := binary.LittleEndian.Uint32(a.Bytes()[site+1 : site+5])
	assert.Equal(t, uint32(a.IP()), target)
}

func TestLabelFixupRewritesEverySite(t *testing.T) {
	a := NewAssembler()

	label := a.GenLabel()
	a.PutLabel(label)
	a.PushInt(0)
	a.PutLabel(label)
	a.FillLabel(label)

	firstSite := uint32(binary.LittleEndian.Uint32(a.Bytes()[1:5]))
	secondSite := uint32(binary.LittleEndian.Uint32(a.Bytes()[11:15]))
	assert.Equal(t, firstSite, secondSite)
}

func TestSimulatedStackDepthTracksPushesAndPops(t *testing.T) {
	a := NewAssembler()
	a.PushInt(1)
	a.PushInt(2)
	assert.Equal(t, 2, a.SP())

	a.BinaryOp(OpAdd)
	assert.Equal(t, 1, a.SP())

	a.Pop(1)
	assert.Equal(t, 0, a.SP())
}

func TestPushSPStartsFreshCounterForNestedFunctions(t *testing.T) {
	a := NewAssembler()
	a.PushInt(1)
	a.PushInt(2)

	a.PushSP(0)
	assert.Equal(t, 0, a.SP())
	a.PushInt(3)
	assert.Equal(t, 1, a.SP())

	restored := a.PopSP()
	assert.Equal(t, 1, restored)
	assert.Equal(t, 2, a.SP())
}

func TestPopSPOnTopLevelCounterPanicsDeveloperError(t *testing.T) {
	a := NewAssembler()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(DeveloperError)
		assert.True(t, ok)
	}()
	a.PopSP()
}

func TestCallDepthLeavesOneReturnValueOnStack(t *testing.T) {
	a := NewAssembler()
	a.PushInt(0) // return address
	a.PushInt(1) // arg
	a.PushInt(2) // arg count
	a.PushInt(3) // callee
	a.Call(1)
	assert.Equal(t, 1, a.SP())
}
