package assemble

import (
	"testing"

	"github.com/lookbusy1344/picosim/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_BasicProgram(t *testing.T) {
	prog, errs := Assemble(`LOAD s0, 01
ADD s0, 02`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 2)
	assert.Equal(t, uint16(0), prog.Entries[0].Address)
	assert.Equal(t, machine.OpLoad, prog.Entries[0].Instr.Op)
	assert.Equal(t, uint16(1), prog.Entries[1].Address)
	assert.Equal(t, machine.OpAdd, prog.Entries[1].Instr.Op)
}

func TestAssemble_LabelsAndConstants(t *testing.T) {
	prog, errs := Assemble(`CONSTANT limit, 0A
start: LOAD s0, limit
JUMP start`)

	require.False(t, errs.HasErrors())
	assert.Equal(t, uint16(0), prog.Labels()["start"])
	assert.Equal(t, byte(0x0A), prog.Constants()["limit"])

	require.Len(t, prog.Entries, 2)
	assert.Equal(t, byte(0x0A), prog.Entries[0].Instr.Imm)
	assert.Equal(t, uint16(0), prog.Entries[1].Instr.Target)
}

func TestAssemble_Namereg(t *testing.T) {
	prog, errs := Assemble(`NAMEREG s3, counter
LOAD counter, 00`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 1)
	assert.Equal(t, byte(3), prog.Entries[0].Instr.Dst)
}

func TestAssemble_NameregRejectsOriginalRegisterLiteral(t *testing.T) {
	_, errs := Assemble(`NAMEREG s3, counter
LOAD s3, 00`)

	require.True(t, errs.HasErrors())
	assert.Equal(t, ErrUndefinedSymbol, errs.Errors[0].Kind)
}

func TestAssemble_DuplicateLabel(t *testing.T) {
	_, errs := Assemble(`start: LOAD s0, 00
start: LOAD s1, 00`)

	require.True(t, errs.HasErrors())
	assert.Equal(t, ErrDuplicateLabel, errs.Errors[0].Kind)
}

func TestAssemble_UndefinedSymbol(t *testing.T) {
	_, errs := Assemble(`JUMP nowhere`)

	require.True(t, errs.HasErrors())
	assert.Equal(t, ErrUndefinedSymbol, errs.Errors[0].Kind)
}

func TestAssemble_AddressDirectiveRepositions(t *testing.T) {
	prog, errs := Assemble(`ADDRESS 3FF
LOAD s0, 00`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 1)
	assert.Equal(t, uint16(0x3FF), prog.Entries[0].Address)
}

func TestAssemble_DuplicateAddress(t *testing.T) {
	_, errs := Assemble(`ADDRESS 000
LOAD s0, 00
ADDRESS 000
LOAD s1, 00`)

	require.True(t, errs.HasErrors())
	assert.Equal(t, ErrDuplicateAddress, errs.Errors[0].Kind)
}

func TestAssemble_TildeNegation(t *testing.T) {
	prog, errs := Assemble(`LOAD s0, ~01`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 1)
	assert.True(t, prog.Entries[0].Instr.Negate)
}

func TestAssemble_IndirectFetch(t *testing.T) {
	prog, errs := Assemble(`FETCH s0, (s1)`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 1)
	instr := prog.Entries[0].Instr
	assert.True(t, instr.Indirect)
	assert.Equal(t, byte(1), instr.Src)
}

func TestAssemble_JumpIndirectPair(t *testing.T) {
	prog, errs := Assemble(`JUMP@ (s1, s2)`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 1)
	instr := prog.Entries[0].Instr
	assert.Equal(t, machine.OpJumpIndirect, instr.Op)
	assert.Equal(t, byte(1), instr.PairHi)
	assert.Equal(t, byte(2), instr.PairLo)
}

func TestAssemble_EnableDisableInterrupt(t *testing.T) {
	prog, errs := Assemble(`ENABLE INTERRUPT
DISABLE INTERRUPT`)

	require.False(t, errs.HasErrors())
	require.Len(t, prog.Entries, 2)
	assert.Equal(t, machine.OpEnableInterrupt, prog.Entries[0].Instr.Op)
	assert.Equal(t, machine.OpDisableInterrupt, prog.Entries[1].Instr.Op)
}

func TestAssemble_ImmediateOutOfRange(t *testing.T) {
	_, errs := Assemble(`CONSTANT big, 300'd`)

	require.True(t, errs.HasErrors())
	assert.Equal(t, ErrImmediateRange, errs.Errors[0].Kind)
}
