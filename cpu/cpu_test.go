package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiasm/digiasm/cpu"
)

func TestInstructionTable(t *testing.T) {
	set := cpu.GetInstructionSet()

	tests := []struct {
		name     string
		opcode   byte
		operands int
	}{
		{"halt", 0, 0},
		{"nop", 1, 0},
		{"speed", 2, 1},
		{"copylr", 3, 2},
		{"copyrr", 7, 2},
		{"xorra", 17, 1},
		{"decrjz", 20, 1},
		{"bcrss", 27, 2},
		{"jump", 28, 1},
		{"return", 31, 0},
		{"addrpc", 32, 1},
		{"randa", 34, 0},
	}
	for _, tt := range tests {
		inst := set.Lookup(tt.name)
		require.NotNil(t, inst, tt.name)
		assert.True(t, inst.HasOpcode, tt.name)
		assert.Equal(t, tt.opcode, inst.Opcode, tt.name)
		assert.Equal(t, tt.operands, inst.Operands, tt.name)
		assert.Equal(t, tt.operands+1, inst.Length(), tt.name)
	}

	assert.Len(t, set.Instructions(), 35)
	for i, inst := range set.Instructions() {
		assert.Equal(t, byte(i), inst.Opcode)
		assert.Same(t, inst, set.LookupOpcode(byte(i)))
	}
	assert.Nil(t, set.LookupOpcode(35))
	assert.Nil(t, set.LookupOpcode(255))
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	set := cpu.GetInstructionSet()
	assert.Same(t, set.Lookup("copylr"), set.Lookup("CopyLR"))
	assert.Same(t, set.Lookup(".byte"), set.Lookup(".BYTE"))
	assert.Nil(t, set.Lookup("mov"))
}

func TestDirectives(t *testing.T) {
	set := cpu.GetInstructionSet()

	b := set.Lookup(cpu.ByteDirective)
	require.NotNil(t, b)
	assert.False(t, b.HasOpcode)
	assert.True(t, b.Directive)
	assert.Equal(t, 1, b.Operands)
	assert.Equal(t, 1, b.Length())

	d := set.Lookup(cpu.DefDirective)
	require.NotNil(t, d)
	assert.False(t, d.HasOpcode)
	assert.Equal(t, 0, d.Length())
}

func TestFlatMemory(t *testing.T) {
	mem := cpu.NewFlatMemory()
	require.NoError(t, mem.StoreBytes(254, []byte{1, 2}))
	assert.Equal(t, byte(2), mem.LoadByte(255))
	assert.ErrorIs(t, mem.StoreBytes(255, []byte{1, 2}), cpu.ErrMemoryOutOfBounds)

	mem.StoreByte(0, 9)
	b := make([]byte, 3)
	mem.LoadBytes(254, b)
	assert.Equal(t, []byte{1, 2, 9}, b)

	mem.Clear()
	assert.Equal(t, byte(0), mem.LoadByte(254))
}
