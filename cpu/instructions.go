// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "strings"

// Directive mnemonics understood by the assembler. They have no opcode.
const (
	ByteDirective = ".byte"
	DefDirective  = ".def"
)

// Opcode data for a single mnemonic.
type opcodeData struct {
	name     string // lower-case mnemonic
	opcode   byte   // opcode value
	operands byte   // number of operand bytes following the opcode
}

// All Digirule 2 opcodes, in opcode order.
var data = []opcodeData{
	{"halt", 0x00, 0},
	{"nop", 0x01, 0},
	{"speed", 0x02, 1},
	{"copylr", 0x03, 2},
	{"copyla", 0x04, 1},
	{"copyar", 0x05, 1},
	{"copyra", 0x06, 1},
	{"copyrr", 0x07, 2},
	{"addla", 0x08, 1},
	{"addra", 0x09, 1},
	{"subla", 0x0a, 1},
	{"subra", 0x0b, 1},
	{"andla", 0x0c, 1},
	{"andra", 0x0d, 1},
	{"orla", 0x0e, 1},
	{"orra", 0x0f, 1},
	{"xorla", 0x10, 1},
	{"xorra", 0x11, 1},
	{"decr", 0x12, 1},
	{"incr", 0x13, 1},
	{"decrjz", 0x14, 1},
	{"incrjz", 0x15, 1},
	{"shiftrl", 0x16, 1},
	{"shiftrr", 0x17, 1},
	{"cbr", 0x18, 2},
	{"sbr", 0x19, 2},
	{"bcrsc", 0x1a, 2},
	{"bcrss", 0x1b, 2},
	{"jump", 0x1c, 1},
	{"call", 0x1d, 1},
	{"retla", 0x1e, 1},
	{"return", 0x1f, 0},
	{"addrpc", 0x20, 1},
	{"initsp", 0x21, 0},
	{"randa", 0x22, 0},
}

// An Instruction describes a mnemonic the assembler understands: either a
// CPU instruction with an opcode or a storage directive.
type Instruction struct {
	Name      string // lower-case mnemonic
	Opcode    byte   // opcode value, valid only if HasOpcode is set
	HasOpcode bool   // false for directives
	Operands  int    // required number of operands
	Directive bool   // pseudo-op that is not executed by the CPU
}

// Length returns the number of memory cells the instruction occupies when
// given the required number of operands.
func (i *Instruction) Length() int {
	if i.Name == DefDirective {
		return 0
	}
	n := i.Operands
	if i.HasOpcode {
		n++
	}
	return n
}

// An InstructionSet holds every mnemonic of the Digirule 2, indexed by name
// and by opcode.
type InstructionSet struct {
	byOpcode [256]*Instruction      // instructions by opcode, nil if unused
	byName   map[string]*Instruction // instructions and directives by name
	ordered  []*Instruction          // instructions in opcode order
}

// Lookup retrieves the instruction or directive matching the mnemonic.
// Matching is case-insensitive. It returns nil if the mnemonic is unknown.
func (s *InstructionSet) Lookup(name string) *Instruction {
	return s.byName[strings.ToLower(name)]
}

// LookupOpcode retrieves the CPU instruction encoded by the opcode value.
// It returns nil for opcodes the Digirule 2 does not implement.
func (s *InstructionSet) LookupOpcode(opcode byte) *Instruction {
	return s.byOpcode[opcode]
}

// Instructions returns all CPU instructions in opcode order. Directives
// are not included.
func (s *InstructionSet) Instructions() []*Instruction {
	return s.ordered
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		byName:  make(map[string]*Instruction, len(data)+2),
		ordered: make([]*Instruction, 0, len(data)),
	}

	for _, d := range data {
		inst := &Instruction{
			Name:      d.name,
			Opcode:    d.opcode,
			HasOpcode: true,
			Operands:  int(d.operands),
		}
		if set.byOpcode[d.opcode] != nil {
			panic("duplicate opcode")
		}
		set.byOpcode[d.opcode] = inst
		set.byName[d.name] = inst
		set.ordered = append(set.ordered, inst)
	}

	// .byte stores its single operand in the current cell. .def assigns a
	// value to its label and occupies no memory.
	set.byName[ByteDirective] = &Instruction{Name: ByteDirective, Operands: 1, Directive: true}
	set.byName[DefDirective] = &Instruction{Name: DefDirective, Operands: 1, Directive: true}

	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the Digirule 2 instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}
