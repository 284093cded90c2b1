// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a Digirule 2 instruction set
// disassembler.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/digiasm/digiasm/cpu"
)

// Names of the special function registers, used to annotate operands.
var registerName = map[byte]string{
	cpu.StatusRegister:  "status",
	cpu.ButtonRegister:  "buttons",
	cpu.AddressLEDs:     "addrLEDs",
	cpu.DataLEDRegister: "dataLEDs",
}

// Instructions whose operands are literal values rather than addresses.
var literalOperands = map[string]bool{
	"speed":  true,
	"copyla": true,
	"addla":  true,
	"subla":  true,
	"andla":  true,
	"orla":   true,
	"xorla":  true,
	"retla":  true,
}

// Disassemble the machine code in memory 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code. Bytes that do
// not hold a valid opcode disassemble to a .byte directive.
func Disassemble(m cpu.Memory, addr byte) (line string, next byte) {
	opcode := m.LoadByte(addr)
	inst := cpu.GetInstructionSet().LookupOpcode(opcode)
	if inst == nil {
		return fmt.Sprintf("%s %d", cpu.ByteDirective, opcode), addr + 1
	}

	operands := make([]byte, inst.Operands)
	m.LoadBytes(addr+1, operands)

	var b strings.Builder
	b.WriteString(inst.Name)
	var notes []string
	for i, v := range operands {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(v)))

		// copylr takes a literal followed by an address.
		literal := literalOperands[inst.Name] || (inst.Name == "copylr" && i == 0)
		if name, ok := registerName[v]; ok && !literal {
			notes = append(notes, name)
		}
	}
	if len(notes) > 0 {
		b.WriteString(" ; ")
		b.WriteString(strings.Join(notes, ", "))
	}

	return b.String(), addr + byte(inst.Length())
}
