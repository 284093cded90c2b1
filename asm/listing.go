// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
)

// An Entry is a single line of the assembly listing: a *Marker, a *Cell or
// an *Error.
type Entry interface {
	String() string
}

// A Marker precedes the first cell at an address named by a label.
type Marker struct {
	Label   string
	Address int
}

func (m *Marker) String() string {
	return fmt.Sprintf("[%s:] %d", m.Label, m.Address)
}

// A Cell is one byte of assembled machine code.
type Cell struct {
	Address int    // memory address
	Value   int    // resolved value; the cell holds its low 8 bits
	Opcode  bool   // the cell holds an instruction opcode
	Text    string // mnemonic or operand as listed
	Label   string // label of the source line that produced the cell
	Line    int    // 1-based source line number
}

// Byte returns the 8-bit value stored in the cell.
func (c *Cell) Byte() byte {
	return byte(c.Value)
}

func (c *Cell) String() string {
	s := fmt.Sprintf("%3d (%08b) %08b %3d %s", c.Address, c.Address, c.Value, c.Value, c.Text)
	if c.Label != "" {
		s += "  [" + c.Label + "]"
	}
	return s
}

// WriteListing writes the listing followed by the label table.
func (a *Assembly) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range a.Listing {
		fmt.Fprintln(bw, e.String())
	}
	writeLabelTable(bw, a.Labels)
	return bw.Flush()
}

// WriteLabels writes the label table alone.
func (a *Assembly) WriteLabels(w io.Writer) error {
	bw := bufio.NewWriter(w)
	writeLabelTable(bw, a.Labels)
	return bw.Flush()
}

func writeLabelTable(w io.Writer, labels *LabelTable) {
	fmt.Fprintln(w, "*** Label table ***")
	for _, l := range labels.Labels() {
		fmt.Fprintf(w, "\t %s \t\t %d\n", l.Name, l.Value)
	}
}
