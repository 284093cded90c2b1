// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"strconv"
)

// An Operand is a single operand token of a source line. It starts out
// unresolved, holding only its text, and is resolved to an integer once the
// label table is complete.
type Operand struct {
	Text     string // token as written in the source
	Value    int    // resolved value, valid only if Resolved is set
	Resolved bool   // whether Value holds the operand's value
}

// Return the operand as it appears in the listing.
func (o *Operand) display() string {
	if isLiteral(o.Text) {
		return o.Text
	}
	return strconv.Itoa(o.Value)
}

// A SourceLine is a line of source code that occupies memory.
type SourceLine struct {
	Line     int       // 1-based source line number
	Text     string    // the source line, trimmed of surrounding whitespace
	Label    string    // label defined on the line, if any
	Mnemonic string    // lower-case mnemonic
	Operands []Operand // operand tokens in source order
	Address  int       // address of the line's first memory cell
}

// A Program is the ordered sequence of source lines that occupy memory.
// Source order is memory order.
type Program []*SourceLine

// Resolve replaces every unresolved operand with its integer value using
// the label table. Operands that cannot be resolved get the value -1 and
// produce an error. Resolving an already resolved program does nothing.
func (p Program) Resolve(labels *LabelTable) []*Error {
	var errs []*Error
	for _, sl := range p {
		for i := range sl.Operands {
			o := &sl.Operands[i]
			if o.Resolved {
				continue
			}

			v, err := Evaluate(o.Text, labels)
			if err != nil {
				kind := UnknownLabel
				if errors.Is(err, ErrInvalidExpression) {
					kind = InvalidExpression
				}
				errs = append(errs, newError(kind, sl.Line, sl.Text, err.Error()))
				v = -1
			}
			o.Value, o.Resolved = v, true
		}
	}
	return errs
}
