// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// ErrorKind classifies the diagnostics reported during assembly.
type ErrorKind byte

// Diagnostic kinds, grouped by the pass that reports them.
const (
	// Pass 1: line processing
	DuplicateLabel ErrorKind = iota
	MissingLabelOnDirective
	WrongOperandCountOnDirective
	InvalidDirectiveValue

	// Pass 2: label resolution
	UnknownLabel
	InvalidExpression

	// Pass 3: code generation
	UnknownInstruction
	WrongOperandCount
)

var errorKindName = []string{
	"DuplicateLabel",
	"MissingLabelOnDirective",
	"WrongOperandCountOnDirective",
	"InvalidDirectiveValue",
	"UnknownLabel",
	"InvalidExpression",
	"UnknownInstruction",
	"WrongOperandCount",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindName) {
		return errorKindName[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// An Error is a diagnostic reported while assembling. Errors never stop
// the assembler; they are collected in the order they are encountered.
type Error struct {
	Kind ErrorKind // kind of diagnostic
	Line int       // 1-based number of the offending source line
	Text string    // the offending source line
	Msg  string    // error message
}

func newError(kind ErrorKind, line int, text, msg string) *Error {
	return &Error{Kind: kind, Line: line, Text: text, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("ERROR(line %d) <%s>: %s", e.Line, e.Text, e.Msg)
}

func (e *Error) String() string {
	return e.Error()
}
