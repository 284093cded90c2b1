// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Expression errors
var (
	ErrUnknownLabel      = errors.New("unknown label")
	ErrInvalidExpression = errors.New("invalid label expression")
)

type exprOp byte

const (
	opNumber exprOp = iota
	opIdentifier
	opAdd
	opSubtract
)

var opSymbol = []string{"", "", "+", "-"}

// An expr is an operand expression: a decimal literal, a label, or a
// label followed by a signed decimal offset.
type expr struct {
	op         exprOp
	number     int    // literal value or offset
	identifier string // label name
}

// Parse an operand token. The first '+' splits the label from its offset;
// without one, the first '-' does.
func parseExpr(s string) (*expr, error) {
	if isLiteral(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, ErrInvalidExpression
		}
		return &expr{op: opNumber, number: n}, nil
	}

	op, i := opAdd, strings.IndexByte(s, '+')
	if i < 0 {
		op, i = opSubtract, strings.IndexByte(s, '-')
	}
	if i < 0 {
		return &expr{op: opIdentifier, identifier: s}, nil
	}

	label, offset := s[:i], s[i+1:]
	if !isLiteral(offset) {
		return nil, ErrInvalidExpression
	}
	n, err := strconv.Atoi(offset)
	if err != nil {
		return nil, ErrInvalidExpression
	}
	return &expr{op: op, number: n, identifier: label}, nil
}

// Evaluate the expression using the label table.
func (e *expr) eval(labels *LabelTable) (int, error) {
	if e.op == opNumber {
		return e.number, nil
	}

	v, ok := labels.Value(e.identifier)
	if !ok {
		return -1, ErrUnknownLabel
	}

	switch e.op {
	case opAdd:
		v += e.number
	case opSubtract:
		v -= e.number
	}
	return v, nil
}

func (e *expr) String() string {
	switch e.op {
	case opNumber:
		return strconv.Itoa(e.number)
	case opIdentifier:
		return e.identifier
	default:
		return fmt.Sprintf("%s%s%d", e.identifier, opSymbol[e.op], e.number)
	}
}

// Evaluate computes the value of an operand expression against a label
// table. On failure it returns -1 along with ErrUnknownLabel or
// ErrInvalidExpression.
func Evaluate(s string, labels *LabelTable) (int, error) {
	e, err := parseExpr(s)
	if err != nil {
		return -1, err
	}
	return e.eval(labels)
}

// Return true if the string is a non-empty run of decimal digits.
func isLiteral(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !decimal(s[i]) {
			return false
		}
	}
	return true
}
