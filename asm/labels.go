// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Label associates a name with either the address of the line that
// defined it or, for labels assigned by the .def directive, a constant.
type Label struct {
	Name    string // label name, without the trailing ':'
	Value   int    // address or constant value
	Defined bool   // value was assigned by .def rather than the program counter
	Line    int    // source line that defined the label
}

// A LabelTable maps label names to values. Labels are kept in the order in
// which they were first defined.
type LabelTable struct {
	labels []*Label
	index  map[string]*Label
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{index: make(map[string]*Label)}
}

// Add registers a label with an address value. If the name is already in
// use, the existing label is left untouched and Add returns false.
func (t *LabelTable) Add(name string, addr, line int) (*Label, bool) {
	if l, found := t.index[name]; found {
		return l, false
	}
	l := &Label{Name: name, Value: addr, Line: line}
	t.labels = append(t.labels, l)
	t.index[name] = l
	return l, true
}

// Define overwrites a label's address with a constant value.
func (t *LabelTable) Define(l *Label, value int) {
	l.Value = value
	l.Defined = true
}

// Lookup returns the label with the requested name.
func (t *LabelTable) Lookup(name string) (*Label, bool) {
	l, ok := t.index[name]
	return l, ok
}

// Value returns the value of the named label.
func (t *LabelTable) Value(name string) (int, bool) {
	if l, ok := t.index[name]; ok {
		return l.Value, true
	}
	return 0, false
}

// Labels returns all labels in the order they were first defined.
func (t *LabelTable) Labels() []*Label {
	return t.labels
}

// Len returns the number of labels in the table.
func (t *LabelTable) Len() int {
	return len(t.labels)
}

// AddressIndex returns the inverse of the table restricted to labels whose
// value is an address. When several labels share an address, the one
// defined last names it.
func (t *LabelTable) AddressIndex() map[int]string {
	index := make(map[int]string, len(t.labels))
	for _, l := range t.labels {
		if !l.Defined {
			index[l.Value] = l.Name
		}
	}
	return index
}
