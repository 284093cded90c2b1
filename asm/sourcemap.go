// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// machine code addresses, along with the program's labels.
type SourceMap struct {
	Size   uint32    // size of the machine code in bytes
	CRC    uint32    // CRC-32 of the machine code
	Files  []string  // source files
	Lines  []MapLine // address to source line mappings, sorted by address
	Labels []Export  // labels in definition order
}

// A MapLine represents a mapping between a machine code address and the
// source code file and line number used to generate it.
type MapLine struct {
	Address   int // Machine code address
	FileIndex int // Source code file index
	Line      int // Source code line number
}

// An Export describes a label and its value.
type Export struct {
	Label   string
	Value   int
	Address bool // value is an address rather than a .def constant
}

// Search searches the source map for the line whose code starts at the
// requested address.
func (s *SourceMap) Search(addr int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Files[s.Lines[i].FileIndex], s.Lines[i].Line
	}
	return "", -1
}

// Find returns the label export with the requested name.
func (s *SourceMap) Find(label string) (Export, bool) {
	for _, e := range s.Labels {
		if e.Label == label {
			return e, true
		}
	}
	return Export{}, false
}

// ReadFrom reads the contents of a source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
