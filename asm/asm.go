// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass assembler for the Digirule 2.
//
// The first pass reads the source, records labels and assigns an address to
// every line. The second pass resolves label expressions in operands. The
// third pass generates the machine code and the listing. Errors never stop
// the assembler: they are collected and reported in the listing, so that a
// listing and a label table are always produced.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/digiasm/digiasm/cpu"
)

// Errors
var (
	ErrDiagnostics = errors.New("assembly reported errors")
	ErrCodeSize    = errors.New("code exceeds 256 bytes")
)

// Diagnostic messages, as printed in the listing.
const (
	msgDuplicateLabel     = "Multiple label definition."
	msgDefNoLabel         = "no label on .DEF line"
	msgDefOperandCount    = "only one data allowed on .DEF line"
	msgDefInvalidValue    = "invalid .DEF value"
	msgUnknownInstruction = "unknown instruction"
	msgWrongOperandCount  = "wrong number of operands"
)

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	instSet *cpu.InstructionSet // instructions and directives
	pc      int                 // the program counter
	r       io.Reader           // the reader passed to Assemble
	files   []string            // processed files
	labels  *LabelTable         // label -> value
	program Program             // lines that occupy memory
	code    []byte              // generated machine code
	listing []Entry             // listing entries in output order
	errors  []*Error            // errors encountered during assembly
	out     io.Writer           // output used for verbose output
	verbose bool                // verbose output
}

// Assembly contains the assembled machine code and other data associated
// with the machine code.
type Assembly struct {
	Code    []byte      // Assembled machine code, starting at address 0
	Program Program     // Source lines that occupy memory
	Labels  *LabelTable // Labels in definition order
	Listing []Entry     // Listing lines, including errors, in output order
	Errors  []*Error    // Errors encountered during assembly
}

// ReadFrom reads machine code from a binary input source.
func (a *Assembly) ReadFrom(r io.Reader) (n int64, err error) {
	a.Errors = nil
	a.Code, err = io.ReadAll(r)
	n = int64(len(a.Code))
	if n > cpu.MemorySize {
		return n, ErrCodeSize
	}
	return n, err
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// HasErrors returns true if any errors were reported during assembly.
func (a *Assembly) HasErrors() bool {
	return len(a.Errors) > 0
}

// Option type used by the Assembly function.
type Option uint

// Options for the Assemble function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// AssembleFile reads a file containing Digirule assembly code, assembles
// it, writes the listing to 'out', and produces a binary output file and a
// source map file. If errors were reported, the listing is still written
// but no files are produced and ErrDiagnostics is returned.
func AssembleFile(path string, options Option, out io.Writer) error {
	inFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, out, options)
	if err != nil {
		return err
	}

	err = assembly.WriteListing(out)
	if err != nil {
		return err
	}
	if assembly.HasErrors() {
		return ErrDiagnostics
	}
	if len(assembly.Code) > cpu.MemorySize {
		return ErrCodeSize
	}

	ext := filepath.Ext(path)
	prefix := path[:len(path)-len(ext)]
	binPath := prefix + ".bin"
	binFile, err := os.OpenFile(binPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer binFile.Close()

	_, err = assembly.WriteTo(binFile)
	if err != nil {
		return err
	}

	mapPath := prefix + ".map"
	mapFile, err := os.OpenFile(mapPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer mapFile.Close()

	_, err = sourceMap.WriteTo(mapFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return nil
}

// Assemble reads data from the provided stream and assembles it into
// Digirule 2 machine code. Assembly errors do not cause Assemble to fail;
// they are returned in the Assembly. The returned error is non-nil only
// if the source could not be read.
func Assemble(r io.Reader, filename string, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		instSet: cpu.GetInstructionSet(),
		r:       r,
		files:   []string{filename},
		labels:  NewLabelTable(),
		out:     out,
		verbose: (options & Verbose) != 0,
	}

	// Assembly consists of the following steps. Each runs to completion
	// before the next begins.
	steps := []func(a *assembler) error{
		(*assembler).parse,         // Pass 1: labels, lines and addresses
		(*assembler).resolveLabels, // Pass 2: operand expressions
		(*assembler).generateCode,  // Pass 3: machine code and listing
	}

	for _, step := range steps {
		if err := step(a); err != nil {
			return nil, nil, err
		}
	}

	assembly := &Assembly{
		Code:    a.code,
		Program: a.program,
		Labels:  a.labels,
		Listing: a.listing,
		Errors:  a.errors,
	}

	return assembly, a.sourceMap(), nil
}

// Read the assembly code and perform the first pass. Build up the label
// table and the program, assigning an address to each line.
func (a *assembler) parse() error {
	a.logSection("Parsing assembly code")

	scanner := bufio.NewScanner(a.r)
	row := 1
	for scanner.Scan() {
		line := newFstring(0, row, scanner.Text())
		a.parseLine(line)
		row++
	}
	return scanner.Err()
}

// Parse a single line of assembly code.
func (a *assembler) parseLine(line fstring) {
	code := line.stripTrailingComment().consumeWhitespace()

	// Skip empty (or comment-only) lines
	if code.isEmpty() {
		return
	}

	words := code.fields()

	// Store the label at the current program counter, before the rest of
	// the line, so that it names the line's first cell.
	var label *Label
	var labelName string
	hasLabel := words[0].endsWith(labelTerminator)
	if hasLabel {
		labelName = strings.TrimSuffix(words[0].str, ":")
		label = a.storeLabel(words[0], labelName, code.str)
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	mnemonic := strings.ToLower(words[0].str)
	operands := words[1:]

	if mnemonic == cpu.DefDirective {
		a.parseDef(line.row, code.str, hasLabel, label, operands)
		return
	}

	sl := &SourceLine{
		Line:     line.row,
		Text:     strings.TrimSpace(line.full),
		Label:    labelName,
		Mnemonic: mnemonic,
		Address:  a.pc,
	}
	for _, o := range operands {
		sl.Operands = append(sl.Operands, Operand{Text: o.str})
	}
	a.program = append(a.program, sl)

	size := a.lineSize(sl)
	a.logLine(words[0], "addr=%d size=%d", sl.Address, size)
	a.pc += size
}

// Store a label into the assembler's label table. It returns nil if the
// label was already defined.
func (a *assembler) storeLabel(word fstring, name string, text string) *Label {
	l, added := a.labels.Add(name, a.pc, word.row)
	if !added {
		a.addError(DuplicateLabel, word.row, text, msgDuplicateLabel)
		return nil
	}
	a.logLine(word, "label=%s", name)
	return l
}

// Parse a ".DEF" directive, which assigns a constant to the line's label.
// A label that was already defined keeps its original value.
func (a *assembler) parseDef(row int, text string, hasLabel bool, label *Label, operands []fstring) {
	if !hasLabel {
		a.addError(MissingLabelOnDirective, row, text, msgDefNoLabel)
		return
	}
	if len(operands) != 1 {
		a.addError(WrongOperandCountOnDirective, row, text, msgDefOperandCount)
		return
	}

	v, err := strconv.Atoi(operands[0].str)
	if err != nil {
		a.addError(InvalidDirectiveValue, row, text, msgDefInvalidValue)
		return
	}

	if label != nil {
		a.labels.Define(label, v)
		a.logLine(operands[0], "def %s=%d", label.Name, v)
	}
}

// Return the number of memory cells a source line occupies.
func (a *assembler) lineSize(sl *SourceLine) int {
	if sl.Mnemonic == cpu.ByteDirective {
		return 1
	}
	return 1 + len(sl.Operands)
}

// Resolve every operand expression to an integer. All labels are known at
// this point, so forward references resolve like backward ones.
func (a *assembler) resolveLabels() error {
	a.logSection("Resolving labels")

	for _, err := range a.program.Resolve(a.labels) {
		a.addErrorValue(err)
	}

	if a.verbose {
		for _, sl := range a.program {
			for _, o := range sl.Operands {
				if !isLiteral(o.Text) {
					a.log("%-3d %-15s Val:%d", sl.Line, o.Text, o.Value)
				}
			}
		}
	}
	return nil
}

// Generate machine code and the listing. The program counter restarts at
// zero and advances exactly as it did during the first pass.
func (a *assembler) generateCode() error {
	a.logSection("Generating code")

	a.code = make([]byte, a.pc)
	index := a.labels.AddressIndex()

	pc := 0
	for _, sl := range a.program {
		if name, ok := index[pc]; ok {
			a.listing = append(a.listing, &Marker{Label: name, Address: pc})
		}

		inst := a.instSet.Lookup(sl.Mnemonic)
		switch {
		case inst == nil:
			// The opcode cell reserved during the first pass stays empty.
			a.addError(UnknownInstruction, sl.Line, sl.Text, msgUnknownInstruction)
			pc++
		case inst.HasOpcode:
			a.emit(&Cell{
				Address: pc,
				Value:   int(inst.Opcode),
				Opcode:  true,
				Text:    sl.Mnemonic,
				Label:   sl.Label,
				Line:    sl.Line,
			})
			pc++
		}

		if inst != nil && len(sl.Operands) != inst.Operands {
			a.addError(WrongOperandCount, sl.Line, sl.Text, msgWrongOperandCount)
		}

		operands := sl.Operands
		if sl.Mnemonic == cpu.ByteDirective {
			operands = byteOperand(operands)
		}
		for i := range operands {
			a.emit(&Cell{
				Address: pc,
				Value:   operands[i].Value,
				Text:    operands[i].display(),
				Label:   sl.Label,
				Line:    sl.Line,
			})
			pc++
		}
	}

	if pc != a.pc {
		panic("address mismatch between passes")
	}
	return nil
}

// A .byte directive always stores exactly one cell: its first operand, or
// zero if it has none.
func byteOperand(operands []Operand) []Operand {
	if len(operands) == 0 {
		return []Operand{{Text: "0", Resolved: true}}
	}
	return operands[:1]
}

// Append a cell to the listing and store its value in the machine code.
func (a *assembler) emit(c *Cell) {
	a.listing = append(a.listing, c)
	a.code[c.Address] = c.Byte()
	a.log("%03d  %s  %s", c.Address, bitString([]byte{c.Byte()}), c.Text)
}

// Build a source map from the assembled program.
func (a *assembler) sourceMap() *SourceMap {
	sm := &SourceMap{
		Size:  uint32(len(a.code)),
		CRC:   crc32.ChecksumIEEE(a.code),
		Files: a.files,
	}
	for _, sl := range a.program {
		sm.Lines = append(sm.Lines, MapLine{Address: sl.Address, Line: sl.Line})
	}
	for _, l := range a.labels.Labels() {
		sm.Labels = append(sm.Labels, Export{Label: l.Name, Value: l.Value, Address: !l.Defined})
	}
	return sm
}

// Append an error to the assembler's error state and to the listing.
func (a *assembler) addError(kind ErrorKind, line int, text, msg string) {
	a.addErrorValue(newError(kind, line, text, msg))
}

func (a *assembler) addErrorValue(err *Error) {
	a.errors = append(a.errors, err)
	a.listing = append(a.listing, err)
	if a.verbose {
		fmt.Fprintf(a.out, "%s: %s\n", err.Kind, err.Error())
	}
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-20s | %s\n", line.row, line.column+1, detail, line.full)
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
