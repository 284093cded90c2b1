// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that wraps the Digirule 2
// assembler in an interactive shell, with 256 bytes of memory, a
// disassembler, and other useful tools.
//
// Within the host it is possible to assemble files or typed-in code and
// load the machine code into memory, dump and modify the contents of
// memory, disassemble the contents of memory, list source code by address,
// and evaluate label expressions.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/digiasm/digiasm/asm"
	"github.com/digiasm/digiasm/cpu"
	"github.com/digiasm/digiasm/disasm"
)

// Name given to code entered in interactive assembly mode.
const interactiveSource = "<interactive>"

// A Host represents a Digirule 2 memory image along with the tools used
// to build and inspect it.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *cpu.FlatMemory
	sourceMap   *asm.SourceMap
	labels      *asm.LabelTable
	sources     map[string][]string
	settings    *settings
	lastCmd     *cmd.Command
	lastArgs    []string
}

// New creates a new Digirule 2 host environment.
func New() *Host {
	return &Host{
		mem:      cpu.NewFlatMemory(),
		labels:   asm.NewLabelTable(),
		sources:  make(map[string][]string),
		settings: newSettings(),
	}
}

// Memory returns the host's memory image.
func (h *Host) Memory() cpu.Memory {
	return h.mem
}

// SetVerbose enables or disables verbose assembler output.
func (h *Host) SetVerbose(v bool) {
	h.settings.VerboseAssembly = v
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c *cmd.Command
		var args []string
		switch {
		case strings.TrimSpace(line) != "":
			var n cmd.Node
			n, args, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}

			switch n := n.(type) {
			case *cmd.Tree:
				// A subtree name alone lists the subtree's commands.
				n.DisplayHelp(h.output)
				h.flush()
				continue
			case *cmd.Command:
				c = n
			}

		case h.interactive && h.lastCmd != nil:
			// An empty line repeats the previous command.
			c, args = h.lastCmd, h.lastArgs
		}

		if c == nil {
			continue
		}
		h.lastCmd, h.lastArgs = c, args

		handler := c.Data.(func(*Host, *cmd.Command, []string) error)
		err = handler(h, c, args)
		if err != nil {
			break
		}
	}
}

// Break interrupts the host's prompt.
func (h *Host) Break() {
	if h.output == nil {
		return
	}
	h.println()
	h.prompt()
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdAssembleFile(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	options := h.assembleOptions()
	if len(args) >= 2 {
		verbose, err := stringToBool(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		if verbose {
			options |= asm.Verbose
		}
	}

	err := asm.AssembleFile(filename, options, h.output)
	h.flush()
	switch {
	case errors.Is(err, asm.ErrDiagnostics):
		h.printf("Failed to assemble '%s'.\n", filepath.Base(filename))
		return nil
	case err != nil:
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	// Assembly succeeded, so delete any cached copy of the source.
	delete(h.sources, filename)

	ext := filepath.Ext(filename)
	h.load(filename[:len(filename)-len(ext)] + ".bin")
	return nil
}

func (h *Host) cmdAssembleInteractive(c *cmd.Command, args []string) error {
	h.println("Enter assembly language instructions.")
	h.println("Type END on a line by itself to assemble the code.")

	var lines []string
	for {
		if h.interactive {
			h.printf("asm> ")
		}
		line, err := h.getLine()
		if err != nil || strings.EqualFold(strings.TrimSpace(line), "end") {
			break
		}
		lines = append(lines, line)
	}

	r := strings.NewReader(strings.Join(lines, "\n"))
	assembly, sourceMap, err := asm.Assemble(r, interactiveSource, h.output, h.assembleOptions())
	if err != nil {
		h.printf("Failed to assemble: %v\n", err)
		return nil
	}

	err = assembly.WriteListing(h.output)
	if err != nil {
		h.printf("Failed to write listing: %v\n", err)
		return nil
	}

	if assembly.HasErrors() {
		h.println("Failed to assemble code.")
		return nil
	}

	err = h.install(assembly.Code, sourceMap)
	if err != nil {
		h.printf("Failed to assemble code: %v.\n", err)
		return nil
	}
	h.sources[interactiveSource] = lines
	h.printf("Assembled %d bytes at address 0.\n", len(assembly.Code))
	return nil
}

func (h *Host) cmdDisassemble(c *cmd.Command, args []string) error {
	addr := h.settings.NextDisasmAddr
	if len(args) > 0 {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(args) > 1 {
		n, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = n
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastArgs = []string{strconv.Itoa(int(addr)), strconv.Itoa(lines)}
	return nil
}

func (h *Host) cmdEvaluate(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	v, err := h.parseExpr(strings.Join(args, ""))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if v >= 0 && v < cpu.MemorySize {
		h.printf("%d (%08b)\n", v, v)
	} else {
		h.printf("%d\n", v)
	}
	return nil
}

func (h *Host) cmdHelp(c *cmd.Command, args []string) error {
	err := cmds.GetHelp(h.output, args)
	h.flush()
	if err != nil {
		h.printf("%v.\n", err)
	}
	return nil
}

func (h *Host) cmdLabels(c *cmd.Command, args []string) error {
	if h.labels.Len() == 0 {
		h.println("No labels.")
		return nil
	}

	for _, l := range h.labels.Labels() {
		kind := "address"
		if l.Defined {
			kind = "constant"
		}
		h.printf("    %-16s %4d  %s\n", l.Name, l.Value, kind)
	}
	return nil
}

func (h *Host) cmdList(c *cmd.Command, args []string) error {
	if h.sourceMap == nil || len(h.sourceMap.Lines) == 0 {
		h.println("No source map loaded.")
		return nil
	}

	addr := h.settings.NextSourceAddr
	if len(args) > 0 {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	count := h.settings.SourceLines
	if len(args) > 1 {
		n, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = n
	}

	// Find the line whose code contains the address.
	filename, line := "", -1
	for a := int(addr); a >= 0 && line < 0; a-- {
		filename, line = h.sourceMap.Search(a)
	}
	if line < 0 {
		h.printf("No source code found at address %d.\n", addr)
		return nil
	}

	src, err := h.sourceLines(filename)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	lineAddr := make(map[int]int)
	for _, ml := range h.sourceMap.Lines {
		lineAddr[ml.Line] = ml.Address
	}

	end := min(line+count, len(src)+1)
	for i := line; i < end; i++ {
		if a, ok := lineAddr[i]; ok {
			h.printf("%3d  %4d  %s\n", a, i, src[i-1])
		} else {
			h.printf("     %4d  %s\n", i, src[i-1])
		}
	}

	next := addr
	for _, ml := range h.sourceMap.Lines {
		if ml.Line >= end {
			next = byte(ml.Address)
			break
		}
	}
	h.settings.NextSourceAddr = next
	h.lastArgs = []string{strconv.Itoa(int(next)), strconv.Itoa(count)}
	return nil
}

func (h *Host) cmdLoad(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	h.load(filename)
	return nil
}

func (h *Host) cmdMemoryDump(c *cmd.Command, args []string) error {
	addr := h.settings.NextMemDumpAddr
	if len(args) > 0 {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := h.settings.MemDumpBytes
	if len(args) > 1 {
		n, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		bytes = n
	}

	h.dumpMemory(addr, bytes)

	next := byte(int(addr) + bytes)
	h.settings.NextMemDumpAddr = next
	h.lastArgs = []string{strconv.Itoa(int(next)), strconv.Itoa(bytes)}
	return nil
}

func (h *Host) cmdMemorySet(c *cmd.Command, args []string) error {
	if len(args) < 2 {
		h.displayHelpText(c)
		return nil
	}

	addr, err := h.parseAddr(args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := make([]byte, 0, len(args)-1)
	for _, s := range args[1:] {
		v, err := h.parseExpr(s)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		if v < -128 || v > 255 {
			h.printf("Value %d out of range.\n", v)
			return nil
		}
		b = append(b, byte(v))
	}

	err = h.mem.StoreBytes(addr, b)
	if err != nil {
		h.printf("Failed to set memory: %v\n", err)
		return nil
	}

	h.printf("Stored %d byte(s) at address %d.\n", len(b), addr)
	return nil
}

func (h *Host) cmdQuit(c *cmd.Command, args []string) error {
	return errors.New("Exiting program")
}

func (h *Host) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c)

	default:
		key, value := args[0], strings.Join(args[1:], " ")

		var err error
		var name string
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				name, err = h.settings.Set(key, v)
			}
		case reflect.Uint8:
			var v byte
			v, err = h.parseAddr(value)
			if err == nil {
				name, err = h.settings.Set(key, v)
			}
		default:
			var v int
			v, err = h.parseExpr(value)
			if err == nil {
				name, err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.printf("Setting '%s' updated.\n", name)
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) assembleOptions() asm.Option {
	var options asm.Option
	if h.settings.VerboseAssembly {
		options |= asm.Verbose
	}
	return options
}

// Load a binary file into memory at address 0, along with its source map
// if one exists.
func (h *Host) load(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return
	}
	defer file.Close()

	a := &asm.Assembly{}
	_, err = a.ReadFrom(file)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return
	}

	var sourceMap *asm.SourceMap
	ext := filepath.Ext(filename)
	mapFilename := filename[:len(filename)-len(ext)] + ".map"
	if mapFile, err := os.Open(mapFilename); err == nil {
		defer mapFile.Close()
		sourceMap = &asm.SourceMap{}
		_, err = sourceMap.ReadFrom(mapFile)
		if err != nil {
			h.printf("Failed to read '%s': %v\n", filepath.Base(mapFilename), err)
			sourceMap = nil
		}
	}

	err = h.install(a.Code, sourceMap)
	if err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return
	}
	h.printf("Loaded '%s' (%d bytes).\n", filepath.Base(filename), len(a.Code))
	if sourceMap != nil {
		h.printf("Loaded '%s' source map.\n", filepath.Base(mapFilename))
	}
}

// Replace the contents of memory with a program and its source map.
func (h *Host) install(code []byte, sourceMap *asm.SourceMap) error {
	if len(code) > cpu.MemorySize {
		return asm.ErrCodeSize
	}

	h.mem.Clear()
	if err := h.mem.StoreBytes(0, code); err != nil {
		return err
	}

	h.sourceMap = sourceMap
	h.labels = asm.NewLabelTable()
	if sourceMap != nil {
		for _, e := range sourceMap.Labels {
			l, _ := h.labels.Add(e.Label, e.Value, 0)
			if !e.Address {
				h.labels.Define(l, e.Value)
			}
		}
	}

	h.settings.NextDisasmAddr = 0
	h.settings.NextMemDumpAddr = 0
	h.settings.NextSourceAddr = 0
	return nil
}

// Return the lines of a source file, reading it from disk the first time
// it is requested.
func (h *Host) sourceLines(filename string) ([]string, error) {
	if lines, ok := h.sources[filename]; ok {
		return lines, nil
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	h.sources[filename] = lines
	return lines, nil
}

// Parse a number or a label expression. Numbers may be decimal, or
// hexadecimal and binary with a 0x or 0b prefix.
func (h *Host) parseExpr(s string) (int, error) {
	if v, ok := parseNumber(s); ok {
		return v, nil
	}

	v, err := asm.Evaluate(s, h.labels)
	if err != nil {
		return 0, fmt.Errorf("%v: '%s'", err, s)
	}
	return v, nil
}

func (h *Host) parseAddr(s string) (byte, error) {
	v, err := h.parseExpr(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= cpu.MemorySize {
		return 0, fmt.Errorf("address %d out of range", v)
	}
	return byte(v), nil
}

func parseNumber(s string) (int, bool) {
	base := 10
	switch lower := strings.ToLower(s); {
	case strings.HasPrefix(lower, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(lower, "0b"):
		base, s = 2, s[2:]
	}

	v, err := strconv.ParseInt(s, base, 0)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func (h *Host) disassemble(addr byte) (str string, next byte) {
	var line string
	line, next = disasm.Disassemble(h.mem, addr)

	b := make([]byte, next-addr)
	h.mem.LoadBytes(addr, b)

	var label string
	if name, ok := h.labels.AddressIndex()[int(addr)]; ok {
		label = name + ":"
	}

	str = fmt.Sprintf("%3d-  %-12s %-8s   %s", addr, label, codeString(b), line)
	return strings.TrimRight(str, " "), next
}

func (h *Host) dumpMemory(addr0 byte, bytes int) {
	if bytes <= 0 {
		return
	}

	addr1 := min(int(addr0)+bytes, cpu.MemorySize) - 1

	// Rows are aligned to 8-byte boundaries.
	buf := make([]byte, 38)
	for r := int(addr0) &^ 7; r <= addr1; r += 8 {
		for i := range buf {
			buf[i] = ' '
		}
		copy(buf[0:3], fmt.Sprintf("%3d", r))
		buf[3] = '-'

		for i := 0; i < 8; i++ {
			a, c1, c2 := r+i, 5+i*3, 30+i
			if a >= int(addr0) && a <= addr1 {
				m := h.mem.LoadByte(byte(a))
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) displayHelpText(c *cmd.Command) {
	if c.Usage == "" {
		h.println("<no help text>")
		return
	}
	c.DisplayUsage(h.output)
	h.flush()
}
