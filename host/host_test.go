// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `start:
    copylr 0 label+2
    copylr 4 statusReg
label:
    copylr 0 255
statusReg: .def 252
`

func run(h *Host, commands ...string) string {
	var out strings.Builder
	h.RunCommands(strings.NewReader(strings.Join(commands, "\n")), &out, false)
	return out.String()
}

func writeProgram(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0600))
	return path
}

func memory(h *Host, addr byte, n int) []byte {
	b := make([]byte, n)
	h.Memory().LoadBytes(addr, b)
	return b
}

func TestAssembleInteractive(t *testing.T) {
	h := New()
	out := run(h, "assemble interactive", program, "end")

	assert.Contains(t, out, "[label:] 6")
	assert.Contains(t, out, "*** Label table ***")
	assert.Contains(t, out, "Assembled 9 bytes at address 0.")
	assert.Equal(t, []byte{3, 0, 8, 3, 4, 252, 3, 0, 255}, memory(h, 0, 9))
}

func TestAssembleInteractiveErrors(t *testing.T) {
	h := New()
	out := run(h,
		"assemble interactive",
		"jump nowhere",
		"END",
		"memory dump 0 1")

	assert.Contains(t, out, "ERROR(line 1) <jump nowhere>: unknown label")
	assert.Contains(t, out, "Failed to assemble code.")
	assert.Contains(t, out, "  0- 00")
	assert.Equal(t, []byte{0}, memory(h, 0, 1))
}

func TestEvaluate(t *testing.T) {
	h := New()
	out := run(h,
		"assemble interactive", program, "end",
		"evaluate label+2",
		"evaluate statusReg",
		"evaluate 0x1F",
		"evaluate 0b101",
		"evaluate start-1",
		"evaluate missing")

	assert.Contains(t, out, "8 (00001000)\n")
	assert.Contains(t, out, "252 (11111100)\n")
	assert.Contains(t, out, "31 (00011111)\n")
	assert.Contains(t, out, "5 (00000101)\n")
	assert.Contains(t, out, "-1\n")
	assert.Contains(t, out, "unknown label: 'missing'")
}

func TestLabels(t *testing.T) {
	h := New()
	out := run(h, "labels")
	assert.Contains(t, out, "No labels.")

	out = run(h, "assemble interactive", program, "end", "labels")
	assert.Contains(t, out, fmt.Sprintf("    %-16s %4d  %s\n", "start", 0, "address"))
	assert.Contains(t, out, fmt.Sprintf("    %-16s %4d  %s\n", "label", 6, "address"))
	assert.Contains(t, out, fmt.Sprintf("    %-16s %4d  %s\n", "statusReg", 252, "constant"))
}

func TestMemoryDump(t *testing.T) {
	h := New()
	out := run(h, "assemble interactive", program, "end", "memory dump 0 9")

	assert.Contains(t, out, "  0- 03 00 08 03 04 FC 03 00  ........\n")
	assert.Contains(t, out, "  8- FF")
	assert.Equal(t, byte(9), h.settings.NextMemDumpAddr)
}

func TestMemorySet(t *testing.T) {
	h := New()
	out := run(h,
		"memory set 10 1 0b11 0x1F",
		"memory set 255 1 2",
		"memory set 0 300")

	assert.Contains(t, out, "Stored 3 byte(s) at address 10.")
	assert.Equal(t, []byte{1, 3, 31}, memory(h, 10, 3))
	assert.Contains(t, out, "Failed to set memory: memory access out of bounds")
	assert.Contains(t, out, "Value 300 out of range.")
	assert.Equal(t, byte(0), h.Memory().LoadByte(255))
}

func TestDisassemble(t *testing.T) {
	h := New()
	out := run(h, "assemble interactive", program, "end", "disassemble 0 3")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	dis := lines[len(lines)-3:]

	assert.Contains(t, dis[0], "start:")
	assert.Contains(t, dis[0], "03 00 08")
	assert.True(t, strings.HasSuffix(dis[0], "copylr 0 8"))
	assert.True(t, strings.HasSuffix(dis[1], "copylr 4 252 ; status"))
	assert.Contains(t, dis[2], "label:")
	assert.True(t, strings.HasSuffix(dis[2], "copylr 0 255 ; dataLEDs"))
	assert.Equal(t, byte(9), h.settings.NextDisasmAddr)
}

func TestAssembleFileAndLoad(t *testing.T) {
	path := writeProgram(t, "prog.asm", program)

	h := New()
	out := run(h, "assemble file "+path, "list 3 2", "list 4 1")
	assert.Contains(t, out, "Assembled 'prog.asm' to produce 'prog.bin' and 'prog.map'.")
	assert.Contains(t, out, "Loaded 'prog.bin' (9 bytes).")
	assert.Contains(t, out, "Loaded 'prog.map' source map.")
	assert.Contains(t, out, "  3     3      copylr 4 statusReg\n")
	assert.Contains(t, out, "     4  label:\n")
	assert.Equal(t, byte(6), h.settings.NextSourceAddr)

	// A new host picks up the binary and its labels from disk.
	h2 := New()
	bin := strings.TrimSuffix(path, ".asm")
	out = run(h2, "load "+bin, "evaluate statusReg", "evaluate label")
	assert.Contains(t, out, "Loaded 'prog.bin' (9 bytes).")
	assert.Contains(t, out, "252 (11111100)")
	assert.Contains(t, out, "6 (00000110)")
	assert.Equal(t, memory(h, 0, 9), memory(h2, 0, 9))
}

func TestAssembleFileErrors(t *testing.T) {
	path := writeProgram(t, "bad.asm", "a: nop\na: halt\n")

	h := New()
	out := run(h, "assemble file "+path)
	assert.Contains(t, out, "ERROR(line 2) <a: halt>: Multiple label definition.")
	assert.Contains(t, out, "Failed to assemble 'bad.asm'.")

	_, err := os.Stat(strings.TrimSuffix(path, ".asm") + ".bin")
	assert.True(t, os.IsNotExist(err))

	out = run(h, "load "+filepath.Join(t.TempDir(), "missing.bin"))
	assert.Contains(t, out, "Failed to open 'missing.bin'")
}

func TestSettings(t *testing.T) {
	h := New()
	out := run(h,
		"set memdump 16",
		"set verbose true",
		"set nextdisasm 200",
		"set next 5",
		"set bogus 1",
		"set")

	assert.Contains(t, out, "Setting 'MemDumpBytes' updated.")
	assert.Contains(t, out, "Setting 'VerboseAssembly' updated.")
	assert.Contains(t, out, "Setting 'NextDisasmAddr' updated.")
	assert.Contains(t, out, "Setting 'bogus' not found")
	assert.Contains(t, out, "Variables:")

	assert.Equal(t, 16, h.settings.MemDumpBytes)
	assert.True(t, h.settings.VerboseAssembly)
	assert.Equal(t, byte(200), h.settings.NextDisasmAddr)
	assert.Equal(t, byte(0), h.settings.NextSourceAddr)
	assert.Equal(t, byte(0), h.settings.NextMemDumpAddr)
}

func TestHelpAndErrors(t *testing.T) {
	h := New()
	out := run(h, "help", "help memory dump", "help bogus", "bogus", "mem", "assemble")

	assert.Contains(t, out, "digiasm commands:\n")
	assert.Contains(t, out, "Usage: memory dump [<address>] [<bytes>]\n")
	assert.Contains(t, out, "Shortcut: m\n")
	assert.Contains(t, out, "memory commands:\n")
	assert.Contains(t, out, "assemble commands:\n")
	assert.Contains(t, out, "Start interactive assembly mode\n")
	assert.Equal(t, 2, strings.Count(out, "Command not found."))
}

func TestMissingArgumentsShowUsage(t *testing.T) {
	h := New()
	out := run(h, "load", "evaluate")

	assert.Contains(t, out, "Usage: load <filename>\n")
	assert.Contains(t, out, "Usage: evaluate <expression>\n")
}

func TestInstallRejectsOversizedCode(t *testing.T) {
	h := New()
	require.NoError(t, h.mem.StoreBytes(0, []byte{1, 2, 3}))

	err := h.install(make([]byte, 257), nil)
	assert.Error(t, err)
	assert.Equal(t, []byte{1, 2, 3}, memory(h, 0, 3))

	require.NoError(t, h.install(make([]byte, 256), nil))
	assert.Equal(t, []byte{0, 0, 0}, memory(h, 0, 3))
}

func TestQuit(t *testing.T) {
	h := New()
	out := run(h, "evaluate 1", "quit", "evaluate 2")

	assert.Contains(t, out, "1 (00000001)")
	assert.NotContains(t, out, "2 (00000010)")
}
