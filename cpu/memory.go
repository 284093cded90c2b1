// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "errors"

// Errors
var (
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// MemorySize is the number of 8-bit cells addressable by the Digirule 2.
const MemorySize = 256

// Special function registers at the top of memory.
const (
	StatusRegister  byte = 252 // status flags
	ButtonRegister  byte = 253 // data buttons
	AddressLEDs     byte = 254 // address LED display
	DataLEDRegister byte = 255 // data LED display
)

// The Memory interface presents the 8-bit address space through which all
// memory accesses occur.
type Memory interface {
	// LoadByte loads a single byte from the address and returns it.
	LoadByte(addr byte) byte

	// LoadBytes loads multiple bytes from the address and stores them into
	// the buffer 'b'. Addresses wrap at the end of memory.
	LoadBytes(addr byte, b []byte)

	// StoreByte stores a byte to the requested address.
	StoreByte(addr byte, v byte)

	// StoreBytes stores multiple bytes to the requested address.
	StoreBytes(addr byte, b []byte) error
}

// FlatMemory represents the entire 8-bit address space as a singular
// 256-byte buffer.
type FlatMemory struct {
	b [MemorySize]byte
}

// NewFlatMemory creates a new 8-bit memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemory) LoadByte(addr byte) byte {
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address and returns them.
func (m *FlatMemory) LoadBytes(addr byte, b []byte) {
	for i := range b {
		b[i] = m.b[addr+byte(i)]
	}
}

// StoreByte stores a byte at the requested address.
func (m *FlatMemory) StoreByte(addr byte, v byte) {
	m.b[addr] = v
}

// StoreBytes stores multiple bytes to the requested address. Nothing is
// stored if the bytes would run past the end of memory.
func (m *FlatMemory) StoreBytes(addr byte, b []byte) error {
	if int(addr)+len(b) > len(m.b) {
		return ErrMemoryOutOfBounds
	}
	copy(m.b[addr:], b)
	return nil
}

// Clear zeroes every memory cell.
func (m *FlatMemory) Clear() {
	m.b = [MemorySize]byte{}
}
