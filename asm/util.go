// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Return the binary representation of a byte slice, one space-separated
// group of 8 bits per byte.
func bitString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, 0, len(b)*9-1)
	for i, v := range b {
		if i > 0 {
			s = append(s, ' ')
		}
		for bit := 7; bit >= 0; bit-- {
			s = append(s, '0'+(v>>uint(bit))&1)
		}
	}
	return string(s)
}
