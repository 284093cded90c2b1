// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu describes the Digirule 2 processor as seen by the assembler:
// its instruction set, including the assembler's storage directives, and
// its 256-cell memory.
package cpu
