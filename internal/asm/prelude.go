// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

const (
	padLabelName = "PAD"
	ioLabelName  = "IO"
)

// preludeFile is the name shown in diagnostics for the implicit startup
// prelude's synthesized document.
const preludeFile = "<startup>"

// preludeSource reserves the first two operations of the program: PAD, a
// cell with no semantic meaning that `;label` or `label;` shorthand flips
// when the caller omits the flip-target, and IO, the memory-mapped I/O
// cell. IO ends up bound to address 2*width (one operation past PAD) and
// reserves four consecutive bits: IO+0/IO+1 are the output pair (flipping
// IO+0 emits a 0 bit, IO+1 emits a 1 bit — the emitted value is fixed by
// which address was flipped, not by the resulting memory bit), and
// IO+2/IO+3 are the separate, symmetric input pair (flipping either is
// overwritten with the next input bit rather than merely toggled;
// spec.md §3/§4.7/§6 "I/O convention").
//
// A file can opt out with `pragma nostartup`, in which case an omitted
// flip target flips address 0 instead of PAD, and a reference to @IO (or
// @PAD) that the program does not define itself fails with ecUndefinedLabel.
const preludeSource = `PAD:
;
IO:
;
`
