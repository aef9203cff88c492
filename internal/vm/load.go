// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/Mr-Bossman/flip-jump/internal/fjm"

// LoadImage initializes memory from a decoded .fjm image: every segment's
// bits are written starting at its StartBit, least-significant-bit-first,
// matching internal/bitpack's convention. Bits outside any segment read as
// zero, so the image need only store the regions the assembler actually
// placed.
func LoadImage(mem *Memory, img *fjm.Image) {
	for _, seg := range img.Segments {
		mem.LoadSegment(seg.StartBit, seg.Data)
	}
}
