// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"testing"

	"github.com/Mr-Bossman/flip-jump/internal/fjm"
)

func TestLoadImageWritesEverySegment(t *testing.T) {
	img := &fjm.Image{
		Width: 8,
		Segments: []fjm.Segment{
			{StartBit: 0, LengthBits: 8, Data: []byte{0xFF}},
			{StartBit: 64, LengthBits: 8, Data: []byte{0x0F}},
		},
	}
	mem := NewMemory()
	LoadImage(mem, img)

	if got := mem.GetUint(0, 8).Uint64(); got != 0xFF {
		t.Errorf("segment 0 = %#x, want 0xff", got)
	}
	if got := mem.GetUint(64, 8).Uint64(); got != 0x0F {
		t.Errorf("segment 1 = %#x, want 0x0f", got)
	}
	if got := mem.GetBit(32); got != 0 {
		t.Errorf("gap between segments = %d, want 0", got)
	}
}
