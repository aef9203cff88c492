// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package fjm implements the .fjm binary image container: a versioned,
// optionally zlib-compressed, CRC-32-protected encoding of a FlipJump
// program's initial memory segments.
package fjm

import (
	"sort"

	"github.com/Mr-Bossman/flip-jump/internal/asm"
	"github.com/Mr-Bossman/flip-jump/internal/bitpack"
)

const (
	magic          = "FJM\x00"
	formatVersion  = 3
	headerSize     = 24
	segTableRowLen = 32

	// FlagCompressed marks every segment's stored payload as zlib-deflated.
	FlagCompressed uint16 = 1 << 0
)

// Segment is a contiguous initialized region of the image.
type Segment struct {
	StartBit   uint64
	LengthBits uint64
	Data       []byte // len(Data) == ceil(LengthBits/8), uncompressed
}

// Image is the in-memory representation of a .fjm container.
type Image struct {
	Width    int
	Flags    uint16
	Segments []Segment
}

// FromLayout partitions an assembled Layout into segments, splitting at any
// gap between one placed element's end and the next one's start (spec.md
// §6: "a new segment begins when emission jumps ahead"). All-zero segments
// are elided, since the image's unspecified regions already default to
// zero on load.
func FromLayout(lay *asm.Layout) *Image {
	type piece struct {
		pc, end uint64
		bits    func(w *bitpack.Writer, base uint64)
	}
	var pieces []piece
	for _, op := range lay.Ops {
		op := op
		pieces = append(pieces, piece{
			pc: op.PC, end: op.PC + uint64(2*lay.Width),
			bits: func(w *bitpack.Writer, base uint64) {
				w.PutUint(op.PC-base, op.A, lay.Width)
				w.PutUint(op.PC-base+uint64(lay.Width), op.B, lay.Width)
			},
		})
	}
	for _, d := range lay.Data {
		d := d
		pieces = append(pieces, piece{
			pc: d.PC, end: d.PC + uint64(len(d.Data))*8,
			bits: func(w *bitpack.Writer, base uint64) { w.PutBytes(d.PC-base, d.Data) },
		})
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].pc < pieces[j].pc })

	img := &Image{Width: lay.Width}
	var segStart, segEnd uint64
	var segPieces []piece
	flush := func() {
		if len(segPieces) == 0 {
			return
		}
		w := bitpack.NewWriter(segEnd - segStart)
		for _, p := range segPieces {
			p.bits(w, segStart)
		}
		data := w.Bytes()
		if isAllZero(data) {
			segPieces = nil
			return
		}
		img.Segments = append(img.Segments, Segment{StartBit: segStart, LengthBits: segEnd - segStart, Data: data})
		segPieces = nil
	}
	for _, p := range pieces {
		if len(segPieces) > 0 && p.pc != segEnd {
			flush()
		}
		if len(segPieces) == 0 {
			segStart = p.pc
		}
		segEnd = p.end
		segPieces = append(segPieces, p)
	}
	flush()
	return img
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
