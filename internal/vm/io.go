// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "io"

// IO implements the memory-mapped I/O convention: flipping IO+0 emits a 0
// output bit, flipping IO+1 emits a 1 bit — the emitted value is fixed by
// which address was the flip target, not by the bit's resulting value in
// memory (bits assemble LSB-first into bytes). Input gets its own,
// separate pair IO+2/IO+3: flipping either is intercepted to be
// overwritten with the next input bit, rather than merely toggled
// (spec.md §3/§4.7/§6 "I/O convention").
type IO struct {
	Base uint64 // address of IO+0; IO+1..IO+3 follow at Base+1..Base+3

	out      io.Writer
	outByte  byte
	outCount int

	in          io.Reader
	inByte      byte
	inBits      int
	inExhausted bool
}

// NewIO creates an I/O handler bound to base and the given sink/source.
// Either may be nil (output is discarded, input always reads as zero).
func NewIO(base uint64, out io.Writer, in io.Reader) *IO {
	return &IO{Base: base, out: out, in: in}
}

// OutputZeroAddr and OutputOneAddr are the two reserved output addresses;
// flipping one emits that fixed bit value, regardless of the memory bit's
// prior state.
func (io_ *IO) OutputZeroAddr() uint64 { return io_.Base }
func (io_ *IO) OutputOneAddr() uint64  { return io_.Base + 1 }

// InputZeroAddr and InputOneAddr are the separate, symmetric input pair
// (spec.md §6): flipping either one is overwritten with the next input bit.
func (io_ *IO) InputZeroAddr() uint64 { return io_.Base + 2 }
func (io_ *IO) InputOneAddr() uint64  { return io_.Base + 3 }

// Output records bit as the next output bit, flushing a byte to the sink
// every 8 bits.
func (io_ *IO) Output(bit byte) error {
	if bit != 0 {
		io_.outByte |= 1 << uint(io_.outCount)
	}
	io_.outCount++
	if io_.outCount < 8 {
		return nil
	}
	b := io_.outByte
	io_.outByte, io_.outCount = 0, 0
	if io_.out == nil {
		return nil
	}
	_, err := io_.out.Write([]byte{b})
	return err
}

// Input returns the next input bit, or 0 once the source is exhausted
// (spec.md: EOF reads as zero forever after).
func (io_ *IO) Input() byte {
	if io_.inBits == 0 {
		if io_.inExhausted || io_.in == nil {
			return 0
		}
		var buf [1]byte
		n, err := io_.in.Read(buf[:])
		if n == 0 || err != nil {
			io_.inExhausted = true
			return 0
		}
		io_.inByte, io_.inBits = buf[0], 8
	}
	bit := io_.inByte & 1
	io_.inByte >>= 1
	io_.inBits--
	return bit
}
