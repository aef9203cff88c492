// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"math/big"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
	"github.com/Mr-Bossman/flip-jump/internal/diag"
)

// ResolvedOp is a placed, fully-evaluated `a;b` operation.
type ResolvedOp struct {
	PC    uint64
	A, B  *big.Int
	Pos   ast.Position
	Stack *diag.Frame
}

// ResolvedData is a placed raw data blob (from a string literal or a nested
// #assemble).
type ResolvedData struct {
	PC    uint64
	Data  []byte
	Pos   ast.Position
	Stack *diag.Frame
}

// Layout is the output of the assembler's second pass: a fully placed and
// resolved program, ready for internal/fjm to encode into an image.
type Layout struct {
	Width   int
	Ops     []ResolvedOp
	Data    []ResolvedData
	BitSize uint64

	// Labels maps every (hygiene-qualified) label name to its resolved bit
	// address, for disassembly and debug-info sidecars.
	Labels map[string]uint64
}

// layout runs the two-pass assembler over an expanded program: first it
// assigns a bit address (PC) to every element (placement), which is a
// single linear pass because a FlipJump operation's encoded size never
// depends on its argument values; then it evaluates every operation's
// arguments against the now-complete label table (resolution).
func (c *Compiler) layout(prog *program, width int) (*Layout, []error) {
	// Pass 1: placement. Data elements (string literals) pad out to the
	// next width-aligned bit offset afterward, so operations always start
	// w-bit aligned (spec.md §6: addresses are "always w-bit aligned to
	// the operation-pair layout").
	var pc uint64
	for _, el := range prog.elements {
		el.pc = pc
		pc += el.bitLen(width)
		if el.op == nil {
			pc = ceilToMultiple(pc, uint64(width))
		}
	}
	total := pc

	addr := func(name string) (uint64, bool) {
		idx, ok := prog.resolve(name)
		if !ok {
			return 0, false
		}
		if idx == len(prog.elements) {
			return total, true
		}
		return prog.elements[idx].pc, true
	}

	// Pass 2: resolution and emission.
	lay := &Layout{Width: width, BitSize: total, Labels: make(map[string]uint64)}
	for name := range prog.labels {
		if a, ok := addr(name); ok {
			lay.Labels[name] = a
		}
	}
	for name := range prog.aliases {
		if a, ok := addr(name); ok {
			lay.Labels[name] = a
		}
	}
	var errs []error
	for i, el := range prog.elements {
		if el.op == nil {
			lay.Data = append(lay.Data, ResolvedData{PC: el.pc, Data: el.data, Pos: el.pos, Stack: el.stack})
			continue
		}
		a, err := evalExpr(el.op.A, addr, width)
		if err != nil {
			errs = append(errs, errAt(el.pos, err))
			continue
		}
		var b *big.Int
		if el.op.B == nil {
			b = nextElementPC(prog.elements, i, total)
		} else {
			bv, err := evalExpr(el.op.B, addr, width)
			if err != nil {
				errs = append(errs, errAt(el.pos, err))
				continue
			}
			b = bv.Int()
		}

		// spec.md §4.4's numeric semantics: "the final value is taken
		// modulo 2^w and written" — for both the flip target and the jump
		// target, with no error for a pre-reduction value outside the
		// width (negated/offset addresses routinely wrap this way on
		// purpose; internal/fjint.NarrowToWidth's own wraparound test covers
		// the same expectation at the value layer). Both operands are
		// narrowed identically, consistently, rather than range-checking
		// one pre-narrowing and the other post-narrowing.
		an := a.NarrowToWidth(width)
		bn := new(big.Int).Mod(b, new(big.Int).Lsh(big.NewInt(1), uint(width)))
		lay.Ops = append(lay.Ops, ResolvedOp{PC: el.pc, A: an, B: bn, Pos: el.pos, Stack: el.stack})
	}
	return lay, errs
}

// DebugInfo builds a yaml-serializable sidecar mapping every operation's
// address back to its source position and macro-expansion context.
func (lay *Layout) DebugInfo() *diag.Info {
	info := diag.NewInfo(lay.Width, lay.Labels)
	for _, op := range lay.Ops {
		info.AddOp(op.PC, op.Pos, op.Stack)
	}
	info.SortByPC()
	return info
}

func nextElementPC(elements []*element, i int, total uint64) *big.Int {
	if i+1 < len(elements) {
		return new(big.Int).SetUint64(elements[i+1].pc)
	}
	return new(big.Int).SetUint64(total)
}

func ceilToMultiple(v, m uint64) uint64 {
	if m == 0 || v%m == 0 {
		return v
	}
	return v + (m - v%m)
}

