// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"github.com/Mr-Bossman/flip-jump/internal/ast"
	"github.com/Mr-Bossman/flip-jump/internal/diag"
)

// element is one placed unit of the flattened program: either a fixed-size
// operation or a raw data blob. Unlike EVM bytecode, a FlipJump operation's
// encoded size never depends on the values its arguments evaluate to (no
// PUSH-size ambiguity), so placement is a single pass: each element's bit
// length is known the moment expansion produces it.
type element struct {
	pos ast.Position

	// op, if non-nil, is an operation element: A/B are the (already
	// macro-substituted) flip/jump argument expressions. expand() always
	// fills in A (an omitted flip target becomes PAD or 0); B may be nil
	// to mean "fall through", per spec.md §3.
	op *opElement

	// data, if op is nil, is a raw byte blob (from a string literal).
	data []byte

	// pc is filled in by the placement pass: the bit offset of this
	// element's first bit.
	pc uint64

	// stack is the macro-expansion call stack active when this element
	// was produced, or nil at top level. Carried through to Layout for
	// diagnostics and disassembly (see internal/diag).
	stack *diag.Frame
}

type opElement struct {
	A, B ast.Expr
}

func (e *element) bitLen(width int) uint64 {
	if e.op != nil {
		return uint64(2 * width)
	}
	return uint64(len(e.data)) * 8
}

// program is the fully expanded, not-yet-placed intermediate form that
// expand() produces and layout() consumes.
type program struct {
	elements []*element

	// labels maps a (hygiene-qualified) label name to the element it
	// immediately precedes. A label at end-of-program points one past the
	// last element (index == len(elements)).
	labels map[string]int

	// aliases maps an output-argument caller name to the canonical
	// (hygiene-qualified) label name it stands for (see expand.go).
	aliases map[string]string
}

func newProgram() *program {
	return &program{labels: make(map[string]int), aliases: make(map[string]string)}
}

func (p *program) addLabel(name string) {
	p.labels[name] = len(p.elements)
}

func (p *program) addOp(pos ast.Position, a, b ast.Expr, stack *diag.Frame) {
	p.elements = append(p.elements, &element{pos: pos, op: &opElement{A: a, B: b}, stack: stack})
}

func (p *program) addData(pos ast.Position, data []byte, stack *diag.Frame) {
	if len(data) == 0 {
		return
	}
	p.elements = append(p.elements, &element{pos: pos, data: data, stack: stack})
}

// resolve follows alias chains and returns the element index a label name
// refers to.
func (p *program) resolve(name string) (int, bool) {
	seen := map[string]bool{}
	for {
		if seen[name] {
			return 0, false
		}
		seen[name] = true
		if idx, ok := p.labels[name]; ok {
			return idx, true
		}
		next, ok := p.aliases[name]
		if !ok {
			return 0, false
		}
		name = next
	}
}
