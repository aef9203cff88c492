// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package diag holds post-compilation debug information: a source-position
// and macro-call-stack sidecar, keyed by element address, used to annotate
// error messages, traces and disassembly with "where did this come from".
package diag

import (
	"fmt"
	"strings"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
)

// Frame is one level of a macro-expansion call stack: the macro name and the
// position of the call site that invoked it. Frames are tail-shared: a
// child invocation's Frame points at its caller's Frame, so recording the
// stack at every expanded element costs one allocation, not one per level.
type Frame struct {
	Name   string
	Call   ast.Position
	Parent *Frame
}

// Push returns a new frame for a call to name at pos, nested under f (which
// may be nil for a top-level call).
func (f *Frame) Push(name string, pos ast.Position) *Frame {
	return &Frame{Name: name, Call: pos, Parent: f}
}

// Depth reports how many frames are on the stack.
func (f *Frame) Depth() int {
	n := 0
	for p := f; p != nil; p = p.Parent {
		n++
	}
	return n
}

// Names returns the macro names on the stack, outermost first.
func (f *Frame) Names() []string {
	var rev []string
	for p := f; p != nil; p = p.Parent {
		rev = append(rev, p.Name)
	}
	names := make([]string, len(rev))
	for i, n := range rev {
		names[len(rev)-1-i] = n
	}
	return names
}

// String renders the stack as "outer > middle > inner", matching how geas
// reports macro expansion context in compile errors.
func (f *Frame) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Names(), " > ")
}

// CallSites returns the call-site positions, outermost first, suitable for
// a "called from" trail under a diagnostic.
func (f *Frame) CallSites() []ast.Position {
	var rev []ast.Position
	for p := f; p != nil; p = p.Parent {
		rev = append(rev, p.Call)
	}
	sites := make([]ast.Position, len(rev))
	for i, s := range rev {
		sites[len(rev)-1-i] = s
	}
	return sites
}

// Trail formats the call-site chain as a multi-line "expanded from" note.
func (f *Frame) Trail() string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	names := f.Names()
	sites := f.CallSites()
	for i := 0; i < len(names); i++ {
		fmt.Fprintf(&b, "  expanded from %s at %s\n", names[i], sites[i])
	}
	return b.String()
}
