// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"strings"
	"testing"
	"testing/fstest"
)

func compile(t *testing.T, src string, width int) *Layout {
	t.Helper()
	c := New(nil)
	c.SetDefaultWidth(width)
	lay, err := c.CompileSource("t.fj", []byte(src))
	if err != nil {
		for _, e := range c.Errors() {
			t.Log(e)
		}
		t.Fatalf("compile failed: %v", err)
	}
	return lay
}

func compileExpectErr(t *testing.T, src string, width int) []error {
	t.Helper()
	c := New(nil)
	c.SetDefaultWidth(width)
	_, err := c.CompileSource("t.fj", []byte(src))
	if err == nil {
		t.Fatal("expected compilation to fail, it succeeded")
	}
	return c.Errors()
}

func TestCompilerPreludeReservesPADAndIO(t *testing.T) {
	lay := compile(t, "start:\n;@start\n", 8)
	if got, ok := lay.Labels["PAD"]; !ok || got != 0 {
		t.Errorf("PAD = %d, ok=%v, want 0", got, ok)
	}
	if got, ok := lay.Labels["IO"]; !ok || got != 16 {
		t.Errorf("IO = %d, ok=%v, want 16 (2*width)", got, ok)
	}
	if got, ok := lay.Labels["start"]; !ok || got != 32 {
		t.Errorf("start = %d, ok=%v, want 32 (after the two prelude ops)", got, ok)
	}
}

func TestCompilerNoStartupOmitsPrelude(t *testing.T) {
	lay := compile(t, "pragma nostartup\nstart:\n;@start\n", 8)
	if _, ok := lay.Labels["PAD"]; ok {
		t.Error("PAD should not exist under pragma nostartup")
	}
	if got := lay.Labels["start"]; got != 0 {
		t.Errorf("start = %d, want 0", got)
	}
}

func TestCompilerSelfLoopResolves(t *testing.T) {
	lay := compile(t, "pragma nostartup\nloop:\n5;@loop\n", 8)
	if len(lay.Ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(lay.Ops))
	}
	op := lay.Ops[0]
	if op.B.Uint64() != op.PC {
		t.Errorf("B = %d, want self-loop to PC %d", op.B, op.PC)
	}
}

func TestCompilerOmittedBFallsThrough(t *testing.T) {
	lay := compile(t, "pragma nostartup\n1;\nend:\n;@end\n", 8)
	if len(lay.Ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(lay.Ops))
	}
	// first op's B is omitted, so it should fall through to the second op's PC.
	if lay.Ops[0].B.Uint64() != lay.Ops[1].PC {
		t.Errorf("first op falls through to %d, want %d", lay.Ops[0].B, lay.Ops[1].PC)
	}
}

func TestCompilerUndefinedLabelFails(t *testing.T) {
	errs := compileExpectErr(t, "pragma nostartup\n1;@nope\n", 8)
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
}

func TestCompilerInstructionMacroExpandsAndHygienicallyScopesLabels(t *testing.T) {
	src := `pragma nostartup
def twice(>x) {
	x:
	1;
}
twice() <a>
twice() <b>
`
	lay := compile(t, src, 8)
	if len(lay.Ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(lay.Ops))
	}
	addrA, okA := lay.Labels["a"]
	addrB, okB := lay.Labels["b"]
	if !okA || !okB {
		t.Fatalf("expected both output labels bound: a=%v(%v) b=%v(%v)", addrA, okA, addrB, okB)
	}
	if addrA == addrB {
		t.Errorf("each macro invocation should get a distinct address, got a=%d b=%d", addrA, addrB)
	}
}

func TestCompilerRepUnrollsBody(t *testing.T) {
	lay := compile(t, "pragma nostartup\nrep(3, $i) {\n$i;\n}\n", 8)
	if len(lay.Ops) != 3 {
		t.Fatalf("got %d ops, want 3", len(lay.Ops))
	}
	for i, op := range lay.Ops {
		if op.A.Int64() != int64(i) {
			t.Errorf("op %d A = %d, want %d", i, op.A, i)
		}
	}
}

func TestCompilerRecursiveMacroCallFails(t *testing.T) {
	src := `pragma nostartup
def loop() {
	loop()
}
loop()
`
	errs := compileExpectErr(t, src, 8)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "recursive") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a recursive-invocation error, got: %v", errs)
	}
}

func TestCompilerWidthMismatchAcrossIncludes(t *testing.T) {
	fsys := fstest.MapFS{
		"lib.fj": &fstest.MapFile{Data: []byte("pragma width 16\n")},
	}
	c := New(fsys)
	c.SetDefaultWidth(8)
	src := "pragma width 8\ninclude \"lib.fj\"\npragma nostartup\n1;2\n"
	_, err := c.CompileSource("main.fj", []byte(src))
	if err == nil {
		t.Fatal("expected a width-mismatch error")
	}
	found := false
	for _, e := range c.Errors() {
		if strings.Contains(e.Error(), "width mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a width mismatch error, got: %v", c.Errors())
	}
}

func TestCompilerDataStringLiteral(t *testing.T) {
	lay := compile(t, "pragma nostartup\nmsg:\n\"hi\"\n", 8)
	if len(lay.Data) != 1 {
		t.Fatalf("got %d data segments, want 1", len(lay.Data))
	}
	if string(lay.Data[0].Data) != "hi" {
		t.Errorf("Data = %q, want %q", lay.Data[0].Data, "hi")
	}
	if got := lay.Labels["msg"]; got != lay.Data[0].PC {
		t.Errorf("msg label = %d, want data PC %d", got, lay.Data[0].PC)
	}
}

func TestCompilerIncludeSharesGlobalLabels(t *testing.T) {
	fsys := fstest.MapFS{
		"lib.fj": &fstest.MapFile{Data: []byte("Shared:\n1;\n")},
	}
	c := New(fsys)
	c.SetDefaultWidth(8)
	lay, err := c.CompileSource("main.fj", []byte("pragma nostartup\ninclude \"lib.fj\"\n2;@Shared\n"))
	if err != nil {
		for _, e := range c.Errors() {
			t.Log(e)
		}
		t.Fatalf("compile failed: %v", err)
	}
	if _, ok := lay.Labels["Shared"]; !ok {
		t.Error("Shared label from the included file should be visible in the including file")
	}
}
