// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package diag

import (
	"bytes"
	"testing"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
)

func TestInfoLookupRequiresSort(t *testing.T) {
	in := NewInfo(64, map[string]uint64{"start": 0})
	in.AddOp(128, ast.Position{File: "a.fj", Line: 3}, nil)
	in.AddOp(0, ast.Position{File: "a.fj", Line: 1}, nil)
	in.AddOp(64, ast.Position{File: "a.fj", Line: 2}, nil)

	in.SortByPC()

	op, ok := in.Lookup(64)
	if !ok {
		t.Fatal("Lookup(64) not found after sort")
	}
	if op.Line != 2 {
		t.Errorf("Lookup(64).Line = %d, want 2", op.Line)
	}

	if _, ok := in.Lookup(1); ok {
		t.Error("Lookup(1) should miss: no op at that address")
	}
}

func TestInfoRecordsMacroStack(t *testing.T) {
	in := NewInfo(64, nil)
	var f *Frame
	f = f.Push("inc", ast.Position{File: "lib.fj", Line: 10})
	in.AddOp(0, ast.Position{File: "lib.fj", Line: 11}, f)

	if got, want := in.Ops[0].Macros, "inc"; got != want {
		t.Errorf("Macros = %q, want %q", got, want)
	}
}

func TestWriteReadYAMLRoundTrip(t *testing.T) {
	in := NewInfo(32, map[string]uint64{"IO": 64, "PAD": 0})
	in.AddOp(0, ast.Position{File: "pad.fj", Line: 1}, nil)
	var f *Frame
	f = f.Push("double", ast.Position{File: "math.fj", Line: 4})
	in.AddOp(64, ast.Position{File: "math.fj", Line: 5}, f)
	in.SortByPC()

	var buf bytes.Buffer
	if err := in.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	got, err := ReadInfo(&buf)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if got.Width != in.Width {
		t.Errorf("Width = %d, want %d", got.Width, in.Width)
	}
	if len(got.Ops) != len(in.Ops) {
		t.Fatalf("got %d ops, want %d", len(got.Ops), len(in.Ops))
	}
	op, ok := got.Lookup(64)
	if !ok {
		t.Fatal("round-tripped info missing op at 64")
	}
	if op.Macros != "double" {
		t.Errorf("Macros = %q, want %q", op.Macros, "double")
	}
	if got.Labels["IO"] != 64 {
		t.Errorf("Labels[IO] = %d, want 64", got.Labels["IO"])
	}
}

func TestReadInfoRejectsUnknownFields(t *testing.T) {
	src := bytes.NewBufferString("width: 64\nbogus: true\nops: []\n")
	if _, err := ReadInfo(src); err == nil {
		t.Error("ReadInfo should reject an unknown top-level field")
	}
}
