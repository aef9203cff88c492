// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import "testing"

func parseOK(t *testing.T, src string) *Document {
	t.Helper()
	doc, errs := ParseFile("t.fj", []byte(src))
	if len(errs) != 0 {
		t.Fatalf("ParseFile(%q) errors: %v", src, errs)
	}
	return doc
}

func TestParseOpStatement(t *testing.T) {
	doc := parseOK(t, "1;2\n")
	if len(doc.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(doc.Statements))
	}
	op, ok := doc.Statements[0].(*OpSt)
	if !ok {
		t.Fatalf("statement is %T, want *OpSt", doc.Statements[0])
	}
	if op.A == nil || op.B == nil {
		t.Error("both A and B should be present")
	}
}

func TestParseOpStatementOmittedOperands(t *testing.T) {
	doc := parseOK(t, ";\n")
	op, ok := doc.Statements[0].(*OpSt)
	if !ok {
		t.Fatalf("statement is %T, want *OpSt", doc.Statements[0])
	}
	if op.A != nil || op.B != nil {
		t.Error("both A and B should be omitted")
	}
}

func TestParseLabelDefinitionRegistersInDocument(t *testing.T) {
	doc := parseOK(t, "start:\n1;2\n")
	li, ok := doc.Label("start")
	if !ok {
		t.Fatal("label \"start\" not registered")
	}
	if li.Global {
		t.Error("lowercase-initial label should not be global")
	}
}

func TestParseLabelGlobalness(t *testing.T) {
	doc := parseOK(t, "Shared:\n1;2\nlocal:\n1;2\n")
	shared, _ := doc.Label("Shared")
	local, _ := doc.Label("local")
	if !shared.Global {
		t.Error("uppercase-initial label should be global")
	}
	if local.Global {
		t.Error("lowercase-initial label should not be global")
	}
}

func TestParseLabelRefExpr(t *testing.T) {
	doc := parseOK(t, "1;@target\n")
	op := doc.Statements[0].(*OpSt)
	ref, ok := op.B.(*LabelRefExpr)
	if !ok {
		t.Fatalf("B is %T, want *LabelRefExpr", op.B)
	}
	if ref.Ident != "target" {
		t.Errorf("Ident = %q, want %q", ref.Ident, "target")
	}
}

func TestParseBinaryExprPrecedence(t *testing.T) {
	doc := parseOK(t, "1+2*3;\n")
	op := doc.Statements[0].(*OpSt)
	top, ok := op.A.(*BinaryExpr)
	if !ok {
		t.Fatalf("A is %T, want *BinaryExpr", op.A)
	}
	if top.Op != ArithPlus {
		t.Errorf("top operator = %v, want +", top.Op)
	}
	if _, ok := top.Right.(*BinaryExpr); !ok {
		t.Errorf("right operand is %T, want *BinaryExpr (the 2*3 term)", top.Right)
	}
}

func TestParsePragma(t *testing.T) {
	doc := parseOK(t, "pragma width 16\n")
	pr, ok := doc.Statements[0].(*PragmaSt)
	if !ok {
		t.Fatalf("statement is %T, want *PragmaSt", doc.Statements[0])
	}
	if pr.Option != "width" || pr.Value != "16" {
		t.Errorf("got Option=%q Value=%q", pr.Option, pr.Value)
	}
}

func TestParseMacroCallArgsAndOutArgs(t *testing.T) {
	doc := parseOK(t, "def twice(x, >y) {\n\ty:\n\t1;\n}\ntwice(5) <a>\n")
	var call *MacroCallSt
	for _, s := range doc.Statements {
		if c, ok := s.(*MacroCallSt); ok {
			call = c
		}
	}
	if call == nil {
		t.Fatal("no MacroCallSt found")
	}
	if len(call.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(call.Args))
	}
	if len(call.OutArgs) != 1 || call.OutArgs[0] != "a" {
		t.Errorf("OutArgs = %v, want [a]", call.OutArgs)
	}
}

// TestParseInstructionMacroDefinitionRegistersValueAndOutParams covers
// all three parameter categories from the grammar
// (value_params ["<" label_in_params] [">" label_out_params]): a plain
// value param, a label-in param (substitutes like a value param), and
// a label-out param (the body must define a matching label).
func TestParseInstructionMacroDefinitionRegistersValueAndOutParams(t *testing.T) {
	doc := parseOK(t, "def store(val, <src, >dst) {\n\tdst:\n\t$val;\n}\n")
	def, ok := doc.InstrMacro("store")
	if !ok {
		t.Fatal("macro \"store\" not registered")
	}
	if len(def.ValueParams) != 2 || def.ValueParams[0] != "val" || def.ValueParams[1] != "src" {
		t.Errorf("ValueParams = %v, want [val src]", def.ValueParams)
	}
	if len(def.OutParams) != 1 || def.OutParams[0] != "dst" {
		t.Errorf("OutParams = %v, want [dst]", def.OutParams)
	}
}

func TestParseRepStatement(t *testing.T) {
	doc := parseOK(t, "rep(4, $i) {\n$i;\n}\n")
	rep, ok := doc.Statements[0].(*RepSt)
	if !ok {
		t.Fatalf("statement is %T, want *RepSt", doc.Statements[0])
	}
	if rep.Var != "i" {
		t.Errorf("Var = %q, want %q", rep.Var, "i")
	}
	if _, ok := rep.Body.(*BlockSt); !ok {
		t.Errorf("Body is %T, want *BlockSt", rep.Body)
	}
}

func TestParseStringLiteralDataStatement(t *testing.T) {
	doc := parseOK(t, "msg:\n\"hi\"\n")
	d, ok := doc.Statements[1].(*DataSt)
	if !ok {
		t.Fatalf("statement is %T, want *DataSt", doc.Statements[1])
	}
	if string(d.Bytes) != "hi" {
		t.Errorf("Bytes = %q, want %q", d.Bytes, "hi")
	}
}

func TestParseRecoversFromSyntaxErrorOnNextLine(t *testing.T) {
	doc, errs := ParseFile("t.fj", []byte(")garbage\n1;2\n"))
	if len(errs) == 0 {
		t.Fatal("expected at least one error from the malformed first line")
	}
	found := false
	for _, s := range doc.Statements {
		if _, ok := s.(*OpSt); ok {
			found = true
		}
	}
	if !found {
		t.Error("parser should have recovered and still parsed the valid second line")
	}
}

func TestParseIncludeAndAssembleStatements(t *testing.T) {
	doc := parseOK(t, "include \"lib.fj\"\nassemble \"sub.fj\"\n")
	inc, ok := doc.Statements[0].(*IncludeSt)
	if !ok || inc.Filename != "lib.fj" {
		t.Errorf("got %#v, want IncludeSt{Filename: \"lib.fj\"}", doc.Statements[0])
	}
	asm, ok := doc.Statements[1].(*AssembleSt)
	if !ok || asm.Filename != "sub.fj" {
		t.Errorf("got %#v, want AssembleSt{Filename: \"sub.fj\"}", doc.Statements[1])
	}
}

func TestIsGlobal(t *testing.T) {
	cases := map[string]bool{"Foo": true, "foo": false, "_foo": false, "F": true}
	for name, want := range cases {
		if got := IsGlobal(name); got != want {
			t.Errorf("IsGlobal(%q) = %v, want %v", name, got, want)
		}
	}
}
