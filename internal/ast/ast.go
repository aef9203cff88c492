// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast implements lexing and parsing of FlipJump (.fj) source files
// into an abstract syntax tree.
package ast

import (
	"fmt"
)

// Position is a source location: file, line and column.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Document is the toplevel of the AST: an ordered list of statements plus the
// macro/label definitions registered while parsing it. Instruction macro
// bodies get their own nested Document so label/macro lookup can walk the
// lexical Parent chain the same way geas's Document does for EVM macros.
type Document struct {
	File       string
	Statements []Statement

	// Parent is the document that lexically encloses this one (set by the
	// parser for instruction macro bodies). nil for a freshly parsed file;
	// internal/asm then links a file to the startup prelude or to the
	// document that includes it.
	Parent *Document

	// Creation is the statement that produced this document: a macro
	// invocation or #include. nil for a file parsed directly.
	Creation Statement

	labels      map[string]*LabelDefSt
	exprMacros  map[string]*ExpressionMacroDef
	instrMacros map[string]*InstructionMacroDef
}

// NewDocument creates an (empty) document with the given lexical parent.
func NewDocument(file string, parent *Document) *Document {
	return &Document{
		File:        file,
		Parent:      parent,
		labels:      make(map[string]*LabelDefSt),
		exprMacros:  make(map[string]*ExpressionMacroDef),
		instrMacros: make(map[string]*InstructionMacroDef),
	}
}

func (doc *Document) addLabel(li *LabelDefSt) { doc.labels[li.Name] = li }
func (doc *Document) addExprMacro(m *ExpressionMacroDef) {
	doc.exprMacros[m.Name] = m
}
func (doc *Document) addInstrMacro(m *InstructionMacroDef) {
	doc.instrMacros[m.Name] = m
}

// Label returns the label defined directly in this document, if any.
func (doc *Document) Label(name string) (*LabelDefSt, bool) {
	li, ok := doc.labels[name]
	return li, ok
}

// ExprMacro returns the expression macro defined directly in this document.
func (doc *Document) ExprMacro(name string) (*ExpressionMacroDef, bool) {
	m, ok := doc.exprMacros[name]
	return m, ok
}

// InstrMacro returns the instruction macro defined directly in this document.
func (doc *Document) InstrMacro(name string) (*InstructionMacroDef, bool) {
	m, ok := doc.instrMacros[name]
	return m, ok
}

// Labels returns the labels defined directly in this document, keyed by name.
// Callers must not mutate the returned map.
func (doc *Document) Labels() map[string]*LabelDefSt { return doc.labels }

// ExprMacros returns the expression macros defined directly in this
// document, keyed by name. Callers must not mutate the returned map.
func (doc *Document) ExprMacros() map[string]*ExpressionMacroDef { return doc.exprMacros }

// InstrMacros returns the instruction macros defined directly in this
// document, keyed by name. Callers must not mutate the returned map.
func (doc *Document) InstrMacros() map[string]*InstructionMacroDef { return doc.instrMacros }

// LookupLabel finds the definition of a label, walking the lexical scope chain.
func (doc *Document) LookupLabel(name string) (*LabelDefSt, *Document) {
	for d := doc; d != nil; d = d.Parent {
		if li, ok := d.labels[name]; ok {
			return li, d
		}
	}
	return nil, nil
}

// LookupInstrMacro finds the definition of an instruction macro.
func (doc *Document) LookupInstrMacro(name string) (*InstructionMacroDef, *Document) {
	for d := doc; d != nil; d = d.Parent {
		if def, ok := d.instrMacros[name]; ok {
			return def, d
		}
	}
	return nil, nil
}

// LookupExprMacro finds the definition of an expression macro.
func (doc *Document) LookupExprMacro(name string) (*ExpressionMacroDef, *Document) {
	for d := doc; d != nil; d = d.Parent {
		if def, ok := d.exprMacros[name]; ok {
			return def, d
		}
	}
	return nil, nil
}

// CreationString describes where this document came from, for diagnostics.
func (doc *Document) CreationString() string {
	if doc.Creation == nil {
		if doc.File == "" {
			return ""
		}
		return " in " + doc.File
	}
	return fmt.Sprintf(" by %s at %v", doc.Creation.Description(), doc.Creation.Position())
}

// Statement is any top-level item: an operation, a label, a macro
// call/definition, a directive, or a rep block.
type Statement interface {
	Position() Position
	Description() string
}

type stbase struct {
	src  *Document
	pos  Position
	Comment string
}

func (s stbase) Position() Position { return s.pos }

// Statement types.
type (
	// OpSt is the primitive `a;b` operation. Either A or B may be nil
	// (omitted), taking the defaults from spec.md §3.
	OpSt struct {
		stbase
		A, B Expr
	}

	// LabelDefSt binds a name to the address of the next instruction.
	LabelDefSt struct {
		stbase
		Name   string
		Global bool // uppercase-initial names are visible across files
	}

	// DataSt is a string-literal shorthand, lowered to a raw data segment
	// (see SPEC_FULL.md §5 for why this isn't emitted as executable ops).
	DataSt struct {
		stbase
		Label *LabelDefSt // optional label bound to the segment start
		Bytes []byte
	}

	// ConstDeclSt is `name = expr`, a zero-argument expression macro.
	ConstDeclSt struct {
		stbase
		Def *ExpressionMacroDef
	}

	// MacroCallSt invokes an instruction macro.
	MacroCallSt struct {
		stbase
		Name    string
		Args    []Expr
		OutArgs []string
	}

	// RepSt duplicates Body Count times, binding Var to each index.
	RepSt struct {
		stbase
		Count Expr
		Var   string
		Body  Statement
	}

	// IncludeSt pulls in another source file's definitions and statements.
	IncludeSt struct {
		stbase
		Filename string
	}

	// AssembleSt compiles another file standalone and splices its bytes
	// in as a data segment (see SPEC_FULL.md §8).
	AssembleSt struct {
		stbase
		Filename string
	}

	// PragmaSt carries a per-file compiler directive, e.g. `pragma width 64`.
	PragmaSt struct {
		stbase
		Option string
		Value  string
	}

	// BlockSt groups statements lexically, e.g. a rep/macro body.
	BlockSt struct {
		stbase
		Statements []Statement
	}
)

func (s *OpSt) Description() string { return "operation" }

func (s *LabelDefSt) Description() string { return fmt.Sprintf("definition of %s", s.Name) }

func (s *DataSt) Description() string { return "string literal" }

func (s *ConstDeclSt) Description() string { return fmt.Sprintf("definition of %s", s.Def.Name) }

func (s *MacroCallSt) Description() string { return fmt.Sprintf("invocation of %s", s.Name) }

func (s *RepSt) Description() string { return "rep block" }

func (s *IncludeSt) Description() string { return fmt.Sprintf("include %q", s.Filename) }

func (s *AssembleSt) Description() string { return fmt.Sprintf("assemble %q", s.Filename) }

func (s *PragmaSt) Description() string { return fmt.Sprintf("pragma %s", s.Option) }

func (s *BlockSt) Description() string { return "block" }

// Definitions.
type (
	ExpressionMacroDef struct {
		Name   string
		Params []string
		Body   Expr
		pos    Position
	}

	InstructionMacroDef struct {
		Name       string
		ValueParams []string // value args and label-in args (same substitution mechanism, see SPEC_FULL.md §5)
		OutParams   []string // label-out args: body must define a matching label
		Body        *Document
		pos         Position
	}
)

func (d *ExpressionMacroDef) Position() Position { return d.pos }
func (d *ExpressionMacroDef) Description() string {
	return fmt.Sprintf("definition of %s", d.Name)
}

func (d *InstructionMacroDef) Position() Position { return d.pos }
func (d *InstructionMacroDef) Description() string {
	return fmt.Sprintf("definition of %s", d.Name)
}

// IsGlobal reports whether a name is visible across files (uppercase-initial,
// matching geas's convention for cross-document identifiers).
func IsGlobal(name string) bool {
	if len(name) == 0 {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
