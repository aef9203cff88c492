// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"sort"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
)

// globalScope tracks the uppercase-initial labels and macros that are
// visible across every document reached from the main file, the same
// cross-file visibility rule the parser applies to single documents
// (ast.IsGlobal).
type globalScope struct {
	labels      map[string]*ast.LabelDefSt
	labelDoc    map[string]*ast.Document
	exprMacros  map[string]globalDef[*ast.ExpressionMacroDef]
	instrMacros map[string]globalDef[*ast.InstructionMacroDef]
}

type globalDef[M any] struct {
	def M
	doc *ast.Document
}

func newGlobalScope() *globalScope {
	return &globalScope{
		labels:      make(map[string]*ast.LabelDefSt),
		labelDoc:    make(map[string]*ast.Document),
		exprMacros:  make(map[string]globalDef[*ast.ExpressionMacroDef]),
		instrMacros: make(map[string]globalDef[*ast.InstructionMacroDef]),
	}
}

// register scans a document's direct definitions and adds the global ones,
// returning an error for any name collision against an earlier document.
func (gs *globalScope) register(doc *ast.Document) (errs []error) {
	for _, name := range sortedStatementNames(doc) {
		if li, ok := doc.Label(name); ok && ast.IsGlobal(name) {
			if first, found := gs.labels[name]; found && first != li {
				errs = append(errs, errfAt(li.Position(), "global label %s already defined at %v", name, first.Position()))
				continue
			}
			gs.labels[name] = li
			gs.labelDoc[name] = doc
		}
	}

	for name, m := range doc.ExprMacros() {
		if !ast.IsGlobal(name) {
			continue
		}
		if first, found := gs.exprMacros[name]; found && first.def != m {
			errs = append(errs, errfAt(m.Position(), "global macro %s already defined at %v", name, first.def.Position()))
			continue
		}
		gs.exprMacros[name] = globalDef[*ast.ExpressionMacroDef]{def: m, doc: doc}
	}

	for name, m := range doc.InstrMacros() {
		if !ast.IsGlobal(name) {
			continue
		}
		if first, found := gs.instrMacros[name]; found && first.def != m {
			errs = append(errs, errfAt(m.Position(), "global macro %%%s already defined at %v", name, first.def.Position()))
			continue
		}
		gs.instrMacros[name] = globalDef[*ast.InstructionMacroDef]{def: m, doc: doc}
	}
	return errs
}

func (gs *globalScope) lookupInstrMacroGlobal(name string) (*ast.InstructionMacroDef, *ast.Document, bool) {
	g, ok := gs.instrMacros[name]
	if !ok {
		return nil, nil, false
	}
	return g.def, g.doc, true
}

func (gs *globalScope) lookupExprMacroGlobal(name string) (*ast.ExpressionMacroDef, *ast.Document, bool) {
	g, ok := gs.exprMacros[name]
	if !ok {
		return nil, nil, false
	}
	return g.def, g.doc, true
}

// sortedStatementNames returns the names of every label defined directly in
// doc, for deterministic registration order.
func sortedStatementNames(doc *ast.Document) []string {
	var names []string
	for _, st := range doc.Statements {
		switch s := st.(type) {
		case *ast.LabelDefSt:
			names = append(names, s.Name)
		case *ast.BlockSt:
			for _, inner := range s.Statements {
				if ld, ok := inner.(*ast.LabelDefSt); ok {
					names = append(names, ld.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

func (gs *globalScope) lookupLabel(name string) (*ast.LabelDefSt, bool) {
	li, ok := gs.labels[name]
	return li, ok
}
