// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package asm implements the FlipJump preprocessor and two-pass assembler:
// it turns a parsed internal/ast.Document tree into a placed, resolved
// Layout that internal/fjm can encode as a binary image.
package asm

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
	"github.com/Mr-Bossman/flip-jump/internal/bitpack"
)

const (
	defaultIncludeDepthLimit = 128
	defaultMaxErrors         = 20
	defaultWidth             = 64
)

// Compiler compiles FlipJump source into a placed, resolved Layout.
type Compiler struct {
	fsys        fs.FS
	maxIncDepth int
	maxErrors   int
	noStartup   bool

	width     int
	widthSet  bool
	widthFile string

	globals  *globalScope
	includes map[string]*ast.Document

	errs []error
}

// New creates a Compiler that resolves #include and #assemble targets
// against fsys. A nil fsys disallows both.
func New(fsys fs.FS) *Compiler {
	return &Compiler{
		fsys:        fsys,
		maxIncDepth: defaultIncludeDepthLimit,
		maxErrors:   defaultMaxErrors,
		width:       defaultWidth,
		globals:     newGlobalScope(),
		includes:    make(map[string]*ast.Document),
	}
}

// SetIncludeDepthLimit bounds #include nesting.
func (c *Compiler) SetIncludeDepthLimit(d int) { c.maxIncDepth = d }

// SetMaxErrors bounds how many errors are collected before a compile gives up.
func (c *Compiler) SetMaxErrors(n int) { c.maxErrors = n }

// SetDefaultWidth sets the address width used when no file sets one via
// `pragma width`.
func (c *Compiler) SetDefaultWidth(w int) { c.width = w }

// Errors returns every fatal error collected during compilation.
func (c *Compiler) Errors() []error {
	var out []error
	for _, e := range c.errs {
		if !IsWarning(e) {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns every non-fatal diagnostic collected during compilation.
func (c *Compiler) Warnings() []error {
	var out []error
	for _, e := range c.errs {
		if IsWarning(e) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Compiler) addErrors(errs ...error) {
	c.errs = append(c.errs, errs...)
}

// CompileFile reads, parses and assembles filename plus everything it
// transitively includes, returning a resolved Layout.
func (c *Compiler) CompileFile(filename string) (*Layout, error) {
	if c.fsys == nil {
		return nil, fmt.Errorf("%s: no filesystem configured", filename)
	}
	src, err := fs.ReadFile(c.fsys, filename)
	if err != nil {
		return nil, err
	}
	return c.CompileSource(filename, src)
}

// CompileSource compiles in-memory source text as if it were loaded from
// filename (used by CompileFile and by tests).
func (c *Compiler) CompileSource(filename string, src []byte) (*Layout, error) {
	doc, perrs := ast.ParseFile(filename, src)
	c.addErrors(perrs...)

	if !c.noStartupRequested(doc) {
		prelude, perrs := ast.ParseFile(preludeFile, []byte(preludeSource))
		c.addErrors(perrs...)
		prelude.Parent = nil
		doc.Parent = prelude
	}

	if err := c.loadIncludes(doc, 0); err != nil {
		c.addErrors(err)
	}

	c.walkIncludeTree(doc, func(d *ast.Document) { c.addErrors(c.globals.register(d)...) })

	if err := c.resolveWidth(doc); err != nil {
		c.addErrors(err)
	}

	prog, eerrs := c.expand(doc)
	c.addErrors(eerrs...)

	if len(c.Errors()) > 0 {
		return nil, fmt.Errorf("%d error(s); see Errors()", len(c.Errors()))
	}

	lay, lerrs := c.layout(prog, c.width)
	c.addErrors(lerrs...)
	if len(c.Errors()) > 0 {
		return nil, fmt.Errorf("%d error(s); see Errors()", len(c.Errors()))
	}
	return lay, nil
}

func (c *Compiler) noStartupRequested(doc *ast.Document) bool {
	for _, st := range doc.Statements {
		if pr, ok := st.(*ast.PragmaSt); ok && pr.Option == "nostartup" {
			return true
		}
	}
	return false
}

// resolveWidth applies `pragma width <n>` from the main document (and
// checks every included document agrees), defaulting to c.width otherwise.
func (c *Compiler) resolveWidth(doc *ast.Document) error {
	var err error
	c.walkIncludeTree(doc, func(d *ast.Document) {
		for _, st := range d.Statements {
			pr, ok := st.(*ast.PragmaSt)
			if !ok || pr.Option != "width" {
				continue
			}
			w, perr := strconv.Atoi(pr.Value)
			if perr != nil {
				err = errfAt(pr.Position(), "invalid width %q", pr.Value)
				return
			}
			if c.widthSet && c.width != w {
				err = errfAt(pr.Position(), "%w: %s sets width %d, %s set %d", ecWidthMismatch, d.File, w, c.widthFile, c.width)
				return
			}
			c.width, c.widthSet, c.widthFile = w, true, d.File
		}
	})
	return err
}

func (c *Compiler) applyPragma(s *ast.PragmaSt) error {
	switch s.Option {
	case "width", "nostartup":
		return nil // handled up-front in CompileSource/resolveWidth
	case "io":
		// There is no defined meaning for relocating IO: it is always the
		// prelude's second reserved operation (see prelude.go). Reject
		// rather than silently accept an override that would never apply.
		return errfAt(s.Position(), "%w: io (IO is always placed by the startup prelude; see pragma nostartup)", ecUnknownPragma)
	default:
		return errfAt(s.Position(), "%w: %s", ecUnknownPragma, s.Option)
	}
}

// walkIncludeTree calls fn for doc, its Parent chain (the prelude), and
// every document reachable via #include.
func (c *Compiler) walkIncludeTree(doc *ast.Document, fn func(*ast.Document)) {
	seen := make(map[*ast.Document]bool)
	var visit func(*ast.Document)
	visit = func(d *ast.Document) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		fn(d)
		for p := d.Parent; p != nil; p = p.Parent {
			if seen[p] {
				break
			}
			seen[p] = true
			fn(p)
		}
		for _, st := range d.Statements {
			if inc, ok := st.(*ast.IncludeSt); ok {
				if incdoc := c.includes[inc.Filename]; incdoc != nil {
					visit(incdoc)
				}
			}
		}
	}
	visit(doc)
}

// loadIncludes parses every #include target reachable from doc, in
// parallel (bounded by errgroup's shared context), caching the result in
// c.includes. This mirrors spec.md §5's explicit allowance for parallel
// #include parsing: parsing has no side effects on shared state until the
// results are merged back in here.
func (c *Compiler) loadIncludes(doc *ast.Document, depth int) error {
	if depth > c.maxIncDepth {
		return errfAt(doc.Statements[0].Position(), "%w", ecIncludeDepthLimit)
	}
	var targets []string
	for _, st := range doc.Statements {
		if inc, ok := st.(*ast.IncludeSt); ok {
			targets = append(targets, inc.Filename)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	type loaded struct {
		name string
		doc  *ast.Document
		errs []error
	}
	results := make([]loaded, len(targets))

	g, _ := errgroup.WithContext(context.Background())
	for i, name := range targets {
		i, name := i, name
		g.Go(func() error {
			resolved := resolveRelative(doc.File, name)
			if c.fsys == nil {
				return errfAt(doc.Position(), "%w: %s (no filesystem configured)", ecIncludeNotFound, name)
			}
			src, err := fs.ReadFile(c.fsys, resolved)
			if err != nil {
				return errfAt(doc.Position(), "%w: %s", ecIncludeNotFound, name)
			}
			// parse warnings/errors are not fatal to the group; they are
			// merged into c.errs after Wait.
			incdoc, perrs := ast.ParseFile(resolved, src)
			incdoc.Parent = doc
			results[i] = loaded{name: name, doc: incdoc, errs: perrs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		c.addErrors(r.errs...)
		c.includes[r.name] = r.doc
		if err := c.loadIncludes(r.doc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// assembleSub compiles filename as an independent program (its own fresh
// global scope and width) and returns its raw bit-packed bytes, for
// `assemble "file.fj"` (see SPEC_FULL.md §8).
func (c *Compiler) assembleSub(filename string) ([]byte, error) {
	resolved := resolveRelative("", filename)
	sub := New(c.fsys)
	sub.SetIncludeDepthLimit(c.maxIncDepth)
	sub.SetDefaultWidth(c.width)
	lay, err := sub.CompileFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ecAssembleFailed, err)
	}
	return packLayoutBits(lay), nil
}

// packLayoutBits renders a Layout's ops and data into a flat byte buffer
// using the same bit-addressing convention internal/fjm and internal/vm use.
func packLayoutBits(lay *Layout) []byte {
	w := bitpack.NewWriter(lay.BitSize)
	for _, op := range lay.Ops {
		w.PutUint(op.PC, op.A, lay.Width)
		w.PutUint(op.PC+uint64(lay.Width), op.B, lay.Width)
	}
	for _, d := range lay.Data {
		w.PutBytes(d.PC, d.Data)
	}
	return w.Bytes()
}

func resolveRelative(base, target string) string {
	if path.IsAbs(target) {
		return target[1:]
	}
	return path.Join(path.Dir(base), target)
}
