// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"errors"
	"fmt"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
	"github.com/Mr-Bossman/flip-jump/internal/diag"
)

// maxMacroDepth bounds instruction-macro nesting so a long chain of nested
// macro calls can't blow the Go stack; geas uses an analogous include-depth
// limit for the same reason. Direct and mutual recursion never reach it:
// macroCall rejects a macro that is already on the expansion stack first.
const maxMacroDepth = 900

// env binds a macro invocation's value/label-in parameters (or a rep
// variable) to the caller's (already-substituted) argument expressions.
// Out-parameters are not held here; macroCall records them in
// program.aliases.
type env struct {
	parent *env
	vars   map[string]ast.Expr
}

func (e *env) lookup(name string) (ast.Expr, bool) {
	for s := e; s != nil; s = s.parent {
		if ex, ok := s.vars[name]; ok {
			return ex, true
		}
	}
	return nil, false
}

// frame is one level of the expansion stack, used for recursion detection
// and for computing the hygiene suffix of labels defined within it.
type frame struct {
	def *ast.InstructionMacroDef
	id  int
}

// expander walks a Document tree, substituting macro parameters and
// unrolling rep blocks, and appends the result to a flat program.
type expander struct {
	c      *Compiler
	prog   *program
	env    *env
	doc    *ast.Document // lexically-current document, for macro lookup
	stack  []frame
	nextID int

	// mstack is the macro-call-stack sidecar attached to every element
	// produced while it is non-nil, for post-mortem diagnostics.
	mstack *diag.Frame
}

func (c *Compiler) expand(doc *ast.Document) (*program, []error) {
	ex := &expander{c: c, prog: newProgram()}
	var errs []error
	// The implicit startup prelude (see prelude.go) is attached as doc's
	// lexical Parent so PAD/IO resolve like any other label, but it still
	// needs its own two ops placed ahead of the file's own stream.
	if doc.Parent != nil {
		errs = append(errs, ex.block(doc.Parent)...)
	}
	errs = append(errs, ex.block(doc)...)
	return ex.prog, errs
}

func (ex *expander) newInvocationID() int {
	ex.nextID++
	return ex.nextID
}

// hygienicName qualifies a body-local name with the innermost macro
// invocation's id, guaranteeing distinct instances of the same macro never
// collide, e.g. "loop" becomes "loop~3". '~' cannot appear in a source
// identifier, so qualified names never collide with user-written ones.
func (ex *expander) hygienicName(name string) string {
	if len(ex.stack) == 0 {
		return name
	}
	return fmt.Sprintf("%s~%d", name, ex.stack[len(ex.stack)-1].id)
}

func (ex *expander) block(doc *ast.Document) (errs []error) {
	saved := ex.doc
	ex.doc = doc
	defer func() { ex.doc = saved }()

	for _, st := range doc.Statements {
		if err := ex.statement(doc, st); err != nil {
			errs = append(errs, err)
			if len(errs) > ex.c.maxErrors {
				break
			}
		}
	}
	return errs
}

func (ex *expander) statement(doc *ast.Document, st ast.Statement) error {
	switch s := st.(type) {
	case *ast.LabelDefSt:
		ex.prog.addLabel(ex.qualifiedLabelName(s))
		return nil

	case *ast.OpSt:
		opA, opB := s.A, s.B
		if opA == nil {
			// Omitted flip target: flip the reserved pad cell the startup
			// prelude sets aside for no-op flips (see prelude.go). Without
			// a PAD label (pragma nostartup), flip address 0, where PAD
			// would otherwise sit.
			if _, ok := ex.c.globals.lookupLabel(padLabelName); ok {
				opA = &ast.LabelRefExpr{Ident: padLabelName, Global: true}
			} else {
				opA = ast.MakeNumber(s.Position(), fjintFromInt64(0))
			}
		}
		a, err := ex.substitute(opA)
		if err != nil {
			return errAtStack(s.Position(), ex.mstack, err)
		}
		var b ast.Expr
		if opB != nil {
			b, err = ex.substitute(opB)
			if err != nil {
				return errAtStack(s.Position(), ex.mstack, err)
			}
		}
		// b == nil is resolved in layout(): it means "fall through to the
		// next element", which isn't known until placement.
		ex.prog.addOp(s.Position(), a, b, ex.mstack)
		return nil

	case *ast.DataSt:
		if s.Label != nil {
			ex.prog.addLabel(ex.qualifiedLabelName(s.Label))
		}
		ex.prog.addData(s.Position(), s.Bytes, ex.mstack)
		return nil

	case *ast.ConstDeclSt:
		return nil // expression macros are resolved lazily at use (see exprMacro)

	case *ast.BlockSt:
		return ex.blockStatements(doc, s.Statements)

	case *ast.MacroCallSt:
		return ex.macroCall(doc, s)

	case *ast.RepSt:
		return ex.rep(doc, s)

	case *ast.IncludeSt:
		incdoc := ex.c.includes[s.Filename]
		if incdoc == nil {
			return nil // parse of the include already failed; error was reported there
		}
		return ex.block(incdoc)

	case *ast.AssembleSt:
		data, err := ex.c.assembleSub(s.Filename)
		if err != nil {
			return errfAtStack(s.Position(), ex.mstack, "%s: %v", s.Filename, err)
		}
		ex.prog.addData(s.Position(), data, ex.mstack)
		return nil

	case *ast.PragmaSt:
		return ex.c.applyPragma(s)

	default:
		return nil
	}
}

func (ex *expander) blockStatements(doc *ast.Document, sts []ast.Statement) error {
	for _, st := range sts {
		if err := ex.statement(doc, st); err != nil {
			return err
		}
	}
	return nil
}

// qualifiedLabelName returns the name a label definition should be placed
// under: unchanged at top level (or when Global), hygiene-qualified inside
// a macro expansion.
func (ex *expander) qualifiedLabelName(li *ast.LabelDefSt) string {
	if li.Global || len(ex.stack) == 0 {
		return li.Name
	}
	return ex.hygienicName(li.Name)
}

// rep unrolls a `rep(count, var) { ... }` block count times, binding var to
// each index as a substituted literal (spec.md §3 "Rep block").
func (ex *expander) rep(doc *ast.Document, s *ast.RepSt) error {
	countExpr, err := ex.substitute(s.Count)
	if err != nil {
		return errAtStack(s.Position(), ex.mstack, err)
	}
	count, err := evalConst(countExpr, nil, 0)
	if err != nil {
		return errfAtStack(s.Position(), ex.mstack, "%w: %v", ecUnresolvedRepCount, err)
	}
	if count.Sign() < 0 {
		return errfAtStack(s.Position(), ex.mstack, "%w: %v", ecNegativeRepCount, count)
	}
	n := count.Int().Int64()

	blk, ok := s.Body.(*ast.BlockSt)
	if !ok {
		return errfAtStack(s.Position(), ex.mstack, "malformed rep body")
	}

	saved := ex.env
	savedStack := ex.mstack
	for i := int64(0); i < n; i++ {
		ex.env = &env{parent: saved, vars: map[string]ast.Expr{
			s.Var: ast.MakeNumber(s.Position(), fjintFromInt64(i)),
		}}
		// Each iteration gets its own hygiene scope so a label defined
		// inside the rep body doesn't collide across iterations.
		ex.stack = append(ex.stack, frame{id: ex.newInvocationID()})
		ex.mstack = savedStack.Push(fmt.Sprintf("rep#%d", i), s.Position())
		err := ex.blockStatements(doc, blk.Statements)
		ex.stack = ex.stack[:len(ex.stack)-1]
		ex.mstack = savedStack
		if err != nil {
			ex.env = saved
			return err
		}
	}
	ex.env = saved
	return nil
}

// macroCall expands an instruction macro invocation in place.
func (ex *expander) macroCall(doc *ast.Document, s *ast.MacroCallSt) error {
	def, _ := ex.lookupInstrMacro(doc, s.Name)
	if def == nil {
		return errfAtStack(s.Position(), ex.mstack, "%w %%%s", ecUndefinedInstrMacro, s.Name)
	}
	if len(s.Args) != len(def.ValueParams) {
		return errfAtStack(s.Position(), ex.mstack, "%w: %%%s needs %d, got %d", ecInvalidArgumentCount, s.Name, len(def.ValueParams), len(s.Args))
	}
	if len(s.OutArgs) != len(def.OutParams) {
		return errfAtStack(s.Position(), ex.mstack, "%w: %%%s needs %d, got %d", ecInvalidOutArgumentCount, s.Name, len(def.OutParams), len(s.OutArgs))
	}
	if len(ex.stack) >= maxMacroDepth {
		return errfAtStack(s.Position(), ex.mstack, "%w (limit %d)", ecMacroDepthLimit, maxMacroDepth)
	}
	for _, f := range ex.stack {
		if f.def == def {
			return errfAtStack(s.Position(), ex.mstack, "%w %%%s", ecRecursiveCall, s.Name)
		}
	}

	// Substitute the call's arguments in the *caller's* environment before
	// entering the callee's scope, so $x inside an argument expression
	// refers to the caller's binding, not the callee's.
	args := make([]ast.Expr, len(s.Args))
	for i, a := range s.Args {
		sub, err := ex.substitute(a)
		if err != nil {
			return errAtStack(s.Position(), ex.mstack, err)
		}
		args[i] = sub
	}

	id := ex.newInvocationID()
	vars := make(map[string]ast.Expr, len(def.ValueParams))
	for i, name := range def.ValueParams {
		vars[name] = args[i]
	}

	savedEnv := ex.env
	savedStack := ex.mstack
	ex.env = &env{vars: vars} // macro bodies are hygienic: no access to caller's $vars beyond params
	ex.stack = append(ex.stack, frame{def: def, id: id})
	ex.mstack = savedStack.Push(s.Name, s.Position())

	bodyErrs := ex.block(def.Body)

	ex.stack = ex.stack[:len(ex.stack)-1]
	ex.env = savedEnv
	ex.mstack = savedStack
	if len(bodyErrs) > 0 {
		return errors.Join(bodyErrs...)
	}

	for i, outParam := range def.OutParams {
		final := fmt.Sprintf("%s~%d", outParam, id)
		ex.prog.aliases[s.OutArgs[i]] = final
	}
	return nil
}

func (ex *expander) lookupInstrMacro(doc *ast.Document, name string) (*ast.InstructionMacroDef, *ast.Document) {
	if ast.IsGlobal(name) {
		if def, gdoc, ok := ex.c.globals.lookupInstrMacroGlobal(name); ok {
			return def, gdoc
		}
	}
	if doc == nil {
		return nil, nil
	}
	return doc.LookupInstrMacro(name)
}

func (ex *expander) lookupExprMacro(doc *ast.Document, name string) (*ast.ExpressionMacroDef, *ast.Document) {
	if ast.IsGlobal(name) {
		if def, gdoc, ok := ex.c.globals.lookupExprMacroGlobal(name); ok {
			return def, gdoc
		}
	}
	if doc == nil {
		return nil, nil
	}
	return doc.LookupExprMacro(name)
}

// substitute returns a copy of e with every VariableExpr and non-builtin
// MacroCallExpr resolved away, producing a tree layout() can evaluate
// without further context. A nil input stays nil (an omitted operand).
func (ex *expander) substitute(e ast.Expr) (ast.Expr, error) {
	switch v := e.(type) {
	case nil:
		return nil, nil

	case *ast.LiteralExpr, *ast.LabelRefExpr:
		return e, nil

	case *ast.VariableExpr:
		bound, ok := ex.env.lookup(v.Ident)
		if !ok {
			return nil, fmt.Errorf("%w $%s", ecUndefinedExprMacro, v.Ident)
		}
		return bound, nil

	case *ast.UnaryExpr:
		arg, err := ex.substitute(v.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: v.Op, Arg: arg}, nil

	case *ast.BinaryExpr:
		l, err := ex.substitute(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := ex.substitute(v.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: v.Op, Left: l, Right: r}, nil

	case *ast.TernaryExpr:
		c, err := ex.substitute(v.Cond)
		if err != nil {
			return nil, err
		}
		t, err := ex.substitute(v.Then)
		if err != nil {
			return nil, err
		}
		el, err := ex.substitute(v.Else)
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Cond: c, Then: t, Else: el}, nil

	case *ast.GroupExpr:
		in, err := ex.substitute(v.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.GroupExpr{Inner: in}, nil

	case *ast.MacroCallExpr:
		return ex.substituteExprMacroCall(v)

	default:
		return nil, fmt.Errorf("unhandled expression type %T", e)
	}
}

func (ex *expander) substituteExprMacroCall(v *ast.MacroCallExpr) (ast.Expr, error) {
	def, _ := ex.lookupExprMacro(ex.doc, v.Ident)
	if def == nil {
		return nil, fmt.Errorf("%w %s", ecUndefinedExprMacro, v.Ident)
	}
	if len(v.Args) != len(def.Params) {
		return nil, fmt.Errorf("%w: %s needs %d, got %d", ecInvalidArgumentCount, v.Ident, len(def.Params), len(v.Args))
	}
	args := make([]ast.Expr, len(v.Args))
	for i, a := range v.Args {
		sub, err := ex.substitute(a)
		if err != nil {
			return nil, err
		}
		args[i] = sub
	}
	vars := make(map[string]ast.Expr, len(def.Params))
	for i, name := range def.Params {
		vars[name] = args[i]
	}
	inner := &expander{c: ex.c, doc: ex.doc, env: &env{vars: vars}}
	return inner.substitute(def.Body)
}
