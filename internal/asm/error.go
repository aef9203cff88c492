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

// PositionError is an error that carries the source location it occurred at.
type PositionError interface {
	error
	Position() ast.Position
}

// Warning is implemented by errors that are diagnostics rather than fatal
// failures (spec.md §7 "Warnings").
type Warning interface {
	error
	IsWarning() bool
}

// IsWarning reports whether err is a non-fatal diagnostic.
func IsWarning(err error) bool {
	var w Warning
	return errors.As(err, &w) && w.IsWarning()
}

// compilerError is a taxonomy of assembler error conditions (spec.md §7).
type compilerError int

const (
	ecUndefinedLabel compilerError = iota
	ecLabelAlreadyDefined
	ecUndefinedExprMacro
	ecUndefinedInstrMacro
	ecInvalidArgumentCount
	ecInvalidOutArgumentCount
	ecRecursiveCall
	ecMacroDepthLimit
	ecUnresolvedRepCount
	ecNegativeRepCount
	ecAddressOutOfRange
	ecArithmeticError
	ecDivisionByZero
	ecIncludeDepthLimit
	ecIncludeNotFound
	ecUnknownPragma
	ecWidthAlreadySet
	ecWidthMismatch
	ecIOUnbound
	ecAssembleFailed
)

func (e compilerError) Error() string {
	switch e {
	case ecUndefinedLabel:
		return "undefined label"
	case ecLabelAlreadyDefined:
		return "label already defined"
	case ecUndefinedExprMacro:
		return "undefined expression macro"
	case ecUndefinedInstrMacro:
		return "undefined instruction macro"
	case ecInvalidArgumentCount:
		return "invalid number of arguments"
	case ecInvalidOutArgumentCount:
		return "invalid number of output arguments"
	case ecRecursiveCall:
		return "recursive macro invocation"
	case ecMacroDepthLimit:
		return "macro expansion depth limit reached"
	case ecUnresolvedRepCount:
		return "rep count does not resolve to a constant"
	case ecNegativeRepCount:
		return "rep count is negative"
	case ecAddressOutOfRange:
		return "address does not fit in configured width"
	case ecArithmeticError:
		return "arithmetic error"
	case ecDivisionByZero:
		return "division by zero"
	case ecIncludeDepthLimit:
		return "#include depth limit reached"
	case ecIncludeNotFound:
		return "included file not found"
	case ecUnknownPragma:
		return "unknown pragma"
	case ecWidthAlreadySet:
		return "width already set"
	case ecWidthMismatch:
		return "width mismatch between files"
	case ecIOUnbound:
		return "IO is not bound; remove `pragma nostartup` or define your own @IO label"
	case ecAssembleFailed:
		return "nested assemble failed"
	default:
		return fmt.Sprintf("invalid error code %d", e)
	}
}

// astError wraps a compilerError (or any error) with the AST position it
// occurred at, and, when the error surfaced from inside macro expansion, the
// call-stack trail that led there (spec.md §7: "when relevant a macro-stack
// trace").
type astError struct {
	pos   ast.Position
	err   error
	stack *diag.Frame
}

func errAt(pos ast.Position, err error) *astError { return &astError{pos: pos, err: err} }

func errfAt(pos ast.Position, format string, args ...any) *astError {
	return &astError{pos: pos, err: fmt.Errorf(format, args...)}
}

func errAtStack(pos ast.Position, stack *diag.Frame, err error) *astError {
	return &astError{pos: pos, err: err, stack: stack}
}

func errfAtStack(pos ast.Position, stack *diag.Frame, format string, args ...any) *astError {
	return &astError{pos: pos, err: fmt.Errorf(format, args...), stack: stack}
}

func (e *astError) Position() ast.Position { return e.pos }
func (e *astError) Unwrap() error          { return e.err }
func (e *astError) Error() string {
	if trail := e.stack.Trail(); trail != "" {
		return fmt.Sprintf("%v: %s\n%s", e.pos, e.err.Error(), trail)
	}
	return fmt.Sprintf("%v: %s", e.pos, e.err.Error())
}

// warning is an astError that is non-fatal.
type warning struct{ astError }

func warnAt(pos ast.Position, format string, args ...any) *warning {
	return &warning{astError{pos: pos, err: fmt.Errorf(format, args...)}}
}

func (w *warning) IsWarning() bool { return true }
