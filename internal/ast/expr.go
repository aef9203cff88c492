// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import "github.com/Mr-Bossman/flip-jump/internal/fjint"

// Expr is a symbolic arithmetic tree over integers and label names
// (spec.md §3 "Expression").
type Expr interface {
	Position() Position
}

// Expression node types.
type (
	LiteralExpr struct {
		pos   Position
		text  string
		value *fjint.Value
	}

	// LabelRefExpr is `@name`, a reference to a label's eventual address.
	LabelRefExpr struct {
		pos    Position
		Ident  string
		Global bool
	}

	// VariableExpr is `$name`, a macro value or label-in parameter
	// reference, substituted with the caller's expression during
	// expansion (see SPEC_FULL.md §5).
	VariableExpr struct {
		pos   Position
		Ident string
	}

	// MacroCallExpr invokes an expression macro (or a builtin one).
	MacroCallExpr struct {
		pos     Position
		Ident   string
		Builtin bool
		Args    []Expr
	}

	UnaryExpr struct {
		pos Position
		Op  ArithOp
		Arg Expr
	}

	BinaryExpr struct {
		pos         Position
		Op          ArithOp
		Left, Right Expr
	}

	// TernaryExpr is `cond ? then : else`; cond is true when nonzero.
	TernaryExpr struct {
		pos                 Position
		Cond, Then, Else Expr
	}

	// GroupExpr is a parenthesized sub-expression, kept as its own node so
	// diagnostics can point at the parens rather than the inner term.
	GroupExpr struct {
		pos   Position
		Inner Expr
	}
)

// MakeNumber creates a number literal from an already-parsed value.
func MakeNumber(pos Position, v *fjint.Value) *LiteralExpr {
	return &LiteralExpr{pos: pos, text: v.String(), value: v}
}

// Value returns the literal's parsed value.
func (e *LiteralExpr) Value() *fjint.Value { return e.value }

// Text returns the literal exactly as written (no quotes for strings).
func (e *LiteralExpr) Text() string { return e.text }

func (e *LiteralExpr) Position() Position { return e.pos }

func (l *LabelRefExpr) Position() Position { return l.pos }
func (l *LabelRefExpr) String() string     { return "@" + l.Ident }

func (e *VariableExpr) Position() Position { return e.pos }
func (e *VariableExpr) String() string     { return "$" + e.Ident }

func (e *MacroCallExpr) Position() Position { return e.pos }

func (e *UnaryExpr) Position() Position { return e.pos }

func (e *BinaryExpr) Position() Position { return e.pos }

func (e *TernaryExpr) Position() Position { return e.pos }

func (e *GroupExpr) Position() Position { return e.pos }
