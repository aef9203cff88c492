// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package asm

import (
	"fmt"
	"math/big"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
	"github.com/Mr-Bossman/flip-jump/internal/fjint"
)

func fjintFromInt64(i int64) *fjint.Value { return fjint.FromInt64(i) }

// addressOf resolves a label name to its final bit address. Implementations
// are supplied by the layout pass once placement has completed.
type addressOf func(name string) (uint64, bool)

// evalConst evaluates an expression that must not depend on label
// placement (a rep count, for instance). addr may be nil.
func evalConst(e ast.Expr, addr addressOf, width int) (*fjint.Value, error) {
	return evalExpr(e, addr, width)
}

// evalExpr evaluates a fully-substituted expression tree to a value,
// resolving @label references through addr.
func evalExpr(e ast.Expr, addr addressOf, width int) (*fjint.Value, error) {
	switch v := e.(type) {
	case nil:
		return nil, fmt.Errorf("missing operand")

	case *ast.LiteralExpr:
		return v.Value(), nil

	case *ast.LabelRefExpr:
		if addr == nil {
			return nil, fmt.Errorf("%w: %s (not available in this context)", ecUndefinedLabel, v.Ident)
		}
		a, ok := addr(v.Ident)
		if !ok {
			return nil, fmt.Errorf("%w: @%s", ecUndefinedLabel, v.Ident)
		}
		return fjint.FromBigInt(new(big.Int).SetUint64(a)), nil

	case *ast.VariableExpr:
		return nil, fmt.Errorf("unresolved macro parameter $%s (internal error)", v.Ident)

	case *ast.MacroCallExpr:
		return nil, fmt.Errorf("unresolved macro call %s(...) (internal error)", v.Ident)

	case *ast.GroupExpr:
		return evalExpr(v.Inner, addr, width)

	case *ast.UnaryExpr:
		arg, err := evalExpr(v.Arg, addr, width)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case ast.ArithNeg:
			return fjint.Neg(arg), nil
		case ast.ArithNot:
			return fjint.Not(arg), nil
		default:
			return nil, fmt.Errorf("%w: bad unary operator %v", ecArithmeticError, v.Op)
		}

	case *ast.BinaryExpr:
		l, err := evalExpr(v.Left, addr, width)
		if err != nil {
			return nil, err
		}
		r, err := evalExpr(v.Right, addr, width)
		if err != nil {
			return nil, err
		}
		return evalBinary(v.Op, l, r)

	case *ast.TernaryExpr:
		c, err := evalExpr(v.Cond, addr, width)
		if err != nil {
			return nil, err
		}
		if !c.IsZero() {
			return evalExpr(v.Then, addr, width)
		}
		return evalExpr(v.Else, addr, width)

	default:
		return nil, fmt.Errorf("unhandled expression type %T", e)
	}
}

func evalBinary(op ast.ArithOp, l, r *fjint.Value) (*fjint.Value, error) {
	switch op {
	case ast.ArithPlus:
		return fjint.Add(l, r), nil
	case ast.ArithMinus:
		return fjint.Sub(l, r), nil
	case ast.ArithMul:
		return fjint.Mul(l, r), nil
	case ast.ArithDiv:
		v, err := fjint.Div(l, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ecDivisionByZero, err)
		}
		return v, nil
	case ast.ArithMod:
		v, err := fjint.Mod(l, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ecDivisionByZero, err)
		}
		return v, nil
	case ast.ArithAnd:
		return fjint.And(l, r), nil
	case ast.ArithOr:
		return fjint.Or(l, r), nil
	case ast.ArithXor:
		return fjint.Xor(l, r), nil
	case ast.ArithLshift:
		if r.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative shift", ecArithmeticError)
		}
		return fjint.Lshift(l, uint(r.Int().Int64())), nil
	case ast.ArithRshift:
		if r.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative shift", ecArithmeticError)
		}
		return fjint.Rshift(l, uint(r.Int().Int64())), nil
	default:
		return nil, fmt.Errorf("%w: bad binary operator %v", ecArithmeticError, op)
	}
}
