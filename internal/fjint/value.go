// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package fjint implements the arbitrary-precision integer semantics that
// FlipJump expressions evaluate to (spec.md §4.4 "Numeric semantics").
//
// This is a narrower relative of geas's internal/lzint.Value: geas needs to
// track leading-zero bytes because EVM bytecode cares about exact byte
// width. FlipJump expressions only ever get narrowed to a fixed bit width at
// emission time, so Value is a thinner wrapper that just centralizes the
// truncating-division and sign-following-modulo rules spec.md mandates,
// rather than plain math/big arithmetic scattered across the evaluator.
package fjint

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Value is an arbitrary-precision signed integer.
type Value struct {
	int big.Int
}

var (
	// ErrDivByZero is returned by Div/Mod when dividing by zero.
	ErrDivByZero = errors.New("division by zero")
)

// FromInt64 creates a Value from an int64.
func FromInt64(i int64) *Value {
	v := new(Value)
	v.int.SetInt64(i)
	return v
}

// FromBigInt creates a Value from a math/big.Int, copying it.
func FromBigInt(i *big.Int) *Value {
	v := new(Value)
	v.int.Set(i)
	return v
}

// FromBytes creates a Value from a big-endian byte slice (used to lower
// string literals to numeric form, e.g. for the .address()-style builtins a
// future extension might add).
func FromBytes(b []byte) *Value {
	v := new(Value)
	v.int.SetBytes(b)
	return v
}

// ParseNumberLiteral parses a decimal or `0x`-prefixed hexadecimal literal,
// as accepted by the lexer's numberLiteral token.
func ParseNumberLiteral(text string) (*Value, error) {
	switch {
	case len(text) == 0:
		return nil, errors.New("empty number literal")
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v := new(Value)
		if _, ok := v.int.SetString(text[2:], 16); !ok {
			return nil, fmt.Errorf("invalid hex literal %q", text)
		}
		return v, nil
	default:
		v := new(Value)
		if _, ok := v.int.SetString(text, 10); !ok {
			return nil, fmt.Errorf("invalid number literal %q", text)
		}
		return v, nil
	}
}

// Int returns the underlying big.Int. The caller must not mutate it.
func (v *Value) Int() *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return &v.int
}

// Sign returns -1, 0 or 1 as v is negative, zero or positive.
func (v *Value) Sign() int { return v.Int().Sign() }

// IsZero reports whether v is the zero value (used for ternary-condition
// truthiness: nonzero is true).
func (v *Value) IsZero() bool { return v.Sign() == 0 }

// String formats v in decimal.
func (v *Value) String() string { return v.Int().String() }

// Add, Sub, Mul implement the obvious arithmetic operators.
func Add(a, b *Value) *Value { return FromBigInt(new(big.Int).Add(a.Int(), b.Int())) }
func Sub(a, b *Value) *Value { return FromBigInt(new(big.Int).Sub(a.Int(), b.Int())) }
func Mul(a, b *Value) *Value { return FromBigInt(new(big.Int).Mul(a.Int(), b.Int())) }

// Div implements truncated-toward-zero division (spec.md §4.4).
func Div(a, b *Value) (*Value, error) {
	if b.IsZero() {
		return nil, ErrDivByZero
	}
	return FromBigInt(new(big.Int).Quo(a.Int(), b.Int())), nil
}

// Mod implements modulo that follows the sign of the dividend (spec.md §4.4),
// i.e. Go/C '%' semantics, which math/big.Int.Rem already implements.
func Mod(a, b *Value) (*Value, error) {
	if b.IsZero() {
		return nil, ErrDivByZero
	}
	return FromBigInt(new(big.Int).Rem(a.Int(), b.Int())), nil
}

func And(a, b *Value) *Value { return FromBigInt(new(big.Int).And(a.Int(), b.Int())) }
func Or(a, b *Value) *Value  { return FromBigInt(new(big.Int).Or(a.Int(), b.Int())) }
func Xor(a, b *Value) *Value { return FromBigInt(new(big.Int).Xor(a.Int(), b.Int())) }

// Lshift and Rshift implement << and >>. Rshift is arithmetic (sign-extending).
func Lshift(a *Value, n uint) *Value {
	return FromBigInt(new(big.Int).Lsh(a.Int(), n))
}
func Rshift(a *Value, n uint) *Value {
	return FromBigInt(new(big.Int).Rsh(a.Int(), n))
}

// Neg and Not implement unary - and ~.
func Neg(a *Value) *Value { return FromBigInt(new(big.Int).Neg(a.Int())) }
func Not(a *Value) *Value { return FromBigInt(new(big.Int).Not(a.Int())) }

// NarrowToWidth reduces v modulo 2^width, producing the unsigned value that
// gets written into an emitted operation word (spec.md §4.4: "the final
// value is taken modulo 2^w and written").
func (v *Value) NarrowToWidth(width int) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	r := new(big.Int).Mod(v.Int(), mod)
	return r
}

// FitsInWidth reports whether addr, taken as is (no width-modulo narrowing),
// is within [0, 2^width). Negative values and values >= 2^width do not fit.
func FitsInWidth(addr *big.Int, width int) bool {
	if addr.Sign() < 0 {
		return false
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return addr.Cmp(max) < 0
}
