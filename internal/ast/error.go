// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ast

import "fmt"

// ParseError is a lexical or grammar error, carrying the source location it
// occurred at (spec.md §4.1 "Fails with SyntaxError... carrying source
// location").
type ParseError struct {
	file    string
	line    int
	err     error
	Warning bool
}

func (e *ParseError) Error() string {
	kind := "syntax error"
	if e.Warning {
		kind = "warning"
	}
	pos := Position{File: e.file, Line: e.line}
	return fmt.Sprintf("%s: %s: %v", pos, kind, e.err)
}

func (e *ParseError) Position() Position { return Position{File: e.file, Line: e.line} }

func (e *ParseError) Unwrap() error { return e.err }

func (e *ParseError) IsWarning() bool { return e.Warning }
