// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build windows

package main

import "fmt"

// setRawIO has no termios equivalent wired up for Windows consoles; callers
// fall back to plain line-buffered stdin (see stdinReader in main.go).
func setRawIO() (func(), error) {
	return nil, fmt.Errorf("raw terminal mode not supported on this platform")
}
