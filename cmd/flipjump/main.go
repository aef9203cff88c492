// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command flipjump assembles and runs FlipJump programs: `fj <source>`
// assembles and runs in one step; `--asm`/`--run` split those stages apart
// for anyone who wants to ship a pre-built .fjm image.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mr-Bossman/flip-jump/internal/asm"
	"github.com/Mr-Bossman/flip-jump/internal/diag"
	"github.com/Mr-Bossman/flip-jump/internal/fjm"
	"github.com/Mr-Bossman/flip-jump/internal/vm"
)

func usage() {
	t2s := strings.NewReplacer("\t", "  ")
	fmt.Fprint(os.Stderr, t2s.Replace(`
Usage: flipjump <source> [options...]
       flipjump --asm <source> -o <image> [options...]
       flipjump --run <image> [options...]

 --asm <source>          assemble only, don't run
 --run <image>           run a pre-assembled .fjm image
 -o <file>               output image path (with --asm)
 -w <bits>               address width, default 64
 --no-stl                accepted for compatibility; no effect (no stdlib is bundled)
 -d <path>               write debug info (label table + macro stacks) to path
 --debug-ops-list <N>    trace ring-buffer length (default 10)
 -b <name>               exact-name breakpoint (repeatable)
 -B <substr>             substring-match breakpoint (repeatable)
 -h                      this help

Exit codes: 0 success, 1 user error, 2 runtime failure, 3 internal error.
`))
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	fs := flag.NewFlagSet("flipjump", flag.ContinueOnError)
	fs.Usage = usage
	var (
		asmFile     = fs.String("asm", "", "")
		runFile     = fs.String("run", "", "")
		outFile     = fs.String("o", "", "")
		width       = fs.Int("w", 64, "")
		noStl       = fs.Bool("no-stl", false, "")
		debugPath   = fs.String("d", "", "")
		traceLen    = fs.Int("debug-ops-list", 10, "")
		breakExact  stringList
		breakSubstr stringList
	)
	fs.Var(&breakExact, "b", "")
	fs.Var(&breakSubstr, "B", "")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(userError)
	}

	switch {
	case *runFile != "":
		runImage(*runFile, *debugPath, *traceLen, breakExact, breakSubstr)
	case *asmFile != "":
		assembleOnly(*asmFile, *outFile, *width, *noStl, *debugPath)
	default:
		if fs.NArg() != 1 {
			usage()
			os.Exit(userError)
		}
		assembleAndRun(fs.Arg(0), *width, *noStl, *debugPath, *traceLen, breakExact, breakSubstr)
	}
}

// Exit codes per spec.md §6.
const (
	success       = 0
	userError     = 1
	runtimeError  = 2
	internalError = 3
)

func exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "flipjump: "+format+"\n", args...)
	os.Exit(code)
}

// newCompiler configures a Compiler rooted at source's directory, so
// `include "foo.fj"` resolves relative to the file the user named. --no-stl
// has nothing to disable yet: this repository carries no bundled standard
// library (spec.md treats the stdlib as ordinary user-supplied .fj input,
// out of scope for the toolchain itself), so the flag is accepted and
// currently a no-op, kept for CLI-surface compatibility (see DESIGN.md).
func newCompiler(width int, source string) *asm.Compiler {
	c := asm.New(os.DirFS(filepath.Dir(source)))
	c.SetDefaultWidth(width)
	return c
}

// noStl is accepted for CLI-surface compatibility but currently unused (see
// newCompiler's doc comment).
func compile(source string, width int, noStl bool) (*asm.Layout, *asm.Compiler, error) {
	c := newCompiler(width, source)
	lay, err := c.CompileFile(filepath.Base(source))
	for _, w := range c.Warnings() {
		fmt.Fprintln(os.Stderr, w)
	}
	if err != nil {
		for _, e := range c.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, c, err
	}
	return lay, c, nil
}

func writeDebugInfo(lay *asm.Layout, debugPath string) {
	if debugPath == "" {
		return
	}
	f, err := os.OpenFile(debugPath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		exitf(internalError, "debug info: %v", err)
	}
	defer f.Close()
	if err := lay.DebugInfo().WriteYAML(f); err != nil {
		exitf(internalError, "debug info: %v", err)
	}
}

func assembleOnly(source, outFile string, width int, noStl bool, debugPath string) {
	lay, _, err := compile(source, width, noStl)
	if err != nil {
		os.Exit(userError)
	}
	writeDebugInfo(lay, debugPath)

	img := fjm.FromLayout(lay)
	out := os.Stdout
	if outFile != "" {
		f, err := os.OpenFile(outFile, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
		if err != nil {
			exitf(internalError, "%v", err)
		}
		defer f.Close()
		out = f
	}
	if err := fjm.Write(out, img, false); err != nil {
		exitf(internalError, "%v", err)
	}
}

func assembleAndRun(source string, width int, noStl bool, debugPath string, traceLen int, breakExact, breakSubstr stringList) {
	lay, _, err := compile(source, width, noStl)
	if err != nil {
		os.Exit(userError)
	}
	writeDebugInfo(lay, debugPath)

	mem := vm.NewMemory()
	img := fjm.FromLayout(lay)
	vm.LoadImage(mem, img)
	execute(mem, lay.Width, lay.Labels, traceLen, breakExact, breakSubstr)
}

func runImage(imagePath, debugPath string, traceLen int, breakExact, breakSubstr stringList) {
	f, err := os.Open(imagePath)
	if err != nil {
		exitf(userError, "%v", err)
	}
	img, err := fjm.Read(f)
	f.Close()
	if err != nil {
		exitf(runtimeError, "%v", err)
	}

	var labels map[string]uint64
	if debugPath != "" {
		if df, err := os.Open(debugPath); err == nil {
			info, err := diag.ReadInfo(df)
			df.Close()
			if err == nil {
				labels = info.Labels
			}
		}
	}

	mem := vm.NewMemory()
	vm.LoadImage(mem, img)
	execute(mem, img.Width, labels, traceLen, breakExact, breakSubstr)
}

func execute(mem *vm.Memory, width int, labels map[string]uint64, traceLen int, breakExact, breakSubstr stringList) {
	ioBase, ok := labels["IO"]
	if !ok {
		ioBase = uint64(2 * width) // matches asm/prelude.go's default binding
	}

	in, restore := stdinReader()
	if restore != nil {
		defer restore()
	}
	interp := vm.NewInterpreter(mem, width, 0)
	interp.IO = vm.NewIO(ioBase, os.Stdout, in)
	interp.Trace = vm.NewTrace(traceLen)

	for name, addr := range labels {
		for _, b := range breakExact {
			if name == b {
				interp.Breakpoints[addr] = true
			}
		}
		for _, b := range breakSubstr {
			if strings.Contains(name, b) {
				interp.Breakpoints[addr] = true
			}
		}
	}

	err := interp.Run(context.Background())
	if err == nil {
		os.Exit(success)
	}
	fmt.Fprintln(os.Stderr, err)
	for _, t := range interp.Trace.Recent() {
		fmt.Fprintf(os.Stderr, "  step %d pc=%d flip=%d jump=%d\n", t.Step, t.PC, t.FlipAddr, t.JumpAddr)
	}
	os.Exit(runtimeError)
}

// stdinReader puts stdin into raw mode when it's an interactive terminal, so
// the interpreter's bit-at-a-time input doesn't wait on a buffered newline;
// otherwise it returns stdin unmodified (pipes, redirected files, `go test`).
func stdinReader() (io.Reader, func()) {
	fi, err := os.Stdin.Stat()
	if err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return os.Stdin, nil
	}
	restore, err := setRawIO()
	if err != nil {
		return os.Stdin, nil
	}
	return os.Stdin, restore
}
