// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package diag

import (
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Mr-Bossman/flip-jump/internal/ast"
)

// OpInfo is one entry of a debug-info sidecar: the source position and
// macro-expansion context behind the operation placed at PC.
type OpInfo struct {
	PC     uint64 `yaml:"pc"`
	File   string `yaml:"file"`
	Line   int    `yaml:"line"`
	Macros string `yaml:"macros,omitempty"`
}

// Info is a yaml-serializable sidecar alongside a compiled .fjm image,
// mapping every operation's bit address back to where it came from. The
// assembler and VM never need it; it exists purely for `flipjump -d`
// style post-mortem tooling, so it lives in its own file rather than being
// baked into the image format (keeping .fjm itself minimal, per spec.md §6).
type Info struct {
	Width  int               `yaml:"width"`
	Labels map[string]uint64 `yaml:"labels,omitempty"`
	Ops    []OpInfo          `yaml:"ops"`
}

// NewInfo creates an empty sidecar for a program assembled at the given
// width, with labels copied from the resolved label table.
func NewInfo(width int, labels map[string]uint64) *Info {
	return &Info{Width: width, Labels: labels}
}

// AddOp records the source position and macro stack behind the operation
// placed at pc.
func (in *Info) AddOp(pc uint64, pos ast.Position, stack *Frame) {
	in.Ops = append(in.Ops, OpInfo{PC: pc, File: pos.File, Line: pos.Line, Macros: stack.String()})
}

// Lookup finds the OpInfo for the operation at address pc, if recorded.
func (in *Info) Lookup(pc uint64) (OpInfo, bool) {
	i := sort.Search(len(in.Ops), func(i int) bool { return in.Ops[i].PC >= pc })
	if i < len(in.Ops) && in.Ops[i].PC == pc {
		return in.Ops[i], true
	}
	return OpInfo{}, false
}

// SortByPC orders entries by address, required for Lookup's binary search.
func (in *Info) SortByPC() {
	sort.Slice(in.Ops, func(i, j int) bool { return in.Ops[i].PC < in.Ops[j].PC })
}

// WriteYAML serializes the sidecar.
func (in *Info) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(in)
}

// ReadInfo deserializes a sidecar previously written by WriteYAML.
func ReadInfo(r io.Reader) (*Info, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var in Info
	if err := dec.Decode(&in); err != nil {
		return nil, err
	}
	in.SortByPC()
	return &in, nil
}
