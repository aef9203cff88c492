// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"reflect"
	"testing"
)

func TestTraceZeroCapacityDisables(t *testing.T) {
	tr := NewTrace(0)
	tr.record(TraceEntry{Step: 1})
	if got := tr.Recent(); got != nil {
		t.Errorf("Recent() with zero capacity = %v, want nil", got)
	}
}

func TestTraceRecentBeforeWrap(t *testing.T) {
	tr := NewTrace(4)
	tr.record(TraceEntry{Step: 1})
	tr.record(TraceEntry{Step: 2})
	want := []TraceEntry{{Step: 1}, {Step: 2}}
	if got := tr.Recent(); !reflect.DeepEqual(got, want) {
		t.Errorf("Recent() = %v, want %v", got, want)
	}
}

func TestTraceRecentAfterWrapIsOldestFirst(t *testing.T) {
	tr := NewTrace(3)
	for i := uint64(1); i <= 5; i++ {
		tr.record(TraceEntry{Step: i})
	}
	want := []TraceEntry{{Step: 3}, {Step: 4}, {Step: 5}}
	if got := tr.Recent(); !reflect.DeepEqual(got, want) {
		t.Errorf("Recent() = %v, want %v", got, want)
	}
}
