// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "fmt"

// Handler executes one opcode's semantic body against the engine. It is
// expected to call Engine.LoadInstruction first to decode its operands.
type Handler func(e *Engine) error

type dispatchEntry struct {
	direct Handler
	subset *Handlers
	set    bool
}

// Handlers is a two-level dispatch table (spec.md §4.6): 256 entries, each
// either a direct handler or a pointer to a nested subset consulted on the
// next opcode byte. Construction-time registration panics on conflicts;
// execution-time lookup never does.
type Handlers struct {
	entries [256]dispatchEntry
}

// NewHandlers returns an empty table; every cell defaults to executeUnknown
// until registered.
func NewHandlers() *Handlers { return &Handlers{} }

// Set registers a direct handler for one opcode byte.
func (h *Handlers) Set(code byte, fn Handler) *Handlers {
	if h.entries[code].set {
		panic(fmt.Sprintf("vm: handler for opcode 0x%02X already registered", code))
	}
	h.entries[code] = dispatchEntry{direct: fn, set: true}
	return h
}

// SetRange registers the same handler across [lo, hi).
func (h *Handlers) SetRange(lo, hi byte, fn Handler) *Handlers {
	for c := int(lo); c < int(hi); c++ {
		h.Set(byte(c), fn)
	}
	return h
}

// AddSubset installs a nested table consulted on the following byte.
func (h *Handlers) AddSubset(code byte, subset *Handlers) *Handlers {
	if h.entries[code].set {
		panic(fmt.Sprintf("vm: handler for opcode 0x%02X already registered", code))
	}
	h.entries[code] = dispatchEntry{subset: subset, set: true}
	return h
}

// Lookup consumes one or more bytes from e's current code (recursing through
// subsets) and returns the resolved handler, defaulting to executeUnknown
// for any unregistered cell (spec.md §4.6).
func (h *Handlers) Lookup(e *Engine) (Handler, error) {
	b, err := e.cc.Code.LoadUint(8)
	if err != nil {
		return nil, err
	}
	e.lastByte = byte(b)
	entry := h.entries[b]
	if entry.subset != nil {
		return entry.subset.Lookup(e)
	}
	if !entry.set {
		return executeUnknown, nil
	}
	return entry.direct, nil
}

// executeUnknown is installed at every unregistered dispatch cell.
func executeUnknown(e *Engine) error {
	return &Exception{Code: InvalidOpcode}
}
