// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// Control register indices that carry meaning in this engine (spec.md §3
// "SaveList"). c(6) and c(8)-c(15) exist in the wider protocol but have no
// reader/writer among the in-scope handlers, so they are left unsupported
// here rather than faked.
const (
	RegC0 = 0 // next continuation
	RegC1 = 1 // alternative next continuation
	RegC2 = 2 // exception handler
	RegC3 = 3 // current dictionary continuation
	RegC4 = 4 // persistent data root
	RegC5 = 5 // actions root
	RegC7 = 7 // smart-contract context tuple
)

// SaveList is a sparse map over the control register indices this engine
// understands, each holding a StackItem whose Kind is constrained by the
// register (spec.md §3 "each index accepts only its own kind").
type SaveList struct {
	regs map[int]StackItem
}

// NewSaveList returns an empty SaveList.
func NewSaveList() SaveList { return SaveList{regs: make(map[int]StackItem)} }

func registerKind(i int) (Kind, bool) {
	switch i {
	case RegC0, RegC1, RegC2, RegC3:
		return KindContinuation, true
	case RegC4, RegC5:
		return KindCell, true
	case RegC7:
		return KindTuple, true
	default:
		return KindNone, false
	}
}

// Get returns the value stored at index i, if any.
func (s SaveList) Get(i int) (StackItem, bool) {
	if s.regs == nil {
		return StackItem{}, false
	}
	v, ok := s.regs[i]
	return v, ok
}

// Put stores v at index i, enforcing the per-register type constraint.
func (s *SaveList) Put(i int, v StackItem) error {
	want, ok := registerKind(i)
	if !ok {
		return &Exception{Code: RangeCheck, Number: int32(i)}
	}
	if v.Kind() != want {
		return &Exception{Code: TypeCheck, Number: int32(i)}
	}
	if s.regs == nil {
		s.regs = make(map[int]StackItem)
	}
	s.regs[i] = v
	return nil
}

// Clear removes any value stored at index i.
func (s *SaveList) Clear(i int) {
	if s.regs != nil {
		delete(s.regs, i)
	}
}

// Clone returns an independent copy, used whenever a continuation's savelist
// must be captured or merged without aliasing the source (spec.md §4.3
// "switch atomicity").
func (s SaveList) Clone() SaveList {
	out := make(map[int]StackItem, len(s.regs))
	for k, v := range s.regs {
		out[k] = v
	}
	return SaveList{regs: out}
}

// Merge copies every register set in other into s that is not already set in
// s, leaving s's own entries untouched. Setup uses it to fill in the default
// registers that a caller-supplied initial SaveList leaves unset.
func (s *SaveList) Merge(other SaveList) {
	if other.regs == nil {
		return
	}
	if s.regs == nil {
		s.regs = make(map[int]StackItem)
	}
	for k, v := range other.regs {
		if _, exists := s.regs[k]; !exists {
			s.regs[k] = v
		}
	}
}
