// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"fmt"

	"github.com/tvmgo/tvm/core/cell"
)

// Kind discriminates the variants of a StackItem (spec.md §3).
type Kind int

const (
	KindNone Kind = iota
	KindInteger
	KindCell
	KindSlice
	KindBuilder
	KindContinuation
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "Null"
	case KindInteger:
		return "Integer"
	case KindCell:
		return "Cell"
	case KindSlice:
		return "Slice"
	case KindBuilder:
		return "Builder"
	case KindContinuation:
		return "Continuation"
	case KindTuple:
		return "Tuple"
	default:
		return "?"
	}
}

// StackItem is the tagged union every stack slot, savelist register, and
// continuation argument holds. It is intentionally a plain value (copyable),
// matching the way spec.md §3 describes items moving between stacks without
// ownership transfer of the underlying data structures.
type StackItem struct {
	kind    Kind
	integer *IntegerData
	cell    *cell.Cell
	slice   *cell.Slice
	builder *cell.Builder
	cont    *ContinuationData
	tuple   []StackItem
}

func NoneItem() StackItem { return StackItem{kind: KindNone} }
func IntItem(v *IntegerData) StackItem { return StackItem{kind: KindInteger, integer: v} }
func CellItem(v *cell.Cell) StackItem { return StackItem{kind: KindCell, cell: v} }
func SliceItem(v *cell.Slice) StackItem { return StackItem{kind: KindSlice, slice: v} }
func BuilderItem(v *cell.Builder) StackItem { return StackItem{kind: KindBuilder, builder: v} }
func ContinuationItem(v *ContinuationData) StackItem {
	return StackItem{kind: KindContinuation, cont: v}
}
func TupleItem(v []StackItem) StackItem { return StackItem{kind: KindTuple, tuple: v} }

// Kind reports which variant this item holds.
func (s StackItem) Kind() Kind { return s.kind }

// IsNone reports whether the item is the Null placeholder.
func (s StackItem) IsNone() bool { return s.kind == KindNone }

func typeCheck(got, want Kind) error {
	if got != want {
		return &Exception{Code: TypeCheck, Number: int32(want)}
	}
	return nil
}

// AsInteger returns the wrapped IntegerData, raising TypeCheck otherwise.
func (s StackItem) AsInteger() (*IntegerData, error) {
	if err := typeCheck(s.kind, KindInteger); err != nil {
		return nil, err
	}
	return s.integer, nil
}

// AsCell returns the wrapped Cell, raising TypeCheck otherwise.
func (s StackItem) AsCell() (*cell.Cell, error) {
	if err := typeCheck(s.kind, KindCell); err != nil {
		return nil, err
	}
	return s.cell, nil
}

// AsSlice returns the wrapped Slice, raising TypeCheck otherwise.
func (s StackItem) AsSlice() (*cell.Slice, error) {
	if err := typeCheck(s.kind, KindSlice); err != nil {
		return nil, err
	}
	return s.slice, nil
}

// AsBuilder returns the wrapped Builder, raising TypeCheck otherwise.
func (s StackItem) AsBuilder() (*cell.Builder, error) {
	if err := typeCheck(s.kind, KindBuilder); err != nil {
		return nil, err
	}
	return s.builder, nil
}

// AsContinuation returns the wrapped ContinuationData, raising TypeCheck otherwise.
func (s StackItem) AsContinuation() (*ContinuationData, error) {
	if err := typeCheck(s.kind, KindContinuation); err != nil {
		return nil, err
	}
	return s.cont, nil
}

// AsTuple returns the wrapped tuple slice, raising TypeCheck otherwise.
func (s StackItem) AsTuple() ([]StackItem, error) {
	if err := typeCheck(s.kind, KindTuple); err != nil {
		return nil, err
	}
	return s.tuple, nil
}

// Equal is structural equality (spec.md §3): Integers by value, Cells by
// representation hash, Tuples element-wise; Slices/Builders/Continuations
// compare by identity of their underlying cell/reference since they carry
// cursor or execution state that has no meaningful value equality.
func (s StackItem) Equal(o StackItem) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindNone:
		return true
	case KindInteger:
		return s.integer.Equal(o.integer)
	case KindCell:
		return s.cell.Equal(o.cell)
	case KindTuple:
		if len(s.tuple) != len(o.tuple) {
			return false
		}
		for i := range s.tuple {
			if !s.tuple[i].Equal(o.tuple[i]) {
				return false
			}
		}
		return true
	case KindSlice:
		return s.slice == o.slice
	case KindBuilder:
		return s.builder == o.builder
	case KindContinuation:
		return s.cont == o.cont
	default:
		return false
	}
}

func (s StackItem) String() string {
	switch s.kind {
	case KindNone:
		return "Null"
	case KindInteger:
		return s.integer.String()
	case KindCell:
		return s.cell.String()
	case KindSlice:
		return fmt.Sprintf("Slice{%d bits, %d refs left}", s.slice.RemainingBits(), s.slice.RemainingRefs())
	case KindBuilder:
		return fmt.Sprintf("Builder{%d bits, %d refs}", s.builder.BitLen(), s.builder.RefCount())
	case KindContinuation:
		return "Continuation"
	case KindTuple:
		return fmt.Sprintf("Tuple(%d)", len(s.tuple))
	default:
		return "?"
	}
}
