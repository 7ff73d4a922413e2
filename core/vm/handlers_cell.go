// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/tvmgo/tvm/core/cell"

// handlers_cell.go covers the slice of the cell-manipulation family needed to
// build and read back builders, plus the control-register accessors COMMIT
// relies on (the cell data-structure library itself is out of scope,
// spec.md §1 — these handlers only call through Engine's GasConsumer methods).

func opNewc(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("NEWC")); err != nil {
		return err
	}
	e.cc.Stack.Push(BuilderItem(cell.NewBuilder()))
	return nil
}

func opEndc(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("ENDC")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	b, err := item.AsBuilder()
	if err != nil {
		return err
	}
	e.cc.Stack.Push(CellItem(e.FinalizeCell(b)))
	return nil
}

func opCtos(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("CTOS")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	c, err := item.AsCell()
	if err != nil {
		return err
	}
	e.cc.Stack.Push(SliceItem(e.LoadCell(c)))
	return nil
}

// opEnds implements ENDS: assert the slice on top of the stack has nothing
// left to read. The strict (must-fully-consume) behavior is this engine's
// baseline (spec.md §9); CapTvmV19 gates the historical permissive variant
// that accepts a non-empty remainder, the one representative handler this
// package wires to Config.Caps (DESIGN.md "Open Question: capability flags").
func opEnds(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("ENDS")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	sl, err := item.AsSlice()
	if err != nil {
		return err
	}
	if !sl.IsEmpty() && !e.cfg.Caps.Has(CapTvmV19) {
		return &Exception{Code: CellUnderflow}
	}
	return nil
}

// opStSliceConst stores an inline bitstring (a 7-bit length, then that many
// data bits; no cell references) into the builder on top of the stack.
func opStSliceConst(e *Engine) error {
	in := NewInstr("STSLICECONST").WithBitstring(0, 7, 0, 0)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	b, err := item.AsBuilder()
	if err != nil {
		return err
	}
	nb := b.Clone()
	if err := nb.StoreSlice(in.Params[0].Slice); err != nil {
		return err
	}
	e.cc.Stack.Push(BuilderItem(nb))
	return nil
}

// opSliceSkipFirst implements SDSKIPFIRST n: drop the first n data bits of
// the slice on top of the stack in place, keeping its references untouched
// (spec.md §4.5's Shrink collaborator, narrowing a slice's own window
// rather than extracting an operand from the code stream).
func opSliceSkipFirst(e *Engine) error {
	in := NewInstr("SDSKIPFIRST").WithIntegerRange(Range0to256)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	n := int(in.Int(0))
	item, err := e.popItem()
	if err != nil {
		return err
	}
	sl, err := item.AsSlice()
	if err != nil {
		return err
	}
	nsl := sl.Clone()
	if err := nsl.Shrink(n, nsl.RemainingBits(), 0, nsl.RemainingRefs()); err != nil {
		return err
	}
	e.cc.Stack.Push(SliceItem(nsl))
	return nil
}

// opPreloadSlice implements a PLDSLICE-style primitive: peek at the first n
// bits of the slice on top of the stack as an independent sub-window,
// leaving the original slice's own cursor untouched (spec.md §4.5's
// SubSlice collaborator). Since Get (not Pop) reads the source, nothing
// needs to be undone if the type check fails.
func opPreloadSlice(e *Engine) error {
	in := NewInstr("PLDSLICE").WithIntegerRange(Range0to256)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	n := int(in.Int(0))
	item, err := e.cc.Stack.Get(0)
	if err != nil {
		return err
	}
	sl, err := item.AsSlice()
	if err != nil {
		return err
	}
	sub, err := sl.SubSlice(0, n, 0, 0)
	if err != nil {
		return err
	}
	e.cc.Stack.Push(SliceItem(sub))
	return nil
}

func opPushCtr(e *Engine) error {
	in := NewInstr("PUSHCTR").WithControlRegister()
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	idx := int(in.Int(0))
	v, ok := e.ctrls.Get(idx)
	if !ok {
		return &Exception{Code: RangeCheck, Number: int32(idx)}
	}
	e.cc.Stack.Push(v)
	return nil
}

func opPopCtr(e *Engine) error {
	in := NewInstr("POPCTR").WithControlRegister()
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	idx := int(in.Int(0))
	v, err := e.popItem()
	if err != nil {
		return err
	}
	return e.ctrls.Put(idx, v)
}
