// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// handlers_arith.go wires just enough of the arithmetic family (spec.md §1
// scopes the full set out as an external leaf handler library) for the
// REPEAT/WHILE/UNTIL programs in engine_test.go: DEC, INC, MUL.

func opDec(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("DEC")); err != nil {
		return err
	}
	v, err := e.popInt()
	if err != nil {
		return err
	}
	r, err := Dec(v, false)
	if err != nil {
		return err
	}
	e.cc.Stack.Push(IntItem(r))
	return nil
}

func opInc(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("INC")); err != nil {
		return err
	}
	v, err := e.popInt()
	if err != nil {
		return err
	}
	r, err := Inc(v, false)
	if err != nil {
		return err
	}
	e.cc.Stack.Push(IntItem(r))
	return nil
}

// opMul pops b then a (top-first); if a is missing or wrong-typed, the undo
// registered for b's pop puts it straight back so a one-item stack is left
// untouched rather than one item short (spec.md §8 universal invariant).
func opMul(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("MUL")); err != nil {
		return err
	}
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	r, err := Mul(a, b, false)
	if err != nil {
		return err
	}
	e.cc.Stack.Push(IntItem(r))
	return nil
}
