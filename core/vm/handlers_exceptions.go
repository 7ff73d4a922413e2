// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// handlers_exceptions.go covers THROW and its variants: returning an
// *Exception from a handler is all Execute needs to route it through
// Engine.raiseException and, from there, c(2) (spec.md §4.8).

func opThrow(e *Engine) error {
	in := NewInstr("THROW").WithIntegerRange(Range0to256)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return &Exception{Code: UnknownError, Number: int32(in.Int(0))}
}

// opThrowAny implements THROWANY: the exception number comes from the top
// of the stack rather than an immediate, and the value beneath it becomes
// the exception payload the handler sees pushed back alongside the number
// (spec.md §8 boundary scenario 2: `PUSHINT 42 PUSHINT 7 THROWANY` hands the
// c(2) handler a stack of `[42, 7]`).
func opThrowAny(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("THROWANY")); err != nil {
		return err
	}
	n, err := e.popInt()
	if err != nil {
		return err
	}
	v, err := e.popItem()
	if err != nil {
		return err
	}
	code, _ := n.Int64()
	return &Exception{Code: UnknownError, Number: int32(code), Value: v}
}

// opThrowArg implements THROWARG n: like THROW n but the payload value comes
// off the stack instead of defaulting to zero.
func opThrowArg(e *Engine) error {
	in := NewInstr("THROWARG").WithIntegerRange(Range0to256)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	v, err := e.popItem()
	if err != nil {
		return err
	}
	return &Exception{Code: UnknownError, Number: int32(in.Int(0)), Value: v}
}

func opThrowIf(e *Engine) error {
	in := NewInstr("THROWIF").WithIntegerRange(Range0to256)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	flag, err := e.popInt()
	if err != nil {
		return err
	}
	if flag.IsZero() {
		return nil
	}
	return &Exception{Code: UnknownError, Number: int32(in.Int(0))}
}
