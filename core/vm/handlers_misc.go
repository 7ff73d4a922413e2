// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// handlers_misc.go covers the environment-query and debug-output family:
// reading the smart-contract context tuple out of c(7), and the
// DEBUG/DEBUGSTR nesting toggle Engine.SwitchDebug/Debug/FlushDebug back.

func opGetParam(e *Engine) error {
	in := NewInstr("GETPARAM").WithIntegerRange(Range0to15)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	idx := int(in.Int(0))
	c7item, ok := e.ctrls.Get(RegC7)
	if !ok {
		return &Exception{Code: RangeCheck, Number: int32(idx)}
	}
	outer, err := c7item.AsTuple()
	if err != nil {
		return err
	}
	if len(outer) == 0 {
		return &Exception{Code: RangeCheck, Number: int32(idx)}
	}
	params, err := outer[0].AsTuple()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(params) {
		return &Exception{Code: RangeCheck, Number: int32(idx)}
	}
	e.cc.Stack.Push(params[idx])
	return nil
}

// opRand stands in for RAND: genuine entropy sourcing is outside this
// engine's boundary (spec.md §5 excludes external I/O channels), so the
// value is derived deterministically from run state purely to give the
// representative handler set something runnable to exercise.
func opRand(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("RAND")); err != nil {
		return err
	}
	mixed := uint64(e.step)*2654435761 + uint64(e.gas.Used())*40503 + 1
	e.cc.Stack.Push(IntItem(NewInt(int64(mixed & 0x7FFFFFFFFFFFFFFF))))
	return nil
}

func opDebug(e *Engine) error {
	in := NewInstr("DEBUG").WithIntegerRange(Range0to15)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	switch in.Int(0) {
	case 0:
		e.SwitchDebug(true)
	case 1:
		e.SwitchDebug(false)
	}
	return nil
}

func opDebugStr(e *Engine) error {
	in := NewInstr("DEBUGSTR").WithBytestring(0, 4, 0, 0)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	e.Debug(string(in.Params[0].Slice.Cell().Bytes()))
	return nil
}
