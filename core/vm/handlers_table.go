// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// NewStandardHandlers registers the representative opcode subset this
// package ships (spec.md §1 scopes the full catalog — arithmetic, crypto,
// dictionaries, blockchain actions, debug printing — out as an external
// leaf handler library consumed through this same Handlers table). Byte
// assignments below are this package's own, not a literal reproduction of
// the wider protocol's opcode map.
func NewStandardHandlers() *Handlers {
	h := NewHandlers()

	h.Set(0x01, opSwap)
	h.Set(0x02, opDup)
	h.Set(0x03, opOver)
	h.Set(0x04, opDrop)
	h.Set(0x05, opPop)
	h.Set(0x06, opReverse)
	h.Set(0x07, opBlkSwap)
	h.Set(0x08, opRoll)
	h.Set(0x09, opRollRev)
	h.Set(0x0A, opPick)
	h.Set(0x0B, opBlkPush)
	h.Set(0x0C, opBlkDrop2)
	h.Set(0x0D, opSliceSkipFirst)
	h.Set(0x0E, opPreloadSlice)
	h.SetRange(0x11, 0x20, opXchg)

	h.Set(0x40, opDec)
	h.Set(0x41, opInc)
	h.Set(0x42, opMul)

	h.Set(0x50, opJmpX)
	h.Set(0x51, opCallX)
	h.Set(0x52, opRet)
	h.Set(0x53, opRetAlt)
	h.Set(0x54, opIfRetAlt)
	h.Set(0x55, opRepeat)
	h.Set(0x56, opUntil)
	h.Set(0x57, opWhile)
	h.Set(0x58, opAgain)
	h.Set(0x59, opTry)

	h.Set(0x60, opNewc)
	h.Set(0x61, opEndc)
	h.Set(0x62, opCtos)
	h.Set(0x63, opStSliceConst)
	h.Set(0x64, opPushCtr)
	h.Set(0x65, opPopCtr)
	h.Set(0x6E, opEnds)

	h.Set(0x66, opThrow)
	h.Set(0x67, opThrowAny)
	h.Set(0x68, opThrowIf)
	h.Set(0x6D, opThrowArg)

	h.Set(0x69, opGetParam)
	h.Set(0x6A, opRand)
	h.Set(0x6B, opDebug)
	h.Set(0x6C, opDebugStr)

	h.Set(0x70, opPushIntTiny)
	h.Set(0x80, opPushInt16)
	h.Set(0x8F, opPushCont)

	return h
}
