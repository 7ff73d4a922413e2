// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// handlers_stack.go is a representative slice of the stack-manipulation
// opcode family (spec.md §1 treats the full catalog as an external leaf
// handler set); these cover what the boundary scenarios in engine_test.go
// actually exercise.

func opDup(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("DUP")); err != nil {
		return err
	}
	return e.cc.Stack.Dup(0)
}

func opDrop(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("DROP")); err != nil {
		return err
	}
	return e.cc.Stack.Drop(1)
}

func opSwap(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("SWAP")); err != nil {
		return err
	}
	return e.cc.Stack.Swap(0, 1)
}

func opOver(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("OVER")); err != nil {
		return err
	}
	return e.cc.Stack.Dup(1)
}

// opPushInt16 handles PUSHINT for the 16-bit signed immediate encoding
// (spec.md §4.5 RangeS16).
func opPushInt16(e *Engine) error {
	in := NewInstr("PUSHINT").WithIntegerRange(RangeS16)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	e.cc.Stack.Push(IntItem(NewInt(in.Int(0))))
	return nil
}

// opPushIntTiny handles the compact -5..10 PUSHINT encoding used by literals
// small enough to fit in a 4-bit field.
func opPushIntTiny(e *Engine) error {
	in := NewInstr("PUSHINT").WithIntegerRange(RangeN5to11)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	e.cc.Stack.Push(IntItem(NewInt(in.Int(0))))
	return nil
}

func opXchg(e *Engine) error {
	in := NewInstr("XCHG").WithStackRegister(SelLastByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.Swap(0, int(in.Int(0)))
}

// opPop implements POP s(i): pop the top item and store it into position i
// of the resulting stack (spec.md §4.3). The pop is registered for undo, so
// a failing Set (i out of range) leaves the stack exactly as it was.
func opPop(e *Engine) error {
	in := NewInstr("POP").WithStackRegister(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	v, err := e.popItem()
	if err != nil {
		return err
	}
	return e.cc.Stack.Set(int(in.Int(0)), v)
}

// opReverse implements REVERSE n,from (spec.md §4.3 block operations),
// grounded on Stack.Reverse.
func opReverse(e *Engine) error {
	in := NewInstr("REVERSE").WithStackRegisterPair(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.Reverse(int(in.Int(0)), int(in.Params[0].Idx))
}

// opBlkSwap implements BLKSWAP i,j, grounded on Stack.BlkSwap.
func opBlkSwap(e *Engine) error {
	in := NewInstr("BLKSWAP").WithStackRegisterPair(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.BlkSwap(int(in.Int(0)), int(in.Params[0].Idx))
}

// opBlkPush implements BLKPUSH n,idx, grounded on Stack.BlkPush.
func opBlkPush(e *Engine) error {
	in := NewInstr("BLKPUSH").WithStackRegisterPair(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.BlkPush(int(in.Int(0)), int(in.Params[0].Idx))
}

// opBlkDrop2 implements BLKDROP2 n,from, grounded on Stack.BlkDrop2.
func opBlkDrop2(e *Engine) error {
	in := NewInstr("BLKDROP2").WithStackRegisterPair(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.BlkDrop2(int(in.Int(0)), int(in.Params[0].Idx))
}

// opRoll implements ROLL idx, grounded on Stack.Roll.
func opRoll(e *Engine) error {
	in := NewInstr("ROLL").WithStackRegister(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.Roll(int(in.Int(0)))
}

// opRollRev implements ROLLREV idx (aka -ROLL idx), grounded on Stack.RollRev.
func opRollRev(e *Engine) error {
	in := NewInstr("ROLLREV").WithStackRegister(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.RollRev(int(in.Int(0)))
}

// opPick implements PICK idx, grounded on Stack.Pick.
func opPick(e *Engine) error {
	in := NewInstr("PICK").WithStackRegister(SelNextByte)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	return e.cc.Stack.Pick(int(in.Int(0)))
}
