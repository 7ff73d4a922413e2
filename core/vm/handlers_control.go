// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// handlers_control.go covers continuation control flow: unconditional jump
// and call, both returns, the loop-setup family (spec.md §4.7's four
// trampolines are built here and handed to Engine.Switch, which is where
// the actual savelist/stack-transfer machinery lives), TRY, and the RETALT
// early-exit primitive the boundary scenarios exercise.

func opPushCont(e *Engine) error {
	in := NewInstr("PUSHCONT").WithBytestring(0, 4, 0, 0)
	if err := e.LoadInstruction(in); err != nil {
		return err
	}
	e.cc.Stack.Push(ContinuationItem(NewOrdinary(in.Params[0].Slice)))
	return nil
}

func opJmpX(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("JMPX")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	cont, err := item.AsContinuation()
	if err != nil {
		return err
	}
	return e.Switch(cont)
}

// opCallX transfers control to the popped continuation, installing a fresh
// return point (the caller's remaining code) as that continuation's c(0) so
// an ordinary RET there comes back here.
func opCallX(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("CALLX")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	cont, err := item.AsContinuation()
	if err != nil {
		return err
	}
	returnPoint := NewOrdinary(e.cc.Code)
	target := *cont
	target.Save = cont.Save.Clone()
	if err := target.Save.Put(RegC0, ContinuationItem(returnPoint)); err != nil {
		return err
	}
	return e.Switch(&target)
}

func opRet(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("RET")); err != nil {
		return err
	}
	c0, ok := e.ctrls.Get(RegC0)
	if !ok {
		return &quitSignal{exit: int32(NormalTermination)}
	}
	cont, err := c0.AsContinuation()
	if err != nil {
		return err
	}
	return e.Switch(cont)
}

func opRetAlt(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("RETALT")); err != nil {
		return err
	}
	c1, ok := e.ctrls.Get(RegC1)
	if !ok {
		return &quitSignal{exit: int32(AlternativeTermination)}
	}
	cont, err := c1.AsContinuation()
	if err != nil {
		return err
	}
	return e.Switch(cont)
}

// opIfRetAlt implements IFRETALT: pop a flag, and on a nonzero value behave
// exactly like RETALT; otherwise fall through.
func opIfRetAlt(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("IFRETALT")); err != nil {
		return err
	}
	flag, err := e.popInt()
	if err != nil {
		return err
	}
	if flag.IsZero() {
		return nil
	}
	c1, ok := e.ctrls.Get(RegC1)
	if !ok {
		return &quitSignal{exit: int32(AlternativeTermination)}
	}
	cont, err := c1.AsContinuation()
	if err != nil {
		return err
	}
	return e.Switch(cont)
}

func opRepeat(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("REPEAT")); err != nil {
		return err
	}
	n, err := e.popInt()
	if err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	body, err := item.AsContinuation()
	if err != nil {
		return err
	}
	count, _ := n.Int64()
	if count <= 0 {
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return &quitSignal{exit: int32(NormalTermination)}
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return cerr
		}
		return e.Switch(cont)
	}
	loop := NewRepeatLoop(body, count)
	e.seedLoopReturn(loop)
	// The trampoline's own implicit step only ever decides whether to run
	// ANOTHER iteration, so the first one has to be entered directly:
	// switching to the bare trampoline here would let its Counter>1 gate
	// skip running body at all when count==1.
	bodyEntry := body.WithSave0(ContinuationItem(loop))
	return e.Switch(bodyEntry)
}

func opUntil(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("UNTIL")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	body, err := item.AsContinuation()
	if err != nil {
		return err
	}
	loop := NewUntilLoop(body)
	e.seedLoopReturn(loop)
	// UNTIL is do-while: body always runs once before its exit flag is ever
	// consulted, so the first entry switches straight into body rather than
	// the bare trampoline (whose implicit step only judges the flag).
	bodyEntry := body.WithSave0(ContinuationItem(loop))
	return e.Switch(bodyEntry)
}

// opWhile expects the condition continuation beneath the body continuation
// on the stack (pushed cond, then body, matching how a `cond PUSHCONT body
// PUSHCONT WHILE` sequence lays them out).
func opWhile(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("WHILE")); err != nil {
		return err
	}
	bodyItem, err := e.popItem()
	if err != nil {
		return err
	}
	condItem, err := e.popItem()
	if err != nil {
		return err
	}
	body, err := bodyItem.AsContinuation()
	if err != nil {
		return err
	}
	cond, err := condItem.AsContinuation()
	if err != nil {
		return err
	}
	loop := NewWhileLoop(body, cond)
	e.seedLoopReturn(loop)
	// cond must be evaluated before every iteration including the first, so
	// entry switches straight into cond rather than the bare trampoline
	// (whose implicit step only ever judges a value already sitting on the
	// stack from a previous cond run).
	condEntry := cond.WithSave0(ContinuationItem(loop))
	return e.Switch(condEntry)
}

func opAgain(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("AGAIN")); err != nil {
		return err
	}
	item, err := e.popItem()
	if err != nil {
		return err
	}
	body, err := item.AsContinuation()
	if err != nil {
		return err
	}
	loop := NewAgainLoop(body)
	e.seedLoopReturn(loop)
	return e.Switch(loop)
}

// opTry installs the popped handler continuation as c(2) and enters the
// popped body continuation wrapped as a TryCatch frame, so the body's
// exhaustion clears c(2) before falling through (spec.md §4.1 "TryCatch").
func opTry(e *Engine) error {
	if err := e.LoadInstruction(NewInstr("TRY")); err != nil {
		return err
	}
	handlerItem, err := e.popItem()
	if err != nil {
		return err
	}
	bodyItem, err := e.popItem()
	if err != nil {
		return err
	}
	handler, err := handlerItem.AsContinuation()
	if err != nil {
		return err
	}
	body, err := bodyItem.AsContinuation()
	if err != nil {
		return err
	}
	if err := e.ctrls.Put(RegC2, ContinuationItem(handler)); err != nil {
		return err
	}
	return e.Switch(NewTryCatch(body.Code))
}
