// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package vm implements the fetch/decode/dispatch execution engine: the
// stack and control-register machinery, gas metering, the instruction
// decoder, and the two-level dispatch table. Individual opcode bodies
// beyond a representative set live in the handlers_*.go files; a full
// opcode set (arithmetic, crypto, dictionaries, blockchain actions, debug
// printing) is the domain of a leaf-handler library this package consumes
// through the Handlers table, not reimplements.
package vm

import (
	"fmt"

	"github.com/tvmgo/tvm/core/cell"
	"github.com/tvmgo/tvm/internal/log"
)

// CommittedState is the published output of a run: the persistent storage
// root (c4) and outbound action list (c5) as of the last COMMIT.
type CommittedState struct {
	C4        *cell.Cell
	C5        *cell.Cell
	Committed bool
}

// Engine is one run's process-wide state (spec.md §3 "Engine"). Nothing
// here is shared across runs; multiple Engines may coexist.
type Engine struct {
	cc     *ContinuationData
	ctrls  SaveList
	gas    *Gas
	cfg    Config

	cmdCode  *cell.Slice
	lastByte byte
	cmd      *Instruction
	undo     []func()

	visited map[cell.Hash]bool
	cstate  CommittedState

	step int64
	time int64

	debugNesting int
	debugBuf     []byte

	log *log.Logger
}

// Setup builds a fresh Engine ready to Execute (spec.md §6 "Defaults
// installed by setup"). initCtrls entries, if any, are installed on top of
// the defaults (so callers can pre-seed c(7) and friends for test fixtures).
func Setup(code *cell.Slice, cfg Config, initCtrls *SaveList, initStack *Stack, gas *Gas) *Engine {
	if cfg.Handlers == nil {
		cfg.Handlers = NewHandlers()
	}
	e := &Engine{
		cfg:     cfg,
		gas:     gas,
		visited: make(map[cell.Hash]bool),
		log:     log.New("pkg", "vm"),
	}
	e.ctrls = NewSaveList()
	_ = e.ctrls.Put(RegC0, ContinuationItem(NewQuit(int32(NormalTermination))))
	_ = e.ctrls.Put(RegC1, ContinuationItem(NewQuit(int32(AlternativeTermination))))
	_ = e.ctrls.Put(RegC3, ContinuationItem(NewOrdinary(code.Clone())))
	_ = e.ctrls.Put(RegC4, CellItem(cell.NewEmpty()))
	_ = e.ctrls.Put(RegC5, CellItem(cell.NewEmpty()))
	_ = e.ctrls.Put(RegC7, TupleItem([]StackItem{TupleItem(nil)}))
	if initCtrls != nil {
		merged := initCtrls.Clone()
		merged.Merge(e.ctrls)
		e.ctrls = merged
	}
	stack := initStack
	if stack == nil {
		stack = NewStack()
	}
	e.cc = NewOrdinary(code)
	e.cc.Stack = stack
	return e
}

// Gas returns the engine's gas meter.
func (e *Engine) Gas() *Gas { return e.gas }

// GasUsed reports the cumulative gas billed.
func (e *Engine) GasUsed() int64 { return e.gas.Used() }

// GasRemaining reports the unused portion of the gas limit.
func (e *Engine) GasRemaining() int64 { return e.gas.Remaining() }

// Stack returns the current continuation's data stack.
func (e *Engine) Stack() *Stack { return e.cc.Stack }

// Ctrls exposes the engine-level save list (used by PUSHCTR/POPCTR handlers).
func (e *Engine) Ctrls() *SaveList { return &e.ctrls }

// WithdrawStack returns a snapshot of the final stack after Execute returns.
func (e *Engine) WithdrawStack() []StackItem {
	return append([]StackItem{}, e.cc.Stack.Items()...)
}

// CommittedState returns the last COMMIT snapshot.
func (e *Engine) CommittedState() CommittedState { return e.cstate }

// Step reports the monotonic count of opcodes executed so far.
func (e *Engine) Step() int64 { return e.step }

// Time returns the monotonic counter handlers may read (NOW-style primitives).
func (e *Engine) Time() int64 { return e.time }

// addUndo registers an inverse action to run if the current instruction
// ultimately fails (spec.md §4.8 "undo log"). Handlers must call this
// before each mutation that would otherwise leave partial state on failure.
func (e *Engine) addUndo(f func()) { e.undo = append(e.undo, f) }

func (e *Engine) runUndo() {
	for i := len(e.undo) - 1; i >= 0; i-- {
		e.undo[i]()
	}
	e.undo = nil
}

// popItem pops the top stack item and registers an undo that restores it,
// so a handler that pops before a later fallible step (a type check, a
// second pop, a register write) leaves no trace if that later step fails
// (spec.md §8 "after any failed opcode, stack deltas are exactly zero").
// Handlers should use this (or popInt) instead of calling e.cc.Stack.Pop
// directly whenever anything fallible follows the pop.
func (e *Engine) popItem() (StackItem, error) {
	v, err := e.cc.Stack.Pop()
	if err != nil {
		return StackItem{}, err
	}
	e.addUndo(func() { e.cc.Stack.Push(v) })
	return v, nil
}

// popInt pops and type-checks an Integer, with the same undo guarantee as
// popItem: a failed type check still rolls back the pop.
func (e *Engine) popInt() (*IntegerData, error) {
	v, err := e.popItem()
	if err != nil {
		return nil, err
	}
	return v.AsInteger()
}

// touchCell records a cell's representation hash as visited and reports
// whether this is the first time it has been seen this run (spec.md §3
// "visited_cells").
func (e *Engine) touchCell(c *cell.Cell) bool {
	h := c.RepresentationHash()
	if e.visited[h] {
		return false
	}
	e.visited[h] = true
	return true
}

// LoadCell implements the GasConsumer "load_cell" collaborator method
// (spec.md §6): bills first-touch or subsequent-touch price and returns a
// fresh read cursor.
func (e *Engine) LoadCell(c *cell.Cell) *cell.Slice {
	e.gas.UseGas(LoadCellPrice(e.touchCell(c)))
	return cell.NewSlice(c)
}

// FinalizeCell implements "finalize_cell": bills the finalize price.
func (e *Engine) FinalizeCell(b *cell.Builder) *cell.Cell {
	e.gas.UseGas(FinalizeCellPrice())
	return b.Finalize()
}

// FinalizeCellAndLoad implements "finalize_cell_and_load".
func (e *Engine) FinalizeCellAndLoad(b *cell.Builder) *cell.Slice {
	return e.LoadCell(e.FinalizeCell(b))
}

// Commit snapshots c(4) and c(5) as the new committed state (the COMMIT primitive).
func (e *Engine) Commit() error {
	c4item, _ := e.ctrls.Get(RegC4)
	c4, err := c4item.AsCell()
	if err != nil {
		return err
	}
	c5item, _ := e.ctrls.Get(RegC5)
	c5, err := c5item.AsCell()
	if err != nil {
		return err
	}
	e.cstate = CommittedState{C4: c4, C5: c5, Committed: true}
	return nil
}

// SwitchDebug toggles the debug nesting counter used to gate DEBUG/DEBUGSTR
// handlers (spec.md §1 treats the bodies as external; only the nesting
// bookkeeping lives here).
func (e *Engine) SwitchDebug(on bool) {
	if on {
		e.debugNesting++
	} else if e.debugNesting > 0 {
		e.debugNesting--
	}
}

// DebugEnabled reports whether debug output is currently active.
func (e *Engine) DebugEnabled() bool { return e.debugNesting > 0 }

// Debug appends text to the debug buffer when debug output is active.
func (e *Engine) Debug(text string) {
	if e.DebugEnabled() {
		e.debugBuf = append(e.debugBuf, text...)
	}
}

// FlushDebug returns and clears the accumulated debug buffer.
func (e *Engine) FlushDebug() string {
	s := string(e.debugBuf)
	e.debugBuf = nil
	return s
}

// trace emits one line per channel enabled in cfg.Trace: the formatted step
// line for TraceCode, and gas, stack-depth and control-register summaries for
// TraceGas, TraceStack and TraceCtrls.
func (e *Engine) trace(format string, args ...interface{}) {
	t := e.cfg.Tracer
	if t == nil {
		return
	}
	if e.cfg.Trace&TraceCode != 0 {
		t.CaptureStep(e.step, fmt.Sprintf(format, args...))
	}
	if e.cfg.Trace&TraceGas != 0 {
		t.CaptureStep(e.step, fmt.Sprintf("gas used=%d remaining=%d", e.gas.Used(), e.gas.Remaining()))
	}
	if e.cfg.Trace&TraceStack != 0 {
		t.CaptureStep(e.step, fmt.Sprintf("stack depth=%d", e.cc.Stack.Len()))
	}
	if e.cfg.Trace&TraceCtrls != 0 {
		t.CaptureStep(e.step, fmt.Sprintf("ctrls set=%d", len(e.ctrls.regs)))
	}
}

// Execute runs the engine to termination (spec.md §4.1). It returns the
// integer exit code on normal/alternative termination; a non-nil error
// means a fatal, uncaught exception (including OutOfGas) ended the run.
func (e *Engine) Execute() (int32, error) {
	for {
		for e.cc.Code.RemainingBits() == 0 {
			terminal, exit, err := e.implicitStep()
			if err != nil {
				done, exitCode, ferr := e.raiseException(err)
				if ferr != nil {
					return 0, ferr
				}
				if done {
					return exitCode, nil
				}
				continue
			}
			if terminal {
				if cerr := e.Commit(); cerr != nil {
					log.Debug("commit on implicit termination failed", "err", cerr)
				}
				return exit, nil
			}
		}

		e.cmdCode = e.cc.Code.Clone()
		e.cmd = nil
		e.undo = nil

		handler, err := e.cfg.Handlers.Lookup(e)
		if err == nil {
			err = handler(e)
		}
		if qs, ok := err.(*quitSignal); ok {
			if cerr := e.Commit(); cerr != nil {
				log.Debug("commit on handler-initiated quit failed", "err", cerr)
			}
			return qs.exit, nil
		}
		if err != nil {
			done, exitCode, ferr := e.raiseException(err)
			if ferr != nil {
				return 0, ferr
			}
			if done {
				return exitCode, nil
			}
			continue
		}

		e.step++
		e.trace("step=%d name=%s", e.step, e.cmdName())

		if e.gas.Remaining() < 0 {
			done, exitCode, ferr := e.raiseException(&Exception{Code: OutOfGas})
			if ferr != nil {
				return 0, ferr
			}
			if done {
				return exitCode, nil
			}
			continue
		}
		if credit := e.gas.Credit(); credit != 0 && e.gas.Remaining() < credit {
			return 0, &Exception{Code: OutOfGas}
		}
	}
}

func (e *Engine) cmdName() string {
	if e.cmd == nil {
		return "?"
	}
	return e.cmd.Name
}

// raiseException runs the undo log, bills exception gas, and either routes
// the exception through c(2) or reports it as fatal (spec.md §4.8).
func (e *Engine) raiseException(cause error) (terminal bool, exit int32, fatal error) {
	e.runUndo()
	exc := AsException(cause)

	if billErr := e.gas.TryUseGas(ExceptionPrice(exc.Code)); billErr != nil {
		return true, 0, billErr
	}
	if exc.Code == OutOfGas {
		return true, 0, exc
	}

	c2item, ok := e.ctrls.Get(RegC2)
	if !ok {
		return true, 0, exc
	}
	handler, err := c2item.AsContinuation()
	if err != nil {
		return true, 0, exc
	}

	if exc.Value.IsNone() {
		exc.Value = IntItem(Zero())
	}
	e.cc.Stack.Push(exc.Value)
	e.cc.Stack.Push(IntItem(NewInt(int64(exc.Number))))
	target := *handler
	target.Nargs = 2
	return e.switchTo(&target)
}

// switchTo transfers execution to target (spec.md §4.2). It reports
// (terminal, exitCode) when target is a Quit continuation.
func (e *Engine) switchTo(target *ContinuationData) (bool, int32, error) {
	if target.Kind == KindQuit {
		return true, target.ExitCode, nil
	}

	src := e.cc.Stack
	var moved []StackItem
	if target.Nargs < 0 {
		moved = append([]StackItem{}, src.Items()...)
		if err := src.Drop(src.Len()); err != nil {
			return false, 0, err
		}
	} else {
		if src.Len() < target.Nargs {
			return false, 0, &Exception{Code: StackUnderflow}
		}
		n := target.Nargs
		items := src.Items()
		moved = append([]StackItem{}, items[len(items)-n:]...)
		if err := src.Drop(n); err != nil {
			return false, 0, err
		}
	}
	e.gas.UseGas(StackTransferPrice(len(moved)))

	newStack := NewStack()
	if target.Stack != nil {
		for _, it := range target.Stack.Items() {
			newStack.Push(it)
		}
	}
	for _, it := range moved {
		newStack.Push(it)
	}

	for i := 0; i <= 7; i++ {
		if v, ok := target.Save.Get(i); ok {
			_ = e.ctrls.Put(i, v)
		}
	}

	e.cc = &ContinuationData{
		Kind:      target.Kind,
		Code:      target.Code.Clone(),
		Stack:     newStack,
		Save:      NewSaveList(),
		Nargs:     -1,
		ExitCode:  target.ExitCode,
		PushValue: target.PushValue,
		Body:      target.Body,
		Cond:      target.Cond,
		Counter:   target.Counter,
	}
	return false, 0, nil
}

// quitSignal is the sentinel a handler's Switch call returns when the
// target was a Quit continuation; Execute recognizes it and terminates
// cleanly rather than routing it through the exception machinery.
type quitSignal struct{ exit int32 }

func (q *quitSignal) Error() string { return fmt.Sprintf("quit(%d)", q.exit) }

// Switch is the public entry point handlers use to transfer control
// (JMPX/CALLX/RET and friends). A switch to a Quit continuation surfaces as
// a *quitSignal, which Execute treats as clean termination rather than an
// exception.
func (e *Engine) Switch(target *ContinuationData) error {
	terminal, exit, err := e.switchTo(target)
	if err != nil {
		return err
	}
	if terminal {
		return &quitSignal{exit: exit}
	}
	return nil
}

// seedLoopReturn records the engine's current c(0) in loop's own savelist
// before the very first switch into it, so reenterLoop has a true outer
// target to carry forward once the register itself starts getting pointed
// at intermediate loop frames.
func (e *Engine) seedLoopReturn(loop *ContinuationData) {
	if outer, ok := e.ctrls.Get(RegC0); ok {
		_ = loop.Save.Put(RegC0, outer)
	}
}

// reenterLoop builds the next iteration's trampoline from lf, carrying
// forward the loop's true pre-entry c(0) rather than whatever value
// currently occupies the register: that register is about to be pointed at
// this very trampoline for the duration of the body/cond leg, and switchTo
// always wipes a continuation's own savelist once it becomes cc, so each
// iteration must re-capture the outer target explicitly or it is lost by the
// time the loop's exit branch looks for it.
func (e *Engine) reenterLoop(lf *ContinuationData) *ContinuationData {
	nf := *lf
	nf.Save = NewSaveList()
	if outer, ok := e.ctrls.Get(RegC0); ok {
		_ = nf.Save.Put(RegC0, outer)
	}
	return &nf
}

// implicitStep performs one implicit-transition decision (spec.md §4.1
// step 1) when the current continuation's code has no bits left.
func (e *Engine) implicitStep() (terminal bool, exit int32, err error) {
	if e.cc.Code.RemainingRefs() == 1 {
		ref, lerr := e.cc.Code.LoadRef()
		if lerr != nil {
			return false, 0, lerr
		}
		if ref.BitLen()%8 != 0 {
			return false, 0, &Exception{Code: InvalidOpcode}
		}
		e.gas.UseGas(ImplicitJmpRefPrice())
		e.gas.UseGas(LoadCellPrice(e.touchCell(ref)))
		e.cc.Code = cell.NewSlice(ref)
		return false, 0, nil
	}

	switch e.cc.Kind {
	case KindOrdinary:
		e.gas.UseGas(ImplicitRetPrice())
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return true, int32(NormalTermination), nil
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return false, 0, cerr
		}
		return e.switchTo(cont)

	case KindPushInt:
		e.cc.Stack.Push(IntItem(e.cc.PushValue))
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return true, int32(NormalTermination), nil
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return false, 0, cerr
		}
		return e.switchTo(cont)

	case KindQuit:
		return true, e.cc.ExitCode, nil

	case KindTryCatch:
		e.gas.UseGas(ImplicitRetPrice())
		e.ctrls.Clear(RegC2)
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return true, int32(NormalTermination), nil
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return false, 0, cerr
		}
		return e.switchTo(cont)

	case KindWhileCond:
		v, perr := e.cc.Stack.PopInt()
		if perr != nil {
			return false, 0, perr
		}
		if v.IsZero() {
			c0, ok := e.ctrls.Get(RegC0)
			if !ok {
				return true, int32(NormalTermination), nil
			}
			cont, cerr := c0.AsContinuation()
			if cerr != nil {
				return false, 0, cerr
			}
			return e.switchTo(cont)
		}
		lf := e.cc
		nf := e.reenterLoop(lf)
		condFrame := lf.Cond.WithSave0(ContinuationItem(nf))
		bodyFrame := lf.Body.WithSave0(ContinuationItem(condFrame))
		return e.switchTo(bodyFrame)

	case KindUntilCond:
		v, perr := e.cc.Stack.PopInt()
		if perr != nil {
			return false, 0, perr
		}
		if v.IsZero() {
			lf := e.cc
			nf := e.reenterLoop(lf)
			bodyFrame := lf.Body.WithSave0(ContinuationItem(nf))
			return e.switchTo(bodyFrame)
		}
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return true, int32(NormalTermination), nil
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return false, 0, cerr
		}
		return e.switchTo(cont)

	case KindRepeatBody:
		lf := e.cc
		if lf.Counter > 1 {
			nf := e.reenterLoop(lf)
			nf.Counter = lf.Counter - 1
			bodyFrame := lf.Body.WithSave0(ContinuationItem(nf))
			return e.switchTo(bodyFrame)
		}
		c0, ok := e.ctrls.Get(RegC0)
		if !ok {
			return true, int32(NormalTermination), nil
		}
		cont, cerr := c0.AsContinuation()
		if cerr != nil {
			return false, 0, cerr
		}
		return e.switchTo(cont)

	case KindAgainBody:
		lf := e.cc
		nf := e.reenterLoop(lf)
		bodyFrame := lf.Body.WithSave0(ContinuationItem(nf))
		return e.switchTo(bodyFrame)

	default:
		return false, 0, &Exception{Code: UnknownError}
	}
}
