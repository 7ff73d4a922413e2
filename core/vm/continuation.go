// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/tvmgo/tvm/core/cell"

// ContinuationKind discriminates the continuation variants spec.md §3
// requires: a plain code pointer (Ordinary), a VM-exit marker (Quit), a
// value producer spliced in by a handler (PushInt), an exception boundary
// (TryCatch), and the four loop trampolines.
type ContinuationKind int

const (
	KindOrdinary ContinuationKind = iota
	KindQuit
	KindPushInt
	KindTryCatch
	KindWhileCond
	KindUntilCond
	KindRepeatBody
	KindAgainBody
)

// ContinuationData reifies a suspended or reusable execution context
// (spec.md §3 "Continuation"). Not every field is meaningful for every
// Kind; see the Kind-specific constructors below.
type ContinuationData struct {
	Kind ContinuationKind

	Code  *cell.Slice
	Stack *Stack
	Save  SaveList
	Nargs int // -1 means "take the whole stack"

	ExitCode  int32 // KindQuit
	PushValue *IntegerData // KindPushInt

	Body    *ContinuationData // KindWhileCond/UntilCond/RepeatBody/AgainBody
	Cond    *ContinuationData // KindWhileCond/UntilCond
	Counter int64             // KindRepeatBody: iterations remaining
}

// NewOrdinary wraps a code slice as a plain continuation with no captured
// stack and an unconstrained argument count.
func NewOrdinary(code *cell.Slice) *ContinuationData {
	return &ContinuationData{Kind: KindOrdinary, Code: code, Nargs: -1}
}

// NewQuit builds the terminal continuation installed in c(0)/c(1) at setup
// (spec.md §4.1): entering it ends execution with ExitCode.
func NewQuit(exitCode int32) *ContinuationData {
	return &ContinuationData{Kind: KindQuit, ExitCode: exitCode, Nargs: -1}
}

// NewPushInt builds a continuation that, when entered, pushes a fixed value
// and falls through to c(0) — used by handlers that need to splice a
// computed result into the next continuation rather than the current stack.
func NewPushInt(v *IntegerData) *ContinuationData {
	return &ContinuationData{Kind: KindPushInt, PushValue: v, Nargs: -1}
}

// NewTryCatch wraps the protected body's code slice as the frame TRY switches
// to; the handler itself goes into c(2), and this frame's exhaustion clears
// c(2) again (spec.md §4.3 "exception handling").
func NewTryCatch(code *cell.Slice) *ContinuationData {
	return &ContinuationData{Kind: KindTryCatch, Code: code, Nargs: -1}
}

// emptyCode is shared by every loop-trampoline frame (as opposed to the
// body/cond continuations they wrap): the trampoline itself carries no code
// of its own, only a Kind for implicitStep's switch to act on, so it needs a
// zero-length slice rather than nil — Execute's "code exhausted" check reads
// RemainingBits() unconditionally before implicitStep ever runs.
func emptyCode() *cell.Slice { return cell.NewSlice(cell.NewEmpty()) }

// NewWhileLoop builds the trampoline entered by WHILE: evaluate cond, then
// body, then re-enter cond, until cond leaves a false (zero) flag on top.
func NewWhileLoop(body, cond *ContinuationData) *ContinuationData {
	return &ContinuationData{Kind: KindWhileCond, Code: emptyCode(), Body: body, Cond: cond, Nargs: -1}
}

// NewUntilLoop builds the trampoline entered by UNTIL: evaluate body, stop
// when it leaves a true (nonzero) flag on top, else repeat.
func NewUntilLoop(body *ContinuationData) *ContinuationData {
	return &ContinuationData{Kind: KindUntilCond, Code: emptyCode(), Body: body, Nargs: -1}
}

// NewRepeatLoop builds the trampoline entered by REPEAT: run body exactly
// counter times (counter<=0 terminates immediately).
func NewRepeatLoop(body *ContinuationData, counter int64) *ContinuationData {
	return &ContinuationData{Kind: KindRepeatBody, Code: emptyCode(), Body: body, Counter: counter, Nargs: -1}
}

// NewAgainLoop builds the trampoline entered by AGAIN: run body forever
// until an exception (typically THROW, RETALT, or gas exhaustion) breaks out.
func NewAgainLoop(body *ContinuationData) *ContinuationData {
	return &ContinuationData{Kind: KindAgainBody, Code: emptyCode(), Body: body, Nargs: -1}
}

// WithStack returns a shallow copy of c carrying the given captured stack,
// used when a handler needs to close over the current data stack (e.g. the
// body of PUSHCONT captured ahead of a JMPX).
func (c *ContinuationData) WithStack(s *Stack) *ContinuationData {
	cp := *c
	cp.Stack = s
	return &cp
}

// WithSave0 returns a shallow copy of c with its savelist's c(0) entry set
// to v, leaving every other entry untouched. Every loop trampoline
// (spec.md §4.7) builds its body/cond re-entry continuation this way: the
// savelist merge performed by Engine.switchTo is what actually threads v
// into the engine's control registers once this continuation becomes cc.
func (c *ContinuationData) WithSave0(v StackItem) *ContinuationData {
	cp := *c
	cp.Save = c.Save.Clone()
	_ = cp.Save.Put(RegC0, v)
	return &cp
}
