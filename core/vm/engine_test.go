// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, program *asm) (*Engine, int32) {
	t.Helper()
	cfg := Config{Handlers: NewStandardHandlers()}
	gas := NewGas(1_000_000, 0, 1_000_000)
	e := Setup(program.slice(), cfg, nil, nil, gas)
	exit, err := e.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return e, exit
}

// REPEAT must run body exactly n times, not n-1: three successive
// DUP MUL squarings take 2 to 256 (2, 4, 16, 256).
func TestRepeatSquaring(t *testing.T) {
	body := newAsm().op(0x02).op(0x42) // DUP MUL
	prog := newAsm().pushint(2).pushcont(body).pushint(3).op(0x55)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{256})
}

// REPEAT with a non-positive count must run body zero times.
func TestRepeatNonPositiveCountSkipsBody(t *testing.T) {
	body := newAsm().op(0x02).op(0x42)
	prog := newAsm().pushint(2).pushcont(body).pushint(0).op(0x55)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{2})
}

// WHILE evaluates cond (here: DUP, reusing the counter itself as the flag)
// before every iteration including the first, and stops the moment cond
// leaves zero: an accumulator counts up to 3 while a counter counts down
// from 3 to 0 (SWAP INC SWAP DEC swaps the pair, increments the
// accumulator, swaps back, decrements the counter).
func TestWhileAccumulator(t *testing.T) {
	cond := newAsm().op(0x02) // DUP
	body := newAsm().op(0x01).op(0x41).op(0x01).op(0x40) // SWAP INC SWAP DEC
	prog := newAsm().pushint(0).pushint(3).pushcont(cond).pushcont(body).op(0x57)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{3, 0})
}

// UNTIL is do-while: DEC then IFRETALT on a nonzero duplicate fires before
// PUSHINT 0 ever runs, so RETALT's early exit leaves 9 on the stack rather
// than the 0 a naive "loop until the counter hits zero" reading would.
func TestUntilEarlyRetAlt(t *testing.T) {
	body := newAsm().op(0x40).op(0x02).op(0x54).pushint(0) // DEC DUP IFRETALT PUSHINT 0
	prog := newAsm().pushint(10).pushcont(body).op(0x56)

	e, exit := run(t, prog)
	if exit != 1 {
		t.Fatalf("exit = %d, want 1 (alternative termination via RETALT)", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{9})
}

// UNTIL's mandatory first iteration: a body that always leaves a nonzero
// flag must still run exactly once, not skip straight past it.
func TestUntilRunsAtLeastOnce(t *testing.T) {
	body := newAsm().pushint(1) // always "true": one iteration, no decrement
	prog := newAsm().pushint(7).pushcont(body).op(0x56)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{7})
}

// AGAIN loops forever until gas runs out; it never returns to c(0) by
// itself. With a tight gas budget the engine surfaces OutOfGas rather than
// hanging.
func TestAgainExhaustsGas(t *testing.T) {
	body := newAsm().op(0x02).op(0x04) // DUP DROP: the stack never changes
	prog := newAsm().pushint(2).pushcont(body).op(0x58)

	cfg := Config{Handlers: NewStandardHandlers()}
	gas := NewGas(500, 0, 500)
	e := Setup(prog.slice(), cfg, nil, nil, gas)
	_, err := e.Execute()
	if err == nil {
		t.Fatalf("Execute: want an out-of-gas error, got nil")
	}
	exc, ok := err.(*Exception)
	require.True(t, ok, "want *Exception, got %T: %v", err, err)
	require.Equal(t, OutOfGas, exc.Code)
}

// TRY installs the popped handler as c(2) before entering body; THROWANY
// hands the handler both the exception number (top) and the value beneath
// it, per opThrowAny's documented pop order.
func TestTryThrowAnyDeliversValueAndNumber(t *testing.T) {
	handler := newAsm().op(0x01) // SWAP: surface [number, value] as [value, number]
	body := newAsm().pushint(42).pushint(7).op(0x67) // PUSHINT 42 PUSHINT 7 THROWANY
	prog := newAsm().pushcont(body).pushcont(handler).op(0x59)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	assertInts(t, e.WithdrawStack(), []int64{7, 42})
}

// COMMIT snapshots whatever currently sits in c(4)/c(5); PUSHCTR/POPCTR are
// the only handlers in this subset that touch those registers directly, so
// this exercises the control-register round trip (push c4/c5, pop them back,
// push them again) rather than COMMIT's own opcode (which lives outside the
// representative subset).
func TestPushCtrPopCtrRoundTrip(t *testing.T) {
	prog := newAsm().pushctr(4).pushctr(5).popctr(5).popctr(4).pushctr(4).pushctr(5)

	e, exit := run(t, prog)
	if exit != 0 {
		t.Fatalf("exit = %d, want 0", exit)
	}
	if got := e.WithdrawStack(); len(got) != 2 {
		t.Fatalf("stack length = %d, want 2", len(got))
	}
}

// MUL pops b then a; if the stack holds only one item, the pop of b
// succeeds and the pop of a fails with StackUnderflow. The undo log must
// put b straight back so the failing opcode leaves the stack exactly as
// it found it, not one item short (spec.md §8's universal invariant).
func TestMulUnderflowLeavesStackUntouched(t *testing.T) {
	prog := newAsm().pushint(5).op(0x42) // PUSHINT 5; MUL
	cfg := Config{Handlers: NewStandardHandlers()}
	gas := NewGas(1_000_000, 0, 1_000_000)
	e := Setup(prog.slice(), cfg, nil, nil, gas)
	_, err := e.Execute()

	exc, ok := err.(*Exception)
	require.True(t, ok, "want *Exception, got %T: %v", err, err)
	require.Equal(t, StackUnderflow, exc.Code)
	assertInts(t, e.WithdrawStack(), []int64{5})
}

// POP s(i) must move the popped value into slot i of the resulting stack,
// overwriting whatever sat there (here: PUSHINT 1 2 3; POP s(1) pops 3 and
// writes it over the 1, which is s(1) of the post-pop stack).
func TestPopMovesTopIntoSlot(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).pop(1)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{3, 2})
}

// REVERSE n,from reverses the n items starting `from` slots below the top:
// REVERSE 3,0 on [1,2,3,4] swaps the outer pair of the top three (2 and 4),
// leaving the middle one (3) in place.
func TestReverseReversesBlock(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).pushint(4).reverse(3, 0)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{1, 4, 3, 2})
}

// BLKSWAP i,j exchanges the top j items with the i items below them.
func TestBlkSwapExchangesBlocks(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).pushint(4).blkswap(2, 2)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{3, 4, 1, 2})
}

// BLKPUSH n,idx pushes copies of the block s(idx)..s(idx-n+1): on [1,2,3],
// BLKPUSH 2,1 duplicates s(1)=2 then s(0)=3, in that order.
func TestBlkPushDuplicatesBlock(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).blkpush(2, 1)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{1, 2, 3, 2, 3})
}

// BLKDROP2 n,from removes n items starting `from` slots below the top.
func TestBlkDrop2RemovesBlock(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).pushint(4).blkdrop2(2, 1)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{1, 4})
}

// ROLL idx moves the item idx slots below the top to the very top.
func TestRollMovesItemToTop(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).roll(2)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{2, 3, 1})
}

// ROLLREV idx is ROLL's inverse: it moves the top item down idx slots.
func TestRollRevMovesTopDown(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).roll(2).rollrev(2)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{1, 2, 3})
}

// PICK idx duplicates the item idx slots below the top onto the top.
func TestPickDuplicatesItem(t *testing.T) {
	prog := newAsm().pushint(1).pushint(2).pushint(3).pick(2)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	assertInts(t, e.WithdrawStack(), []int64{1, 2, 3, 1})
}

// SDSKIPFIRST n must drop the first n data bits of the slice in place,
// leaving the rest of the window (and its references) untouched.
func TestSdSkipFirstDropsLeadingBits(t *testing.T) {
	prog := sliceFixture(1, 0, 1, 1, 0, 0, 1, 0).sdSkipFirst(3)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)

	got := e.WithdrawStack()
	require.Len(t, got, 1)
	sl, err := got[0].AsSlice()
	require.NoError(t, err)
	require.Equal(t, 5, sl.RemainingBits())
	bits, err := sl.LoadBits(5)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, false, true, false}, bits)
}

// PLDSLICE peeks at a leading sub-window without consuming the source
// slice: both the original and the preloaded sub-slice must end up on the
// stack, each with their own correct remaining length.
func TestPreloadSliceDoesNotConsumeSource(t *testing.T) {
	prog := sliceFixture(1, 0, 1, 1, 0, 0, 1, 0).pldSlice(3)

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)

	got := e.WithdrawStack()
	require.Len(t, got, 2)

	orig, err := got[0].AsSlice()
	require.NoError(t, err)
	require.Equal(t, 8, orig.RemainingBits())

	sub, err := got[1].AsSlice()
	require.NoError(t, err)
	require.Equal(t, 3, sub.RemainingBits())
	bits, err := sub.LoadBits(3)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, bits)
}

// ENDS on an empty slice always succeeds, capability or not.
func TestEndsAcceptsEmptySlice(t *testing.T) {
	prog := sliceFixture().ends()

	e, exit := run(t, prog)
	require.EqualValues(t, 0, exit)
	require.Empty(t, e.WithdrawStack())
}

// Without CapTvmV19, ENDS on a non-empty slice is a hard CellUnderflow.
func TestEndsStrictRejectsNonEmptySlice(t *testing.T) {
	prog := sliceFixture(1, 0, 1).ends()

	cfg := Config{Handlers: NewStandardHandlers()}
	gas := NewGas(1_000_000, 0, 1_000_000)
	e := Setup(prog.slice(), cfg, nil, nil, gas)
	_, err := e.Execute()

	exc, ok := err.(*Exception)
	require.True(t, ok, "want *Exception, got %T: %v", err, err)
	require.Equal(t, CellUnderflow, exc.Code)
}

// With CapTvmV19, ENDS on a non-empty slice is the historical permissive
// no-op instead of an error.
func TestEndsPermissiveWithCapAcceptsNonEmptySlice(t *testing.T) {
	prog := sliceFixture(1, 0, 1).ends()

	cfg := Config{Handlers: NewStandardHandlers(), Caps: CapSet(0).WithCap(CapTvmV19)}
	gas := NewGas(1_000_000, 0, 1_000_000)
	e := Setup(prog.slice(), cfg, nil, nil, gas)
	exit, err := e.Execute()

	require.NoError(t, err)
	require.EqualValues(t, 0, exit)
	require.Empty(t, e.WithdrawStack())
}
