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

	"github.com/tvmgo/tvm/core/cell"
)

// asm is a tiny bit-level assembler over the representative opcode subset
// NewStandardHandlers registers: just enough to write the boundary-scenario
// programs exercised by engine_test.go without hand-packing bits at every
// call site.
type asm struct {
	b *cell.Builder
}

func newAsm() *asm { return &asm{b: cell.NewBuilder()} }

func (a *asm) byte(v byte) *asm {
	_ = a.b.StoreUint(uint64(v), 8)
	return a
}

func (a *asm) uint(v uint64, n int) *asm {
	_ = a.b.StoreUint(v, n)
	return a
}

// pushcont appends opcode 0x8F (PUSHCONT) followed by its 4-bit byte-count
// field and body's assembled bytes inline (PUSHCONT's WithBytestring(0, 4,
// 0, 0) operand shape: a 4-bit byte count, then that many bytes of code,
// no cell references).
func (a *asm) pushcont(body *asm) *asm {
	a.byte(0x8F)
	bc := body.b.Finalize()
	if bc.BitLen()%8 != 0 {
		panic("pushcont body must be byte-aligned")
	}
	n := bc.BitLen() / 8
	a.uint(uint64(n), 4)
	if err := a.b.StoreBits(bc.Bits()); err != nil {
		panic(err)
	}
	return a
}

// pushint emits the smallest of the two wired PUSHINT encodings that can
// represent v: the 4-bit tiny form (-5..10) or the 16-bit signed form.
func (a *asm) pushint(v int64) *asm {
	if v >= -5 && v <= 10 {
		a.byte(0x70)
		n := v
		if n < 0 {
			n += 16
		}
		a.uint(uint64(n), 4)
		return a
	}
	a.byte(0x80)
	a.uint(uint64(uint16(v)), 16)
	return a
}

func (a *asm) op(code byte) *asm { return a.byte(code) }

// throwImm emits THROW n (0x66) with an 8-bit immediate.
func (a *asm) throwImm(n byte) *asm { a.byte(0x66); a.uint(uint64(n), 8); return a }

// throwIf emits THROWIF n (0x68) with an 8-bit immediate.
func (a *asm) throwIf(n byte) *asm { a.byte(0x68); a.uint(uint64(n), 8); return a }

// xchg emits XCHG s0,s(reg) as its single-byte compact form (reg in 1..15,
// dispatch byte 0x10+reg — opXchg reads the register straight off the
// dispatch byte's low nibble).
func (a *asm) xchg(reg int) *asm { return a.byte(byte(0x10 + reg)) }

// pushctr/popctr emit PUSHCTR/POPCTR (0x64/0x65) with a 4-bit register index.
func (a *asm) pushctr(reg int) *asm { a.byte(0x64); a.uint(uint64(reg), 4); return a }
func (a *asm) popctr(reg int) *asm  { a.byte(0x65); a.uint(uint64(reg), 4); return a }

// pop emits POP s(i) (0x05), an 8-bit register index.
func (a *asm) pop(i int) *asm { a.byte(0x05); a.uint(uint64(i), 8); return a }

// pair emits one of the fixed-dispatch-byte block ops (REVERSE/BLKSWAP/
// BLKPUSH/BLKDROP2) followed by the hi/lo nibble pair its SelNextByte
// operand reads from the following byte.
func (a *asm) pair(code byte, hi, lo int) *asm {
	a.byte(code)
	a.uint(uint64(hi), 4)
	a.uint(uint64(lo), 4)
	return a
}

func (a *asm) reverse(n, from int) *asm  { return a.pair(0x06, n, from) }
func (a *asm) blkswap(i, j int) *asm     { return a.pair(0x07, i, j) }
func (a *asm) blkpush(n, idx int) *asm   { return a.pair(0x0B, n, idx) }
func (a *asm) blkdrop2(n, from int) *asm { return a.pair(0x0C, n, from) }

func (a *asm) roll(idx int) *asm    { a.byte(0x08); a.uint(uint64(idx), 8); return a }
func (a *asm) rollrev(idx int) *asm { a.byte(0x09); a.uint(uint64(idx), 8); return a }
func (a *asm) pick(idx int) *asm    { a.byte(0x0A); a.uint(uint64(idx), 8); return a }

// sdSkipFirst emits SDSKIPFIRST n (0x0D), an 8-bit bit count.
func (a *asm) sdSkipFirst(n int) *asm { a.byte(0x0D); a.uint(uint64(n), 8); return a }

// pldSlice emits the PLDSLICE-style preload (0x0E), an 8-bit bit count.
func (a *asm) pldSlice(n int) *asm { a.byte(0x0E); a.uint(uint64(n), 8); return a }

// ends emits ENDS (0x6E).
func (a *asm) ends() *asm { return a.byte(0x6E) }

// stsliceconst emits STSLICECONST (0x63) storing the given literal bits
// (spec.md §4.5 Bitstring operand, WithBitstring(0, 7, 0, 0): a 7-bit
// length field with no trailing references) into the builder on top of
// the stack.
func (a *asm) stsliceconst(bits ...int) *asm {
	a.byte(0x63)
	a.uint(uint64(len(bits)), 7)
	for _, b := range bits {
		a.uint(uint64(b), 1)
	}
	return a
}

// sliceFixture builds a program that assembles a slice with exactly the
// given bits via NEWC / STSLICECONST / ENDC / CTOS (0x60/0x63/0x61/0x62),
// for tests that need a slice value already sitting on the data stack.
func sliceFixture(bits ...int) *asm {
	return newAsm().op(0x60).stsliceconst(bits...).op(0x61).op(0x62)
}

// slice finalizes the assembled program as a fresh read cursor.
func (a *asm) slice() *cell.Slice { return cell.NewSlice(a.b.Finalize()) }

func ints(vs ...int64) []StackItem {
	out := make([]StackItem, len(vs))
	for i, v := range vs {
		out[i] = IntItem(NewInt(v))
	}
	return out
}

func assertInts(t *testing.T, got []StackItem, want []int64) {
	require.Lenf(t, got, len(want), "got %v", got)
	for i, w := range want {
		gi, err := got[i].AsInteger()
		require.NoErrorf(t, err, "stack[%d]", i)
		v, ok := gi.Int64()
		require.True(t, ok, "stack[%d] = %s not representable as int64", i, gi.String())
		require.Equalf(t, w, v, "stack[%d]", i)
	}
}
