// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// Gas meters execution cost the way the teacher's energy.go meters EVM gas:
// a limit, a running total used, and an optional credit advanced ahead of
// billing (spec.md §6 "gas accounting"). Going over the limit surfaces as an
// OutOfGas exception (from TryUseGas, or from Execute's post-handler check);
// the engine treats OutOfGas as fatal and never routes it through c(2).
type Gas struct {
	limit    int64
	used     int64
	credit   int64
	limitMax int64
}

// NewGas constructs a meter with the given limit, pre-advanced credit, and
// the hard ceiling a GASLIMIT-style primitive may raise the limit to.
func NewGas(limit, credit, limitMax int64) *Gas {
	return &Gas{limit: limit, credit: credit, limitMax: limitMax}
}

// Limit reports the current gas limit.
func (g *Gas) Limit() int64 { return g.limit }

// Used reports the cumulative gas billed so far.
func (g *Gas) Used() int64 { return g.used }

// Remaining reports limit-used (may be negative once exhausted).
func (g *Gas) Remaining() int64 { return g.limit - g.used }

// Credit reports the unconsumed advance credit.
func (g *Gas) Credit() int64 { return g.credit }

// SetLimit raises (never lowers) the working limit, bounded by limitMax;
// mirrors the SETGASLIMIT primitive's semantics.
func (g *Gas) SetLimit(n int64) {
	if n > g.limitMax {
		n = g.limitMax
	}
	if n > g.limit {
		g.limit = n
	}
}

// UseGas unconditionally bills amount, consuming credit first.
func (g *Gas) UseGas(amount int64) {
	if g.credit > 0 {
		if g.credit >= amount {
			g.credit -= amount
			return
		}
		amount -= g.credit
		g.credit = 0
	}
	g.used += amount
}

// TryUseGas bills amount and returns an OutOfGas exception if that pushes
// used past limit (spec.md §6 "gas exhaustion").
func (g *Gas) TryUseGas(amount int64) error {
	g.UseGas(amount)
	if g.used > g.limit {
		return &Exception{Code: OutOfGas}
	}
	return nil
}

// Price schedule ("reference schedule v1", DESIGN.md "Open Question:
// pricing"). These constants are a pinned stand-in for the real network's
// fee schedule, not an attempt to reproduce it exactly.
const (
	gasBasicBase        int64 = 10
	gasLoadCellFirst     int64 = 100
	gasLoadCellNext      int64 = 25
	gasFinalizeCell      int64 = 500
	gasImplicitJmpRef    int64 = 10
	gasImplicitRet       int64 = 5
	gasExceptionBase     int64 = 50
	gasTupleBase         int64 = 1
	gasTuplePerElement   int64 = 1
	gasStackTransferFree int64 = 32
)

// BasicGasPrice is the per-opcode base price: a fixed overhead plus one unit
// per bit consumed while decoding the instruction, with an extra unit per
// cell reference touched (spec.md §4.4 "gas per instruction").
func BasicGasPrice(bits, refs int) int64 {
	return gasBasicBase + int64(bits) + int64(refs)
}

// LoadCellPrice prices touching a cell for the first time in a transaction
// versus a repeat touch (cheaper), mirroring the teacher's cold/warm slot
// pricing for SLOAD.
func LoadCellPrice(first bool) int64 {
	if first {
		return gasLoadCellFirst
	}
	return gasLoadCellNext
}

// FinalizeCellPrice prices a Builder.Finalize call.
func FinalizeCellPrice() int64 { return gasFinalizeCell }

// ImplicitJmpRefPrice prices the automatic JMPREF taken when a continuation's
// code slice runs dry with exactly one unread reference (spec.md §4.1).
func ImplicitJmpRefPrice() int64 { return gasImplicitJmpRef }

// ImplicitRetPrice prices the automatic RET taken when a continuation's code
// slice runs completely dry (spec.md §4.1).
func ImplicitRetPrice() int64 { return gasImplicitRet }

// ExceptionPrice prices raising a structured exception, with a small
// surcharge for OutOfGas since its handling path does additional bookkeeping.
func ExceptionPrice(code ExceptionCode) int64 {
	if code == OutOfGas {
		return gasExceptionBase * 2
	}
	return gasExceptionBase
}

// TupleGasPrice prices constructing or indexing an n-element tuple.
func TupleGasPrice(n int) int64 {
	return gasTupleBase + gasTuplePerElement*int64(n)
}

// StackTransferPrice prices moving n items across a continuation switch
// boundary (spec.md §4.3): the first gasStackTransferFree items are free,
// matching the teacher's free-tier-then-linear pricing shape used for
// memory expansion.
func StackTransferPrice(n int) int64 {
	if n <= gasStackTransferFree {
		return 0
	}
	return int64(n) - gasStackTransferFree
}
