// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import "github.com/tvmgo/tvm/core/cell"

// IntRange names one of the exhaustive integer-operand encodings spec.md
// §4.5 enumerates. Decoding any other range constant fails with RangeCheck.
type IntRange int

const (
	RangeS16     IntRange = iota // -32768..32768, 16-bit big-endian two's complement
	RangeS8                      // -128..128, 8-bit signed
	RangeN5to11                  // -5..11, 4-bit field
	Range0to32                   // 0..32, 5-bit field
	Range0to64                   // 0..64, 6-bit field (mod 64)
	Range0to2048                 // 0..2048, 3-bit hi nibble + next byte
	Range0to16384                // 0..16384, 6-bit hi nibble + next byte
	Range0to256                  // 0..256, 8-bit unsigned next byte
	Range0to15                   // 0..15, 4 bits, 15 -> RangeCheck
	Range1to15                   // 1..15, 4 bits, 0 or 15 -> RangeCheck
	RangeN15to240                // -15..240, 8 bits, 0xF1..0xFF -> value-256
)

// RegSelector names where a stack-register operand's bits come from
// (spec.md §4.5 "WhereToGetParams").
type RegSelector int

const (
	SelLastByte2Bits RegSelector = iota
	SelLastByte
	SelNextByte
	SelNextByteLong
)

// LenKind names one of the Length-family operand shapes (spec.md §4.5).
type LenKind int

const (
	LenPlain               LenKind = iota // 4 bits, value as-is
	LenAndIndex                           // 1 byte: hi nibble length, lo nibble index
	LenMinusOne                           // 4 bits, value = nibble+1
	LenMinusOneAndIndexMinusOne           // 1 byte: hi+1 length, lo+1 index
	LenMinusTwoAndIndex                   // 1 byte: hi+2 length, lo index
)

// ParamKind tags a single decoded operand (spec.md §4.5's operand-encoding
// variant list, flattened to one tag per produced value).
type ParamKind int

const (
	PPargs ParamKind = iota
	PNargs
	PRargs
	PInteger
	PControlRegister
	PDivisionMode
	PLength
	PLengthAndIndex
	PStackRegister
	PStackRegisterPair
	PStackRegisterTrio
	PDictionary
	PSlice
)

// Param is one decoded operand value. Only the fields relevant to Kind are
// populated; the rest are zero.
type Param struct {
	Kind ParamKind

	Int  int64
	Idx  int64 // second integer, for *AndIndex / pair / trio kinds
	Idx2 int64 // third integer, for trio kinds

	Integer *IntegerData // PInteger (wraps Int so handlers can use IntegerData directly)
	Dict    *cell.Cell   // PDictionary: nil if no dict ref was present
	Slice   *cell.Slice  // PSlice: an extracted Bytestring/Bitstring sub-window
}

// Instruction is a decode request plus its result: a handler builds one with
// the With* setters describing its operand shape, then calls
// Engine.LoadInstruction to perform the decode (spec.md §4.5).
type Instruction struct {
	Name string

	wantPargs, wantNargs, wantRargs bool
	wantBigInteger                 bool
	wantControlRegister             bool
	wantDivisionMode                bool
	intRange                        IntRange
	wantIntRange                    bool
	lenKind                         LenKind
	wantLen                         bool
	regKind                         int // 0 none, 1 single, 2 pair, 3 trio
	regSel                          RegSelector
	dictOffset, dictLenBits         int
	wantDict                        bool
	strOffset, strR, strX, strFixed int
	wantBytestring, wantBitstring   bool

	Params []Param
}

// NewInstr starts a decode request for the named opcode.
func NewInstr(name string) *Instruction { return &Instruction{Name: name} }

func (in *Instruction) WithArgumentConstraints() *Instruction {
	in.wantPargs, in.wantNargs = true, true
	return in
}

func (in *Instruction) WithArgumentAndReturnConstraints() *Instruction {
	in.wantPargs, in.wantRargs = true, true
	return in
}

func (in *Instruction) WithBigInteger() *Instruction { in.wantBigInteger = true; return in }

func (in *Instruction) WithControlRegister() *Instruction { in.wantControlRegister = true; return in }

func (in *Instruction) WithDivisionMode() *Instruction { in.wantDivisionMode = true; return in }

func (in *Instruction) WithIntegerRange(r IntRange) *Instruction {
	in.wantIntRange, in.intRange = true, r
	return in
}

func (in *Instruction) WithLength(k LenKind) *Instruction {
	in.wantLen, in.lenKind = true, k
	return in
}

func (in *Instruction) WithStackRegister(sel RegSelector) *Instruction {
	in.regKind, in.regSel = 1, sel
	return in
}

func (in *Instruction) WithStackRegisterPair(sel RegSelector) *Instruction {
	in.regKind, in.regSel = 2, sel
	return in
}

func (in *Instruction) WithStackRegisterTrio(sel RegSelector) *Instruction {
	in.regKind, in.regSel = 3, sel
	return in
}

func (in *Instruction) WithDictionary(offset, lengthBits int) *Instruction {
	in.wantDict, in.dictOffset, in.dictLenBits = true, offset, lengthBits
	return in
}

func (in *Instruction) WithBytestring(offset, r, x, fixedBytes int) *Instruction {
	in.wantBytestring, in.strOffset, in.strR, in.strX, in.strFixed = true, offset, r, x, fixedBytes
	return in
}

func (in *Instruction) WithBitstring(offset, r, x, fixedRefs int) *Instruction {
	in.wantBitstring, in.strOffset, in.strR, in.strX, in.strFixed = true, offset, r, x, fixedRefs
	return in
}

// Int returns the i'th decoded parameter's primary integer value; used by
// handler bodies that expect a single scalar operand.
func (in *Instruction) Int(i int) int64 {
	if i < 0 || i >= len(in.Params) {
		return 0
	}
	return in.Params[i].Int
}
