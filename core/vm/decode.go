// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"math/big"

	"github.com/tvmgo/tvm/core/cell"
)

// LoadInstruction performs the decode spec.md §4.5 describes: it consumes
// exactly the operand bits in's With* setters asked for, appends one Param
// per requested shape, and bills basic_gas_price for everything consumed
// since the current opcode's dispatch byte(s) (tracked via e.cmdCode,
// snapshotted by Execute before Handlers.Lookup ran).
func (e *Engine) LoadInstruction(in *Instruction) error {
	e.cmd = in

	if in.wantPargs || in.wantNargs || in.wantRargs {
		b, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return err
		}
		hi, lo := int64(b>>4), int64(b&0xF)
		if in.wantPargs {
			in.Params = append(in.Params, Param{Kind: PPargs, Int: hi})
		}
		if in.wantNargs {
			n := lo
			if lo == 0xF {
				n = -1
			}
			in.Params = append(in.Params, Param{Kind: PNargs, Int: n})
		}
		if in.wantRargs {
			r := lo
			if lo == 0xF {
				r = -1
			}
			in.Params = append(in.Params, Param{Kind: PRargs, Int: r})
		}
	}

	if in.wantBigInteger {
		nibble, err := e.cc.Code.LoadUint(4)
		if err != nil {
			return err
		}
		nbytes := int(nibble) + 1
		bits, err := e.cc.Code.LoadBits(nbytes * 8)
		if err != nil {
			return err
		}
		b := cell.NewBuilder()
		_ = b.StoreBits(bits)
		raw := b.Finalize().Bytes()
		v := new(big.Int).SetBytes(raw)
		if len(raw) > 0 && raw[0]&0x80 != 0 {
			full := new(big.Int).Lsh(big.NewInt(1), uint(len(raw)*8))
			v.Sub(v, full)
		}
		in.Params = append(in.Params, Param{Kind: PInteger, Integer: NewFromBig(v)})
	}

	if in.wantControlRegister {
		v, err := e.cc.Code.LoadUint(4)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PControlRegister, Int: int64(v)})
	}

	if in.wantDivisionMode {
		v, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PDivisionMode, Int: int64(v)})
	}

	if in.wantIntRange {
		v, err := e.decodeIntRange(in.intRange)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PInteger, Int: v, Integer: NewInt(v)})
	}

	if in.wantLen {
		length, idx, err := e.decodeLength(in.lenKind)
		if err != nil {
			return err
		}
		kind := PLength
		if in.lenKind == LenAndIndex || in.lenKind == LenMinusOneAndIndexMinusOne || in.lenKind == LenMinusTwoAndIndex {
			kind = PLengthAndIndex
		}
		in.Params = append(in.Params, Param{Kind: kind, Int: length, Idx: idx})
	}

	switch in.regKind {
	case 1:
		r, err := e.decodeReg(in.regSel)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PStackRegister, Int: r})
	case 2:
		a, b, err := e.decodeRegPair(in.regSel)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PStackRegisterPair, Int: a, Idx: b})
	case 3:
		a, b, c, err := e.decodeRegTrio(in.regSel)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PStackRegisterTrio, Int: a, Idx: b, Idx2: c})
	}

	if in.wantDict {
		dict, klen, err := e.decodeDictionary(in.dictOffset, in.dictLenBits)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PDictionary, Dict: dict, Int: klen})
	}

	if in.wantBytestring {
		sl, err := e.extractSlice(in.strOffset, in.strR, in.strX, in.strFixed, false)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PSlice, Slice: sl})
	}

	if in.wantBitstring {
		sl, err := e.extractSlice(in.strOffset, in.strR, in.strX, in.strFixed, true)
		if err != nil {
			return err
		}
		in.Params = append(in.Params, Param{Kind: PSlice, Slice: sl})
	}

	bits := e.cmdCode.RemainingBits() - e.cc.Code.RemainingBits()
	refs := e.cmdCode.RemainingRefs() - e.cc.Code.RemainingRefs()
	e.gas.UseGas(BasicGasPrice(bits, refs))
	return nil
}

func (e *Engine) decodeIntRange(r IntRange) (int64, error) {
	switch r {
	case RangeS16:
		return e.cc.Code.LoadInt(16)
	case RangeS8:
		return e.cc.Code.LoadInt(8)
	case RangeN5to11:
		u, err := e.cc.Code.LoadUint(4)
		if err != nil {
			return 0, err
		}
		if u <= 10 {
			return int64(u), nil
		}
		return int64(u) - 16, nil
	case Range0to32:
		u, err := e.cc.Code.LoadUint(5)
		return int64(u), err
	case Range0to64:
		u, err := e.cc.Code.LoadUint(6)
		return int64(u), err
	case Range0to2048:
		hi, err := e.cc.Code.LoadUint(3)
		if err != nil {
			return 0, err
		}
		lo, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, err
		}
		return int64(hi)<<8 | int64(lo), nil
	case Range0to16384:
		hi, err := e.cc.Code.LoadUint(6)
		if err != nil {
			return 0, err
		}
		lo, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, err
		}
		return int64(hi)<<8 | int64(lo), nil
	case Range0to256:
		u, err := e.cc.Code.LoadUint(8)
		return int64(u), err
	case Range0to15:
		u, err := e.cc.Code.LoadUint(4)
		if err != nil {
			return 0, err
		}
		if u == 15 {
			return 0, &Exception{Code: RangeCheck}
		}
		return int64(u), nil
	case Range1to15:
		u, err := e.cc.Code.LoadUint(4)
		if err != nil {
			return 0, err
		}
		if u == 0 || u == 15 {
			return 0, &Exception{Code: RangeCheck}
		}
		return int64(u), nil
	case RangeN15to240:
		u, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, err
		}
		if u >= 0xF1 {
			return int64(u) - 256, nil
		}
		return int64(u), nil
	default:
		return 0, &Exception{Code: RangeCheck}
	}
}

func (e *Engine) decodeLength(k LenKind) (length, idx int64, err error) {
	switch k {
	case LenPlain:
		u, err := e.cc.Code.LoadUint(4)
		return int64(u), 0, err
	case LenAndIndex:
		b, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		return int64(b >> 4), int64(b & 0xF), nil
	case LenMinusOne:
		u, err := e.cc.Code.LoadUint(4)
		return int64(u) + 1, 0, err
	case LenMinusOneAndIndexMinusOne:
		b, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		return int64(b>>4) + 1, int64(b&0xF) + 1, nil
	case LenMinusTwoAndIndex:
		b, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		return int64(b>>4) + 2, int64(b & 0xF), nil
	default:
		return 0, 0, &Exception{Code: InvalidOpcode}
	}
}

func (e *Engine) decodeReg(sel RegSelector) (int64, error) {
	switch sel {
	case SelLastByte2Bits:
		return int64(e.lastByte & 0x03), nil
	case SelLastByte:
		return int64(e.lastByte & 0x0F), nil
	default:
		u, err := e.cc.Code.LoadUint(8)
		return int64(u), err
	}
}

func (e *Engine) decodeRegPair(sel RegSelector) (a, b int64, err error) {
	switch sel {
	case SelLastByte:
		return int64(e.lastByte>>4) & 0xF, int64(e.lastByte & 0xF), nil
	case SelLastByte2Bits:
		return 0, int64(e.lastByte & 0x3), nil
	case SelNextByte:
		u, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		return int64(u>>4) & 0xF, int64(u & 0xF), nil
	default: // SelNextByteLong
		u1, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		u2, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, err
		}
		return int64(u1), int64(u2), nil
	}
}

func (e *Engine) decodeRegTrio(sel RegSelector) (a, b, c int64, err error) {
	if sel == SelLastByte {
		u, err := e.cc.Code.LoadUint(8)
		if err != nil {
			return 0, 0, 0, err
		}
		combined := uint16(e.lastByte&0xF)<<8 | uint16(u)
		return int64(combined>>8) & 0xF, int64(combined>>4) & 0xF, int64(combined & 0xF), nil
	}
	u, err := e.cc.Code.LoadUint(12)
	if err != nil {
		return 0, 0, 0, err
	}
	return int64(u>>8) & 0xF, int64(u>>4) & 0xF, int64(u & 0xF), nil
}

func (e *Engine) decodeDictionary(offset, lengthBits int) (*cell.Cell, int64, error) {
	if offset > 0 {
		if _, err := e.cc.Code.LoadBits(offset); err != nil {
			return nil, 0, err
		}
	}
	hasDict, err := e.cc.Code.LoadBit()
	if err != nil {
		return nil, 0, err
	}
	var dict *cell.Cell
	if hasDict {
		dict, err = e.cc.Code.LoadRef()
		if err != nil {
			return nil, 0, err
		}
	}
	klen, err := e.cc.Code.LoadUint(lengthBits)
	if err != nil {
		return nil, 0, err
	}
	return dict, int64(klen), nil
}

// extractSlice implements the Bytestring/Bitstring operand shape (spec.md
// §4.5): skip a fixed header, optionally read an r-bit length field and an
// x-bit ref-count field, then consume that many data bits (or refCount
// fixed refs for the Bitstring form) inline from the current code.
func (e *Engine) extractSlice(offset, r, x, fixed int, bitMode bool) (*cell.Slice, error) {
	if offset > 0 {
		if _, err := e.cc.Code.LoadBits(offset); err != nil {
			return nil, err
		}
	}
	dataBits := 0
	if fixed > 0 && !bitMode {
		dataBits = fixed * 8
	}
	if r > 0 {
		u, err := e.cc.Code.LoadUint(r)
		if err != nil {
			return nil, err
		}
		if bitMode {
			dataBits = int(u)
		} else {
			dataBits = int(u) * 8
		}
	}
	refCount := 0
	if x > 0 {
		u, err := e.cc.Code.LoadUint(x)
		if err != nil {
			return nil, err
		}
		refCount = int(u)
	} else if bitMode && fixed > 0 {
		refCount = fixed
	}

	bits, err := e.cc.Code.LoadBits(dataBits)
	if err != nil {
		return nil, err
	}
	b := cell.NewBuilder()
	if err := b.StoreBits(bits); err != nil {
		return nil, err
	}
	for i := 0; i < refCount; i++ {
		ref, err := e.cc.Code.LoadRef()
		if err != nil {
			return nil, err
		}
		if err := b.StoreRef(ref); err != nil {
			return nil, err
		}
	}
	return cell.NewSlice(b.Finalize()), nil
}
