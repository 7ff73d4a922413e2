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

	"github.com/core-coin/uint256"
)

// IntegerData is a signed arbitrary-precision integer with a distinguished
// NaN sentinel, matching spec.md §3's Integer StackItem. Canonical storage
// is math/big.Int (no pack dependency offers NaN-capable arbitrary
// precision, see DESIGN.md); the fixed-width github.com/core-coin/uint256
// type is used as a fast path in FitsSigned for non-negative values checked
// against widths of 256 bits or fewer.
type IntegerData struct {
	nan bool
	val *big.Int
}

var (
	bigOne = big.NewInt(1)
)

// NaN returns the distinguished not-a-number sentinel.
func NaN() *IntegerData { return &IntegerData{nan: true} }

// NewInt wraps a native int64.
func NewInt(v int64) *IntegerData { return &IntegerData{val: big.NewInt(v)} }

// NewFromBig wraps a big.Int (copied).
func NewFromBig(v *big.Int) *IntegerData { return &IntegerData{val: new(big.Int).Set(v)} }

// Zero returns the integer 0.
func Zero() *IntegerData { return NewInt(0) }

// IsNaN reports whether this value is the NaN sentinel.
func (i *IntegerData) IsNaN() bool { return i.nan }

// IsZero reports whether this value is the finite integer zero.
func (i *IntegerData) IsZero() bool { return !i.nan && i.val.Sign() == 0 }

// Sign returns -1/0/1 for a finite value; calling Sign on NaN is a caller bug
// (every site that could observe a NaN here must have already raised
// IntegerOverflow via a Signaling op).
func (i *IntegerData) Sign() int {
	if i.nan {
		return 0
	}
	return i.val.Sign()
}

// BigInt exposes the underlying value; nil for NaN.
func (i *IntegerData) BigInt() *big.Int {
	if i.nan {
		return nil
	}
	return i.val
}

// Int64 returns the value truncated to int64 and whether it was representable and finite.
func (i *IntegerData) Int64() (int64, bool) {
	if i.nan || !i.val.IsInt64() {
		return 0, false
	}
	return i.val.Int64(), true
}

func (i *IntegerData) String() string {
	if i.nan {
		return "NaN"
	}
	return i.val.String()
}

// Equal is structural equality (spec.md §3): two NaNs are NOT required to
// compare equal under IEEE-754 tradition, but TVM integers treat distinct
// NaNs as equal stack items for StackItem.Equal purposes since there is only
// one NaN representation here.
func (i *IntegerData) Equal(o *IntegerData) bool {
	if i.nan || o.nan {
		return i.nan == o.nan
	}
	return i.val.Cmp(o.val) == 0
}

// FitsSigned reports whether the value fits in a two's-complement signed
// integer of the given bit width (used by binOp's 257-bit overflow check).
// Non-negative values checked against 256 bits or fewer are routed through
// uint256; every other case, including the 257-bit arithmetic check, uses
// big.Int bounds.
func (i *IntegerData) FitsSigned(bits int) bool {
	if i.nan || bits <= 0 {
		return false
	}
	if bits <= 256 && i.val.Sign() >= 0 {
		if i.val.BitLen() > 256 {
			return false
		}
		u := new(uint256.Int)
		u.SetFromBig(i.val)
		limit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bits-1))
		return u.Lt(limit)
	}
	max := new(big.Int).Lsh(bigOne, uint(bits-1))
	min := new(big.Int).Neg(max)
	upper := new(big.Int).Sub(max, bigOne)
	return i.val.Cmp(min) >= 0 && i.val.Cmp(upper) <= 0
}

// arithmetic: each op has a Signaling variant (raises IntegerOverflow on a
// NaN operand or an out-of-257-bit-range result) and a Quiet variant
// (propagates NaN instead), per spec.md §3 and DESIGN.md "Integer semantics".
const wordBits = 257

func binOp(a, b *IntegerData, quiet bool, f func(z, x, y *big.Int) *big.Int) (*IntegerData, error) {
	if a.nan || b.nan {
		if quiet {
			return NaN(), nil
		}
		return nil, &Exception{Code: IntegerOverflow}
	}
	z := f(new(big.Int), a.val, b.val)
	r := &IntegerData{val: z}
	if !r.FitsSigned(wordBits) {
		if quiet {
			return NaN(), nil
		}
		return nil, &Exception{Code: IntegerOverflow}
	}
	return r, nil
}

func Add(a, b *IntegerData, quiet bool) (*IntegerData, error) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) })
}

func Sub(a, b *IntegerData, quiet bool) (*IntegerData, error) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) })
}

func Mul(a, b *IntegerData, quiet bool) (*IntegerData, error) {
	return binOp(a, b, quiet, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) })
}

func Neg(a *IntegerData, quiet bool) (*IntegerData, error) {
	return binOp(a, Zero(), quiet, func(z, x, _ *big.Int) *big.Int { return z.Neg(x) })
}

func Inc(a *IntegerData, quiet bool) (*IntegerData, error) {
	return Add(a, NewInt(1), quiet)
}

func Dec(a *IntegerData, quiet bool) (*IntegerData, error) {
	return Sub(a, NewInt(1), quiet)
}

// Cmp returns the three-way comparison of two finite values; NaN operands
// always fail as IntegerOverflow (comparisons have no quiet variant in this
// core — wiring one is left to the out-of-scope arithmetic handler set).
func Cmp(a, b *IntegerData) (int, error) {
	if a.nan || b.nan {
		return 0, &Exception{Code: IntegerOverflow}
	}
	return a.val.Cmp(b.val), nil
}
