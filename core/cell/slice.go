// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cell

// Slice is a read cursor over a Cell's data bits and references. Reading
// advances the cursor; reads past the end fail with ErrCellUnderflow.
type Slice struct {
	src     *Cell
	bitPos  int
	refPos  int
}

// NewSlice positions a Slice at the start of c.
func NewSlice(c *Cell) *Slice {
	if c == nil {
		c = NewEmpty()
	}
	return &Slice{src: c}
}

// Cell returns the underlying cell the slice was built over: the whole
// source cell, not just the remaining window.
func (s *Slice) Cell() *Cell { return s.src }

// RemainingBits reports how many unread data bits remain.
func (s *Slice) RemainingBits() int { return s.src.BitLen() - s.bitPos }

// RemainingRefs reports how many unread references remain.
func (s *Slice) RemainingRefs() int { return s.src.RefCount() - s.refPos }

// Clone returns an independent copy of the cursor (slices are value-like;
// continuations hold their own copies).
func (s *Slice) Clone() *Slice {
	return &Slice{src: s.src, bitPos: s.bitPos, refPos: s.refPos}
}

// PeekBit reads the bit at offset without consuming it.
func (s *Slice) PeekBit(offset int) (bool, error) {
	if offset < 0 || offset >= s.RemainingBits() {
		return false, ErrCellUnderflow
	}
	return s.src.bits[s.bitPos+offset], nil
}

// LoadBit consumes and returns one bit.
func (s *Slice) LoadBit() (bool, error) {
	b, err := s.PeekBit(0)
	if err != nil {
		return false, err
	}
	s.bitPos++
	return b, nil
}

// LoadUint consumes n bits (0<=n<=64) and returns them as an unsigned, MSB-first integer.
func (s *Slice) LoadUint(n int) (uint64, error) {
	if n < 0 || n > 64 || n > s.RemainingBits() {
		return 0, ErrCellUnderflow
	}
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if s.src.bits[s.bitPos+i] {
			v |= 1
		}
	}
	s.bitPos += n
	return v, nil
}

// LoadInt consumes n bits (0<n<=64) as a two's-complement signed integer.
func (s *Slice) LoadInt(n int) (int64, error) {
	u, err := s.LoadUint(n)
	if err != nil {
		return 0, err
	}
	if n < 64 && u&(1<<uint(n-1)) != 0 {
		return int64(u) - (1 << uint(n)), nil
	}
	return int64(u), nil
}

// LoadBits consumes n bits and returns them as a bool slice (caller owns the copy).
func (s *Slice) LoadBits(n int) ([]bool, error) {
	if n < 0 || n > s.RemainingBits() {
		return nil, ErrCellUnderflow
	}
	out := make([]bool, n)
	copy(out, s.src.bits[s.bitPos:s.bitPos+n])
	s.bitPos += n
	return out, nil
}

// LoadRef consumes and returns the next child reference.
func (s *Slice) LoadRef() (*Cell, error) {
	if s.RemainingRefs() == 0 {
		return nil, ErrCellUnderflow
	}
	r := s.src.refs[s.refPos]
	s.refPos++
	return r, nil
}

// PreloadRef returns the i'th not-yet-consumed reference without consuming it.
func (s *Slice) PreloadRef(i int) (*Cell, error) {
	if i < 0 || i >= s.RemainingRefs() {
		return nil, ErrCellUnderflow
	}
	return s.src.refs[s.refPos+i], nil
}

// Shrink narrows the slice's own unread window to [fromBits, toBits) data
// bits and [fromRefs, toRefs) references, all counted relative to the
// current cursor (the same convention SubSlice uses) rather than from the
// start of the underlying cell, so a partially-read slice can still be
// narrowed correctly.
func (s *Slice) Shrink(fromBits, toBits, fromRefs, toRefs int) error {
	if fromBits < 0 || toBits < fromBits || toBits > s.RemainingBits() {
		return ErrCellUnderflow
	}
	if fromRefs < 0 || toRefs < fromRefs || toRefs > s.RemainingRefs() {
		return ErrCellUnderflow
	}
	sub := &Cell{
		bits: append([]bool{}, s.src.bits[s.bitPos+fromBits:s.bitPos+toBits]...),
		refs: append([]*Cell{}, s.src.refs[s.refPos+fromRefs:s.refPos+toRefs]...),
	}
	s.src = sub
	s.bitPos = 0
	s.refPos = 0
	return nil
}

// SubSlice returns a new, independent Slice over [bitOffset, bitOffset+bitLen)
// data bits and [refOffset, refOffset+refLen) references of the *current*
// unread window, without consuming anything from s. Used by the
// PLDSLICE-style preload handler (handlers_cell.go opPreloadSlice), which
// peeks at a leading sub-window of a slice value without advancing its
// cursor.
func (s *Slice) SubSlice(bitOffset, bitLen, refOffset, refLen int) (*Slice, error) {
	if bitOffset < 0 || bitLen < 0 || bitOffset+bitLen > s.RemainingBits() {
		return nil, ErrCellUnderflow
	}
	if refOffset < 0 || refLen < 0 || refOffset+refLen > s.RemainingRefs() {
		return nil, ErrCellUnderflow
	}
	start := s.bitPos + bitOffset
	rstart := s.refPos + refOffset
	sub := &Cell{
		bits: append([]bool{}, s.src.bits[start:start+bitLen]...),
		refs: append([]*Cell{}, s.src.refs[rstart:rstart+refLen]...),
	}
	return NewSlice(sub), nil
}

// IsEmpty reports whether the slice has nothing left to read, neither bits
// nor references (used by the ENDS handler).
func (s *Slice) IsEmpty() bool {
	return s.RemainingBits() == 0 && s.RemainingRefs() == 0
}
