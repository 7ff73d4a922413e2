// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package cell implements the immutable, content-addressed data node that
// carries TVM bytecode and persistent state: a bounded bag of data bits plus
// up to four child references, read through a Slice cursor and written
// through a Builder accumulator. This is the cell/slice/builder collaborator
// library the engine consumes; the gas-pricing GasConsumer methods (load and
// finalize) live on vm.Engine, not here. The
// hashing and bit-packing algorithm here is a pinned stand-in (SHA3-256 over
// a simple serialization, see DESIGN.md "Representation hash"), not the
// real network's representation-hash algorithm.
package cell

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const (
	// MaxDataBits is the maximum number of data bits a single cell may hold.
	MaxDataBits = 1023
	// MaxRefs is the maximum number of child references a single cell may hold.
	MaxRefs = 4
	// MaxDepth is the reference-graph depth limit of the cell format. Nothing
	// in this package checks it: Builder and Cell do not track depth.
	MaxDepth = 1024
)

var (
	// ErrCellOverflow is returned when a write would exceed MaxDataBits or MaxRefs.
	ErrCellOverflow = errors.New("cell overflow")
	// ErrCellUnderflow is returned when a read asks for more bits/refs than remain.
	ErrCellUnderflow = errors.New("cell underflow")
)

// Hash is a 256-bit representation hash.
type Hash [32]byte

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// Cell is an immutable node: up to MaxDataBits data bits and up to MaxRefs
// child references. Cells are never mutated after Finalize; equality is by
// representation hash.
type Cell struct {
	bits []bool
	refs []*Cell
	hash *Hash
}

// NewEmpty returns the empty cell (0 bits, 0 refs) — used as the default
// value installed into c(4)/c(5) at setup.
func NewEmpty() *Cell {
	return &Cell{}
}

// BitLen reports the number of data bits stored in the cell.
func (c *Cell) BitLen() int { return len(c.bits) }

// RefCount reports the number of child references.
func (c *Cell) RefCount() int { return len(c.refs) }

// Ref returns the i'th child reference.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, ErrCellUnderflow
	}
	return c.refs[i], nil
}

// Bits returns a copy of the cell's data bits (MSB-first within each byte is
// not implied here — each element is one bit).
func (c *Cell) Bits() []bool {
	out := make([]bool, len(c.bits))
	copy(out, c.bits)
	return out
}

// Bytes packs the data bits into a big-endian byte slice; the caller must
// ensure BitLen()%8==0 for this to be a lossless round trip (callers that
// need partial bytes should read bits directly via Slice).
func (c *Cell) Bytes() []byte {
	n := (len(c.bits) + 7) / 8
	out := make([]byte, n)
	for i, b := range c.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// RepresentationHash returns the cell's content-address, computed once and
// cached. Two cells with identical bits and identical child hashes compare
// equal under this hash (spec.md §3 "two cells compare equal iff their
// representation hashes coincide").
func (c *Cell) RepresentationHash() Hash {
	if c.hash != nil {
		return *c.hash
	}
	h := sha3.New256()
	fmt.Fprintf(h, "d%d:", len(c.bits))
	h.Write(c.Bytes())
	fmt.Fprintf(h, "r%d:", len(c.refs))
	for _, r := range c.refs {
		rh := r.RepresentationHash()
		h.Write(rh[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	c.hash = &out
	return out
}

// Equal reports structural equality via representation hash.
func (c *Cell) Equal(o *Cell) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.RepresentationHash() == o.RepresentationHash()
}

func (c *Cell) String() string {
	return fmt.Sprintf("Cell{bits=%d refs=%d hash=%s}", len(c.bits), len(c.refs), c.RepresentationHash())
}
