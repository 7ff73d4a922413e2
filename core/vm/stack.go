// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// Stack is the per-continuation data stack (spec.md §3). Items are stored
// bottom-first in the backing slice; the top of stack is the last element,
// mirroring the teacher's own Back(n)-from-top addressing idiom.
type Stack struct {
	items []StackItem
}

// NewStack returns an empty Stack.
func NewStack() *Stack { return &Stack{} }

// Len reports the number of items currently on the stack.
func (s *Stack) Len() int { return len(s.items) }

// Push appends an item to the top.
func (s *Stack) Push(v StackItem) { s.items = append(s.items, v) }

// index converts a from-top depth (s(i) addressing, i>=0) to a backing index.
func (s *Stack) index(depth int) (int, error) {
	if depth < 0 || depth >= len(s.items) {
		return 0, &Exception{Code: StackUnderflow, Number: int32(depth)}
	}
	return len(s.items) - 1 - depth, nil
}

// Get peeks at s(depth) without removing it.
func (s *Stack) Get(depth int) (StackItem, error) {
	i, err := s.index(depth)
	if err != nil {
		return StackItem{}, err
	}
	return s.items[i], nil
}

// Set overwrites s(depth) in place.
func (s *Stack) Set(depth int, v StackItem) error {
	i, err := s.index(depth)
	if err != nil {
		return err
	}
	s.items[i] = v
	return nil
}

// Pop removes and returns the top item (s(0)).
func (s *Stack) Pop() (StackItem, error) {
	if len(s.items) == 0 {
		return StackItem{}, &Exception{Code: StackUnderflow}
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// PopInt pops the top item and type-checks it as an Integer.
func (s *Stack) PopInt() (*IntegerData, error) {
	v, err := s.Pop()
	if err != nil {
		return nil, err
	}
	return v.AsInteger()
}

// Drop discards the top n items.
func (s *Stack) Drop(n int) error {
	if n < 0 || n > len(s.items) {
		return &Exception{Code: StackUnderflow, Number: int32(n)}
	}
	s.items = s.items[:len(s.items)-n]
	return nil
}

// Swap exchanges s(i) and s(j).
func (s *Stack) Swap(i, j int) error {
	ii, err := s.index(i)
	if err != nil {
		return err
	}
	jj, err := s.index(j)
	if err != nil {
		return err
	}
	s.items[ii], s.items[jj] = s.items[jj], s.items[ii]
	return nil
}

// Dup pushes a copy of s(i).
func (s *Stack) Dup(i int) error {
	v, err := s.Get(i)
	if err != nil {
		return err
	}
	s.Push(v)
	return nil
}

// PushTo pops the top item of src and pushes it onto the top of dst. No
// handler in this package calls it.
func PushTo(dst, src *Stack) error {
	v, err := src.Pop()
	if err != nil {
		return err
	}
	dst.Push(v)
	return nil
}

// Reverse reverses the order of the n items starting at from-top depth
// `from` (REVERSE n,from).
func (s *Stack) Reverse(n, from int) error {
	if n < 0 || from < 0 || from+n > len(s.items) {
		return &Exception{Code: StackUnderflow}
	}
	top := len(s.items) - from
	lo := top - n
	for i, j := lo, top-1; i < j; i, j = i+1, j-1 {
		s.items[i], s.items[j] = s.items[j], s.items[i]
	}
	return nil
}

// BlkSwap swaps the two top blocks of sizes j (upper, closer to top) and i
// (lower), i.e. BLKSWAP i,j.
func (s *Stack) BlkSwap(i, j int) error {
	if i < 0 || j < 0 || i+j > len(s.items) {
		return &Exception{Code: StackUnderflow}
	}
	n := len(s.items)
	lower := append([]StackItem{}, s.items[n-i-j:n-j]...)
	upper := append([]StackItem{}, s.items[n-j:n]...)
	copy(s.items[n-i-j:], upper)
	copy(s.items[n-i-j+len(upper):], lower)
	return nil
}

// BlkPush implements BLKPUSH n,idx: push copies of the n-item block
// s(idx)..s(idx-n+1), in that order, so the new top ends up s(idx-n+1).
// Looping Dup(idx) with the same idx achieves this without recomputing the
// target depth: each push grows the stack by one, so re-resolving `idx`
// against the new length walks one slot further back through the
// original block on every iteration.
func (s *Stack) BlkPush(n, idx int) error {
	for k := 0; k < n; k++ {
		if err := s.Dup(idx); err != nil {
			return err
		}
	}
	return nil
}

// BlkDrop drops the top n items (BLKDROP n); equivalent to Drop but kept
// distinct to mirror the instruction name used at call sites.
func (s *Stack) BlkDrop(n int) error { return s.Drop(n) }

// BlkDrop2 drops n items starting at from-top depth `from` (BLKDROP2 n,from).
func (s *Stack) BlkDrop2(n, from int) error {
	if n < 0 || from < 0 || from+n > len(s.items) {
		return &Exception{Code: StackUnderflow}
	}
	end := len(s.items) - from
	start := end - n
	s.items = append(s.items[:start], s.items[end:]...)
	return nil
}

// Roll moves s(idx) to the top, shifting the items in between down by one
// (ROLL idx).
func (s *Stack) Roll(idx int) error {
	i, err := s.index(idx)
	if err != nil {
		return err
	}
	v := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = v
	return nil
}

// RollRev moves the top item down to become s(idx), shifting the items in
// between up by one (ROLLREV idx / -ROLL idx).
func (s *Stack) RollRev(idx int) error {
	i, err := s.index(idx)
	if err != nil {
		return err
	}
	v := s.items[len(s.items)-1]
	copy(s.items[i+1:], s.items[i:len(s.items)-1])
	s.items[i] = v
	return nil
}

// Pick pushes a copy of s(idx) (alias for Dup kept for call-site clarity at
// PICK's use).
func (s *Stack) Pick(idx int) error { return s.Dup(idx) }

// Items returns the backing slice bottom-first, for trace dumps and
// WithdrawStack snapshots; callers must not mutate it.
func (s *Stack) Items() []StackItem { return s.items }

// Clone returns an independent copy of the stack.
func (s *Stack) Clone() *Stack {
	return &Stack{items: append([]StackItem{}, s.items...)}
}
