// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"fmt"

	"github.com/tvmgo/tvm/core/cell"
)

// ExceptionCode enumerates the closed taxonomy of structured exceptions
// (spec.md §7). Numeric values follow the well-known TVM exception
// numbering so logs and trace output read the same way a TON toolchain
// user would expect.
type ExceptionCode int

const (
	NormalTermination      ExceptionCode = 0
	AlternativeTermination ExceptionCode = 1
	StackUnderflow         ExceptionCode = 2
	StackOverflow          ExceptionCode = 3
	IntegerOverflow        ExceptionCode = 4
	RangeCheck             ExceptionCode = 5
	InvalidOpcode          ExceptionCode = 6
	TypeCheck              ExceptionCode = 7
	CellOverflow           ExceptionCode = 8
	CellUnderflow          ExceptionCode = 9
	DictionaryError        ExceptionCode = 10
	UnknownError           ExceptionCode = 11
	FatalError             ExceptionCode = 12
	OutOfGas               ExceptionCode = 13
)

func (c ExceptionCode) String() string {
	switch c {
	case NormalTermination:
		return "normal termination"
	case AlternativeTermination:
		return "alternative termination"
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case IntegerOverflow:
		return "integer overflow"
	case RangeCheck:
		return "range check error"
	case InvalidOpcode:
		return "invalid opcode"
	case TypeCheck:
		return "type check error"
	case CellOverflow:
		return "cell overflow"
	case CellUnderflow:
		return "cell underflow"
	case DictionaryError:
		return "dictionary error"
	case UnknownError:
		return "unknown error"
	case FatalError:
		return "fatal error"
	case OutOfGas:
		return "out of gas"
	default:
		return fmt.Sprintf("exception(%d)", int(c))
	}
}

// Exception is a structured exception carrying the failing code, an
// implementation-defined parameter number, and an optional value pushed
// onto the handler's stack (spec.md §7 "Exceptions").
type Exception struct {
	Code   ExceptionCode
	Number int32
	Value  StackItem
}

func (e *Exception) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("%s (%d)", e.Code, e.Number)
	}
	return e.Code.String()
}

// AsException unwraps err into an *Exception, synthesizing an UnknownError
// wrapper for any error this engine didn't originate itself (e.g. a cell
// underflow bubbling up from a leaf handler's direct use of core/cell).
func AsException(err error) *Exception {
	if err == nil {
		return nil
	}
	if exc, ok := err.(*Exception); ok {
		return exc
	}
	if err == cell.ErrCellUnderflow {
		return &Exception{Code: CellUnderflow}
	}
	if err == cell.ErrCellOverflow {
		return &Exception{Code: CellOverflow}
	}
	return &Exception{Code: UnknownError}
}
