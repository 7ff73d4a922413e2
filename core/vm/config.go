// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

// Cap is one capability flag gating a version-specific handler variant
// (DESIGN.md "Open Question: capability flags"). Only the handlers that
// actually branch on a capability need to consult it; most do not.
type Cap uint64

const (
	CapSetLibCode Cap = 1 << iota
	CapCopyleft
	CapTvmV19
	CapStcontNewFormat
	CapTvmBugfixes2022
	CapTvmBugfixes2023
	CapFastStorageStatBugfix
)

// CapSet is a bitset of active capabilities, generalizing the teacher's
// Config.ExtraEips []int list (core-coin-go-core's per-hardfork opcode
// extension flags) to this engine's capability-flag model.
type CapSet uint64

// Has reports whether cap is active.
func (c CapSet) Has(cap Cap) bool { return uint64(c)&uint64(cap) != 0 }

// WithCap returns a copy of c with cap additionally set.
func (c CapSet) WithCap(cap Cap) CapSet { return c | CapSet(cap) }

// Tracer receives one line of human-readable text per enabled trace
// channel per executed step (spec.md §6 "Trace output"). Formatting is
// implementation-defined; Config.Tracer is the sink, matching the
// teacher's Config.Tracer/Debug hook shape.
type Tracer interface {
	CaptureStep(step int64, line string)
}

// TraceMask selects which of the four independently maskable trace
// channels are active.
type TraceMask uint8

const (
	TraceCode TraceMask = 1 << iota
	TraceGas
	TraceStack
	TraceCtrls
	TraceAll = TraceCode | TraceGas | TraceStack | TraceCtrls
)

// Config bundles the engine's configurable collaborators, mirroring the
// teacher's core/vm.Config: a dispatch table, a capability set, and an
// optional tracer.
type Config struct {
	Handlers *Handlers
	Caps     CapSet
	Tracer   Tracer
	Trace    TraceMask
	Debug    bool
}
