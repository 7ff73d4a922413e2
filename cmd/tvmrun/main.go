// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// tvmrun executes a standalone code cell against a bare stack/gas config and
// reports the exit code, final stack, and committed state.
package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/tvmgo/tvm/core/cell"
	"github.com/tvmgo/tvm/core/vm"
	"github.com/tvmgo/tvm/internal/log"
)

var (
	gitTag    = ""
	gitCommit = ""
)

var (
	CodeFlag = cli.StringFlag{
		Name:  "code",
		Usage: "hex-encoded code cell to execute",
	}
	CodeFileFlag = cli.StringFlag{
		Name:  "codefile",
		Usage: "file containing hex-encoded code. '-' reads from stdin",
	}
	GasLimitFlag = cli.Int64Flag{
		Name:  "gaslimit",
		Usage: "gas limit for the run",
		Value: 1_000_000,
	}
	GasCreditFlag = cli.Int64Flag{
		Name:  "gascredit",
		Usage: "free gas credited before the limit is charged",
	}
	DumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "print the final stack and committed state after the run",
	}
	TraceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "print a step trace of executed opcodes",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity (0=crit .. 5=trace)",
		Value: 3,
	}
)

// stdoutTracer implements vm.Tracer by printing each step to stdout; wired
// through Config.Tracer when -trace is set (spec.md §3 "Tracer").
type stdoutTracer struct{}

func (stdoutTracer) CaptureStep(step int64, detail string) {
	fmt.Fprintf(os.Stdout, "step=%d %s\n", step, detail)
}

func loadCode(ctx *cli.Context) (*cell.Slice, error) {
	var raw string
	switch {
	case ctx.IsSet(CodeFlag.Name):
		raw = ctx.String(CodeFlag.Name)
	case ctx.IsSet(CodeFileFlag.Name):
		path := ctx.String(CodeFileFlag.Name)
		var (
			b   []byte
			err error
		)
		if path == "-" {
			b, err = ioutil.ReadAll(os.Stdin)
		} else {
			b, err = ioutil.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading code: %w", err)
		}
		raw = string(b)
	default:
		return nil, fmt.Errorf("one of -code or -codefile is required")
	}
	decoded, err := hex.DecodeString(trimHex(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding code: %w", err)
	}
	b := cell.NewBuilder()
	if err := b.StoreBytes(decoded); err != nil {
		return nil, fmt.Errorf("packing code cell: %w", err)
	}
	return cell.NewSlice(b.Finalize()), nil
}

func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func run(ctx *cli.Context) error {
	log.Root().SetLevel(log.Lvl(ctx.Int(VerbosityFlag.Name)))

	code, err := loadCode(ctx)
	if err != nil {
		return err
	}

	cfg := vm.Config{Handlers: vm.NewStandardHandlers()}
	if ctx.Bool(TraceFlag.Name) {
		cfg.Tracer = stdoutTracer{}
		cfg.Trace = vm.TraceAll
	}

	gas := vm.NewGas(ctx.Int64(GasLimitFlag.Name), ctx.Int64(GasCreditFlag.Name), ctx.Int64(GasLimitFlag.Name))
	e := vm.Setup(code, cfg, nil, nil, gas)

	exit, err := e.Execute()
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	fmt.Printf("exit code: %d\n", exit)
	fmt.Printf("gas used:  %d\n", e.GasUsed())

	if ctx.Bool(DumpFlag.Name) {
		for i, item := range e.WithdrawStack() {
			fmt.Printf("stack[%d] = %s\n", i, item.String())
		}
		committed := e.CommittedState()
		fmt.Printf("committed: %v\n", committed.Committed)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "tvmrun"
	app.Usage = "run a standalone code cell against the execution engine"
	app.Version = fmt.Sprintf("%s-%s", gitTag, gitCommit)
	app.Flags = []cli.Flag{
		CodeFlag,
		CodeFileFlag,
		GasLimitFlag,
		GasCreditFlag,
		DumpFlag,
		TraceFlag,
		VerbosityFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
