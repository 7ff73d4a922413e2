// Copyright 2024 by the Authors
// This file is part of the tvm-go library.
//
// The tvm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The tvm-go library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package log provides a minimal, leveled, structured logger in the
// key/value idiom used throughout the go-core/go-ethereum family
// (log.Debug("msg", "key", val, ...)).
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is the level of a log record.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERRO"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	case LvlTrace:
		return "TRCE"
	default:
		return "????"
	}
}

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// Logger writes leveled, structured records to an output with a fixed set
// of key/value context pairs attached to every record.
type Logger struct {
	ctx []interface{}

	mu     sync.Mutex
	out    io.Writer
	color  bool
	lvl    Lvl
	callerDepth int
}

var root = New()

// Root returns the root logger, the target of the package-level Debug/Info/... helpers.
func Root() *Logger { return root }

// New creates a Logger with the given static key/value context appended to
// every record it emits.
func New(ctx ...interface{}) *Logger {
	out := colorable.NewColorableStderr()
	return &Logger{
		ctx:   ctx,
		out:   out,
		color: isatty.IsTerminal(os.Stderr.Fd()),
		lvl:   LvlInfo,
		callerDepth: 2,
	}
}

// SetLevel bounds which records actually get written.
func (l *Logger) SetLevel(lvl Lvl) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
}

// New returns a child logger with additional static context.
func (l *Logger) New(ctx ...interface{}) *Logger {
	child := &Logger{
		ctx:   append(append([]interface{}{}, l.ctx...), ctx...),
		out:   l.out,
		color: l.color,
		lvl:   l.lvl,
		callerDepth: l.callerDepth,
	}
	return child
}

func (l *Logger) write(lvl Lvl, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.lvl {
		return
	}
	ts := time.Now().Format("01-02|15:04:05.000")
	call := stack.Caller(l.callerDepth)
	prefix := fmt.Sprintf("%s[%s] %-40s", ts, lvl, msg)
	if l.color {
		prefix = lvlColor[lvl].Sprintf("%s[%s]", ts, lvl) + fmt.Sprintf(" %-40s", msg)
	}
	all := append(append([]interface{}{}, l.ctx...), ctx...)
	line := prefix
	for i := 0; i+1 < len(all); i += 2 {
		line += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	if len(all)%2 == 1 {
		line += fmt.Sprintf(" %v=MISSING", all[len(all)-1])
	}
	fmt.Fprintf(l.out, "%s  caller=%+v\n", line, call)
}

func (l *Logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }

// Package-level helpers delegate to the root logger, matching the
// log.Debug(...)-at-call-site idiom used throughout the teacher codebase.
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LvlWarn, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LvlInfo, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }
func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }
