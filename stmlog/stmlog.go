// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package stmlog is a small structured, leveled logger matching the calling
// convention of go-ethereum's own log package (a fork of log15): package-level
// Trace/Debug/Info/Warn/Error/Crit functions taking a message followed by
// alternating key/value pairs.
package stmlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	lru "github.com/hashicorp/golang-lru"
)

// Lvl is a logging severity, ordered from most to least severe.
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

// history is a bounded ring of recently formatted records, consulted by the
// demo console's "history" command. golang-lru gives us eviction for free
// instead of hand-rolling a ring buffer.
var (
	history, _  = lru.New(256)
	historySeq  uint64
	historyLock sync.Mutex
)

func record(line string) {
	historyLock.Lock()
	defer historyLock.Unlock()
	historySeq++
	history.Add(historySeq, line)
}

// History returns the recent log lines, oldest first.
func History() []string {
	historyLock.Lock()
	defer historyLock.Unlock()
	keys := history.Keys()
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := history.Get(k); ok {
			lines = append(lines, v.(string))
		}
	}
	return lines
}

// exitFunc is called by Crit after logging; tests override it so the
// fatal path can be exercised without killing the test binary.
var exitFunc = os.Exit

// SetExitFunc overrides the function Crit calls after logging. Intended for
// tests; production code should never need this.
func SetExitFunc(f func(int)) { exitFunc = f }

// Logger carries a persistent set of context key/values, established once
// via New and attached to every record it emits.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Lvl
	ctx   []interface{}
}

// New creates a logger. ctx is a flat key, value, key, value, ... list
// attached to every subsequent record, mirroring go-ethereum's log.New(ctx...)
// convention.
func New(ctx ...interface{}) *Logger {
	return &Logger{out: os.Stderr, level: LvlInfo, ctx: append([]interface{}{}, ctx...)}
}

// New returns a child logger that additionally carries ctx.
func (l *Logger) New(ctx ...interface{}) *Logger {
	child := &Logger{out: l.out, level: l.level}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

// SetOutput redirects where this logger writes formatted records.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetLevel sets the minimum severity this logger emits (LvlTrace is most
// verbose).
func (l *Logger) SetLevel(lvl Lvl) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
}

func (l *Logger) log(lvl Lvl, skip int, msg string, ctx []interface{}) {
	if lvl > l.level {
		return
	}
	line := format(lvl, skip+1, msg, append(append([]interface{}{}, l.ctx...), ctx...))
	l.mu.Lock()
	out := l.out
	l.mu.Unlock()
	fmt.Fprintln(out, line)
	record(line)
}

func format(lvl Lvl, skip int, msg string, ctx []interface{}) string {
	caller := stack.Caller(skip)
	b := fmt.Sprintf("%s [%s] %s caller=%+v", time.Now().Format("15:04:05.000"), lvl, msg, caller)
	for i := 0; i+1 < len(ctx); i += 2 {
		b += fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])
	}
	return b
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, 2, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, 2, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LvlInfo, 2, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LvlWarn, 2, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, 2, msg, ctx) }

// Crit logs at the highest severity and then terminates the process. Use
// only for programmer errors that cannot be recovered locally (see
// stmerr.AssertLogInvariant).
func (l *Logger) Crit(msg string, ctx ...interface{}) {
	l.log(LvlCrit, 2, msg, ctx)
	exitFunc(1)
}

var root = New()

// SetOutput redirects the root logger's output.
func SetOutput(w io.Writer) { root.SetOutput(w) }

// SetLevel sets the root logger's minimum severity.
func SetLevel(lvl Lvl) { root.SetLevel(lvl) }

func Trace(msg string, ctx ...interface{}) { root.log(LvlTrace, 2, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.log(LvlDebug, 2, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.log(LvlInfo, 2, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.log(LvlWarn, 2, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.log(LvlError, 2, msg, ctx) }
func Crit(msg string, ctx ...interface{}) {
	root.log(LvlCrit, 2, msg, ctx)
	exitFunc(1)
}
