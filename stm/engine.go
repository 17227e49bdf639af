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

package stm

import (
	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/scheduler"
	"github.com/stmrun/stm/stmerr"
	"github.com/stmrun/stm/stmlog"
)

var engineLog = stmlog.New("pkg", "stm")

// Tx is the handle passed to a running transaction body: every TVar
// operation available inside an atomic block goes through it, and it closes
// over the attempt's private log.
type Tx struct {
	log *Log
	ids *idgen.Source
}

// NewTVar allocates a fresh TVar local to this attempt, with initial value
// init.
func (tx *Tx) NewTVar(init int64) TVar {
	return newLocalTVar(tx.log, tx.ids, init)
}

// ReadTVar returns t's tentative value within this attempt.
func (tx *Tx) ReadTVar(t TVar) int64 {
	return read(tx.log, t)
}

// WriteTVar sets t's tentative value within this attempt.
func (tx *Tx) WriteTVar(t TVar, v int64) {
	write(tx.log, t, v)
}

// Retry abandons the current attempt. Control never returns to the caller:
// Retry unwinds the Go stack via panic and is recovered only at the nearest
// enclosing Atomic or OrElse boundary, which is what lets it be "substituted
// for any expression" in a transaction body rather than threaded back up
// through ordinary error returns.
func (tx *Tx) Retry() {
	panic(stmerr.Retry{})
}

// Block is a transaction body: given a handle into the running attempt, it
// produces a result or calls tx.Retry.
type Block[T any] func(tx *Tx) T

// Atomic runs block to completion as a single transaction: it validates and
// commits the attempt's log, restarting from scratch on a read-set conflict
// and parking on retry until some TVar the attempt touched changes.
func Atomic[T any](t *scheduler.Task, ids *idgen.Source, block Block[T]) T {
	for {
		result, log, retried := runAttempt(ids, block)
		if retried {
			engineLog.Trace("attempt retried, waiting for change")
			waitForChange(t, log)
			continue
		}
		if !IsValid(log) {
			engineLog.Trace("attempt invalid, restarting")
			continue
		}
		Commit(log)
		return result
	}
}

// runAttempt runs block once against a fresh log, reporting whether it
// called Retry instead of returning normally. A panic that is not a
// stmerr.Retry is a bug or a fatal invariant violation and is re-raised
// unchanged, so Atomic never mistakes it for a retry.
func runAttempt[T any](ids *idgen.Source, block Block[T]) (result T, log *Log, retried bool) {
	log = NewLog()
	tx := &Tx{log: log, ids: ids}

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(stmerr.Retry); ok {
					retried = true
					return
				}
				panic(r)
			}
		}()
		result = block(tx)
	}()

	return result, log, retried
}

// waitForChange parks the task until some entry in log has changed, polling
// once per scheduler turn. This is the direct realization of the runtime's
// "retry blocks until a read TVar changes" contract: the cooperative
// scheduler has no change notification mechanism of its own, so the waiting
// task simply yields and re-checks every time it gets a turn.
func waitForChange(t *scheduler.Task, log *Log) {
	for !HasAnyChanged(log) {
		t.Yield()
	}
}
