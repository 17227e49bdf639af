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

// Package stm implements the transactional engine: TVars, per-attempt logs,
// and the atomic/orElse/retry protocol built on top of them.
package stm

import "github.com/stmrun/stm/idgen"

// TVar is a transactional variable: an immutable identity paired with a
// cell shared across every transaction that touches it. The cell is
// mutated only by a successful commit.
type TVar struct {
	id   idgen.Id
	cell *int64
}

// ID returns the identity two TVars are compared by.
func (v TVar) ID() idgen.Id { return v.id }

// New allocates a TVar outside of any running transaction, seeded with
// init. Scenario setup and top-level program state use this; code running
// inside an atomic block must go through Tx.NewTVar instead so the
// allocation is itself part of the attempt's log.
func New(ids *idgen.Source, init int64) TVar {
	cell := new(int64)
	*cell = init
	return TVar{id: ids.Fresh(), cell: cell}
}

// Peek reads the TVar's committed value directly, bypassing any log. It has
// no place inside a transaction body — use Tx.ReadTVar there — but lets a
// harness inspect final state once every task has finished running.
func (v TVar) Peek() int64 {
	return *v.cell
}

// Entry is one log record for one TVar: the value observed at first touch,
// the tentative value to commit, and whether the TVar was itself allocated
// within the current attempt.
type Entry struct {
	TVar     TVar
	OldValue int64
	NewValue int64
	Fresh    bool
}

// IsValidEntry reports whether the TVar's shared cell still holds the value
// this entry observed at first touch. A fresh entry is trivially valid: no
// other attempt could have observed a cell that did not exist before this
// attempt allocated it.
func IsValidEntry(e *Entry) bool {
	return *e.TVar.cell == e.OldValue
}

// HasChanged reports whether the TVar's shared cell no longer holds the
// value this entry observed — used by retry to decide whether to re-execute.
func HasChanged(e *Entry) bool {
	return *e.TVar.cell != e.OldValue
}
