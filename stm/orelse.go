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
	"github.com/stmrun/stm/stmerr"
)

// OrElse runs m1 against a simulated log cloned from tx's current log. If m1
// completes without retrying, its effects are absorbed into tx and its
// result is returned. If m1 retries, tx is left untouched and m2 is run
// instead, against a fresh clone taken from tx's ORIGINAL log — not from
// m1's log — so that any tentative writes m1 made before retrying are
// discarded rather than leaking into m2's attempt. If m2 also retries,
// OrElse itself retries, propagating the panic to the enclosing Atomic (or
// OrElse); before it does, both alternatives' logs are merged into tx's log,
// so the wait covers every TVar either alternative touched.
func OrElse[T any](tx *Tx, m1, m2 func(tx *Tx) T) T {
	sim1 := tx.log.Clone()
	result, retried := runSim(sim1, tx.ids, m1)
	if !retried {
		absorb(tx.log, sim1)
		return result
	}

	sim2 := tx.log.Clone()
	result, retried = runSim(sim2, tx.ids, m2)
	if !retried {
		absorb(tx.log, sim2)
		return result
	}

	// Both alternatives retried: propagate a retry from OrElse itself. The
	// enclosing attempt's log is what the scheduler will wait on, so it
	// must include everything either alternative read — otherwise a commit
	// to a TVar only m1 or only m2 touched would go unnoticed and the
	// waiting task would never be woken.
	absorb(tx.log, sim1)
	absorb(tx.log, sim2)
	panic(stmerr.Retry{})
}

// runSim runs body against log as if it were its own attempt's log,
// reporting whether it retried. It shares runAttempt's recover/re-panic
// discipline so a fatal error inside either alternative still propagates
// unchanged.
func runSim[T any](log *Log, ids *idgen.Source, body func(tx *Tx) T) (result T, retried bool) {
	sim := &Tx{log: log, ids: ids}

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
		result = body(sim)
	}()

	return result, retried
}

// absorb merges src's entries into dst, overwriting any entry dst already
// holds for the same TVar and appending any new one. Used once an
// alternative succeeds: its simulated log becomes the real attempt's log.
func absorb(dst, src *Log) {
	for _, e := range src.Entries() {
		dst.put(e)
	}
}
