// Package stmerr draws the line between the runtime's two failure taxa: a
// Retry panic value, recovered only at an atomic/orElse boundary, and
// AssertLogInvariant, which never returns control to its caller — it is a
// programmer error (a log holding two entries for the same TVar id) and is
// fatal by contract.
package stmerr

import (
	"fmt"

	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/stmlog"
)

// Retry is the panic value raised by stm.Tx.Retry. It carries no data; its
// type alone identifies it to the recover in runAttempt.
type Retry struct{}

// AssertLogInvariant checks that ids — the insertion-order id list of a log
// — contains no id twice. A violation can only arise from a bug in the log
// primitives themselves (every exported Log operation maintains this
// invariant), so it is treated as fatal rather than recoverable.
func AssertLogInvariant(ids []idgen.Id) {
	seen := make(map[idgen.Id]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			stmlog.Crit("duplicate TVar entry in log", "id", id)
			panic(fmt.Sprintf("stm: duplicate log entry for tvar %d", id))
		}
		seen[id] = struct{}{}
	}
}
