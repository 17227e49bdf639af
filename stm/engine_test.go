package stm

import (
	"sync"
	"testing"

	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getR retries unless r holds at least a, in which case it withdraws a and
// returns the withdrawn amount.
func getR(tx *Tx, r TVar, a int64) int64 {
	v := tx.ReadTVar(r)
	if v < a {
		tx.Retry()
	}
	tx.WriteTVar(r, v-a)
	return a
}

// putR deposits a into r.
func putR(tx *Tx, r TVar, a int64) {
	v := tx.ReadTVar(r)
	tx.WriteTVar(r, v+a)
}

// runAtomic is a test convenience: it runs a single atomic block to
// completion on its own scheduler, with no other tasks contending.
func runAtomic[T any](ids *idgen.Source, block Block[T]) T {
	var result T
	sched := scheduler.New()
	sched.Run(func(t *scheduler.Task) {
		result = Atomic(t, ids, block)
	})
	return result
}

func TestOrElseFirstRetriesSecondSucceeds(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 8)
	r2 := New(ids, 13)

	runAtomic(ids, func(tx *Tx) struct{} {
		OrElse(tx,
			func(tx *Tx) int64 { return getR(tx, r1, 10) },
			func(tx *Tx) int64 { return getR(tx, r2, 10) },
		)
		return struct{}{}
	})

	assert.Equal(t, int64(8), *r1.cell)
	assert.Equal(t, int64(3), *r2.cell)
}

func TestOrElsePrecedingWriteVisibleToSurvivingAlt(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 8)
	r2 := New(ids, 8)

	runAtomic(ids, func(tx *Tx) struct{} {
		putR(tx, r2, 5)
		OrElse(tx,
			func(tx *Tx) int64 { return getR(tx, r1, 10) },
			func(tx *Tx) int64 { return getR(tx, r2, 10) },
		)
		return struct{}{}
	})

	assert.Equal(t, int64(8), *r1.cell)
	assert.Equal(t, int64(3), *r2.cell)
}

func TestNestedOrElseInnerRetriesOuterSecondWins(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 8)
	r2 := New(ids, 13)

	runAtomic(ids, func(tx *Tx) struct{} {
		v := tx.ReadTVar(r1)
		OrElse(tx,
			func(tx *Tx) int64 {
				tx.WriteTVar(r1, v+5)
				return OrElse(tx,
					func(tx *Tx) int64 { return getR(tx, r1, 20) },
					func(tx *Tx) int64 { return getR(tx, r1, 15) },
				)
			},
			func(tx *Tx) int64 { return getR(tx, r1, 4) },
		)
		return struct{}{}
	})

	assert.Equal(t, int64(4), *r1.cell)
	assert.Equal(t, int64(13), *r2.cell)
}

func TestNestedOrElseInnerSucceeds(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 8)
	r2 := New(ids, 13)

	runAtomic(ids, func(tx *Tx) struct{} {
		v := tx.ReadTVar(r1)
		OrElse(tx,
			func(tx *Tx) int64 {
				tx.WriteTVar(r1, v+5)
				return OrElse(tx,
					func(tx *Tx) int64 { return getR(tx, r1, 20) },
					func(tx *Tx) int64 { return getR(tx, r1, 10) },
				)
			},
			func(tx *Tx) int64 { return getR(tx, r2, 4) },
		)
		return struct{}{}
	})

	assert.Equal(t, int64(3), *r1.cell)
	assert.Equal(t, int64(13), *r2.cell)
}

func TestRetryWaitsForChange(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 10)
	r2 := New(ids, 10)

	sched := scheduler.New()
	var wg sync.WaitGroup
	wg.Add(2)

	sched.Run(func(t *scheduler.Task) {
		t.Fork(func(t *scheduler.Task) {
			// "B": four sequential deposits of 1, yielding between each.
			defer wg.Done()
			for i := 0; i < 4; i++ {
				Atomic(t, ids, func(tx *Tx) struct{} {
					putR(tx, r1, 1)
					return struct{}{}
				})
				t.Yield()
			}
			t.Exit()
		}, func(t *scheduler.Task) {
			// "A": reads r1, yields, then withdraws from r2 and r1.
			defer wg.Done()
			Atomic(t, ids, func(tx *Tx) struct{} {
				tx.ReadTVar(r1)
				t.Yield()
				getR(tx, r2, 3)
				getR(tx, r1, 13)
				return struct{}{}
			})
			t.Exit()
		})
	})

	wg.Wait()
	assert.Equal(t, int64(1), *r1.cell)
	assert.Equal(t, int64(7), *r2.cell)
}

func TestCommitConflictBothIncrementsSurvive(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 0)

	sched := scheduler.New()
	var wg sync.WaitGroup
	wg.Add(2)

	increment := func(t *scheduler.Task) {
		defer wg.Done()
		Atomic(t, ids, func(tx *Tx) struct{} {
			v := tx.ReadTVar(r)
			t.Yield()
			tx.WriteTVar(r, v+1)
			return struct{}{}
		})
		t.Exit()
	}

	sched.Run(func(t *scheduler.Task) {
		t.Fork(increment, increment)
	})

	wg.Wait()
	assert.Equal(t, int64(2), *r.cell)
}

func TestOrElseBothAlternativesRetryPropagates(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 0)

	sched := scheduler.New()
	var resumed bool

	sched.Run(func(t *scheduler.Task) {
		t.Fork(func(t *scheduler.Task) {
			Atomic(t, ids, func(tx *Tx) struct{} {
				OrElse(tx,
					func(tx *Tx) int64 { return getR(tx, r, 5) },
					func(tx *Tx) int64 { return getR(tx, r, 10) },
				)
				return struct{}{}
			})
			resumed = true
			t.Exit()
		}, func(t *scheduler.Task) {
			// Deposit enough to unblock the waiting orElse, then exit.
			t.Yield()
			Atomic(t, ids, func(tx *Tx) struct{} {
				putR(tx, r, 5)
				return struct{}{}
			})
			t.Exit()
		})
	})

	require.True(t, resumed)
	assert.Equal(t, int64(0), *r.cell)
}
