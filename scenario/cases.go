// Copyright 2017 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package scenario

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/scheduler"
	"github.com/stmrun/stm/stm"
)

// Case is one runnable scenario: Run executes it end to end and reports
// whether the observed final state matched what it expected.
type Case struct {
	Name string
	Run  func() CaseResult
}

// CaseResult is what a Case reports back, in a shape cheap to render as a
// table row or a console line.
type CaseResult struct {
	Name   string
	Passed bool
	Detail string
}

func getR(tx *stm.Tx, r stm.TVar, a int64) int64 {
	v := tx.ReadTVar(r)
	if v < a {
		tx.Retry()
	}
	tx.WriteTVar(r, v-a)
	return a
}

func putR(tx *stm.Tx, r stm.TVar, a int64) {
	v := tx.ReadTVar(r)
	tx.WriteTVar(r, v+a)
}

func expect(name string, r1, r2, wantR1, wantR2 int64) CaseResult {
	if r1 == wantR1 && r2 == wantR2 {
		return CaseResult{Name: name, Passed: true, Detail: fmt.Sprintf("r1=%d r2=%d", r1, r2)}
	}
	return CaseResult{
		Name: name, Passed: false,
		Detail: fmt.Sprintf("got r1=%d r2=%d, want r1=%d r2=%d", r1, r2, wantR1, wantR2),
	}
}

// OrElseSuite is the four canonical orElse scenarios: an alternative that
// retries and falls through to a second that succeeds, a preceding write
// staying visible to the surviving alternative, and two doubly nested
// orElse cases showing which branch wins.
func OrElseSuite() []Case {
	return []Case{
		{
			Name: "first retries, second succeeds",
			Run: func() CaseResult {
				ids := idgen.NewSource()
				r1 := stm.New(ids, 8)
				r2 := stm.New(ids, 13)
				runSingleWith(ids, func(tx *stm.Tx) struct{} {
					stm.OrElse(tx,
						func(tx *stm.Tx) int64 { return getR(tx, r1, 10) },
						func(tx *stm.Tx) int64 { return getR(tx, r2, 10) },
					)
					return struct{}{}
				})
				return expect("first retries, second succeeds", r1.Peek(), r2.Peek(), 8, 3)
			},
		},
		{
			Name: "preceding write visible to surviving alternative",
			Run: func() CaseResult {
				ids := idgen.NewSource()
				r1 := stm.New(ids, 8)
				r2 := stm.New(ids, 8)
				runSingleWith(ids, func(tx *stm.Tx) struct{} {
					putR(tx, r2, 5)
					stm.OrElse(tx,
						func(tx *stm.Tx) int64 { return getR(tx, r1, 10) },
						func(tx *stm.Tx) int64 { return getR(tx, r2, 10) },
					)
					return struct{}{}
				})
				return expect("preceding write visible to surviving alternative", r1.Peek(), r2.Peek(), 8, 3)
			},
		},
		{
			Name: "nested orElse, inner retries, outer second wins",
			Run: func() CaseResult {
				ids := idgen.NewSource()
				r1 := stm.New(ids, 8)
				r2 := stm.New(ids, 13)
				runSingleWith(ids, func(tx *stm.Tx) struct{} {
					v := tx.ReadTVar(r1)
					stm.OrElse(tx,
						func(tx *stm.Tx) int64 {
							tx.WriteTVar(r1, v+5)
							return stm.OrElse(tx,
								func(tx *stm.Tx) int64 { return getR(tx, r1, 20) },
								func(tx *stm.Tx) int64 { return getR(tx, r1, 15) },
							)
						},
						func(tx *stm.Tx) int64 { return getR(tx, r1, 4) },
					)
					return struct{}{}
				})
				return expect("nested orElse, inner retries, outer second wins", r1.Peek(), r2.Peek(), 4, 13)
			},
		},
		{
			Name: "nested orElse, inner succeeds",
			Run: func() CaseResult {
				ids := idgen.NewSource()
				r1 := stm.New(ids, 8)
				r2 := stm.New(ids, 13)
				runSingleWith(ids, func(tx *stm.Tx) struct{} {
					v := tx.ReadTVar(r1)
					stm.OrElse(tx,
						func(tx *stm.Tx) int64 {
							tx.WriteTVar(r1, v+5)
							return stm.OrElse(tx,
								func(tx *stm.Tx) int64 { return getR(tx, r1, 20) },
								func(tx *stm.Tx) int64 { return getR(tx, r1, 10) },
							)
						},
						func(tx *stm.Tx) int64 { return getR(tx, r2, 4) },
					)
					return struct{}{}
				})
				return expect("nested orElse, inner succeeds", r1.Peek(), r2.Peek(), 3, 13)
			},
		},
	}
}

func runSingleWith(ids *idgen.Source, block stm.Block[struct{}]) {
	sched := scheduler.New()
	sched.Run(func(t *scheduler.Task) {
		stm.Atomic(t, ids, block)
	})
}

// RetrySuite is the two scenarios that need more than one task: retry
// blocking until a watched TVar changes, and two tasks racing a commit on
// the same TVar with neither one's increment lost.
func RetrySuite() []Case {
	return []Case{
		{
			Name: "retry waits for change",
			Run:  runRetryWaitsForChange,
		},
		{
			Name: "commit conflict, both increments survive",
			Run:  runCommitConflict,
		},
	}
}

func runRetryWaitsForChange() CaseResult {
	ids := idgen.NewSource()
	r1 := stm.New(ids, 10)
	r2 := stm.New(ids, 10)

	sched := scheduler.New()
	var wg sync.WaitGroup
	wg.Add(2)

	sched.Run(func(t *scheduler.Task) {
		t.Fork(func(t *scheduler.Task) {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
					putR(tx, r1, 1)
					return struct{}{}
				})
				t.Yield()
			}
			t.Exit()
		}, func(t *scheduler.Task) {
			defer wg.Done()
			stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
				tx.ReadTVar(r1)
				getR(tx, r2, 3)
				getR(tx, r1, 13)
				return struct{}{}
			})
			t.Exit()
		})
	})

	wg.Wait()
	return expect("retry waits for change", r1.Peek(), r2.Peek(), 1, 7)
}

func runCommitConflict() CaseResult {
	ids := idgen.NewSource()
	r := stm.New(ids, 0)
	r2 := stm.New(ids, 0) // unused second slot, kept so expect()'s two-TVar shape applies uniformly

	sched := scheduler.New()
	var wg sync.WaitGroup
	wg.Add(2)

	increment := func(t *scheduler.Task) {
		defer wg.Done()
		stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
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
	return expect("commit conflict, both increments survive", r.Peek(), r2.Peek(), 2, 0)
}

// BankSuite runs a single scenario driven by cfg: a spender tries to
// withdraw Amount from Spender's account into Payee's, retrying until the
// configured deposits land, using stm.Account instead of a raw TVar.
func BankSuite(cfg BankConfig) []Case {
	return []Case{
		{
			Name: "bank transfer retries until funded",
			Run:  func() CaseResult { return runBankTransfer(cfg) },
		},
	}
}

func runBankTransfer(cfg BankConfig) CaseResult {
	spenderStart, err := parseUint256(cfg.Accounts[cfg.Spender])
	if err != nil {
		return CaseResult{Name: "bank transfer retries until funded", Passed: false, Detail: err.Error()}
	}
	payeeStart, err := parseUint256(cfg.Accounts[cfg.Payee])
	if err != nil {
		return CaseResult{Name: "bank transfer retries until funded", Passed: false, Detail: err.Error()}
	}
	amount, err := parseUint256(cfg.Amount)
	if err != nil {
		return CaseResult{Name: "bank transfer retries until funded", Passed: false, Detail: err.Error()}
	}

	ids := idgen.NewSource()
	sched := scheduler.New()

	var spender, payee stm.Account
	sched.Run(func(t *scheduler.Task) {
		stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
			spender = stm.NewAccount(tx, spenderStart)
			payee = stm.NewAccount(tx, payeeStart)
			return struct{}{}
		})

		// The withdrawal is the fork's child so it gets the first turn and
		// immediately retries against the unfunded balance; the deposit
		// loop then runs as the parent, and each deposit's commit is what
		// wakes the parked withdrawal back up.
		t.Fork(func(t *scheduler.Task) {
			stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
				spender.Withdraw(tx, amount)
				payee.Deposit(tx, amount)
				return struct{}{}
			})
			t.Exit()
		}, func(t *scheduler.Task) {
			for _, d := range cfg.Deposits {
				amt, derr := parseUint256(d.Amount)
				if derr != nil {
					t.Exit()
				}
				stm.Atomic(t, ids, func(tx *stm.Tx) struct{} {
					spender.Deposit(tx, amt)
					return struct{}{}
				})
				t.Yield()
			}
			t.Exit()
		})
	})

	wantSpender := new(uint256.Int).Sub(new(uint256.Int).Add(spenderStart, sumDeposits(cfg.Deposits)), amount)
	wantPayee := new(uint256.Int).Add(payeeStart, amount)

	gotSpenderTVar, gotPayeeTVar := spender.Peek(), payee.Peek()
	if gotSpenderTVar.Eq(wantSpender) && gotPayeeTVar.Eq(wantPayee) {
		return CaseResult{
			Name: "bank transfer retries until funded", Passed: true,
			Detail: fmt.Sprintf("spender=%s payee=%s", gotSpenderTVar, gotPayeeTVar),
		}
	}
	return CaseResult{
		Name: "bank transfer retries until funded", Passed: false,
		Detail: fmt.Sprintf("got spender=%s payee=%s, want spender=%s payee=%s", gotSpenderTVar, gotPayeeTVar, wantSpender, wantPayee),
	}
}

func sumDeposits(deposits []DepositConfig) *uint256.Int {
	sum := uint256.NewInt(0)
	for _, d := range deposits {
		amt, err := parseUint256(d.Amount)
		if err != nil {
			continue
		}
		sum = new(uint256.Int).Add(sum, amt)
	}
	return sum
}

func parseUint256(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("scenario: invalid amount %q: %w", s, err)
	}
	return v, nil
}
