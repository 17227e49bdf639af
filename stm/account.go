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

import "github.com/holiman/uint256"

// Account is a convenience wrapper around a TVar for the common case of a
// balance that Withdraw never takes below zero. The engine's core log
// operations stay on plain int64 cells; Account converts between those and
// *uint256.Int at the boundary. The conversions do not check for overflow:
// a value outside the int64 range is truncated when stored.
type Account struct {
	balance TVar
}

// NewAccount allocates a fresh account-shaped TVar local to the current
// attempt, seeded with init.
func NewAccount(tx *Tx, init *uint256.Int) Account {
	if init.Sign() < 0 {
		panic("stm: account balance cannot be negative")
	}
	return Account{balance: tx.NewTVar(int64(init.Uint64()))}
}

// Balance returns the account's tentative balance within the current
// attempt.
func (a Account) Balance(tx *Tx) *uint256.Int {
	return uint256.NewInt(uint64(tx.ReadTVar(a.balance)))
}

// Peek returns the account's committed balance outside of any transaction,
// the Account counterpart to TVar.Peek.
func (a Account) Peek() *uint256.Int {
	return uint256.NewInt(uint64(a.balance.Peek()))
}

// Deposit increases the account's tentative balance by amount.
func (a Account) Deposit(tx *Tx, amount *uint256.Int) {
	cur := tx.ReadTVar(a.balance)
	next := new(uint256.Int).Add(uint256.NewInt(uint64(cur)), amount)
	tx.WriteTVar(a.balance, int64(next.Uint64()))
}

// Withdraw decreases the account's tentative balance by amount, retrying
// the enclosing transaction if the balance is insufficient — the STM
// idiom for "block until funds are available" rather than returning an
// insufficient-funds error.
func (a Account) Withdraw(tx *Tx, amount *uint256.Int) {
	cur := uint256.NewInt(uint64(tx.ReadTVar(a.balance)))
	if cur.Lt(amount) {
		tx.Retry()
	}
	next := new(uint256.Int).Sub(cur, amount)
	tx.WriteTVar(a.balance, int64(next.Uint64()))
}
