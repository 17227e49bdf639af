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

// Package idgen hands out process-wide monotone identities used to tag
// transactional variables.
package idgen

// Id identifies a single TVar for the lifetime of a run. Ids are never
// recycled and two TVars are equal iff their ids are equal.
type Id uint64

// Source is a single "next id" counter. It is not safe for concurrent use;
// callers rely on the scheduler's single-active-task guarantee instead of an
// internal lock, the same assumption go-ethereum's miner worker makes for its
// plain int32 status fields.
type Source struct {
	next Id
}

// NewSource returns a fresh counter starting at 0.
func NewSource() *Source {
	return &Source{}
}

// Fresh returns the current value and advances the counter.
func (s *Source) Fresh() Id {
	id := s.next
	s.next++
	return id
}
