// Copyright 2016 The go-ethereum Authors
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

package scheduler

import (
	"container/ring"
	"sync"

	"github.com/stmrun/stm/idgen"
)

// recentTasks is a small aging ring of the ids of the most recently retired
// tasks, kept so a console or test can ask "what just ran" without the
// scheduler needing to retain every task it has ever spawned. It is the
// same shape as tracking a locally mined block until it is old enough that
// nobody will ask about it again: once the ring wraps, the oldest entry is
// simply overwritten.
type recentTasks struct {
	depth uint
	tasks *ring.Ring
	lock  sync.Mutex
}

func newRecentTasks(depth uint) *recentTasks {
	return &recentTasks{depth: depth}
}

// record appends id as the most recently retired task, evicting the oldest
// entry once the ring has grown to depth.
func (r *recentTasks) record(id idgen.Id) {
	r.lock.Lock()
	defer r.lock.Unlock()

	item := ring.New(1)
	item.Value = id

	if r.tasks == nil {
		r.tasks = item
		return
	}
	r.tasks.Move(-1).Link(item)
	if uint(r.tasks.Len()) > r.depth {
		// Drop the oldest entry (the current head) and advance to the next
		// one, the same head-eviction move miner/unconfirmed.go's ring used
		// to age out blocks past its depth allowance.
		r.tasks = r.tasks.Move(-1)
		r.tasks.Unlink(1)
		r.tasks = r.tasks.Move(1)
	}
}

// snapshot returns the recorded ids, oldest first.
func (r *recentTasks) snapshot() []idgen.Id {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.tasks == nil {
		return nil
	}
	out := make([]idgen.Id, 0, r.tasks.Len())
	r.tasks.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(idgen.Id))
		}
	})
	return out
}
