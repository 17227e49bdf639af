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

// Package scheduler implements the cooperative, single-threaded task runner
// every STM suspension point is mediated through. Its loop shape is
// generalized from miner/worker.go's channel-dispatch goroutines
// (mainLoop/taskLoop/resultLoop): one active dispatcher
// draining a queue of pending work, never more than one task's state
// mutated at a time.
package scheduler

import (
	"runtime"

	"github.com/stmrun/stm/deque"
	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/stmlog"
)

// historyDepth bounds how many retired task ids Scheduler.History recalls.
const historyDepth = 64

var log = stmlog.New("pkg", "scheduler")

// Task is the handle a running task uses to suspend itself. It is handed to
// the task's body instead of being reached for through ambient/task-local
// state, per the "effects become methods on an explicit context" design
// note.
type Task struct {
	sched  *Scheduler
	id     idgen.Id
	resume chan struct{}
	parked chan struct{}
}

// Scheduler owns the single ready queue of suspended task continuations.
// Exactly one task's body is ever executing at a time: the resume/parked
// channel handshake in invoke provides the happens-before edge, so the ready
// queue itself needs no separate lock (mirroring miner/worker.go's unguarded
// status fields, safe only because a single active task touches them).
type Scheduler struct {
	ready   *deque.Deque[*Task]
	ids     *idgen.Source
	retired *recentTasks
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		ready:   deque.New[*Task](),
		ids:     idgen.NewSource(),
		retired: newRecentTasks(historyDepth),
	}
}

// History returns the ids of the most recently retired tasks, oldest first,
// capped at historyDepth entries. Useful for a console or test to confirm
// which tasks actually ran without the scheduler keeping every task alive.
func (s *Scheduler) History() []idgen.Id {
	return s.retired.snapshot()
}

// Run starts main as the first task and drains the ready queue, invoking one
// continuation at a time, until it is empty.
func (s *Scheduler) Run(main func(t *Task)) {
	first := s.spawn(main)
	s.invoke(first)
	for {
		t, ok := s.ready.PopBack()
		if !ok {
			return
		}
		s.invoke(t)
	}
}

func (s *Scheduler) spawn(body func(t *Task)) *Task {
	t := &Task{
		sched:  s,
		id:     s.ids.Fresh(),
		resume: make(chan struct{}),
		parked: make(chan struct{}),
	}
	go func() {
		<-t.resume
		body(t)
		// Falling off the end behaves like an implicit exit: nothing is
		// requeued.
		s.retired.record(t.id)
		t.parked <- struct{}{}
	}()
	return t
}

// enqueue schedules t to run again; it is always the FIFO-preserving
// "push to the front, pop from the back" move described in the scheduler
// contract.
func (s *Scheduler) enqueue(t *Task) {
	s.ready.PushFront(t)
}

// invoke resumes t and blocks until t suspends again (Yield), forks, exits,
// or simply returns.
func (s *Scheduler) invoke(t *Task) {
	t.resume <- struct{}{}
	<-t.parked
}

// Yield suspends the current task, enqueues its continuation, and returns
// control to the scheduler. It resumes once every task ahead of it in the
// queue has had a turn.
func (t *Task) Yield() {
	log.Trace("yield")
	t.sched.enqueue(t)
	t.parked <- struct{}{}
	<-t.resume
}

// Fork splits the current task into two new tasks: child runs with the
// "false" tag and parent runs with the "true" tag, parked behind it. Both are
// pushed to the front of the ready queue, so child runs before parent, and
// both run only after every task already waiting in the queue. This is
// the `fork{b1}{b2}` convenience form from the runtime's specification; a
// bare fork() returning a boolean tag from a single call site would require
// duplicating the calling goroutine's continuation, which has no faithful
// realization in Go without real multi-shot continuations, so only the
// two-closure form is offered.
func (t *Task) Fork(child, parent func(t *Task)) {
	log.Trace("fork")
	c := t.sched.spawn(child)
	p := t.sched.spawn(parent)
	t.sched.enqueue(c)
	t.sched.enqueue(p)
	t.sched.retired.record(t.id)
	t.parked <- struct{}{}
	runtime.Goexit()
}

// Exit terminates the calling task immediately. No continuation is
// enqueued; the scheduler simply moves on to the next ready task.
func (t *Task) Exit() {
	log.Trace("exit")
	t.sched.retired.record(t.id)
	t.parked <- struct{}{}
	runtime.Goexit()
}
