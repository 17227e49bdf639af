package stm

import (
	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/stmerr"
)

// Log is the per-attempt record of every TVar touched so far: at most one
// Entry per TVar identity. A Log is owned exclusively by the attempt that
// created it; it is discarded on retry/restart or absorbed by a parent log
// on a successful orElse alternative.
type Log struct {
	entries map[idgen.Id]*Entry
	order   []idgen.Id // first-touch order, most recently first touched first
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{entries: make(map[idgen.Id]*Entry)}
}

// Entries returns the log's entries in first-touch order (most recent first). The
// returned slice must not be mutated by the caller.
func (l *Log) Entries() []*Entry {
	out := make([]*Entry, len(l.order))
	for i, id := range l.order {
		out[i] = l.entries[id]
	}
	return out
}

func (l *Log) assertInvariant() {
	stmerr.AssertLogInvariant(l.order)
}

func (l *Log) get(id idgen.Id) (*Entry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

func (l *Log) put(e *Entry) {
	if _, exists := l.entries[e.TVar.id]; !exists {
		l.order = append([]idgen.Id{e.TVar.id}, l.order...)
	}
	l.entries[e.TVar.id] = e
}

// Clone returns a deep-enough copy of l: entries are copied by value (so
// mutating the copy's NewValue does not affect l), but every entry's TVar
// still refers to the one shared cell. Used by orElse to give each
// alternative its own working log starting from the same parent state.
func (l *Log) Clone() *Log {
	c := NewLog()
	for _, id := range l.order {
		e := *l.entries[id]
		c.entries[id] = &e
	}
	c.order = append([]idgen.Id{}, l.order...)
	return c
}

// read implements spec §4.3's read(L, t): return the logged tentative value
// if t was already touched, otherwise sample the shared cell, log it, and
// return it.
func read(l *Log, t TVar) int64 {
	l.assertInvariant()
	defer l.assertInvariant()

	if e, ok := l.get(t.id); ok {
		return e.NewValue
	}
	v := *t.cell
	l.put(&Entry{TVar: t, OldValue: v, NewValue: v, Fresh: false})
	return v
}

// write implements spec §4.3's write(L, t, v).
func write(l *Log, t TVar, v int64) {
	l.assertInvariant()
	defer l.assertInvariant()

	if e, ok := l.get(t.id); ok {
		e.NewValue = v
		return
	}
	c := *t.cell
	l.put(&Entry{TVar: t, OldValue: c, NewValue: v, Fresh: false})
}

// newLocalTVar implements spec §4.3's newLocalTVar(L, init): allocate a
// fresh id and cell, log it as a fresh entry, and return the new TVar.
func newLocalTVar(l *Log, ids *idgen.Source, init int64) TVar {
	l.assertInvariant()
	defer l.assertInvariant()

	cell := new(int64)
	*cell = init
	t := TVar{id: ids.Fresh(), cell: cell}
	l.put(&Entry{TVar: t, OldValue: init, NewValue: init, Fresh: true})
	return t
}

// IsValid is the conjunction of IsValidEntry over every entry in l.
func IsValid(l *Log) bool {
	for _, id := range l.order {
		if !IsValidEntry(l.entries[id]) {
			return false
		}
	}
	return true
}

// Commit writes every entry's NewValue into its TVar's shared cell. Callers
// must only call Commit after IsValid(l) returns true, and must not yield
// between the two calls — commit has no suspension points of its own, which
// is what makes it atomic in the cooperative model.
func Commit(l *Log) {
	for _, id := range l.order {
		e := l.entries[id]
		*e.TVar.cell = e.NewValue
	}
}

// HasAnyChanged reports whether any entry in l has changed since it was
// first touched — used by retry's wait loop.
func HasAnyChanged(l *Log) bool {
	for _, id := range l.order {
		if HasChanged(l.entries[id]) {
			return true
		}
	}
	return false
}
