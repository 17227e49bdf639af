package stm

import (
	"testing"

	"github.com/stmrun/stm/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLogsFirstTouchThenReturnsTentative(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 10)
	l := NewLog()

	assert.Equal(t, int64(10), read(l, r))
	write(l, r, 42)
	assert.Equal(t, int64(42), read(l, r))

	require.Len(t, l.order, 1)
}

func TestWriteWithoutPriorReadStillRecordsOldValue(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 5)
	l := NewLog()

	write(l, r, 99)
	e, ok := l.get(r.id)
	require.True(t, ok)
	assert.Equal(t, int64(5), e.OldValue)
	assert.Equal(t, int64(99), e.NewValue)
}

func TestNewLocalTVarIsAlwaysValid(t *testing.T) {
	ids := idgen.NewSource()
	l := NewLog()

	local := newLocalTVar(l, ids, 7)
	assert.True(t, IsValid(l))

	write(l, local, 1000)
	assert.True(t, IsValid(l), "a fresh entry stays valid regardless of its tentative value")
}

func TestIsValidDetectsConcurrentCommit(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 1)
	l := NewLog()

	read(l, r)
	assert.True(t, IsValid(l))

	*r.cell = 2 // simulates another attempt committing first
	assert.False(t, IsValid(l))
}

func TestCommitWritesEveryEntry(t *testing.T) {
	ids := idgen.NewSource()
	r1 := New(ids, 1)
	r2 := New(ids, 2)
	l := NewLog()

	write(l, r1, 11)
	write(l, r2, 22)
	Commit(l)

	assert.Equal(t, int64(11), *r1.cell)
	assert.Equal(t, int64(22), *r2.cell)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 1)
	l := NewLog()
	write(l, r, 5)

	c := l.Clone()
	write(c, r, 6)

	orig, _ := l.get(r.id)
	clone, _ := c.get(r.id)
	assert.Equal(t, int64(5), orig.NewValue)
	assert.Equal(t, int64(6), clone.NewValue)
}

func TestLogNeverHoldsTwoEntriesForSameId(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 1)
	l := NewLog()

	read(l, r)
	write(l, r, 2)
	write(l, r, 3)

	assert.Len(t, l.order, 1)
}

func TestHasAnyChangedReflectsExternalCommit(t *testing.T) {
	ids := idgen.NewSource()
	r := New(ids, 1)
	l := NewLog()
	read(l, r)

	assert.False(t, HasAnyChanged(l))
	*r.cell = 9
	assert.True(t, HasAnyChanged(l))
}
