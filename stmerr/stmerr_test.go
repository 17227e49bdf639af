package stmerr

import (
	"os"
	"testing"

	"github.com/stmrun/stm/idgen"
	"github.com/stmrun/stm/stmlog"
	"github.com/stretchr/testify/assert"
)

func TestAssertLogInvariantPassesOnDistinctIds(t *testing.T) {
	assert.NotPanics(t, func() {
		AssertLogInvariant([]idgen.Id{0, 1, 2, 3})
	})
}

func TestAssertLogInvariantFatalsOnDuplicate(t *testing.T) {
	var exited int
	stmlog.SetExitFunc(func(code int) { exited = code })
	defer stmlog.SetExitFunc(os.Exit)

	assert.Panics(t, func() {
		AssertLogInvariant([]idgen.Id{5, 5})
	})
	assert.Equal(t, 1, exited)
}
