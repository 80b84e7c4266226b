package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerToggle(t *testing.T) {
	l := NewLedger()
	assert.True(t, l.TogglePending("a"))
	assert.True(t, l.IsPending("a"))
	assert.False(t, l.TogglePending("a"))
	assert.False(t, l.IsPending("a"))
}

func TestLedgerApplyOnlyVisible(t *testing.T) {
	l := NewLedger()
	l.TogglePending("a")
	l.TogglePending("b")
	l.TogglePending("c")

	moved := l.Apply([]string{"x", "c", "a"})
	assert.Equal(t, []string{"c", "a"}, moved)
	assert.True(t, l.IsCommitted("a"))
	assert.True(t, l.IsPending("b"), "hidden row stays pending")
	assert.Equal(t, []string{"b"}, l.PendingIDs())
	assert.Equal(t, []string{"a", "c"}, l.CommittedIDs())
}

func TestLedgerApplyEmptyPendingIsNoop(t *testing.T) {
	l := NewLedger()
	assert.Nil(t, l.Apply([]string{"a"}))
	assert.Zero(t, l.CommittedCount())
}

func TestLedgerCommittedIsTerminal(t *testing.T) {
	l := NewLedger()
	l.TogglePending("a")
	l.Apply([]string{"a"})
	assert.False(t, l.TogglePending("a"))
	assert.False(t, l.IsPending("a"))
	l.ClearPending()
	assert.True(t, l.IsCommitted("a"))
}

func TestLedgerClearPendingIdempotent(t *testing.T) {
	l := NewLedger()
	l.TogglePending("a")
	l.TogglePending("b")
	l.TogglePending("c")
	l.Apply([]string{"c"})

	l.ClearPending()
	once := [2][]string{l.PendingIDs(), l.CommittedIDs()}
	l.ClearPending()
	twice := [2][]string{l.PendingIDs(), l.CommittedIDs()}
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"c"}, l.CommittedIDs())
}

func TestLedgerDisjointUnderRandomOps(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	rnd := rand.New(rand.NewSource(7))
	l := NewLedger()
	for step := 0; step < 2000; step++ {
		switch rnd.Intn(4) {
		case 0, 1:
			l.TogglePending(ids[rnd.Intn(len(ids))])
		case 2:
			var visible []string
			for _, id := range ids {
				if rnd.Intn(2) == 0 {
					visible = append(visible, id)
				}
			}
			l.Apply(visible)
		case 3:
			l.ClearPending()
		}
		for _, id := range ids {
			require.False(t, l.IsPending(id) && l.IsCommitted(id), "step %d: %s in both sets", step, id)
		}
	}
}

func TestLedgerPendingIn(t *testing.T) {
	l := NewLedger()
	l.TogglePending("a")
	l.TogglePending("b")
	assert.Equal(t, 1, l.PendingIn([]string{"a", "z"}))
	assert.Equal(t, 2, l.PendingCount())
}
