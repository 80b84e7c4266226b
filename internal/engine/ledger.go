package engine

import "sort"

// Ledger tracks rows staged for removal (pending) apart from rows already
// removed (committed). An id is never in both sets. Committed ids stay
// committed for the rest of the session.
type Ledger struct {
	pending   map[string]struct{}
	committed map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{pending: map[string]struct{}{}, committed: map[string]struct{}{}}
}

// TogglePending flips id between active and pending and reports whether it is
// now pending. Committed ids are left alone.
func (l *Ledger) TogglePending(id string) bool {
	if _, ok := l.committed[id]; ok {
		return false
	}
	if _, ok := l.pending[id]; ok {
		delete(l.pending, id)
		return false
	}
	l.pending[id] = struct{}{}
	return true
}

// Apply commits the pending ids that are also in visible and returns them in
// visible order. Pending ids outside visible stay pending.
func (l *Ledger) Apply(visible []string) []string {
	if len(l.pending) == 0 {
		return nil
	}
	var moved []string
	for _, id := range visible {
		if _, ok := l.pending[id]; !ok {
			continue
		}
		delete(l.pending, id)
		l.committed[id] = struct{}{}
		moved = append(moved, id)
	}
	return moved
}

// ClearPending returns every pending id to active.
func (l *Ledger) ClearPending() {
	if len(l.pending) == 0 {
		return
	}
	l.pending = map[string]struct{}{}
}

func (l *Ledger) IsPending(id string) bool {
	_, ok := l.pending[id]
	return ok
}

func (l *Ledger) IsCommitted(id string) bool {
	_, ok := l.committed[id]
	return ok
}

func (l *Ledger) PendingCount() int   { return len(l.pending) }
func (l *Ledger) CommittedCount() int { return len(l.committed) }

// PendingIn counts how many of ids are pending.
func (l *Ledger) PendingIn(ids []string) int {
	n := 0
	for _, id := range ids {
		if _, ok := l.pending[id]; ok {
			n++
		}
	}
	return n
}

// PendingIDs returns the pending ids sorted.
func (l *Ledger) PendingIDs() []string {
	return sortedKeys(l.pending)
}

// CommittedIDs returns the committed ids sorted.
func (l *Ledger) CommittedIDs() []string {
	return sortedKeys(l.committed)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
