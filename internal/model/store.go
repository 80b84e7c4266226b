package model

import "sync"

// Store holds the source rows. It only grows: rows are appended at the end and
// never removed or reordered, so a row's ordinal never changes once stored.
type Store struct {
	mu   sync.RWMutex
	rows []Row
	// appended counts rows added after the initial load (follow mode)
	appended uint64
}

func NewStore(initial []Row) *Store {
	rows := make([]Row, len(initial))
	copy(rows, initial)
	return &Store{rows: rows}
}

func (s *Store) Append(rows ...Row) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	s.appended += uint64(len(rows))
}

// Snapshot returns a copy of the stored rows and the number of rows appended since load.
func (s *Store) Snapshot() ([]Row, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, s.appended
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
