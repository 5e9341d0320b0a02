// Package memory keeps sheet contents in process, for local runs without
// Google credentials and for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	ports "factures/internal/sheets"
)

var _ ports.RowWriter = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]interface{}
	writes int
}

func New() *Store {
	return &Store{sheets: make(map[string][][]interface{})}
}

// WriteRows replaces the sheet content with a copy of rows.
func (s *Store) WriteRows(_ context.Context, sheet string, rows [][]interface{}) error {
	cp := make([][]interface{}, len(rows))
	for i, row := range rows {
		cp[i] = append([]interface{}(nil), row...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = cp
	s.writes++
	return nil
}

// Rows returns the current content of sheet, or nil when it was never written.
func (s *Store) Rows(sheet string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheets[sheet]
}

// Sheets lists written sheet names in order.
func (s *Store) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sheets))
	for name := range s.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Writes counts WriteRows calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
