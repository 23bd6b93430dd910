package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tables in process memory. Used by tests and by the
// server's dev mode when no database is configured. A single mutex
// serializes all access; match resolution and mutation happen inside the
// same critical section, as the Store contract requires.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]Row
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][]Row{}}
}

// ReadAll returns a copy of the table in storage order
func (s *MemoryStore) ReadAll(ctx context.Context, table string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out, nil
}

// Append adds a row at the end of the table
func (s *MemoryStore) Append(ctx context.Context, table string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], copyRow(row))
	return nil
}

// FindFirst returns the first row matching match
func (s *MemoryStore) FindFirst(ctx context.Context, table string, match Row) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findLocked(table, match)
	if err != nil {
		return nil, err
	}
	return copyRow(s.tables[table][i]), nil
}

// DeleteWhere removes the first row matching match
func (s *MemoryStore) DeleteWhere(ctx context.Context, table string, match Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findLocked(table, match)
	if err != nil {
		return err
	}
	rows := s.tables[table]
	s.tables[table] = append(rows[:i], rows[i+1:]...)
	return nil
}

// ReplaceWhere overwrites the first row matching match in place
func (s *MemoryStore) ReplaceWhere(ctx context.Context, table string, match Row, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findLocked(table, match)
	if err != nil {
		return err
	}
	s.tables[table][i] = copyRow(row)
	return nil
}

// UpdateFieldWhere overwrites a single field of the first row matching match
func (s *MemoryStore) UpdateFieldWhere(ctx context.Context, table string, match Row, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findLocked(table, match)
	if err != nil {
		return err
	}
	s.tables[table][i][field] = value
	return nil
}

func (s *MemoryStore) findLocked(table string, match Row) (int, error) {
	for i, row := range s.tables[table] {
		if match.Matches(row) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no row in %q matches %v: %w", table, match, ErrRowNotFound)
}

func copyRow(row Row) Row {
	cp := make(Row, len(row))
	for k, v := range row {
		cp[k] = v
	}
	return cp
}
