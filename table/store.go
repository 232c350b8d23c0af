package table

import (
	"slices"
	"sort"
	"sync"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// Sequence is read-only positional access to an ordered run of elements.
// Scan stages of both strategies consume a Sequence.
type Sequence[T any] interface {
	Len() int
	At(i int) T
}

// Snapshot is a borrowed, read-only view of a registered table.
type Snapshot[T any] struct {
	name   string
	values []T
}

// Name returns the table name the snapshot was taken from.
func (s Snapshot[T]) Name() string { return s.name }

// Len returns the number of elements.
func (s Snapshot[T]) Len() int { return len(s.values) }

// At returns the i-th element in table order.
func (s Snapshot[T]) At(i int) T { return s.values[i] }

// Values returns a copy of the elements.
func (s Snapshot[T]) Values() []T { return slices.Clone(s.values) }

// Store owns table contents. Safe for concurrent use.
type Store[T any] struct {
	mu     sync.RWMutex
	tables map[string][]T
}

// NewStore creates an empty Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{tables: make(map[string][]T)}
}

// Register inserts or replaces the whole table under name.
func (s *Store[T]) Register(name string, values []T) error {
	if name == "" {
		return apperrors.InvalidInput("name", "table name must not be empty")
	}
	// Snapshots of a replaced table keep the old slice, so the stored slice
	// is never written to after this point.
	owned := slices.Clone(values)
	if owned == nil {
		owned = []T{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = owned
	return nil
}

// Lookup returns a snapshot of the named table.
func (s *Store[T]) Lookup(name string) (Snapshot[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.tables[name]
	if !ok {
		return Snapshot[T]{}, apperrors.NotFound("table", name)
	}
	return Snapshot[T]{name: name, values: values}, nil
}

// Has reports whether name is registered.
func (s *Store[T]) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[name]
	return ok
}

// Names returns sorted names of all registered tables.
func (s *Store[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tables.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
