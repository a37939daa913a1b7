// Package observe is a small mark-dirty/notify store. Mutators mark keys
// dirty; observers run once per outermost transaction with the set of keys
// that changed inside it.
package observe

import "sort"

// Change lists the keys marked dirty during one logical operation.
type Change struct {
	Keys []string
}

// Has reports whether key was marked.
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

type observer struct {
	id int
	fn func(Change)
}

// Store batches dirty marks. It is not safe for concurrent use; callers
// own it from a single goroutine.
type Store struct {
	depth     int
	dirty     map[string]struct{}
	observers []observer
	nextID    int
	flushing  bool
}

func New() *Store {
	return &Store{dirty: make(map[string]struct{})}
}

// Begin opens a transaction. Transactions nest.
func (s *Store) Begin() { s.depth++ }

// End closes a transaction and notifies observers when the outermost one ends.
func (s *Store) End() {
	if s.depth == 0 {
		return
	}
	s.depth--
	if s.depth == 0 {
		s.flush()
	}
}

// Transaction runs fn inside Begin/End. End runs even if fn panics.
func (s *Store) Transaction(fn func()) {
	s.Begin()
	defer s.End()
	fn()
}

// InTransaction reports whether a transaction is open.
func (s *Store) InTransaction() bool { return s.depth > 0 }

// MarkDirty records keys as changed. Outside a transaction observers are
// notified right away.
func (s *Store) MarkDirty(keys ...string) {
	for _, k := range keys {
		s.dirty[k] = struct{}{}
	}
	if s.depth == 0 {
		s.flush()
	}
}

// Observe registers fn and returns a function that removes it.
func (s *Store) Observe(fn func(Change)) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) flush() {
	if s.flushing || len(s.dirty) == 0 {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	// observers may mark more keys; keep going until quiet
	for len(s.dirty) > 0 {
		keys := make([]string, 0, len(s.dirty))
		for k := range s.dirty {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		clear(s.dirty)

		change := Change{Keys: keys}
		for _, o := range append([]observer(nil), s.observers...) {
			o.fn(change)
		}
	}
}
