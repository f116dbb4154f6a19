package storage

import (
	"sync"
)

// MemoryStorage - universal in-memory object storage with dirty tracking
// K - key type, V - stored object type
type MemoryStorage[K comparable, V any] struct {
	data  map[K]V
	mutex sync.RWMutex
	dirty map[K]uint64
	seq   uint64
}

// NewMemoryStorage creates a new storage
func NewMemoryStorage[K comparable, V any]() *MemoryStorage[K, V] {
	return &MemoryStorage[K, V]{
		data:  make(map[K]V),
		dirty: make(map[K]uint64),
	}
}

// Set adds or updates an object and marks it dirty
func (s *MemoryStorage[K, V]) Set(key K, value V) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = value
	s.markDirty(key)
}

// Get returns an object by key
func (s *MemoryStorage[K, V]) Get(key K) (V, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	return value, exists
}

// Update runs fn under the write lock and stores its result unless it fails
func (s *MemoryStorage[K, V]) Update(key K, fn func(value V, exists bool) (V, error)) (V, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, exists := s.data[key]
	next, err := fn(current, exists)
	if err != nil {
		return current, err
	}

	s.data[key] = next
	s.markDirty(key)
	return next, nil
}

// Delete removes an object by key
func (s *MemoryStorage[K, V]) Delete(key K) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[key]; !exists {
		return false
	}

	delete(s.data, key)
	delete(s.dirty, key)
	return true
}

// DirtySnapshot holds dirty objects and the write sequence each was read at
type DirtySnapshot[K comparable, V any] struct {
	Values map[K]V
	seq    map[K]uint64
}

// Keys returns the snapshot keys
func (d DirtySnapshot[K, V]) Keys() []K {
	keys := make([]K, 0, len(d.Values))
	for k := range d.Values {
		keys = append(keys, k)
	}
	return keys
}

// GetDirty returns all dirty objects without clearing flags
func (s *MemoryStorage[K, V]) GetDirty() DirtySnapshot[K, V] {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap := DirtySnapshot[K, V]{
		Values: make(map[K]V, len(s.dirty)),
		seq:    make(map[K]uint64, len(s.dirty)),
	}
	for k, seq := range s.dirty {
		if v, exists := s.data[k]; exists {
			snap.Values[k] = v
			snap.seq[k] = seq
		}
	}
	return snap
}

// ClearDirty clears dirty flags for the snapshot keys that were not written again
// after the snapshot was taken
func (s *MemoryStorage[K, V]) ClearDirty(snap DirtySnapshot[K, V]) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for k, seq := range snap.seq {
		if s.dirty[k] == seq {
			delete(s.dirty, k)
		}
	}
}

// Count returns the number of objects
func (s *MemoryStorage[K, V]) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

func (s *MemoryStorage[K, V]) markDirty(key K) {
	s.seq++
	s.dirty[key] = s.seq
}
