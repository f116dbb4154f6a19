package storage

import (
	"fmt"
	"sync"
)

// ShardedMemoryStorage - sharded object storage with the same dirty tracking as MemoryStorage
type ShardedMemoryStorage[K comparable, V any] struct {
	shards     []*shardData[K, V]
	shardMask  int
	keyToShard func(K) int // Shard distribution function
}

// shardData - single shard data
type shardData[K comparable, V any] struct {
	data  map[K]V
	mutex sync.RWMutex
	dirty map[K]uint64
	seq   uint64
}

// NewShardedMemoryStorage creates a new sharded storage. shardCount is rounded up to a
// power of two; a nil keyToShardFunc hashes string and integer keys.
func NewShardedMemoryStorage[K comparable, V any](shardCount int, keyToShardFunc func(K) int) *ShardedMemoryStorage[K, V] {
	// Round up to power of two
	realShardCount := 1
	for realShardCount < shardCount {
		realShardCount *= 2
	}
	mask := realShardCount - 1

	shards := make([]*shardData[K, V], realShardCount)
	for i := range shards {
		shards[i] = &shardData[K, V]{
			data:  make(map[K]V),
			dirty: make(map[K]uint64),
		}
	}

	if keyToShardFunc == nil {
		keyToShardFunc = func(key K) int {
			switch k := any(key).(type) {
			case string:
				return int(fnv1a(k)) & mask
			case int:
				return k & mask
			case int64:
				return int(k) & mask
			case uint64:
				return int(k) & mask
			default:
				return int(fnv1a(fmt.Sprintf("%v", key))) & mask
			}
		}
	}

	return &ShardedMemoryStorage[K, V]{
		shards:     shards,
		shardMask:  mask,
		keyToShard: keyToShardFunc,
	}
}

// FNV-1a hash function
func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (s *ShardedMemoryStorage[K, V]) getShard(key K) *shardData[K, V] {
	return s.shards[s.keyToShard(key)&s.shardMask]
}

func (sh *shardData[K, V]) markDirty(key K) {
	sh.seq++
	sh.dirty[key] = sh.seq
}

// Set adds or updates an object
func (s *ShardedMemoryStorage[K, V]) Set(key K, value V) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	shard.data[key] = value
	shard.markDirty(key)
}

// Get returns object by key
func (s *ShardedMemoryStorage[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	value, exists := shard.data[key]
	return value, exists
}

// Update runs fn under the shard lock and stores its result unless it fails
func (s *ShardedMemoryStorage[K, V]) Update(key K, fn func(value V, exists bool) (V, error)) (V, error) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	current, exists := shard.data[key]
	next, err := fn(current, exists)
	if err != nil {
		return current, err
	}

	shard.data[key] = next
	shard.markDirty(key)
	return next, nil
}

// Delete removes an object
func (s *ShardedMemoryStorage[K, V]) Delete(key K) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if _, exists := shard.data[key]; !exists {
		return false
	}

	delete(shard.data, key)
	delete(shard.dirty, key)
	return true
}

// GetDirty returns all dirty objects from all shards without clearing flags
func (s *ShardedMemoryStorage[K, V]) GetDirty() DirtySnapshot[K, V] {
	snap := DirtySnapshot[K, V]{
		Values: make(map[K]V),
		seq:    make(map[K]uint64),
	}

	for _, shard := range s.shards {
		shard.mutex.RLock()
		for k, seq := range shard.dirty {
			if v, exists := shard.data[k]; exists {
				snap.Values[k] = v
				snap.seq[k] = seq
			}
		}
		shard.mutex.RUnlock()
	}

	return snap
}

// ClearDirty clears the flags of snapshot keys not written since the snapshot
func (s *ShardedMemoryStorage[K, V]) ClearDirty(snap DirtySnapshot[K, V]) {
	for k, seq := range snap.seq {
		shard := s.getShard(k)
		shard.mutex.Lock()
		if shard.dirty[k] == seq {
			delete(shard.dirty, k)
		}
		shard.mutex.Unlock()
	}
}

// Count returns total number of objects
func (s *ShardedMemoryStorage[K, V]) Count() int {
	count := 0
	for _, shard := range s.shards {
		shard.mutex.RLock()
		count += len(shard.data)
		shard.mutex.RUnlock()
	}
	return count
}
