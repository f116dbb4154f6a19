package storage

// Storage defines interface for any object storage
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	Update(key K, fn func(value V, exists bool) (V, error)) (V, error)
	Delete(key K) bool
	GetDirty() DirtySnapshot[K, V]
	ClearDirty(snap DirtySnapshot[K, V])
	Count() int
}
