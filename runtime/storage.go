// Package runtime provides the external-adapter layer consumed from the
// outer blockchain runtime per spec.md §6: a storage map abstraction,
// transactional commit/rollback, event emission, canonical hashing, and
// signature verification. None of this package re-implements consensus,
// the transaction pool, or fee payment — those remain out of scope per
// spec.md §1; it only supplies the minimal interfaces §6.1 names.
package runtime

import "sync"

// StorageMap is a generic keyed store with the semantics spec.md §6.1
// requires of the outer runtime's storage maps: get/insert/remove/contains,
// each O(1) on average over a Go map, and prefix iteration, which scans
// every entry and visits matches in unspecified order. The in-memory
// implementation below backs every module (did, offchainsig, trustregistry)
// for the lifetime of a process, matching spec.md §5's "process-wide for a
// running node" storage model.
type StorageMap[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewStorageMap constructs an empty storage map.
func NewStorageMap[K comparable, V any]() *StorageMap[K, V] {
	return &StorageMap[K, V]{data: make(map[K]V)}
}

// Get returns the value at k and whether it was present.
func (m *StorageMap[K, V]) Get(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[k]
	return v, ok
}

// Insert sets the value at k, overwriting any existing entry.
func (m *StorageMap[K, V]) Insert(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
}

// Remove deletes the entry at k, a no-op if absent.
func (m *StorageMap[K, V]) Remove(k K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
}

// Contains reports whether k is present.
func (m *StorageMap[K, V]) Contains(k K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[k]
	return ok
}

// Len returns the number of stored entries.
func (m *StorageMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// TryMutateExists loads the current value (or the zero value if absent,
// with ok=false), lets fn decide the next value, and either stores it
// (some==true) or removes the entry (some==false). fn returning an error
// aborts without mutating storage, matching the spec's "ensure_valid must
// be followed by an infallible apply_update" contract at the storage layer.
func (m *StorageMap[K, V]) TryMutateExists(k K, fn func(cur V, ok bool) (next V, some bool, err error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[k]
	next, some, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if some {
		m.data[k] = next
	} else {
		delete(m.data, k)
	}
	return nil
}

// IterPrefix calls fn for every key for which match(k) == true, in
// unspecified order (the in-memory map offers no natural ordering; callers
// needing deterministic order sort the returned keys).
func (m *StorageMap[K, V]) IterPrefix(match func(k K) bool, fn func(k K, v V)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.data {
		if match(k) {
			fn(k, v)
		}
	}
}

// Snapshot returns a shallow copy of the entire map, used by Txn to support
// rollback.
func (m *StorageMap[K, V]) Snapshot() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[K]V, len(m.data))
	for k, v := range m.data {
		cp[k] = v
	}
	return cp
}

// Restore replaces the map contents wholesale, used by Txn rollback.
func (m *StorageMap[K, V]) Restore(snapshot map[K]V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = snapshot
}
