package update

// MultiTargetUpdate maps K → U, each sub-update applied to its key
// independently against a keyed container (map[K]V in this port). Per
// spec.md §4.1, application order is removes-first: every sub-update whose
// Kind is KindRemove runs before any other, so an update that both removes
// one key and adds another never observes a transient capacity overflow.
type MultiTargetUpdate[K comparable, V any, U Update[V]] struct {
	subs map[K]U
}

// NewMultiTargetUpdate wraps a prebuilt K→U map.
func NewMultiTargetUpdate[K comparable, V any, U Update[V]](subs map[K]U) MultiTargetUpdate[K, V, U] {
	return MultiTargetUpdate[K, V, U]{subs: subs}
}

// NewSingleTargetUpdate is the single-key convenience form spec.md §4.1
// names SingleTargetUpdate.
func NewSingleTargetUpdate[K comparable, V any, U Update[V]](k K, u U) MultiTargetUpdate[K, V, U] {
	return MultiTargetUpdate[K, V, U]{subs: map[K]U{k: u}}
}

// Keys returns the target keys, for callers that need to iterate them
// (e.g. to diff derived indices) without re-deriving from Apply.
func (m MultiTargetUpdate[K, V, U]) Keys() []K {
	keys := make([]K, 0, len(m.subs))
	for k := range m.subs {
		keys = append(keys, k)
	}
	return keys
}

// Sub returns the sub-update registered for k, if any.
func (m MultiTargetUpdate[K, V, U]) Sub(k K) (U, bool) {
	u, ok := m.subs[k]
	return u, ok
}

// EnsureValid runs every sub-update's validation against the container's
// current state without mutating it.
func (m MultiTargetUpdate[K, V, U]) EnsureValid(container map[K]V) error {
	for k, u := range m.subs {
		cur, ok := container[k]
		if err := u.EnsureValid(cur, ok); err != nil {
			return err
		}
	}
	return nil
}

// Apply mutates container in place, removes first then everything else.
func (m MultiTargetUpdate[K, V, U]) Apply(container map[K]V) {
	var removeKeys, otherKeys []K
	for k, u := range m.subs {
		_, ok := container[k]
		if u.Kind(ok) == KindRemove {
			removeKeys = append(removeKeys, k)
		} else {
			otherKeys = append(otherKeys, k)
		}
	}
	applyKeys := func(keys []K) {
		for _, k := range keys {
			u := m.subs[k]
			cur, ok := container[k]
			next, some := u.Apply(cur, ok)
			if some {
				container[k] = next
			} else {
				delete(container, k)
			}
		}
	}
	applyKeys(removeKeys)
	applyKeys(otherKeys)
}
