package runtime

// snapshotter is implemented by any StorageMap instantiation via the
// exported Snapshot/Restore methods below, letting Txn hold a heterogeneous
// set of maps (different K,V per module) behind one rollback interface.
type snapshotter interface {
	snapshotAny() any
	restoreAny(any)
}

func (m *StorageMap[K, V]) snapshotAny() any { return m.Snapshot() }
func (m *StorageMap[K, V]) restoreAny(s any) { m.Restore(s.(map[K]V)) }

// Txn groups a set of StorageMap instances so a multi-map mutation (e.g.
// trustregistry.SetSchemasMetadata touching the metadata map and five
// derived indices) can be committed atomically: NewTxn snapshots every
// registered map, and Rollback restores all of them to that snapshot.
// Per spec.md §4.1 and §5, validation should run to completion before any
// write; Txn exists as the belt-and-braces counterpart for handlers that
// must still perform interleaved reads/writes (e.g. derived-index diffing).
type Txn struct {
	maps      []snapshotter
	snapshots []any
}

// NewTxn begins a transaction over the given maps, capturing their current
// contents.
func NewTxn(maps ...snapshotter) *Txn {
	t := &Txn{maps: maps, snapshots: make([]any, len(maps))}
	for i, m := range maps {
		t.snapshots[i] = m.snapshotAny()
	}
	return t
}

// Rollback restores every registered map to its state at NewTxn time.
func (t *Txn) Rollback() {
	for i, m := range t.maps {
		m.restoreAny(t.snapshots[i])
	}
}

// Run executes fn; if fn returns a non-nil error, every registered map is
// rolled back to its pre-Run state before the error is returned.
func (t *Txn) Run(fn func() error) error {
	if err := fn(); err != nil {
		t.Rollback()
		return err
	}
	return nil
}
