package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxnRunCommitsOnSuccess(t *testing.T) {
	a := NewStorageMap[string, int]()
	b := NewStorageMap[string, int]()
	a.Insert("x", 1)
	b.Insert("y", 2)

	txn := NewTxn(a, b)
	err := txn.Run(func() error {
		a.Insert("x", 100)
		b.Remove("y")
		b.Insert("z", 3)
		return nil
	})
	require.NoError(t, err)

	v, ok := a.Get("x")
	assert.True(t, ok)
	assert.Equal(t, 100, v)
	assert.False(t, b.Contains("y"))
	v, ok = b.Get("z")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

// TestTxnRunRollsBackAllMapsOnError mirrors the scenario Txn's doc comment
// names: a multi-map mutation (here two maps standing in for
// trustregistry.SetSchemasMetadata's metadata map and derived indices) that
// must undo every map together when a later step rejects the change.
func TestTxnRunRollsBackAllMapsOnError(t *testing.T) {
	a := NewStorageMap[string, int]()
	b := NewStorageMap[string, int]()
	a.Insert("x", 1)
	b.Insert("y", 2)

	wantErr := errors.New("boom")
	txn := NewTxn(a, b)
	err := txn.Run(func() error {
		a.Insert("x", 999)
		a.Insert("new", 1)
		b.Remove("y")
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	v, ok := a.Get("x")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, a.Contains("new"))
	v, ok = b.Get("y")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
