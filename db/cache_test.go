package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These run with the package-level Redis client left nil (no live Redis in
// the test environment), exercising the no-op fallbacks every call site
// relies on to fail open to the authoritative store.

func TestCacheJSONNoopWithoutRedis(t *testing.T) {
	require.Nil(t, Redis)
	err := CacheJSON(context.Background(), "k", map[string]int{"a": 1}, DefaultTTL())
	require.NoError(t, err)
}

func TestGetCachedJSONMissWithoutRedis(t *testing.T) {
	require.Nil(t, Redis)
	var dest map[string]int
	ok, err := GetCachedJSON(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateNoopWithoutRedis(t *testing.T) {
	require.Nil(t, Redis)
	assert.NotPanics(t, func() {
		Invalidate(context.Background(), "k")
	})
}

func TestDIDDocKey(t *testing.T) {
	assert.Equal(t, "cache:did:abcd", DIDDocKey("abcd"))
}

func TestSchemaMetadataKey(t *testing.T) {
	assert.Equal(t, "cache:schema:reg1:schema1", SchemaMetadataKey("reg1", "schema1"))
}
