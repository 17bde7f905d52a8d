package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	didCachePrefix    = "cache:did:"
	schemaCachePrefix = "cache:schema:"

	defaultTTL = 5 * time.Minute
)

// CacheJSON marshals v and stores it under key with the given ttl. A ttl
// of zero means no expiry. Errors are returned, never swallowed: a cache
// write failure should not look like a cache hit to the caller.
func CacheJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if Redis == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

// GetCachedJSON unmarshals the cached value for key into dest. ok is
// false on a cache miss (including when Redis is not configured);
// callers fall back to the authoritative store in that case.
func GetCachedJSON(ctx context.Context, key string, dest any) (ok bool, err error) {
	if Redis == nil {
		return false, nil
	}
	data, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Invalidate deletes key from the cache. Safe to call when Redis is not
// configured or the key was never cached.
func Invalidate(ctx context.Context, key string) {
	if Redis == nil {
		return
	}
	Redis.Del(ctx, key)
}

// DIDDocKey is the cache key for a resolved DID document.
func DIDDocKey(did string) string { return didCachePrefix + did }

// SchemaMetadataKey is the cache key for one trust registry schema's
// metadata.
func SchemaMetadataKey(regID, schemaID string) string {
	return schemaCachePrefix + regID + ":" + schemaID
}

// DefaultTTL is the expiry used by handlers that don't have a more
// specific freshness requirement.
func DefaultTTL() time.Duration { return defaultTTL }
