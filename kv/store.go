// Package kv implements the gateway's key-value persistence contract: a
// single opaque JSON blob stored under one well-known key, opened fresh on
// every call rather than held open as a long-lived in-memory singleton.
package kv

import "context"

// BlockedDataKey is the single key the denylist blob is stored under.
const BlockedDataKey = "blocked"

// Store is the persistence boundary the denylist package depends on. Get
// returns (nil, false, nil) when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
