// Package db defines the key-value contract behind the shared fingerprint cache.
// Values are opaque byte strings; keys are namespaced by the caller.
package db

import (
	"context"
	"time"
)

// Store is the facade the composition root holds on to.
type Store interface {
	Pinger
	KVStore
	PrefixDeleter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore stores opaque values. Get returns ErrKeyNotFound for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// PrefixDeleter removes a whole key namespace without materialising it in memory.
type PrefixDeleter interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}
