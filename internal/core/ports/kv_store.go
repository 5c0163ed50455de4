package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// KVEntry is one key/value pair of a multi-key write.
type KVEntry struct {
	Key   string
	Value []byte
}

// KVStore is the persistence boundary: opaque string keys mapped to JSON
// bytes. Writes are atomic per key; SetMany is atomic only where the backend
// supports transactions.
type KVStore interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes entries in order.
	SetMany(ctx context.Context, entries []KVEntry) error
	// ScanPrefix returns the values of every key starting with prefix, in no
	// particular order.
	ScanPrefix(ctx context.Context, prefix string) ([][]byte, error)
	Ping(ctx context.Context) error
}
