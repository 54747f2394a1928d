// Package db abstracts a transactional key-value database. Concrete drivers
// live in the subpackages pebbledb (persistent, production) and inmemory
// (ephemeral, tests).
package db

import "errors"

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrConflict is returned by WriteTx.Commit when the transaction lost a race
// against a concurrent writer (only detected by drivers that track versions).
var ErrConflict = errors.New("transaction conflict")

// Supported database types for metadb.New.
const (
	TypePebble   = "pebble"
	TypeInMemory = "inmemory"
)

// Options configures the creation of a Database.
type Options struct {
	Path string
}

// Reader is the read-only subset of a database or transaction.
type Reader interface {
	// Get retrieves the value for the given key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)
	// Iterate calls callback for every key-value pair whose key begins with
	// prefix, until the callback returns false or the keys are exhausted.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
}

// WriteTx is a read-write transaction. Writes are only visible to other
// readers after Commit. A WriteTx must be finished with either Commit or
// Discard; both are idempotent against double calls through Discard-after-
// Commit, which is the conventional `defer tx.Discard()` pattern.
type WriteTx interface {
	Reader
	// Set stores the key-value pair.
	Set(key, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key []byte) error
	// Apply copies all pending writes from another transaction into this one.
	Apply(other WriteTx) error
	// Commit atomically applies the pending writes.
	Commit() error
	// Discard drops the pending writes. Safe to call after Commit.
	Discard()
}

// Database is a transactional key-value store.
type Database interface {
	Reader
	// WriteTx starts a new read-write transaction.
	WriteTx() WriteTx
	// Close releases the underlying resources.
	Close() error
	// Compact triggers a manual compaction, when the driver supports it.
	Compact() error
}
