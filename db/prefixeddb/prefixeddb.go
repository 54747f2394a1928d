// Package prefixeddb wraps a db.Database so that every key is transparently
// namespaced under a fixed prefix. Storage layers use it to carve independent
// keyspaces out of a single underlying database.
package prefixeddb

import (
	"github.com/voteguard/voteguard-node/db"
)

// PrefixedDatabase wraps a db.Database prepending a prefix to all keys.
type PrefixedDatabase struct {
	db     db.Database
	prefix []byte
}

var _ db.Database = (*PrefixedDatabase)(nil)

// NewPrefixedDatabase returns a db.Database whose keys live under prefix.
func NewPrefixedDatabase(database db.Database, prefix []byte) *PrefixedDatabase {
	return &PrefixedDatabase{db: database, prefix: prefix}
}

func (d *PrefixedDatabase) Get(key []byte) ([]byte, error) {
	return d.db.Get(append(d.prefix, key...))
}

func (d *PrefixedDatabase) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return d.db.Iterate(append(d.prefix, prefix...), callback)
}

func (d *PrefixedDatabase) WriteTx() db.WriteTx {
	return NewPrefixedWriteTx(d.db.WriteTx(), d.prefix)
}

func (d *PrefixedDatabase) Close() error   { return d.db.Close() }
func (d *PrefixedDatabase) Compact() error { return d.db.Compact() }

// PrefixedReader wraps a db.Reader prepending a prefix to all keys.
type PrefixedReader struct {
	reader db.Reader
	prefix []byte
}

var _ db.Reader = (*PrefixedReader)(nil)

// NewPrefixedReader returns a db.Reader whose keys live under prefix.
func NewPrefixedReader(reader db.Reader, prefix []byte) *PrefixedReader {
	return &PrefixedReader{reader: reader, prefix: prefix}
}

func (r *PrefixedReader) Get(key []byte) ([]byte, error) {
	return r.reader.Get(append(r.prefix, key...))
}

func (r *PrefixedReader) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return r.reader.Iterate(append(r.prefix, prefix...), callback)
}

// PrefixedWriteTx wraps a db.WriteTx prepending a prefix to all keys.
type PrefixedWriteTx struct {
	tx     db.WriteTx
	prefix []byte
}

var _ db.WriteTx = (*PrefixedWriteTx)(nil)

// NewPrefixedWriteTx returns a db.WriteTx whose keys live under prefix.
func NewPrefixedWriteTx(tx db.WriteTx, prefix []byte) *PrefixedWriteTx {
	return &PrefixedWriteTx{tx: tx, prefix: prefix}
}

func (t *PrefixedWriteTx) Get(key []byte) ([]byte, error) {
	return t.tx.Get(append(t.prefix, key...))
}

func (t *PrefixedWriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return t.tx.Iterate(append(t.prefix, prefix...), callback)
}

func (t *PrefixedWriteTx) Set(key, value []byte) error {
	return t.tx.Set(append(t.prefix, key...), value)
}

func (t *PrefixedWriteTx) Delete(key []byte) error {
	return t.tx.Delete(append(t.prefix, key...))
}

func (t *PrefixedWriteTx) Apply(other db.WriteTx) error { return t.tx.Apply(other) }
func (t *PrefixedWriteTx) Commit() error                { return t.tx.Commit() }
func (t *PrefixedWriteTx) Discard()                     { t.tx.Discard() }

// Unwrap returns the underlying transaction without the prefix.
func (t *PrefixedWriteTx) Unwrap() db.WriteTx { return t.tx }
