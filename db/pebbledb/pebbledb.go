// Package pebbledb implements db.Database on top of cockroachdb/pebble.
// A WriteTx maps to a pebble indexed batch: it is a batch of writes with
// read-your-writes semantics, not a serializable transaction; callers that
// need mutual exclusion must serialize at a higher level.
package pebbledb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/voteguard/voteguard-node/db"
)

// PebbleDB implements db.Database.
type PebbleDB struct {
	pdb *pebble.DB
}

var _ db.Database = (*PebbleDB)(nil)

// New opens (or creates) a pebble database at opts.Path.
func New(opts db.Options) (*PebbleDB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("pebbledb: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fmt.Errorf("pebbledb: create dir: %w", err)
	}
	pdb, err := pebble.Open(opts.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebbledb: open: %w", err)
	}
	return &PebbleDB{pdb: pdb}, nil
}

func (d *PebbleDB) Get(key []byte) ([]byte, error) {
	value, closer, err := d.pdb.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, db.ErrKeyNotFound
		}
		return nil, err
	}
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *PebbleDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	iter, err := d.pdb.NewIter(prefixIterOptions(prefix))
	if err != nil {
		return err
	}
	defer func() { _ = iter.Close() }()
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !callback(key, value) {
			break
		}
	}
	return nil
}

func (d *PebbleDB) WriteTx() db.WriteTx {
	return &WriteTx{batch: d.pdb.NewIndexedBatch()}
}

func (d *PebbleDB) Close() error {
	if err := d.pdb.Close(); err != nil && !errors.Is(err, pebble.ErrClosed) {
		return err
	}
	return nil
}

func (d *PebbleDB) Compact() error {
	iter, err := d.pdb.NewIter(nil)
	if err != nil {
		return err
	}
	var first, last []byte
	if iter.First() {
		first = append(first, iter.Key()...)
	}
	if iter.Last() {
		last = append(last, iter.Key()...)
	}
	if err := iter.Close(); err != nil {
		return err
	}
	if first == nil || last == nil {
		return nil
	}
	return d.pdb.Compact(first, last, true)
}

// prefixIterOptions bounds an iterator to the keys sharing prefix.
func prefixIterOptions(prefix []byte) *pebble.IterOptions {
	if len(prefix) == 0 {
		return nil
	}
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return &pebble.IterOptions{LowerBound: prefix, UpperBound: upper[:i+1]}
		}
	}
	// prefix is all 0xff bytes, no upper bound exists
	return &pebble.IterOptions{LowerBound: prefix}
}

// WriteTx wraps a pebble indexed batch.
type WriteTx struct {
	batch *pebble.Batch
	done  bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	value, closer, err := tx.batch.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, db.ErrKeyNotFound
		}
		return nil, err
	}
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (tx *WriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	iter, err := tx.batch.NewIter(prefixIterOptions(prefix))
	if err != nil {
		return err
	}
	defer func() { _ = iter.Close() }()
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !callback(key, value) {
			break
		}
	}
	return nil
}

func (tx *WriteTx) Set(key, value []byte) error {
	return tx.batch.Set(key, value, nil)
}

func (tx *WriteTx) Delete(key []byte) error {
	return tx.batch.Delete(key, nil)
}

func (tx *WriteTx) Apply(other db.WriteTx) error {
	return other.Iterate(nil, func(key, value []byte) bool {
		return tx.Set(key, value) == nil
	})
}

func (tx *WriteTx) Commit() error {
	if tx.done {
		return fmt.Errorf("pebbledb: tx already finished")
	}
	tx.done = true
	if err := tx.batch.Commit(pebble.Sync); err != nil {
		return err
	}
	return tx.batch.Close()
}

func (tx *WriteTx) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	_ = tx.batch.Close()
}
