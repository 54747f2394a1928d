// Package inmemory implements an ephemeral db.Database used by tests.
// Transactions detect write conflicts through per-key versions, which makes
// the driver stricter than pebbledb and lets tests catch races that pebble
// batches would silently last-write-win.
package inmemory

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/voteguard/voteguard-node/db"
)

type entry struct {
	value   []byte
	version uint64
	deleted bool
}

// InMemoryDB implements an ephemeral in-memory db.Database.
type InMemoryDB struct {
	mu          sync.RWMutex
	data        map[string]entry
	nextVersion uint64
}

var _ db.Database = (*InMemoryDB)(nil)

// New returns a new in-memory database. Options are ignored.
func New(_ db.Options) (*InMemoryDB, error) {
	return &InMemoryDB{data: make(map[string]entry)}, nil
}

func (d *InMemoryDB) Close() error   { return nil }
func (d *InMemoryDB) Compact() error { return nil }

func (d *InMemoryDB) Get(key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ent, ok := d.data[string(key)]
	if !ok || ent.deleted {
		return nil, db.ErrKeyNotFound
	}
	return bytes.Clone(ent.value), nil
}

func (d *InMemoryDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	d.mu.RLock()
	entries := make(map[string][]byte, len(d.data))
	for k, ent := range d.data {
		if ent.deleted || !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		entries[k] = bytes.Clone(ent.value)
	}
	d.mu.RUnlock()
	return iterateEntries(entries, prefix, callback)
}

func (d *InMemoryDB) WriteTx() db.WriteTx {
	return &WriteTx{
		db:     d,
		writes: make(map[string]*[]byte),
		reads:  make(map[string]uint64),
	}
}

func (d *InMemoryDB) currentVersion(key string) uint64 {
	ent, ok := d.data[key]
	if !ok {
		return 0
	}
	return ent.version
}

func (d *InMemoryDB) applyWrite(key string, value []byte, deleteKey bool) {
	d.nextVersion++
	ent := d.data[key]
	ent.version = d.nextVersion
	ent.deleted = deleteKey
	if deleteKey {
		ent.value = nil
	} else {
		ent.value = bytes.Clone(value)
	}
	d.data[key] = ent
}

// iterateEntries walks the snapshot in sorted key order, stripping prefix,
// matching the driver-independent iteration contract.
func iterateEntries(entries map[string][]byte, prefix []byte, callback func(k, v []byte) bool) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !callback([]byte(k)[len(prefix):], entries[k]) {
			break
		}
	}
	return nil
}

// WriteTx is an optimistic transaction: reads record the version seen, and
// Commit fails with db.ErrConflict if any read key changed since.
type WriteTx struct {
	db        *InMemoryDB
	writes    map[string]*[]byte // nil value marks a delete
	reads     map[string]uint64
	committed bool
	discarded bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) recordRead(key string, version uint64) {
	if _, ok := tx.reads[key]; !ok {
		tx.reads[key] = version
	}
}

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	strKey := string(key)
	if pending, ok := tx.writes[strKey]; ok {
		if pending == nil {
			return nil, db.ErrKeyNotFound
		}
		return bytes.Clone(*pending), nil
	}

	tx.db.mu.RLock()
	ent, ok := tx.db.data[strKey]
	version := tx.db.currentVersion(strKey)
	tx.db.mu.RUnlock()

	tx.recordRead(strKey, version)
	if !ok || ent.deleted {
		return nil, db.ErrKeyNotFound
	}
	return bytes.Clone(ent.value), nil
}

func (tx *WriteTx) Iterate(prefix []byte, callback func(k, v []byte) bool) error {
	tx.db.mu.RLock()
	entries := make(map[string][]byte)
	readVersions := make(map[string]uint64)
	for k, ent := range tx.db.data {
		if ent.deleted || !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		entries[k] = bytes.Clone(ent.value)
		readVersions[k] = ent.version
	}
	tx.db.mu.RUnlock()

	for k, v := range tx.writes {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if v == nil {
			delete(entries, k)
			continue
		}
		entries[k] = bytes.Clone(*v)
	}
	for k, ver := range readVersions {
		tx.recordRead(k, ver)
	}
	return iterateEntries(entries, prefix, callback)
}

func (tx *WriteTx) Set(key, value []byte) error {
	strKey := string(key)
	if _, ok := tx.reads[strKey]; !ok {
		tx.db.mu.RLock()
		version := tx.db.currentVersion(strKey)
		tx.db.mu.RUnlock()
		tx.recordRead(strKey, version)
	}
	valCopy := bytes.Clone(value)
	tx.writes[strKey] = &valCopy
	return nil
}

func (tx *WriteTx) Delete(key []byte) error {
	strKey := string(key)
	if _, ok := tx.reads[strKey]; !ok {
		tx.db.mu.RLock()
		version := tx.db.currentVersion(strKey)
		tx.db.mu.RUnlock()
		tx.recordRead(strKey, version)
	}
	tx.writes[strKey] = nil
	return nil
}

func (tx *WriteTx) Apply(other db.WriteTx) error {
	return other.Iterate(nil, func(k, v []byte) bool {
		return tx.Set(k, v) == nil
	})
}

func (tx *WriteTx) Commit() error {
	if tx.committed || tx.discarded {
		return fmt.Errorf("inmemory: tx already finished")
	}
	tx.committed = true

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	for key, readVersion := range tx.reads {
		if tx.db.currentVersion(key) != readVersion {
			return db.ErrConflict
		}
	}
	for key, value := range tx.writes {
		if value == nil {
			tx.db.applyWrite(key, nil, true)
		} else {
			tx.db.applyWrite(key, *value, false)
		}
	}
	return nil
}

func (tx *WriteTx) Discard() {
	if tx.committed {
		return
	}
	tx.discarded = true
	tx.writes = nil
	tx.reads = nil
}
