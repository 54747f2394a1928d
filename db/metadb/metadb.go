// Package metadb instantiates a db.Database from a driver name.
package metadb

import (
	"fmt"
	"testing"

	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/db/inmemory"
	"github.com/voteguard/voteguard-node/db/pebbledb"
)

// New returns a db.Database of the given type stored at dir.
func New(typ, dir string) (db.Database, error) {
	switch typ {
	case db.TypePebble:
		return pebbledb.New(db.Options{Path: dir})
	case db.TypeInMemory:
		return inmemory.New(db.Options{})
	default:
		return nil, fmt.Errorf("unknown database type: %q", typ)
	}
}

// NewTest returns a pebble database backed by a temporary directory that is
// removed when the test finishes.
func NewTest(tb testing.TB) db.Database {
	database, err := New(db.TypePebble, tb.TempDir())
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := database.Close(); err != nil {
			tb.Error(err)
		}
	})
	return database
}
