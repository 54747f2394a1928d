package db_test

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/db/inmemory"
	"github.com/voteguard/voteguard-node/db/metadb"
	"github.com/voteguard/voteguard-node/db/prefixeddb"
)

func TestWriteTx(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)

	wTx := database.WriteTx()
	defer wTx.Discard()

	_, err := wTx.Get([]byte("a"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)

	c.Assert(wTx.Set([]byte("a"), []byte("b")), qt.IsNil)
	v, err := wTx.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))
	c.Assert(wTx.Commit(), qt.IsNil)

	// committed values are visible outside the tx
	v, err = database.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))

	wTx = database.WriteTx()
	c.Assert(wTx.Delete([]byte("a")), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	_, err = database.Get([]byte("a"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}

func TestIterate(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)

	wTx := database.WriteTx()
	for i := range 10 {
		c.Assert(wTx.Set(fmt.Appendf(nil, "p/%d", i), []byte{byte(i)}), qt.IsNil)
	}
	c.Assert(wTx.Set([]byte("q/0"), []byte{0xff}), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	var keys []string
	err := database.Iterate([]byte("p/"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	c.Assert(err, qt.IsNil)
	c.Assert(keys, qt.HasLen, 10)
	// iteration yields keys with the prefix stripped, in order
	c.Assert(keys[0], qt.Equals, "0")
	c.Assert(keys[9], qt.Equals, "9")

	// callback returning false stops the iteration
	count := 0
	err = database.Iterate([]byte("p/"), func(k, v []byte) bool {
		count++
		return count < 3
	})
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 3)
}

func TestPrefixed(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)

	elections := prefixeddb.NewPrefixedDatabase(database, []byte("e/"))
	voters := prefixeddb.NewPrefixedDatabase(database, []byte("v/"))

	wTx := elections.WriteTx()
	c.Assert(wTx.Set([]byte("id1"), []byte("election")), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	wTx = voters.WriteTx()
	c.Assert(wTx.Set([]byte("id1"), []byte("voter")), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	v, err := elections.Get([]byte("id1"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("election"))

	v, err = voters.Get([]byte("id1"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("voter"))

	// raw keys carry the namespace prefix
	v, err = database.Get([]byte("e/id1"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("election"))
}

func TestInMemoryConflict(t *testing.T) {
	c := qt.New(t)
	database, err := inmemory.New(db.Options{})
	c.Assert(err, qt.IsNil)

	wTx := database.WriteTx()
	c.Assert(wTx.Set([]byte("k"), []byte("v0")), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	tx1 := database.WriteTx()
	tx2 := database.WriteTx()

	_, err = tx1.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	c.Assert(tx2.Set([]byte("k"), []byte("v2")), qt.IsNil)
	c.Assert(tx2.Commit(), qt.IsNil)

	// tx1 read a version that tx2 overwrote
	c.Assert(tx1.Set([]byte("k"), []byte("v1")), qt.IsNil)
	c.Assert(tx1.Commit(), qt.Equals, db.ErrConflict)
}
