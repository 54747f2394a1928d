/*
Package storage provides the persistent storage layer for the voteguard node.

# Storage Organization

The storage uses a key-value database with prefixed namespaces to organize the
different types of data:

## Elections
  - e/  : electionID → Election (status, window, candidates, crypto material)

## Voters and Registrations
  - v/  : voterUID → Voter
  - vs/ : voterSecret → voterUID (secret lookup index)
  - r/  : electionID + voterUID → Registration

## Ballots
  - b/  : electionID + voterUID → Ballot
  - bs/ : ballotSecret → ballot key (private verification index)
  - bc/ : verificationCode → ballot key (public verification index)

The ballot indexes hold the primary key under b/ so a lookup by secret or code
resolves to the full ballot with one extra read.
*/
package storage

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/db/prefixeddb"
	"github.com/voteguard/voteguard-node/log"
)

var (
	ErrKeyAlreadyExists = errors.New("key already exists")
	ErrNotFound         = errors.New("not found")

	// Prefixes
	electionPrefix         = []byte("e/")
	voterPrefix            = []byte("v/")
	voterSecretPrefix      = []byte("vs/")
	registrationPrefix     = []byte("r/")
	ballotPrefix           = []byte("b/")
	ballotSecretPrefix     = []byte("bs/")
	verificationCodePrefix = []byte("bc/")
)

// Storage manages elections, voters, registrations and ballots over a
// key-value database. Multi-key writes run inside a single transaction under
// the global lock, so the uniqueness checks they perform are atomic with the
// commit.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
	cache      *lru.Cache[string, any]
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	cache, err := lru.New[string, any](1000)
	if err != nil {
		log.Fatalf("failed to create LRU cache: %v", err)
	}
	return &Storage{
		db:    database,
		cache: cache,
	}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Errorw(err, "failed to close storage")
	}
}

func (s *Storage) deleteArtifact(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedDatabase(s.db, prefix).WriteTx()
	defer wTx.Discard()
	if err := wTx.Delete(key); err != nil {
		return err
	}
	return wTx.Commit()
}

// setArtifact helper function stores any kind of artifact in the storage
// under the given prefix and key, overwriting a previous value.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := EncodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedDatabase(s.db, prefix).WriteTx()
	defer wTx.Discard()
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

// getArtifact helper function retrieves an artifact from the storage and
// decodes it into out. It returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		return ErrNotFound
	}
	if err := DecodeArtifact(data, out); err != nil {
		return err
	}
	return nil
}

// listArtifacts retrieves all the keys for a given prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	if err := prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(nil, func(k, _ []byte) bool {
		kcopy := make([]byte, len(k))
		copy(kcopy, k)
		keys = append(keys, kcopy)
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
