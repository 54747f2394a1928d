package storage

import (
	"fmt"

	"github.com/voteguard/voteguard-node/db"
	"github.com/voteguard/voteguard-node/db/prefixeddb"
	"github.com/voteguard/voteguard-node/types"
)

// Voter retrieves a voter by its UID. It returns ErrNotFound if the voter
// does not exist.
func (s *Storage) Voter(uid string) (*types.Voter, error) {
	voter := &types.Voter{}
	if err := s.getArtifact(voterPrefix, []byte(uid), voter); err != nil {
		return nil, err
	}
	return voter, nil
}

// VoterBySecret resolves a voter through the secret lookup index.
func (s *Storage) VoterBySecret(secret string) (*types.Voter, error) {
	uid, err := prefixeddb.NewPrefixedReader(s.db, voterSecretPrefix).Get([]byte(secret))
	if err != nil {
		return nil, ErrNotFound
	}
	return s.Voter(string(uid))
}

// NewVoter stores a new voter and its secret index entry in one transaction.
// It returns ErrKeyAlreadyExists if the UID or the secret is already taken.
func (s *Storage) NewVoter(voter *types.Voter) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if voter == nil || voter.UID == "" || voter.Secret == "" {
		return fmt.Errorf("incomplete voter data")
	}
	data, err := EncodeArtifact(voter)
	if err != nil {
		return err
	}

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	voterTx := prefixeddb.NewPrefixedWriteTx(wTx, voterPrefix)
	if _, err := voterTx.Get([]byte(voter.UID)); err == nil {
		return ErrKeyAlreadyExists
	} else if err != db.ErrKeyNotFound {
		return err
	}
	secretTx := prefixeddb.NewPrefixedWriteTx(wTx, voterSecretPrefix)
	if _, err := secretTx.Get([]byte(voter.Secret)); err == nil {
		return ErrKeyAlreadyExists
	} else if err != db.ErrKeyNotFound {
		return err
	}

	if err := voterTx.Set([]byte(voter.UID), data); err != nil {
		return err
	}
	if err := secretTx.Set([]byte(voter.Secret), []byte(voter.UID)); err != nil {
		return err
	}
	return wTx.Commit()
}

// registrationKey builds the composite key electionID + voterUID.
func registrationKey(electionID types.HexBytes, voterUID string) []byte {
	return append(append([]byte{}, electionID...), []byte(voterUID)...)
}

// Register links a voter to an election. It returns ErrKeyAlreadyExists if
// the pair is already registered and ErrNotFound if either side is missing.
func (s *Storage) Register(reg *types.Registration) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if _, err := s.electionUnsafe(reg.ElectionID); err != nil {
		return err
	}
	voter := &types.Voter{}
	if err := s.getArtifact(voterPrefix, []byte(reg.VoterUID), voter); err != nil {
		return err
	}

	data, err := EncodeArtifact(reg)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), registrationPrefix)
	defer wTx.Discard()

	key := registrationKey(reg.ElectionID, reg.VoterUID)
	if _, err := wTx.Get(key); err == nil {
		return ErrKeyAlreadyExists
	} else if err != db.ErrKeyNotFound {
		return err
	}
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

// IsRegistered reports whether the voter is registered for the election.
func (s *Storage) IsRegistered(electionID types.HexBytes, voterUID string) bool {
	reg := &types.Registration{}
	return s.getArtifact(registrationPrefix, registrationKey(electionID, voterUID), reg) == nil
}

// ListRegistrations retrieves all registrations for an election.
func (s *Storage) ListRegistrations(electionID types.HexBytes) ([]*types.Registration, error) {
	var regs []*types.Registration
	var iterErr error
	err := prefixeddb.NewPrefixedReader(s.db, registrationPrefix).Iterate(electionID, func(_, v []byte) bool {
		reg := &types.Registration{}
		if err := DecodeArtifact(v, reg); err != nil {
			iterErr = err
			return false
		}
		regs = append(regs, reg)
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return regs, nil
}
