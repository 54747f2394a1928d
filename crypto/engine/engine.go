// Package engine defines the cryptographic capability consumed by the
// election orchestration components. The orchestrators never touch curve
// points or scalars directly: every cryptographic object crosses this
// boundary as an opaque, serializable value.
package engine

import (
	"github.com/voteguard/voteguard-node/types"
)

// GuardianKeys is the key material produced by the ceremony: the private
// share of every guardian plus the joint public key. It is persisted opaque
// with the election because the shares are required again at tally time.
type GuardianKeys struct {
	CurveType      string           `cbor:"curveType"`
	NumGuardians   int              `cbor:"numGuardians"`
	Quorum         int              `cbor:"quorum"`
	ParticipantIDs []int            `cbor:"participantIds"`
	PrivateShares  map[int][]byte   `cbor:"privateShares"`
	JointPublicKey types.HexBytes   `cbor:"jointPublicKey"`
	PublicCoeffs   map[int][][]byte `cbor:"publicCoeffs"`
}

// Context binds an election's structural identity to its cryptographic
// material: the manifest hash, the joint public key and the guardian
// commitment hash. All ballot encryption for the election happens under it.
type Context struct {
	CurveType      string         `cbor:"curveType"`
	ManifestHash   types.HexBytes `cbor:"manifestHash"`
	JointPublicKey types.HexBytes `cbor:"jointPublicKey"`
	CommitmentHash types.HexBytes `cbor:"commitmentHash"`
	NumSelections  int            `cbor:"numSelections"`
	Quorum         int            `cbor:"quorum"`
}

// EncryptedSelection is the result of encrypting one selection vector: the
// ciphertext ballot, a well-formedness proof per field and the ciphertext
// hash that anchors the verification code.
type EncryptedSelection struct {
	Ballot []byte         `cbor:"ballot"`
	Proofs [][]byte       `cbor:"proofs"`
	Hash   types.HexBytes `cbor:"hash"`
}

// DecryptionShare is one guardian's partial decryption of an aggregate
// ballot: one curve point per selection field.
type DecryptionShare struct {
	ParticipantID int      `cbor:"participantId"`
	Partials      [][]byte `cbor:"partials"`
}

// Engine is the cryptographic capability interface. All methods are
// deterministic given identical inputs except GenerateGuardianKeys, which is
// randomized once at ceremony time.
type Engine interface {
	// GenerateGuardianKeys runs the key ceremony for numGuardians guardians
	// with decryption quorum quorum and returns the joint key material.
	GenerateGuardianKeys(numGuardians, quorum int) (*GuardianKeys, error)

	// BuildElectionContext derives the immutable election context from a
	// manifest hash and ceremony output. numSelections is the width of every
	// selection vector encrypted under the context.
	BuildElectionContext(manifestHash []byte, keys *GuardianKeys, numSelections int) (*Context, error)

	// EncryptSelectionVector encrypts one indicator vector (one 0/1 entry
	// per candidate) under the context's joint public key.
	EncryptSelectionVector(vector []uint64, ctx *Context) (*EncryptedSelection, error)

	// VerifySelectionProofs checks the well-formedness proofs carried by an
	// encrypted selection.
	VerifySelectionProofs(sel *EncryptedSelection, ctx *Context) error

	// HomomorphicAdd combines two serialized ciphertext ballots into the
	// encryption of their field-wise sum.
	HomomorphicAdd(ctx *Context, a, b []byte) ([]byte, error)

	// ComputeDecryptionShare computes the partial decryption of an aggregate
	// ballot for one guardian.
	ComputeDecryptionShare(keys *GuardianKeys, participantID int, aggregate []byte) (*DecryptionShare, error)

	// DecryptWithShares combines a quorum of decryption shares and recovers
	// the per-selection plaintext counts. maxCount bounds the discrete log
	// search and must be at least the number of aggregated ballots.
	DecryptWithShares(aggregate []byte, shares []*DecryptionShare, ctx *Context, maxCount uint64) ([]uint64, error)
}
