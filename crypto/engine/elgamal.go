package engine

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/voteguard/voteguard-node/crypto/ecc"
	"github.com/voteguard/voteguard-node/crypto/ecc/bn254"
	"github.com/voteguard/voteguard-node/crypto/ecc/curves"
	"github.com/voteguard/voteguard-node/crypto/elgamal"
	"github.com/voteguard/voteguard-node/crypto/elgamal/dkg"
)

// ElGamalEngine implements Engine over additively homomorphic EC-ElGamal on
// the configured curve, with a Pedersen DKG for the guardian ceremony and
// Lagrange-combined partial decryptions at tally time.
type ElGamalEngine struct {
	curveType string
}

var _ Engine = (*ElGamalEngine)(nil)

// New returns an ElGamal engine on the default curve.
func New() *ElGamalEngine {
	return &ElGamalEngine{curveType: bn254.CurveType}
}

// NewWithCurve returns an ElGamal engine on the given curve type.
func NewWithCurve(curveType string) (*ElGamalEngine, error) {
	if !curves.IsValid(curveType) {
		return nil, elgamal.ErrInvalidCurveType
	}
	return &ElGamalEngine{curveType: curveType}, nil
}

func (e *ElGamalEngine) GenerateGuardianKeys(numGuardians, quorum int) (*GuardianKeys, error) {
	if numGuardians < 1 || quorum < 1 || quorum > numGuardians {
		return nil, fmt.Errorf("invalid guardian configuration n=%d q=%d", numGuardians, quorum)
	}
	curve := curves.New(e.curveType)

	ids := make([]int, numGuardians)
	for i := range ids {
		ids[i] = i + 1
	}
	participants := make(map[int]*dkg.Participant, numGuardians)
	for _, id := range ids {
		p := dkg.NewParticipant(id, quorum, ids, curve)
		if err := p.GenerateSecretPolynomial(); err != nil {
			return nil, err
		}
		participants[id] = p
	}

	allPublicCoeffs := make(map[int][]ecc.Point, numGuardians)
	for id, p := range participants {
		allPublicCoeffs[id] = p.PublicCoeffs
	}
	for _, p := range participants {
		p.ComputeShares()
	}
	for _, p := range participants {
		for id, other := range participants {
			if p.ID == id {
				continue
			}
			if err := p.ReceiveShare(id, other.SecretShares[p.ID], other.PublicCoeffs); err != nil {
				return nil, fmt.Errorf("share exchange: %w", err)
			}
		}
	}
	for _, p := range participants {
		p.AggregateShares()
	}
	for _, p := range participants {
		p.AggregatePublicKey(allPublicCoeffs)
	}

	keys := &GuardianKeys{
		CurveType:      e.curveType,
		NumGuardians:   numGuardians,
		Quorum:         quorum,
		ParticipantIDs: ids,
		PrivateShares:  make(map[int][]byte, numGuardians),
		JointPublicKey: participants[ids[0]].PublicKey.Marshal(),
		PublicCoeffs:   make(map[int][][]byte, numGuardians),
	}
	for id, p := range participants {
		keys.PrivateShares[id] = p.PrivateShare.Bytes()
		coeffs := make([][]byte, len(p.PublicCoeffs))
		for i, coeff := range p.PublicCoeffs {
			coeffs[i] = coeff.Marshal()
		}
		keys.PublicCoeffs[id] = coeffs
	}
	return keys, nil
}

func (e *ElGamalEngine) BuildElectionContext(manifestHash []byte, keys *GuardianKeys, numSelections int) (*Context, error) {
	if len(manifestHash) == 0 {
		return nil, fmt.Errorf("empty manifest hash")
	}
	if numSelections < 1 {
		return nil, fmt.Errorf("context needs at least one selection field")
	}
	if keys == nil || len(keys.JointPublicKey) == 0 {
		return nil, fmt.Errorf("missing guardian key material")
	}
	if keys.CurveType != e.curveType {
		return nil, elgamal.ErrInvalidCurveType
	}
	return &Context{
		CurveType:      keys.CurveType,
		ManifestHash:   bytes.Clone(manifestHash),
		JointPublicKey: bytes.Clone(keys.JointPublicKey),
		CommitmentHash: commitmentHash(keys),
		NumSelections:  numSelections,
		Quorum:         keys.Quorum,
	}, nil
}

// commitmentHash digests every guardian's public polynomial commitments in
// participant order, so the context pins the exact ceremony transcript.
func commitmentHash(keys *GuardianKeys) []byte {
	ids := make([]int, 0, len(keys.PublicCoeffs))
	for id := range keys.PublicCoeffs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	h := sha256.New()
	for _, id := range ids {
		for _, coeff := range keys.PublicCoeffs[id] {
			h.Write(coeff)
		}
	}
	return h.Sum(nil)
}

// selectionProof is a Schnorr proof of knowledge of the encryption randomness
// k with C1 = k·G, binding C2 into the challenge.
type selectionProof struct {
	A []byte `cbor:"a"`
	Z []byte `cbor:"z"`
}

func (e *ElGamalEngine) EncryptSelectionVector(vector []uint64, ctx *Context) (*EncryptedSelection, error) {
	if len(vector) != ctx.NumSelections {
		return nil, fmt.Errorf("selection vector width %d does not match context width %d",
			len(vector), ctx.NumSelections)
	}
	pubKey, err := e.publicKey(ctx)
	if err != nil {
		return nil, err
	}
	curve := curves.New(ctx.CurveType)

	ballot := elgamal.NewBallot(curve, len(vector))
	proofs := make([][]byte, len(vector))
	order := pubKey.Order()
	for i, value := range vector {
		c1, c2, k, err := elgamal.Encrypt(pubKey, new(big.Int).SetUint64(value))
		if err != nil {
			return nil, err
		}
		ballot.Ciphertexts[i].C1 = c1
		ballot.Ciphertexts[i].C2 = c2

		proof, err := buildSelectionProof(c1, c2, k, order)
		if err != nil {
			return nil, err
		}
		proofs[i] = proof
	}

	serialized, err := ballot.Serialize()
	if err != nil {
		return nil, err
	}
	hash, err := ballot.Hash()
	if err != nil {
		return nil, err
	}
	return &EncryptedSelection{Ballot: serialized, Proofs: proofs, Hash: hash}, nil
}

func buildSelectionProof(c1, c2 ecc.Point, k, order *big.Int) ([]byte, error) {
	r, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, err
	}
	if r.Sign() == 0 {
		r = big.NewInt(1)
	}
	A := c1.New()
	A.ScalarBaseMult(r)

	e := selectionChallenge(c1, c2, A, order)
	z := new(big.Int).Mul(e, k)
	z.Add(z, r)
	z.Mod(z, order)

	return cbor.Marshal(selectionProof{A: A.Marshal(), Z: z.Bytes()})
}

func selectionChallenge(c1, c2, A ecc.Point, order *big.Int) *big.Int {
	h := sha256.New()
	h.Write(c1.Marshal())
	h.Write(c2.Marshal())
	h.Write(A.Marshal())
	e := new(big.Int).SetBytes(h.Sum(nil))
	return e.Mod(e, order)
}

func (e *ElGamalEngine) VerifySelectionProofs(sel *EncryptedSelection, ctx *Context) error {
	ballot := &elgamal.Ballot{}
	if err := ballot.Deserialize(sel.Ballot); err != nil {
		return err
	}
	if len(sel.Proofs) != len(ballot.Ciphertexts) {
		return fmt.Errorf("expected %d proofs, got %d", len(ballot.Ciphertexts), len(sel.Proofs))
	}
	hash, err := ballot.Hash()
	if err != nil {
		return err
	}
	if !bytes.Equal(hash, sel.Hash) {
		return fmt.Errorf("ciphertext hash mismatch")
	}
	curve := curves.New(ballot.CurveType)
	order := curve.Order()
	for i, rawProof := range sel.Proofs {
		var proof selectionProof
		if err := cbor.Unmarshal(rawProof, &proof); err != nil {
			return fmt.Errorf("proof %d: %w", i, err)
		}
		A := curve.New()
		if err := A.Unmarshal(proof.A); err != nil {
			return fmt.Errorf("proof %d: %w", i, err)
		}
		c1 := ballot.Ciphertexts[i].C1
		c2 := ballot.Ciphertexts[i].C2
		challenge := selectionChallenge(c1, c2, A, order)

		// z·G == A + e·C1
		left := curve.New()
		left.ScalarBaseMult(new(big.Int).SetBytes(proof.Z))
		right := curve.New()
		right.ScalarMult(c1, challenge)
		right.Add(right, A)
		if !left.Equal(right) {
			return fmt.Errorf("proof %d: invalid", i)
		}
	}
	return nil
}

func (e *ElGamalEngine) HomomorphicAdd(ctx *Context, a, b []byte) ([]byte, error) {
	ballotA := &elgamal.Ballot{}
	if err := ballotA.Deserialize(a); err != nil {
		return nil, err
	}
	ballotB := &elgamal.Ballot{}
	if err := ballotB.Deserialize(b); err != nil {
		return nil, err
	}
	curve := curves.New(ctx.CurveType)
	sum := elgamal.NewBallot(curve, len(ballotA.Ciphertexts))
	if _, err := sum.Add(ballotA, ballotB); err != nil {
		return nil, err
	}
	return sum.Serialize()
}

func (e *ElGamalEngine) ComputeDecryptionShare(keys *GuardianKeys, participantID int, aggregate []byte) (*DecryptionShare, error) {
	rawShare, ok := keys.PrivateShares[participantID]
	if !ok {
		return nil, fmt.Errorf("no private share for participant %d", participantID)
	}
	privateShare := new(big.Int).SetBytes(rawShare)

	ballot := &elgamal.Ballot{}
	if err := ballot.Deserialize(aggregate); err != nil {
		return nil, err
	}
	partials := make([][]byte, len(ballot.Ciphertexts))
	for i, ct := range ballot.Ciphertexts {
		partials[i] = dkg.PartialDecryption(ct.C1, privateShare).Marshal()
	}
	return &DecryptionShare{ParticipantID: participantID, Partials: partials}, nil
}

func (e *ElGamalEngine) DecryptWithShares(aggregate []byte, shares []*DecryptionShare, ctx *Context, maxCount uint64) ([]uint64, error) {
	if len(shares) < ctx.Quorum {
		return nil, fmt.Errorf("got %d decryption shares, quorum is %d", len(shares), ctx.Quorum)
	}
	ballot := &elgamal.Ballot{}
	if err := ballot.Deserialize(aggregate); err != nil {
		return nil, err
	}
	curve := curves.New(ballot.CurveType)

	participants := make([]int, len(shares))
	for i, share := range shares {
		if len(share.Partials) != len(ballot.Ciphertexts) {
			return nil, fmt.Errorf("share %d covers %d fields, aggregate has %d",
				share.ParticipantID, len(share.Partials), len(ballot.Ciphertexts))
		}
		participants[i] = share.ParticipantID
	}

	counts := make([]uint64, len(ballot.Ciphertexts))
	for i, ct := range ballot.Ciphertexts {
		partials := make(map[int]ecc.Point, len(shares))
		for _, share := range shares {
			point := curve.New()
			if err := point.Unmarshal(share.Partials[i]); err != nil {
				return nil, fmt.Errorf("share %d field %d: %w", share.ParticipantID, i, err)
			}
			partials[share.ParticipantID] = point
		}
		count, err := dkg.CombinePartialDecryptions(ct.C2, partials, participants, maxCount)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		counts[i] = count.Uint64()
	}
	return counts, nil
}

func (e *ElGamalEngine) publicKey(ctx *Context) (ecc.Point, error) {
	if ctx.CurveType != e.curveType {
		return nil, elgamal.ErrInvalidCurveType
	}
	pubKey := curves.New(ctx.CurveType).New()
	if err := pubKey.Unmarshal(ctx.JointPublicKey); err != nil {
		return nil, fmt.Errorf("invalid joint public key: %w", err)
	}
	return pubKey, nil
}
