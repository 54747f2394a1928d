package elgamal

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/voteguard/voteguard-node/crypto/ecc"
	"github.com/voteguard/voteguard-node/crypto/ecc/curves"
)

// Ciphertext is an EC-ElGamal encryption of a single scalar.
type Ciphertext struct {
	C1 ecc.Point `json:"c1" cbor:"c1"`
	C2 ecc.Point `json:"c2" cbor:"c2"`
}

// NewCiphertext creates a new zero ciphertext on the given curve.
func NewCiphertext(curve ecc.Point) *Ciphertext {
	c1 := curve.New()
	c1.SetZero()
	c2 := curve.New()
	c2.SetZero()
	return &Ciphertext{C1: c1, C2: c2}
}

// Encrypt encrypts msg under publicKey using fresh randomness and stores the
// result in the receiver.
func (z *Ciphertext) Encrypt(msg *big.Int, publicKey ecc.Point) (*Ciphertext, error) {
	c1, c2, _, err := Encrypt(publicKey, msg)
	if err != nil {
		return nil, err
	}
	z.C1 = c1
	z.C2 = c2
	return z, nil
}

// Add computes the homomorphic addition x+y and stores it in the receiver.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.Add(x.C1, y.C1)
	z.C2.Add(x.C2, y.C2)
	return z
}

// IsZero reports whether both components are the identity element.
func (z *Ciphertext) IsZero(curve ecc.Point) bool {
	zero := curve.New()
	zero.SetZero()
	return z.C1.Equal(zero) && z.C2.Equal(zero)
}

// Ballot is the encryption of a full selection vector: one ciphertext per
// candidate, in manifest order.
type Ballot struct {
	CurveType   string        `json:"curveType" cbor:"curveType"`
	Ciphertexts []*Ciphertext `json:"ciphertexts" cbor:"ciphertexts"`
}

// NewBallot creates a new zero Ballot of the given width for the given curve.
func NewBallot(curve ecc.Point, numFields int) *Ballot {
	z := &Ballot{
		CurveType:   curve.Type(),
		Ciphertexts: make([]*Ciphertext, numFields),
	}
	for i := range z.Ciphertexts {
		z.Ciphertexts[i] = NewCiphertext(curve)
	}
	return z
}

// Valid method checks if the Ballot is valid. A ballot is valid if all its
// Ciphertexts are valid (not nil) and the CurveType is supported.
func (z *Ballot) Valid() bool {
	if len(z.Ciphertexts) == 0 {
		return false
	}
	for _, c := range z.Ciphertexts {
		if c == nil || c.C1 == nil || c.C2 == nil {
			return false
		}
	}
	return curves.IsValid(z.CurveType)
}

// Encrypt encrypts the selection vector under publicKey, one independent
// randomness per field, and stores the result in the receiver.
func (z *Ballot) Encrypt(message []*big.Int, publicKey ecc.Point) (*Ballot, error) {
	if len(message) != len(z.Ciphertexts) {
		return nil, fmt.Errorf("message width %d does not match ballot width %d",
			len(message), len(z.Ciphertexts))
	}
	for i := range z.Ciphertexts {
		if _, err := z.Ciphertexts[i].Encrypt(message[i], publicKey); err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	return z, nil
}

// Add computes the field-wise homomorphic addition x+y and stores it in the
// receiver. The three ballots must share the same width and curve.
func (z *Ballot) Add(x, y *Ballot) (*Ballot, error) {
	if len(x.Ciphertexts) != len(y.Ciphertexts) || len(z.Ciphertexts) != len(x.Ciphertexts) {
		return nil, fmt.Errorf("ballot width mismatch")
	}
	if x.CurveType != y.CurveType {
		return nil, ErrInvalidCurveType
	}
	for i := range z.Ciphertexts {
		z.Ciphertexts[i].Add(x.Ciphertexts[i], y.Ciphertexts[i])
	}
	return z, nil
}

// Serialize returns the deterministic CBOR encoding of the ballot.
func (z *Ballot) Serialize() ([]byte, error) {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(z)
}

// Deserialize decodes a ballot from its Serialize representation. The curve
// points are instantiated from the encoded CurveType.
func (z *Ballot) Deserialize(data []byte) error {
	var raw struct {
		CurveType   string `cbor:"curveType"`
		Ciphertexts []struct {
			C1 cbor.RawMessage `cbor:"c1"`
			C2 cbor.RawMessage `cbor:"c2"`
		} `cbor:"ciphertexts"`
	}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !curves.IsValid(raw.CurveType) {
		return ErrInvalidCurveType
	}
	curve := curves.New(raw.CurveType)
	z.CurveType = raw.CurveType
	z.Ciphertexts = make([]*Ciphertext, len(raw.Ciphertexts))
	for i, rawCt := range raw.Ciphertexts {
		ct := NewCiphertext(curve)
		if err := cbor.Unmarshal(rawCt.C1, ct.C1); err != nil {
			return fmt.Errorf("ciphertext %d: %w", i, err)
		}
		if err := cbor.Unmarshal(rawCt.C2, ct.C2); err != nil {
			return fmt.Errorf("ciphertext %d: %w", i, err)
		}
		z.Ciphertexts[i] = ct
	}
	return nil
}

// Hash returns the SHA-256 digest of the deterministic serialization. It is
// the ballot's cryptographic identity and the source of the verification code.
func (z *Ballot) Hash() ([]byte, error) {
	data, err := z.Serialize()
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(data)
	return digest[:], nil
}

// String returns a short human readable representation of the ballot.
func (z *Ballot) String() string {
	h, err := z.Hash()
	if err != nil {
		return "ballot(invalid)"
	}
	return fmt.Sprintf("ballot(%x)", h[:8])
}
