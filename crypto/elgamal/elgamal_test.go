package elgamal

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/crypto/ecc/bn254"
	"github.com/voteguard/voteguard-node/crypto/ecc/curves"
)

func TestEncryptDecrypt(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bn254.CurveType)
	pubKey, privKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	msg := big.NewInt(123)
	c1, c2, k, err := Encrypt(pubKey, msg)
	c.Assert(err, qt.IsNil)
	c.Assert(CheckK(c1, k), qt.IsTrue)

	_, got, err := Decrypt(pubKey, privKey, c1, c2, 1000)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(msg), qt.Equals, 0)
}

func TestHomomorphicAddition(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bn254.CurveType)
	pubKey, privKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	a1, a2, _, err := Encrypt(pubKey, big.NewInt(3))
	c.Assert(err, qt.IsNil)
	b1, b2, _, err := Encrypt(pubKey, big.NewInt(4))
	c.Assert(err, qt.IsNil)

	sum1 := pubKey.New()
	sum1.Add(a1, b1)
	sum2 := pubKey.New()
	sum2.Add(a2, b2)

	_, got, err := Decrypt(pubKey, privKey, sum1, sum2, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Uint64(), qt.Equals, uint64(7))
}

func TestBallotAddAndSerialize(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bn254.CurveType)
	pubKey, privKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	// two ballots over three fields
	x := NewBallot(curve, 3)
	_, err = x.Encrypt([]*big.Int{big.NewInt(1), big.NewInt(0), big.NewInt(0)}, pubKey)
	c.Assert(err, qt.IsNil)
	y := NewBallot(curve, 3)
	_, err = y.Encrypt([]*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(1)}, pubKey)
	c.Assert(err, qt.IsNil)

	sum := NewBallot(curve, 3)
	_, err = sum.Add(x, y)
	c.Assert(err, qt.IsNil)

	want := []uint64{1, 0, 1}
	for i, ct := range sum.Ciphertexts {
		_, got, err := Decrypt(pubKey, privKey, ct.C1, ct.C2, 10)
		c.Assert(err, qt.IsNil)
		c.Assert(got.Uint64(), qt.Equals, want[i])
	}

	// roundtrip through the deterministic serialization
	data, err := x.Serialize()
	c.Assert(err, qt.IsNil)
	decoded := &Ballot{}
	c.Assert(decoded.Deserialize(data), qt.IsNil)
	c.Assert(decoded.Valid(), qt.IsTrue)
	c.Assert(decoded.CurveType, qt.Equals, bn254.CurveType)

	hashOrig, err := x.Hash()
	c.Assert(err, qt.IsNil)
	hashDecoded, err := decoded.Hash()
	c.Assert(err, qt.IsNil)
	c.Assert(hashDecoded, qt.DeepEquals, hashOrig)
}

func TestDecryptionProof(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bn254.CurveType)
	pubKey, privKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	msg := big.NewInt(9)
	c1, c2, _, err := Encrypt(pubKey, msg)
	c.Assert(err, qt.IsNil)

	proof, err := BuildDecryptionProof(privKey, pubKey, c1, c2, msg)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyDecryptionProof(pubKey, c1, c2, msg, proof), qt.IsNil)

	// a proof for the wrong plaintext must fail
	c.Assert(VerifyDecryptionProof(pubKey, c1, c2, big.NewInt(10), proof), qt.IsNotNil)
}
