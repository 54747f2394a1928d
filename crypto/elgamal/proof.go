// Chaum-Pedersen NIZK proof of correct ElGamal decryption.
//
// Proves non-interactively that a plaintext M is the correct decryption of
// ciphertext (C1, C2) under public key P = d·G, without revealing either the
// private key d or the encryption nonce k, by showing equality of discrete
// logs:
//
//	log_G(P) = log_{C1}(C2 - M·G)
//
// The sigma protocol is rendered non-interactive with the Fiat-Shamir
// transform, hashing all public data to obtain the challenge.
package elgamal

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/voteguard/voteguard-node/crypto/ecc"
)

// DecryptionProof is a non-interactive Chaum-Pedersen proof that
// C2 - M·G and C1 share the same discrete log with respect to P and G.
type DecryptionProof struct {
	A1 ecc.Point // = r·G   (commitment wrt base G)
	A2 ecc.Point // = r·C1  (commitment wrt base C1)
	Z  *big.Int  // = r + e·d (response)
}

// BuildDecryptionProof creates a Chaum-Pedersen NIZK proving that msg is the
// correct decryption of ciphertext (c1,c2) under privateKey.
func BuildDecryptionProof(
	privateKey *big.Int,
	publicKey ecc.Point,
	c1, c2 ecc.Point,
	msg *big.Int,
) (*DecryptionProof, error) {
	order := publicKey.Order()

	// sample fresh randomness r in [1, order-1]
	r, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, fmt.Errorf("failed to sample r: %v", err)
	}
	if r.Sign() == 0 {
		r = big.NewInt(1)
	}

	// commitments A1 = r·G, A2 = r·C1
	A1 := publicKey.New()
	A1.ScalarBaseMult(r)
	A2 := publicKey.New()
	A2.ScalarMult(c1, r)

	// D = C2 - M·G
	D := sharedSecretPoint(publicKey, c2, msg)

	// Fiat-Shamir challenge e = H(P,C1,D,A1,A2) mod order
	e := hashPointsToScalar(order, publicKey, c1, D, A1, A2)

	// response z = r + e·d mod order
	z := new(big.Int).Mul(e, privateKey)
	z.Add(z, r)
	z.Mod(z, order)

	return &DecryptionProof{A1: A1, A2: A2, Z: z}, nil
}

// VerifyDecryptionProof checks a Chaum-Pedersen proof of correct decryption.
// Returns nil if the proof is valid.
func VerifyDecryptionProof(
	publicKey ecc.Point,
	c1, c2 ecc.Point,
	msg *big.Int,
	proof *DecryptionProof,
) error {
	order := publicKey.Order()

	D := sharedSecretPoint(publicKey, c2, msg)
	e := hashPointsToScalar(order, publicKey, c1, D, proof.A1, proof.A2)

	// check 1: z·G == A1 + e·P
	left1 := publicKey.New()
	left1.ScalarBaseMult(proof.Z)

	right1 := publicKey.New()
	right1.Set(proof.A1)
	tmp := publicKey.New()
	tmp.ScalarMult(publicKey, e)
	right1.Add(right1, tmp)

	if !left1.Equal(right1) {
		return fmt.Errorf("invalid proof: first equation fails")
	}

	// check 2: z·C1 == A2 + e·D
	left2 := publicKey.New()
	left2.ScalarMult(c1, proof.Z)

	right2 := publicKey.New()
	right2.Set(proof.A2)
	tmp.ScalarMult(D, e)
	right2.Add(right2, tmp)

	if !left2.Equal(right2) {
		return fmt.Errorf("invalid proof: second equation fails")
	}
	return nil
}

// sharedSecretPoint computes D = c2 - msg·G.
func sharedSecretPoint(publicKey, c2 ecc.Point, msg *big.Int) ecc.Point {
	m := new(big.Int).Mod(msg, publicKey.Order())
	M := publicKey.New()
	M.ScalarBaseMult(m)
	D := publicKey.New()
	D.Set(c2)
	negM := publicKey.New()
	negM.Neg(M)
	D.Add(D, negM)
	return D
}

// hashPointsToScalar hashes a sequence of points to a scalar < order. This is
// the Fiat-Shamir transform.
func hashPointsToScalar(order *big.Int, pts ...ecc.Point) *big.Int {
	h := sha256.New()
	for _, p := range pts {
		h.Write(p.Marshal())
	}
	e := new(big.Int).SetBytes(h.Sum(nil))
	return e.Mod(e, order)
}
