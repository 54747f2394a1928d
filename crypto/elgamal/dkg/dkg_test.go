package dkg

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/crypto/ecc"
	"github.com/voteguard/voteguard-node/crypto/ecc/bn254"
	"github.com/voteguard/voteguard-node/crypto/ecc/curves"
	"github.com/voteguard/voteguard-node/crypto/elgamal"
)

// runCeremony performs a full in-process ceremony and returns the
// participants with aggregated shares and joint public key.
func runCeremony(c *qt.C, ids []int, threshold int) map[int]*Participant {
	curvePoint := curves.New(bn254.CurveType)
	participants := make(map[int]*Participant)
	for _, id := range ids {
		participants[id] = NewParticipant(id, threshold, ids, curvePoint)
		c.Assert(participants[id].GenerateSecretPolynomial(), qt.IsNil)
	}

	allPublicCoeffs := make(map[int][]ecc.Point)
	for id, p := range participants {
		allPublicCoeffs[id] = p.PublicCoeffs
	}
	for _, p := range participants {
		p.ComputeShares()
	}
	for _, p := range participants {
		for id, otherP := range participants {
			if p.ID != id {
				share := otherP.SecretShares[p.ID]
				err := p.ReceiveShare(id, share, otherP.PublicCoeffs)
				c.Assert(err, qt.IsNil, qt.Commentf("participant %d rejects share from %d", p.ID, id))
			}
		}
	}
	for _, p := range participants {
		p.AggregateShares()
	}
	for _, p := range participants {
		p.AggregatePublicKey(allPublicCoeffs)
	}
	return participants
}

func TestDKGThresholdDecryption(t *testing.T) {
	c := qt.New(t)
	ids := []int{1, 2, 3, 4, 5}
	const threshold = 3
	participants := runCeremony(c, ids, threshold)

	// all participants agree on the joint key
	firstPubKey := participants[1].PublicKey
	for _, p := range participants {
		c.Assert(p.PublicKey.Equal(firstPubKey), qt.IsTrue)
	}

	// encrypt a small message under the joint key
	msg := big.NewInt(42)
	c1, c2, _, err := elgamal.Encrypt(firstPubKey, msg)
	c.Assert(err, qt.IsNil)

	// any quorum of threshold participants can decrypt
	quorum := ids[:threshold]
	partials := make(map[int]ecc.Point)
	for _, id := range quorum {
		partials[id] = participants[id].ComputePartialDecryption(c1)
	}
	got, err := CombinePartialDecryptions(c2, partials, quorum, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(msg), qt.Equals, 0)

	// a different quorum recovers the same message
	quorum = ids[2:]
	partials = make(map[int]ecc.Point)
	for _, id := range quorum {
		partials[id] = participants[id].ComputePartialDecryption(c1)
	}
	got, err = CombinePartialDecryptions(c2, partials, quorum, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(msg), qt.Equals, 0)
}

func TestSingleGuardian(t *testing.T) {
	c := qt.New(t)
	ids := []int{1}
	participants := runCeremony(c, ids, 1)
	p := participants[1]

	msg := big.NewInt(7)
	c1, c2, _, err := elgamal.Encrypt(p.PublicKey, msg)
	c.Assert(err, qt.IsNil)

	partials := map[int]ecc.Point{1: PartialDecryption(c1, p.PrivateShare)}
	got, err := CombinePartialDecryptions(c2, partials, ids, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(msg), qt.Equals, 0)
}

func TestHomomorphicTallyWithDKG(t *testing.T) {
	c := qt.New(t)
	ids := []int{1, 2, 3}
	const threshold = 2
	participants := runCeremony(c, ids, threshold)
	pubKey := participants[1].PublicKey

	// aggregate 20 encrypted votes of value 1
	aggC1 := pubKey.New()
	aggC1.SetZero()
	aggC2 := pubKey.New()
	aggC2.SetZero()
	const numVotes = 20
	for range numVotes {
		c1, c2, _, err := elgamal.Encrypt(pubKey, big.NewInt(1))
		c.Assert(err, qt.IsNil)
		aggC1.Add(aggC1, c1)
		aggC2.Add(aggC2, c2)
	}

	quorum := []int{1, 3}
	partials := make(map[int]ecc.Point)
	for _, id := range quorum {
		partials[id] = participants[id].ComputePartialDecryption(aggC1)
	}
	got, err := CombinePartialDecryptions(aggC2, partials, quorum, numVotes+1)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Uint64(), qt.Equals, uint64(numVotes))
}
