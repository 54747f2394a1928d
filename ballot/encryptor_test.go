package ballot

import (
	"crypto/sha256"
	"regexp"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/types"
)

func threeCandidateElection() *types.Election {
	return &types.Election{
		ID:            types.HexBytes{0x01},
		MaxSelections: 1,
		Candidates: []types.Candidate{
			{Index: 0, Name: "Alice"},
			{Index: 1, Name: "Bob"},
			{Index: 2, Name: "Carol"},
		},
	}
}

func TestValidateSelections(t *testing.T) {
	c := qt.New(t)
	elec := threeCandidateElection()

	c.Assert(ValidateSelections(elec, []uint32{1}), qt.IsNil)

	// unknown candidate is checked first
	err := ValidateSelections(elec, []uint32{7, 7})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidSelection)
	c.Assert(err, qt.ErrorMatches, ".*unknown candidate 7.*")

	// then duplicates
	err = ValidateSelections(elec, []uint32{1, 1})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidSelection)
	c.Assert(err, qt.ErrorMatches, ".*duplicate candidate 1.*")

	// then the selection count, with the required count in the message
	err = ValidateSelections(elec, []uint32{0, 1})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidSelection)
	c.Assert(err, qt.ErrorMatches, ".*Must select exactly 1 candidate\\(s\\).*")

	err = ValidateSelections(elec, nil)
	c.Assert(err, qt.ErrorIs, types.ErrInvalidSelection)
}

func TestSelectionVector(t *testing.T) {
	c := qt.New(t)
	elec := threeCandidateElection()
	c.Assert(SelectionVector(elec, []uint32{1}), qt.DeepEquals, []uint64{0, 1, 0})
	c.Assert(SelectionVector(elec, []uint32{0, 2}), qt.DeepEquals, []uint64{1, 0, 1})

	// vector of a valid single selection sums to exactly k
	sum := uint64(0)
	for _, v := range SelectionVector(elec, []uint32{2}) {
		sum += v
	}
	c.Assert(sum, qt.Equals, uint64(1))
}

func TestVerificationCode(t *testing.T) {
	c := qt.New(t)

	hash := []byte{0xa1, 0xb2, 0xc3, 0xd4, 0xe5, 0xf6, 0x01, 0x02, 0xff, 0xff}
	c.Assert(VerificationCode(hash), qt.Equals, "A1B2-C3D4-E5F6-0102")

	// pure function of the hash: same hash, same code
	digest := sha256.Sum256([]byte("some ciphertext"))
	c.Assert(VerificationCode(digest[:]), qt.Equals, VerificationCode(digest[:]))

	// always 4 groups of 4 uppercase hex characters
	format := regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)
	for _, seed := range []string{"a", "b", "c", "d"} {
		digest := sha256.Sum256([]byte(seed))
		c.Assert(format.MatchString(VerificationCode(digest[:])), qt.IsTrue)
	}
}
