package election

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/voteguard/voteguard-node/types"
)

// Selection is one yes/no indicator descriptor inside the contest. The
// sequence order matches the candidate list order at creation time and is the
// positional anchor used to map decrypted counts back to candidates.
type Selection struct {
	ObjectID      string `cbor:"objectId" json:"objectId"`
	SequenceOrder int    `cbor:"sequenceOrder" json:"sequenceOrder"`
	CandidateName string `cbor:"candidateName" json:"candidateName"`
}

// Contest is the single contest of an election.
type Contest struct {
	ObjectID      string      `cbor:"objectId" json:"objectId"`
	Name          string      `cbor:"name" json:"name"`
	MaxSelections int         `cbor:"maxSelections" json:"maxSelections"`
	Selections    []Selection `cbor:"selections" json:"selections"`
}

// Manifest is the immutable structural definition of an election: one
// contest, one selection descriptor per candidate and the ballot style. It is
// derived deterministically from the election configuration at creation time
// and never changes afterwards.
type Manifest struct {
	ElectionID    types.HexBytes `cbor:"electionId" json:"electionId"`
	Name          string         `cbor:"name" json:"name"`
	BallotStyleID string         `cbor:"ballotStyleId" json:"ballotStyleId"`
	Contest       Contest        `cbor:"contest" json:"contest"`
	StartDate     time.Time      `cbor:"startDate" json:"startDate"`
	EndDate       time.Time      `cbor:"endDate" json:"endDate"`
}

// BuildManifest derives the manifest for an election. It is pure and
// deterministic given identical inputs: no randomness, no side effects.
func BuildManifest(electionID types.HexBytes, name string, candidateNames []string,
	maxSelections int, startDate, endDate time.Time,
) (*Manifest, error) {
	if len(electionID) == 0 {
		return nil, fmt.Errorf("empty election id")
	}
	if len(candidateNames) < 2 {
		return nil, fmt.Errorf("an election needs at least 2 candidates, got %d", len(candidateNames))
	}
	seen := make(map[string]bool, len(candidateNames))
	for _, cn := range candidateNames {
		if cn == "" {
			return nil, fmt.Errorf("empty candidate name")
		}
		if seen[cn] {
			return nil, fmt.Errorf("duplicate candidate name %q", cn)
		}
		seen[cn] = true
	}
	if maxSelections < 1 || maxSelections > len(candidateNames) {
		return nil, fmt.Errorf("maxSelections %d out of range [1,%d]", maxSelections, len(candidateNames))
	}

	selections := make([]Selection, len(candidateNames))
	for i, cn := range candidateNames {
		selections[i] = Selection{
			ObjectID:      fmt.Sprintf("candidate-%s-%d", electionID.Hex(), i),
			SequenceOrder: i,
			CandidateName: cn,
		}
	}
	return &Manifest{
		ElectionID:    electionID,
		Name:          name,
		BallotStyleID: fmt.Sprintf("ballot-style-%s", electionID.Hex()),
		Contest: Contest{
			ObjectID:      fmt.Sprintf("contest-%s", electionID.Hex()),
			Name:          name,
			MaxSelections: maxSelections,
			Selections:    selections,
		},
		StartDate: startDate.UTC(),
		EndDate:   endDate.UTC(),
	}, nil
}

// Hash returns the SHA-256 digest of the deterministic manifest encoding. It
// is the structural identity the crypto context binds to.
func (m *Manifest) Hash() ([]byte, error) {
	data, err := m.Serialize()
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(data)
	return digest[:], nil
}

// Serialize returns the deterministic CBOR encoding of the manifest.
func (m *Manifest) Serialize() ([]byte, error) {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(m)
}

// DeserializeManifest decodes a manifest from its Serialize representation.
func DeserializeManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := cbor.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
