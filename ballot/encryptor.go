// Package ballot implements ballot validation, encryption and the two-tier
// vote verification scheme.
package ballot

import (
	"fmt"
	"strings"

	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/types"
)

// ValidateSelections checks a voter's candidate selection against the
// election rules. The checks are ordered and fail fast: unknown candidate,
// then duplicate, then selection count.
func ValidateSelections(e *types.Election, selected []uint32) error {
	for _, idx := range selected {
		if e.CandidateByIndex(idx) == nil {
			return fmt.Errorf("%w: unknown candidate %d", types.ErrInvalidSelection, idx)
		}
	}
	seen := make(map[uint32]bool, len(selected))
	for _, idx := range selected {
		if seen[idx] {
			return fmt.Errorf("%w: duplicate candidate %d", types.ErrInvalidSelection, idx)
		}
		seen[idx] = true
	}
	if len(selected) != e.MaxSelections {
		return fmt.Errorf("%w: Must select exactly %d candidate(s)",
			types.ErrInvalidSelection, e.MaxSelections)
	}
	return nil
}

// SelectionVector builds the plaintext indicator vector for a validated
// selection: one entry per candidate in manifest order, 1 if selected.
func SelectionVector(e *types.Election, selected []uint32) []uint64 {
	vector := make([]uint64, len(e.Candidates))
	for _, idx := range selected {
		for i := range e.Candidates {
			if e.Candidates[i].Index == idx {
				vector[i] = 1
			}
		}
	}
	return vector
}

// Encrypt validates the selection and drives the crypto engine to produce
// the ciphertext ballot, its proofs and its hash. It performs no persistence;
// committing the ballot is the caller's responsibility.
func Encrypt(eng engine.Engine, ctx *engine.Context, e *types.Election, selected []uint32) (*engine.EncryptedSelection, error) {
	if err := ValidateSelections(e, selected); err != nil {
		return nil, err
	}
	sel, err := eng.EncryptSelectionVector(SelectionVector(e, selected), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncryptionFailure, err)
	}
	return sel, nil
}

// VerificationCode derives the human-readable verification code from a
// ciphertext hash: the first 16 hex characters, uppercased, joined in 4
// groups of 4 separated by "-". Same hash, same code, always.
func VerificationCode(hash []byte) string {
	hexStr := strings.ToUpper(fmt.Sprintf("%x", hash))
	if len(hexStr) > 16 {
		hexStr = hexStr[:16]
	}
	groups := make([]string, 0, 4)
	for i := 0; i < len(hexStr); i += 4 {
		end := min(i+4, len(hexStr))
		groups = append(groups, hexStr[i:end])
	}
	return strings.Join(groups, "-")
}
