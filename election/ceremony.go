package election

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/types"
)

// payloadVersion is the current schema version of persisted crypto payloads.
const payloadVersion = 1

// CeremonyResult carries everything the key ceremony produced for an
// election: the opaque persisted payloads plus the joint public key.
type CeremonyResult struct {
	GuardianKeys   types.CryptoPayload
	Context        types.CryptoPayload
	JointPublicKey types.HexBytes
}

// RunCeremony executes the key ceremony for a manifest: it generates the
// guardian key material and derives the election context binding the manifest
// hash, the joint public key and the guardian commitments. Engine failures
// surface as ErrCeremonyFailure.
func RunCeremony(eng engine.Engine, manifest *Manifest, numGuardians, quorum int) (*CeremonyResult, error) {
	manifestHash, err := manifest.Hash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}
	keys, err := eng.GenerateGuardianKeys(numGuardians, quorum)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}
	ctx, err := eng.BuildElectionContext(manifestHash, keys, len(manifest.Contest.Selections))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}

	keysPayload, err := EncodePayload(keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}
	ctxPayload, err := EncodePayload(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCeremonyFailure, err)
	}
	return &CeremonyResult{
		GuardianKeys:   keysPayload,
		Context:        ctxPayload,
		JointPublicKey: types.HexBytes(keys.JointPublicKey),
	}, nil
}

// EncodePayload wraps a cryptographic value in a versioned opaque envelope.
func EncodePayload(v any) (types.CryptoPayload, error) {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return types.CryptoPayload{}, err
	}
	data, err := em.Marshal(v)
	if err != nil {
		return types.CryptoPayload{}, err
	}
	return types.CryptoPayload{Version: payloadVersion, Data: data}, nil
}

// DecodePayload unwraps a versioned envelope into out, rejecting payloads
// written with an unknown schema version.
func DecodePayload(p types.CryptoPayload, out any) error {
	if p.Version != payloadVersion {
		return fmt.Errorf("unsupported crypto payload version %d", p.Version)
	}
	return cbor.Unmarshal(p.Data, out)
}

// ContextFromElection decodes the persisted crypto context of an election.
func ContextFromElection(e *types.Election) (*engine.Context, error) {
	ctx := &engine.Context{}
	if err := DecodePayload(e.Context, ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

// GuardianKeysFromElection decodes the persisted guardian key material of an
// election.
func GuardianKeysFromElection(e *types.Election) (*engine.GuardianKeys, error) {
	keys := &engine.GuardianKeys{}
	if err := DecodePayload(e.GuardianKeys, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// ManifestFromElection decodes the persisted manifest of an election.
func ManifestFromElection(e *types.Election) (*Manifest, error) {
	m, err := DeserializeManifest(e.Manifest.Data)
	if err != nil {
		return nil, err
	}
	if e.Manifest.Version != payloadVersion {
		return nil, fmt.Errorf("unsupported manifest payload version %d", e.Manifest.Version)
	}
	return m, nil
}
