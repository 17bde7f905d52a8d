package action

import (
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/types"
)

// SignerID is satisfied by every Did-shaped signer wrapper (Controller,
// SignatureParamsOwner, ConvenerOrIssuerOrVerifier): spec.md §4.2 allows a
// SignedAction's signature.did field to carry whichever of these the
// action's domain calls for, all layout-identical to types.Did.
type SignerID interface {
	~[32]byte
}

// AsDid converts any SignerID-shaped value to a plain types.Did for
// resolver lookups.
func AsDid[S SignerID](s S) types.Did {
	return types.Did(s)
}

// Payload is implemented by every domain action struct (AddKeys,
// RemoveControllers, SetSchemasMetadata, ...): it must expose its nonce
// field and its own canonical encoding.
type Payload interface {
	ActionNonce() uint64
	Encode() []byte
}

// DidSignature is the signature envelope of spec.md §4.2.
type DidSignature[S SignerID] struct {
	Did   S
	KeyID types.IncId
	Sig   types.SigValue
}

// SignedAction pairs a domain payload with the DidSignature authenticating
// it.
type SignedAction[P Payload, S SignerID] struct {
	Payload   P
	Signature DidSignature[S]
}

// Capability names the verification-relationship requirement a given
// action kind imposes on the signing key, per spec.md §4.2 step 3.
type Capability uint8

const (
	// CapControl requires the signing key to satisfy can_control(): used
	// for actions on the signer's own DID or a controlled DID, and for
	// every off-chain-signature and trust-registry action.
	CapControl Capability = iota
	// CapAuthOrControl requires can_authenticate() OR can_control():
	// service-endpoint actions only.
	CapAuthOrControl
)

// SignerResolver is the subset of did-package storage action.Verify needs,
// expressed as an interface so action has no dependency on did (did
// depends on action, not the reverse).
type SignerResolver interface {
	// OnChainNonce returns the current nonce for an on-chain DID, or an
	// error (NoKeyForDid if absent, CannotGetDetailForOnChainDid if the
	// DID exists but is off-chain).
	OnChainNonce(did types.Did) (uint64, error)
	// Key returns the DidKey registered under keyID for did.
	Key(did types.Did, keyID types.IncId) (types.DidKey, error)
	// AdvanceNonce persists newNonce as did's current nonce.
	AdvanceNonce(did types.Did, newNonce uint64) error
}

// Verify runs steps 1-4 of spec.md §4.2's verification algorithm: resolve
// the signer's nonce, check strict nonce equality, resolve the signing
// key and check its capability, then verify the signature over the
// payload's canonical encoding. It returns the resolved DidKey for
// callers that need it (e.g. to further check controllership) but
// deliberately stops short of step 5 (advancing the nonce): per spec.md
// §4.2's atomicity note and §4.6's permission evaluation order, the nonce
// may only advance once every handler-specific check (controllership,
// domain validation) has also succeeded. Callers call Commit once all of
// that has passed.
func Verify[P Payload, S SignerID](resolver SignerResolver, sa SignedAction[P, S], required Capability, verifiers types.Verifiers) (types.DidKey, error) {
	signerDid := AsDid(sa.Signature.Did)

	nonce, err := resolver.OnChainNonce(signerDid)
	if err != nil {
		return types.DidKey{}, err
	}
	if sa.Payload.ActionNonce() != nonce+1 {
		return types.DidKey{}, regerr.ErrIncorrectNonce
	}

	key, err := resolver.Key(signerDid, sa.Signature.KeyID)
	if err != nil {
		return types.DidKey{}, err
	}
	switch required {
	case CapControl:
		if !key.CanControl() {
			return types.DidKey{}, regerr.ErrInsufficientVerificationRelationship
		}
	case CapAuthOrControl:
		if !(key.CanAuthenticate() || key.CanControl()) {
			return types.DidKey{}, regerr.ErrInsufficientVerificationRelationship
		}
	}

	encoded := sa.Payload.Encode()
	ok, verr := sa.Signature.Sig.Verify(encoded, key.PublicKey, verifiers)
	if verr != nil {
		return types.DidKey{}, verr
	}
	if !ok {
		return types.DidKey{}, regerr.ErrInvalidSignature
	}

	return key, nil
}

// Commit is step 5: it advances the signer's nonce, and must only be
// called after every other check for the action (including handler
// validation performed after Verify returns) has already succeeded.
func Commit[P Payload, S SignerID](resolver SignerResolver, sa SignedAction[P, S]) error {
	signerDid := AsDid(sa.Signature.Did)
	return resolver.AdvanceNonce(signerDid, sa.Payload.ActionNonce())
}

// CheckController enforces spec.md §4.2's controllership check: the
// signer must be a registered controller of the DID the action targets.
// Self-actions (signer == target) trivially satisfy this iff the target
// is self-controlled, which is exactly the case where Controller(target)
// was inserted into its own controller set at creation time.
func CheckController(controllers map[types.Controller]struct{}, signer types.Did) error {
	if _, ok := controllers[types.Controller(signer)]; !ok {
		return regerr.ErrOnlyControllerCanUpdate
	}
	return nil
}
