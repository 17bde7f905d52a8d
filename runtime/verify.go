package runtime

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/LTPPPP/did-trust-registry/types"
)

// ErrSr25519Unavailable is returned when no Sr25519 verifier has been
// injected. No sr25519/schnorrkel implementation exists anywhere in this
// repository's retrieved example pack or its dependency closure; per
// spec.md §1 and §6.1 the concrete signature primitives are external
// collaborators the runtime only consumes, so this is wired as a pluggable
// slot (SetSr25519Verifier) rather than hand-rolled from scratch.
var ErrSr25519Unavailable = errors.New("runtime: sr25519 verification requires an externally injected provider")

var sr25519Verifier func(msg, pk, sig []byte) (bool, error)

// SetSr25519Verifier injects a concrete sr25519 verifier, e.g. one backed by
// an outer node process that embeds schnorrkel. Tests and the default
// server configuration leave this unset; sr25519 keys remain fully
// representable in storage, only verification is deferred.
func SetSr25519Verifier(v func(msg, pk, sig []byte) (bool, error)) {
	sr25519Verifier = v
}

// VerifyEd25519 implements spec.md §6.1's verify_ed25519 using the standard
// library implementation.
func VerifyEd25519(msg, pk, sig []byte) bool {
	if len(pk) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), msg, sig)
}

// VerifySecp256k1 implements spec.md §6.1's verify_ecdsa for the Secp256k1
// curve, using the compressed 33-byte public key encoding named in
// spec.md §3.2 and a DER-encoded signature, via the decred secp256k1
// library (already part of the teacher's dependency closure, pulled in
// indirectly through libp2p).
func VerifySecp256k1(msg, pk, sig []byte) bool {
	pubKey, err := secp256k1.ParsePubKey(pk)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return signature.Verify(digest[:], pubKey)
}

// VerifySr25519 implements spec.md §6.1's verify_sr25519 by delegating to
// whatever verifier SetSr25519Verifier injected.
func VerifySr25519(msg, pk, sig []byte) (bool, error) {
	if sr25519Verifier == nil {
		return false, ErrSr25519Unavailable
	}
	return sr25519Verifier(msg, pk, sig)
}

// DefaultVerifiers wires the concrete backends above into the types.Verifiers
// set SigValue.Verify consumes.
func DefaultVerifiers() types.Verifiers {
	return types.Verifiers{
		Ed25519:   VerifyEd25519,
		Sr25519:   VerifySr25519,
		Secp256k1: VerifySecp256k1,
	}
}
