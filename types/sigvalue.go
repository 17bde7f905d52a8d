package types

import "fmt"

// Verifiers is the set of concrete signature-verification functions the
// outer runtime provides (spec.md §6.1: verify_ed25519/verify_sr25519/
// verify_ecdsa). SigValue.Verify delegates to whichever is wired in by the
// runtime package at process start, keeping types free of any crypto
// library import so the primitive's *shape* stays independent of which
// concrete backend implements it.
type Verifiers struct {
	Ed25519   func(msg, pk, sig []byte) bool
	Sr25519   func(msg, pk, sig []byte) (bool, error)
	Secp256k1 func(msg, pk, sig []byte) bool
}

// SigValue is a tagged union over the signature schemes that mirror the
// signing PublicKey variants (no X25519 signature exists).
type SigValue struct {
	Scheme PublicKeyScheme
	Bytes  []byte
}

// NewSigValue constructs a SigValue, rejecting X25519 (key-agreement keys
// cannot produce signatures).
func NewSigValue(scheme PublicKeyScheme, b []byte) (SigValue, error) {
	if scheme == X25519 {
		return SigValue{}, fmt.Errorf("sig value: X25519 cannot sign")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return SigValue{Scheme: scheme, Bytes: cp}, nil
}

// Verify checks the signature against msg and pk using the given verifier
// set. A scheme mismatch between the signature and the public key, or a
// bad-bytes verification failure, both surface as ok=false, err=nil: the
// caller (action.Verify) maps a false result to ErrInvalidSignature. A
// non-nil error is reserved for a verifier that is structurally unable to
// answer (e.g. Sr25519 unavailable).
func (s SigValue) Verify(msg []byte, pk PublicKey, v Verifiers) (bool, error) {
	if s.Scheme != pk.Scheme {
		return false, nil
	}
	switch s.Scheme {
	case Ed25519:
		if v.Ed25519 == nil {
			return false, fmt.Errorf("sig value: no Ed25519 verifier configured")
		}
		return v.Ed25519(msg, pk.Bytes, s.Bytes), nil
	case Sr25519:
		if v.Sr25519 == nil {
			return false, fmt.Errorf("sig value: no Sr25519 verifier configured")
		}
		return v.Sr25519(msg, pk.Bytes, s.Bytes)
	case Secp256k1:
		if v.Secp256k1 == nil {
			return false, fmt.Errorf("sig value: no Secp256k1 verifier configured")
		}
		return v.Secp256k1(msg, pk.Bytes, s.Bytes), nil
	default:
		return false, fmt.Errorf("sig value: unsupported scheme %d", s.Scheme)
	}
}
