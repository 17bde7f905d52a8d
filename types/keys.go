package types

import (
	"encoding/json"
	"fmt"

	"github.com/LTPPPP/did-trust-registry/regerr"
)

// PublicKeyScheme tags the variant carried by a PublicKey or SigValue.
type PublicKeyScheme uint8

const (
	Sr25519 PublicKeyScheme = iota
	Ed25519
	Secp256k1
	X25519
)

func (s PublicKeyScheme) String() string {
	switch s {
	case Sr25519:
		return "Sr25519"
	case Ed25519:
		return "Ed25519"
	case Secp256k1:
		return "Secp256k1"
	case X25519:
		return "X25519"
	default:
		return "Unknown"
	}
}

// PublicKey is a tagged union over the four supported key schemes.
type PublicKey struct {
	Scheme PublicKeyScheme `json:"scheme"`
	Bytes  []byte          `json:"bytes"`
}

// pubKeyLen is the expected encoded length per scheme.
func pubKeyLen(s PublicKeyScheme) int {
	switch s {
	case Sr25519, Ed25519, X25519:
		return 32
	case Secp256k1:
		return 33
	default:
		return 0
	}
}

// NewPublicKey validates the byte length for the scheme and constructs a PublicKey.
func NewPublicKey(scheme PublicKeyScheme, b []byte) (PublicKey, error) {
	want := pubKeyLen(scheme)
	if want == 0 {
		return PublicKey{}, fmt.Errorf("public key: unknown scheme %d", scheme)
	}
	if len(b) != want {
		return PublicKey{}, fmt.Errorf("public key: scheme %s expects %d bytes, got %d", scheme, want, len(b))
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return PublicKey{Scheme: scheme, Bytes: cp}, nil
}

// CanSign reports whether this key scheme may be used to produce signatures.
// All schemes except X25519 (pure key agreement) can sign.
func (pk PublicKey) CanSign() bool {
	return pk.Scheme != X25519
}

// VerRelType is a bitset over the four verification relationships a DidKey
// may carry.
type VerRelType uint8

const (
	None                 VerRelType = 0
	Authentication       VerRelType = 1 << 0
	Assertion            VerRelType = 1 << 1
	CapabilityInvocation VerRelType = 1 << 2
	KeyAgreement         VerRelType = 1 << 3

	AllForSigning = Authentication | Assertion | CapabilityInvocation

	allBits = Authentication | Assertion | CapabilityInvocation | KeyAgreement
)

// DecodeVerRelType validates that v contains no bits outside the known set.
func DecodeVerRelType(v uint8) (VerRelType, error) {
	if v&^uint8(allBits) != 0 {
		return 0, fmt.Errorf("Invalid value")
	}
	return VerRelType(v), nil
}

func (v VerRelType) Has(bit VerRelType) bool { return v&bit != 0 }

func (v VerRelType) String() string {
	if v == None {
		return "None"
	}
	parts := []string{}
	if v.Has(Authentication) {
		parts = append(parts, "Authentication")
	}
	if v.Has(Assertion) {
		parts = append(parts, "Assertion")
	}
	if v.Has(CapabilityInvocation) {
		parts = append(parts, "CapabilityInvocation")
	}
	if v.Has(KeyAgreement) {
		parts = append(parts, "KeyAgreement")
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

// UncheckedDidKey carries a public key and a verification-relationship
// bitset before the signing/key-agreement exclusivity invariant has been
// checked. NewUncheckedDidKey implements the NONE-expansion rule: a key
// submitted with no explicit relationship is expanded to AllForSigning if it
// can sign, else to KeyAgreement.
type UncheckedDidKey struct {
	PublicKey
	VerRels VerRelType `json:"ver_rels"`
}

// NewUncheckedDidKey applies the construction-time NONE expansion rule.
func NewUncheckedDidKey(pk PublicKey, rels VerRelType) UncheckedDidKey {
	if rels == None {
		if pk.CanSign() {
			rels = AllForSigning
		} else {
			rels = KeyAgreement
		}
	}
	return UncheckedDidKey{PublicKey: pk, VerRels: rels}
}

// UnmarshalJSON decodes the wire form {"scheme":...,"bytes":...,"ver_rels":...}
// and funnels it through NewUncheckedDidKey, so a key submitted with
// ver_rels omitted or 0 is promoted to AllForSigning/KeyAgreement exactly as
// a Go caller constructing one directly would get. Without this, a key
// arriving over HTTP with ver_rels:0 would reach Validate() unexpanded and
// come out unable to control or authenticate the DID.
func (u *UncheckedDidKey) UnmarshalJSON(data []byte) error {
	var raw struct {
		PublicKey
		VerRels VerRelType `json:"ver_rels"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = NewUncheckedDidKey(raw.PublicKey, raw.VerRels)
	return nil
}

// DidKey is a validated (PublicKey, VerRelType) pair: it is either purely
// signing or purely key-agreement, never both.
type DidKey struct {
	PublicKey PublicKey
	VerRels   VerRelType
}

// Validate decodes an UncheckedDidKey into a DidKey, enforcing the
// signing/key-agreement exclusivity invariant of spec.md §3.2.
func (u UncheckedDidKey) Validate() (DidKey, error) {
	if u.PublicKey.CanSign() {
		// Signing-capable keys (Sr25519/Ed25519/Secp256k1) may never carry
		// the KeyAgreement bit.
		if u.VerRels.Has(KeyAgreement) {
			return DidKey{}, regerr.ErrSigningKeyCantBeUsedForKeyAgreement
		}
	} else {
		// X25519 is key-agreement only; any signing bit is invalid.
		if u.VerRels&^KeyAgreement != 0 {
			return DidKey{}, regerr.ErrKeyAgreementCantBeUsedForSigning
		}
	}

	return DidKey{PublicKey: u.PublicKey, VerRels: u.VerRels}, nil
}

// CanSign reports whether the key may be used to produce a signature at all:
// the underlying scheme must support signing and the relationship set must
// be a (possibly empty of key-agreement) subset of the signing bits.
func (k DidKey) CanSign() bool {
	return k.PublicKey.CanSign() && !k.VerRels.Has(KeyAgreement)
}

// CanAuthenticate reports whether the key may authenticate the DID.
func (k DidKey) CanAuthenticate() bool {
	return k.VerRels.Has(Authentication) && k.PublicKey.CanSign()
}

// CanControl reports whether the key may act as a controller key (i.e. sign
// state-changing actions on behalf of the DID).
func (k DidKey) CanControl() bool {
	return k.VerRels.Has(CapabilityInvocation) && k.PublicKey.CanSign()
}

// ForKeyAgreement reports whether the key is a pure key-agreement key.
func (k DidKey) ForKeyAgreement() bool {
	return k.VerRels.Has(KeyAgreement)
}
