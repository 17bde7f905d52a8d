// Package types defines the identifier, key, and signature primitives shared
// by the DID module, the off-chain signature store, and the Trust Registry.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Did is a 32-byte opaque decentralized identifier. Equality is byte equality.
type Did [32]byte

// String renders the DID as a hex string for logging and JSON views.
func (d Did) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalJSON renders the DID as a hex string.
func (d Did) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON parses a hex-encoded DID.
func (d *Did) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("did: expected JSON string")
	}
	return d.UnmarshalText(data[1 : len(data)-1])
}

// MarshalText renders the DID as a hex string. Used by encoding/json when
// a Did (or a role wrapper around one) is a map key, since map keys are
// only special-cased for encoding.TextMarshaler, not json.Marshaler.
func (d Did) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a hex-encoded DID from raw bytes (no quotes).
func (d *Did) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("did: %w", err)
	}
	if len(b) != 32 {
		return fmt.Errorf("did: expected 32 bytes, got %d", len(b))
	}
	copy(d[:], b)
	return nil
}

// DidFromHex parses a 32-byte DID from a hex string.
func DidFromHex(s string) (Did, error) {
	var d Did
	err := d.UnmarshalText([]byte(s))
	return d, err
}

// IncId is a monotonically increasing 32-bit counter. Ids are never reused;
// Inc mutates the receiver in place and returns the newly minted value.
type IncId uint32

// Inc advances the counter and returns the new value. It never wraps in
// practice (2^32 ids is an operational, not a correctness, bound) and the
// counter never decreases even when the item it addressed is removed.
func (id *IncId) Inc() IncId {
	*id++
	return *id
}

// Controller is a Did acting in the role of a controller of another DID.
type Controller Did

// SignatureParamsOwner is a Did acting as the owner of off-chain signature
// parameters and public keys.
type SignatureParamsOwner Did

// Issuer is a Did acting as a credential issuer within a Trust Registry.
type Issuer Did

// Verifier is a Did acting as a credential verifier within a Trust Registry.
type Verifier Did

// Convener is a Did that created and administers a Trust Registry.
type Convener Did

// ConvenerOrIssuerOrVerifier is the composite authorized-signer type used by
// operations any of the three Trust Registry roles may invoke.
type ConvenerOrIssuerOrVerifier Did

func (c Controller) String() string { return Did(c).String() }
func (c Controller) MarshalJSON() ([]byte, error) { return Did(c).MarshalJSON() }
func (c *Controller) UnmarshalJSON(data []byte) error { return (*Did)(c).UnmarshalJSON(data) }
func (c Controller) MarshalText() ([]byte, error) { return Did(c).MarshalText() }
func (c *Controller) UnmarshalText(text []byte) error { return (*Did)(c).UnmarshalText(text) }

func (o SignatureParamsOwner) String() string { return Did(o).String() }
func (o SignatureParamsOwner) MarshalJSON() ([]byte, error) { return Did(o).MarshalJSON() }
func (o *SignatureParamsOwner) UnmarshalJSON(data []byte) error { return (*Did)(o).UnmarshalJSON(data) }
func (o SignatureParamsOwner) MarshalText() ([]byte, error) { return Did(o).MarshalText() }
func (o *SignatureParamsOwner) UnmarshalText(text []byte) error { return (*Did)(o).UnmarshalText(text) }

func (i Issuer) String() string { return Did(i).String() }
func (i Issuer) MarshalJSON() ([]byte, error) { return Did(i).MarshalJSON() }
func (i *Issuer) UnmarshalJSON(data []byte) error { return (*Did)(i).UnmarshalJSON(data) }
func (i Issuer) MarshalText() ([]byte, error) { return Did(i).MarshalText() }
func (i *Issuer) UnmarshalText(text []byte) error { return (*Did)(i).UnmarshalText(text) }

func (v Verifier) String() string { return Did(v).String() }
func (v Verifier) MarshalJSON() ([]byte, error) { return Did(v).MarshalJSON() }
func (v *Verifier) UnmarshalJSON(data []byte) error { return (*Did)(v).UnmarshalJSON(data) }
func (v Verifier) MarshalText() ([]byte, error) { return Did(v).MarshalText() }
func (v *Verifier) UnmarshalText(text []byte) error { return (*Did)(v).UnmarshalText(text) }

func (c Convener) String() string { return Did(c).String() }
func (c Convener) MarshalJSON() ([]byte, error) { return Did(c).MarshalJSON() }
func (c *Convener) UnmarshalJSON(data []byte) error { return (*Did)(c).UnmarshalJSON(data) }
func (c Convener) MarshalText() ([]byte, error) { return Did(c).MarshalText() }
func (c *Convener) UnmarshalText(text []byte) error { return (*Did)(c).UnmarshalText(text) }

func (c ConvenerOrIssuerOrVerifier) String() string { return Did(c).String() }
func (c ConvenerOrIssuerOrVerifier) MarshalJSON() ([]byte, error) { return Did(c).MarshalJSON() }
func (c *ConvenerOrIssuerOrVerifier) UnmarshalJSON(data []byte) error { return (*Did)(c).UnmarshalJSON(data) }
func (c ConvenerOrIssuerOrVerifier) MarshalText() ([]byte, error) { return Did(c).MarshalText() }
func (c *ConvenerOrIssuerOrVerifier) UnmarshalText(text []byte) error { return (*Did)(c).UnmarshalText(text) }
